package intent

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zyzzzz-123/TECHIN510-project/app/core/store"
	"github.com/zyzzzz-123/TECHIN510-project/app/pkg/logger"
)

var (
	ErrEmptyIntent   = errors.New("empty intent")
	ErrMissingTaskID = errors.New("intent payload missing task id")
)

const defaultTaskText = "New task"

// Result summarizes an executed intent.
type Result struct {
	Success bool
	Message string
	Task    *store.Task
}

// Executor applies a confirmed intent against the task store. Ownership is
// re-verified on update and delete even though the id arrives from a
// previously issued, client-held intent.
type Executor struct {
	tasks *store.TaskStore
}

func NewExecutor(tasks *store.TaskStore) *Executor {
	return &Executor{tasks: tasks}
}

func (e *Executor) Execute(ctx context.Context, ownerID int64, it Intent) (Result, error) {
	if it.IsEmpty() {
		return Result{}, ErrEmptyIntent
	}
	switch it.Action {
	case ActionCreate:
		return e.create(ctx, ownerID, it.Task)
	case ActionUpdate:
		return e.update(ctx, ownerID, it.Task)
	case ActionDelete:
		return e.delete(ctx, ownerID, it.Task)
	default:
		return Result{}, fmt.Errorf("%w: action %q is not executable", ErrEmptyIntent, it.Action)
	}
}

func (e *Executor) create(ctx context.Context, ownerID int64, payload map[string]interface{}) (Result, error) {
	task := store.Task{
		UserID: ownerID,
		Text:   stringField(payload, "text"),
		Status: stringField(payload, "status"),
		Type:   stringField(payload, "type"),
	}
	if task.Text == "" {
		task.Text = defaultTaskText
	}
	if task.Type == "" {
		task.Type = "todo"
	}

	for _, field := range []struct {
		key  string
		dest *int64
	}{
		{"due_date", &task.DueDate},
		{"start_date", &task.StartDate},
		{"end_date", &task.EndDate},
	} {
		raw, present := payload[field.key]
		if !present || raw == nil {
			continue
		}
		parsed, err := ParseTimestamp(raw)
		if err != nil {
			logger.Warn("Ignoring unparsable %s %v: %v", field.key, raw, err)
			continue
		}
		*field.dest = parsed
	}

	created, err := e.tasks.Create(ctx, task)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("Created task %q", created.Text),
		Task:    &created,
	}, nil
}

func (e *Executor) update(ctx context.Context, ownerID int64, payload map[string]interface{}) (Result, error) {
	id, ok := idField(payload)
	if !ok {
		return Result{}, ErrMissingTaskID
	}

	var update store.TaskUpdate
	if v, present := payload["text"]; present {
		if s, ok := v.(string); ok {
			update.Text = &s
		}
	}
	if v, present := payload["status"]; present {
		if s, ok := v.(string); ok {
			update.Status = &s
		}
	}
	if v, present := payload["type"]; present {
		if s, ok := v.(string); ok {
			update.Type = &s
		}
	}
	applyDateField(payload, "due_date", &update.DueDate)
	applyDateField(payload, "start_date", &update.StartDate)
	applyDateField(payload, "end_date", &update.EndDate)

	updated, err := e.tasks.UpdateFields(ctx, id, ownerID, update)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("Updated task %q", updated.Text),
		Task:    &updated,
	}, nil
}

func (e *Executor) delete(ctx context.Context, ownerID int64, payload map[string]interface{}) (Result, error) {
	id, ok := idField(payload)
	if !ok {
		return Result{}, ErrMissingTaskID
	}

	task, err := e.tasks.GetForUser(ctx, id, ownerID)
	if err != nil {
		return Result{}, err
	}
	if err := e.tasks.Delete(ctx, id, ownerID); err != nil {
		return Result{}, err
	}
	return Result{
		Success: true,
		Message: fmt.Sprintf("Deleted task %q", task.Text),
	}, nil
}

// applyDateField maps a payload date key onto a partial-update slot: absent
// leaves it nil, null or empty string clears the column, anything else is
// parsed and silently skipped on failure.
func applyDateField(payload map[string]interface{}, key string, dest **int64) {
	raw, present := payload[key]
	if !present {
		return
	}
	var cleared int64
	if raw == nil {
		*dest = &cleared
		return
	}
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		*dest = &cleared
		return
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		logger.Warn("Ignoring unparsable %s %v: %v", key, raw, err)
		return
	}
	*dest = &parsed
}

// ParseTimestamp accepts ISO-8601 strings, with a trailing Z read as UTC.
func ParseTimestamp(raw interface{}) (int64, error) {
	s, ok := raw.(string)
	if !ok {
		return 0, fmt.Errorf("expected string timestamp, got %T", raw)
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized timestamp %q", s)
}

func stringField(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// idField tolerates the id arriving as a JSON number or a numeric string.
func idField(payload map[string]interface{}) (int64, bool) {
	switch v := payload["id"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}
