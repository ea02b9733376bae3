package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Task timestamps are unix seconds; zero means the column is NULL.
type Task struct {
	ID        int64
	UserID    int64
	Text      string
	Status    string
	Type      string
	DueDate   int64
	StartDate int64
	EndDate   int64
	CreatedAt int64
	UpdatedAt int64
}

// TaskUpdate carries partial-update fields. A nil pointer leaves the column
// untouched; for the date fields a pointer to zero clears the column.
type TaskUpdate struct {
	Text      *string
	Status    *string
	Type      *string
	DueDate   *int64
	StartDate *int64
	EndDate   *int64
}

// QueryFilter narrows and orders a task listing. Status/Type equal to "" or
// "all" apply no filter; DueFrom/DueTo of zero leave that bound open.
type QueryFilter struct {
	Status    string
	Type      string
	DueFrom   int64
	DueTo     int64
	SortBy    string // due_date | created_at
	SortOrder string // asc | desc
}

type TaskStore struct {
	db *DB
}

func NewTaskStore(database *DB) *TaskStore {
	return &TaskStore{db: database}
}

func (s *TaskStore) Create(ctx context.Context, t Task) (Task, error) {
	if t.UserID <= 0 {
		return Task{}, fmt.Errorf("user_id is required")
	}
	t.Text = strings.TrimSpace(t.Text)
	if t.Text == "" {
		return Task{}, fmt.Errorf("%w: text is required", ErrValidation)
	}
	if strings.TrimSpace(t.Status) == "" {
		t.Status = "todo"
	}
	if strings.TrimSpace(t.Type) == "" {
		t.Type = "todo"
	}
	if err := validateTaskDates(t.Type, t.DueDate, t.StartDate, t.EndDate); err != nil {
		return Task{}, err
	}

	now := time.Now().Unix()
	t.CreatedAt = now
	t.UpdatedAt = now

	query := `INSERT INTO tasks (user_id, text, status, type, due_date, start_date, end_date, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.Conn().ExecContext(ctx, query,
		t.UserID, t.Text, t.Status, t.Type,
		nullableUnix(t.DueDate), nullableUnix(t.StartDate), nullableUnix(t.EndDate),
		t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return Task{}, err
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return Task{}, err
	}
	return t, nil
}

// GetForUser fetches a task scoped to its owner. A userID of 0 skips the
// owner check, for the id-only CRUD surface.
func (s *TaskStore) GetForUser(ctx context.Context, id int64, userID int64) (Task, error) {
	query := taskSelect + ` WHERE id = ? AND (? = 0 OR user_id = ?)`
	var t Task
	err := s.db.Conn().QueryRowContext(ctx, query, id, userID, userID).Scan(taskScanDest(&t)...)
	if err == sql.ErrNoRows {
		return Task{}, ErrTaskNotFound
	}
	if err != nil {
		return Task{}, err
	}
	return t, nil
}

// UpdateFields applies a partial update scoped to the owner. Only non-nil
// fields change; the merged row is re-validated before writing.
func (s *TaskStore) UpdateFields(ctx context.Context, id int64, userID int64, update TaskUpdate) (Task, error) {
	t, err := s.GetForUser(ctx, id, userID)
	if err != nil {
		return Task{}, err
	}

	if update.Text != nil && strings.TrimSpace(*update.Text) != "" {
		t.Text = strings.TrimSpace(*update.Text)
	}
	if update.Status != nil && strings.TrimSpace(*update.Status) != "" {
		t.Status = strings.TrimSpace(*update.Status)
	}
	if update.Type != nil && strings.TrimSpace(*update.Type) != "" {
		t.Type = strings.TrimSpace(*update.Type)
	}
	if update.DueDate != nil {
		t.DueDate = *update.DueDate
	}
	if update.StartDate != nil {
		t.StartDate = *update.StartDate
	}
	if update.EndDate != nil {
		t.EndDate = *update.EndDate
	}
	if err := validateTaskDates(t.Type, t.DueDate, t.StartDate, t.EndDate); err != nil {
		return Task{}, err
	}

	t.UpdatedAt = time.Now().Unix()
	query := `UPDATE tasks SET text = ?, status = ?, type = ?, due_date = ?, start_date = ?, end_date = ?, updated_at = ?
WHERE id = ?`
	if _, err := s.db.Conn().ExecContext(ctx, query,
		t.Text, t.Status, t.Type,
		nullableUnix(t.DueDate), nullableUnix(t.StartDate), nullableUnix(t.EndDate),
		t.UpdatedAt, id); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Delete removes a task scoped to its owner; userID 0 skips the owner check.
func (s *TaskStore) Delete(ctx context.Context, id int64, userID int64) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND (? = 0 OR user_id = ?)`, id, userID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ListForUser returns the user's tasks ordered by due date, optionally
// narrowed to one status.
func (s *TaskStore) ListForUser(ctx context.Context, userID int64, status string) ([]Task, error) {
	var (
		query string
		args  []interface{}
	)
	status = strings.TrimSpace(status)
	if status == "" {
		query = taskSelect + ` WHERE user_id = ? ORDER BY due_date`
		args = []interface{}{userID}
	} else {
		query = taskSelect + ` WHERE user_id = ? AND status = ? ORDER BY due_date`
		args = []interface{}{userID, status}
	}
	return s.queryTasks(ctx, query, args...)
}

func (s *TaskStore) Query(ctx context.Context, userID int64, filter QueryFilter) ([]Task, error) {
	var b strings.Builder
	b.WriteString(taskSelect)
	b.WriteString(` WHERE user_id = ?`)
	args := []interface{}{userID}

	if status := strings.TrimSpace(filter.Status); status != "" && status != "all" {
		b.WriteString(` AND status = ?`)
		args = append(args, status)
	}
	if taskType := strings.TrimSpace(filter.Type); taskType != "" && taskType != "all" {
		b.WriteString(` AND type = ?`)
		args = append(args, taskType)
	}
	if filter.DueFrom != 0 {
		b.WriteString(` AND due_date >= ?`)
		args = append(args, filter.DueFrom)
	}
	if filter.DueTo != 0 {
		b.WriteString(` AND due_date < ?`)
		args = append(args, filter.DueTo)
	}

	sortBy := "due_date"
	if filter.SortBy == "created_at" {
		sortBy = "created_at"
	}
	b.WriteString(` ORDER BY ` + sortBy)
	if strings.EqualFold(filter.SortOrder, "desc") {
		b.WriteString(` DESC`)
	}

	return s.queryTasks(ctx, b.String(), args...)
}

func (s *TaskStore) queryTasks(ctx context.Context, query string, args ...interface{}) ([]Task, error) {
	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Task, 0)
	for rows.Next() {
		var t Task
		if err := rows.Scan(taskScanDest(&t)...); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const taskSelect = `SELECT id, user_id, text, status, type, COALESCE(due_date, 0), COALESCE(start_date, 0), COALESCE(end_date, 0), created_at, updated_at FROM tasks`

func taskScanDest(t *Task) []interface{} {
	return []interface{}{
		&t.ID, &t.UserID, &t.Text, &t.Status, &t.Type,
		&t.DueDate, &t.StartDate, &t.EndDate,
		&t.CreatedAt, &t.UpdatedAt,
	}
}

// validateTaskDates enforces the per-type timestamp requirements: a deadline
// task must carry a due date, an event must carry both start and end.
func validateTaskDates(taskType string, dueDate, startDate, endDate int64) error {
	switch taskType {
	case "ddl":
		if dueDate == 0 {
			return fmt.Errorf("%w: task type ddl requires due_date", ErrValidation)
		}
	case "event":
		if startDate == 0 || endDate == 0 {
			return fmt.Errorf("%w: task type event requires start_date and end_date", ErrValidation)
		}
	}
	return nil
}

func nullableUnix(v int64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}
