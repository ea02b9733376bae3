// Package intent turns free-text chat into structured task operations and
// applies them to the task store.
package intent

const (
	ActionNone   = "none"
	ActionQuery  = "query_task"
	ActionCreate = "add_task"
	ActionUpdate = "update_task"
	ActionDelete = "delete_task"
)

const defaultConfirmationPrompt = "Confirm this action?"

// Intent is the structured form of a task operation inferred from chat. The
// Task payload stays an open mapping: the executor reads the keys it knows and
// ignores the rest, and a present-but-null key is distinct from an absent one.
type Intent struct {
	Action             string
	Task               map[string]interface{}
	ConfirmationPrompt string
}

func New(action string, task map[string]interface{}, confirmationPrompt string) Intent {
	if action == "" {
		action = ActionNone
	}
	if task == nil {
		task = map[string]interface{}{}
	}
	if confirmationPrompt == "" {
		confirmationPrompt = defaultConfirmationPrompt
	}
	return Intent{Action: action, Task: task, ConfirmationPrompt: confirmationPrompt}
}

func Empty() Intent {
	return New(ActionNone, nil, "")
}

func (i Intent) IsEmpty() bool {
	return i.Action == ActionNone || len(i.Task) == 0
}

func (i Intent) IsQuery() bool  { return i.Action == ActionQuery }
func (i Intent) IsCreate() bool { return i.Action == ActionCreate }
func (i Intent) IsUpdate() bool { return i.Action == ActionUpdate }
func (i Intent) IsDelete() bool { return i.Action == ActionDelete }

func (i Intent) ToJSON() map[string]interface{} {
	task := i.Task
	if task == nil {
		task = map[string]interface{}{}
	}
	return map[string]interface{}{
		"action":              i.Action,
		"task":                task,
		"confirmation_prompt": i.ConfirmationPrompt,
	}
}

// FromJSON never fails: missing or mistyped keys fall back to the empty
// intent's defaults.
func FromJSON(data map[string]interface{}) Intent {
	action, _ := data["action"].(string)
	task, _ := data["task"].(map[string]interface{})
	prompt, _ := data["confirmation_prompt"].(string)
	return New(action, task, prompt)
}
