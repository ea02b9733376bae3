package httpapi

import (
	"time"

	"github.com/zyzzzz-123/TECHIN510-project/app/core/store"
)

type taskView struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	Text      string  `json:"text"`
	DueDate   *string `json:"due_date"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Status    string  `json:"status"`
	Type      string  `json:"type"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func newTaskView(t store.Task) taskView {
	return taskView{
		ID:        t.ID,
		UserID:    t.UserID,
		Text:      t.Text,
		DueDate:   optionalTimeString(t.DueDate),
		StartDate: optionalTimeString(t.StartDate),
		EndDate:   optionalTimeString(t.EndDate),
		Status:    t.Status,
		Type:      t.Type,
		CreatedAt: timeString(t.CreatedAt),
		UpdatedAt: timeString(t.UpdatedAt),
	}
}

func taskViews(tasks []store.Task) []taskView {
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, newTaskView(t))
	}
	return views
}

type userView struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

func newUserView(u store.User) userView {
	return userView{
		ID:        u.ID,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: timeString(u.CreatedAt),
	}
}

type chatMessageView struct {
	ID            int64  `json:"id"`
	Role          string `json:"role"`
	Content       string `json:"content"`
	ModelProvider string `json:"model_provider,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func newChatMessageView(m store.ChatMessage) chatMessageView {
	return chatMessageView{
		ID:            m.ID,
		Role:          m.Role,
		Content:       m.Content,
		ModelProvider: m.ModelProvider,
		CreatedAt:     timeString(m.CreatedAt),
	}
}

func timeString(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}

func optionalTimeString(unix int64) *string {
	if unix == 0 {
		return nil
	}
	s := timeString(unix)
	return &s
}
