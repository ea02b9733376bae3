package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

type ChatMessage struct {
	ID            int64
	UserID        int64
	Role          string
	Content       string
	ModelProvider string
	CreatedAt     int64
}

type ChatStore struct {
	db *DB
}

func NewChatStore(database *DB) *ChatStore {
	return &ChatStore{db: database}
}

func (s *ChatStore) Append(ctx context.Context, userID int64, role string, content string, modelProvider string) (ChatMessage, error) {
	role = strings.TrimSpace(role)
	if role != "user" && role != "assistant" {
		return ChatMessage{}, ErrValidation
	}
	now := time.Now().Unix()
	res, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO chat_messages (user_id, role, content, model_provider, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, role, content, nullableString(modelProvider), now)
	if err != nil {
		return ChatMessage{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ChatMessage{}, err
	}
	return ChatMessage{ID: id, UserID: userID, Role: role, Content: content, ModelProvider: modelProvider, CreatedAt: now}, nil
}

// ListSince returns up to limit of the user's newest messages created at or
// after since, in chronological order.
func (s *ChatStore) ListSince(ctx context.Context, userID int64, since int64, limit int) ([]ChatMessage, error) {
	if limit <= 0 {
		limit = 200
	}
	query := `SELECT id, user_id, role, content, COALESCE(model_provider, ''), created_at
FROM chat_messages WHERE user_id = ? AND created_at >= ? ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := s.db.Conn().QueryContext(ctx, query, userID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanChatMessages(rows, limit)
	if err != nil {
		return nil, err
	}
	reverseMessages(items)
	return items, nil
}

// RecentForContext returns the user's last maxMessages messages in
// chronological order, for use as conversation context.
func (s *ChatStore) RecentForContext(ctx context.Context, userID int64, maxMessages int) ([]ChatMessage, error) {
	if maxMessages <= 0 {
		maxMessages = 20
	}
	query := `SELECT id, user_id, role, content, COALESCE(model_provider, ''), created_at
FROM chat_messages WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := s.db.Conn().QueryContext(ctx, query, userID, maxMessages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanChatMessages(rows, maxMessages)
	if err != nil {
		return nil, err
	}
	reverseMessages(items)
	return items, nil
}

func (s *ChatStore) Delete(ctx context.Context, id int64, userID int64) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM chat_messages WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (s *ChatStore) ClearForUser(ctx context.Context, userID int64) (int64, error) {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM chat_messages WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanChatMessages(rows *sql.Rows, capacity int) ([]ChatMessage, error) {
	items := make([]ChatMessage, 0, capacity)
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &m.ModelProvider, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func reverseMessages(items []ChatMessage) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}

func nullableString(v string) interface{} {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
