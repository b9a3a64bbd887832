package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/garrycui/wellnest/internal/model"
)

// ListSessions returns a user's chat sessions, most recently updated first,
// without messages.
func (q *Queries) ListSessions(ctx context.Context, userID string) ([]model.ChatSession, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT s.id, s.user_id, s.title, s.created_at, s.updated_at
		FROM chat_sessions s
		WHERE s.user_id = $1
		ORDER BY s.updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.ChatSession
	for rows.Next() {
		var s model.ChatSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetSession returns one session with its messages.
func (q *Queries) GetSession(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	var s model.ChatSession
	err := q.db.QueryRowContext(ctx, `
		SELECT s.id, s.user_id, s.title, s.created_at, s.updated_at
		FROM chat_sessions s WHERE s.id = $1`, sessionID).
		Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT m.id, m.session_id, m.role, m.content, m.created_at
		FROM chat_messages m
		WHERE m.session_id = $1
		ORDER BY m.created_at, m.id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		s.Messages = append(s.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSession starts a new chat session for a user.
func (q *Queries) CreateSession(ctx context.Context, userID, title string) (*model.ChatSession, error) {
	var s model.ChatSession
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO chat_sessions (user_id, title)
		VALUES ($1, $2)
		RETURNING id, user_id, title, created_at, updated_at`, userID, title).
		Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// AddMessage appends a message to a session and touches the session's
// updated_at so listing order follows activity.
func (q *Queries) AddMessage(ctx context.Context, sessionID, role, content string) (*model.ChatMessage, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var m model.ChatMessage
	err = tx.QueryRowContext(ctx, `
		INSERT INTO chat_messages (session_id, role, content)
		VALUES ($1, $2, $3)
		RETURNING id, session_id, role, content, created_at`, sessionID, role, content).
		Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE chat_sessions SET updated_at = now() WHERE id = $1`, sessionID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &m, nil
}
