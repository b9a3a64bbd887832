package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sqlc-dev/pqtype"

	"github.com/garrycui/wellnest/internal/model"
)

// GetUser returns a user profile; preferences come back as raw JSON.
func (q *Queries) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var u model.User
	var prefs pqtype.NullRawMessage
	err := q.db.QueryRowContext(ctx, `
		SELECT u.id, u.name, u.email, u.preferences, u.created_at, u.updated_at
		FROM users u WHERE u.id = $1`, userID).
		Scan(&u.ID, &u.Name, &u.Email, &prefs, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if prefs.Valid {
		u.Preferences = json.RawMessage(prefs.RawMessage)
	}
	return &u, nil
}

// UpdateUserPreferences replaces the user's preferences document.
func (q *Queries) UpdateUserPreferences(ctx context.Context, userID string, prefs json.RawMessage) error {
	value := pqtype.NullRawMessage{RawMessage: prefs, Valid: len(prefs) > 0}
	res, err := q.db.ExecContext(ctx, `
		UPDATE users SET preferences = $2, updated_at = now() WHERE id = $1`, userID, value)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetLatestAssessment returns the user's most recent assessment of a kind.
// An empty kind matches any kind.
func (q *Queries) GetLatestAssessment(ctx context.Context, userID, kind string) (*model.Assessment, error) {
	var a model.Assessment
	var answers pqtype.NullRawMessage
	err := q.db.QueryRowContext(ctx, `
		SELECT a.id, a.user_id, a.kind, a.answers, a.score, a.completed_at
		FROM assessments a
		WHERE a.user_id = $1 AND ($2 = '' OR a.kind = $2)
		ORDER BY a.completed_at DESC
		LIMIT 1`, userID, kind).
		Scan(&a.ID, &a.UserID, &a.Kind, &answers, &a.Score, &a.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if answers.Valid {
		a.Answers = json.RawMessage(answers.RawMessage)
	}
	return &a, nil
}

// SaveAssessmentParams carries a completed assessment.
type SaveAssessmentParams struct {
	UserID  string
	Kind    string
	Answers json.RawMessage
	Score   float64
}

// SaveAssessment stores a completed assessment and returns it.
func (q *Queries) SaveAssessment(ctx context.Context, params SaveAssessmentParams) (*model.Assessment, error) {
	answers := pqtype.NullRawMessage{RawMessage: params.Answers, Valid: len(params.Answers) > 0}
	var a model.Assessment
	var stored pqtype.NullRawMessage
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO assessments (user_id, kind, answers, score)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, kind, answers, score, completed_at`,
		params.UserID, params.Kind, answers, params.Score).
		Scan(&a.ID, &a.UserID, &a.Kind, &stored, &a.Score, &a.CompletedAt)
	if err != nil {
		return nil, err
	}
	if stored.Valid {
		a.Answers = json.RawMessage(stored.RawMessage)
	}
	return &a, nil
}
