package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/garrycui/wellnest/internal/model"
)

// ListTutorialsParams selects one cursor page of tutorials. Cursor is the id
// of the last tutorial on the previous page; empty means the first page.
type ListTutorialsParams struct {
	Cursor   string
	Search   string
	Category string
	Limit    int
}

// ListTutorials returns tutorials newest-first after the cursor, plus the
// next cursor (empty when this is the last page).
func (q *Queries) ListTutorials(ctx context.Context, params ListTutorialsParams) ([]model.Tutorial, string, error) {
	if params.Limit <= 0 {
		params.Limit = 10
	}

	// Fetch one extra row to decide whether a next page exists.
	rows, err := q.db.QueryContext(ctx, `
		SELECT t.id, t.title, t.category, t.summary, t.body, t.rating, t.created_at
		FROM tutorials t
		WHERE ($1 = '' OR (t.created_at, t.id) < (SELECT created_at, id FROM tutorials WHERE id = $1))
		  AND ($2 = '' OR t.title ILIKE '%' || $2 || '%' OR t.summary ILIKE '%' || $2 || '%')
		  AND ($3 = '' OR t.category = $3)
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $4`, params.Cursor, params.Search, params.Category, params.Limit+1)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var tutorials []model.Tutorial
	for rows.Next() {
		var t model.Tutorial
		if err := rows.Scan(&t.ID, &t.Title, &t.Category, &t.Summary, &t.Body, &t.Rating, &t.CreatedAt); err != nil {
			return nil, "", err
		}
		tutorials = append(tutorials, t)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	next := ""
	if len(tutorials) > params.Limit {
		tutorials = tutorials[:params.Limit]
		next = tutorials[len(tutorials)-1].ID
	}
	return tutorials, next, nil
}

// GetTutorial returns a single tutorial by id.
func (q *Queries) GetTutorial(ctx context.Context, id string) (*model.Tutorial, error) {
	var t model.Tutorial
	err := q.db.QueryRowContext(ctx, `
		SELECT t.id, t.title, t.category, t.summary, t.body, t.rating, t.created_at
		FROM tutorials t WHERE t.id = $1`, id).
		Scan(&t.ID, &t.Title, &t.Category, &t.Summary, &t.Body, &t.Rating, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
