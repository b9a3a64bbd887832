package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/garrycui/wellnest/internal/apierr"
	"github.com/garrycui/wellnest/internal/db"
	"github.com/garrycui/wellnest/internal/store"
)

// GetTutorials lists the tutorial catalog with cursor pagination.
// GET /api/tutorials?cursor=...&q=...&category=...&limit=20
func GetTutorials(s *store.TutorialStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultPageSize
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n <= maxPageSize {
				limit = n
			}
		}

		page, err := s.List(r.Context(), store.ListTutorialsParams{
			Cursor:   r.URL.Query().Get("cursor"),
			Search:   r.URL.Query().Get("q"),
			Category: r.URL.Query().Get("category"),
			Limit:    limit,
		})
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.SystemDatabase(""))
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// GetTutorial returns one tutorial.
// GET /api/tutorials/{id}
func GetTutorial(s *store.TutorialStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tutorial, err := s.Get(r.Context(), mux.Vars(r)["id"])
		if errors.Is(err, db.ErrNotFound) {
			apierr.WriteErrorWithContext(w, r, apierr.TutorialNotFound())
			return
		}
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.SystemDatabase(""))
			return
		}
		writeJSON(w, http.StatusOK, tutorial)
	}
}
