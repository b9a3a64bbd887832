package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/garrycui/wellnest/internal/aiapi"
	"github.com/garrycui/wellnest/internal/apierr"
	"github.com/garrycui/wellnest/internal/db"
	"github.com/garrycui/wellnest/internal/store"
)

// GetProfile returns the caller's profile.
// GET /api/me
func GetProfile(s *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		user, err := s.GetUser(r.Context(), userID)
		if errors.Is(err, db.ErrNotFound) {
			apierr.WriteErrorWithContext(w, r, apierr.UserNotFound())
			return
		}
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.SystemDatabase(""))
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// UpdatePreferences replaces the caller's preferences document.
// PUT /api/me/preferences
func UpdatePreferences(s *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var prefs json.RawMessage
		if !decodeJSON(w, r, &prefs) {
			return
		}

		err := s.UpdatePreferences(r.Context(), userID, prefs)
		if errors.Is(err, db.ErrNotFound) {
			apierr.WriteErrorWithContext(w, r, apierr.UserNotFound())
			return
		}
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.SystemDatabase(""))
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// GetLatestAssessment returns the caller's most recent assessment.
// GET /api/me/assessments/latest?kind=perma
func GetLatestAssessment(s *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		assessment, err := s.LatestAssessment(r.Context(), userID, r.URL.Query().Get("kind"))
		if errors.Is(err, db.ErrNotFound) {
			apierr.WriteErrorWithContext(w, r, apierr.AssessmentNotFound())
			return
		}
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.SystemDatabase(""))
			return
		}
		writeJSON(w, http.StatusOK, assessment)
	}
}

type assessmentRequest struct {
	Kind    string          `json:"kind"`
	Answers json.RawMessage `json:"answers"`
	Score   float64         `json:"score"`
}

// SaveAssessment stores a completed assessment.
// POST /api/me/assessments
func SaveAssessment(s *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req assessmentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Kind == "" {
			apierr.WriteErrorWithContext(w, r, apierr.ValidationMissingField("kind"))
			return
		}

		assessment, err := s.SaveAssessment(r.Context(), db.SaveAssessmentParams{
			UserID:  userID,
			Kind:    req.Kind,
			Answers: req.Answers,
			Score:   req.Score,
		})
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.SystemDatabase(""))
			return
		}
		writeJSON(w, http.StatusCreated, assessment)
	}
}

// GetRecommendations returns personalized content suggestions.
// GET /api/me/recommendations
func GetRecommendations(s *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		recs, err := s.Recommendations(r.Context(), userID)
		switch {
		case errors.Is(err, db.ErrNotFound):
			apierr.WriteErrorWithContext(w, r, apierr.UserNotFound())
			return
		case errors.Is(err, aiapi.ErrUnavailable):
			apierr.WriteErrorWithContext(w, r, apierr.ChatUnavailable())
			return
		case err != nil:
			apierr.WriteErrorWithContext(w, r, apierr.ChatAssistantFailed("Recommendation request failed"))
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}
