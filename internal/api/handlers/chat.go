package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garrycui/wellnest/internal/aiapi"
	"github.com/garrycui/wellnest/internal/apierr"
	"github.com/garrycui/wellnest/internal/db"
	"github.com/garrycui/wellnest/internal/store"
)

// GetSessions lists the caller's chat sessions.
// GET /api/chat/sessions
func GetSessions(s *store.ChatStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		sessions, err := s.ListSessions(r.Context(), userID)
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.SystemDatabase(""))
			return
		}
		writeJSON(w, http.StatusOK, sessions)
	}
}

// GetSession returns one session with its transcript.
// GET /api/chat/sessions/{id}
func GetSession(s *store.ChatStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		session, err := s.GetSession(r.Context(), mux.Vars(r)["id"])
		if errors.Is(err, db.ErrNotFound) {
			apierr.WriteErrorWithContext(w, r, apierr.ChatSessionNotFound())
			return
		}
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.SystemDatabase(""))
			return
		}
		if session.UserID != userID {
			apierr.WriteErrorWithContext(w, r, apierr.AuthForbidden(""))
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

type createSessionRequest struct {
	Title string `json:"title"`
}

// CreateSession starts a new conversation.
// POST /api/chat/sessions
func CreateSession(s *store.ChatStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req createSessionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		req.Title = sanitizer.SanitizeString(req.Title, maxTitleLength)

		session, err := s.CreateSession(r.Context(), userID, req.Title)
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.SystemDatabase(""))
			return
		}
		writeJSON(w, http.StatusCreated, session)
	}
}

type messageRequest struct {
	Content string `json:"content"`
}

type messageResponse struct {
	Message   interface{} `json:"message"`
	FromCache bool        `json:"from_cache"`
}

// SendMessage appends the caller's message and returns the assistant's
// reply.
// POST /api/chat/sessions/{id}/messages
func SendMessage(s *store.ChatStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req messageRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := sanitizer.ValidateChatMessage(req.Content); err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.ValidationInvalidValue("content", err.Error()))
			return
		}

		msg, fromCache, err := s.SendMessage(r.Context(), mux.Vars(r)["id"], userID, req.Content)
		switch {
		case errors.Is(err, db.ErrNotFound):
			apierr.WriteErrorWithContext(w, r, apierr.ChatSessionNotFound())
			return
		case errors.Is(err, aiapi.ErrUnavailable):
			apierr.WriteErrorWithContext(w, r, apierr.ChatUnavailable())
			return
		case err != nil:
			apierr.WriteErrorWithContext(w, r, apierr.ChatAssistantFailed(""))
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: msg, FromCache: fromCache})
	}
}
