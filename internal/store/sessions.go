package store

import (
	"context"

	"github.com/garrycui/wellnest/internal/cache"
	"github.com/garrycui/wellnest/internal/db"
	"github.com/garrycui/wellnest/internal/metrics"
	"github.com/garrycui/wellnest/internal/model"
)

// sessionQueries is the slice of the db layer the chat store needs.
type sessionQueries interface {
	ListSessions(ctx context.Context, userID string) ([]model.ChatSession, error)
	GetSession(ctx context.Context, sessionID string) (*model.ChatSession, error)
	CreateSession(ctx context.Context, userID, title string) (*model.ChatSession, error)
	AddMessage(ctx context.Context, sessionID, role, content string) (*model.ChatMessage, error)
}

// assistant is the slice of the assistant API client the chat store needs.
type assistant interface {
	Chat(ctx context.Context, messages []model.ChatMessage) (string, error)
}

// ChatStore serves chat sessions and assistant replies. Session data runs on
// a short TTL since conversations mutate constantly; assistant replies to
// recurring prompts are held in the bounded response cache.
type ChatStore struct {
	q      sessionQueries
	ai     assistant
	caches *Caches
}

// NewChatStore wires the chat store to the database, assistant client and
// cache registry.
func NewChatStore(q *db.Queries, ai assistant, caches *Caches) *ChatStore {
	return &ChatStore{q: q, ai: ai, caches: caches}
}

// ListSessions returns the user's sessions newest-activity-first, served from
// the per-user derived-view cache.
func (s *ChatStore) ListSessions(ctx context.Context, userID string) ([]model.ChatSession, error) {
	key := cache.UserViewKey(userID, "sessions")
	return s.caches.SessionList.GetOrSet(ctx, key, 0, func(ctx context.Context) ([]model.ChatSession, error) {
		return s.q.ListSessions(ctx, userID)
	})
}

// GetSession returns one session with its messages, served from cache when
// fresh.
func (s *ChatStore) GetSession(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	key := cache.DetailKey(cache.FamilySession, sessionID)
	return s.caches.SessionDetail.GetOrSet(ctx, key, 0, func(ctx context.Context) (*model.ChatSession, error) {
		return s.q.GetSession(ctx, sessionID)
	})
}

// CreateSession starts a conversation and invalidates the user's session
// list.
func (s *ChatStore) CreateSession(ctx context.Context, userID, title string) (*model.ChatSession, error) {
	session, err := s.q.CreateSession(ctx, userID, title)
	if err != nil {
		return nil, err
	}
	s.invalidateSessionList(userID)
	return session, nil
}

// SendMessage appends the user's message, obtains the assistant's reply
// (from the response cache when an equivalent prompt was answered recently),
// persists it and returns it. The bool reports whether the reply came from
// the cache.
func (s *ChatStore) SendMessage(ctx context.Context, sessionID, userID, content string) (*model.ChatMessage, bool, error) {
	if _, err := s.q.AddMessage(ctx, sessionID, "user", content); err != nil {
		return nil, false, err
	}
	// Drop the cached session now so the transcript fetched below includes
	// the turn just persisted.
	s.invalidateSession(sessionID, userID)

	reply, fromCache, err := s.assistantReply(ctx, sessionID, content)
	if err != nil {
		return nil, false, err
	}

	msg, err := s.q.AddMessage(ctx, sessionID, "assistant", reply)
	if err != nil {
		return nil, false, err
	}

	s.invalidateSession(sessionID, userID)
	return msg, fromCache, nil
}

// assistantReply answers the prompt from the response cache, falling back to
// the assistant API with the session transcript as context. Prompts are
// normalized so trivially different phrasings of the same question share one
// slot.
func (s *ChatStore) assistantReply(ctx context.Context, sessionID, content string) (string, bool, error) {
	key := cache.DetailKey(cache.FamilyResponse, cache.NormalizeSearch(content))
	if reply, ok := s.caches.Response.Get(key); ok {
		metrics.ResponseCacheServed.Inc()
		return reply, true, nil
	}

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return "", false, err
	}

	reply, err := s.ai.Chat(ctx, session.Messages)
	if err != nil {
		return "", false, err
	}

	s.caches.Response.Set(key, reply, 0)
	s.caches.Response.Sweep()
	return reply, false, nil
}

// invalidateSession drops the session detail entry and the owner's session
// list, whose ordering depends on last activity.
func (s *ChatStore) invalidateSession(sessionID, userID string) {
	s.caches.SessionDetail.Delete(cache.DetailKey(cache.FamilySession, sessionID))
	metrics.CacheInvalidations.WithLabelValues(cache.FamilySession, "detail").Inc()
	s.invalidateSessionList(userID)
}

func (s *ChatStore) invalidateSessionList(userID string) {
	s.caches.SessionList.Delete(cache.UserViewKey(userID, "sessions"))
	metrics.CacheInvalidations.WithLabelValues(cache.FamilyUserView, "sessions").Inc()
}
