package store

import (
	"context"
	"testing"
	"time"

	"github.com/garrycui/wellnest/internal/model"
)

type fakeSessionDB struct {
	listCalls int
	getCalls  int
	messages  []model.ChatMessage
}

func (f *fakeSessionDB) ListSessions(ctx context.Context, userID string) ([]model.ChatSession, error) {
	f.listCalls++
	return []model.ChatSession{{ID: "session_1", UserID: userID}}, nil
}

func (f *fakeSessionDB) GetSession(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	f.getCalls++
	return &model.ChatSession{ID: sessionID, UserID: "user_1", Messages: f.messages}, nil
}

func (f *fakeSessionDB) CreateSession(ctx context.Context, userID, title string) (*model.ChatSession, error) {
	return &model.ChatSession{ID: "session_2", UserID: userID, Title: title}, nil
}

func (f *fakeSessionDB) AddMessage(ctx context.Context, sessionID, role, content string) (*model.ChatMessage, error) {
	msg := model.ChatMessage{ID: "msg", SessionID: sessionID, Role: role, Content: content, CreatedAt: time.Now()}
	f.messages = append(f.messages, msg)
	return &msg, nil
}

type fakeAssistant struct {
	calls int
	reply string
}

func (f *fakeAssistant) Chat(ctx context.Context, messages []model.ChatMessage) (string, error) {
	f.calls++
	return f.reply, nil
}

func TestChatListSessions_ReadThrough(t *testing.T) {
	fake := &fakeSessionDB{}
	s := &ChatStore{q: fake, caches: testCaches()}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		sessions, err := s.ListSessions(ctx, "user_1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sessions) != 1 {
			t.Errorf("expected 1 session, got %d", len(sessions))
		}
	}
	if fake.listCalls != 1 {
		t.Errorf("expected 1 db call, got %d", fake.listCalls)
	}
}

func TestChatCreateSession_InvalidatesSessionList(t *testing.T) {
	fake := &fakeSessionDB{}
	s := &ChatStore{q: fake, caches: testCaches()}
	ctx := context.Background()

	if _, err := s.ListSessions(ctx, "user_1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateSession(ctx, "user_1", "Sleep help"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ListSessions(ctx, "user_1"); err != nil {
		t.Fatal(err)
	}
	if fake.listCalls != 2 {
		t.Errorf("expected session list refetched after create, got %d calls", fake.listCalls)
	}
}

func TestChatSendMessage_ResponseCache(t *testing.T) {
	fake := &fakeSessionDB{}
	ai := &fakeAssistant{reply: "Try some deep breathing."}
	s := &ChatStore{q: fake, ai: ai, caches: testCaches()}
	ctx := context.Background()

	msg, fromCache, err := s.SendMessage(ctx, "session_1", "user_1", "How do I relax?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fromCache {
		t.Error("first prompt should not come from cache")
	}
	if msg.Role != "assistant" || msg.Content != ai.reply {
		t.Errorf("unexpected assistant message: %+v", msg)
	}

	// Same prompt, differently cased and spaced: one assistant call total.
	_, fromCache, err = s.SendMessage(ctx, "session_1", "user_1", "  how do I   RELAX? ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fromCache {
		t.Error("equivalent prompt should be served from the response cache")
	}
	if ai.calls != 1 {
		t.Errorf("expected 1 assistant call, got %d", ai.calls)
	}
}

func TestChatSendMessage_InvalidatesSession(t *testing.T) {
	fake := &fakeSessionDB{}
	ai := &fakeAssistant{reply: "ok"}
	caches := testCaches()
	s := &ChatStore{q: fake, ai: ai, caches: caches}
	ctx := context.Background()

	if _, err := s.GetSession(ctx, "session_1"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.SendMessage(ctx, "session_1", "user_1", "hello"); err != nil {
		t.Fatal(err)
	}
	if caches.SessionDetail.Len() != 0 {
		t.Error("expected session detail invalidated after message")
	}
}
