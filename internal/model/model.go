// Package model holds the domain types shared by the db, store and api layers.
package model

import (
	"encoding/json"
	"time"
)

// Post is a forum post, including the viewer-dependent IsLiked flag and
// summary counters that listings embed.
type Post struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"author_id"`
	AuthorName    string    `json:"author_name"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	IsLiked       bool      `json:"is_liked"`
	Comments      []Comment `json:"comments,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Comment is a nested child of a post. Comments are never cached on their
// own; they live inside their parent post's detail entry.
type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	LikesCount int       `json:"likes_count"`
	IsLiked    bool      `json:"is_liked"`
	Replies    []Reply   `json:"replies,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Reply is a nested child of a comment.
type Reply struct {
	ID         string    `json:"id"`
	CommentID  string    `json:"comment_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	LikesCount int       `json:"likes_count"`
	IsLiked    bool      `json:"is_liked"`
	CreatedAt  time.Time `json:"created_at"`
}

// PostPage is one offset-paginated page of forum posts.
type PostPage struct {
	Posts   []Post `json:"posts"`
	Page    int    `json:"page"`
	HasMore bool   `json:"has_more"`
	Total   int    `json:"total"`
}

// Tutorial is a guided wellness tutorial.
type Tutorial struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Summary   string    `json:"summary"`
	Body      string    `json:"body"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// TutorialPage is one cursor-paginated page of tutorials. NextCursor is the
// id of the last tutorial on the page, empty when there are no more pages.
type TutorialPage struct {
	Tutorials  []Tutorial `json:"tutorials"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// ChatSession groups the messages of one assistant conversation.
type ChatSession struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ChatMessage is a single turn in a session.
type ChatMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// User is the profile document, with free-form preferences kept as raw JSON
// (jsonb in Postgres) since the client owns their shape.
type User struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Preferences json.RawMessage `json:"preferences,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Assessment is the latest personality/wellbeing assessment for a user, with
// raw JSON answers (jsonb in Postgres).
type Assessment struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Kind        string          `json:"kind"` // e.g. "perma", "mbti"
	Answers     json.RawMessage `json:"answers"`
	Score       float64         `json:"score"`
	CompletedAt time.Time       `json:"completed_at"`
}

// Recommendation is one personalized content suggestion from the
// recommendation API.
type Recommendation struct {
	ID     string  `json:"id"`
	Kind   string  `json:"kind"` // "tutorial", "meditation", "article"
	Title  string  `json:"title"`
	URL    string  `json:"url"`
	Reason string  `json:"reason,omitempty"`
	Score  float64 `json:"score"`
}
