// Package session holds the conversation state: one Session per chat
// thread, an append-only transcript while the thread is live, and the
// free-form context data that command handlers scope to the thread.
package session

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Context keys mutated by command handlers.
const (
	CtxSourceLanguage = "sourceLanguage"
	CtxTargetLanguage = "targetLanguage"
	CtxAttachedFile   = "attachedFile"
	CtxCategory       = "category"
)

// titleLimit caps a derived session title; longer first messages are cut
// at 27 runes plus an ellipsis.
const titleLimit = 30

// Message is one transcript entry. Display order is primarily by
// Timestamp; insertion order breaks ties.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module,omitempty"`
}

// Session is one chat thread. The transcript is append-only for the
// session's live lifetime and fully replaced only on load.
type Session struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	ActiveModule  string            `json:"active_module,omitempty"`
	Context       map[string]string `json:"context_data"`
	Transcript    []Message         `json:"messages"`
	CreatedAt     time.Time         `json:"created_at"`
	LastMessageAt time.Time         `json:"last_message_at"`
}

// New creates a fresh session: new id, no active module, empty transcript.
// The caller is responsible for showing the welcome message.
func New() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:            uuid.NewString(),
		Title:         "New Chat",
		Context:       map[string]string{},
		Transcript:    []Message{},
		CreatedAt:     now,
		LastMessageAt: now,
	}
}

// Append adds a message to the transcript and updates session bookkeeping.
// The message becomes the session's last activity regardless of how its
// timestamp compares to the creation time; live appends are already
// monotone. The first user message becomes the session title.
func (s *Session) Append(msg Message) {
	s.Transcript = append(s.Transcript, msg)
	s.LastMessageAt = msg.Timestamp
	if msg.Role == RoleUser && s.Title == "New Chat" {
		s.Title = deriveTitle(msg.Content)
	}
}

// Clear resets the conversation but keeps the session id: transcript and
// context emptied, active module dropped.
func (s *Session) Clear() {
	s.Transcript = []Message{}
	s.ActiveModule = ""
	s.Context = map[string]string{}
	s.Title = "New Chat"
}

// SortTranscript orders messages for display: by timestamp, with original
// insertion order preserved for equal timestamps. Used on session load;
// live appends are already in order.
func (s *Session) SortTranscript() {
	sort.SliceStable(s.Transcript, func(i, j int) bool {
		return s.Transcript[i].Timestamp.Before(s.Transcript[j].Timestamp)
	})
}

func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleLimit {
		return content
	}
	return string(runes[:titleLimit-3]) + "..."
}

// Welcome renders the greeting shown on session start and after /clear.
// The salutation tracks the local time of day.
func Welcome(at time.Time) string {
	greeting := "Good evening"
	switch h := at.Hour(); {
	case h < 12:
		greeting = "Good morning"
	case h < 18:
		greeting = "Good afternoon"
	}
	return greeting + " and welcome to LightYearAI! " +
		"What would you like to work on today? You can type a slash command like /study, " +
		"or simply ask in natural language like \"help me with my homework\". " +
		"Type /help to see everything I can do."
}
