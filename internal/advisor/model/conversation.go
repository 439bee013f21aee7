package model

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ai-advisor/server/internal/visualization"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is one entry of a conversation as exchanged with the web client.
type ChatMessage struct {
	ID             string                     `json:"id,omitempty"`
	Role           Role                       `json:"role"`
	Content        string                     `json:"content"`
	CreatedAt      time.Time                  `json:"created_at,omitzero"`
	Visualizations []visualization.Descriptor `json:"visualizations,omitempty"`
}

// Conversation is a titled sequence of chat messages.
type Conversation struct {
	ID        string        `json:"id"`
	Title     string        `json:"title,omitempty"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at,omitzero"`
	UpdatedAt time.Time     `json:"updated_at,omitzero"`
}

// ConversationSummary is the row shown in a conversation list.
type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Preview      string    `json:"preview"`
	MessageCount int       `json:"message_count"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
}

const (
	untitledConversation = "New conversation"
	titleMaxRunes        = 60
	previewMaxRunes      = 120
)

// Summary derives the list row for c. Without an explicit title the first
// user message is used. UpdatedAt falls back to the newest message time.
func (c Conversation) Summary() ConversationSummary {
	s := ConversationSummary{
		ID:           c.ID,
		Title:        strings.TrimSpace(c.Title),
		MessageCount: len(c.Messages),
		UpdatedAt:    c.UpdatedAt,
	}
	if s.Title == "" {
		for _, m := range c.Messages {
			if m.Role == RoleUser && strings.TrimSpace(m.Content) != "" {
				s.Title = truncateRunes(m.Content, titleMaxRunes)
				break
			}
		}
	}
	if s.Title == "" {
		s.Title = untitledConversation
	}
	for i := len(c.Messages) - 1; i >= 0; i-- {
		m := c.Messages[i]
		if m.Role == RoleSystem || strings.TrimSpace(m.Content) == "" {
			continue
		}
		s.Preview = truncateRunes(m.Content, previewMaxRunes)
		break
	}
	if s.UpdatedAt.IsZero() {
		for _, m := range c.Messages {
			if m.CreatedAt.After(s.UpdatedAt) {
				s.UpdatedAt = m.CreatedAt
			}
		}
	}
	return s
}

// SortSummaries orders summaries most recently updated first. Ties keep
// their input order.
func SortSummaries(summaries []ConversationSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
}

func truncateRunes(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max])) + "…"
}

// ReplyCache stores advisor results keyed by request fingerprint.
type ReplyCache interface {
	// Get returns the cached result, or false when the key is absent.
	Get(ctx context.Context, key string) (*AskResult, bool, error)

	// Put stores the result under key.
	Put(ctx context.Context, key string, result *AskResult) error
}
