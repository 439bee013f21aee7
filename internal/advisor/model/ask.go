package model

import (
	"github.com/ai-advisor/server/internal/visualization"
)

// AppState stores per-invocation state for the advisor chain.
// It is registered as local state via compose.WithGenLocalState and only
// touched inside state handlers or compose.ProcessState.
type AppState struct {
	ConversationID string
	ModelName      string
	TotalCostUSD   float64
}

// AskInput is a single question to the advisor together with the prior turns
// of the conversation. History is supplied by the caller on every request.
type AskInput struct {
	ConversationID string        `json:"conversation_id"`
	Question       string        `json:"question"`
	History        []ChatMessage `json:"history,omitempty"`
}

// AskResult is the advisor's answer with its normalized visualizations.
type AskResult struct {
	ConversationID string                     `json:"conversation_id"`
	Answer         string                     `json:"answer"`
	Visualizations []visualization.Descriptor `json:"visualizations"`

	// RawVisualizations is the presence-filtered passthrough of the same entries.
	RawVisualizations []map[string]any `json:"raw_visualizations"`
	Cached            bool             `json:"cached"`
	CostUSD           float64          `json:"cost_usd"`
	Model             string           `json:"model,omitempty"`
}

// Message converts the result into the assistant chat message shown in the UI.
func (r *AskResult) Message() ChatMessage {
	return ChatMessage{
		Role:           RoleAssistant,
		Content:        r.Answer,
		Visualizations: r.Visualizations,
	}
}

// ReplyPayload is the model output after parsing, before normalization.
type ReplyPayload struct {
	Answer string
	// Raw is the decoded JSON object, nil when the reply was plain text.
	Raw             map[string]any
	ParsingMetadata map[string]any
}
