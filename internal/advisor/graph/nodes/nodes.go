package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/ai-advisor/server/internal/advisor/graph/parsers"
	"github.com/ai-advisor/server/internal/advisor/graph/prompts"
	"github.com/ai-advisor/server/internal/advisor/model"
	"github.com/ai-advisor/server/internal/visualization"
	logx "github.com/ai-advisor/server/pkg/logger"
)

const (
	NodeInputConverter   = "InputConverter"
	NodeAdvisorChatModel = "AdvisorChatModel"
	NodeReplyParser      = "ReplyParser"
)

const DefaultMaxHistory = 20

// NewInputConverterPreHandler records the conversation in local state and
// resets per-query accumulators.
func NewInputConverterPreHandler(modelName string) func(context.Context, model.AskInput, *model.AppState) (model.AskInput, error) {
	return func(ctx context.Context, in model.AskInput, s *model.AppState) (model.AskInput, error) {
		s.ConversationID = in.ConversationID
		s.ModelName = modelName
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewInputConverterNode builds the model input: system prompt, trimmed
// history, then the current question.
func NewInputConverterNode(promptCfg model.AdvisorPromptConfig, maxHistory int, now func() time.Time) *compose.Lambda {
	if now == nil {
		now = time.Now
	}
	return compose.InvokableLambda(func(ctx context.Context, input model.AskInput) ([]*schema.Message, error) {
		systemPrompt, err := prompts.RenderAdvisorSystem(ctx, promptCfg, now())
		if err != nil {
			return nil, fmt.Errorf("render advisor system prompt: %w", err)
		}

		history := ToSchemaMessages(input.History)
		history = trimTail(history, normalizeMaxHistory(maxHistory))

		messages := make([]*schema.Message, 0, len(history)+2)
		messages = append(messages, schema.SystemMessage(systemPrompt))
		messages = append(messages, history...)
		messages = append(messages, schema.UserMessage(strings.TrimSpace(input.Question)))
		return messages, nil
	})
}

// NewAdvisorChatModelPostHandler computes usage cost and accumulates it in state.
func NewAdvisorChatModelPostHandler(modelName string) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		if out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
			return out, nil
		}
		usage := out.ResponseMeta.Usage
		inC, outC, totalC := model.ComputeCost(usage, model.ResolvePricing(modelName))
		logx.Debug().
			Str("conversation_id", state.ConversationID).
			Str("node", NodeAdvisorChatModel).
			Str("model", modelName).
			Int("prompt_tokens", usage.PromptTokens).
			Int("completion_tokens", usage.CompletionTokens).
			Int("total_tokens", usage.TotalTokens).
			Float64("input_cost_usd", inC).
			Float64("output_cost_usd", outC).
			Float64("total_cost_usd", totalC).
			Msg("LLM usage")

		state.TotalCostUSD += totalC
		return out, nil
	}
}

// NewReplyParserNode parses the model reply and normalizes its visualizations.
func NewReplyParserNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, resp *schema.Message) (*model.AskResult, error) {
		if resp == nil {
			return nil, fmt.Errorf("model returned nil message")
		}
		payload, err := parsers.ParseReply(resp.Content)
		if err != nil {
			logx.Error().Err(err).Msg("Error parsing advisor reply")
			return nil, err
		}
		if errs, ok := payload.ParsingMetadata["parsing_errors"]; ok {
			logx.Warn().Interface("parsing_errors", errs).Msg("Advisor reply parsed with errors")
		}

		result := &model.AskResult{
			Answer:            payload.Answer,
			Visualizations:    visualization.NormalizeAll(payload.Raw),
			RawVisualizations: visualization.Extract(payload.Raw),
		}
		err = compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			result.ConversationID = state.ConversationID
			result.CostUSD = state.TotalCostUSD
			result.Model = state.ModelName
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}
		return result, nil
	})
}

// ToSchemaMessages converts client history into model messages. System
// messages, unknown roles and empty contents are dropped.
func ToSchemaMessages(history []model.ChatMessage) []*schema.Message {
	out := make([]*schema.Message, 0, len(history))
	for _, m := range history {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		switch m.Role {
		case model.RoleUser:
			out = append(out, schema.UserMessage(content))
		case model.RoleAssistant:
			out = append(out, schema.AssistantMessage(content, nil))
		}
	}
	return out
}
