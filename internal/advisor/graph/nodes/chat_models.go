package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/ai-advisor/server/internal/advisor/model"
	logx "github.com/ai-advisor/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey      string
	BaseURL     string
	ModelConfig *model.AdvisorModelConfig
}

// NewChatModel creates the Gemini-backed advisor chat model.
func NewChatModel(ctx context.Context, config ChatModelConfig) (*gemini.ChatModel, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	if config.ModelConfig == nil {
		return nil, fmt.Errorf("advisor model config is nil")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	cfg := &gemini.Config{
		Client:      client,
		Model:       config.ModelConfig.Model,
		Temperature: &config.ModelConfig.Temperature,
		MaxTokens:   &config.ModelConfig.MaxTokens,
	}
	if config.ModelConfig.ThinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(config.ModelConfig.ThinkingBudget),
		}
	}

	chatModel, err := gemini.NewChatModel(ctx, cfg)
	if err != nil {
		logx.Error().Err(err).Str("model", config.ModelConfig.Model).Msg("Error creating advisor model")
		return nil, fmt.Errorf("error creating advisor model: %w", err)
	}

	logx.Debug().Str("model", config.ModelConfig.Model).Msg("Advisor chat model created")
	return chatModel, nil
}
