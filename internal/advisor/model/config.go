package model

import "time"

// ================ Config ================
type AdvisorModelConfig struct {
	Model       string  `envconfig:"ADVISOR_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"ADVISOR_MAX_TOKENS" default:"4000"`
	Temperature float32 `envconfig:"ADVISOR_TEMPERATURE" default:"0.3"`

	// MaxHistory caps the number of prior messages sent to the model.
	MaxHistory int `envconfig:"ADVISOR_MAX_HISTORY" default:"20"`

	// ThinkingBudget of 0 disables thoughts.
	ThinkingBudget int32 `envconfig:"ADVISOR_THINKING_BUDGET" default:"1024"`
}

type AdvisorPromptConfig struct {
	AdvisorName string `envconfig:"PROMPT_ADVISOR_NAME" default:"AI Advisor"`
	Domain      string `envconfig:"PROMPT_DOMAIN" default:"business strategy and operations"`
}

type CacheConfig struct {
	TTL time.Duration `envconfig:"CACHE_TTL" default:"10m"`
}
