package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/ai-advisor/server/internal/advisor/model"
)

//go:embed template/advisor_prompt.txt
var advisorSystemPrompt string

// RenderAdvisorSystem renders the advisor system prompt via the Eino prompt
// component so prompt callbacks fire.
func RenderAdvisorSystem(ctx context.Context, config model.AdvisorPromptConfig, now time.Time) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(advisorSystemPrompt),
	)
	vars := map[string]any{
		"AdvisorName": config.AdvisorName,
		"Domain":      config.Domain,
		"Today":       now.UTC().Format("2006-01-02"),
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("advisor prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("advisor prompt render: empty result")
	}
	return msgs[0].Content, nil
}
