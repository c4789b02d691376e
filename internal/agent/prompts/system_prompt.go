package prompts

import (
	_ "embed"
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/frontdesk-core-poc-v1/server/internal/agent/model"
	"github.com/frontdesk-core-poc-v1/server/internal/agent/tools"
)

//go:embed template/system_prompt.txt
var systemPromptTemplate string

// RenderSystem renders the persona system prompt for a new call via the Eino
// prompt component. The call start time is baked in so the reasoning service
// can ground relative-time references.
func RenderSystem(ctx context.Context, cfg model.PromptConfig, startedAt time.Time) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(systemPromptTemplate),
	)
	vars := map[string]any{
		"OfficeType":    cfg.OfficeType,
		"OfficeName":    cfg.OfficeName,
		"InsuranceTool": tools.ToolFetchInsuranceStatus,
		"CallStartedAt": startedAt.Format(time.RFC1123),
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}
