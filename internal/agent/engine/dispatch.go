package engine

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/frontdesk-core-poc-v1/server/internal/agent/model"
	"github.com/frontdesk-core-poc-v1/server/internal/agent/tools"
	logx "github.com/frontdesk-core-poc-v1/server/pkg/logger"
)

// Responder turns a call's message history into the next spoken reply.
type Responder interface {
	Respond(ctx context.Context, callSID string, history []*schema.Message) (*TurnResult, error)
}

// TurnResult is the outcome of one dispatch loop run. Messages holds every
// message produced during the turn, in conversational order, for the caller
// to append to the session.
type TurnResult struct {
	Reply    string
	Messages []*schema.Message
	CostUSD  float64
}

// Dispatcher implements the two-round tool dispatch protocol: one completion
// that may request a tool, at most one tool execution, and one final
// completion that cannot request tools. Bounding the loop to a single tool
// round caps per-turn latency at two reasoning round trips plus one tool call.
type Dispatcher struct {
	base      einomodel.ToolCallingChatModel
	bound     einomodel.ToolCallingChatModel
	registry  *tools.Registry
	modelName string
}

func NewDispatcher(base einomodel.ToolCallingChatModel, registry *tools.Registry, modelName string) (*Dispatcher, error) {
	bound, err := base.WithTools(registry.Infos())
	if err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools to response model")
		return nil, fmt.Errorf("failed to bind tools: %w", err)
	}
	return &Dispatcher{
		base:      base,
		bound:     bound,
		registry:  registry,
		modelName: modelName,
	}, nil
}

// Respond runs the dispatch loop over the full message history. The returned
// error means both the completion and its retry failed; no messages are
// produced in that case.
func (d *Dispatcher) Respond(ctx context.Context, callSID string, history []*schema.Message) (*TurnResult, error) {
	out, err := d.generate(ctx, d.bound, callSID, history)
	if err != nil {
		return nil, err
	}

	result := &TurnResult{CostUSD: d.logUsage(callSID, out)}

	if len(out.ToolCalls) == 0 {
		result.Messages = append(result.Messages, out)
		result.Reply = out.Content
		return result, nil
	}

	// One tool round per turn: execute the first requested call only.
	if len(out.ToolCalls) > 1 {
		logx.Warn().
			Str("call_sid", callSID).
			Int("requested", len(out.ToolCalls)).
			Msg("reasoning service requested multiple tools, executing the first only")
		out.ToolCalls = out.ToolCalls[:1]
	}
	tc := out.ToolCalls[0]
	if strings.TrimSpace(tc.ID) == "" {
		// Some providers omit tool_call ids; synthesize one so the tool
		// result can reference its request.
		tc.ID = "call_1"
		out.ToolCalls[0].ID = tc.ID
	}

	logx.Debug().
		Str("call_sid", callSID).
		Str("tool", tc.Function.Name).
		Str("arguments", tc.Function.Arguments).
		Msg("executing tool round")

	toolResult := d.registry.Execute(ctx, tc.Function.Name, tc.Function.Arguments)
	toolMsg := schema.ToolMessage(toolResult, tc.ID, schema.WithToolName(tc.Function.Name))
	result.Messages = append(result.Messages, out, toolMsg)

	// Final completion over the tool round; the unbound model cannot request
	// another tool.
	full := make([]*schema.Message, 0, len(history)+2)
	full = append(full, history...)
	full = append(full, out, toolMsg)

	final, err := d.generate(ctx, d.base, callSID, full)
	if err != nil {
		return nil, err
	}
	result.CostUSD += d.logUsage(callSID, final)
	result.Messages = append(result.Messages, final)
	result.Reply = final.Content
	return result, nil
}

// generate calls the model once and retries a failure once before giving up.
func (d *Dispatcher) generate(ctx context.Context, m einomodel.BaseChatModel, callSID string, msgs []*schema.Message) (*schema.Message, error) {
	out, err := m.Generate(ctx, msgs)
	if err == nil {
		return out, nil
	}
	logx.Warn().Err(err).Str("call_sid", callSID).Msg("reasoning service call failed, retrying once")

	out, err = m.Generate(ctx, msgs)
	if err != nil {
		logx.Error().Err(err).Str("call_sid", callSID).Msg("reasoning service retry failed")
		return nil, fmt.Errorf("reasoning service: %w", err)
	}
	return out, nil
}

// logUsage computes and logs the USD cost of one completion.
func (d *Dispatcher) logUsage(callSID string, out *schema.Message) float64 {
	if out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return 0
	}
	usage := out.ResponseMeta.Usage
	pricing := model.ResolvePricing(d.modelName)
	inC, outC, totalC := model.ComputeCost(usage, pricing)
	logx.Debug().
		Str("call_sid", callSID).
		Str("model", d.modelName).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Int("total_tokens", usage.TotalTokens).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", totalC).
		Msg("LLM usage")
	return totalC
}

var _ Responder = (*Dispatcher)(nil)
