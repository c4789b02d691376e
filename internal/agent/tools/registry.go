package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	logx "github.com/frontdesk-core-poc-v1/server/pkg/logger"
)

// Registry maps tool names to executable capabilities. It is populated once
// at startup and immutable afterwards, so concurrent reads need no locking.
type Registry struct {
	infos []*schema.ToolInfo
	tools map[string]tool.InvokableTool
}

// NewRegistry builds a registry from the given tools. Every tool must be
// invokable and carry a unique name.
func NewRegistry(ctx context.Context, ts ...tool.BaseTool) (*Registry, error) {
	r := &Registry{tools: make(map[string]tool.InvokableTool, len(ts))}
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		invokable, ok := t.(tool.InvokableTool)
		if !ok {
			return nil, fmt.Errorf("tool %q is not invokable", info.Name)
		}
		if _, exists := r.tools[info.Name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", info.Name)
		}
		r.tools[info.Name] = invokable
		r.infos = append(r.infos, info)
	}
	return r, nil
}

// Infos returns the tool declarations sent to the reasoning service.
func (r *Registry) Infos() []*schema.ToolInfo {
	out := make([]*schema.ToolInfo, len(r.infos))
	copy(out, r.infos)
	return out
}

// Execute runs the named tool and always returns a result payload. Unknown
// names and execution failures yield a JSON failure marker instead of an
// error, so a bad tool round never aborts the caller's turn.
func (r *Registry) Execute(ctx context.Context, name, argumentsJSON string) string {
	t, ok := r.tools[name]
	if !ok {
		logx.Warn().Str("tool", name).Msg("reasoning service requested unknown tool")
		return failureResult(fmt.Sprintf("unknown tool %q", name))
	}

	out, err := t.InvokableRun(ctx, argumentsJSON)
	if err != nil {
		logx.Error().Err(err).Str("tool", name).Msg("tool execution failed")
		return failureResult(fmt.Sprintf("tool %q failed: %v", name, err))
	}
	return out
}

func failureResult(msg string) string {
	b, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return `{"error":"tool execution failed"}`
	}
	return string(b)
}
