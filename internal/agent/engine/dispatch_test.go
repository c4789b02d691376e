package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontdesk-core-poc-v1/server/internal/agent/model"
	"github.com/frontdesk-core-poc-v1/server/internal/agent/tools"
)

type fakeStep struct {
	msg *schema.Message
	err error
}

// fakeModel scripts the reasoning service: each Generate call pops one step.
type fakeModel struct {
	mu    sync.Mutex
	steps []fakeStep
	calls [][]*schema.Message
	tools []*schema.ToolInfo
}

func (f *fakeModel) Generate(_ context.Context, in []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]*schema.Message, len(in))
	copy(cp, in)
	f.calls = append(f.calls, cp)
	if len(f.steps) == 0 {
		return nil, errors.New("unexpected model call")
	}
	st := f.steps[0]
	f.steps = f.steps[1:]
	return st.msg, st.err
}

func (f *fakeModel) Stream(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func (f *fakeModel) WithTools(infos []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	f.tools = infos
	return f, nil
}

func assistantToolCall(name, args string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{Function: schema.FunctionCall{Name: name, Arguments: args}},
		},
	}
}

func acceptedServer(t *testing.T, accepted bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if accepted {
			w.Write([]byte(`{"name":"` + r.URL.Query().Get("name") + `","accepted":true}`))
		} else {
			w.Write([]byte(`{"name":"` + r.URL.Query().Get("name") + `","accepted":false}`))
		}
	}))
}

func newInsuranceRegistry(t *testing.T, baseURL string) *tools.Registry {
	t.Helper()
	client := tools.NewLookupClient(model.InsuranceConfig{BaseURL: baseURL, Timeout: 2})
	registry, err := tools.NewRegistry(context.Background(), tools.NewFetchInsuranceStatusTool(client))
	require.NoError(t, err)
	return registry
}

func TestDispatcherDirectReply(t *testing.T) {
	fm := &fakeModel{steps: []fakeStep{
		{msg: schema.AssistantMessage("We are open from nine to five.", nil)},
	}}
	registry := newInsuranceRegistry(t, "http://localhost:0")
	d, err := NewDispatcher(fm, registry, "gemini-2.5-flash")
	require.NoError(t, err)
	require.Len(t, fm.tools, 1, "registry declarations should be bound at construction")

	history := []*schema.Message{schema.SystemMessage("persona"), schema.UserMessage("what are your hours")}
	result, err := d.Respond(context.Background(), "abc123", history)
	require.NoError(t, err)

	assert.Equal(t, "We are open from nine to five.", result.Reply)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, schema.Assistant, result.Messages[0].Role)
	assert.Len(t, fm.calls, 1, "a direct reply takes a single round")
}

func TestDispatcherToolRound(t *testing.T) {
	srv := acceptedServer(t, true)
	defer srv.Close()

	fm := &fakeModel{steps: []fakeStep{
		{msg: assistantToolCall(tools.ToolFetchInsuranceStatus, `{"name":"Cigna"}`)},
		{msg: schema.AssistantMessage("Yes, we accept Cigna.", nil)},
	}}
	d, err := NewDispatcher(fm, newInsuranceRegistry(t, srv.URL), "gemini-2.5-flash")
	require.NoError(t, err)

	history := []*schema.Message{schema.SystemMessage("persona"), schema.UserMessage("is Cigna accepted")}
	result, err := d.Respond(context.Background(), "abc123", history)
	require.NoError(t, err)

	assert.Equal(t, "Yes, we accept Cigna.", result.Reply)
	require.Len(t, result.Messages, 3, "tool round appends request, result, and final reply")

	request := result.Messages[0]
	assert.Equal(t, schema.Assistant, request.Role)
	require.Len(t, request.ToolCalls, 1)
	assert.Equal(t, "call_1", request.ToolCalls[0].ID, "missing tool_call id is synthesized")

	toolMsg := result.Messages[1]
	assert.Equal(t, schema.Tool, toolMsg.Role)
	assert.Equal(t, "call_1", toolMsg.ToolCallID)
	assert.Contains(t, toolMsg.Content, `"accepted":true`)

	assert.Equal(t, schema.Assistant, result.Messages[2].Role)

	require.Len(t, fm.calls, 2)
	assert.Len(t, fm.calls[1], len(history)+2, "final round replays history plus the tool round")
}

func TestDispatcherUnknownToolStillReplies(t *testing.T) {
	fm := &fakeModel{steps: []fakeStep{
		{msg: assistantToolCall("get_weather", `{"location":"Boston"}`)},
		{msg: schema.AssistantMessage("I can't check that, sorry.", nil)},
	}}
	d, err := NewDispatcher(fm, newInsuranceRegistry(t, "http://localhost:0"), "gemini-2.5-flash")
	require.NoError(t, err)

	result, err := d.Respond(context.Background(), "abc123", []*schema.Message{schema.UserMessage("weather?")})
	require.NoError(t, err, "an unregistered tool never aborts the turn")

	require.Len(t, result.Messages, 3)
	assert.Contains(t, result.Messages[1].Content, "unknown tool")
	assert.Equal(t, "I can't check that, sorry.", result.Reply)
}

func TestDispatcherRetriesFailedRound(t *testing.T) {
	fm := &fakeModel{steps: []fakeStep{
		{err: errors.New("upstream 503")},
		{msg: schema.AssistantMessage("Hello again.", nil)},
	}}
	d, err := NewDispatcher(fm, newInsuranceRegistry(t, "http://localhost:0"), "gemini-2.5-flash")
	require.NoError(t, err)

	result, err := d.Respond(context.Background(), "abc123", []*schema.Message{schema.UserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "Hello again.", result.Reply)
	assert.Len(t, fm.calls, 2)
}

func TestDispatcherFailsAfterRetry(t *testing.T) {
	fm := &fakeModel{steps: []fakeStep{
		{err: errors.New("upstream 503")},
		{err: errors.New("upstream 503")},
	}}
	d, err := NewDispatcher(fm, newInsuranceRegistry(t, "http://localhost:0"), "gemini-2.5-flash")
	require.NoError(t, err)

	_, err = d.Respond(context.Background(), "abc123", []*schema.Message{schema.UserMessage("hi")})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "reasoning service"))
}

func TestDispatcherExecutesFirstToolOnly(t *testing.T) {
	srv := acceptedServer(t, true)
	defer srv.Close()

	multi := assistantToolCall(tools.ToolFetchInsuranceStatus, `{"name":"Cigna"}`)
	multi.ToolCalls = append(multi.ToolCalls, schema.ToolCall{
		Function: schema.FunctionCall{Name: tools.ToolFetchInsuranceStatus, Arguments: `{"name":"Aetna"}`},
	})

	fm := &fakeModel{steps: []fakeStep{
		{msg: multi},
		{msg: schema.AssistantMessage("Yes, Cigna is accepted.", nil)},
	}}
	d, err := NewDispatcher(fm, newInsuranceRegistry(t, srv.URL), "gemini-2.5-flash")
	require.NoError(t, err)

	result, err := d.Respond(context.Background(), "abc123", []*schema.Message{schema.UserMessage("check both")})
	require.NoError(t, err)
	require.Len(t, result.Messages, 3)
	require.Len(t, result.Messages[0].ToolCalls, 1, "extra tool requests are dropped")
}
