package transport

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontdesk-core-poc-v1/server/internal/agent/engine"
	"github.com/frontdesk-core-poc-v1/server/internal/agent/model"
	"github.com/frontdesk-core-poc-v1/server/internal/agent/session"
)

func newTestEngine(reply string) *engine.Engine {
	store := session.NewStore(model.PromptConfig{
		OfficeType: "doctor's office",
		OfficeName: "Lakeside Family Medicine",
	})
	return engine.New(store, &scriptedResponder{reply: reply}, nil)
}

func TestStatusHandlerRemovesSessionOnTerminalStatus(t *testing.T) {
	eng := newTestEngine("hi")
	eng.HandleSetup(context.Background(), "abc123")
	h := NewStatusHandler(eng)

	rec := postForm(t, h, "/call-status", url.Values{
		"CallSid":    {"abc123"},
		"CallStatus": {"completed"},
	})

	require.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := eng.Store().Get("abc123")
	assert.False(t, ok)
}

func TestStatusHandlerKeepsSessionOnProgressStatus(t *testing.T) {
	eng := newTestEngine("hi")
	eng.HandleSetup(context.Background(), "abc123")
	h := NewStatusHandler(eng)

	rec := postForm(t, h, "/call-status", url.Values{
		"CallSid":    {"abc123"},
		"CallStatus": {"in-progress"},
	})

	require.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := eng.Store().Get("abc123")
	assert.True(t, ok)
}
