package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryExecuteKnownTool(t *testing.T) {
	client := lookupServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"` + r.URL.Query().Get("name") + `","accepted":true}`))
	})
	registry, err := NewRegistry(context.Background(), NewFetchInsuranceStatusTool(client))
	require.NoError(t, err)

	out := registry.Execute(context.Background(), ToolFetchInsuranceStatus, `{"name":"Humana"}`)

	var result FetchInsuranceStatusOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Accepted)
}

func TestRegistryExecuteUnknownTool(t *testing.T) {
	registry, err := NewRegistry(context.Background())
	require.NoError(t, err)

	out := registry.Execute(context.Background(), "get_weather", `{}`)

	var failure map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &failure))
	assert.Contains(t, failure["error"], "unknown tool")
}

func TestRegistryExecuteToolFailure(t *testing.T) {
	client := lookupServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	})
	registry, err := NewRegistry(context.Background(), NewFetchInsuranceStatusTool(client))
	require.NoError(t, err)

	out := registry.Execute(context.Background(), ToolFetchInsuranceStatus, `{"name":""}`)

	var failure map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &failure))
	assert.Contains(t, failure["error"], "failed")
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	client := lookupServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := NewRegistry(context.Background(),
		NewFetchInsuranceStatusTool(client),
		NewFetchInsuranceStatusTool(client),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate tool name")
}

func TestRegistryInfosIsACopy(t *testing.T) {
	client := lookupServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	})
	registry, err := NewRegistry(context.Background(), NewFetchInsuranceStatusTool(client))
	require.NoError(t, err)

	infos := registry.Infos()
	require.Len(t, infos, 1)
	infos[0] = nil
	require.NotNil(t, registry.Infos()[0])
}
