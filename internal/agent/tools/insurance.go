package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/frontdesk-core-poc-v1/server/internal/agent/model"
	errx "github.com/frontdesk-core-poc-v1/server/internal/core/error"
	logx "github.com/frontdesk-core-poc-v1/server/pkg/logger"
)

// ===================================
// Insurance Acceptance Lookup Tool
// ===================================

const ToolFetchInsuranceStatus = "fetch_insurance_status"

// KnownProviders is the enumerated set of insurance provider names the tool
// accepts. The reasoning service is told to pick from this list.
var KnownProviders = []string{
	"Aetna",
	"Blue Cross Blue Shield",
	"Cigna",
	"Humana",
	"Kaiser Permanente",
	"Medicaid",
	"Medicare",
	"UnitedHealthcare",
}

// LookupClient talks to the external insurance status service.
type LookupClient struct {
	baseURL string
	httpc   *http.Client
}

func NewLookupClient(cfg model.InsuranceConfig) *LookupClient {
	return &LookupClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc:   &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
	}
}

// InsuranceStatus queries GET /get_insurance_status?name=<provider>.
// A 404 maps to errx.ErrUnknownProvider; other failures to a lookup error.
func (c *LookupClient) InsuranceStatus(ctx context.Context, name string) (*model.InsuranceStatus, error) {
	q := url.Values{"name": {name}}
	endpoint := c.baseURL + "/get_insurance_status?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errx.WrapLookup(err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errx.WrapLookup(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errx.WrapLookup(fmt.Errorf("%w: %s", errx.ErrUnknownProvider, name))
	case resp.StatusCode != http.StatusOK:
		return nil, errx.WrapLookup(fmt.Errorf("lookup service returned status %d", resp.StatusCode))
	}

	var status model.InsuranceStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, errx.WrapLookup(fmt.Errorf("decode lookup response: %w", err))
	}
	return &status, nil
}

type FetchInsuranceStatusInput struct {
	Name string `json:"name"`
}

type FetchInsuranceStatusOutput struct {
	Name     string `json:"name"`
	Accepted bool   `json:"accepted"`
	Note     string `json:"note,omitempty"`
}

// NewFetchInsuranceStatusTool builds the insurance acceptance tool. Lookup
// failures never surface as errors: the tool answers "not accepted" with a
// note instead, so the spoken conversation always gets a definite answer.
func NewFetchInsuranceStatusTool(client *LookupClient) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolFetchInsuranceStatus,
			Desc: "Check whether the office accepts a health insurance provider. Returns an accepted flag for the given provider name. Use this tool whenever the caller asks about insurance coverage or verification.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"name": {
					Type:     "string",
					Desc:     "Insurance provider name, exactly as the caller said it. Must be one of the known provider names.",
					Enum:     KnownProviders,
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *FetchInsuranceStatusInput) (*FetchInsuranceStatusOutput, error) {
			name := strings.TrimSpace(in.Name)
			if name == "" {
				return nil, fmt.Errorf("name is required")
			}

			status, err := client.InsuranceStatus(ctx, name)
			if err != nil {
				// Fail closed: a provider we cannot verify is reported as not accepted.
				logx.Warn().Err(err).Str("provider", name).Msg("insurance lookup failed, answering not accepted")
				note := "lookup unavailable, provider could not be verified"
				if errors.Is(err, errx.ErrUnknownProvider) {
					note = "unknown provider"
				}
				return &FetchInsuranceStatusOutput{Name: name, Accepted: false, Note: note}, nil
			}

			return &FetchInsuranceStatusOutput{Name: status.Name, Accepted: status.Accepted}, nil
		},
	)
}
