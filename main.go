package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/frontdesk-core-poc-v1/server/internal/agent/engine"
	"github.com/frontdesk-core-poc-v1/server/internal/agent/model"
	"github.com/frontdesk-core-poc-v1/server/internal/agent/prompts"
	"github.com/frontdesk-core-poc-v1/server/internal/agent/repo"
	"github.com/frontdesk-core-poc-v1/server/internal/agent/session"
	"github.com/frontdesk-core-poc-v1/server/internal/agent/tools"
	"github.com/frontdesk-core-poc-v1/server/internal/core"
	"github.com/frontdesk-core-poc-v1/server/internal/transport"
	logx "github.com/frontdesk-core-poc-v1/server/pkg/logger"
	pkgredis "github.com/frontdesk-core-poc-v1/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the voice front desk,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Server model.ServerConfig
	Redis  pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Voice agent configs
	Response   model.ResponseModelConfig
	Prompt     model.PromptConfig
	Call       model.CallConfig
	Insurance  model.InsuranceConfig
	Transcript model.TranscriptConfig
}

func main() {
	ctx := context.Background()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		logx.Warn().Err(err).Msg("could not load .env file")
	}

	// Load structured config from env
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("failed to process environment config")
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	captureWindow, err := time.ParseDuration(cfg.Call.CaptureWindow)
	if err != nil {
		logx.Fatal().Err(err).Str("value", cfg.Call.CaptureWindow).Msg("invalid CALL_CAPTURE_WINDOW")
	}

	// Transcript archive is optional: without REDIS_URL the call state stays
	// purely in-memory.
	var archive repo.TranscriptArchive
	if cfg.Redis.URL != "" {
		ttl, err := time.ParseDuration(cfg.Transcript.TTL)
		if err != nil {
			logx.Fatal().Err(err).Str("value", cfg.Transcript.TTL).Msg("invalid TRANSCRIPT_TTL")
		}
		rdb, err := cfg.Redis.New()
		if err != nil {
			logx.Fatal().Err(err).Msg("failed to initialise Redis client")
		}
		defer rdb.Close()
		archive = repo.NewRedisTranscriptArchive(rdb, ttl)
		logx.Info().Msg("transcript archive enabled")
	}

	chatModel, err := engine.NewChatModel(ctx, engine.ChatModelConfig{
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Response: &cfg.Response,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to create chat model")
	}

	lookup := tools.NewLookupClient(cfg.Insurance)
	registry, err := tools.NewRegistry(ctx, tools.NewFetchInsuranceStatusTool(lookup))
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to build tool registry")
	}

	dispatcher, err := engine.NewDispatcher(chatModel, registry, cfg.Response.Model)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to build dispatcher")
	}

	store := session.NewStore(cfg.Prompt)
	eng := engine.New(store, dispatcher, archive)

	mux := http.NewServeMux()
	mux.Handle("/incoming-call", transport.NewAnswerHandler(cfg.Server.RelayURL, prompts.Greeting))
	mux.Handle("/relay", transport.NewRelayHandler(eng, captureWindow))
	mux.Handle("/call-status", transport.NewStatusHandler(eng))

	logx.Info().
		Str("addr", cfg.Server.Addr).
		Str("relay_url", cfg.Server.RelayURL).
		Msg("front desk voice server listening")

	if err := http.ListenAndServe(cfg.Server.Addr, mux); err != nil {
		logx.Fatal().Err(err).Msg("server stopped")
	}
}
