// Package engine drives the per-call conversation: the turn-taking state
// machine, the tool dispatch loop, and the farewell fast path.
package engine

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/frontdesk-core-poc-v1/server/internal/agent/model"
	"github.com/frontdesk-core-poc-v1/server/internal/agent/prompts"
	"github.com/frontdesk-core-poc-v1/server/internal/agent/repo"
	"github.com/frontdesk-core-poc-v1/server/internal/agent/session"
	logx "github.com/frontdesk-core-poc-v1/server/pkg/logger"
)

// Channel is the engine's view of the duplex media channel for one call.
type Channel interface {
	// SendText emits a reply for text-to-speech rendering. last marks the
	// complete reply for the turn.
	SendText(ctx context.Context, text string, last bool) error
	// End asks the carrier to terminate the call.
	End(ctx context.Context) error
}

// terminalStatuses are carrier lifecycle statuses that end a call.
var terminalStatuses = map[string]bool{
	"completed": true,
	"failed":    true,
	"canceled":  true,
	"busy":      true,
	"no-answer": true,
}

// Engine is the turn-taking state machine over the session store.
type Engine struct {
	store     *session.Store
	responder Responder
	archive   repo.TranscriptArchive
}

func New(store *session.Store, responder Responder, archive repo.TranscriptArchive) *Engine {
	return &Engine{
		store:     store,
		responder: responder,
		archive:   archive,
	}
}

// Store exposes the session store, mainly for webhook handlers and tests.
func (e *Engine) Store() *session.Store {
	return e.store
}

// HandleSetup creates the session for a newly opened channel. The fixed
// greeting is spoken by the carrier from the answer document, so setup only
// performs the greeting -> awaiting-speech transition and lets the transport
// open the capture window.
func (e *Engine) HandleSetup(ctx context.Context, callSID string) {
	sess, created := e.store.GetOrCreate(ctx, callSID)
	if !created {
		logx.Warn().Str("call_sid", callSID).Msg("setup for an existing session")
	}

	sess.Lock()
	defer sess.Unlock()
	if sess.State == model.StateGreeting {
		sess.State = model.StateAwaitingSpeech
	}
	logx.Info().Str("call_sid", callSID).Msg("call started")
}

// HandlePrompt processes one caller utterance. It returns true when the call
// ended and the channel should be torn down.
func (e *Engine) HandlePrompt(ctx context.Context, callSID, utterance string, confidence float64, ch Channel) bool {
	sess, ok := e.store.Get(callSID)
	if !ok {
		// A prompt for a call we never saw: recover with a fresh session and
		// an apology instead of failing the event.
		logx.Warn().Str("call_sid", callSID).Msg("prompt for unknown session, starting over")
		sess, _ = e.store.GetOrCreate(ctx, callSID)
		sess.Lock()
		sess.State = model.StateAwaitingSpeech
		sess.Unlock()
		e.speak(ctx, ch, callSID, prompts.RestartApology)
		return false
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.State == model.StateEnded {
		return true
	}

	utterance = strings.TrimSpace(utterance)
	logx.Info().
		Str("call_sid", callSID).
		Str("utterance", utterance).
		Float64("confidence", confidence).
		Msg("caller said")

	if utterance == "" {
		e.speak(ctx, ch, callSID, prompts.EmptyUtteranceReprompt)
		sess.State = model.StateAwaitingSpeech
		return false
	}

	sess.State = model.StateProcessing
	sess.TurnCount++
	sess.NoInputRetries = 0

	if IsFarewell(utterance) {
		sess.Append(schema.UserMessage(utterance))
		sess.Append(schema.AssistantMessage(prompts.FarewellClosing, nil))
		e.endCall(ctx, sess, ch, prompts.FarewellClosing)
		return true
	}

	sess.Append(schema.UserMessage(utterance))

	result, err := e.responder.Respond(ctx, callSID, sess.History())
	if err != nil {
		// Reasoning failure policy: apologize and keep the call alive.
		logx.Error().Err(err).Str("call_sid", callSID).Msg("turn failed")
		sess.Append(schema.AssistantMessage(prompts.TurnApology, nil))
		e.speak(ctx, ch, callSID, prompts.TurnApology)
		sess.State = model.StateAwaitingSpeech
		return false
	}

	sess.Append(result.Messages...)
	sess.TotalCostUSD += result.CostUSD

	e.speak(ctx, ch, callSID, result.Reply)
	sess.State = model.StateAwaitingSpeech
	return false
}

// HandleNoInput processes a capture-window timeout. The first timeout
// re-prompts once; a second consecutive timeout ends the call.
func (e *Engine) HandleNoInput(ctx context.Context, callSID string, ch Channel) bool {
	sess, ok := e.store.Get(callSID)
	if !ok {
		e.speak(ctx, ch, callSID, prompts.TroubleClosing)
		if err := ch.End(ctx); err != nil {
			logx.Warn().Err(err).Str("call_sid", callSID).Msg("failed to end channel")
		}
		return true
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.State == model.StateEnded {
		return true
	}

	sess.State = model.StateNoInputRetry
	if sess.NoInputRetries >= 1 {
		e.endCall(ctx, sess, ch, prompts.NoInputClosing)
		return true
	}

	sess.NoInputRetries++
	logx.Info().Str("call_sid", callSID).Msg("no input, reprompting")
	e.speak(ctx, ch, callSID, prompts.NoInputReprompt)
	sess.State = model.StateAwaitingSpeech
	return false
}

// HandleInterrupt records that the caller spoke over the assistant. Reply
// truncation is not implemented; the event is only logged.
func (e *Engine) HandleInterrupt(callSID string) {
	logx.Debug().Str("call_sid", callSID).Msg("caller interrupted assistant speech")
}

// HandleDisconnect removes the session after a channel-level disconnect. No
// further speech is possible.
func (e *Engine) HandleDisconnect(ctx context.Context, callSID string) {
	sess, ok := e.store.Get(callSID)
	if !ok {
		return
	}
	sess.Lock()
	sess.State = model.StateEnded
	messages := sess.History()
	sess.Unlock()

	e.store.Remove(callSID)
	logx.Info().Str("call_sid", callSID).Msg("call disconnected")
	e.archiveTranscript(ctx, callSID, messages)
}

// HandleStatus processes a carrier call-status webhook. Terminal statuses
// remove the session if present.
func (e *Engine) HandleStatus(ctx context.Context, callSID, status string) {
	logx.Info().Str("call_sid", callSID).Str("status", status).Msg("call status update")
	if !terminalStatuses[status] {
		return
	}
	e.HandleDisconnect(ctx, callSID)
}

// endCall speaks a closing line, terminates the channel, and removes the
// session. The caller must hold the session lock.
func (e *Engine) endCall(ctx context.Context, sess *model.CallSession, ch Channel, closing string) {
	e.speak(ctx, ch, sess.CallSID, closing)
	if err := ch.End(ctx); err != nil {
		logx.Warn().Err(err).Str("call_sid", sess.CallSID).Msg("failed to end channel")
	}
	sess.State = model.StateEnded

	messages := sess.History()
	e.store.Remove(sess.CallSID)
	logx.Info().Str("call_sid", sess.CallSID).Int("turns", sess.TurnCount).Float64("cost_usd", sess.TotalCostUSD).Msg("call ended")
	e.archiveTranscript(ctx, sess.CallSID, messages)
}

func (e *Engine) speak(ctx context.Context, ch Channel, callSID, text string) {
	if err := ch.SendText(ctx, text, true); err != nil {
		logx.Warn().Err(err).Str("call_sid", callSID).Msg("failed to send reply to channel")
	}
}

func (e *Engine) archiveTranscript(ctx context.Context, callSID string, messages []*schema.Message) {
	if e.archive == nil {
		return
	}
	if err := e.archive.Archive(ctx, callSID, messages); err != nil {
		logx.Error().Err(err).Str("call_sid", callSID).Msg("failed to archive transcript")
	}
}
