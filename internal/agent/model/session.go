package model

import (
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
)

// CallState is the lifecycle state of one phone call.
type CallState string

const (
	StateGreeting       CallState = "greeting"
	StateAwaitingSpeech CallState = "awaiting_speech"
	StateProcessing     CallState = "processing"
	StateNoInputRetry   CallState = "no_input_retry"
	StateEnded          CallState = "ended"
)

// CallSession holds the conversation state for a single phone call.
//
// Concurrency model:
//   - The session store owns creation and removal; everything else mutates the
//     session only while holding its lock, so at most one turn is in flight
//     per call SID at any time.
//   - Messages are append-only and never reordered: the slice is the literal
//     conversational order replayed to the reasoning service.
type CallSession struct {
	mu sync.Mutex

	CallSID        string
	Messages       []*schema.Message
	TurnCount      int
	NoInputRetries int
	State          CallState
	StartedAt      time.Time

	// Accumulated LLM cost (USD) across model invocations for this call.
	TotalCostUSD float64
}

// NewCallSession seeds a session with the system persona message.
func NewCallSession(callSID, systemPrompt string, startedAt time.Time) *CallSession {
	return &CallSession{
		CallSID:   callSID,
		Messages:  []*schema.Message{schema.SystemMessage(systemPrompt)},
		State:     StateGreeting,
		StartedAt: startedAt,
	}
}

// Lock acquires the per-call lock. Callers must hold it across a whole turn.
func (s *CallSession) Lock() { s.mu.Lock() }

// Unlock releases the per-call lock.
func (s *CallSession) Unlock() { s.mu.Unlock() }

// Append adds a message to the conversation. The caller must hold the lock.
func (s *CallSession) Append(msgs ...*schema.Message) {
	s.Messages = append(s.Messages, msgs...)
}

// History returns a copy of the message sequence. The caller must hold the lock.
func (s *CallSession) History() []*schema.Message {
	out := make([]*schema.Message, len(s.Messages))
	copy(out, s.Messages)
	return out
}
