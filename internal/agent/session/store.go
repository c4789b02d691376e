// Package session holds the in-memory call session store. Entries live for
// the duration of one phone call; a crashed or abandoned call leaks its entry
// for the life of the process, which is an accepted limitation.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/frontdesk-core-poc-v1/server/internal/agent/model"
	"github.com/frontdesk-core-poc-v1/server/internal/agent/prompts"
	logx "github.com/frontdesk-core-poc-v1/server/pkg/logger"
)

// Store maps call SIDs to live call sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*model.CallSession

	promptCfg model.PromptConfig
	now       func() time.Time
}

func NewStore(promptCfg model.PromptConfig) *Store {
	return &Store{
		sessions:  make(map[string]*model.CallSession),
		promptCfg: promptCfg,
		now:       time.Now,
	}
}

// GetOrCreate returns the session for callSID, creating and seeding it when
// absent. The second return value reports whether a new session was created.
func (s *Store) GetOrCreate(ctx context.Context, callSID string) (*model.CallSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[callSID]; ok {
		return sess, false
	}

	startedAt := s.now()
	systemPrompt, err := prompts.RenderSystem(ctx, s.promptCfg, startedAt)
	if err != nil {
		logx.Error().Err(err).Str("call_sid", callSID).Msg("failed to render system prompt, seeding raw persona")
		systemPrompt = prompts.FallbackPersona
	}

	sess := model.NewCallSession(callSID, systemPrompt, startedAt)
	s.sessions[callSID] = sess
	logx.Debug().Str("call_sid", callSID).Msg("call session created")
	return sess, true
}

// Get returns the session for callSID if present.
func (s *Store) Get(callSID string) (*model.CallSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[callSID]
	return sess, ok
}

// Remove deletes the session for callSID. Removing an absent SID is a no-op.
func (s *Store) Remove(callSID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[callSID]; ok {
		delete(s.sessions, callSID)
		logx.Debug().Str("call_sid", callSID).Msg("call session removed")
	}
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
