// Package transport translates the carrier's webhook and duplex-channel
// protocols into turn events for the conversation engine.
package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/frontdesk-core-poc-v1/server/internal/agent/engine"
	logx "github.com/frontdesk-core-poc-v1/server/pkg/logger"
)

const defaultCaptureWindow = 5 * time.Second

// RelayHandler upgrades the duplex-channel endpoint and runs one event loop
// per connection. One connection carries exactly one call, so running engine
// calls inline on the loop serializes all events for that call SID.
type RelayHandler struct {
	engine        *engine.Engine
	captureWindow time.Duration
	upgrader      websocket.Upgrader
}

func NewRelayHandler(e *engine.Engine, captureWindow time.Duration) *RelayHandler {
	if captureWindow <= 0 {
		captureWindow = defaultCaptureWindow
	}
	return &RelayHandler{
		engine:        e,
		captureWindow: captureWindow,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *RelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logx.Warn().Err(err).Msg("relay upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	ch := &wsChannel{conn: conn}

	frames := make(chan relayMessage, 8)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		defer close(frames)
		for {
			var m relayMessage
			if err := conn.ReadJSON(&m); err != nil {
				return
			}
			select {
			case frames <- m:
			case <-stop:
				return
			}
		}
	}()

	var callSID string

	// The capture window runs between the end of one assistant utterance and
	// the next caller prompt; expiry becomes a distinct no-input event.
	var capture *time.Timer
	var timeout <-chan time.Time
	arm := func() {
		if capture != nil {
			capture.Stop()
		}
		capture = time.NewTimer(h.captureWindow)
		timeout = capture.C
	}
	disarm := func() {
		if capture != nil {
			capture.Stop()
			capture = nil
			timeout = nil
		}
	}
	defer disarm()

	for {
		select {
		case m, ok := <-frames:
			if !ok {
				if callSID != "" {
					h.engine.HandleDisconnect(ctx, callSID)
				}
				return
			}
			switch m.Type {
			case messageTypeSetup:
				if m.CallSID == "" {
					logx.Warn().Msg("setup frame without callSid, ignoring")
					continue
				}
				callSID = m.CallSID
				h.engine.HandleSetup(ctx, callSID)
				arm()
			case messageTypePrompt:
				if callSID == "" {
					logx.Warn().Msg("prompt frame before setup, ignoring")
					continue
				}
				disarm()
				if done := h.engine.HandlePrompt(ctx, callSID, m.VoicePrompt, m.Confidence, ch); done {
					return
				}
				arm()
			case messageTypeInterrupt:
				if callSID != "" {
					h.engine.HandleInterrupt(callSID)
				}
			case messageTypeError:
				logx.Warn().Str("call_sid", callSID).Str("description", m.Description).Msg("carrier reported channel error")
			default:
				logx.Warn().Str("call_sid", callSID).Str("type", m.Type).Msg("unknown relay message, ignoring")
			}
		case <-timeout:
			disarm()
			if callSID == "" {
				return
			}
			if done := h.engine.HandleNoInput(ctx, callSID, ch); done {
				return
			}
			arm()
		}
	}
}

// wsChannel adapts one websocket connection to the engine's Channel contract.
type wsChannel struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsChannel) SendText(_ context.Context, text string, last bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(textMessage{Type: "text", Token: text, Last: last})
}

func (c *wsChannel) End(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(endMessage{Type: "end"})
}

var _ engine.Channel = (*wsChannel)(nil)
