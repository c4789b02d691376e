package transport

import (
	"net/http"

	"github.com/frontdesk-core-poc-v1/server/internal/agent/engine"
	logx "github.com/frontdesk-core-poc-v1/server/pkg/logger"
)

// StatusHandler handles the carrier's call-status webhook. Terminal statuses
// remove the call session.
type StatusHandler struct {
	engine *engine.Engine
}

func NewStatusHandler(e *engine.Engine) *StatusHandler {
	return &StatusHandler{engine: e}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		logx.Warn().Err(err).Msg("failed to parse call-status form")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	h.engine.HandleStatus(r.Context(), r.FormValue("CallSid"), r.FormValue("CallStatus"))
	w.WriteHeader(http.StatusNoContent)
}
