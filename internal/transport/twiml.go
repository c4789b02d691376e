package transport

import (
	"encoding/xml"
	"net/http"

	logx "github.com/frontdesk-core-poc-v1/server/pkg/logger"
)

// voiceResponse is the declarative answer document returned to the carrier:
// open a duplex channel to RelayURL and speak the greeting before any caller
// input is processed.
type voiceResponse struct {
	XMLName xml.Name `xml:"Response"`
	Connect *connect `xml:"Connect,omitempty"`
}

type connect struct {
	ConversationRelay *conversationRelay `xml:"ConversationRelay"`
}

type conversationRelay struct {
	URL             string `xml:"url,attr"`
	WelcomeGreeting string `xml:"welcomeGreeting,attr,omitempty"`
}

// AnswerHandler handles the inbound call-setup webhook.
type AnswerHandler struct {
	relayURL string
	greeting string
}

func NewAnswerHandler(relayURL, greeting string) *AnswerHandler {
	return &AnswerHandler{relayURL: relayURL, greeting: greeting}
}

func (h *AnswerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		logx.Warn().Err(err).Msg("failed to parse incoming-call form")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	callSID := r.FormValue("CallSid")
	logx.Info().
		Str("call_sid", callSID).
		Str("from", r.FormValue("From")).
		Msg("incoming call")

	doc := voiceResponse{
		Connect: &connect{
			ConversationRelay: &conversationRelay{
				URL:             h.relayURL,
				WelcomeGreeting: h.greeting,
			},
		},
	}

	body, err := xml.Marshal(doc)
	if err != nil {
		logx.Error().Err(err).Str("call_sid", callSID).Msg("failed to render answer document")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/xml")
	w.Write([]byte(xml.Header))
	w.Write(body)
}
