package transport

// relayMessage is one inbound JSON frame on the duplex channel.
type relayMessage struct {
	Type string `json:"type"`

	// setup
	CallSID string `json:"callSid,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`

	// prompt
	VoicePrompt string  `json:"voicePrompt,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`

	// interrupt
	UtteranceUntilInterrupt string `json:"utteranceUntilInterrupt,omitempty"`

	// error
	Description string `json:"description,omitempty"`
}

const (
	messageTypeSetup     = "setup"
	messageTypePrompt    = "prompt"
	messageTypeInterrupt = "interrupt"
	messageTypeError     = "error"
)

// textMessage is the outbound reply frame. last marks the complete reply for
// the turn; there is no incremental token streaming.
type textMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
	Last  bool   `json:"last"`
}

// endMessage asks the carrier to terminate the call.
type endMessage struct {
	Type string `json:"type"`
}
