package model

// ================ Config ================
type ServerConfig struct {
	Addr string `envconfig:"SERVER_ADDR" default:":8080"`
	// RelayURL is the public wss:// address the carrier is told to open the
	// duplex channel to, e.g. wss://example.ngrok.app/relay.
	RelayURL string `envconfig:"SERVER_RELAY_URL" required:"true"`
}

type CallConfig struct {
	// CaptureWindow bounds how long the caller may stay silent before a
	// no-input event fires. The capture provider applies its own
	// end-of-utterance detection on top of this.
	CaptureWindow string `envconfig:"CALL_CAPTURE_WINDOW" default:"5s"`
}

type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.4"`
}

type PromptConfig struct {
	OfficeType string `envconfig:"PROMPT_OFFICE_TYPE" default:"doctor's office"`
	OfficeName string `envconfig:"PROMPT_OFFICE_NAME" default:"Lakeside Family Medicine"`
}

type InsuranceConfig struct {
	BaseURL string `envconfig:"INSURANCE_BASE_URL" required:"true"`
	Timeout int    `envconfig:"INSURANCE_TIMEOUT" default:"3"`
}

type TranscriptConfig struct {
	TTL string `envconfig:"TRANSCRIPT_TTL" default:"24h"`
}
