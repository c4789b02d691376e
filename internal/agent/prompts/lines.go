// Package prompts holds the assistant persona template and every fixed
// utterance the engine can speak. Keeping the wording in one place makes the
// spoken surface reviewable without reading the state machine.
package prompts

const (
	// Greeting is spoken by the carrier while the duplex channel opens.
	Greeting = "Hello! I am the front desk voice assistant. How can I help you today?"

	// NoInputReprompt is spoken after the first capture-window timeout.
	NoInputReprompt = "I didn't hear anything. Could you please say that again?"

	// NoInputClosing is spoken before hanging up after a second consecutive timeout.
	NoInputClosing = "I still didn't hear anything. I'll hang up now. Goodbye."

	// EmptyUtteranceReprompt is spoken when a prompt event carries no text.
	EmptyUtteranceReprompt = "I didn't catch that. Could you please repeat?"

	// FarewellClosing is spoken when the caller says goodbye.
	FarewellClosing = "Goodbye! Have a great day."

	// RestartApology is spoken when a prompt arrives for a call we have no
	// session for; a fresh session is created and the caller starts over.
	RestartApology = "There was an issue retrieving our conversation. Let's start over. How can I help you?"

	// TurnApology is spoken when the reasoning service fails a turn even after
	// a retry. The call stays alive and the capture window reopens.
	TurnApology = "I'm sorry, I'm having trouble processing that right now. Could you say that again?"

	// TroubleClosing is spoken before hanging up a call that has no session
	// and no way to recover.
	TroubleClosing = "It seems we're having trouble. Goodbye."

	// FallbackPersona seeds a session when template rendering fails.
	FallbackPersona = "You are a friendly and professional voice assistant at the front desk of a doctor's office. Keep replies short, plain, and speakable. Do not provide medical advice."
)
