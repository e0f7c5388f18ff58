package domain

type SpeechState string

const (
	SpeechIdle     SpeechState = "idle"
	SpeechSpeaking SpeechState = "speaking"
	SpeechStopped  SpeechState = "stopped"
)

// SpeechStatus is a point-in-time view of the narrator.
type SpeechStatus struct {
	State     SpeechState `json:"state"`
	Language  string      `json:"language,omitempty"`
	LastError string      `json:"last_error,omitempty"`
}
