package voip

import "time"

// Call is one entry in the call history.
//
// NOTE: This is a domain model only. Records are immutable after creation
// except the duration backfill applied when an answered call ends.
type Call struct {
	ID        string        `json:"id"`
	Direction CallDirection `json:"direction"`

	Number string `json:"number"`
	// Name is the resolved contact name; empty when the number is unknown.
	Name string `json:"name,omitempty"`

	Timestamp time.Time `json:"timestamp"`

	// DurationSeconds is nil for missed calls and for calls that have not
	// ended yet. An answered incoming call starts at 0 and is backfilled
	// with the elapsed time on hang-up.
	DurationSeconds *int `json:"duration,omitempty"`
}

type CallDirection string

const (
	CallIncoming CallDirection = "incoming"
	CallOutgoing CallDirection = "outgoing"
	CallMissed   CallDirection = "missed"
)

// NewCall is the caller-supplied part of a call record; the service assigns
// identity and timestamp.
type NewCall struct {
	Direction       CallDirection `json:"direction"`
	Number          string        `json:"number"`
	Name            string        `json:"name,omitempty"`
	DurationSeconds *int          `json:"duration,omitempty"`
}

// Voicemail is a stored message. IsRead only ever transitions false -> true.
type Voicemail struct {
	ID           string    `json:"id"`
	SenderNumber string    `json:"sender_number"`
	SenderName   string    `json:"sender_name,omitempty"`
	Timestamp    time.Time `json:"timestamp"`

	DurationSeconds int `json:"duration"`

	// Audio is the opaque recording payload; empty for simulated entries.
	Audio []byte `json:"audio,omitempty"`

	Transcription string `json:"transcription"`
	IsRead        bool   `json:"is_read"`
}

// NewVoicemail is the caller-supplied part of a voicemail; the service
// assigns identity, timestamp and the audio payload.
type NewVoicemail struct {
	SenderNumber    string `json:"sender_number"`
	SenderName      string `json:"sender_name,omitempty"`
	DurationSeconds int    `json:"duration"`
	Transcription   string `json:"transcription"`
	IsRead          bool   `json:"is_read"`
}

// Contact is an address book entry. Fully mutable and deletable.
type Contact struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Number string   `json:"number"`
	Labels []string `json:"labels"`
}

// NewContact is a contact without identity.
type NewContact struct {
	Name   string   `json:"name"`
	Number string   `json:"number"`
	Labels []string `json:"labels"`
}

// ContactPatch carries partial updates; nil fields are left untouched.
type ContactPatch struct {
	Name   *string   `json:"name,omitempty"`
	Number *string   `json:"number,omitempty"`
	Labels *[]string `json:"labels,omitempty"`
}

// ActiveCall is session-only state for the call currently in progress.
// At most one exists at a time; it is never persisted.
type ActiveCall struct {
	ID        string    `json:"id"`
	Number    string    `json:"number"`
	Name      string    `json:"name,omitempty"`
	StartedAt time.Time `json:"started_at"`
}
