package speech

import "sync"

// Purpose classifies why an announcement is being spoken. It is carried to
// the synthesis backend so voices/prosody can differ per purpose.
type Purpose string

const (
	PurposeGuide        Purpose = "guide"
	PurposeNotification Purpose = "notification"
	PurposeSimulation   Purpose = "simulation"
)

// Engine is the speech capability boundary used by the call coordinator.
//
// Rules:
// - Speak is fire-and-forget: it must not block the caller and must never
//   return an error. Synthesis/playback failures are logged inside the
//   engine and the call flow proceeds regardless.
// - Stop cancels everything currently queued or playing. Safe to call when
//   nothing is playing.
type Engine interface {
	// Speak queues an announcement and returns a handle that can cancel
	// this specific utterance without touching others.
	Speak(text string, purpose Purpose) Utterance

	// Stop cancels all in-flight utterances. Idempotent.
	Stop()
}

// Utterance is a cancellation handle for a single queued announcement.
type Utterance interface {
	// Cancel aborts this utterance if it is still pending or playing.
	// Idempotent; a no-op once the utterance has finished.
	Cancel()
}

// NoopEngine discards all speech. Used when no synthesis backend is
// configured; the console works fully without audio.
type NoopEngine struct{}

func NewNoopEngine() NoopEngine { return NoopEngine{} }

func (NoopEngine) Speak(text string, purpose Purpose) Utterance { return noopUtterance{} }

func (NoopEngine) Stop() {}

type noopUtterance struct{}

func (noopUtterance) Cancel() {}

// utterance is the shared handle implementation for real engines.
type utterance struct {
	once   sync.Once
	cancel func()
}

func newUtterance(cancel func()) *utterance {
	return &utterance{cancel: cancel}
}

func (u *utterance) Cancel() {
	u.once.Do(u.cancel)
}
