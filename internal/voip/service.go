package voip

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"softphone-console/internal/speech"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Reserved trigger numbers, compared for exact equality against dialed input.
const (
	// AISimulationNumber makes an outgoing call answer with a simulated
	// automated assistant after a short delay.
	AISimulationNumber = "1234"

	// IncomingCallTriggerNumber in the dial buffer schedules a simulated
	// inbound ring instead of placing a call.
	IncomingCallTriggerNumber = "911"

	// SimulatedIncomingNumber is the caller id used for simulated rings.
	SimulatedIncomingNumber = "555-000-0000"
)

// Fixed simulation delays. Not configurable per call.
const (
	assistantAnswerDelay = 2 * time.Second
	incomingCallDelay    = 3 * time.Second
)

// SpeechFunc receives announcement text to speak. Implementations must be
// fire-and-forget; the service never waits on them.
type SpeechFunc func(text string, purpose speech.Purpose)

// DeliverFunc receives a simulated inbound call when its ring timer fires.
type DeliverFunc func(call Call)

// Service owns the authoritative in-memory collections (call history,
// voicemails, contacts) and the call/voicemail simulation logic.
//
// Failure policy: operations never return errors. Unknown ids are silently
// ignored and mutations on them become no-ops.
type Service struct {
	mu         sync.Mutex
	calls      []Call
	voicemails []Voicemail
	contacts   []Contact

	// incomingTimer is the single pending inbound-ring timer, if any.
	// incomingGen invalidates a timer callback that lost the Stop race.
	incomingTimer Task
	incomingGen   int

	sched Scheduler
	log   *slog.Logger

	// Now, RNG and NewID are injectable for deterministic tests.
	Now   func() time.Time
	RNG   *rand.Rand
	NewID func() string
}

// NewService constructs a service pre-loaded with the seed dataset.
func NewService(sched Scheduler, log *slog.Logger) *Service {
	return &Service{
		calls:      seedCallHistory(),
		voicemails: seedVoicemails(),
		contacts:   seedContacts(),
		sched:      sched,
		log:        log,
		Now:        time.Now,
		RNG:        rand.New(rand.NewSource(time.Now().UnixNano())),
		NewID:      uuid.NewString,
	}
}

// --- Call history ---

// ListCalls returns the call history, newest first.
func (s *Service) ListCalls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

// AddCall assigns identity and creation timestamp, appends the record and
// returns the canonical copy. Number format is not validated.
func (s *Service) AddCall(nc NewCall) Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	call := Call{
		ID:              s.NewID(),
		Direction:       nc.Direction,
		Number:          nc.Number,
		Name:            nc.Name,
		Timestamp:       s.Now().UTC(),
		DurationSeconds: nc.DurationSeconds,
	}
	s.calls = append(s.calls, call)
	return call
}

// SetCallDuration backfills the duration of an existing record, in whole
// seconds. Used when an answered call ends. No-op if the id is unknown.
func (s *Service) SetCallDuration(id string, seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.calls {
		if s.calls[i].ID == id {
			d := seconds
			s.calls[i].DurationSeconds = &d
			return
		}
	}
}

// --- Voicemail ---

// ListVoicemails returns voicemails, newest first.
func (s *Service) ListVoicemails() []Voicemail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Voicemail, len(s.voicemails))
	copy(out, s.voicemails)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

// AddVoicemail assigns identity, timestamp and the audio payload, appends
// and returns the canonical record.
func (s *Service) AddVoicemail(nv NewVoicemail, audio []byte) Voicemail {
	s.mu.Lock()
	defer s.mu.Unlock()
	vm := Voicemail{
		ID:              s.NewID(),
		SenderNumber:    nv.SenderNumber,
		SenderName:      nv.SenderName,
		Timestamp:       s.Now().UTC(),
		DurationSeconds: nv.DurationSeconds,
		Audio:           audio,
		Transcription:   nv.Transcription,
		IsRead:          nv.IsRead,
	}
	s.voicemails = append(s.voicemails, vm)
	return vm
}

// MarkVoicemailRead flips the read flag. The flag never reverts to unread.
// No-op if the id is unknown.
func (s *Service) MarkVoicemailRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.voicemails {
		if s.voicemails[i].ID == id {
			s.voicemails[i].IsRead = true
			return
		}
	}
}

// DeleteVoicemail removes the entry permanently. No-op if absent.
func (s *Service) DeleteVoicemail(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.voicemails {
		if s.voicemails[i].ID == id {
			s.voicemails = append(s.voicemails[:i], s.voicemails[i+1:]...)
			return
		}
	}
}

// --- Contacts ---

// ListContacts returns contacts ordered by name, case-insensitively with a
// locale-aware compare.
func (s *Service) ListContacts() []Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Contact, len(s.contacts))
	copy(out, s.contacts)
	SortContacts(out)
	return out
}

// ContactByNumber returns the first contact whose number matches exactly.
func (s *Service) ContactByNumber(number string) (Contact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contactByNumberLocked(number)
}

func (s *Service) contactByNumberLocked(number string) (Contact, bool) {
	for _, c := range s.contacts {
		if c.Number == number {
			return c, true
		}
	}
	return Contact{}, false
}

// AddContact assigns identity, appends and returns the record.
func (s *Service) AddContact(nc NewContact) Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := Contact{
		ID:     s.NewID(),
		Name:   nc.Name,
		Number: nc.Number,
		Labels: nc.Labels,
	}
	s.contacts = append(s.contacts, c)
	return c
}

// UpdateContact merges non-nil patch fields into an existing record. The
// second return is false when the id is unknown; the collection is then
// left untouched.
func (s *Service) UpdateContact(id string, patch ContactPatch) (Contact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.contacts {
		if s.contacts[i].ID != id {
			continue
		}
		if patch.Name != nil {
			s.contacts[i].Name = *patch.Name
		}
		if patch.Number != nil {
			s.contacts[i].Number = *patch.Number
		}
		if patch.Labels != nil {
			s.contacts[i].Labels = *patch.Labels
		}
		return s.contacts[i], true
	}
	return Contact{}, false
}

// DeleteContact removes the contact. No-op if absent.
func (s *Service) DeleteContact(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.contacts {
		if s.contacts[i].ID == id {
			s.contacts = append(s.contacts[:i], s.contacts[i+1:]...)
			return
		}
	}
}

// --- Call simulation ---

// SimulateOutgoingCall announces the dial, schedules the assistant greeting
// when the reserved AI number is dialed, and records an outgoing call with a
// pseudo-random duration in [30, 330] seconds. There is no real signaling to
// measure, so the duration is sampled up front.
func (s *Service) SimulateOutgoingCall(number string, onSpeech SpeechFunc) Call {
	s.mu.Lock()
	contact, known := s.contactByNumberLocked(number)
	duration := s.RNG.Intn(301) + 30
	s.mu.Unlock()

	text := fmt.Sprintf("Marcando número %s.", number)
	if known {
		text = fmt.Sprintf("Marcando a %s.", contact.Name)
	}
	onSpeech(text, speech.PurposeNotification)

	if number == AISimulationNumber {
		s.sched.Schedule(assistantAnswerDelay, func() {
			onSpeech("Hola, soy tu asistente virtual. ¿En qué puedo ayudarte hoy?", speech.PurposeSimulation)
		})
	}

	d := duration
	return s.AddCall(NewCall{
		Direction:       CallOutgoing,
		Number:          number,
		Name:            contact.Name,
		DurationSeconds: &d,
	})
}

// SimulateIncomingCall schedules an inbound ring after a fixed delay. Any
// previously scheduled ring is cancelled first, so at most one is pending.
// When the timer fires it announces the caller, builds an INCOMING call
// record (not yet in history, no duration) and hands it to deliver.
func (s *Service) SimulateIncomingCall(number string, onSpeech SpeechFunc, deliver DeliverFunc) {
	s.mu.Lock()
	if s.incomingTimer != nil {
		s.incomingTimer.Stop()
		s.log.Debug("replacing pending incoming-call timer", "number", number)
	}
	s.incomingGen++
	gen := s.incomingGen
	s.incomingTimer = s.sched.Schedule(incomingCallDelay, func() {
		s.mu.Lock()
		if s.incomingGen != gen {
			// superseded or cleared while this callback was firing
			s.mu.Unlock()
			return
		}
		s.incomingTimer = nil
		contact, known := s.contactByNumberLocked(number)
		call := Call{
			ID:        s.NewID(),
			Direction: CallIncoming,
			Number:    number,
			Name:      contact.Name,
			Timestamp: s.Now().UTC(),
		}
		s.mu.Unlock()

		display := number
		if known {
			display = contact.Name
		}
		onSpeech(fmt.Sprintf("Tienes una llamada entrante de %s.", display), speech.PurposeNotification)
		deliver(call)
	})
	s.mu.Unlock()
	s.log.Debug("incoming call scheduled", "number", number, "delay", incomingCallDelay)
}

// ClearIncomingCallTimer cancels a pending simulated ring, if any. Idempotent.
func (s *Service) ClearIncomingCallTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.incomingTimer != nil {
		s.incomingTimer.Stop()
		s.incomingTimer = nil
		s.incomingGen++
	}
}

// Voicemail transcription templates; [name] is replaced with the sender's
// display name or number.
var voicemailTemplates = []string{
	"Hola, soy [name]. Solo quería saber si recibiste mi correo. Llámame de vuelta cuando puedas.",
	"Este es un mensaje automático. Por favor, devuélvanos la llamada para actualizar su cuenta.",
	"He intentado contactarte varias veces. Por favor, ponte en contacto conmigo lo antes posible.",
	"Solo para decir hola y espero que tengas un buen día. Llámame cuando tengas un minuto.",
}

// SimulateVoicemail stores an unread voicemail with a template transcription
// and a pseudo-random duration in [15, 75] seconds. The audio payload is
// empty for simulated entries.
func (s *Service) SimulateVoicemail(senderNumber, senderName string) Voicemail {
	s.mu.Lock()
	template := voicemailTemplates[s.RNG.Intn(len(voicemailTemplates))]
	duration := s.RNG.Intn(61) + 15
	s.mu.Unlock()

	display := senderName
	if display == "" {
		display = senderNumber
	}
	return s.AddVoicemail(NewVoicemail{
		SenderNumber:    senderNumber,
		SenderName:      senderName,
		DurationSeconds: duration,
		Transcription:   strings.ReplaceAll(template, "[name]", display),
		IsRead:          false,
	}, nil)
}

// collator backs contact ordering. Loose ignores case and diacritic
// differences, matching a locale-aware compare.
var collatorMu sync.Mutex
var collator = collate.New(language.Und, collate.Loose)

// SortContacts orders contacts by display name in place.
func SortContacts(cs []Contact) {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	sort.SliceStable(cs, func(i, j int) bool {
		return collator.CompareString(cs[i].Name, cs[j].Name) < 0
	})
}
