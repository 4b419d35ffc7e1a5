package store

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"softphone-console/internal/speech"
	"softphone-console/internal/voip"

	"github.com/google/uuid"
)

// ErrCallInProgress is returned by StartCall while another call is active.
// The previous call must be ended first; it is never silently overwritten.
var ErrCallInProgress = errors.New("store: call already in progress")

// Coordinator bridges session-transient state (dial buffer, active call,
// pending incoming call) with the voip service and exposes one cohesive API
// to presentation consumers. It mediates every mutation through the service
// and keeps cached collection snapshots consistent without re-fetching.
//
// Ordering rule: within one method the service mutation always happens
// before the snapshot update, so consumers never observe state the service
// has not recorded.
type Coordinator struct {
	mu sync.Mutex

	svc    *voip.Service
	engine speech.Engine
	log    *slog.Logger
	clock  func() time.Time
	newID  func() string

	dialed     string
	calls      []voip.Call
	voicemails []voip.Voicemail
	contacts   []voip.Contact

	active *voip.ActiveCall
	// answeredID is the history record backfilled with the elapsed time
	// when the active call ends. Empty for outgoing calls, whose duration
	// was simulated at creation.
	answeredID string

	incoming      *voip.Call
	ringUtterance speech.Utterance

	subs    map[int]chan Snapshot
	nextSub int
	closed  bool
}

// New constructs a coordinator over the given service and speech engine and
// primes the cached collections.
func New(svc *voip.Service, engine speech.Engine, log *slog.Logger) *Coordinator {
	return &Coordinator{
		svc:        svc,
		engine:     engine,
		log:        log,
		clock:      time.Now,
		newID:      uuid.NewString,
		calls:      svc.ListCalls(),
		voicemails: svc.ListVoicemails(),
		contacts:   svc.ListContacts(),
		subs:       map[int]chan Snapshot{},
	}
}

// --- Dialer ---

// SetDialedNumber applies update to the digit buffer. When the buffer lands
// exactly on the reserved incoming-call trigger, a simulated ring is
// scheduled and the buffer is cleared immediately so the trigger does not
// repeat. Any other edit to the buffer cancels a pending ring timer.
func (c *Coordinator) SetDialedNumber(update func(current string) string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := update(c.dialed)
	if next == c.dialed {
		return
	}
	c.svc.ClearIncomingCallTimer()
	c.dialed = next

	if next == voip.IncomingCallTriggerNumber {
		c.svc.SimulateIncomingCall(voip.SimulatedIncomingNumber, c.speakRing, c.deliverIncoming)
		c.dialed = ""
	}
	c.notifyLocked()
}

// AppendDigit adds one character to the dial buffer.
func (c *Coordinator) AppendDigit(digit string) {
	c.SetDialedNumber(func(cur string) string { return cur + digit })
}

// Backspace removes the last character from the dial buffer.
func (c *Coordinator) Backspace() {
	c.SetDialedNumber(func(cur string) string {
		if cur == "" {
			return cur
		}
		return cur[:len(cur)-1]
	})
}

// ClearDialed empties the dial buffer.
func (c *Coordinator) ClearDialed() {
	c.SetDialedNumber(func(string) string { return "" })
}

// --- Call session ---

// StartCall places a simulated outgoing call. Fails with ErrCallInProgress
// while another call is active. On success any ongoing speech is stopped,
// the dial buffer and any pending incoming call are cleared, and the new
// active call starts now.
func (c *Coordinator) StartCall(number string) (voip.Call, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		return voip.Call{}, ErrCallInProgress
	}

	c.engine.Stop()
	call := c.svc.SimulateOutgoingCall(number, c.speak)

	c.active = &voip.ActiveCall{
		ID:        c.newID(),
		Number:    call.Number,
		Name:      call.Name,
		StartedAt: c.clock(),
	}
	c.answeredID = ""
	c.dialed = ""
	c.incoming = nil
	c.svc.ClearIncomingCallTimer()

	c.calls = prependCall(c.calls, call)
	c.notifyLocked()
	return call, nil
}

// EndCall clears the active call, if any, and stops ongoing speech. For a
// call that was answered here, the matching history record's duration is
// backfilled with the elapsed wall-clock seconds.
func (c *Coordinator) EndCall() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.engine.Stop()
	if c.active == nil {
		return
	}

	if c.answeredID != "" {
		elapsed := int(c.clock().Sub(c.active.StartedAt) / time.Second)
		c.svc.SetCallDuration(c.answeredID, elapsed)
		for i := range c.calls {
			if c.calls[i].ID == c.answeredID {
				d := elapsed
				c.calls[i].DurationSeconds = &d
				break
			}
		}
	}

	c.active = nil
	c.answeredID = ""
	c.notifyLocked()
}

// AnswerCall accepts a pending incoming call: the ring announcement is
// cancelled, the call becomes active starting now, the pending slot is
// cleared, and an INCOMING history record with duration 0 is appended. The
// duration is backfilled on EndCall.
func (c *Coordinator) AnswerCall(call voip.Call) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelRingLocked()

	c.active = &voip.ActiveCall{
		ID:        c.newID(),
		Number:    call.Number,
		Name:      call.Name,
		StartedAt: c.clock(),
	}
	c.incoming = nil

	zero := 0
	rec := c.svc.AddCall(voip.NewCall{
		Direction:       voip.CallIncoming,
		Number:          call.Number,
		Name:            call.Name,
		DurationSeconds: &zero,
	})
	c.answeredID = rec.ID
	c.calls = prependCall(c.calls, rec)
	c.notifyLocked()
}

// DeclineCall rejects a pending incoming call: the ring announcement is
// cancelled, the pending slot is cleared and a MISSED record is appended.
// No active call is ever created.
func (c *Coordinator) DeclineCall(call voip.Call) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelRingLocked()
	c.incoming = nil

	rec := c.svc.AddCall(voip.NewCall{
		Direction: voip.CallMissed,
		Number:    call.Number,
		Name:      call.Name,
	})
	c.calls = prependCall(c.calls, rec)
	c.notifyLocked()
}

func (c *Coordinator) cancelRingLocked() {
	if c.ringUtterance != nil {
		c.ringUtterance.Cancel()
		c.ringUtterance = nil
	}
	c.engine.Stop()
}

// --- Pass-through mutations ---

// AddCall records a call in history.
func (c *Coordinator) AddCall(nc voip.NewCall) voip.Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec := c.svc.AddCall(nc)
	c.calls = prependCall(c.calls, rec)
	c.notifyLocked()
	return rec
}

// AddVoicemail stores a voicemail with the given audio payload.
func (c *Coordinator) AddVoicemail(nv voip.NewVoicemail, audio []byte) voip.Voicemail {
	c.mu.Lock()
	defer c.mu.Unlock()
	vm := c.svc.AddVoicemail(nv, audio)
	c.voicemails = append([]voip.Voicemail{vm}, c.voicemails...)
	c.notifyLocked()
	return vm
}

// SimulateVoicemail generates and stores an unread voicemail from the given
// sender.
func (c *Coordinator) SimulateVoicemail(senderNumber, senderName string) voip.Voicemail {
	c.mu.Lock()
	defer c.mu.Unlock()
	vm := c.svc.SimulateVoicemail(senderNumber, senderName)
	c.voicemails = append([]voip.Voicemail{vm}, c.voicemails...)
	c.notifyLocked()
	return vm
}

// MarkVoicemailRead flags a voicemail as read. No-op on unknown ids.
func (c *Coordinator) MarkVoicemailRead(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.svc.MarkVoicemailRead(id)
	for i := range c.voicemails {
		if c.voicemails[i].ID == id {
			c.voicemails[i].IsRead = true
			break
		}
	}
	c.notifyLocked()
}

// DeleteVoicemail removes a voicemail permanently. No-op on unknown ids.
func (c *Coordinator) DeleteVoicemail(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.svc.DeleteVoicemail(id)
	for i := range c.voicemails {
		if c.voicemails[i].ID == id {
			c.voicemails = append(c.voicemails[:i], c.voicemails[i+1:]...)
			break
		}
	}
	c.notifyLocked()
}

// AddContact creates a contact.
func (c *Coordinator) AddContact(nc voip.NewContact) voip.Contact {
	c.mu.Lock()
	defer c.mu.Unlock()
	contact := c.svc.AddContact(nc)
	c.contacts = append(c.contacts, contact)
	voip.SortContacts(c.contacts)
	c.notifyLocked()
	return contact
}

// UpdateContact merges patch fields into a contact. The second return is
// false when the id is unknown; nothing changes then.
func (c *Coordinator) UpdateContact(id string, patch voip.ContactPatch) (voip.Contact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	updated, ok := c.svc.UpdateContact(id, patch)
	if !ok {
		return voip.Contact{}, false
	}
	for i := range c.contacts {
		if c.contacts[i].ID == id {
			c.contacts[i] = updated
			break
		}
	}
	voip.SortContacts(c.contacts)
	c.notifyLocked()
	return updated, true
}

// DeleteContact removes a contact. No-op on unknown ids.
func (c *Coordinator) DeleteContact(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.svc.DeleteContact(id)
	for i := range c.contacts {
		if c.contacts[i].ID == id {
			c.contacts = append(c.contacts[:i], c.contacts[i+1:]...)
			break
		}
	}
	c.notifyLocked()
}

// --- Speech callbacks ---

func (c *Coordinator) speak(text string, purpose speech.Purpose) {
	c.engine.Speak(text, purpose)
}

// speakRing keeps the ring announcement's handle so answer/decline can
// cancel that specific utterance.
func (c *Coordinator) speakRing(text string, purpose speech.Purpose) {
	u := c.engine.Speak(text, purpose)
	c.mu.Lock()
	c.ringUtterance = u
	c.mu.Unlock()
}

// deliverIncoming is handed to the service as the ring delivery callback.
func (c *Coordinator) deliverIncoming(call voip.Call) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	cc := call
	c.incoming = &cc
	c.log.Info("incoming call ringing", "number", call.Number, "name", call.Name)
	c.notifyLocked()
}

// Close cancels pending timers and speech and drops all subscribers.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.svc.ClearIncomingCallTimer()
	c.engine.Stop()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

func prependCall(list []voip.Call, call voip.Call) []voip.Call {
	return append([]voip.Call{call}, list...)
}
