package store

import "softphone-console/internal/voip"

// Snapshot is an immutable view of coordinator state. Consumers render from
// snapshots only; they never reach into the service.
type Snapshot struct {
	DialedNumber string `json:"dialed_number"`

	CallHistory []voip.Call      `json:"call_history"`
	Voicemails  []voip.Voicemail `json:"voicemails"`
	Contacts    []voip.Contact   `json:"contacts"`

	// UnreadVoicemails backs the voicemail tab badge.
	UnreadVoicemails int `json:"unread_voicemails"`

	ActiveCall   *voip.ActiveCall `json:"active_call,omitempty"`
	IncomingCall *voip.Call       `json:"incoming_call,omitempty"`
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() Snapshot {
	snap := Snapshot{
		DialedNumber: c.dialed,
		CallHistory:  make([]voip.Call, len(c.calls)),
		Voicemails:   make([]voip.Voicemail, len(c.voicemails)),
		Contacts:     make([]voip.Contact, len(c.contacts)),
	}
	copy(snap.CallHistory, c.calls)
	copy(snap.Voicemails, c.voicemails)
	copy(snap.Contacts, c.contacts)

	for _, vm := range c.voicemails {
		if !vm.IsRead {
			snap.UnreadVoicemails++
		}
	}
	if c.active != nil {
		a := *c.active
		snap.ActiveCall = &a
	}
	if c.incoming != nil {
		in := *c.incoming
		snap.IncomingCall = &in
	}
	return snap
}

// DialedNumber returns the current digit buffer.
func (c *Coordinator) DialedNumber() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialed
}

// ActiveCall returns the call in progress, if any.
func (c *Coordinator) ActiveCall() (voip.ActiveCall, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return voip.ActiveCall{}, false
	}
	return *c.active, true
}

// IncomingCall returns the pending simulated ring, if any.
func (c *Coordinator) IncomingCall() (voip.Call, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.incoming == nil {
		return voip.Call{}, false
	}
	return *c.incoming, true
}

// Subscribe registers for state snapshots. The channel holds at most one
// pending snapshot; when a subscriber lags, older snapshots are replaced by
// newer ones (latest wins). The returned cancel function must be called to
// release the subscription.
func (c *Coordinator) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan Snapshot, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	c.subs[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (c *Coordinator) notifyLocked() {
	if c.closed || len(c.subs) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			// drop the stale snapshot, keep the newest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
