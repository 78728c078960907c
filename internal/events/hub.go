// Package events fans out notifications meant for whoever renders the alarm
// clock: ringing alarms, silenced tones, list changes and errors.
package events

import (
	"sync"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Type names an event.
type Type string

const (
	// TypeRinging is published when an alarm fires.
	TypeRinging Type = "ringing"
	// TypeStopped is published when a ringing tone is silenced by a user.
	TypeStopped Type = "stopped"
	// TypeChanged is published after the alarm list changed.
	TypeChanged Type = "changed"
	// TypeError is published for failures nobody asked about directly.
	TypeError Type = "error"
)

// Event is one notification.
type Event struct {
	Type Type
	At   time.Time
	// Alarm is set for ringing events and for errors about a fired alarm.
	Alarm *domain.Alarm
	// Tone is set for stopped events.
	Tone string
	// Count is the number of scheduled alarms, set for changed events.
	Count int
	// Kind and Message describe error events.
	Kind    domain.Kind
	Message string
}

// subscriptionBuffer is how many events a subscriber may lag behind.
const subscriptionBuffer = 16

// Hub delivers every published event to every subscriber.
type Hub struct {
	// now stamps events.
	now func() time.Time

	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// NewHub creates a hub that stamps events with now.
func NewHub(now func() time.Time) *Hub {
	if now == nil {
		now = time.Now
	}

	return &Hub{
		now:  now,
		subs: make(map[*Subscription]struct{}),
	}
}

// Subscribe registers a new subscriber.
//
// If the subscriber can't keep up with its channel, the hub unsubscribes it
// and closes the channel; the holder has to subscribe again.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscription{
		hub: h,
		c:   make(chan Event, subscriptionBuffer),
	}
	h.subs[sub] = struct{}{}

	return sub
}

// Publish stamps ev and hands it to every subscriber without blocking.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}

	if ev.At.IsZero() {
		ev.At = h.now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case sub.c <- ev:
		default:
			sub.close()
		}
	}
}

// Ringing publishes a ringing event for a.
func (h *Hub) Ringing(a domain.Alarm) {
	h.Publish(Event{Type: TypeRinging, Alarm: &a})
}

// Stopped publishes a stopped event for tone.
func (h *Hub) Stopped(tone string) {
	h.Publish(Event{Type: TypeStopped, Tone: tone})
}

// Changed publishes a changed event with the current alarm count.
func (h *Hub) Changed(count int) {
	h.Publish(Event{Type: TypeChanged, Count: count})
}

// Failed publishes an error event; a may be nil.
func (h *Hub) Failed(a *domain.Alarm, err error) {
	h.Publish(Event{
		Type:    TypeError,
		Alarm:   a,
		Kind:    domain.KindOf(err),
		Message: err.Error(),
	})
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs)
}

// Subscription receives events from a Hub.
type Subscription struct {
	hub  *Hub
	c    chan Event
	once sync.Once
}

// C returns the event channel. It is closed on Close or when the hub
// dropped a subscriber that fell behind.
func (s *Subscription) C() <-chan Event {
	return s.c
}

// Close unsubscribes.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	s.close()
}

// close must be called with the hub's mu held.
func (s *Subscription) close() {
	s.once.Do(func() {
		close(s.c)
	})
	delete(s.hub.subs, s)
}
