// Package notify provides the formatting notification channel.
//
// The notify package implements a small publish/subscribe hub. Observers
// subscribe to a named event; Emit calls every observer of that name
// synchronously, in subscription order. The Formatter publishes each host
// command under the command name and again under Wildcard, so a single
// wildcard observer sees every formatting action.
package notify

import (
	"sync"

	"github.com/google/uuid"
)

// Wildcard is the event name that receives every formatting action.
const Wildcard = "*"

// Event is the payload delivered to observers.
type Event struct {
	// Name is the host command that ran (e.g. "bold", "formatblock").
	Name string

	// Param is the parameter bound to the action, if any.
	Param string
}

// Observer is called when an event is emitted.
type Observer func(Event)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       string
	event    string
	observer Observer
	once     bool
	notifier *Notifier
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Event returns the event name the subscription listens to.
func (s *Subscription) Event() string {
	return s.event
}

// Unsubscribe removes this subscription. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.Off(s.event, s)
	}
}

// Notifier manages event subscriptions.
type Notifier struct {
	mu        sync.RWMutex
	observers map[string][]*Subscription
}

// New creates a new Notifier.
func New() *Notifier {
	return &Notifier{
		observers: make(map[string][]*Subscription),
	}
}

// On registers an observer for event. A nil observer is ignored and nil is
// returned.
func (n *Notifier) On(event string, observer Observer) *Subscription {
	return n.add(event, observer, false)
}

// Once registers an observer that is removed after its first delivery.
func (n *Notifier) Once(event string, observer Observer) *Subscription {
	return n.add(event, observer, true)
}

func (n *Notifier) add(event string, observer Observer, once bool) *Subscription {
	if observer == nil {
		return nil
	}
	sub := &Subscription{
		id:       uuid.NewString(),
		event:    event,
		observer: observer,
		once:     once,
		notifier: n,
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.observers[event] = append(n.observers[event], sub)
	return sub
}

// Off removes sub from event. With a nil sub every observer of event is
// removed. It reports whether anything was removed.
func (n *Notifier) Off(event string, sub *Subscription) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	subs, ok := n.observers[event]
	if !ok {
		return false
	}
	if sub == nil {
		delete(n.observers, event)
		return true
	}
	for i, existing := range subs {
		if existing == sub {
			n.removeAt(event, i)
			return true
		}
	}
	return false
}

// OffAll removes every observer.
func (n *Notifier) OffAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.observers = make(map[string][]*Subscription)
}

// Emit delivers ev to the observers of event. Observers run outside the
// lock, so they may subscribe or unsubscribe; changes apply to the next
// Emit. Once-observers are removed before they are called.
func (n *Notifier) Emit(event string, ev Event) {
	n.mu.Lock()
	subs := n.observers[event]
	if len(subs) == 0 {
		n.mu.Unlock()
		return
	}
	snapshot := make([]*Subscription, len(subs))
	copy(snapshot, subs)

	kept := subs[:0:0]
	for _, sub := range subs {
		if !sub.once {
			kept = append(kept, sub)
		}
	}
	if len(kept) == 0 {
		delete(n.observers, event)
	} else {
		n.observers[event] = kept
	}
	n.mu.Unlock()

	for _, sub := range snapshot {
		sub.observer(ev)
	}
}

// Listeners returns the number of observers of event.
func (n *Notifier) Listeners(event string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers[event])
}

// HasListeners reports whether event has at least one observer.
func (n *Notifier) HasListeners(event string) bool {
	return n.Listeners(event) > 0
}

// removeAt deletes the i-th observer of event. Callers hold the lock.
func (n *Notifier) removeAt(event string, i int) {
	subs := n.observers[event]
	next := make([]*Subscription, 0, len(subs)-1)
	next = append(next, subs[:i]...)
	next = append(next, subs[i+1:]...)
	if len(next) == 0 {
		delete(n.observers, event)
		return
	}
	n.observers[event] = next
}
