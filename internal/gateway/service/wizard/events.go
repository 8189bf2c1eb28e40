package wizard

import (
	"context"
	"sync"

	"hookforge/internal/codegen"
	"hookforge/internal/gateway/repository/session"
)

// Event is a session state change pushed to subscribers.
type Event struct {
	SessionID string          `json:"sessionId"`
	Step      session.Step    `json:"step"`
	Status    session.Status  `json:"status"`
	Error     string          `json:"error,omitempty"`
	Parsed    *codegen.Parsed `json:"parsed,omitempty"`
	Run       uint64          `json:"run"`
}

func eventFor(sess session.Session) Event {
	evt := Event{
		SessionID: sess.ID,
		Step:      sess.Step,
		Status:    sess.Status,
		Error:     sess.Error,
		Run:       sess.Run,
	}
	if sess.Result != nil {
		p := sess.Result.Parsed
		evt.Parsed = &p
	}
	return evt
}

const subscriberBuffer = 16

type broker struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

func newBroker() *broker {
	return &broker{subs: make(map[string]map[chan Event]struct{})}
}

func (b *broker) subscribe(ctx context.Context, id string) chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	set, ok := b.subs[id]
	if !ok {
		set = make(map[chan Event]struct{})
		b.subs[id] = set
	}
	set[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.unsubscribe(id, ch)
	}()
	return ch
}

func (b *broker) unsubscribe(id string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[id]
	if !ok {
		return
	}
	if _, ok := set[ch]; !ok {
		return
	}
	delete(set, ch)
	close(ch)
	if len(set) == 0 {
		delete(b.subs, id)
	}
}

func (b *broker) publish(id string, evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[id] {
		b.deliverLocked(ch, evt)
	}
}

func (b *broker) deliver(ch chan Event, evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deliverLocked(ch, evt)
}

// deliverLocked drops the oldest queued event when a subscriber falls
// behind. The channel may already be closed by unsubscribe; the caller
// holds mu so that cannot race.
func (b *broker) deliverLocked(ch chan Event, evt Event) {
	if !b.subscribed(ch) {
		return
	}
	select {
	case ch <- evt:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- evt:
	default:
	}
}

func (b *broker) subscribed(ch chan Event) bool {
	for _, set := range b.subs {
		if _, ok := set[ch]; ok {
			return true
		}
	}
	return false
}

// close ends every subscription of a session.
func (b *broker) close(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[id] {
		close(ch)
	}
	delete(b.subs, id)
}
