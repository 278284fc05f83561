package api

import (
	"sync"

	"github.com/scriptcut/scriptcut-editor/internal/session"
)

const inboxLimit = 50

// Inbox holds notifications raised outside a request until the next
// GET /session picks them up. It implements session.Notifier.
type Inbox struct {
	mu      sync.Mutex
	effects []session.Effect
}

func NewInbox() *Inbox {
	return &Inbox{}
}

func (b *Inbox) Notify(projectID string, e session.Effect) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.effects = append(b.effects, e)
	if n := len(b.effects); n > inboxLimit {
		b.effects = append([]session.Effect(nil), b.effects[n-inboxLimit:]...)
	}
}

// Drain returns the pending notifications in order and clears the inbox.
func (b *Inbox) Drain() []session.Effect {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.effects
	b.effects = nil
	return out
}
