package store

import "sync"

// ChangeAction describes what happened to a persisted document.
type ChangeAction string

const (
	ActionSaved   ChangeAction = "saved"
	ActionAdded   ChangeAction = "added"
	ActionUpdated ChangeAction = "updated"
	ActionCleared ChangeAction = "cleared"
	ActionCleaned ChangeAction = "cleaned"
)

// Change is one notification: which document key changed and how.
type Change struct {
	Key    string       `json:"key"`
	Action ChangeAction `json:"action"`
}

// Notifier is an in-process publish/subscribe signal fired on every
// persisted-document change, letting independent consumers refresh without
// polling. Callbacks run synchronously on the publishing goroutine.
type Notifier struct {
	mu   sync.RWMutex
	subs map[int]func(Change)
	next int
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]func(Change))}
}

// Subscribe registers a callback and returns its cancel function.
func (n *Notifier) Subscribe(fn func(Change)) func() {
	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

// Publish delivers a change to every subscriber.
func (n *Notifier) Publish(c Change) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, fn := range n.subs {
		fn(c)
	}
}
