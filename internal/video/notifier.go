package video

import "sync"

// Notifier broadcasts a single event. Listeners subscribed after the event
// has fired are called immediately.
type Notifier struct {
	mu        sync.Mutex
	fired     bool
	listeners []func()
}

// Subscribe registers fn to run when the event fires.
func (n *Notifier) Subscribe(fn func()) {
	n.mu.Lock()
	if n.fired {
		n.mu.Unlock()
		fn()
		return
	}
	n.listeners = append(n.listeners, fn)
	n.mu.Unlock()
}

// Fire runs every listener. Only the first call has any effect.
func (n *Notifier) Fire() {
	n.mu.Lock()
	if n.fired {
		n.mu.Unlock()
		return
	}
	n.fired = true
	listeners := n.listeners
	n.listeners = nil
	n.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Fired reports whether the event has fired.
func (n *Notifier) Fired() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fired
}
