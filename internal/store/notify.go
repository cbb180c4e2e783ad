package store

import "sync"

// notifier fans collection snapshots out to subscribers. Both store
// implementations embed one and publish after every successful write.
type notifier struct {
	mu   sync.RWMutex
	subs map[string]map[*subscription]struct{}
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[string]map[*subscription]struct{})}
}

type subscription struct {
	n    *notifier
	path string
	fn   func(Snapshot)

	// mu serializes deliveries so each subscription sees snapshots one at
	// a time, in publish order.
	mu     sync.Mutex
	closed bool
}

func (n *notifier) subscribe(path string, fn func(Snapshot)) *subscription {
	sub := &subscription{n: n, path: path, fn: fn}
	n.mu.Lock()
	if n.subs[path] == nil {
		n.subs[path] = make(map[*subscription]struct{})
	}
	n.subs[path][sub] = struct{}{}
	n.mu.Unlock()
	return sub
}

// publish delivers snap to every subscriber of snap.Path. Deliveries run on
// the caller's goroutine; a slow callback slows the writer, not other
// collections.
func (n *notifier) publish(snap Snapshot) {
	n.mu.RLock()
	targets := make([]*subscription, 0, len(n.subs[snap.Path]))
	for sub := range n.subs[snap.Path] {
		targets = append(targets, sub)
	}
	n.mu.RUnlock()

	for _, sub := range targets {
		sub.deliver(snap)
	}
}

func (s *subscription) deliver(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.fn(snap)
}

// Close unregisters the subscription. It waits for any in-flight delivery,
// so the callback is never invoked after Close returns.
func (s *subscription) Close() {
	s.n.mu.Lock()
	if set, ok := s.n.subs[s.path]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(s.n.subs, s.path)
		}
	}
	s.n.mu.Unlock()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
