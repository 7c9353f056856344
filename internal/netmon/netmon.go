// Package netmon exposes the device's connectivity state to the sync
// engine: a point-in-time snapshot, a subscription stream of changes,
// and the coarse quality tier derived from both.
package netmon

import "sync"

// Technology is the link technology currently carrying traffic.
type Technology string

const (
	TechNone     Technology = "none"
	TechWifi     Technology = "wifi"
	TechEthernet Technology = "ethernet"
	TechCell5G   Technology = "cell_5g"
	TechCell4G   Technology = "cell_4g"
	TechCell3G   Technology = "cell_3g"
	TechCell2G   Technology = "cell_2g"
	TechCellular Technology = "cellular" // generation unknown
)

// State is one connectivity observation. Connected means a link is up;
// Reachable means the backend answered a probe over it.
type State struct {
	Connected  bool
	Reachable  bool
	Technology Technology
}

// Online reports whether the engine may attempt network work at all.
func (s State) Online() bool {
	return s.Connected && s.Reachable
}

// Monitor is the connectivity source the engine consumes. Subscribe
// returns an unsubscribe handle; callbacks run synchronously on the
// goroutine publishing the change.
type Monitor interface {
	Current() State
	Subscribe(fn func(State)) (unsubscribe func())
}

// Manual is a Monitor fed by platform glue (or tests) calling Set.
type Manual struct {
	mu    sync.Mutex
	state State
	subs  map[int]func(State)
	next  int
}

func NewManual(initial State) *Manual {
	return &Manual{state: initial, subs: make(map[int]func(State))}
}

func (m *Manual) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manual) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Set publishes a new state. Subscribers are only notified when the
// state actually changed, so flapping sources can call Set freely.
func (m *Manual) Set(state State) {
	m.mu.Lock()
	if m.state == state {
		m.mu.Unlock()
		return
	}
	m.state = state
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
