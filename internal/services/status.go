package services

import "sync"

// Status is the coarse sync state surfaced to the application. The UI
// only ever sees this enum plus aggregate counts; record-level remote
// errors stay in the logs.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusDownloading Status = "downloading"
	StatusSyncing     Status = "syncing"
	StatusSuccess     Status = "success"
	StatusError       Status = "error"
	StatusOffline     Status = "offline"
)

// StatusBus is a synchronous subscriber registry for status
// transitions. Subscribe returns an unsubscribe handle; Publish
// iterates subscribers on the caller's goroutine.
type StatusBus struct {
	mu   sync.Mutex
	subs map[int]func(Status)
	next int
	last Status
}

func NewStatusBus() *StatusBus {
	return &StatusBus{subs: make(map[int]func(Status)), last: StatusIdle}
}

func (b *StatusBus) Subscribe(fn func(Status)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *StatusBus) Publish(s Status) {
	b.mu.Lock()
	b.last = s
	fns := make([]func(Status), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Last returns the most recently published status.
func (b *StatusBus) Last() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}
