package player

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler drives a Store while it is playing. It owns at most one ticker:
// whenever playback stops, restarts, changes speed or a new dataset is
// loaded, the running ticker is stopped before a new one is created.
type Scheduler struct {
	store *Store
	clock clockwork.Clock

	mu          sync.Mutex
	task        *task
	unsubscribe func()
}

type task struct {
	epoch  uint64
	run    uint64
	ticker clockwork.Ticker
	done   chan struct{}
}

// NewScheduler creates a scheduler for store. A nil clock means wall time.
func NewScheduler(store *Store, clock clockwork.Clock) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{store: store, clock: clock}
}

// Start begins observing the store. If the store is already playing, the
// first step is taken immediately.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.mu.Unlock()
		return
	}
	s.unsubscribe = s.store.Subscribe(func(Frame) { s.reconcile() })
	s.mu.Unlock()

	s.reconcile()
}

// Stop releases the ticker and stops observing the store. It is safe to call
// more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.stopTaskLocked()
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// reconcile makes the running task match the store. Notifications can
// arrive out of order from concurrent callers, so the store is read fresh
// rather than trusting the frame that triggered the call.
func (s *Scheduler) reconcile() {
	s.mu.Lock()
	if s.unsubscribe == nil {
		s.mu.Unlock()
		return
	}

	f := s.store.Frame()
	if !f.Player.IsPlaying {
		s.stopTaskLocked()
		s.mu.Unlock()
		return
	}
	if s.task != nil && s.task.epoch == f.epoch {
		s.mu.Unlock()
		return
	}

	// A new run gets its first step right away; a speed change only
	// restarts the ticker.
	immediate := s.task == nil || s.task.run != f.run
	s.stopTaskLocked()
	s.startTaskLocked(f.epoch, f.run, f.Player.Speed)
	s.mu.Unlock()

	if immediate {
		s.store.Tick(f.epoch)
	}
}

func (s *Scheduler) startTaskLocked(epoch, run uint64, every time.Duration) {
	t := &task{
		epoch:  epoch,
		run:    run,
		ticker: s.clock.NewTicker(every),
		done:   make(chan struct{}),
	}
	s.task = t

	go func() {
		for {
			select {
			case <-t.done:
				return
			case <-t.ticker.Chan():
				s.store.Tick(t.epoch)
			}
		}
	}()
}

func (s *Scheduler) stopTaskLocked() {
	if s.task == nil {
		return
	}
	s.task.ticker.Stop()
	close(s.task.done)
	s.task = nil
}
