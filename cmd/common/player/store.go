// Package player is the playback engine: a Store holding the active dataset
// and cursor, and a Scheduler that advances it on a timer while playing.
package player

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/gigurra/patviz/cmd/common/pattern"
	"github.com/google/uuid"
)

// state is replaced as a whole on every transition. shown is the animation
// step whose snapshot is on screen, or -1 for the dataset's initial state.
type state struct {
	player PlayerState
	shown  int
}

type subscriber struct {
	id int
	fn func(Frame)
}

// Store owns the playback state of one visualizer. It is safe for
// concurrent use; subscribers are notified synchronously after each change,
// outside the store lock.
type Store struct {
	mu sync.RWMutex

	ds      *pattern.Dataset
	cur     state
	version uint64
	epoch   uint64 // bumped whenever playback starts, stops or changes speed, so stale ticks can be dropped
	run     uint64 // bumped whenever playback starts

	subs   []subscriber
	nextID int

	session string
	log     *slog.Logger
}

type Option func(*Store)

// WithLogger sets the logger for state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSpeed sets the initial autoplay interval.
func WithSpeed(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.cur.player.Speed = d
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		cur: state{
			player: PlayerState{Speed: DefaultSpeed},
			shown:  -1,
		},
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.session = uuid.NewString()
	s.log = s.log.With("session", s.session)
	return s
}

// Session identifies this store on every log record it writes.
func (s *Store) Session() string {
	return s.session
}

// Subscribe registers fn to be called after every state change. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Frame)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool { return sub.id == id })
	}
}

// Load replaces the active dataset and rewinds to the initial state, paused.
// Speed is kept. Invalid datasets are rejected and leave the store unchanged.
func (s *Store) Load(ds *pattern.Dataset) error {
	if err := pattern.Validate(ds); err != nil {
		return err
	}

	s.mu.Lock()
	s.ds = ds
	s.cur = state{
		player: PlayerState{
			TotalSteps:        ds.StepCount(),
			Speed:             s.cur.player.Speed,
			SelectedPatternID: ds.Metadata.ID,
		},
		shown: -1,
	}
	s.epoch++
	s.version++
	frame, subs := s.publishLocked()
	s.mu.Unlock()

	s.log.Info("pattern loaded", "pattern", ds.Metadata.ID, "steps", ds.StepCount())
	notify(frame, subs)
	return nil
}

// Advance moves one step forward. On the last step it stops playback instead.
func (s *Store) Advance() {
	s.mutate("advance", func(ds *pattern.Dataset, cur state) state {
		return advance(cur)
	})
}

// Tick is Advance on behalf of a scheduler task started at epoch. It is
// ignored unless the store is still playing in that same epoch.
func (s *Store) Tick(epoch uint64) bool {
	applied := false
	s.mutate("tick", func(ds *pattern.Dataset, cur state) state {
		if !cur.player.IsPlaying || epoch != s.epoch {
			return cur
		}
		applied = true
		return advance(cur)
	})
	return applied
}

func advance(cur state) state {
	next := cur.player.CurrentStep + 1
	if next >= cur.player.TotalSteps {
		cur.player.IsPlaying = false
		return cur
	}
	cur.player.CurrentStep = next
	cur.shown = next
	return cur
}

// Retreat moves one step back without touching the play flag.
func (s *Store) Retreat() {
	s.mutate("retreat", func(ds *pattern.Dataset, cur state) state {
		if cur.player.CurrentStep == 0 {
			return cur
		}
		cur.player.CurrentStep--
		cur.shown = cur.player.CurrentStep
		return cur
	})
}

// Seek jumps to step and pauses. Out of range steps are ignored.
func (s *Store) Seek(step int) {
	s.mutate("seek", func(ds *pattern.Dataset, cur state) state {
		if step < 0 || step >= cur.player.TotalSteps {
			return cur
		}
		cur.player.CurrentStep = step
		cur.player.IsPlaying = false
		cur.shown = step
		return cur
	})
}

// Play starts autoplay, rewinding first when the cursor is on the last step.
func (s *Store) Play() {
	s.mutate("play", func(ds *pattern.Dataset, cur state) state {
		return play(cur)
	})
}

func play(cur state) state {
	if cur.player.TotalSteps == 0 {
		return cur
	}
	if cur.player.CurrentStep >= cur.player.TotalSteps-1 {
		cur = rewind(cur)
	}
	cur.player.IsPlaying = true
	return cur
}

func (s *Store) Pause() {
	s.mutate("pause", func(ds *pattern.Dataset, cur state) state {
		cur.player.IsPlaying = false
		return cur
	})
}

func (s *Store) TogglePlay() {
	s.mutate("toggle", func(ds *pattern.Dataset, cur state) state {
		if cur.player.IsPlaying {
			cur.player.IsPlaying = false
			return cur
		}
		return play(cur)
	})
}

// SetSpeed changes the autoplay interval. Non-positive values are ignored.
func (s *Store) SetSpeed(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	changed := s.cur.player.Speed != d
	if changed {
		s.cur.player.Speed = d
		s.epoch++
		s.version++
	}
	frame, subs := s.publishLocked()
	s.mu.Unlock()

	if changed {
		s.log.Debug("speed changed", "speed", d)
		notify(frame, subs)
	}
}

// Reset rewinds to the initial state, paused.
func (s *Store) Reset() {
	s.mutate("reset", func(ds *pattern.Dataset, cur state) state {
		cur = rewind(cur)
		cur.player.IsPlaying = false
		return cur
	})
}

func rewind(cur state) state {
	cur.player.CurrentStep = 0
	cur.shown = -1
	return cur
}

// CurrentCodeHighlight returns the highlighted source lines of the current step.
func (s *Store) CurrentCodeHighlight() []int {
	return s.Frame().Highlight
}

// Player returns the current cursor and transport state.
func (s *Store) Player() PlayerState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.player
}

// Snapshot returns the animation state currently on screen, nil when empty.
func (s *Store) Snapshot() pattern.Snapshot {
	return s.Frame().Snapshot
}

// Dataset returns the active dataset, nil when empty.
func (s *Store) Dataset() *pattern.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds
}

// Frame returns a consistent view of the whole store.
func (s *Store) Frame() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frameLocked()
}

func (s *Store) frameLocked() Frame {
	f := Frame{
		Player:  s.cur.player,
		Dataset: s.ds,
		Version: s.version,
		epoch:   s.epoch,
		run:     s.run,
	}
	if s.ds == nil {
		return f
	}
	if s.cur.shown < 0 {
		f.Snapshot = s.ds.InitialState
	} else {
		f.Snapshot = s.ds.AnimationSteps[s.cur.shown].State
	}
	if step := s.cur.player.CurrentStep; step < len(s.ds.CodeSteps) {
		cs := s.ds.CodeSteps[step]
		f.Highlight = slices.Clone(cs.HighlightLines)
		f.Context = cs.Context
	}
	if f.Highlight == nil {
		f.Highlight = []int{}
	}
	return f
}

// mutate applies fn to the current state under the write lock. Nothing is
// published when no dataset is loaded or fn returns the state unchanged.
func (s *Store) mutate(op string, fn func(ds *pattern.Dataset, cur state) state) {
	s.mu.Lock()
	if s.ds == nil {
		s.mu.Unlock()
		return
	}
	prev := s.cur
	next := fn(s.ds, prev)
	if next == prev {
		s.mu.Unlock()
		return
	}
	if next.player.IsPlaying != prev.player.IsPlaying {
		s.epoch++
		if next.player.IsPlaying {
			s.run++
		}
	}
	s.cur = next
	s.version++
	frame, subs := s.publishLocked()
	s.mu.Unlock()

	s.log.Debug(op,
		"step", next.player.CurrentStep,
		"total", next.player.TotalSteps,
		"playing", next.player.IsPlaying,
	)
	notify(frame, subs)
}

func (s *Store) publishLocked() (Frame, []func(Frame)) {
	fns := make([]func(Frame), len(s.subs))
	for i, sub := range s.subs {
		fns[i] = sub.fn
	}
	return s.frameLocked(), fns
}

func notify(f Frame, subs []func(Frame)) {
	for _, fn := range subs {
		fn(f)
	}
}
