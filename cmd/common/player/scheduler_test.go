package player

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// countingClock wraps a fake clock and tracks how many tickers are alive.
type countingClock struct {
	clockwork.Clock

	mu      sync.Mutex
	live    int
	peak    int
	created int
}

func (c *countingClock) NewTicker(d time.Duration) clockwork.Ticker {
	t := c.Clock.NewTicker(d)
	c.mu.Lock()
	c.live++
	c.created++
	c.peak = max(c.peak, c.live)
	c.mu.Unlock()
	return &countedTicker{Ticker: t, clock: c}
}

func (c *countingClock) counts() (live, peak, created int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live, c.peak, c.created
}

type countedTicker struct {
	clockwork.Ticker
	clock *countingClock
	once  sync.Once
}

func (t *countedTicker) Stop() {
	t.once.Do(func() {
		t.clock.mu.Lock()
		t.clock.live--
		t.clock.mu.Unlock()
	})
	t.Ticker.Stop()
}

type advancer interface {
	Advance(d time.Duration)
}

type schedulerFixture struct {
	store *Store
	fake  advancer
	clock *countingClock
	sched *Scheduler
}

func newSchedulerFixture(t *testing.T, id string) schedulerFixture {
	t.Helper()
	store, _ := loadedStore(t, id)
	fake := clockwork.NewFakeClock()
	clock := &countingClock{Clock: fake}
	sched := NewScheduler(store, clock)
	sched.Start()
	t.Cleanup(sched.Stop)
	return schedulerFixture{store: store, fake: fake, clock: clock, sched: sched}
}

// eventually polls cond until it holds; ticks are delivered on the
// scheduler's goroutine.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func (f schedulerFixture) step() int {
	return f.store.Player().CurrentStep
}

func (f schedulerFixture) live() int {
	live, _, _ := f.clock.counts()
	return live
}

func TestPlayTakesFirstStepImmediately(t *testing.T) {
	f := newSchedulerFixture(t, "strategy")

	f.store.Play()
	if got := f.step(); got != 1 {
		t.Fatalf("step right after Play = %d, want 1", got)
	}
	if got := f.live(); got != 1 {
		t.Fatalf("live tickers = %d, want 1", got)
	}

	f.fake.Advance(f.store.Player().Speed)
	eventually(t, "step 2 after one interval", func() bool { return f.step() == 2 })

	f.fake.Advance(f.store.Player().Speed / 2)
	time.Sleep(10 * time.Millisecond)
	if got := f.step(); got != 2 {
		t.Errorf("step after half an interval = %d, want 2", got)
	}
}

func TestAutoplayRunsToTheEndAndStops(t *testing.T) {
	f := newSchedulerFixture(t, "singleton")
	total := f.store.Player().TotalSteps

	f.store.Play()
	for want := 2; want < total; want++ {
		f.fake.Advance(DefaultSpeed)
		eventually(t, "next step", func() bool { return f.step() == want })
	}

	f.fake.Advance(DefaultSpeed)
	eventually(t, "playback to stop", func() bool { return !f.store.Player().IsPlaying })

	if got := f.step(); got != total-1 {
		t.Errorf("final step = %d, want %d", got, total-1)
	}
	if got := f.live(); got != 0 {
		t.Errorf("live tickers after terminal stop = %d, want 0", got)
	}
}

func TestRapidToggleKeepsOneTicker(t *testing.T) {
	f := newSchedulerFixture(t, "builder")

	for range 50 {
		f.store.Play()
		f.store.Pause()
		f.store.TogglePlay()
		f.store.TogglePlay()
	}
	f.store.Play()

	live, peak, _ := f.clock.counts()
	if live != 1 {
		t.Errorf("live tickers = %d, want 1", live)
	}
	if peak > 1 {
		t.Errorf("peak live tickers = %d, want at most 1", peak)
	}

	f.store.Pause()
	if got := f.live(); got != 0 {
		t.Errorf("live tickers after pause = %d, want 0", got)
	}
}

func TestConcurrentTogglesKeepOneTicker(t *testing.T) {
	f := newSchedulerFixture(t, "builder")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				f.store.TogglePlay()
			}
		}()
	}
	wg.Wait()
	f.store.Pause()

	live, peak, _ := f.clock.counts()
	if peak > 1 {
		t.Errorf("peak live tickers = %d, want at most 1", peak)
	}
	if live != 0 {
		t.Errorf("live tickers after pause = %d, want 0", live)
	}
}

func TestSeekStopsTicker(t *testing.T) {
	f := newSchedulerFixture(t, "adapter")

	f.store.Play()
	f.store.Seek(5)
	if got := f.live(); got != 0 {
		t.Errorf("live tickers after seek = %d, want 0", got)
	}

	f.fake.Advance(10 * DefaultSpeed)
	time.Sleep(10 * time.Millisecond)
	if got := f.step(); got != 5 {
		t.Errorf("step moved to %d after seek", got)
	}
}

func TestLoadWhilePlayingCancelsTicker(t *testing.T) {
	f := newSchedulerFixture(t, "strategy")

	f.store.Play()
	if err := f.store.Load(mustLoad(t, "singleton")); err != nil {
		t.Fatal(err)
	}

	if got := f.live(); got != 0 {
		t.Errorf("live tickers after load = %d, want 0", got)
	}
	f.fake.Advance(5 * DefaultSpeed)
	time.Sleep(10 * time.Millisecond)
	p := f.store.Player()
	if p.CurrentStep != 0 || p.IsPlaying || p.SelectedPatternID != "singleton" {
		t.Errorf("new dataset advanced by a stale ticker: %+v", p)
	}
}

func TestSpeedChangeRestartsTickerWithoutExtraStep(t *testing.T) {
	f := newSchedulerFixture(t, "builder")

	f.store.Play()
	f.store.SetSpeed(500 * time.Millisecond)

	if got := f.step(); got != 1 {
		t.Errorf("step after speed change = %d, want 1", got)
	}
	live, peak, created := f.clock.counts()
	if live != 1 || peak != 1 || created != 2 {
		t.Errorf("tickers live=%d peak=%d created=%d, want 1/1/2", live, peak, created)
	}

	f.fake.Advance(500 * time.Millisecond)
	eventually(t, "step at the new speed", func() bool { return f.step() == 2 })
}

func TestSpeedChangeWhilePausedStartsNothing(t *testing.T) {
	f := newSchedulerFixture(t, "builder")

	f.store.SetSpeed(time.Second)
	if _, _, created := f.clock.counts(); created != 0 {
		t.Errorf("created %d tickers while paused", created)
	}
}

func TestStopReleasesTicker(t *testing.T) {
	f := newSchedulerFixture(t, "singleton")

	f.store.Play()
	f.sched.Stop()
	f.sched.Stop()

	if got := f.live(); got != 0 {
		t.Errorf("live tickers after Stop = %d, want 0", got)
	}
	f.fake.Advance(5 * DefaultSpeed)
	time.Sleep(10 * time.Millisecond)
	if got := f.step(); got != 1 {
		t.Errorf("step moved to %d after Stop", got)
	}

	f.store.Pause()
	f.store.Play()
	if got := f.live(); got != 0 {
		t.Errorf("stopped scheduler started a ticker")
	}
}

func TestStartWhilePlayingStepsImmediately(t *testing.T) {
	store, _ := loadedStore(t, "strategy")
	store.Play()

	clock := &countingClock{Clock: clockwork.NewFakeClock()}
	sched := NewScheduler(store, clock)
	sched.Start()
	defer sched.Stop()

	if got := store.Player().CurrentStep; got != 1 {
		t.Errorf("step after Start = %d, want 1", got)
	}
	if live, _, _ := clock.counts(); live != 1 {
		t.Errorf("live tickers = %d, want 1", live)
	}
}

func TestSingleStepDatasetStopsOnFirstTick(t *testing.T) {
	store := NewStore()
	if err := store.Load(tinyDataset("one", 1)); err != nil {
		t.Fatal(err)
	}
	clock := &countingClock{Clock: clockwork.NewFakeClock()}
	sched := NewScheduler(store, clock)
	sched.Start()
	defer sched.Stop()

	store.Play()
	p := store.Player()
	if p.IsPlaying || p.CurrentStep != 0 {
		t.Errorf("single-step playback = %+v, want stopped on step 0", p)
	}
	if live, _, _ := clock.counts(); live != 0 {
		t.Errorf("live tickers = %d, want 0", live)
	}
}
