package run

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/patviz/cmd/common"
	"github.com/gigurra/patviz/cmd/common/config"
	"github.com/gigurra/patviz/cmd/common/logging"
	"github.com/gigurra/patviz/cmd/common/pattern"
	"github.com/gigurra/patviz/cmd/common/player"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type Params struct {
	Pattern string `pos:"true" optional:"true" help:"Pattern to play (see 'patviz list')."`
	File    string `short:"f" help:"Play an authored dataset file instead of an embedded pattern." default:""`
	Speed   string `short:"s" help:"Step interval: 0.5x, 1x, 2x, 3x, a duration like 750ms, or milliseconds." default:""`
	Loop    bool   `short:"l" help:"Start over after the last step until interrupted."`
	Quiet   bool   `short:"q" help:"Only print step messages, not code context."`
	Verbose bool   `short:"v" help:"Log playback transitions to stderr."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "run",
		Short:       "Play a pattern headlessly, printing each step",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := Run(params); err != nil {
				fmt.Fprintf(os.Stderr, "patviz run: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func Run(params *Params) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if params.Verbose {
		level = slog.LevelDebug
	}
	logging.ToStderr(level)

	ds, err := Resolve(params.Pattern, params.File, cfg.DefaultPattern)
	if err != nil {
		return err
	}

	speed := cfg.PlaybackSpeed()
	if params.Speed != "" {
		if speed, err = player.ParseSpeed(params.Speed); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return Autoplay(ctx, ds, Options{
		Speed:   speed,
		Loop:    params.Loop,
		Context: !params.Quiet,
	}, os.Stdout)
}

// Resolve picks the dataset to play: an authored file wins over a pattern
// id, which wins over the configured default.
func Resolve(id, file, fallback string) (*pattern.Dataset, error) {
	if file != "" {
		return pattern.ParseFile(file)
	}
	if id == "" {
		id = fallback
	}
	return pattern.Load(id)
}

// Options controls a headless playback.
type Options struct {
	Speed   time.Duration
	Loop    bool
	Context bool
	Clock   clockwork.Clock
}

// Autoplay plays ds from the start, writing one line per step to w. It
// returns after the last step, or when ctx is cancelled.
func Autoplay(ctx context.Context, ds *pattern.Dataset, opts Options, w io.Writer) error {
	store := player.NewStore(player.WithSpeed(opts.Speed), player.WithLogger(slog.Default()))
	if err := store.Load(ds); err != nil {
		return err
	}

	slog.Info("starting autoplay", "pattern", ds.ID(), "speed", opts.Speed, "loop", opts.Loop, "session", store.Session())

	first := store.Frame()
	fmt.Fprintf(w, "%s %s · %d steps · %s\n", ds.Metadata.Icon, ds.Metadata.Name, first.Player.TotalSteps, player.SpeedLabel(first.Player.Speed))
	p := printer{w: w, ds: ds, withContext: opts.Context}
	p.initial()
	if first.Player.TotalSteps == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	// Ticks may outrun the printer; it catches up from the dataset.
	changed := make(chan struct{}, 1)
	unsubscribe := store.Subscribe(func(player.Frame) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	sched := player.NewScheduler(store, clock)
	sched.Start()
	defer sched.Stop()

	g.Go(func() error {
		shown := 0
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-changed:
			}

			f := store.Frame()
			if f.Player.CurrentStep < shown {
				fmt.Fprintln(w, "↻ again")
				p.initial()
				shown = 0
			}
			for step := shown + 1; step <= f.Player.CurrentStep; step++ {
				p.step(step)
			}
			shown = f.Player.CurrentStep

			if f.Player.IsPlaying || !f.AtEnd() {
				continue
			}
			if !opts.Loop {
				fmt.Fprintln(w, "✔ done")
				cancel()
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			case <-clock.After(f.Player.Speed):
			}
			store.Play()
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		sched.Stop()
		return nil
	})

	store.Play()
	return g.Wait()
}

type printer struct {
	w           io.Writer
	ds          *pattern.Dataset
	withContext bool
}

func (p printer) initial() {
	var hint string
	if len(p.ds.CodeSteps) > 0 {
		hint = p.ds.CodeSteps[0].Context
	}
	p.line(0, p.ds.InitialState.Message(), hint)
}

func (p printer) step(i int) {
	p.line(i, p.ds.AnimationSteps[i].State.Message(), p.ds.CodeSteps[i].Context)
}

func (p printer) line(i int, msg, hint string) {
	total := p.ds.StepCount()
	fmt.Fprintf(p.w, "[%*d/%d] %s\n", len(fmt.Sprint(total)), i+1, total, msg)
	if p.withContext && hint != "" {
		fmt.Fprintf(p.w, "        ▶ %s\n", hint)
	}
}
