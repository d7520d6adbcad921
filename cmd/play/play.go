package play

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/GiGurra/boa/pkg/boa"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gigurra/patviz/cmd/common"
	"github.com/gigurra/patviz/cmd/common/config"
	"github.com/gigurra/patviz/cmd/common/logging"
	"github.com/gigurra/patviz/cmd/common/pattern"
	"github.com/gigurra/patviz/cmd/common/player"
	"github.com/gigurra/patviz/cmd/run"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type Params struct {
	Pattern  string `pos:"true" optional:"true" help:"Pattern to open (see 'patviz list'). Defaults to the configured pattern."`
	File     string `short:"f" help:"Open an authored dataset file instead of an embedded pattern." default:""`
	Watch    bool   `short:"w" help:"With --file, reload the dataset whenever the file changes."`
	Speed    string `short:"s" help:"Step interval: 0.5x, 1x, 2x, 3x, a duration like 750ms, or milliseconds." default:""`
	Autoplay bool   `short:"a" help:"Start playing immediately."`
	Verbose  bool   `short:"v" help:"Log at debug level to the log file."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "play",
		Short:       "Step through a pattern interactively",
		Long:        "Open the interactive visualizer: highlighted source on the left, the object diagram on the right, and playback controls below.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := Run(params); err != nil {
				fmt.Fprintf(os.Stderr, "patviz play: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func Run(params *Params) error {
	if params.Watch && params.File == "" {
		return fmt.Errorf("--watch needs --file")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	speed := cfg.PlaybackSpeed()
	if params.Speed != "" {
		if speed, err = player.ParseSpeed(params.Speed); err != nil {
			return err
		}
	}

	ds, err := run.Resolve(params.Pattern, params.File, cfg.DefaultPattern)
	if err != nil {
		return err
	}

	// Without a terminal there is nothing to draw on; fall back to printing.
	if !common.IsTerminal(os.Stdout) {
		logging.ToStderr(slog.LevelWarn)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run.Autoplay(ctx, ds, run.Options{Speed: speed, Context: cfg.ContextVisible()}, os.Stdout)
	}

	level := cfg.Level()
	if params.Verbose {
		level = slog.LevelDebug
	}
	closeLog := logging.ToFile(cfg.LogFile, level)
	defer closeLog()

	store := player.NewStore(player.WithSpeed(speed), player.WithLogger(slog.Default()))
	if err := store.Load(ds); err != nil {
		return err
	}

	sched := player.NewScheduler(store, nil)
	sched.Start()
	defer sched.Stop()

	patterns := lo.Map(pattern.Implemented(), func(e pattern.Entry, _ int) string { return e.ID })
	watchPath := ""
	if params.Watch {
		watchPath = params.File
	}

	m, unsubscribe := newModel(store, patterns, watchPath, cfg.ContextVisible())
	defer unsubscribe()

	if params.Autoplay {
		store.Play()
	}

	slog.Info("starting visualizer", "pattern", ds.ID(), "speed", speed, "session", store.Session())
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run visualizer: %w", err)
	}
	return nil
}
