package configcmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/patviz/cmd/common"
	"github.com/gigurra/patviz/cmd/common/config"
	"github.com/gigurra/patviz/cmd/common/pattern"
	"github.com/gigurra/patviz/cmd/common/player"
	"github.com/spf13/cobra"
)

type Params struct {
	Speed       string `short:"s" help:"Set the default playback speed (0.5x, 1x, 2x, 3x, 750ms, ...)." default:""`
	Pattern     string `short:"p" help:"Set the pattern opened when none is given." default:""`
	LogLevel    string `long:"log-level" help:"Set the log level: debug, info, warn, error." default:""`
	HideContext bool   `long:"hide-context" help:"Hide the step context line by default."`
	ShowContext bool   `long:"show-context" help:"Show the step context line by default."`
	Path        bool   `long:"path" help:"Print the config file path and exit."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "config",
		Short:       "Show or change the saved defaults",
		Long:        "Without flags, print the effective configuration as JSON. With flags, validate the new values and save them to ~/.patviz/config.json.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := Run(params, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "patviz config: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func Run(params *Params, w io.Writer) error {
	if params.Path {
		fmt.Fprintln(w, config.ConfigPath())
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	changed, err := apply(cfg, params)
	if err != nil {
		return err
	}
	if changed {
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// apply copies the set flags onto cfg after validating them.
func apply(cfg *config.Config, params *Params) (bool, error) {
	if params.HideContext && params.ShowContext {
		return false, fmt.Errorf("--hide-context and --show-context are mutually exclusive")
	}

	changed := false
	if params.Speed != "" {
		d, err := player.ParseSpeed(params.Speed)
		if err != nil {
			return false, err
		}
		cfg.Speed = player.SpeedLabel(d)
		changed = true
	}
	if params.Pattern != "" {
		if _, err := pattern.Load(params.Pattern); err != nil {
			return false, err
		}
		cfg.DefaultPattern = params.Pattern
		changed = true
	}
	if params.LogLevel != "" {
		switch level := strings.ToLower(params.LogLevel); level {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = level
		default:
			return false, fmt.Errorf("unknown log level %q", params.LogLevel)
		}
		changed = true
	}
	if params.HideContext || params.ShowContext {
		show := params.ShowContext
		cfg.ShowContext = &show
		changed = true
	}
	return changed, nil
}
