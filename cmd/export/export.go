package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/patviz/cmd/common"
	"github.com/gigurra/patviz/cmd/common/pattern"
	"github.com/spf13/cobra"
)

type Params struct {
	Pattern string `pos:"true" help:"Pattern id to export."`
	Output  string `short:"o" help:"Write to this file instead of stdout." default:""`
	Force   bool   `short:"f" help:"Overwrite an existing output file."`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "export",
		Short:       "Write a pattern's dataset as YAML",
		Long:        "Write the embedded dataset of a pattern as YAML. Edit the copy and open it with 'patviz play --file <path> --watch' to see changes live.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			if err := Run(params, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "patviz export: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func Run(params *Params, stdout io.Writer) error {
	raw, err := pattern.Raw(params.Pattern)
	if err != nil {
		return err
	}

	if params.Output == "" || params.Output == "-" {
		_, err := stdout.Write(raw)
		return err
	}

	if !params.Force {
		if _, err := os.Stat(params.Output); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", params.Output)
		}
	}
	if dir := filepath.Dir(params.Output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(params.Output, raw, 0644); err != nil {
		return fmt.Errorf("write %s: %w", params.Output, err)
	}
	fmt.Fprintf(stdout, "wrote %s (%d bytes)\n", params.Output, len(raw))
	return nil
}
