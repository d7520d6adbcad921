package main

import (
	"runtime/debug"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/patviz/cmd/check"
	"github.com/gigurra/patviz/cmd/configcmd"
	"github.com/gigurra/patviz/cmd/export"
	"github.com/gigurra/patviz/cmd/list"
	"github.com/gigurra/patviz/cmd/play"
	"github.com/gigurra/patviz/cmd/run"
	"github.com/gigurra/patviz/cmd/show"
	"github.com/spf13/cobra"
)

// Command group IDs
const (
	groupPlayback  = "playback"
	groupCatalog   = "catalog"
	groupAuthoring = "authoring"
)

// withGroup sets the GroupID on a command and returns it
func withGroup(cmd *cobra.Command, group string) *cobra.Command {
	cmd.GroupID = group
	return cmd
}

func main() {
	boa.CmdT[boa.NoParams]{
		Use:     "patviz",
		Short:   "Design patterns, animated in your terminal",
		Version: appVersion(),
		Groups: []*cobra.Group{
			{ID: groupPlayback, Title: "Playback:"},
			{ID: groupCatalog, Title: "Catalog:"},
			{ID: groupAuthoring, Title: "Authoring & Settings:"},
		},
		SubCmds: []*cobra.Command{
			// Playback
			withGroup(play.Cmd(), groupPlayback),
			withGroup(run.Cmd(), groupPlayback),

			// Catalog
			withGroup(list.Cmd(), groupCatalog),
			withGroup(show.Cmd(), groupCatalog),

			// Authoring & Settings
			withGroup(check.Cmd(), groupAuthoring),
			withGroup(export.Cmd(), groupAuthoring),
			withGroup(configcmd.Cmd(), groupAuthoring),
		},
	}.Run()
}

func appVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown-(no build info)"
	}
	if bi.Main.Version == "" {
		return "unknown-(no version)"
	}
	return bi.Main.Version
}
