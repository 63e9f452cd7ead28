package cmd

import (
	"io"
	"os"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/manav03panchal/studylog/internal/config"
	"github.com/manav03panchal/studylog/internal/logging"
	"github.com/manav03panchal/studylog/internal/tui"
)

// uiCmd represents the ui command.
var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive record list",
	Long: `Open the interactive record list.

Keys:
  n        new record
  e/enter  edit the selected record
  d        delete the selected record
  r        reload
  q        quit

In the dialog, tab moves between fields, +/- step the hours and enter saves.`,
	Args: cobra.NoArgs,
	RunE: runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	closeLog := logToFile()
	defer closeLog()

	return tui.Run(cmd.Context(), ctx.Session)
}

// logToFile moves logging off the terminal while the TUI owns it. Logs go to
// $XDG_STATE_HOME/studylog/studylog.log, or nowhere if the file can't be made.
func logToFile() func() {
	cfg := logging.DefaultConfig()
	if flagDebug {
		cfg = logging.DebugConfig()
	} else {
		cfg.Level = logging.ParseLevel(ctx.Config.Log.Level)
		cfg.JSON = ctx.Config.Log.JSON
	}

	path, err := xdg.StateFile(config.AppName + "/" + config.AppName + ".log")
	if err != nil {
		cfg.Output = io.Discard
		logging.Init(cfg)
		return func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		cfg.Output = io.Discard
		logging.Init(cfg)
		return func() {}
	}
	cfg.Output = f
	logging.Init(cfg)
	return func() { _ = f.Close() }
}
