// Package cmd provides the CLI commands for Studylog.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/output"
	"github.com/manav03panchal/studylog/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat  string
	flagColor   string
	flagDebug   bool
	flagBackend string
	flagConfig  string
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "studylog",
	Short: "Log how long you studied, and what",
	Long: `Studylog keeps a list of study sessions: a title and the hours spent.

Run without arguments on a terminal to open the interactive view.

Examples:
  studylog add "Go concurrency" --time 2
  studylog list
  studylog edit 0190a1b2-... --time 3
  studylog delete 0190a1b2-...
  studylog serve`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for commands that never touch records
		if skipRuntime(cmd) {
			return nil
		}

		format, err := output.ParseFormat(flagFormat)
		if err != nil {
			return errors.NewUserErrorWithField("format", flagFormat, err.Error(), "")
		}
		colorMode, err := output.ParseColorMode(flagColor)
		if err != nil {
			return errors.NewUserErrorWithField("color", flagColor, err.Error(), "")
		}

		// Create runtime context
		opts := runtime.DefaultOptions()
		opts.ConfigPath = flagConfig
		opts.Backend = flagBackend
		opts.Format = format
		opts.ColorMode = colorMode
		opts.Debug = flagDebug

		ctx, err = runtime.New(cmd.Context(), opts)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ctx != nil {
			return ctx.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Interactive on a terminal, a plain listing otherwise
		if isatty.IsTerminal(os.Stdout.Fd()) && ctx.IsCLI() {
			return runUI(cmd, args)
		}
		return runList(cmd, args)
	},
}

func skipRuntime(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "completion", "help", "version":
		return true
	}
	return false
}

// Execute adds all child commands to the root command and runs it. Interrupts
// cancel the command's context.
func Execute() error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(sigCtx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "",
		"Storage backend: badger, sqlite, postgres, remote (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Config file (default $XDG_CONFIG_HOME/studylog/config.yaml)")

	// Add commands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(uiCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("studylog %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
	},
}

// Die prints an error in the selected format and exits.
func Die(err error) {
	if ctx != nil {
		_ = ctx.Close()
	}
	if ctx != nil && ctx.IsJSON() {
		_ = ctx.JSONFormatter().PrintError(err)
		os.Exit(1)
	}
	if verr, ok := errors.AsValidationError(err); ok {
		f := output.NewFormatter()
		f.Writer = os.Stderr
		if ctx != nil {
			f.ColorMode = ctx.Formatter.ColorMode
		}
		output.NewCLIFormatter(f).PrintViolations(verr.Violations)
		os.Exit(1)
	}
	os.Stderr.WriteString("Error: " + runtime.FormatError(err) + "\n")
	os.Exit(1)
}
