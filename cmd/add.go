package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/output"
)

// Add command flags.
var addFlagTime int

// addCmd represents the add command.
var addCmd = &cobra.Command{
	Use:     "add TITLE --time HOURS",
	Aliases: []string{"new", "a"},
	Short:   "Log a study session",
	Long: `Log a study session. The title is every argument joined with spaces;
--time is required and must be 0 or more.

Examples:
  studylog add Go concurrency --time 2
  studylog add "Test Title" --time 60`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().IntVarP(&addFlagTime, "time", "t", 0, "Hours studied (required, 0 or more)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	s := ctx.Session
	c := cmd.Context()

	if err := s.OpenCreate(c); err != nil {
		return err
	}
	if err := s.SetTitle(strings.Join(args, " ")); err != nil {
		return err
	}
	// An absent --time stays unset so validation reports it.
	if cmd.Flags().Changed("time") {
		hours := addFlagTime
		if err := s.SetTime(&hours); err != nil {
			return err
		}
	}
	if err := s.Submit(c); err != nil {
		return err
	}

	return printMutation(errors.OpCreate, "",
		"Logged "+strings.Join(args, " ")+" ("+output.FormatHours(addFlagTime)+")")
}
