package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/studylog/internal/model"
	"github.com/manav03panchal/studylog/internal/output"
	"github.com/manav03panchal/studylog/internal/tui"
)

// listCmd represents the list command.
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List study records",
	Long: `List every study record in the order the store returns them,
with the total hours.

Examples:
  studylog list
  studylog list --format json
  studylog list --format plain | cut -f2`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	if err := ctx.Session.Start(cmd.Context()); err != nil {
		return err
	}
	return printRecords(ctx.Session.Records())
}

func printRecords(records []model.Record) error {
	switch {
	case ctx.IsJSON():
		return ctx.JSONFormatter().PrintRecords(records)
	case ctx.IsPlain():
		output.PlainRecords(ctx.Formatter, records)
		return nil
	default:
		cli := ctx.CLIFormatter()
		cli.Title(tui.AppTitle)
		cli.PrintRecords(records)
		return nil
	}
}

// printMutation reports a successful add, edit or delete.
func printMutation(op, id, message string) error {
	records := ctx.Session.Records()
	switch {
	case ctx.IsJSON():
		return ctx.JSONFormatter().PrintMutation(op, id, records)
	case ctx.IsPlain():
		output.PlainRecords(ctx.Formatter, records)
		return nil
	default:
		ctx.CLIFormatter().Success(message)
		return nil
	}
}
