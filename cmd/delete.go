package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/validate"
)

// deleteCmd represents the delete command.
var deleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm", "del"},
	Short:   "Delete a record",
	Long: `Delete a record immediately. There is no confirmation and no undo.

Examples:
  studylog delete 0190a1b2-...`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeRecordIDs,
	RunE:              runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := validate.RecordID(id); err != nil {
		return err
	}
	if err := ctx.Session.Delete(cmd.Context(), id); err != nil {
		return err
	}
	return printMutation(errors.OpDelete, id, "Deleted "+id)
}
