package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/studylog/internal/errors"
	"github.com/manav03panchal/studylog/internal/validate"
)

// Edit command flags.
var (
	editFlagTitle string
	editFlagTime  int
)

// editCmd represents the edit command.
var editCmd = &cobra.Command{
	Use:     "edit ID [--title TITLE] [--time HOURS]",
	Aliases: []string{"update"},
	Short:   "Change the title or time of a record",
	Long: `Change the title or time of a record. Fields that are not given keep
their current values.

Examples:
  studylog edit 0190a1b2-... --time 3
  studylog edit 0190a1b2-... --title "Go generics"`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeRecordIDs,
	RunE:              runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editFlagTitle, "title", "", "New title")
	editCmd.Flags().IntVarP(&editFlagTime, "time", "t", 0, "New hours studied")
}

func runEdit(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := validate.RecordID(id); err != nil {
		return err
	}
	titleSet := cmd.Flags().Changed("title")
	timeSet := cmd.Flags().Changed("time")
	if !titleSet && !timeSet {
		return errors.NewUserError("nothing to change", "Pass --title, --time or both.")
	}

	s := ctx.Session
	c := cmd.Context()

	// The draft is filled from the stored record, so load it first.
	if err := s.Start(c); err != nil {
		return err
	}
	if err := s.OpenEdit(c, id); err != nil {
		return err
	}
	if titleSet {
		if err := s.SetTitle(editFlagTitle); err != nil {
			return err
		}
	}
	if timeSet {
		hours := editFlagTime
		if err := s.SetTime(&hours); err != nil {
			return err
		}
	}
	if err := s.Submit(c); err != nil {
		return err
	}

	return printMutation(errors.OpUpdate, id, "Updated "+id)
}
