package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/marcus/mx/internal/db"
	"github.com/marcus/mx/internal/models"
	"github.com/marcus/mx/internal/output"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a media item",
	Long:    `Soft-delete a media item. The tombstone syncs to the server; the local file is never touched.`,
	GroupID: "library",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		item, err := database.GetMediaItem(args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			confirmed := false
			prompt := huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", item.Title)).
				Description("The deletion syncs to the server on the next upload.").
				Value(&confirmed)
			if err := prompt.Run(); err != nil {
				return err
			}
			if !confirmed {
				output.Info("Aborted")
				return nil
			}
		}

		if err := database.SoftDeleteMediaItem(item.ID); err != nil {
			output.Error("%v", err)
			return err
		}

		// Reload so the tombstone timestamp rides along in the payload.
		item, err = database.GetMediaItem(item.ID)
		if err == nil {
			mgr, mgrErr := newSyncManager(database, offlineReach{})
			if mgrErr == nil {
				err = mgr.QueueForSync(item, models.OutboxDelete)
			} else {
				err = mgrErr
			}
		}
		if err != nil {
			output.Warning("deleted %s but could not queue for sync: %v", args[0], err)
		}

		output.Success("Deleted %s", args[0])
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
	rootCmd.AddCommand(deleteCmd)
}
