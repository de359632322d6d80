package cmd

import (
	"strings"

	"github.com/marcus/mx/internal/db"
	"github.com/marcus/mx/internal/models"
	"github.com/marcus/mx/internal/output"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	Aliases: []string{"edit"},
	Short:   "Update a media item",
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

		changed := false
		if cmd.Flags().Changed("title") {
			item.Title, _ = cmd.Flags().GetString("title")
			changed = true
		}
		if cmd.Flags().Changed("author") {
			item.Author, _ = cmd.Flags().GetString("author")
			changed = true
		}
		if cmd.Flags().Changed("desc") {
			item.Description, _ = cmd.Flags().GetString("desc")
			changed = true
		}
		if cmd.Flags().Changed("duration") {
			item.DurationSec, _ = cmd.Flags().GetInt("duration")
			changed = true
		}
		if cmd.Flags().Changed("mime") {
			item.MimeType, _ = cmd.Flags().GetString("mime")
			changed = true
		}
		if cmd.Flags().Changed("tags") {
			tags, _ := cmd.Flags().GetString("tags")
			if tags == "" {
				item.Tags = nil
			} else {
				item.Tags = strings.Split(tags, ",")
			}
			changed = true
		}
		if cmd.Flags().Changed("file") {
			// Local-only change: no sync needed, but the row still updates.
			item.FilePath, _ = cmd.Flags().GetString("file")
		}

		if err := database.UpdateMediaItem(item); err != nil {
			output.Error("%v", err)
			return err
		}

		if changed {
			mgr, err := newSyncManager(database, offlineReach{})
			if err == nil {
				err = mgr.QueueForSync(item, models.OutboxUpdate)
			}
			if err != nil {
				output.Warning("updated %s but could not queue for sync: %v", item.ID, err)
			}
		}

		output.Success("Updated %s", item.ID)
		return nil
	},
}

func init() {
	updateCmd.Flags().String("title", "", "Item title")
	updateCmd.Flags().StringP("author", "a", "", "Author or artist")
	updateCmd.Flags().StringP("desc", "d", "", "Description (markdown)")
	updateCmd.Flags().Int("duration", 0, "Duration in seconds")
	updateCmd.Flags().String("mime", "", "MIME type")
	updateCmd.Flags().StringP("tags", "t", "", "Comma-separated tags (empty clears)")
	updateCmd.Flags().StringP("file", "f", "", "Local file path (never synced)")
	rootCmd.AddCommand(updateCmd)
}
