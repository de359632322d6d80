package cmd

import (
	"fmt"
	"strings"

	"github.com/marcus/mx/internal/db"
	"github.com/marcus/mx/internal/models"
	"github.com/marcus/mx/internal/output"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:     "add [title]",
	Aliases: []string{"new"},
	Short:   "Add a media item to the library",
	Long:    `Add a media item with optional flags for author, duration, tags, and a local file path.`,
	GroupID: "library",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		title, _ := cmd.Flags().GetString("title")
		if len(args) > 0 {
			title = args[0]
		}
		if title == "" {
			output.Error("title is required")
			return fmt.Errorf("title is required")
		}

		kindFlag, _ := cmd.Flags().GetString("kind")
		kind := models.NormalizeKind(kindFlag)
		if !models.IsValidKind(kind) {
			output.Error("invalid kind %q (audio or video)", kindFlag)
			return fmt.Errorf("invalid kind: %s", kindFlag)
		}

		item := &models.MediaItem{
			Kind:  kind,
			Title: title,
		}
		item.Author, _ = cmd.Flags().GetString("author")
		item.Description, _ = cmd.Flags().GetString("desc")
		item.DurationSec, _ = cmd.Flags().GetInt("duration")
		item.MimeType, _ = cmd.Flags().GetString("mime")
		item.FilePath, _ = cmd.Flags().GetString("file")
		if tags, _ := cmd.Flags().GetString("tags"); tags != "" {
			item.Tags = strings.Split(tags, ",")
		}

		if err := database.CreateMediaItem(item); err != nil {
			output.Error("%v", err)
			return err
		}

		// Queue the create so the next upload pass pushes it.
		mgr, err := newSyncManager(database, offlineReach{})
		if err == nil {
			err = mgr.QueueForSync(item, models.OutboxCreate)
		}
		if err != nil {
			output.Warning("created %s but could not queue for sync: %v", item.ID, err)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(item)
		}
		output.Success("Added %s", item.ID)
		output.Info("%s", output.FormatItemShort(item))
		return nil
	},
}

func init() {
	addCmd.Flags().StringP("kind", "k", "audio", "Media kind: audio or video")
	addCmd.Flags().String("title", "", "Item title")
	addCmd.Flags().StringP("author", "a", "", "Author or artist")
	addCmd.Flags().StringP("desc", "d", "", "Description (markdown)")
	addCmd.Flags().Int("duration", 0, "Duration in seconds")
	addCmd.Flags().String("mime", "", "MIME type")
	addCmd.Flags().StringP("tags", "t", "", "Comma-separated tags")
	addCmd.Flags().StringP("file", "f", "", "Local file path (never synced)")
	addCmd.Flags().Bool("json", false, "Output JSON")
	rootCmd.AddCommand(addCmd)
}
