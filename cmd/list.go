package cmd

import (
	"github.com/marcus/mx/internal/db"
	"github.com/marcus/mx/internal/models"
	"github.com/marcus/mx/internal/output"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List media items",
	GroupID: "library",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		opts := db.ListMediaItemsOptions{}
		if kind, _ := cmd.Flags().GetString("kind"); kind != "" {
			opts.Kind = models.NormalizeKind(kind)
		}
		if status, _ := cmd.Flags().GetString("status"); status != "" {
			opts.Status = models.SyncStatus(status)
		}
		opts.Tag, _ = cmd.Flags().GetString("tag")
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.IncludeDeleted, _ = cmd.Flags().GetBool("deleted")

		items, err := database.ListMediaItems(opts)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(items)
		}

		if len(items) == 0 {
			output.Info("No items")
			return nil
		}
		for i := range items {
			output.Info("%s", output.FormatItemShort(&items[i]))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("kind", "k", "", "Filter by kind: audio or video")
	listCmd.Flags().StringP("status", "s", "", "Filter by sync status: local, pending, synced")
	listCmd.Flags().StringP("tag", "t", "", "Filter by tag")
	listCmd.Flags().IntP("limit", "n", 0, "Limit results")
	listCmd.Flags().Bool("deleted", false, "Include deleted items")
	listCmd.Flags().Bool("json", false, "Output JSON")
	rootCmd.AddCommand(listCmd)
}
