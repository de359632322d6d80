package cmd

import (
	"github.com/marcus/mx/internal/db"
	"github.com/marcus/mx/internal/output"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	Aliases: []string{"get"},
	Short:   "Show a media item",
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

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(item)
		}

		output.Info("%s", output.FormatItemLong(item))
		if item.Description != "" {
			rendered, err := output.RenderMarkdown(item.Description)
			if err != nil {
				// Fall back to the raw text rather than failing the command.
				rendered = item.Description
			}
			output.Info("%s", rendered)
		}
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("json", false, "Output JSON")
	rootCmd.AddCommand(showCmd)
}
