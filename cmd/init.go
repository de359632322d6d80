package cmd

import (
	"github.com/marcus/mx/internal/db"
	"github.com/marcus/mx/internal/output"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "Initialize a media library in the current directory",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Initialize(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		output.Success("Initialized media library in .mx/")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
