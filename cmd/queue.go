package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/marcus/mx/internal/db"
	"github.com/marcus/mx/internal/output"
	mxsync "github.com/marcus/mx/internal/sync"
	"github.com/spf13/cobra"
)

var queueCmd = &cobra.Command{
	Use:     "queue",
	Aliases: []string{"q"},
	Short:   "Inspect the upload queue",
	GroupID: "sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		entries, err := database.ListPendingOutbox(mxsync.MaxRetryCount)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(entries)
		}
		if len(entries) == 0 {
			output.Info("Queue is empty")
			return nil
		}
		printOutboxEntries(entries)
		return nil
	},
}

var queueFailedCmd = &cobra.Command{
	Use:   "failed",
	Short: "List entries that exhausted their retries",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		entries, err := database.ListFailedOutbox(mxsync.MaxRetryCount)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if len(entries) == 0 {
			output.Info("No failed entries")
			return nil
		}
		printOutboxEntries(entries)
		return nil
	},
}

var queueRetryCmd = &cobra.Command{
	Use:   "retry [id]",
	Short: "Reset a failed entry so it is retried on the next sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		if all, _ := cmd.Flags().GetBool("all"); all {
			entries, err := database.ListFailedOutbox(mxsync.MaxRetryCount)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			for _, e := range entries {
				if err := database.ResetOutboxEntry(e.ID); err != nil {
					output.Error("%v", err)
					return err
				}
			}
			output.Success("Reset %d entries", len(entries))
			return nil
		}

		if len(args) != 1 {
			return fmt.Errorf("entry id required (or --all)")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			output.Error("invalid entry id %q", args[0])
			return err
		}
		if err := database.ResetOutboxEntry(id); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Reset entry %d", id)
		return nil
	},
}

var queueClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every queued entry",
	Long:  `Drop every queued entry. Unsynced local changes will never reach the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			confirmed := false
			prompt := huh.NewConfirm().
				Title("Clear the upload queue?").
				Description("Queued changes will not be uploaded.").
				Value(&confirmed)
			if err := prompt.Run(); err != nil {
				return err
			}
			if !confirmed {
				output.Info("Aborted")
				return nil
			}
		}

		if err := database.ClearOutbox(); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Queue cleared")
		return nil
	},
}

func printOutboxEntries(entries []db.OutboxEntry) {
	for _, e := range entries {
		line := fmt.Sprintf("%4d  %-6s %-6s %-14s retries=%d", e.ID, e.Action, e.EntityType, e.EntityID, e.RetryCount)
		if e.LastError != "" {
			line += "  " + output.Subtle(e.LastError)
		}
		output.Info("%s", line)
	}
}

func init() {
	queueCmd.Flags().Bool("json", false, "Output JSON")
	queueRetryCmd.Flags().Bool("all", false, "Reset every failed entry")
	queueClearCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
	queueCmd.AddCommand(queueFailedCmd, queueRetryCmd, queueClearCmd)
	rootCmd.AddCommand(queueCmd)
}
