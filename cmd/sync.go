package cmd

import (
	"fmt"

	"github.com/marcus/mx/internal/db"
	"github.com/marcus/mx/internal/output"
	mxsync "github.com/marcus/mx/internal/sync"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Short:   "Sync the library with the server",
	Long: `Sync the library with the server.

By default runs a full pass: upload queued changes, then download and merge
remote changes. Use --push or --pull to run one direction only.`,
	GroupID: "sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		if statusOnly, _ := cmd.Flags().GetBool("status"); statusOnly {
			return runSyncStatus(cmd, database)
		}

		mgr, err := newSyncManager(database, nil)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		opts := mxsync.Options{}
		opts.Force, _ = cmd.Flags().GetBool("force")
		pushOnly, _ := cmd.Flags().GetBool("push")
		pullOnly, _ := cmd.Flags().GetBool("pull")

		var res *mxsync.Result
		switch {
		case pushOnly:
			res = mgr.TriggerUpload(cmd.Context(), opts)
		case pullOnly:
			res = mgr.TriggerDownload(cmd.Context(), opts)
		default:
			res = mgr.TriggerSync(cmd.Context(), opts)
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			return output.JSON(res)
		}
		printSyncResult(res)
		if !res.Success {
			return fmt.Errorf("sync finished with errors")
		}
		return nil
	},
}

func printSyncResult(res *mxsync.Result) {
	if res.Success {
		output.Success("Sync complete: %d uploaded, %d downloaded", res.Uploaded, res.Downloaded)
	} else {
		output.Error("Sync finished with errors: %d uploaded, %d downloaded, %d failed",
			res.Uploaded, res.Downloaded, res.Failed)
		for _, e := range res.Errors {
			output.Info("  %s", e)
		}
	}
}

func runSyncStatus(cmd *cobra.Command, database *db.DB) error {
	mgr, err := newSyncManager(database, nil)
	if err != nil {
		output.Error("%v", err)
		return err
	}
	status, err := mgr.Status()
	if err != nil {
		output.Error("%v", err)
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		return output.JSON(status)
	}

	output.Info("%s", output.SectionHeader("Sync Status"))
	if status.Reachable {
		output.Success("Server reachable")
	} else {
		output.Warning("server unreachable")
	}
	output.Info("Pending uploads: %d", status.Pending)
	if status.Failed > 0 {
		output.Warning("%d entries exhausted their retries (mx queue failed)", status.Failed)
	}
	for entityType, at := range status.Cursors {
		output.Info("Cursor %-6s %s", entityType, output.FormatTimeAgo(at))
	}

	history, err := database.GetSyncHistoryTail(10)
	if err != nil {
		return err
	}
	if len(history) > 0 {
		output.Info("%s", output.SectionHeader("Recent Activity"))
		for _, h := range history {
			output.Info("  %-8s %-6s %s/%s %s", h.Direction, h.Action, h.EntityType, h.EntityID,
				output.Subtle(output.FormatTimeAgo(h.Timestamp)))
		}
	}
	return nil
}

func init() {
	syncCmd.Flags().Bool("push", false, "Upload queued changes only")
	syncCmd.Flags().Bool("pull", false, "Download remote changes only")
	syncCmd.Flags().Bool("force", false, "Ignore cursors and re-scan the full remote library")
	syncCmd.Flags().Bool("status", false, "Show sync status instead of syncing")
	syncCmd.Flags().Bool("json", false, "Output JSON")
	rootCmd.AddCommand(syncCmd)
}
