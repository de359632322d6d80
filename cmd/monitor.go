package cmd

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/mx/internal/db"
	"github.com/marcus/mx/internal/output"
	mxsync "github.com/marcus/mx/internal/sync"
	"github.com/marcus/mx/internal/syncconfig"
	"github.com/marcus/mx/internal/tui/monitor"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:     "monitor",
	Aliases: []string{"mon"},
	Short:   "Live sync monitor",
	Long:    `A live view of server reachability, the upload queue, and recent sync activity. While open, the periodic sync timer runs.`,
	GroupID: "sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer database.Close()

		client, err := newRemoteClient()
		if err != nil {
			output.Error("%v", err)
			return err
		}

		engine := mxsync.NewEngine(database, mxsync.NewAllEntityOps(database, client), slog.Default())

		var mgr *mxsync.Manager
		probe := mxsync.NewMonitor(client, 10*time.Second, func(online bool) {
			mgr.HandleReachabilityChange(online)
		})
		mgr = mxsync.NewManager(database, engine, probe, mxsync.Config{
			AutoSyncOnStart:     syncconfig.GetAutoSyncOnStart(),
			AutoSyncOnReconnect: syncconfig.GetAutoSyncOnReconnect(),
			PeriodicInterval:    syncconfig.GetSyncInterval(),
		}, slog.Default())

		probe.Start()
		mgr.Start()
		defer func() {
			mgr.Shutdown()
			probe.Stop()
		}()

		interval, _ := cmd.Flags().GetDuration("refresh")
		model := monitor.NewModel(database, mgr, interval)
		p := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			output.Error("%v", err)
			return err
		}
		return nil
	},
}

func init() {
	monitorCmd.Flags().Duration("refresh", 2*time.Second, "Data refresh interval")
	rootCmd.AddCommand(monitorCmd)
}
