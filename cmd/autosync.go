package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/marcus/mx/internal/db"
	mxsync "github.com/marcus/mx/internal/sync"
	"github.com/marcus/mx/internal/syncconfig"
)

// mutatingCommands lists commands that modify local data and should trigger auto-sync.
var mutatingCommands = map[string]bool{
	"add":    true,
	"update": true,
	"delete": true,
}

// isMutatingCommand checks if the given command name triggers auto-sync.
func isMutatingCommand(name string) bool {
	return mutatingCommands[name]
}

// autoSyncAfterMutation runs a quick upload after a mutating command
// completes. Runs synchronously but with a short timeout. Errors are
// logged, not returned: the outbox keeps the change for the next sync.
func autoSyncAfterMutation() {
	if !syncconfig.GetAutoSyncEnabled() {
		return
	}
	if syncconfig.GetAPIKey() == "" {
		return
	}

	dir := getBaseDir()
	if dir == "" {
		return
	}

	database, err := db.Open(dir)
	if err != nil {
		slog.Debug("autosync: open db", "err", err)
		return
	}
	defer database.Close()

	client, err := newRemoteClient()
	if err != nil {
		slog.Debug("autosync: client", "err", err)
		return
	}
	client.HTTP.Timeout = 5 * time.Second // short timeout for auto-sync

	engine := mxsync.NewEngine(database, mxsync.NewAllEntityOps(database, client), slog.Default())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res := engine.Upload(ctx, mxsync.Options{Background: true})
	if !res.Success {
		slog.Debug("autosync: upload", "errors", res.Errors)
	}
}
