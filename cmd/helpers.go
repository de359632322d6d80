package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/marcus/mx/internal/db"
	mxsync "github.com/marcus/mx/internal/sync"
	"github.com/marcus/mx/internal/syncclient"
	"github.com/marcus/mx/internal/syncconfig"
)

// newRemoteClient builds an HTTP client from the stored config.
func newRemoteClient() (*syncclient.Client, error) {
	deviceID, err := syncconfig.GetDeviceID()
	if err != nil {
		return nil, err
	}
	return syncclient.New(syncconfig.GetServerURL(), syncconfig.GetAPIKey(), deviceID), nil
}

// probeReach answers reachability with a single short health check, so a
// one-shot sync fails fast instead of queueing retries.
type probeReach struct {
	client *syncclient.Client
}

func (p *probeReach) Reachable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := p.client.HealthCheck(ctx)
	return err == nil
}

// offlineReach pins reachability to false. Mutation commands use it so
// QueueForSync never races a background upload against process exit; the
// post-run auto-sync hook does the push synchronously instead.
type offlineReach struct{}

func (offlineReach) Reachable() bool { return false }

// newSyncManager wires a manager for one-shot CLI use.
func newSyncManager(database *db.DB, reach mxsync.Reachability) (*mxsync.Manager, error) {
	client, err := newRemoteClient()
	if err != nil {
		return nil, err
	}
	if reach == nil {
		reach = &probeReach{client: client}
	}
	engine := mxsync.NewEngine(database, mxsync.NewAllEntityOps(database, client), slog.Default())
	cfg := mxsync.Config{
		AutoSyncOnStart:     syncconfig.GetAutoSyncOnStart(),
		AutoSyncOnReconnect: syncconfig.GetAutoSyncOnReconnect(),
		PeriodicInterval:    syncconfig.GetSyncInterval(),
	}
	return mxsync.NewManager(database, engine, reach, cfg, slog.Default()), nil
}
