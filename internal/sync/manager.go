package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/marcus/mx/internal/db"
	"github.com/marcus/mx/internal/models"
)

// historyKeep caps the sync_history table size.
const historyKeep = 200

// Config controls manager behavior.
type Config struct {
	// AutoSyncOnStart runs a background sync when Start is called and the
	// server is reachable.
	AutoSyncOnStart bool

	// AutoSyncOnReconnect runs a background sync when the server transitions
	// from unreachable to reachable.
	AutoSyncOnReconnect bool

	// PeriodicInterval is how often the background upload timer fires.
	// Zero disables the timer.
	PeriodicInterval time.Duration
}

// Status is a point-in-time snapshot for status displays.
type Status struct {
	// Initialized is true between Start and Shutdown.
	Initialized bool
	Reachable   bool
	Syncing     bool
	// PeriodicActive reports whether the upload timer is running.
	PeriodicActive bool
	Pending        int
	Failed         int
	Cursors        map[string]time.Time
	LastSyncAt     time.Time
	LastResult     *Result
}

// Manager owns the sync lifecycle for one library: the periodic timer,
// reachability reactions, and the in-progress guard. Construct one per
// process and pass it where it is needed; there is no package-level instance.
type Manager struct {
	store  *db.DB
	engine *Engine
	reach  Reachability
	cfg    Config
	logger *slog.Logger

	mu          gosync.Mutex
	initialized bool
	periodic    bool
	syncing     bool
	lastResult  *Result
	lastSyncAt  time.Time

	startOnce gosync.Once
	stopOnce  gosync.Once
	stopCh    chan struct{}
	wg        gosync.WaitGroup
}

// NewManager wires a manager. reach may be nil, in which case the server is
// assumed reachable (useful for one-shot CLI invocations that would rather
// see the real network error).
func NewManager(store *db.DB, engine *Engine, reach Reachability, cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  store,
		engine: engine,
		reach:  reach,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start launches the periodic upload timer and, when configured, an initial
// background sync. Safe to call once; later calls are no-ops.
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		if m.cfg.AutoSyncOnStart && m.reachable() {
			m.backgroundSync("startup", true)
		}
		if m.cfg.PeriodicInterval > 0 {
			m.wg.Add(1)
			go m.periodicLoop()
		}
		m.mu.Lock()
		m.initialized = true
		m.periodic = m.cfg.PeriodicInterval > 0
		m.mu.Unlock()
	})
}

// Shutdown stops background work, waits for it to finish, and marks the
// manager uninitialized. Idempotent.
func (m *Manager) Shutdown() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()
	m.mu.Lock()
	m.initialized = false
	m.periodic = false
	m.mu.Unlock()
}

// HandleReachabilityChange reacts to server connectivity transitions.
// Wire it as the Monitor's onChange callback.
func (m *Manager) HandleReachabilityChange(online bool) {
	if !online {
		m.logger.Debug("server unreachable")
		return
	}
	m.logger.Debug("server reachable")
	if m.cfg.AutoSyncOnReconnect {
		m.backgroundSync("reconnect", true)
	}
}

// periodicLoop fires background uploads on the configured interval. Only
// uploads run here; downloads wait for an explicit sync so a timer never
// surprises the user with merged records.
func (m *Manager) periodicLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.PeriodicInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			if !m.reachable() {
				continue
			}
			res := m.runGuarded(func() *Result {
				return m.engine.Upload(context.Background(), Options{Background: true})
			})
			if res != nil && !res.Success {
				m.logger.Debug("periodic upload finished with errors", "errors", res.Errors)
			}
		}
	}
}

// TriggerSync runs a full upload+download pass in the caller's goroutine.
// When the server is unreachable it fails immediately without touching the
// network; the outbox keeps the changes for later.
func (m *Manager) TriggerSync(ctx context.Context, opts Options) *Result {
	return m.trigger(func() *Result {
		up := m.engine.Upload(ctx, opts)
		down := m.engine.Download(ctx, opts)
		return combineResults(up, down)
	})
}

// TriggerUpload runs the upload pipeline only.
func (m *Manager) TriggerUpload(ctx context.Context, opts Options) *Result {
	return m.trigger(func() *Result {
		return m.engine.Upload(ctx, opts)
	})
}

// TriggerDownload runs the download pipeline only.
func (m *Manager) TriggerDownload(ctx context.Context, opts Options) *Result {
	return m.trigger(func() *Result {
		return m.engine.Download(ctx, opts)
	})
}

func (m *Manager) trigger(fn func() *Result) *Result {
	if !m.reachable() {
		return failedResult("server unreachable")
	}
	res := m.runGuarded(fn)
	if res == nil {
		return failedResult("sync already running")
	}
	if err := m.store.PruneSyncHistory(historyKeep); err != nil {
		m.logger.Debug("prune sync history", "error", err)
	}
	return res
}

func failedResult(msg string) *Result {
	now := time.Now()
	return &Result{
		Success:   false,
		Errors:    []string{msg},
		StartedAt: now, FinishedAt: now,
	}
}

// QueueForSync snapshots the item into the outbox and marks it pending.
// When the server is reachable a background upload is kicked off so small
// edits propagate without waiting for the timer.
func (m *Manager) QueueForSync(item *models.MediaItem, action models.OutboxAction) error {
	payload, err := json.Marshal(recordFromItem(item))
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", item.ID, err)
	}
	if err := m.store.EnqueueOutbox(string(item.Kind), item.ID, action, payload); err != nil {
		return err
	}
	if err := m.store.MarkItemPending(item.ID); err != nil {
		return err
	}
	if m.reachable() {
		m.backgroundSync("queue", false)
	}
	return nil
}

// Status reports the current sync state.
func (m *Manager) Status() (*Status, error) {
	pending, err := m.store.CountPendingOutbox(MaxRetryCount)
	if err != nil {
		return nil, err
	}
	failed, err := m.store.CountFailedOutbox(MaxRetryCount)
	if err != nil {
		return nil, err
	}

	cursors := make(map[string]time.Time)
	for _, ops := range m.engine.Entities() {
		c, err := m.store.GetSyncCursor(ops.EntityType())
		if err != nil {
			return nil, err
		}
		if c != nil {
			cursors[ops.EntityType()] = c.LastSyncAt
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return &Status{
		Initialized:    m.initialized,
		Reachable:      m.reachable(),
		Syncing:        m.syncing,
		PeriodicActive: m.periodic,
		Pending:        pending,
		Failed:         failed,
		Cursors:        cursors,
		LastSyncAt:     m.lastSyncAt,
		LastResult:     m.lastResult,
	}, nil
}

// runGuarded runs fn unless a sync is already in flight, in which case it
// returns nil. The last result is recorded for Status.
func (m *Manager) runGuarded(fn func() *Result) *Result {
	m.mu.Lock()
	if m.syncing {
		m.mu.Unlock()
		return nil
	}
	m.syncing = true
	m.mu.Unlock()

	res := fn()

	m.mu.Lock()
	m.syncing = false
	m.lastResult = res
	m.lastSyncAt = time.Now()
	m.mu.Unlock()
	return res
}

// backgroundSync runs in a detached goroutine. Failures stay in the outbox
// and are only logged. Start and reconnect passes sync both directions;
// queue kicks stay upload-only so edits don't pull merges behind them.
func (m *Manager) backgroundSync(reason string, full bool) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		res := m.runGuarded(func() *Result {
			opts := Options{Background: true}
			up := m.engine.Upload(context.Background(), opts)
			if !full {
				return up
			}
			return combineResults(up, m.engine.Download(context.Background(), opts))
		})
		switch {
		case res == nil:
			m.logger.Debug("background sync skipped, already running", "reason", reason)
		case !res.Success:
			m.logger.Debug("background sync finished with errors", "reason", reason, "errors", res.Errors)
		default:
			m.logger.Debug("background sync done", "reason", reason, "uploaded", res.Uploaded, "downloaded", res.Downloaded)
		}
	}()
}

func (m *Manager) reachable() bool {
	if m.reach == nil {
		return true
	}
	return m.reach.Reachable()
}

func combineResults(up, down *Result) *Result {
	res := &Result{
		Success:    up.Success && down.Success,
		Uploaded:   up.Uploaded,
		Downloaded: down.Downloaded,
		Failed:     up.Failed + down.Failed,
		StartedAt:  up.StartedAt,
		FinishedAt: down.FinishedAt,
	}
	res.Errors = append(res.Errors, up.Errors...)
	res.Errors = append(res.Errors, down.Errors...)
	return res
}
