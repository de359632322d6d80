package monitor

import (
	"time"

	"github.com/marcus/mx/internal/db"
	mxsync "github.com/marcus/mx/internal/sync"
)

const historyRows = 12

// RefreshDataMsg carries refreshed monitor data
type RefreshDataMsg struct {
	Status    *mxsync.Status
	Queue     []db.OutboxEntry
	Failed    []db.OutboxEntry
	History   []db.SyncHistoryEntry
	Err       error
	Timestamp time.Time
}

// FetchData loads everything the monitor displays. Errors are carried in
// the message so the TUI can show them instead of dying.
func FetchData(database *db.DB, manager *mxsync.Manager) RefreshDataMsg {
	msg := RefreshDataMsg{Timestamp: time.Now()}

	status, err := manager.Status()
	if err != nil {
		msg.Err = err
		return msg
	}
	msg.Status = status

	if msg.Queue, err = database.ListPendingOutbox(mxsync.MaxRetryCount); err != nil {
		msg.Err = err
		return msg
	}
	if msg.Failed, err = database.ListFailedOutbox(mxsync.MaxRetryCount); err != nil {
		msg.Err = err
		return msg
	}
	if msg.History, err = database.GetSyncHistoryTail(historyRows); err != nil {
		msg.Err = err
		return msg
	}
	return msg
}
