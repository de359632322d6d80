package sync

import (
	"time"

	"github.com/marcus/mx/internal/models"
)

// Resolve merges a local item with its server counterpart. The decision is
// last-write-wins on the server-side baselines: whichever side carries the
// newer server_updated_at wins (an absent value counts as zero), and the
// remote copy wins a tie because the server is authoritative. Local edits do
// not move the baseline, so an offline edit loses to any server write made
// after this device last synced.
//
// A remote win takes the remote fields wholesale. A local win keeps the local
// fields and raises server_updated_at to the local updated_at, so the next
// upload carries this copy forward as the new baseline. The merged result is
// synced either way; a queued local edit still uploads from its outbox entry.
// Device-local fields (file path, thumbnail) always survive from the local
// copy. Resolve is pure and idempotent: Resolve(Resolve(l, r), r) ==
// Resolve(l, r).
func Resolve(local, remote *models.MediaItem) *models.MediaItem {
	if local == nil {
		return remote.Clone()
	}
	if remote == nil {
		return local.Clone()
	}

	var localTime, remoteTime time.Time
	if local.ServerUpdatedAt != nil {
		localTime = *local.ServerUpdatedAt
	}
	if remote.ServerUpdatedAt != nil {
		remoteTime = *remote.ServerUpdatedAt
	}

	var out *models.MediaItem
	if remoteTime.Before(localTime) {
		out = local.Clone()
		baseline := local.UpdatedAt
		out.ServerUpdatedAt = &baseline
	} else {
		out = remote.Clone()
	}
	out.SyncStatus = models.SyncSynced

	// Device-local fields never come from the server.
	out.FilePath = local.FilePath
	if local.Thumbnail != nil {
		out.Thumbnail = append([]byte(nil), local.Thumbnail...)
	} else {
		out.Thumbnail = nil
	}

	// Keep the earliest creation time so repeated merges are stable.
	if !local.CreatedAt.IsZero() && local.CreatedAt.Before(out.CreatedAt) {
		out.CreatedAt = local.CreatedAt
	}

	return out
}
