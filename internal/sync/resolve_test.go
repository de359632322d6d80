package sync

import (
	"reflect"
	"testing"
	"time"

	"github.com/marcus/mx/internal/models"
)

// resolveFixtures returns a locally edited item and its server counterpart
// sharing the same sync baseline: both sides carry server_updated_at one
// hour before base, and the local copy was edited at base.
func resolveFixtures() (*models.MediaItem, *models.MediaItem) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	baseline := base.Add(-time.Hour)
	localBaseline := baseline
	remoteBaseline := baseline
	local := &models.MediaItem{
		ID:              "aud-00000001",
		Kind:            models.KindAudio,
		Title:           "Local Title",
		Tags:            []string{"local"},
		SyncStatus:      models.SyncPending,
		FilePath:        "/media/track.mp3",
		Thumbnail:       []byte{1, 2, 3},
		CreatedAt:       base.Add(-24 * time.Hour),
		UpdatedAt:       base,
		ServerUpdatedAt: &localBaseline,
	}
	remote := &models.MediaItem{
		ID:              "aud-00000001",
		Kind:            models.KindAudio,
		Title:           "Remote Title",
		Tags:            []string{"remote"},
		SyncStatus:      models.SyncSynced,
		CreatedAt:       base.Add(-24 * time.Hour),
		UpdatedAt:       baseline,
		ServerUpdatedAt: &remoteBaseline,
	}
	return local, remote
}

func TestResolveLocalWins(t *testing.T) {
	local, remote := resolveFixtures()
	newer := remote.ServerUpdatedAt.Add(time.Minute)
	local.ServerUpdatedAt = &newer

	out := Resolve(local, remote)
	if out.Title != "Local Title" {
		t.Errorf("Title mismatch: got %s", out.Title)
	}
	if out.SyncStatus != models.SyncSynced {
		t.Errorf("merged item should be synced, got %s", out.SyncStatus)
	}
	if out.FilePath != local.FilePath {
		t.Errorf("FilePath mismatch: got %s", out.FilePath)
	}
	// A local win raises the baseline to the local edit time.
	if out.ServerUpdatedAt == nil || !out.ServerUpdatedAt.Equal(local.UpdatedAt) {
		t.Errorf("ServerUpdatedAt should be the local updated_at: got %v, want %v", out.ServerUpdatedAt, local.UpdatedAt)
	}
}

func TestResolveRemoteWins(t *testing.T) {
	local, remote := resolveFixtures()
	newer := local.ServerUpdatedAt.Add(time.Minute)
	remote.ServerUpdatedAt = &newer
	remote.UpdatedAt = newer

	out := Resolve(local, remote)
	if out.Title != "Remote Title" {
		t.Errorf("Title mismatch: got %s", out.Title)
	}
	if out.SyncStatus != models.SyncSynced {
		t.Errorf("remote winner should be synced, got %s", out.SyncStatus)
	}
	if out.FilePath != local.FilePath {
		t.Errorf("device-local FilePath lost: got %s", out.FilePath)
	}
	if string(out.Thumbnail) != string(local.Thumbnail) {
		t.Errorf("device-local Thumbnail lost: got %v", out.Thumbnail)
	}
	if out.ServerUpdatedAt == nil || !out.ServerUpdatedAt.Equal(newer) {
		t.Errorf("ServerUpdatedAt mismatch: got %v", out.ServerUpdatedAt)
	}
	if len(out.Tags) != 1 || out.Tags[0] != "remote" {
		t.Errorf("Tags mismatch: got %v", out.Tags)
	}
}

func TestResolveTieGoesToRemote(t *testing.T) {
	local, remote := resolveFixtures()
	// Identical baselines; the local copy was edited more recently, which
	// must not matter.
	out := Resolve(local, remote)
	if out.Title != "Remote Title" {
		t.Errorf("tie should go to the remote copy, got %s", out.Title)
	}
	if out.SyncStatus != models.SyncSynced {
		t.Errorf("tie winner should be synced, got %s", out.SyncStatus)
	}
}

func TestResolveBaselineDecidesNotEditTime(t *testing.T) {
	// Local synced at T0, edited at T3; the server copy moved to T2 in
	// between. The server write is newer than anything this device has
	// acknowledged, so the remote fields win despite the later local edit.
	t0 := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	t2 := t0.Add(2 * time.Hour)
	t3 := t0.Add(3 * time.Hour)

	local, remote := resolveFixtures()
	local.ServerUpdatedAt = &t0
	local.UpdatedAt = t3
	remote.ServerUpdatedAt = &t2
	remote.UpdatedAt = t2

	out := Resolve(local, remote)
	if out.Title != "Remote Title" {
		t.Errorf("newer server baseline should win: got %s", out.Title)
	}
	if out.ServerUpdatedAt == nil || !out.ServerUpdatedAt.Equal(t2) {
		t.Errorf("ServerUpdatedAt mismatch: got %v, want %v", out.ServerUpdatedAt, t2)
	}
}

func TestResolveMissingBaselinesGoToRemote(t *testing.T) {
	local, remote := resolveFixtures()
	local.ServerUpdatedAt = nil
	remote.ServerUpdatedAt = nil

	out := Resolve(local, remote)
	if out.Title != "Remote Title" {
		t.Errorf("absent baselines should favor the remote copy, got %s", out.Title)
	}
}

func TestResolveKeepsEarliestCreatedAt(t *testing.T) {
	local, remote := resolveFixtures()
	newer := local.ServerUpdatedAt.Add(time.Minute)
	remote.ServerUpdatedAt = &newer
	remote.CreatedAt = local.CreatedAt.Add(12 * time.Hour)

	out := Resolve(local, remote)
	if !out.CreatedAt.Equal(local.CreatedAt) {
		t.Errorf("CreatedAt should keep the earliest value: got %v, want %v", out.CreatedAt, local.CreatedAt)
	}
}

func TestResolveRemoteTombstone(t *testing.T) {
	local, remote := resolveFixtures()
	newer := local.ServerUpdatedAt.Add(time.Minute)
	remote.ServerUpdatedAt = &newer
	remote.DeletedAt = &newer

	out := Resolve(local, remote)
	if !out.Deleted() {
		t.Error("remote tombstone should win")
	}
	if out.FilePath != local.FilePath {
		t.Error("FilePath should survive even on deletion")
	}

	// With the local baseline ahead, the local copy resurrects the item.
	ahead := newer.Add(time.Minute)
	local.ServerUpdatedAt = &ahead
	out = Resolve(local, remote)
	if out.Deleted() {
		t.Error("losing tombstone should not delete the local copy")
	}
}

func TestResolveNilSides(t *testing.T) {
	local, remote := resolveFixtures()

	out := Resolve(nil, remote)
	if out.Title != remote.Title {
		t.Errorf("nil local should yield the remote copy, got %s", out.Title)
	}
	out.Title = "mutated"
	if remote.Title == "mutated" {
		t.Error("Resolve must not alias its inputs")
	}

	out = Resolve(local, nil)
	if out.Title != local.Title {
		t.Errorf("nil remote should yield the local copy, got %s", out.Title)
	}
}

func TestResolveDoesNotMutateInputs(t *testing.T) {
	local, remote := resolveFixtures()
	localBefore := local.Clone()
	remoteBefore := remote.Clone()

	Resolve(local, remote)

	if !reflect.DeepEqual(local, localBefore) {
		t.Error("Resolve mutated the local input")
	}
	if !reflect.DeepEqual(remote, remoteBefore) {
		t.Error("Resolve mutated the remote input")
	}
}

func TestResolveIdempotent(t *testing.T) {
	// Remote-winning merge.
	local, remote := resolveFixtures()
	newer := local.ServerUpdatedAt.Add(time.Minute)
	remote.ServerUpdatedAt = &newer

	once := Resolve(local, remote)
	twice := Resolve(once, remote)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Resolve not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}

	// Local-winning merge.
	local, remote = resolveFixtures()
	ahead := remote.ServerUpdatedAt.Add(time.Minute)
	local.ServerUpdatedAt = &ahead

	once = Resolve(local, remote)
	twice = Resolve(once, remote)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Resolve not idempotent on a local win:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}
