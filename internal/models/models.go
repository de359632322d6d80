package models

import (
	"time"
)

// Kind represents the media entity type
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// Kinds returns all media kinds in sync order
func Kinds() []Kind {
	return []Kind{KindAudio, KindVideo}
}

// SyncStatus represents where an item sits in the sync lifecycle
type SyncStatus string

const (
	// SyncLocal means the item has never been pushed to the server
	SyncLocal SyncStatus = "local"
	// SyncPending means the item has local changes waiting in the outbox
	SyncPending SyncStatus = "pending"
	// SyncSynced means the item matches the server copy
	SyncSynced SyncStatus = "synced"
)

// OutboxAction represents the kind of change queued for upload
type OutboxAction string

const (
	OutboxCreate OutboxAction = "create"
	OutboxUpdate OutboxAction = "update"
	OutboxDelete OutboxAction = "delete"
)

// MediaItem represents one entry in the local media library.
// FilePath and Thumbnail are device-local and never leave this machine;
// merges with server records must carry them over unchanged.
type MediaItem struct {
	ID              string     `json:"id"`
	Kind            Kind       `json:"kind"`
	Title           string     `json:"title"`
	Author          string     `json:"author,omitempty"`
	Description     string     `json:"description,omitempty"`
	DurationSec     int        `json:"duration_sec,omitempty"`
	MimeType        string     `json:"mime_type,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	SyncStatus      SyncStatus `json:"sync_status"`
	FilePath        string     `json:"file_path,omitempty"`
	Thumbnail       []byte     `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ServerUpdatedAt *time.Time `json:"server_updated_at,omitempty"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

// Deleted reports whether the item carries a tombstone.
func (m *MediaItem) Deleted() bool {
	return m.DeletedAt != nil
}

// Clone returns a deep copy of the item.
func (m *MediaItem) Clone() *MediaItem {
	out := *m
	if m.Tags != nil {
		out.Tags = append([]string(nil), m.Tags...)
	}
	if m.Thumbnail != nil {
		out.Thumbnail = append([]byte(nil), m.Thumbnail...)
	}
	if m.ServerUpdatedAt != nil {
		t := *m.ServerUpdatedAt
		out.ServerUpdatedAt = &t
	}
	if m.DeletedAt != nil {
		t := *m.DeletedAt
		out.DeletedAt = &t
	}
	return &out
}

// IsValidKind checks if a kind is valid
func IsValidKind(k Kind) bool {
	switch k {
	case KindAudio, KindVideo:
		return true
	}
	return false
}

// IsValidSyncStatus checks if a sync status is valid
func IsValidSyncStatus(s SyncStatus) bool {
	switch s {
	case SyncLocal, SyncPending, SyncSynced:
		return true
	}
	return false
}

// IsValidOutboxAction checks if an outbox action is valid
func IsValidOutboxAction(a OutboxAction) bool {
	switch a {
	case OutboxCreate, OutboxUpdate, OutboxDelete:
		return true
	}
	return false
}

// NormalizeKind converts alternate kind names to canonical form
// Accepts: "aud"/"a" for audio, "vid"/"v" for video
func NormalizeKind(k string) Kind {
	switch k {
	case "aud", "a":
		return KindAudio
	case "vid", "v":
		return KindVideo
	default:
		return Kind(k)
	}
}

// LibraryStats holds counts for status displays
type LibraryStats struct {
	Total    int
	ByKind   map[Kind]int
	ByStatus map[SyncStatus]int
	Pending  int
	Failed   int
}
