package sync

import (
	"github.com/marcus/mx/internal/models"
	"github.com/marcus/mx/internal/syncclient"
)

// recordFromItem converts a local item to its wire form. Device-local
// fields (file path, thumbnail) are dropped here and nowhere else, so every
// transmission path strips them.
func recordFromItem(item *models.MediaItem) *syncclient.MediaRecord {
	rec := &syncclient.MediaRecord{
		ID:          item.ID,
		Kind:        string(item.Kind),
		Title:       item.Title,
		Author:      item.Author,
		Description: item.Description,
		DurationSec: item.DurationSec,
		MimeType:    item.MimeType,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	if item.Tags != nil {
		rec.Tags = append([]string(nil), item.Tags...)
	}
	if item.DeletedAt != nil {
		t := *item.DeletedAt
		rec.DeletedAt = &t
	}
	return rec
}

// itemFromRecord converts a server record to a local item. The result is
// marked synced with the server's timestamp; callers merge it against any
// existing local row before storing.
func itemFromRecord(rec *syncclient.MediaRecord) *models.MediaItem {
	serverAt := rec.UpdatedAt
	item := &models.MediaItem{
		ID:              rec.ID,
		Kind:            models.Kind(rec.Kind),
		Title:           rec.Title,
		Author:          rec.Author,
		Description:     rec.Description,
		DurationSec:     rec.DurationSec,
		MimeType:        rec.MimeType,
		SyncStatus:      models.SyncSynced,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
		ServerUpdatedAt: &serverAt,
	}
	if rec.Tags != nil {
		item.Tags = append([]string(nil), rec.Tags...)
	}
	if rec.DeletedAt != nil {
		t := *rec.DeletedAt
		item.DeletedAt = &t
	}
	return item
}
