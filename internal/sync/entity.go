package sync

import (
	"context"
	"time"

	"github.com/marcus/mx/internal/db"
	"github.com/marcus/mx/internal/models"
	"github.com/marcus/mx/internal/syncclient"
)

// EntityOps binds one entity type to its local rows and remote endpoints.
// The upload and download pipelines are written once against this interface
// and instantiated per entity type.
type EntityOps interface {
	EntityType() string

	// Get returns the local item, or nil if it does not exist.
	Get(id string) (*models.MediaItem, error)
	// Put writes the item verbatim, inserting or replacing.
	Put(item *models.MediaItem) error
	// MarkSynced records a successful upload for the item.
	MarkSynced(id string, serverUpdatedAt time.Time) error
	// ListLocalOnly returns items that were never pushed to the server.
	ListLocalOnly() ([]models.MediaItem, error)
	// HasQueued reports whether any outbox entry exists for the item.
	HasQueued(id string) (bool, error)

	ListRemote(ctx context.Context, limit int, updatedAfter time.Time) (*syncclient.ListResponse, error)
	UpsertRemote(ctx context.Context, rec *syncclient.MediaRecord) (*syncclient.UpsertResponse, error)
	DeleteRemote(ctx context.Context, id string) error
}

// mediaOps is the EntityOps implementation for one media kind backed by the
// SQLite store and the HTTP client.
type mediaOps struct {
	kind   models.Kind
	store  *db.DB
	remote *syncclient.Client
}

// NewEntityOps builds the capability set for one media kind.
func NewEntityOps(kind models.Kind, store *db.DB, remote *syncclient.Client) EntityOps {
	return &mediaOps{kind: kind, store: store, remote: remote}
}

// NewAllEntityOps builds one EntityOps per media kind, in sync order.
func NewAllEntityOps(store *db.DB, remote *syncclient.Client) []EntityOps {
	var out []EntityOps
	for _, kind := range models.Kinds() {
		out = append(out, NewEntityOps(kind, store, remote))
	}
	return out
}

func (o *mediaOps) EntityType() string {
	return string(o.kind)
}

func (o *mediaOps) Get(id string) (*models.MediaItem, error) {
	exists, err := o.store.HasMediaItem(id)
	if err != nil || !exists {
		return nil, err
	}
	return o.store.GetMediaItem(id)
}

func (o *mediaOps) Put(item *models.MediaItem) error {
	return o.store.PutMediaItem(item)
}

func (o *mediaOps) MarkSynced(id string, serverUpdatedAt time.Time) error {
	return o.store.MarkItemSynced(id, serverUpdatedAt)
}

func (o *mediaOps) ListLocalOnly() ([]models.MediaItem, error) {
	return o.store.ListMediaItems(db.ListMediaItemsOptions{
		Kind:   o.kind,
		Status: models.SyncLocal,
	})
}

func (o *mediaOps) HasQueued(id string) (bool, error) {
	return o.store.HasOutboxEntry(string(o.kind), id)
}

func (o *mediaOps) ListRemote(ctx context.Context, limit int, updatedAfter time.Time) (*syncclient.ListResponse, error) {
	return o.remote.ListRecords(ctx, string(o.kind), limit, updatedAfter)
}

func (o *mediaOps) UpsertRemote(ctx context.Context, rec *syncclient.MediaRecord) (*syncclient.UpsertResponse, error) {
	return o.remote.UpsertRecord(ctx, string(o.kind), rec)
}

func (o *mediaOps) DeleteRemote(ctx context.Context, id string) error {
	return o.remote.DeleteRecord(ctx, string(o.kind), id)
}
