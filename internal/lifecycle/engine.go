// Package lifecycle implements the moderation and recycle-bin state machine
// shared by all content types: create -> pending -> approved/rejected ->
// soft delete -> restore or purge. The engine is written once and
// instantiated per entity with its payload mapping; role gating lives in the
// Policy table so every entity's rules sit in one place.
package lifecycle

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

// Stores abstracts persistence for one entity type and its recycle bin.
// MoveToBin and MoveFromBin must be atomic: both the insert and the delete
// happen, or neither does.
type Stores[E any, B any] interface {
	// FindEntity returns the active record or sql.ErrNoRows.
	FindEntity(ctx context.Context, id string) (*E, error)
	// FindBin returns the recycle-bin record or sql.ErrNoRows. Expired
	// records (past the retention window) are treated as absent.
	FindBin(ctx context.Context, id string) (*B, error)
	// ListBin returns all non-expired recycle-bin records.
	ListBin(ctx context.Context) ([]B, error)
	// MoveToBin inserts the bin copy and deletes the original in one
	// transaction. A duplicate original id must surface as a unique
	// violation mapped to appErrors.ErrConflict.
	MoveToBin(ctx context.Context, entityID string, bin *B) error
	// MoveFromBin inserts the restored entity and deletes the bin record in
	// one transaction.
	MoveFromBin(ctx context.Context, binID string, entity *E) error
	// DeleteBin removes a recycle-bin record, reporting whether it existed.
	DeleteBin(ctx context.Context, id string) (bool, error)
}

// Engine drives the soft-delete / restore / purge transitions for one
// entity type.
type Engine[E any, B any] struct {
	entity  Entity
	stores  Stores[E, B]
	toBin   func(*E) *B
	fromBin func(*B) *E
	logger  *zap.Logger
}

// NewEngine builds an engine for one entity type. toBin copies the payload
// into a fresh bin record (new id, original id reference, deletion stamp);
// fromBin mints the restored entity (new identity, copied payload).
func NewEngine[E any, B any](entity Entity, stores Stores[E, B], toBin func(*E) *B, fromBin func(*B) *E, logger *zap.Logger) *Engine[E, B] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine[E, B]{entity: entity, stores: stores, toBin: toBin, fromBin: fromBin, logger: logger}
}

// SoftDelete moves an entity into the recycle bin and returns the bin copy.
func (g *Engine[E, B]) SoftDelete(ctx context.Context, id string) (*B, error) {
	entity, err := g.stores.FindEntity(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, string(g.entity)+" not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+string(g.entity))
	}

	bin := g.toBin(entity)
	if err := g.stores.MoveToBin(ctx, id, bin); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code == appErrors.ErrConflict.Code {
			return nil, appErrors.Clone(appErrors.ErrConflict, string(g.entity)+" already in recycle bin")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to move "+string(g.entity)+" to recycle bin")
	}

	g.logger.Sugar().Infow("moved to recycle bin", "entity", g.entity, "id", id)
	return bin, nil
}

// Restore re-creates an entity from its recycle-bin copy under a new
// identity and removes the bin record.
func (g *Engine[E, B]) Restore(ctx context.Context, binID string) (*E, error) {
	bin, err := g.stores.FindBin(ctx, binID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "recycle item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recycle item")
	}

	entity := g.fromBin(bin)
	if err := g.stores.MoveFromBin(ctx, binID, entity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore "+string(g.entity))
	}

	g.logger.Sugar().Infow("restored from recycle bin", "entity", g.entity, "bin_id", binID)
	return entity, nil
}

// Purge permanently deletes a recycle-bin record.
func (g *Engine[E, B]) Purge(ctx context.Context, binID string) error {
	found, err := g.stores.DeleteBin(ctx, binID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to purge recycle item")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "recycle item not found")
	}
	g.logger.Sugar().Infow("purged from recycle bin", "entity", g.entity, "bin_id", binID)
	return nil
}

// ListBin returns the current (non-expired) recycle-bin contents.
func (g *Engine[E, B]) ListBin(ctx context.Context) ([]B, error) {
	items, err := g.stores.ListBin(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recycle bin")
	}
	return items, nil
}
