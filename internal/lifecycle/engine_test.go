package lifecycle

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/lms-api/pkg/errors"
)

type note struct {
	ID    string
	Title string
	Body  string
}

type noteBin struct {
	ID         string
	OriginalID string
	Title      string
	Body       string
	DeletedAt  time.Time
}

type memStores struct {
	entities map[string]note
	bin      map[string]noteBin
	moveErr  error
}

func newMemStores() *memStores {
	return &memStores{entities: make(map[string]note), bin: make(map[string]noteBin)}
}

func (m *memStores) FindEntity(_ context.Context, id string) (*note, error) {
	if e, ok := m.entities[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memStores) FindBin(_ context.Context, id string) (*noteBin, error) {
	if b, ok := m.bin[id]; ok {
		return &b, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memStores) ListBin(_ context.Context) ([]noteBin, error) {
	out := make([]noteBin, 0, len(m.bin))
	for _, b := range m.bin {
		out = append(out, b)
	}
	return out, nil
}

func (m *memStores) MoveToBin(_ context.Context, entityID string, bin *noteBin) error {
	if m.moveErr != nil {
		return m.moveErr
	}
	for _, b := range m.bin {
		if b.OriginalID == bin.OriginalID {
			return appErrors.Clone(appErrors.ErrConflict, "duplicate original id")
		}
	}
	m.bin[bin.ID] = *bin
	delete(m.entities, entityID)
	return nil
}

func (m *memStores) MoveFromBin(_ context.Context, binID string, entity *note) error {
	if m.moveErr != nil {
		return m.moveErr
	}
	m.entities[entity.ID] = *entity
	delete(m.bin, binID)
	return nil
}

func (m *memStores) DeleteBin(_ context.Context, id string) (bool, error) {
	if _, ok := m.bin[id]; !ok {
		return false, nil
	}
	delete(m.bin, id)
	return true, nil
}

func newNoteEngine(stores *memStores) *Engine[note, noteBin] {
	toBin := func(e *note) *noteBin {
		return &noteBin{
			ID:         uuid.NewString(),
			OriginalID: e.ID,
			Title:      e.Title,
			Body:       e.Body,
			DeletedAt:  time.Now().UTC(),
		}
	}
	fromBin := func(b *noteBin) *note {
		return &note{ID: uuid.NewString(), Title: b.Title, Body: b.Body}
	}
	return NewEngine[note, noteBin](EntityVideo, stores, toBin, fromBin, zap.NewNop())
}

func TestEngineSoftDeleteMovesRecord(t *testing.T) {
	stores := newMemStores()
	stores.entities["n1"] = note{ID: "n1", Title: "Algebra", Body: "course"}
	eng := newNoteEngine(stores)

	bin, err := eng.SoftDelete(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, "n1", bin.OriginalID)
	assert.Equal(t, "Algebra", bin.Title)
	assert.NotEqual(t, "n1", bin.ID)

	_, inEntities := stores.entities["n1"]
	assert.False(t, inEntities)
	assert.Len(t, stores.bin, 1)
}

func TestEngineSoftDeleteMissing(t *testing.T) {
	eng := newNoteEngine(newMemStores())

	_, err := eng.SoftDelete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEngineSoftDeleteTwiceConflicts(t *testing.T) {
	stores := newMemStores()
	stores.entities["n1"] = note{ID: "n1", Title: "Algebra"}
	eng := newNoteEngine(stores)

	_, err := eng.SoftDelete(context.Background(), "n1")
	require.NoError(t, err)

	// a second delete of the same original must not duplicate the bin copy
	stores.entities["n1"] = note{ID: "n1", Title: "Algebra"}
	_, err = eng.SoftDelete(context.Background(), "n1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Len(t, stores.bin, 1)
}

func TestEngineRestoreRoundTrip(t *testing.T) {
	stores := newMemStores()
	stores.entities["n1"] = note{ID: "n1", Title: "Algebra", Body: "course"}
	eng := newNoteEngine(stores)

	bin, err := eng.SoftDelete(context.Background(), "n1")
	require.NoError(t, err)

	restored, err := eng.Restore(context.Background(), bin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Algebra", restored.Title)
	assert.Equal(t, "course", restored.Body)
	assert.NotEqual(t, "n1", restored.ID)

	assert.Empty(t, stores.bin)
	assert.Len(t, stores.entities, 1)
}

func TestEngineRestoreMissing(t *testing.T) {
	eng := newNoteEngine(newMemStores())

	_, err := eng.Restore(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnginePurge(t *testing.T) {
	stores := newMemStores()
	stores.bin["b1"] = noteBin{ID: "b1", OriginalID: "n1"}
	eng := newNoteEngine(stores)

	require.NoError(t, eng.Purge(context.Background(), "b1"))
	assert.Empty(t, stores.bin)

	err := eng.Purge(context.Background(), "b1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEngineListBin(t *testing.T) {
	stores := newMemStores()
	stores.bin["b1"] = noteBin{ID: "b1", OriginalID: "n1", Title: "Algebra"}
	eng := newNoteEngine(stores)

	items, err := eng.ListBin(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
