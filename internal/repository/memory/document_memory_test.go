package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"docflow/internal/model"
	"docflow/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDoc(id string) *model.Document {
	return &model.Document{
		ID:           id,
		TemplateName: "Contract",
		FileName:     id + ".docx",
		Status:       model.StatusDraft,
		Variables:    map[string]string{"name": "Alice"},
		CreatedAt:    time.Now().UTC(),
	}
}

func TestDocumentMemory_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	reg := NewDocumentMemory()

	require.NoError(t, reg.Insert(ctx, newDoc("a")))

	// Duplicate id is rejected.
	assert.Error(t, reg.Insert(ctx, newDoc("a")))

	got, err := reg.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, got.Status)

	_, err = reg.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDocumentMemory_FindReturnsCopy(t *testing.T) {
	ctx := context.Background()
	reg := NewDocumentMemory()
	require.NoError(t, reg.Insert(ctx, newDoc("a")))

	got, err := reg.FindByID(ctx, "a")
	require.NoError(t, err)
	got.Status = model.StatusFinalized
	got.Variables["name"] = "Mallory"

	again, err := reg.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, again.Status)
	assert.Equal(t, "Alice", again.Variables["name"])
}

func TestDocumentMemory_Update(t *testing.T) {
	ctx := context.Background()
	reg := NewDocumentMemory()
	require.NoError(t, reg.Insert(ctx, newDoc("a")))

	err := reg.Update(ctx, "a", func(d *model.Document) error {
		d.Status = model.StatusSigned
		now := time.Now().UTC()
		d.SignedAt = &now
		return nil
	})
	require.NoError(t, err)

	got, err := reg.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSigned, got.Status)
	assert.NotNil(t, got.SignedAt)

	assert.ErrorIs(t, reg.Update(ctx, "missing", func(*model.Document) error { return nil }), repository.ErrNotFound)
}

func TestDocumentMemory_UpdateAbortLeavesRecordUnchanged(t *testing.T) {
	ctx := context.Background()
	reg := NewDocumentMemory()
	require.NoError(t, reg.Insert(ctx, newDoc("a")))

	wantErr := errors.New("wrong state")
	err := reg.Update(ctx, "a", func(d *model.Document) error {
		d.Status = model.StatusFinalized
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	got, err := reg.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, got.Status)
}

func TestDocumentMemory_ListSnapshot(t *testing.T) {
	ctx := context.Background()
	reg := NewDocumentMemory()
	require.NoError(t, reg.Insert(ctx, newDoc("a")))
	require.NoError(t, reg.Insert(ctx, newDoc("b")))

	snap, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 2)

	// Mutations after the call are not visible in the snapshot.
	require.NoError(t, reg.Update(ctx, "a", func(d *model.Document) error {
		d.Status = model.StatusSigned
		return nil
	}))
	for _, d := range snap {
		assert.Equal(t, model.StatusDraft, d.Status)
	}
}

func TestDocumentMemory_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	reg := NewDocumentMemory()
	require.NoError(t, reg.Insert(ctx, newDoc("a")))

	// Only one of many racing sign transitions may observe Draft.
	var wins int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := reg.Update(ctx, "a", func(d *model.Document) error {
				if d.Status != model.StatusDraft {
					return errors.New("not draft")
				}
				d.Status = model.StatusSigned
				return nil
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	got, err := reg.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSigned, got.Status)
}
