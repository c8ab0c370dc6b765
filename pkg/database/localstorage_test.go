package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamverse-backend/pkg/models"
)

func TestLocalStorage_MissingSlotReadsSeed(t *testing.T) {
	store := NewLocalStorage(NewMemorySlots(), "")
	sites, err := store.ListSites(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSites(), sites)
}

func TestLocalStorage_CorruptSlotDegrades(t *testing.T) {
	slots := NewMemorySlots()
	require.NoError(t, slots.SetItem(DefaultLocalSlot, "not json"))

	store := NewLocalStorage(slots, DefaultLocalSlot)
	sites, err := store.ListSites(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSites(), sites)

	// existing (corrupt) values are left alone by Initialize
	require.NoError(t, store.Initialize(context.Background()))
	raw, ok, err := slots.GetItem(DefaultLocalSlot)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "not json", raw)
}

func TestLocalStorage_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStorage(NewMemorySlots(), DefaultLocalSlot, WithSeed(nil))

	_, err := store.AddSite(ctx, fooInput())
	require.NoError(t, err)
	require.NoError(t, store.Clear())

	sites, err := store.ListSites(ctx)
	require.NoError(t, err)
	assert.Empty(t, sites)
	assert.NoError(t, store.HealthCheck(ctx))
}

func TestSQLiteSlots_PersistAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "client", "local.db")

	slots, err := OpenSQLiteSlots(path)
	require.NoError(t, err)
	store := NewLocalStorage(slots, DefaultLocalSlot, WithSeed(nil))
	created, err := store.AddSite(ctx, fooInput())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	slots, err = OpenSQLiteSlots(path)
	require.NoError(t, err)
	store = NewLocalStorage(slots, DefaultLocalSlot, WithSeed(nil))
	defer store.Close()

	sites, err := store.ListSites(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, *created, sites[0])
}

func TestSQLiteSlots_RemoveItem(t *testing.T) {
	slots, err := OpenSQLiteSlots(filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	defer slots.Close()

	require.NoError(t, slots.SetItem("a", "1"))
	require.NoError(t, slots.SetItem("a", "2"))
	v, ok, err := slots.GetItem("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	require.NoError(t, slots.RemoveItem("a"))
	_, ok, err = slots.GetItem("a")
	require.NoError(t, err)
	assert.False(t, ok)
}
