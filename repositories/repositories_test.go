package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/sports-meet/models"
	"github.com/Dosada05/sports-meet/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateRepository_GetMissingAndMalformed(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repo := NewAggregateRepository(store, DefaultKeys())

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	require.NoError(t, store.Put(ctx, "sports_data.json", []byte(`{"games":`)))
	_, err = repo.Get(ctx)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestAggregateRepository_PutGet(t *testing.T) {
	ctx := context.Background()
	repo := NewAggregateRepository(storage.NewMemoryStore(), DefaultKeys())

	doc := models.NewAggregateDocument()
	doc.Games.Days.Set("第一天", models.ScheduleDay{{{Grade: "高一", Name: "A"}}, {}, {}, {}})
	doc.Games.ClassMapping["张三"] = "高一(1)班"
	doc.Players.Set("A", models.PlayerList{Name: "A", Players: [][]models.RosterEntry{{{Road: "1", Name: "张三"}}}})

	require.NoError(t, repo.Put(ctx, doc))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"第一天"}, got.Games.Days.Keys())
	assert.Equal(t, "高一(1)班", got.Games.ClassMapping["张三"])
	roster, ok := got.Players.Get("A")
	require.True(t, ok)
	assert.Equal(t, "张三", roster.Players[0][0].Name)
}

func TestFragmentRepository_ListsDirectJSONChildrenOnly(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repo := NewFragmentRepository(store, DefaultKeys())

	for _, k := range []string{"players/10001.json", "players/10002.json", "players/output1/x.json", "players/readme.txt", "games/10.json"} {
		require.NoError(t, store.Put(ctx, k, []byte(`{}`)))
	}

	keys, err := repo.ListRosterKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"players/10001.json", "players/10002.json"}, keys)

	keys, err = repo.ListScheduleKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"games/10.json"}, keys)
}

func TestFragmentRepository_ClassMapping(t *testing.T) {
	ctx := context.Background()
	repo := NewFragmentRepository(storage.NewMemoryStore(), DefaultKeys())

	_, err := repo.GetClassMapping(ctx)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	require.NoError(t, repo.PutClassMapping(ctx, models.ClassMapping{"张三": "高一(1)班"}))
	m, err := repo.GetClassMapping(ctx)
	require.NoError(t, err)
	assert.Equal(t, "高一(1)班", m["张三"])
}

func TestBackupRepository_ListNewestFirstAndPrune(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repo := NewBackupRepository(store, DefaultKeys())

	base := time.Date(2026, 9, 25, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_, err := repo.Create(ctx, "sports_data.json", []byte{byte('a' + i)}, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	backups, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 4)
	assert.True(t, backups[0].CreatedAt.Equal(base.Add(3*time.Minute)))
	assert.Equal(t, "sports_data-20260925T080300.000000000Z", backups[0].ID)

	data, err := repo.Get(ctx, backups[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{'d'}, data)

	removed, err := repo.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	backups, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.True(t, backups[1].CreatedAt.Equal(base.Add(2*time.Minute)))

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestBackupRepository_PruneDisabled(t *testing.T) {
	repo := NewBackupRepository(storage.NewMemoryStore(), DefaultKeys())
	removed, err := repo.Prune(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, removed)
}
