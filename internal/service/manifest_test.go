package service

import (
	"context"
	"testing"

	"DestinySync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncManifestRefreshesInPlace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := model.Message{Data: mustJSON(t, map[string]any{
		"3655393761": map[string]any{"hash": 3655393761, "index": 0, "classType": 0, "displayProperties": map[string]any{"name": "Titan"}},
		"671679327":  map[string]any{"hash": 671679327, "index": 1, "classType": 1, "displayProperties": map[string]any{"name": "Hunter"}},
	})}
	n, err := f.sync.SyncManifestClass(ctx, f.repo, first)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// 第二次快照缺少 Hunter：不删除，只更新 Titan
	second := model.Message{Data: mustJSON(t, map[string]any{
		"3655393761": map[string]any{"hash": 3655393761, "index": 0, "classType": 0, "displayProperties": map[string]any{"name": "Titan (renamed)"}},
	})}
	_, err = f.sync.SyncManifestClass(ctx, f.repo, second)
	require.NoError(t, err)

	var rows []model.ManifestClass
	require.NoError(t, f.db.Order("hash_index").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "Titan (renamed)", rows[0].Name)
	assert.Equal(t, "Hunter", rows[1].Name)
}

func TestSyncManifestChunksLargeCatalogs(t *testing.T) {
	f := newFixture(t)
	defs := map[string]any{}
	for i := 1; i <= 250; i++ {
		defs[itoa(i)] = map[string]any{"index": i, "displayProperties": map[string]any{"name": "activity"}}
	}
	n, err := f.sync.SyncManifestActivity(context.Background(), f.repo, model.Message{Data: mustJSON(t, defs)})
	require.NoError(t, err)
	assert.Equal(t, 250, n)
	assert.Equal(t, int64(250), count[model.ManifestActivity](t, f.db))
}

func TestSyncManifestOtherCatalogs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sync.SyncManifestActivityType(ctx, f.repo, model.Message{Data: mustJSON(t, map[string]any{
		"2043403989": map[string]any{"hash": 2043403989, "displayProperties": map[string]any{"name": "Raid", "icon": "/raid.png"}},
	})})
	require.NoError(t, err)

	_, err = f.sync.SyncManifestSeason(ctx, f.repo, model.Message{Data: mustJSON(t, map[string]any{
		"2809059433": map[string]any{"hash": 2809059433, "seasonNumber": 23, "startDate": "2024-02-27T17:00:00Z",
			"displayProperties": map[string]any{"name": "Season of the Wish"}},
	})})
	require.NoError(t, err)

	_, err = f.sync.SyncManifestTriumph(ctx, f.repo, model.Message{Data: mustJSON(t, map[string]any{
		"2460356851": map[string]any{"hash": 2460356851, "forTitleGilding": false,
			"displayProperties": map[string]any{"name": "Conqueror"},
			"titleInfo":         map[string]any{"hasTitle": true, "titlesByGender": map[string]string{"Male": "Conqueror", "Female": "Conqueror"}}},
	})})
	require.NoError(t, err)

	var season model.ManifestSeason
	require.NoError(t, f.db.First(&season).Error)
	assert.Equal(t, 23, season.Number)
	assert.Equal(t, int64(1709053200), season.StartsAt)
	assert.Zero(t, season.EndsAt)

	var triumph model.ManifestTriumph
	require.NoError(t, f.db.First(&triumph).Error)
	assert.True(t, triumph.HasTitle)
	assert.Equal(t, "Conqueror", triumph.Title)

	var at model.ManifestActivityType
	require.NoError(t, f.db.First(&at).Error)
	assert.Equal(t, "/raid.png", at.Icon)
}
