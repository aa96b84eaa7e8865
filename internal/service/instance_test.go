package service

import (
	"context"
	"sort"
	"strings"
	"testing"

	"DestinySync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type participant struct {
	membership string
	character  string
	completed  string
	reason     string
}

func carnageReport(t *testing.T, instanceID string, ps ...participant) model.Message {
	entries := make([]map[string]any, 0, len(ps))
	for _, p := range ps {
		entries = append(entries, map[string]any{
			"characterId": p.character,
			"player": map[string]any{
				"destinyUserInfo": map[string]any{"membershipId": p.membership, "membershipType": 3},
				"characterClass":  "Hunter",
				"classHash":       671679327,
				"lightLevel":      1810,
				"clanName":        "Iron Wolves",
				"clanTag":         "IW",
			},
			"values": map[string]any{
				"completed":        stat(0, p.completed),
				"completionReason": stat(0, p.reason),
			},
		})
	}
	return model.Message{
		ID:   "pgcr-" + instanceID,
		Task: TaskInstance.String(),
		Data: mustJSON(t, map[string]any{
			"period":                          "2024-03-01T20:15:00Z",
			"startingPhaseIndex":              0,
			"activityWasStartedFromBeginning": true,
			"activityDetails": map[string]any{
				"referenceId":          1374392663,
				"directorActivityHash": 1374392663,
				"instanceId":           instanceID,
				"mode":                 4,
				"isPrivate":            false,
			},
			"entries": entries,
		}),
	}
}

func loadInstance(t *testing.T, f *fixture, id int64) model.Instance {
	var inst model.Instance
	require.NoError(t, f.db.Where("instance_id = ?", id).First(&inst).Error)
	return inst
}

func TestSyncInstanceCompletedIsOrOfParticipants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg := carnageReport(t, "100",
		participant{"1", "11", "No", "Failed"},
		participant{"2", "21", "Yes", "Objective Completed"},
		participant{"3", "31", "No", "Failed"},
	)
	require.NoError(t, f.sync.SyncInstance(ctx, f.repo, msg))

	inst := loadInstance(t, f, 100)
	assert.True(t, inst.Completed)
	assert.Equal(t, int64(1709324100), inst.OccurredAt)
	assert.True(t, inst.StartedFromBeginning)
	assert.Equal(t, int64(3), count[model.InstanceMember](t, f.db))

	var m model.InstanceMember
	require.NoError(t, f.db.Where("membership_id = ?", 2).First(&m).Error)
	assert.True(t, m.Completed)
	assert.Equal(t, "Objective Completed", m.CompletionReason)
	assert.Equal(t, "Iron Wolves", m.ClanName)

	none := carnageReport(t, "101",
		participant{"1", "11", "No", "Failed"},
		participant{"2", "21", "No", "Failed"},
	)
	require.NoError(t, f.sync.SyncInstance(ctx, f.repo, none))
	assert.False(t, loadInstance(t, f, 101).Completed)
}

func TestSyncInstanceCompletionReasonsAreDistinct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sync.SyncInstance(ctx, f.repo, carnageReport(t, "200",
		participant{"1", "11", "Yes", "Victory"},
		participant{"2", "21", "Yes", "Victory"},
	)))
	assert.Equal(t, "Victory", loadInstance(t, f, 200).CompletionReasons)

	require.NoError(t, f.sync.SyncInstance(ctx, f.repo, carnageReport(t, "201",
		participant{"1", "11", "Yes", "Victory"},
		participant{"2", "21", "No", "Abandoned"},
	)))
	reasons := strings.Split(loadInstance(t, f, 201).CompletionReasons, ",")
	sort.Strings(reasons)
	assert.Equal(t, []string{"Abandoned", "Victory"}, reasons)
}

func TestSyncInstanceIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	msg := carnageReport(t, "300",
		participant{"1", "11", "Yes", "Victory"},
		participant{"2", "21", "No", "Abandoned"},
	)

	require.NoError(t, f.sync.SyncInstance(ctx, f.repo, msg))
	first := loadInstance(t, f, 300)
	require.NoError(t, f.sync.SyncInstance(ctx, f.repo, msg))
	second := loadInstance(t, f, 300)

	assert.Equal(t, int64(1), count[model.Instance](t, f.db))
	assert.Equal(t, int64(2), count[model.InstanceMember](t, f.db))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CompletionReasons, second.CompletionReasons)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestSyncInstanceRejectsMissingInstanceID(t *testing.T) {
	f := newFixture(t)
	err := f.sync.SyncInstance(context.Background(), f.repo, carnageReport(t, "", participant{"1", "11", "Yes", "Victory"}))
	assert.ErrorIs(t, err, ErrDecode)
	assert.Zero(t, count[model.Instance](t, f.db))
}
