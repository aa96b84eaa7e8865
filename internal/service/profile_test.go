package service

import (
	"context"
	"testing"

	"DestinySync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profilePayload() map[string]any {
	character := func(id string, light int) map[string]any {
		return map[string]any{
			"membershipId":             "4611686018467284386",
			"membershipType":           3,
			"characterId":              id,
			"dateLastPlayed":           "2024-03-01T20:15:00Z",
			"minutesPlayedThisSession": "35",
			"minutesPlayedTotal":       "12000",
			"light":                    light,
			"classHash":                2271682572,
			"emblemHash":               1907674138,
		}
	}
	return map[string]any{
		"profile": map[string]any{"data": map[string]any{
			"userInfo": map[string]any{
				"membershipId":                "4611686018467284386",
				"membershipType":              3,
				"displayName":                 "guardian",
				"bungieGlobalDisplayName":     "Guardian",
				"bungieGlobalDisplayNameCode": 42,
			},
			"dateLastPlayed":              "2024-03-01T20:15:00Z",
			"currentGuardianRank":         7,
			"lifetimeHighestGuardianRank": 9,
		}},
		"characters": map[string]any{"data": map[string]any{
			"2305843009301234561": character("2305843009301234561", 1810),
			"2305843009301234562": character("2305843009301234562", 1805),
			"2305843009301234563": character("2305843009301234563", 1790),
		}},
		"profileRecords": map[string]any{"data": map[string]any{
			"score": 1000,
			"records": map[string]any{
				"1234":     map[string]any{"state": 67, "completedCount": 1},
				"5678":     map[string]any{"state": 4},
				"not-hash": map[string]any{"state": 1},
			},
		}},
	}
}

func TestSyncProfileWritesAllComponents(t *testing.T) {
	f := newFixture(t)
	msg := model.Message{Task: TaskMemberProfile.String(), Data: mustJSON(t, profilePayload())}
	require.NoError(t, f.sync.SyncProfile(context.Background(), f.repo, msg))

	var member model.Member
	require.NoError(t, f.db.First(&member).Error)
	assert.Equal(t, int64(4611686018467284386), member.MembershipID)
	assert.Equal(t, "Guardian#0042", member.DisplayNameGlobal)
	assert.Equal(t, 9, member.GuardianRankLifetime)
	assert.Equal(t, int64(1709324100), member.LastPlayedAt)

	assert.Equal(t, int64(3), count[model.MemberCharacter](t, f.db))
	var ch model.MemberCharacter
	require.NoError(t, f.db.Where("character_id = ?", int64(2305843009301234561)).First(&ch).Error)
	assert.Equal(t, 1810, ch.Light)
	assert.Equal(t, int64(12000), ch.DurationPlayedTotal)

	var triumphs []model.MemberTriumph
	require.NoError(t, f.db.Order("hash").Find(&triumphs).Error)
	require.Len(t, triumphs, 3)
	assert.Equal(t, uint32(0), triumphs[0].Hash, "unparsable hash is coerced to 0")
	assert.Equal(t, uint32(1234), triumphs[1].Hash)
	assert.Equal(t, 1, triumphs[1].TimesCompleted)
}

func TestSyncProfileIsIdempotent(t *testing.T) {
	f := newFixture(t)
	msg := model.Message{Data: mustJSON(t, profilePayload())}
	require.NoError(t, f.sync.SyncProfile(context.Background(), f.repo, msg))
	require.NoError(t, f.sync.SyncProfile(context.Background(), f.repo, msg))

	assert.Equal(t, int64(1), count[model.Member](t, f.db))
	assert.Equal(t, int64(3), count[model.MemberCharacter](t, f.db))
	assert.Equal(t, int64(3), count[model.MemberTriumph](t, f.db))
}

func TestSyncProfileFailedUnitDoesNotAbortSiblings(t *testing.T) {
	f := newFixture(t)
	payload := profilePayload()
	// 成就缺少账号上下文，角色仍应写入
	delete(payload, "profile")
	msg := model.Message{Data: mustJSON(t, payload)}

	err := f.sync.SyncProfile(context.Background(), f.repo, msg)
	assert.ErrorIs(t, err, ErrMissingContext)
	assert.Equal(t, int64(3), count[model.MemberCharacter](t, f.db))
	assert.Zero(t, count[model.MemberTriumph](t, f.db))

	msg.Headers = map[string]string{model.HeaderMembership: "4611686018467284386"}
	require.NoError(t, f.sync.SyncProfile(context.Background(), f.repo, msg))
	assert.Equal(t, int64(3), count[model.MemberTriumph](t, f.db))
}

func TestSyncProfileEmptyPayload(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sync.SyncProfile(context.Background(), f.repo, model.Message{Data: []byte(`{}`)}))
	assert.ErrorIs(t, f.sync.SyncProfile(context.Background(), f.repo, model.Message{Data: []byte(`[`)}), ErrDecode)
}
