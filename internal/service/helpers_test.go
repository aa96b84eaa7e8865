package service

import (
	"encoding/json"
	"testing"
	"time"

	"DestinySync/internal/model"
	"DestinySync/internal/queue"
	"DestinySync/internal/repository"
	"DestinySync/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testInstanceQueue = "destiny.instance"

type fixture struct {
	db         *gorm.DB
	repo       repository.SyncRepository
	sync       *Synchronizer
	queue      queue.Queue
	dispatcher *Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	logger := testutil.NewLogger()
	repo := repository.NewSyncRepository(db)
	s := NewSynchronizer(logger, 2)
	s.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	q := queue.NewMemoryQueue(queue.Options{Capacity: 1000})
	rp := NewRepublisher(q, testInstanceQueue, DefaultRepublishChunk, logger)
	return &fixture{
		db:         db,
		repo:       repo,
		sync:       s,
		queue:      q,
		dispatcher: NewDispatcher(repo, s, rp, nil, logger),
	}
}

func (f *fixture) published(t *testing.T) []model.Message {
	t.Helper()
	insp, ok := f.queue.(queue.Inspector)
	require.True(t, ok)
	return insp.Snapshot(testInstanceQueue)
}

func count[T any](t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(new(T)).Count(&n).Error)
	return n
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func historyHeaders() map[string]string {
	return map[string]string{
		model.HeaderMembership: "4611686018467284386",
		model.HeaderCharacter:  "2305843009301234567",
		model.HeaderPlatform:   "3",
	}
}

func stat(value float64, display string) map[string]any {
	return map[string]any{"basic": map[string]any{"value": value, "displayValue": display}}
}
