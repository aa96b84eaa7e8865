package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"DestinySync/internal/model"
	"DestinySync/internal/repository"
	"DestinySync/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableQueueRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewQueueRepository(db)
	q := NewTableQueue(repo, Options{PollInterval: 5 * time.Millisecond, MaxAttempts: 3, Visibility: time.Hour}, nil)
	ctx := context.Background()

	msg := model.Message{
		Task:    "activity_stats",
		Data:    json.RawMessage(`{"values":{}}`),
		Headers: map[string]string{model.HeaderMembership: "4611686018"},
	}
	require.NoError(t, q.Publish(ctx, "sync", msg))

	d, err := q.Receive(ctx, "sync")
	require.NoError(t, err)
	got := d.Message()
	assert.Equal(t, "activity_stats", got.Task)
	assert.Equal(t, "4611686018", got.Header(model.HeaderMembership))
	assert.JSONEq(t, `{"values":{}}`, string(got.Data))
	assert.Equal(t, 1, d.Attempts())

	// 领取后在可见期内不会再次投递
	short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	_, err = q.Receive(short, "sync")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, d.Ack(ctx))
	n, err := repo.Depth(ctx, "sync")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTableQueueNackMarksDeadAfterMaxAttempts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewQueueRepository(db)
	q := NewTableQueue(repo, Options{PollInterval: 5 * time.Millisecond, MaxAttempts: 1, Visibility: time.Hour}, nil)
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, "sync", model.Message{ID: "dead-1", Task: "instance"}))
	d, err := q.Receive(ctx, "sync")
	require.NoError(t, err)
	require.NoError(t, d.Nack(ctx))

	var row model.QueueMessage
	require.NoError(t, db.First(&row, "id = ?", "dead-1").Error)
	assert.Equal(t, model.QueueStatusDead, row.Status)

	n, err := repo.Depth(ctx, "sync")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTableQueueNackRequeues(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewQueueRepository(db)
	q := NewTableQueue(repo, Options{PollInterval: 5 * time.Millisecond, MaxAttempts: 3, Visibility: time.Hour}, nil)
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, "sync", model.Message{ID: "retry-1", Task: "instance"}))
	d, err := q.Receive(ctx, "sync")
	require.NoError(t, err)
	require.NoError(t, d.Nack(ctx))

	d, err = q.Receive(ctx, "sync")
	require.NoError(t, err)
	assert.Equal(t, "retry-1", d.Message().ID)
	assert.Equal(t, 2, d.Attempts())
}

func TestTableQueueExpiredDeliveryGoesDeadAfterMaxAttempts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewQueueRepository(db)
	q := NewTableQueue(repo, Options{PollInterval: 2 * time.Millisecond, MaxAttempts: 2, Visibility: 5 * time.Millisecond}, nil)
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, "sync", model.Message{ID: "crash-1", Task: "instance"}))

	// 两次领取都未确认，模拟消费者崩溃
	for attempt := 1; attempt <= 2; attempt++ {
		d, err := q.Receive(ctx, "sync")
		require.NoError(t, err)
		assert.Equal(t, attempt, d.Attempts())
		time.Sleep(15 * time.Millisecond)
	}

	short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	_, err := q.Receive(short, "sync")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var row model.QueueMessage
	require.NoError(t, db.First(&row, "id = ?", "crash-1").Error)
	assert.Equal(t, model.QueueStatusDead, row.Status)
	assert.Equal(t, 2, row.Attempts)
}
