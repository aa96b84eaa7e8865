package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"DestinySync/internal/model"
	"DestinySync/internal/repository"
	"DestinySync/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherUnknownTaskIsNoop(t *testing.T) {
	f := newFixture(t)
	ok, ids := f.dispatcher.Handle(context.Background(), model.Message{Task: "leaderboard", Data: []byte(`{}`)})
	assert.False(t, ok)
	assert.Nil(t, ids)
	assert.Empty(t, f.published(t))
}

func TestDispatcherRepublishesDiscoveredInstances(t *testing.T) {
	f := newFixture(t)
	entries := make([]any, 0, 250)
	for i := 1; i <= 250; i++ {
		entries = append(entries, historyEntry(itoa(1000+i), nil))
	}
	msg := model.Message{
		ID:      "history-1",
		Task:    TaskActivityHistory.String(),
		Data:    mustJSON(t, entries),
		Headers: historyHeaders(),
	}

	ok, ids := f.dispatcher.Handle(context.Background(), msg)
	require.True(t, ok)
	assert.Len(t, ids, 250)
	assert.Equal(t, int64(250), count[model.MemberActivity](t, f.db))

	published := f.published(t)
	require.Len(t, published, 3)
	var sizes []int
	for _, m := range published {
		var chunk []string
		require.NoError(t, json.Unmarshal(m.Data, &chunk))
		sizes = append(sizes, len(chunk))
	}
	assert.Equal(t, []int{100, 100, 50}, sizes)
}

func TestDispatcherInstanceDoesNotRepublish(t *testing.T) {
	f := newFixture(t)
	ok, ids := f.dispatcher.Handle(context.Background(), carnageReport(t, "900", participant{"1", "11", "Yes", "Victory"}))
	assert.True(t, ok)
	assert.Empty(t, ids)
	assert.Empty(t, f.published(t))
}

func TestDispatcherFailureDoesNotPanic(t *testing.T) {
	f := newFixture(t)
	ok, _ := f.dispatcher.Handle(context.Background(), model.Message{Task: TaskClanInfo.String(), Data: []byte(`not json`)})
	assert.False(t, ok)

	ok, ids := f.dispatcher.Handle(context.Background(), model.Message{
		Task: TaskActivityStats.String(),
		Data: mustJSON(t, []any{historyEntry("1", nil)}),
	})
	assert.False(t, ok, "missing headers fail the message")
	assert.Empty(t, ids)
	assert.Zero(t, count[model.MemberActivityStat](t, f.db))
}

// failingRepo 写入总是失败，用于验证部分失败时仍然回投
type failingRepo struct {
	repository.SyncRepository
}

func (failingRepo) UpsertRange(context.Context, any, repository.UpsertSpec) error {
	return errors.New("disk full")
}

func (r failingRepo) Connection(_ context.Context, fn func(repository.SyncRepository) error) error {
	return fn(r)
}

func TestDispatcherRepublishesDespiteWriteFailure(t *testing.T) {
	f := newFixture(t)
	d := NewDispatcher(failingRepo{}, f.sync, NewRepublisher(f.queue, testInstanceQueue, 100, testutil.NewLogger()), nil, testutil.NewLogger())

	ok, ids := d.Handle(context.Background(), model.Message{
		Task:    TaskActivityHistory.String(),
		Data:    mustJSON(t, []any{historyEntry("42", nil), historyEntry("43", nil)}),
		Headers: historyHeaders(),
	})
	assert.False(t, ok)
	assert.Equal(t, []int64{42, 43}, ids)
	assert.Len(t, f.published(t), 1)
}

type recordingArchiver struct {
	tasks []string
	err   error
}

func (a *recordingArchiver) Archive(_ context.Context, msg model.Message) error {
	a.tasks = append(a.tasks, msg.Task)
	return a.err
}

func TestDispatcherArchiveFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	arch := &recordingArchiver{err: errors.New("bucket missing")}
	d := NewDispatcher(f.repo, f.sync, nil, arch, testutil.NewLogger())

	ok, _ := d.Handle(context.Background(), rosterMessage(t, "7", "1"))
	assert.True(t, ok)
	assert.Equal(t, []string{"clan_roster"}, arch.tasks)

	ok, _ = d.Handle(context.Background(), model.Message{Task: "nope"})
	assert.False(t, ok)
	assert.Len(t, arch.tasks, 1, "unknown tasks are not archived")
}

func TestDispatcherRoutesEveryTask(t *testing.T) {
	f := newFixture(t)
	for _, task := range Tasks() {
		_, ok := f.dispatcher.handlers[task]
		assert.True(t, ok, task.String())
	}
}
