package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"DestinySync/internal/config"
	"DestinySync/internal/model"
	"DestinySync/internal/queue"
	"DestinySync/internal/testutil"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"serve", "worker", "migrate", "replay"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	l.WithField("task", "instance").Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "instance", line["task"])

	l = NewLogger(config.LogConfig{Level: "nonsense"}, &buf)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestParseHeaders(t *testing.T) {
	h, err := parseHeaders([]string{"membership=1", " character = 2 "})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"membership": "1", "character": "2"}, h)

	_, err = parseHeaders([]string{"broken"})
	assert.Error(t, err)
}

func TestRunReplay(t *testing.T) {
	db := testutil.NewTestDB(t)
	q := queue.NewMemoryQueue(queue.Options{})
	cfg := &config.Config{
		Queue: config.QueueConfig{InstanceQueue: "destiny.instance"},
		Sync:  config.SyncConfig{CharacterConcurrency: 2, RepublishChunk: 100},
	}
	d := NewDispatcher(db, q, nil, cfg, testutil.NewLogger())

	file := filepath.Join(t.TempDir(), "history.json")
	payload := `[{"period":"2024-03-01T20:15:00Z","activityDetails":{"instanceId":"77","mode":4}}]`
	require.NoError(t, os.WriteFile(file, []byte(payload), 0o600))

	var out bytes.Buffer
	opts := &ReplayOptions{
		RootOptions: &RootOptions{},
		Task:        "activity_history",
		File:        file,
		Headers:     []string{"membership=1", "character=2"},
	}
	require.NoError(t, runReplay(context.Background(), opts, d, &out))

	var res ReplayResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.True(t, res.OK)
	assert.Equal(t, []string{"77"}, res.Instances)

	var n int64
	require.NoError(t, db.Model(&model.MemberActivity{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, q.(queue.Inspector).Depth("destiny.instance"))

	opts.Headers = nil
	assert.Error(t, runReplay(context.Background(), opts, d, &out), "missing headers fail the replay")

	opts.Task = "bogus"
	assert.Error(t, runReplay(context.Background(), opts, d, &out))
}

func TestQueueOptionsFromConfig(t *testing.T) {
	opts := queueOptions(config.QueueConfig{
		Capacity:     10,
		PollInterval: 20 * time.Millisecond,
		MaxAttempts:  4,
		Visibility:   time.Minute,
		RetryDelay:   3 * time.Second,
	})
	assert.Equal(t, queue.Options{
		Capacity:     10,
		PollInterval: 20 * time.Millisecond,
		MaxAttempts:  4,
		Visibility:   time.Minute,
		RetryDelay:   3 * time.Second,
	}, opts)
}
