// Package archive 将入站消息原样归档到对象存储，便于回放与排查
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"DestinySync/internal/model"

	"github.com/google/uuid"
)

// ObjectStore 归档使用的最小对象存储能力
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

// Archiver 对象路径为 <task>/<yyyy/mm/dd>/<uuid>.json
type Archiver struct {
	store ObjectStore
	now   func() time.Time
	newID func() string
}

func New(store ObjectStore) *Archiver {
	return &Archiver{store: store, now: time.Now, newID: uuid.NewString}
}

func (a *Archiver) Archive(ctx context.Context, msg model.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}
	key := a.objectKey(msg)
	if err := a.store.PutObject(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		return fmt.Errorf("归档%s失败: %w", key, err)
	}
	return nil
}

func (a *Archiver) objectKey(msg model.Message) string {
	task := msg.Task
	if task == "" {
		task = "unknown"
	}
	id := msg.ID
	if id == "" {
		id = a.newID()
	}
	return fmt.Sprintf("%s/%s/%s.json", task, a.now().UTC().Format("2006/01/02"), id)
}

// Noop 未启用归档时使用
type Noop struct{}

func (Noop) Archive(context.Context, model.Message) error { return nil }
