package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"DestinySync/internal/model"
	"DestinySync/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// tableQueue 基于 sync_queue_messages 表的队列，多个 worker 进程通过 SKIP LOCKED 并发领取
type tableQueue struct {
	repo    repository.QueueRepository
	opts    Options
	closeFn func() error
}

// NewTableQueue 使用给定仓储构建表队列；closeFn 可为 nil
func NewTableQueue(repo repository.QueueRepository, opts Options, closeFn func() error) Queue {
	return &tableQueue{repo: repo, opts: opts.withDefaults(), closeFn: closeFn}
}

func (q *tableQueue) Publish(ctx context.Context, queue string, msg model.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	payload := datatypes.JSON(msg.Data)
	if len(payload) == 0 {
		payload = datatypes.JSON("null")
	}
	headers := datatypes.JSONMap{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	now := time.Now().UTC()
	row := &model.QueueMessage{
		ID:          msg.ID,
		Queue:       queue,
		Task:        msg.Task,
		Payload:     payload,
		Headers:     headers,
		Status:      model.QueueStatusPending,
		AvailableAt: now,
		CreatedAt:   now,
	}
	if err := q.repo.Enqueue(ctx, row); err != nil {
		return fmt.Errorf("消息入队失败: %w", err)
	}
	return nil
}

func (q *tableQueue) Receive(ctx context.Context, queue string) (Delivery, error) {
	for {
		row, err := q.repo.Claim(ctx, queue, q.opts.Visibility, q.opts.MaxAttempts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("领取消息失败: %w", err)
		}
		if row != nil {
			return &tableDelivery{q: q, row: row, msg: toMessage(row)}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(q.opts.PollInterval):
		}
	}
}

func (q *tableQueue) Close() error {
	if q.closeFn == nil {
		return nil
	}
	return q.closeFn()
}

func toMessage(row *model.QueueMessage) model.Message {
	headers := make(map[string]string, len(row.Headers))
	for k, v := range row.Headers {
		switch val := v.(type) {
		case string:
			headers[k] = val
		default:
			headers[k] = fmt.Sprint(val)
		}
	}
	return model.Message{
		ID:      row.ID,
		Task:    row.Task,
		Data:    json.RawMessage(row.Payload),
		Headers: headers,
	}
}

type tableDelivery struct {
	q   *tableQueue
	row *model.QueueMessage
	msg model.Message
}

func (d *tableDelivery) Message() model.Message { return d.msg }
func (d *tableDelivery) Attempts() int          { return d.row.Attempts }

func (d *tableDelivery) Ack(ctx context.Context) error {
	return d.q.repo.Delete(ctx, d.row.ID)
}

func (d *tableDelivery) Nack(ctx context.Context) error {
	dead := d.row.Attempts >= d.q.opts.MaxAttempts
	return d.q.repo.Release(ctx, d.row.ID, dead, time.Now().Add(d.q.opts.RetryDelay))
}
