package queue

import (
	"context"
	"sync"
	"time"

	"DestinySync/internal/model"

	"github.com/google/uuid"
)

type memoryItem struct {
	msg      model.Message
	attempts int
}

type memoryQueue struct {
	opts   Options
	mu     sync.Mutex
	queues map[string][]memoryItem
	dead   map[string][]model.Message
	closed bool
}

// NewMemoryQueue 进程内队列，用于本地开发与测试
func NewMemoryQueue(opts Options) Queue {
	return &memoryQueue{
		opts:   opts.withDefaults(),
		queues: make(map[string][]memoryItem),
		dead:   make(map[string][]model.Message),
	}
}

func (q *memoryQueue) Publish(ctx context.Context, queue string, msg model.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	if len(q.queues[queue]) >= q.opts.Capacity {
		return ErrFull
	}
	q.queues[queue] = append(q.queues[queue], memoryItem{msg: msg})
	return nil
}

func (q *memoryQueue) Receive(ctx context.Context, queue string) (Delivery, error) {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return nil, ErrClosed
		}
		if items := q.queues[queue]; len(items) > 0 {
			item := items[0]
			q.queues[queue] = items[1:]
			q.mu.Unlock()
			item.attempts++
			return &memoryDelivery{q: q, queue: queue, item: item}, nil
		}
		q.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(q.opts.PollInterval):
		}
	}
}

func (q *memoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}

// Depth 队列中等待领取的消息数
func (q *memoryQueue) Depth(queue string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queues[queue])
}

// Snapshot 返回队列中等待领取的消息副本
func (q *memoryQueue) Snapshot(queue string) []model.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]model.Message, 0, len(q.queues[queue]))
	for _, it := range q.queues[queue] {
		out = append(out, it.msg)
	}
	return out
}

// Dead 超过最大投递次数的消息
func (q *memoryQueue) Dead(queue string) []model.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]model.Message(nil), q.dead[queue]...)
}

type memoryDelivery struct {
	q     *memoryQueue
	queue string
	item  memoryItem
	done  bool
}

func (d *memoryDelivery) Message() model.Message { return d.item.msg }
func (d *memoryDelivery) Attempts() int          { return d.item.attempts }

func (d *memoryDelivery) Ack(context.Context) error {
	d.done = true
	return nil
}

func (d *memoryDelivery) Nack(context.Context) error {
	if d.done {
		return nil
	}
	d.done = true
	d.q.mu.Lock()
	defer d.q.mu.Unlock()
	if d.item.attempts >= d.q.opts.MaxAttempts {
		d.q.dead[d.queue] = append(d.q.dead[d.queue], d.item.msg)
		return nil
	}
	d.q.queues[d.queue] = append(d.q.queues[d.queue], d.item)
	return nil
}

// Inspector 内存队列的调试接口（测试用）
type Inspector interface {
	Depth(queue string) int
	Snapshot(queue string) []model.Message
	Dead(queue string) []model.Message
}
