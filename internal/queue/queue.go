// Package queue 同步任务的消息传输：发布、领取、确认。
// 投递语义为至少一次，重试策略（最大次数、dead 状态）在此层实现，同步引擎本身不感知。
package queue

import (
	"context"
	"errors"
	"time"

	"DestinySync/internal/model"
)

var (
	ErrClosed = errors.New("queue closed")
	ErrFull   = errors.New("queue full")
)

// Queue 消息队列
type Queue interface {
	// Publish 投递一条消息；msg.ID 为空时自动生成
	Publish(ctx context.Context, queue string, msg model.Message) error
	// Receive 阻塞直到领取到一条消息或 ctx 结束
	Receive(ctx context.Context, queue string) (Delivery, error)
	Close() error
}

// Delivery 一次投递，处理完成后必须 Ack 或 Nack
type Delivery interface {
	Message() model.Message
	Attempts() int
	Ack(ctx context.Context) error
	// Nack 放回队列；超过最大次数后丢弃到 dead
	Nack(ctx context.Context) error
}

// Options 队列参数
type Options struct {
	Capacity     int           // 内存队列容量
	PollInterval time.Duration // 空队列轮询间隔
	MaxAttempts  int           // 最大投递次数
	Visibility   time.Duration // 表队列：领取后不可见时长，超时视为消费者崩溃
	RetryDelay   time.Duration // Nack 后重新可见的延迟
}

func (o Options) withDefaults() Options {
	if o.Capacity <= 0 {
		o.Capacity = 1024
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 500 * time.Millisecond
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	if o.Visibility <= 0 {
		o.Visibility = 5 * time.Minute
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = 0
	}
	return o
}
