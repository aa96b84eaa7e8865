package listener

import (
	"context"
	"errors"
	"sync"
	"time"

	"DestinySync/internal/interfaces"
	"DestinySync/internal/queue"

	"github.com/sirupsen/logrus"
)

// Consumer 从同步队列领取消息并交给调度器处理：成功 Ack，失败 Nack（重试与 dead 由队列决定）
type Consumer struct {
	queue     queue.Queue
	queueName string
	handler   interfaces.Handler
	workers   int
	backoff   time.Duration
	logger    *logrus.Logger
}

const defaultReceiveBackoff = time.Second

func NewConsumer(q queue.Queue, queueName string, handler interfaces.Handler, workers int, logger *logrus.Logger) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{queue: q, queueName: queueName, handler: handler, workers: workers, backoff: defaultReceiveBackoff, logger: logger}
}

// WithBackoff 设置领取失败后的等待时长
func (c *Consumer) WithBackoff(d time.Duration) *Consumer {
	if d > 0 {
		c.backoff = d
	}
	return c
}

// Run 启动 workers 个消费协程，ctx 取消后等待在途消息处理完毕再返回
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.WithFields(logrus.Fields{"queue": c.queueName, "workers": c.workers}).Info("开始消费同步队列")
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			c.loop(ctx, worker)
		}(i)
	}
	wg.Wait()
	return nil
}

// loop 仅在 ctx 取消或队列关闭时退出
func (c *Consumer) loop(ctx context.Context, worker int) {
	for {
		d, err := c.queue.Receive(ctx, c.queueName)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, queue.ErrClosed) {
				return
			}
			// 领取失败（如连接中断）不退出，等待后重试
			c.logger.WithError(err).WithField("worker", worker).Error("领取消息失败")
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.backoff):
			}
			continue
		}
		c.process(ctx, d)
	}
}

func (c *Consumer) process(ctx context.Context, d queue.Delivery) {
	msg := d.Message()
	log := c.logger.WithFields(logrus.Fields{
		"task":       msg.Task,
		"message_id": msg.ID,
		"attempts":   d.Attempts(),
	})
	// 在途消息不随 ctx 取消中断确认
	ackCtx := context.WithoutCancel(ctx)
	ok, _ := c.handler.Handle(ctx, msg)
	if ok {
		if err := d.Ack(ackCtx); err != nil {
			log.WithError(err).Error("确认消息失败")
		}
		return
	}
	if err := d.Nack(ackCtx); err != nil {
		log.WithError(err).Error("消息放回队列失败")
		return
	}
	log.Warn("消息处理失败，已放回队列")
}
