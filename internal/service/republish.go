package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"DestinySync/internal/interfaces"
	"DestinySync/internal/model"
	"DestinySync/internal/repository"

	"github.com/sirupsen/logrus"
)

// DefaultRepublishChunk 每条回投消息携带的实例ID上限
const DefaultRepublishChunk = 100

// Republisher 把新发现的实例ID分片投递到实例详情队列；不与历史投递去重，下游按 instance_id 幂等
type Republisher struct {
	publisher interfaces.Publisher
	queue     string
	chunk     int
	logger    *logrus.Logger
}

func NewRepublisher(publisher interfaces.Publisher, queue string, chunk int, logger *logrus.Logger) *Republisher {
	if chunk <= 0 {
		chunk = DefaultRepublishChunk
	}
	return &Republisher{publisher: publisher, queue: queue, chunk: chunk, logger: logger}
}

// Publish 返回成功投递的消息条数；某片失败即停止
func (r *Republisher) Publish(ctx context.Context, ids []int64) (int, error) {
	chunks := repository.Chunk(ids, r.chunk)
	for i, c := range chunks {
		encoded := make([]string, len(c))
		for j, id := range c {
			encoded[j] = strconv.FormatInt(id, 10)
		}
		data, err := json.Marshal(encoded)
		if err != nil {
			return i, err
		}
		msg := model.Message{Task: TaskInstanceDetail, Data: data}
		if err := r.publisher.Publish(ctx, r.queue, msg); err != nil {
			return i, fmt.Errorf("回投第%d/%d片实例ID失败: %w", i+1, len(chunks), err)
		}
	}
	if len(chunks) > 0 {
		r.logger.WithFields(logrus.Fields{
			"queue":     r.queue,
			"instances": len(ids),
			"messages":  len(chunks),
		}).Info("实例ID回投完成")
	}
	return len(chunks), nil
}
