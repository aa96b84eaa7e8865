package interfaces

import (
	"context"

	"DestinySync/internal/model"
)

// Publisher 向下游队列投递消息（同步引擎只依赖投递能力）
type Publisher interface {
	Publish(ctx context.Context, queue string, msg model.Message) error
}

// Archiver 原始载荷归档，失败不影响消息处理
type Archiver interface {
	Archive(ctx context.Context, msg model.Message) error
}

// Handler 处理一条入站消息：ok 表示成功，instances 为需要回投的活动实例ID
type Handler interface {
	Handle(ctx context.Context, msg model.Message) (ok bool, instances []int64)
}
