package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// 消息头约定：载荷本身不携带身份信息的任务，通过消息头补充上下文
const (
	HeaderMembership = "membership"
	HeaderPlatform   = "platform"
	HeaderCharacter  = "character"
	HeaderGroup      = "group"
)

// Message 队列消息：任务标签 + 原始载荷 + 上下文消息头
type Message struct {
	ID      string            `json:"id"`
	Task    string            `json:"task"`
	Data    json.RawMessage   `json:"data"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Header 读取消息头，不存在时返回空串
func (m Message) Header(key string) string {
	if m.Headers == nil {
		return ""
	}
	return m.Headers[key]
}

// 队列消息状态
const (
	QueueStatusPending    = "pending"
	QueueStatusProcessing = "processing"
	QueueStatusDead       = "dead"
)

// QueueMessage 基于数据库表的队列（postgres://）存储结构
type QueueMessage struct {
	ID          string            `gorm:"column:id;type:varchar(36);primaryKey;comment:消息UUID"`
	Queue       string            `gorm:"column:queue;type:varchar(64);not null;index:idx_queue_ready,priority:1;comment:队列名"`
	Task        string            `gorm:"column:task;type:varchar(64);not null"`
	Payload     datatypes.JSON    `gorm:"column:payload;not null;comment:原始载荷"`
	Headers     datatypes.JSONMap `gorm:"column:headers;comment:上下文消息头"`
	Status      string            `gorm:"column:status;type:varchar(16);not null;index:idx_queue_ready,priority:2"`
	Attempts    int               `gorm:"column:attempts;type:integer;not null;default:0"`
	AvailableAt time.Time         `gorm:"column:available_at;not null;index:idx_queue_ready,priority:3"`
	CreatedAt   time.Time         `gorm:"column:created_at;not null"`
}

func (QueueMessage) TableName() string { return "sync_queue_messages" }
