package repository

import (
	"context"
	"time"

	"DestinySync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueueRepository 表队列（sync_queue_messages）持久化
type QueueRepository interface {
	Enqueue(ctx context.Context, msg *model.QueueMessage) error
	// Claim 锁定一条到期消息并标记为 processing，visibility 内不会被其他消费者领取；队列为空返回 nil, nil。
	// 可见期超时且已投递 maxAttempts 次的消息直接标记为 dead
	Claim(ctx context.Context, queue string, visibility time.Duration, maxAttempts int) (*model.QueueMessage, error)
	Delete(ctx context.Context, id string) error
	// Release 放回队列（pending，availableAt 后可见）或标记为 dead
	Release(ctx context.Context, id string, dead bool, availableAt time.Time) error
	Depth(ctx context.Context, queue string) (int64, error)
}

type queueRepository struct {
	db *gorm.DB
}

func NewQueueRepository(db *gorm.DB) QueueRepository {
	return &queueRepository{db: db}
}

func (r *queueRepository) Enqueue(ctx context.Context, msg *model.QueueMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *queueRepository) Claim(ctx context.Context, queue string, visibility time.Duration, maxAttempts int) (*model.QueueMessage, error) {
	var claimed *model.QueueMessage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for {
			var rows []*model.QueueMessage
			// processing 且已过可见期的消息视为消费者崩溃遗留，重新投递
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
				Where("queue = ? AND status IN ? AND available_at <= ?", queue,
					[]string{model.QueueStatusPending, model.QueueStatusProcessing}, now).
				Order("available_at ASC").
				Limit(1).
				Find(&rows).Error; err != nil {
				return err
			}
			if len(rows) == 0 {
				return nil
			}
			m := rows[0]
			if m.Status == model.QueueStatusProcessing && maxAttempts > 0 && m.Attempts >= maxAttempts {
				if err := tx.Model(&model.QueueMessage{}).Where("id = ?", m.ID).
					Update("status", model.QueueStatusDead).Error; err != nil {
					return err
				}
				continue
			}
			m.Status = model.QueueStatusProcessing
			m.Attempts++
			m.AvailableAt = now.Add(visibility)
			if err := tx.Model(&model.QueueMessage{}).Where("id = ?", m.ID).Updates(map[string]interface{}{
				"status":       m.Status,
				"attempts":     m.Attempts,
				"available_at": m.AvailableAt,
			}).Error; err != nil {
				return err
			}
			claimed = m
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *queueRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.QueueMessage{}).Error
}

func (r *queueRepository) Release(ctx context.Context, id string, dead bool, availableAt time.Time) error {
	status := model.QueueStatusPending
	if dead {
		status = model.QueueStatusDead
	}
	return r.db.WithContext(ctx).Model(&model.QueueMessage{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       status,
		"available_at": availableAt.UTC(),
	}).Error
}

func (r *queueRepository) Depth(ctx context.Context, queue string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.QueueMessage{}).
		Where("queue = ? AND status <> ?", queue, model.QueueStatusDead).
		Count(&n).Error
	return n, err
}
