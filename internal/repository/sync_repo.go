package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"DestinySync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertSpec 合并写入规则：Keys 为自然键列，Columns 为冲突时覆盖的可变列。
// updated_at 总是刷新，created_at / deleted_at 不在 Columns 中时保持不变。
type UpsertSpec struct {
	Keys    []string
	Columns []string
}

// SyncRepository 同步引擎使用的存储能力接口
type SyncRepository interface {
	// UpsertRange 插入不存在的自然键，已存在的按 spec.Columns 覆盖；records 为模型切片
	UpsertRange(ctx context.Context, records any, spec UpsertSpec) error
	// ListClanMembers 读取某战队当前已存储的全部成员
	ListClanMembers(ctx context.Context, groupID int64) ([]*model.ClanMember, error)
	// DeleteClanMembers 按行ID物理删除战队成员
	DeleteClanMembers(ctx context.Context, ids []uint64) error
	// Connection 为一次同步调用独占一个连接，fn 返回后释放（含出错路径）
	Connection(ctx context.Context, fn func(repo SyncRepository) error) error
	// Ping 检查数据库可用性
	Ping(ctx context.Context) error
}

type syncRepository struct {
	db  *gorm.DB
	now func() time.Time
	// 独占连接上的语句串行执行，单个连接不支持并发查询
	mu *sync.Mutex
}

func NewSyncRepository(db *gorm.DB) SyncRepository {
	return &syncRepository{db: db, now: time.Now}
}

func (r *syncRepository) lock() func() {
	if r.mu == nil {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *syncRepository) UpsertRange(ctx context.Context, records any, spec UpsertSpec) error {
	if len(spec.Keys) == 0 {
		return errors.New("upsert 缺少自然键")
	}
	defer r.lock()()
	keys := make([]clause.Column, 0, len(spec.Keys))
	for _, k := range spec.Keys {
		keys = append(keys, clause.Column{Name: k})
	}
	updates := clause.AssignmentColumns(spec.Columns)
	updates = append(updates, clause.Assignment{
		Column: clause.Column{Name: "updated_at"},
		Value:  r.now().Unix(),
	})

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   keys,
		DoUpdates: updates,
	}).Create(records).Error; err != nil {
		return fmt.Errorf("upsert失败: %w", err)
	}
	return nil
}

func (r *syncRepository) ListClanMembers(ctx context.Context, groupID int64) ([]*model.ClanMember, error) {
	defer r.lock()()
	var members []*model.ClanMember
	if err := r.db.WithContext(ctx).Where("group_id = ?", groupID).Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *syncRepository) DeleteClanMembers(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	defer r.lock()()
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.ClanMember{}).Error
}

func (r *syncRepository) Connection(ctx context.Context, fn func(repo SyncRepository) error) error {
	return r.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		return fn(&syncRepository{db: tx, now: r.now, mu: &sync.Mutex{}})
	})
}

func (r *syncRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
