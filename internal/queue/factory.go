package queue

import (
	"fmt"
	"net/url"
	"strings"

	"DestinySync/internal/repository"

	"gorm.io/gorm"
)

// OpenFunc 按 DSN 打开数据库连接（表队列使用）
type OpenFunc func(dsn string) (*gorm.DB, error)

// BuildQueueFromDSN 按 DSN scheme 选择队列实现：memory:// 或 postgres://
func BuildQueueFromDSN(dsn string, opts Options, open OpenFunc) (Queue, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("queue dsn 为空")
	}
	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(parsed.Scheme)) {
	case "memory", "mem", "inmem":
		return NewMemoryQueue(opts), nil
	case "postgres", "postgresql":
		if open == nil {
			return nil, fmt.Errorf("postgres 队列需要数据库连接函数")
		}
		db, err := open(dsn)
		if err != nil {
			return nil, fmt.Errorf("打开队列数据库失败: %w", err)
		}
		closeFn := func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return NewTableQueue(repository.NewQueueRepository(db), opts, closeFn), nil
	default:
		return nil, fmt.Errorf("unsupported queue scheme: %s", parsed.Scheme)
	}
}
