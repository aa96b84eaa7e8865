package cli

import (
	"context"
	"fmt"
	"os"

	"DestinySync/internal/archive"
	"DestinySync/internal/config"
	"DestinySync/internal/database"
	"DestinySync/internal/interfaces"
	"DestinySync/internal/queue"
	"DestinySync/internal/repository"
	"DestinySync/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App 装配好的运行时组件
type App struct {
	Config     *config.Config
	Logger     *logrus.Logger
	DB         *gorm.DB
	Queue      queue.Queue
	Dispatcher *service.Dispatcher
}

func loadConfig(opts *RootOptions) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfigFrom(opts.ConfigDir)
	if err != nil {
		return nil, nil, err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	return cfg, NewLogger(cfg.Log, os.Stderr), nil
}

func openDatabase(cfg *config.Config, logger *logrus.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		logger.Info("数据库表结构检查完成")
	}
	return db, nil
}

// newApp 连接数据库、队列、归档并创建调度器
func newApp(ctx context.Context, opts *RootOptions) (*App, error) {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	db, err := openDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	q, err := queue.BuildQueueFromDSN(cfg.Queue.DSN, queueOptions(cfg.Queue), func(dsn string) (*gorm.DB, error) {
		if dsn == cfg.Database.DSN {
			return db, nil
		}
		dbCfg := cfg.Database
		dbCfg.DSN = dsn
		return database.Open(dbCfg, logger)
	})
	if err != nil {
		return nil, fmt.Errorf("创建消息队列失败: %w", err)
	}

	archiver, err := newArchiver(ctx, cfg.Archive, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		DB:         db,
		Queue:      q,
		Dispatcher: NewDispatcher(db, q, archiver, cfg, logger),
	}, nil
}

// NewDispatcher 基于给定数据库与投递目标装配同步引擎
func NewDispatcher(db *gorm.DB, publisher interfaces.Publisher, archiver interfaces.Archiver, cfg *config.Config, logger *logrus.Logger) *service.Dispatcher {
	repo := repository.NewSyncRepository(db)
	sync := service.NewSynchronizer(logger, cfg.Sync.CharacterConcurrency)
	republisher := service.NewRepublisher(publisher, cfg.Queue.InstanceQueue, cfg.Sync.RepublishChunk, logger)
	return service.NewDispatcher(repo, sync, republisher, archiver, logger)
}

func newArchiver(ctx context.Context, cfg config.ArchiveConfig, logger *logrus.Logger) (interfaces.Archiver, error) {
	if !cfg.Enabled {
		return archive.Noop{}, nil
	}
	store, err := archive.NewMinioStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("连接归档存储失败: %w", err)
	}
	logger.WithField("bucket", cfg.Bucket).Info("原始消息归档已启用")
	return archive.New(store), nil
}

func queueOptions(cfg config.QueueConfig) queue.Options {
	return queue.Options{
		Capacity:     cfg.Capacity,
		PollInterval: cfg.PollInterval,
		MaxAttempts:  cfg.MaxAttempts,
		Visibility:   cfg.Visibility,
		RetryDelay:   cfg.RetryDelay,
	}
}

func (a *App) Close() {
	if err := a.Queue.Close(); err != nil {
		a.Logger.WithError(err).Warn("关闭队列失败")
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
