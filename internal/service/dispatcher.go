package service

import (
	"context"
	"errors"

	"DestinySync/internal/interfaces"
	"DestinySync/internal/model"
	"DestinySync/internal/repository"

	"github.com/sirupsen/logrus"
)

type handlerFunc func(ctx context.Context, repo repository.SyncRepository, msg model.Message) ([]int64, error)

// Dispatcher 按任务标签路由到对应同步器，并把产生的实例ID交给回投
type Dispatcher struct {
	repo        repository.SyncRepository
	republisher *Republisher
	archiver    interfaces.Archiver
	logger      *logrus.Logger
	handlers    map[Task]handlerFunc
}

// NewDispatcher archiver 可为 nil
func NewDispatcher(repo repository.SyncRepository, sync *Synchronizer, republisher *Republisher,
	archiver interfaces.Archiver, logger *logrus.Logger) *Dispatcher {
	d := &Dispatcher{
		repo:        repo,
		republisher: republisher,
		archiver:    archiver,
		logger:      logger,
	}
	d.handlers = map[Task]handlerFunc{
		TaskMemberProfile:        noIDs(sync.SyncProfile),
		TaskActivityHistory:      sync.SyncActivityHistory,
		TaskActivityStats:        sync.SyncActivityStats,
		TaskInstance:             noIDs(sync.SyncInstance),
		TaskClanInfo:             noIDs(sync.SyncClanInfo),
		TaskClanRoster:           noIDs(sync.SyncClanRoster),
		TaskManifestClass:        manifestHandler(sync.SyncManifestClass),
		TaskManifestActivity:     manifestHandler(sync.SyncManifestActivity),
		TaskManifestActivityType: manifestHandler(sync.SyncManifestActivityType),
		TaskManifestTriumph:      manifestHandler(sync.SyncManifestTriumph),
		TaskManifestSeason:       manifestHandler(sync.SyncManifestSeason),
	}
	return d
}

func noIDs(fn func(context.Context, repository.SyncRepository, model.Message) error) handlerFunc {
	return func(ctx context.Context, repo repository.SyncRepository, msg model.Message) ([]int64, error) {
		return nil, fn(ctx, repo, msg)
	}
}

func manifestHandler(fn func(context.Context, repository.SyncRepository, model.Message) (int, error)) handlerFunc {
	return func(ctx context.Context, repo repository.SyncRepository, msg model.Message) ([]int64, error) {
		_, err := fn(ctx, repo, msg)
		return nil, err
	}
}

// Handle 处理一条消息。未知任务记录日志并返回 false，不产生任何写入；
// 同步器失败但已解析出实例ID时仍然回投，ok 保持 false 交由传输层重试
func (d *Dispatcher) Handle(ctx context.Context, msg model.Message) (bool, []int64) {
	log := d.logger.WithFields(logrus.Fields{"task": msg.Task, "message_id": msg.ID})

	task, err := ParseTask(msg.Task)
	if err != nil {
		log.WithError(err).Warn("忽略未知任务")
		return false, nil
	}
	handler, ok := d.handlers[task]
	if !ok {
		log.Error("任务未注册处理器")
		return false, nil
	}

	if d.archiver != nil {
		if err := d.archiver.Archive(ctx, msg); err != nil {
			log.WithError(err).Warn("原始载荷归档失败")
		}
	}

	var ids []int64
	err = d.repo.Connection(ctx, func(repo repository.SyncRepository) error {
		var herr error
		ids, herr = d.safeCall(ctx, handler, repo, msg)
		return herr
	})
	success := err == nil
	if err != nil {
		entry := log.WithError(err)
		switch {
		case errors.Is(err, ErrDecode):
			entry.Error("载荷解析失败")
		case errors.Is(err, ErrMissingContext):
			entry.Error("消息缺少上下文")
		default:
			entry.Error("同步失败")
		}
	}

	if len(ids) > 0 && d.republisher != nil {
		if _, perr := d.republisher.Publish(ctx, ids); perr != nil {
			log.WithError(perr).Error("实例ID回投失败")
			success = false
		}
	}
	if success {
		log.WithField("instances", len(ids)).Debug("消息处理完成")
	}
	return success, ids
}

// safeCall 同步器 panic 时转为错误返回
func (d *Dispatcher) safeCall(ctx context.Context, h handlerFunc, repo repository.SyncRepository, msg model.Message) (ids []int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("同步器异常退出")
			d.logger.WithField("panic", r).WithField("task", msg.Task).Error("同步器panic")
		}
	}()
	return h(ctx, repo, msg)
}

// Ping 检查存储可用性
func (d *Dispatcher) Ping(ctx context.Context) error {
	return d.repo.Ping(ctx)
}
