package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"DestinySync/internal/interfaces"
	"DestinySync/internal/model"
	"DestinySync/internal/service"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Pinger 健康检查依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

type SyncHandler struct {
	handler   interfaces.Handler
	publisher interfaces.Publisher
	syncQueue string
	pinger    Pinger
	logger    *logrus.Logger
}

func NewSyncHandler(handler interfaces.Handler, publisher interfaces.Publisher, syncQueue string, pinger Pinger, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		handler:   handler,
		publisher: publisher,
		syncQueue: syncQueue,
		pinger:    pinger,
		logger:    logger,
	}
}

// Register 注册同步接口与 pprof
func (h *SyncHandler) Register(r *gin.Engine) {
	pprof.Register(r)
	r.GET("/healthz", h.Health)
	r.POST("/sync/:task", h.SyncTask)
	r.POST("/queue/:task", h.EnqueueTask)
}

// SyncTask 同步执行一条任务（调试与补数用）
// POST /sync/:task?membership=&platform=&character=&group=  body 为原始载荷
func (h *SyncHandler) SyncTask(c *gin.Context) {
	msg, ok := h.bindMessage(c)
	if !ok {
		return
	}
	success, instances := h.handler.Handle(c.Request.Context(), msg)
	ids := make([]string, 0, len(instances))
	for _, id := range instances {
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	status := http.StatusOK
	if !success {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"ok": success, "instances": ids})
}

// EnqueueTask 投递到同步队列，由 worker 异步处理
// POST /queue/:task
func (h *SyncHandler) EnqueueTask(c *gin.Context) {
	msg, ok := h.bindMessage(c)
	if !ok {
		return
	}
	msg.ID = uuid.NewString()
	if err := h.publisher.Publish(c.Request.Context(), h.syncQueue, msg); err != nil {
		h.logger.WithError(err).WithField("task", msg.Task).Error("投递同步任务失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"id": msg.ID})
}

// Health GET /healthz
func (h *SyncHandler) Health(c *gin.Context) {
	if h.pinger != nil {
		if err := h.pinger.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SyncHandler) bindMessage(c *gin.Context) (model.Message, bool) {
	task, err := service.ParseTask(c.Param("task"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return model.Message{}, false
	}
	body, err := io.ReadAll(c.Request.Body)
	if err == nil && len(body) == 0 {
		err = errors.New("请求体为空")
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return model.Message{}, false
	}
	headers := map[string]string{}
	for _, key := range []string{model.HeaderMembership, model.HeaderPlatform, model.HeaderCharacter, model.HeaderGroup} {
		if v := c.Query(key); v != "" {
			headers[key] = v
		}
	}
	return model.Message{Task: task.String(), Data: body, Headers: headers}, true
}
