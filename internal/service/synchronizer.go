package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"DestinySync/internal/model"

	"github.com/sirupsen/logrus"
)

// Synchronizer 将各类载荷转换为实体记录并合并写入。
// 所有方法只通过传入的 repo 访问存储，repo 由调度器按调用独占连接
type Synchronizer struct {
	logger               *logrus.Logger
	characterConcurrency int
	now                  func() time.Time
}

func NewSynchronizer(logger *logrus.Logger, characterConcurrency int) *Synchronizer {
	if characterConcurrency <= 0 {
		characterConcurrency = 1
	}
	return &Synchronizer{
		logger:               logger,
		characterConcurrency: characterConcurrency,
		now:                  time.Now,
	}
}

func (s *Synchronizer) audit() model.Audit {
	return model.NewAudit(s.now().Unix())
}

func decode(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: 载荷为空", ErrDecode)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// activityContext 活动历史/统计消息头中的身份上下文
type activityContext struct {
	MembershipID int64
	CharacterID  int64
	Platform     int // 0 表示未提供，按条目的 membershipType 回填
}

// parseActivityContext membership / character 缺失或无法解析时直接失败，避免写入键为 0 的记录
func parseActivityContext(msg model.Message) (activityContext, error) {
	var ctx activityContext
	membership, err := requiredInt64Header(msg, model.HeaderMembership)
	if err != nil {
		return ctx, err
	}
	character, err := requiredInt64Header(msg, model.HeaderCharacter)
	if err != nil {
		return ctx, err
	}
	ctx.MembershipID = membership
	ctx.CharacterID = character
	if p := strings.TrimSpace(msg.Header(model.HeaderPlatform)); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			ctx.Platform = v
		}
	}
	return ctx, nil
}

func requiredInt64Header(msg model.Message, key string) (int64, error) {
	raw := strings.TrimSpace(msg.Header(key))
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissingContext, key)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrMissingContext, key, raw)
	}
	return v, nil
}

// optionalInt64Header 解析失败返回 0
func optionalInt64Header(msg model.Message, key string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(msg.Header(key)), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// idSet 保序去重的实例ID集合，只在单次调用内使用
type idSet struct {
	seen map[int64]struct{}
	ids  []int64
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[int64]struct{})}
}

func (s *idSet) Add(id int64) {
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
}

func (s *idSet) Slice() []int64 { return s.ids }
