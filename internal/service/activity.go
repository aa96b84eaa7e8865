package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"DestinySync/internal/model"
	"DestinySync/internal/repository"

	"github.com/sirupsen/logrus"
)

// SyncActivityHistory 每个历史条目生成一条 MemberActivity，返回去重后的实例ID（保持首次出现顺序）。
// 写入失败时仍返回已解析的实例ID，由调度器决定是否回投
func (s *Synchronizer) SyncActivityHistory(ctx context.Context, repo repository.SyncRepository, msg model.Message) ([]int64, error) {
	actx, entries, err := s.decodeHistory(msg)
	if err != nil {
		return nil, err
	}

	ids := newIDSet()
	rows := make([]*model.MemberActivity, 0, len(entries))
	for _, e := range entries {
		instanceID := int64(e.ActivityDetails.InstanceID)
		if instanceID == 0 {
			s.logger.WithField("message_id", msg.ID).Warn("历史条目缺少instanceId，跳过")
			continue
		}
		ids.Add(instanceID)
		rows = append(rows, &model.MemberActivity{
			MembershipID:         actx.MembershipID,
			CharacterID:          actx.CharacterID,
			InstanceID:           instanceID,
			ActivityHash:         e.ActivityDetails.ReferenceID,
			DirectorActivityHash: e.ActivityDetails.DirectorActivityHash,
			Mode:                 e.ActivityDetails.Mode,
			Modes:                joinModes(e.ActivityDetails.Modes),
			PlatformPlayed:       platformOf(actx, e.ActivityDetails),
			IsPrivate:            e.ActivityDetails.IsPrivate,
			OccurredAt:           model.ParseTimestamp(e.Period),
			Audit:                s.audit(),
		})
	}

	rows = repository.DedupeBy(rows, func(a *model.MemberActivity) int64 { return a.InstanceID })
	chunks, err := repository.UpsertChunked(ctx, repo, rows, repository.ChunkActivities, activitySpec)
	if err != nil {
		return ids.Slice(), fmt.Errorf("写入活动历史失败: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"membership_id": actx.MembershipID,
		"character_id":  actx.CharacterID,
		"rows":          len(rows),
		"chunks":        chunks,
	}).Debug("活动历史同步完成")
	return ids.Slice(), nil
}

// SyncActivityStats 每个条目的每项统计展开为一行 MemberActivityStat
func (s *Synchronizer) SyncActivityStats(ctx context.Context, repo repository.SyncRepository, msg model.Message) ([]int64, error) {
	actx, entries, err := s.decodeHistory(msg)
	if err != nil {
		return nil, err
	}

	ids := newIDSet()
	var rows []*model.MemberActivityStat
	for _, e := range entries {
		instanceID := int64(e.ActivityDetails.InstanceID)
		if instanceID == 0 {
			s.logger.WithField("message_id", msg.ID).Warn("历史条目缺少instanceId，跳过")
			continue
		}
		ids.Add(instanceID)
		rows = append(rows, s.expandStats(actx, instanceID, e.Values)...)
	}

	type statKey struct {
		instanceID int64
		name       string
	}
	rows = repository.DedupeBy(rows, func(r *model.MemberActivityStat) statKey {
		return statKey{r.InstanceID, r.Name}
	})
	chunks, err := repository.UpsertChunked(ctx, repo, rows, repository.ChunkActivityStats, activityStatSpec)
	if err != nil {
		return ids.Slice(), fmt.Errorf("写入活动统计失败: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"membership_id": actx.MembershipID,
		"character_id":  actx.CharacterID,
		"rows":          len(rows),
		"chunks":        chunks,
	}).Debug("活动统计同步完成")
	return ids.Slice(), nil
}

func (s *Synchronizer) expandStats(actx activityContext, instanceID int64, values map[string]model.HistoricalStat) []*model.MemberActivityStat {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]*model.MemberActivityStat, 0, len(names))
	for _, name := range names {
		v := values[name]
		rows = append(rows, &model.MemberActivityStat{
			MembershipID: actx.MembershipID,
			CharacterID:  actx.CharacterID,
			InstanceID:   instanceID,
			Name:         name,
			Value:        v.Basic.Value,
			DisplayValue: v.Basic.DisplayValue,
			Audit:        s.audit(),
		})
	}
	return rows
}

func (s *Synchronizer) decodeHistory(msg model.Message) (activityContext, []model.HistoryEntry, error) {
	actx, err := parseActivityContext(msg)
	if err != nil {
		return actx, nil, err
	}
	var entries []model.HistoryEntry
	if err := decode(msg.Data, &entries); err != nil {
		return actx, nil, err
	}
	return actx, entries, nil
}

func platformOf(actx activityContext, d model.ActivityDetails) int {
	if actx.Platform != 0 {
		return actx.Platform
	}
	return d.MembershipType
}

func joinModes(modes []int) string {
	parts := make([]string, len(modes))
	for i, m := range modes {
		parts[i] = strconv.Itoa(m)
	}
	return strings.Join(parts, ",")
}
