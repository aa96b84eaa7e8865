package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"DestinySync/internal/model"
	"DestinySync/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	statCompleted        = "completed"
	statCompletionReason = "completionReason"
	completedYes         = "Yes"
)

// instanceAggregate 参与者维度的汇总，只在一次调用内累积
type instanceAggregate struct {
	completed bool
	reasons   map[string]struct{}
}

func (a *instanceAggregate) add(completed bool, reason string) {
	a.completed = a.completed || completed
	if reason != "" {
		a.reasons[reason] = struct{}{}
	}
}

// joinedReasons 去重后按字典序逗号拼接
func (a *instanceAggregate) joinedReasons() string {
	out := make([]string, 0, len(a.reasons))
	for r := range a.reasons {
		out = append(out, r)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

// SyncInstance 处理战后报告：先写 Instance（completed 为参与者 OR，completion_reasons 为去重并集），
// 再分片写入全部参与者。实例本身是回投链路的终点，不产生新的实例ID
func (s *Synchronizer) SyncInstance(ctx context.Context, repo repository.SyncRepository, msg model.Message) error {
	var report model.CarnageReport
	if err := decode(msg.Data, &report); err != nil {
		return err
	}
	instanceID := int64(report.ActivityDetails.InstanceID)
	if instanceID == 0 {
		return fmt.Errorf("%w: activityDetails.instanceId", ErrDecode)
	}

	agg := &instanceAggregate{reasons: make(map[string]struct{})}
	members := make([]*model.InstanceMember, 0, len(report.Entries))
	for _, e := range report.Entries {
		completed := false
		if st, ok := e.Values[statCompleted]; ok {
			completed = st.Basic.DisplayValue == completedYes
		}
		reason := ""
		if st, ok := e.Values[statCompletionReason]; ok {
			reason = st.Basic.DisplayValue
		}
		agg.add(completed, reason)

		membershipID := int64(e.Player.DestinyUserInfo.MembershipID)
		characterID := int64(e.CharacterID)
		if membershipID == 0 || characterID == 0 {
			s.logger.WithField("instance_id", instanceID).Warn("参与者缺少membershipId/characterId，跳过")
			continue
		}
		members = append(members, &model.InstanceMember{
			MembershipID:     membershipID,
			CharacterID:      characterID,
			InstanceID:       instanceID,
			Platform:         e.Player.DestinyUserInfo.MembershipType,
			ClassHash:        e.Player.ClassHash,
			ClassName:        e.Player.CharacterClass,
			EmblemHash:       e.Player.EmblemHash,
			LightLevel:       e.Player.LightLevel,
			ClanName:         e.Player.ClanName,
			ClanTag:          e.Player.ClanTag,
			Completed:        completed,
			CompletionReason: reason,
			Audit:            s.audit(),
		})
	}

	d := report.ActivityDetails
	instance := &model.Instance{
		InstanceID:           instanceID,
		OccurredAt:           model.ParseTimestamp(report.Period),
		StartingPhaseIndex:   report.StartingPhaseIndex,
		StartedFromBeginning: report.ActivityWasStartedFromBeginning,
		ActivityHash:         d.ReferenceID,
		DirectorActivityHash: d.DirectorActivityHash,
		Mode:                 d.Mode,
		IsPrivate:            d.IsPrivate,
		Completed:            agg.completed,
		CompletionReasons:    agg.joinedReasons(),
		Audit:                s.audit(),
	}
	if err := repo.UpsertRange(ctx, []*model.Instance{instance}, instanceSpec); err != nil {
		return fmt.Errorf("写入实例%d失败: %w", instanceID, err)
	}

	type memberKey struct{ membershipID, characterID int64 }
	members = repository.DedupeBy(members, func(m *model.InstanceMember) memberKey {
		return memberKey{m.MembershipID, m.CharacterID}
	})
	chunks, err := repository.UpsertChunked(ctx, repo, members, repository.ChunkInstanceMembers, instanceMemberSpec)
	if err != nil {
		return fmt.Errorf("写入实例%d参与者失败: %w", instanceID, err)
	}
	s.logger.WithFields(logrus.Fields{
		"instance_id": instanceID,
		"completed":   instance.Completed,
		"rows":        len(members),
		"chunks":      chunks,
	}).Debug("战后报告同步完成")
	return nil
}
