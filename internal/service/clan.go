package service

import (
	"context"
	"fmt"
	"strings"

	"DestinySync/internal/model"
	"DestinySync/internal/repository"

	"github.com/sirupsen/logrus"
)

var slugReplacer = strings.NewReplacer(
	" ", "-",
	"%", "-",
	"#", "-",
	"(", "-",
	")", "-",
	"[", "-",
	"]", "-",
	"'", "-",
	`"`, "-",
)

// Slug 由战队名派生：小写、去首尾空白，特定字符逐个替换为 '-'，不合并连续分隔符。
// 不同名称可能得到相同 slug，slug 列不做唯一约束
func Slug(name string) string {
	return slugReplacer.Replace(strings.TrimSpace(strings.ToLower(name)))
}

func (s *Synchronizer) SyncClanInfo(ctx context.Context, repo repository.SyncRepository, msg model.Message) error {
	var resp model.GroupResponse
	if err := decode(msg.Data, &resp); err != nil {
		return err
	}
	d := resp.Detail
	groupID := int64(d.GroupID)
	if groupID == 0 {
		groupID = optionalInt64Header(msg, model.HeaderGroup)
	}
	if groupID == 0 {
		return fmt.Errorf("%w: groupId", ErrMissingContext)
	}
	clan := &model.Clan{
		GroupID:     groupID,
		Name:        d.Name,
		Slug:        Slug(d.Name),
		Motto:       d.Motto,
		About:       d.About,
		CallSign:    d.ClanInfo.ClanCallsign,
		MemberCount: d.MemberCount,
		Audit:       s.audit(),
	}
	if err := repo.UpsertRange(ctx, []*model.Clan{clan}, clanSpec); err != nil {
		return fmt.Errorf("写入战队%d失败: %w", groupID, err)
	}
	return nil
}

type clanMemberKey struct {
	membershipID int64
	groupID      int64
}

// SyncClanRoster 以最新名单为准对账：名单内成员 upsert，不在名单内的已存储成员物理删除。
// 显式的空名单（"results":[]）会删除该战队全部成员。
// upsert 先于删除提交，中途失败只会留下多余成员，下次同步自动修正
func (s *Synchronizer) SyncClanRoster(ctx context.Context, repo repository.SyncRepository, msg model.Message) error {
	var resp model.GroupMemberResponse
	if err := decode(msg.Data, &resp); err != nil {
		return err
	}
	// 缺少 results 时不能当作空名单处理，否则会删除整个战队
	if resp.Results == nil {
		return fmt.Errorf("%w: 战队名单缺少 results", ErrDecode)
	}
	results := *resp.Results
	groupID := optionalInt64Header(msg, model.HeaderGroup)
	if groupID == 0 && len(results) > 0 {
		groupID = int64(results[0].GroupID)
	}
	if groupID == 0 {
		return fmt.Errorf("%w: group", ErrMissingContext)
	}

	stored, err := repo.ListClanMembers(ctx, groupID)
	if err != nil {
		return fmt.Errorf("读取战队%d成员失败: %w", groupID, err)
	}
	existing := make(map[clanMemberKey]uint64, len(stored))
	for _, m := range stored {
		existing[clanMemberKey{m.MembershipID, m.GroupID}] = m.ID
	}

	rows := make([]*model.ClanMember, 0, len(results))
	for _, r := range results {
		membershipID := int64(r.DestinyUserInfo.MembershipID)
		if membershipID == 0 {
			continue
		}
		// 置 0 表示保留
		existing[clanMemberKey{membershipID, groupID}] = 0
		rows = append(rows, &model.ClanMember{
			MembershipID: membershipID,
			GroupID:      groupID,
			Platform:     r.DestinyUserInfo.MembershipType,
			Role:         r.MemberType,
			JoinedAt:     model.ParseTimestamp(r.JoinDate),
			Audit:        s.audit(),
		})
	}
	var stale []uint64
	for _, id := range existing {
		if id != 0 {
			stale = append(stale, id)
		}
	}

	rows = repository.DedupeBy(rows, func(m *model.ClanMember) int64 { return m.MembershipID })
	if _, err := repository.UpsertChunked(ctx, repo, rows, repository.ChunkClanMembers, clanMemberSpec); err != nil {
		return fmt.Errorf("写入战队%d成员失败: %w", groupID, err)
	}
	if err := repo.DeleteClanMembers(ctx, stale); err != nil {
		return fmt.Errorf("删除战队%d离队成员失败: %w", groupID, err)
	}
	s.logger.WithFields(logrus.Fields{
		"group_id": groupID,
		"rows":     len(rows),
		"removed":  len(stale),
	}).Info("战队名单对账完成")
	return nil
}
