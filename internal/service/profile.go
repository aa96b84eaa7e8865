package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"DestinySync/internal/model"
	"DestinySync/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// SyncProfile 账号、角色、成就三个组件互不依赖，并发处理；
// 任一组件失败不会中断其余组件，全部结束后合并返回错误
func (s *Synchronizer) SyncProfile(ctx context.Context, repo repository.SyncRepository, msg model.Message) error {
	var resp model.ProfileResponse
	if err := decode(msg.Data, &resp); err != nil {
		return err
	}

	membershipID := optionalInt64Header(msg, model.HeaderMembership)
	if resp.Profile != nil && resp.Profile.Data != nil && resp.Profile.Data.UserInfo.MembershipID != 0 {
		membershipID = int64(resp.Profile.Data.UserInfo.MembershipID)
	}

	var units []func() error
	if resp.Profile != nil && resp.Profile.Data != nil {
		units = append(units, func() error { return s.syncMember(ctx, repo, resp.Profile) })
	}
	if resp.Characters != nil && len(resp.Characters.Data) > 0 {
		units = append(units, func() error { return s.syncCharacters(ctx, repo, resp.Characters) })
	}
	if resp.ProfileRecords != nil && resp.ProfileRecords.Data != nil {
		units = append(units, func() error { return s.syncTriumphs(ctx, repo, membershipID, resp.ProfileRecords) })
	}
	if len(units) == 0 {
		s.logger.WithField("message_id", msg.ID).Warn("账号资料载荷不含任何组件")
		return nil
	}

	errs := make([]error, len(units))
	var g errgroup.Group
	for i, unit := range units {
		g.Go(func() error {
			errs[i] = unit()
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (s *Synchronizer) syncMember(ctx context.Context, repo repository.SyncRepository, p *model.ProfileComponent) error {
	d := p.Data
	if d.UserInfo.MembershipID == 0 {
		return fmt.Errorf("%w: profile.userInfo.membershipId", ErrMissingContext)
	}
	member := &model.Member{
		MembershipID:         int64(d.UserInfo.MembershipID),
		Platform:             d.UserInfo.MembershipType,
		DisplayName:          d.UserInfo.DisplayName,
		DisplayNameGlobal:    globalDisplayName(d.UserInfo),
		GuardianRankCurrent:  d.CurrentGuardianRank,
		GuardianRankLifetime: d.LifetimeHighestGuardianRank,
		LastPlayedAt:         model.ParseTimestamp(d.DateLastPlayed),
		Audit:                s.audit(),
	}
	if err := repo.UpsertRange(ctx, []*model.Member{member}, memberSpec); err != nil {
		return fmt.Errorf("写入账号%d失败: %w", member.MembershipID, err)
	}
	return nil
}

// globalDisplayName 形如 Name#0042；没有全局名时退回平台显示名
func globalDisplayName(u model.UserInfo) string {
	if u.BungieGlobalDisplayName == "" {
		return u.DisplayName
	}
	return fmt.Sprintf("%s#%04d", u.BungieGlobalDisplayName, u.BungieGlobalDisplayNameCode)
}

// syncCharacters 角色之间键互不相交，按 characterConcurrency 限流并发写入
func (s *Synchronizer) syncCharacters(ctx context.Context, repo repository.SyncRepository, c *model.CharactersComponent) error {
	keys := make([]string, 0, len(c.Data))
	for k := range c.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	errs := make([]error, len(keys))
	var g errgroup.Group
	g.SetLimit(s.characterConcurrency)
	for i, key := range keys {
		ch := c.Data[key]
		g.Go(func() error {
			errs[i] = s.syncCharacter(ctx, repo, key, ch)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (s *Synchronizer) syncCharacter(ctx context.Context, repo repository.SyncRepository, key string, ch model.Character) error {
	characterID := int64(ch.CharacterID)
	if characterID == 0 {
		if v, err := strconv.ParseInt(key, 10, 64); err == nil {
			characterID = v
		}
	}
	if ch.MembershipID == 0 || characterID == 0 {
		return fmt.Errorf("%w: 角色%s缺少membershipId/characterId", ErrMissingContext, key)
	}
	row := &model.MemberCharacter{
		MembershipID:          int64(ch.MembershipID),
		CharacterID:           characterID,
		Platform:              ch.MembershipType,
		ClassHash:             ch.ClassHash,
		Light:                 ch.Light,
		EmblemHash:            ch.EmblemHash,
		EmblemURL:             ch.EmblemPath,
		EmblemBackgroundURL:   ch.EmblemBackgroundPath,
		DurationPlayedTotal:   int64(ch.MinutesPlayedTotal),
		DurationPlayedSession: int64(ch.MinutesPlayedThisSession),
		LastPlayedAt:          model.ParseTimestamp(ch.DateLastPlayed),
		Audit:                 s.audit(),
	}
	if err := repo.UpsertRange(ctx, []*model.MemberCharacter{row}, characterSpec); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"membership_id": row.MembershipID,
			"character_id":  row.CharacterID,
		}).Error("写入角色失败")
		return fmt.Errorf("写入角色%d失败: %w", characterID, err)
	}
	return nil
}

// syncTriumphs 成就hash以字符串下发，无法解析为 uint32 的按 0 处理（同一批内会互相覆盖）
func (s *Synchronizer) syncTriumphs(ctx context.Context, repo repository.SyncRepository, membershipID int64, r *model.ProfileRecordsComponent) error {
	if membershipID == 0 {
		return fmt.Errorf("%w: 成就缺少membershipId", ErrMissingContext)
	}
	keys := make([]string, 0, len(r.Data.Records))
	for k := range r.Data.Records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]*model.MemberTriumph, 0, len(keys))
	for _, k := range keys {
		st := r.Data.Records[k]
		rows = append(rows, &model.MemberTriumph{
			MembershipID:   membershipID,
			Hash:           parseHash(k),
			State:          st.State,
			TimesCompleted: st.CompletedCount,
			Audit:          s.audit(),
		})
	}
	rows = repository.DedupeBy(rows, func(t *model.MemberTriumph) uint32 { return t.Hash })
	chunks, err := repository.UpsertChunked(ctx, repo, rows, repository.ChunkTriumphs, triumphSpec)
	if err != nil {
		return fmt.Errorf("写入成就失败: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"membership_id": membershipID,
		"rows":          len(rows),
		"chunks":        chunks,
	}).Debug("成就同步完成")
	return nil
}

func parseHash(s string) uint32 {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}
