package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"DestinySync/internal/model"
	"DestinySync/internal/repository"
)

// syncManifest 解析按 hash 索引的定义表，整体按 hash upsert；表中不存在的 hash 保持原样
func syncManifest[D any, R any](ctx context.Context, repo repository.SyncRepository, data []byte,
	build func(key string, def D) R, hash func(R) uint32, spec repository.UpsertSpec) (int, error) {
	var defs map[string]D
	if err := decode(data, &defs); err != nil {
		return 0, err
	}
	keys := make([]string, 0, len(defs))
	for k := range defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]R, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, build(k, defs[k]))
	}
	rows = repository.DedupeBy(rows, hash)
	if _, err := repository.UpsertChunked(ctx, repo, rows, repository.ChunkManifest, spec); err != nil {
		return 0, fmt.Errorf("写入参考数据失败: %w", err)
	}
	return len(rows), nil
}

// defHash 定义体内的 hash 为 0 时退回 map 的 key
func defHash(key string, h uint32) uint32 {
	if h != 0 {
		return h
	}
	v, err := strconv.ParseUint(key, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(v)
}

func (s *Synchronizer) SyncManifestActivity(ctx context.Context, repo repository.SyncRepository, msg model.Message) (int, error) {
	return syncManifest(ctx, repo, msg.Data, func(k string, d model.ActivityDefinition) *model.ManifestActivity {
		return &model.ManifestActivity{
			Hash:                 defHash(k, d.Hash),
			HashIndex:            d.Index,
			Name:                 d.DisplayProperties.Name,
			Description:          d.DisplayProperties.Description,
			Image:                d.PgcrImage,
			ActivityTypeHash:     d.ActivityTypeHash,
			FireteamMinSize:      d.Matchmaking.MinParty,
			FireteamMaxSize:      d.Matchmaking.MaxParty,
			MaxPlayers:           d.Matchmaking.MaxPlayers,
			RequiresGuardianOath: d.Matchmaking.RequiresGuardianOath,
			IsPvP:                d.IsPvP,
			Matchmaking:          d.Matchmaking.IsMatchmade,
			Audit:                s.audit(),
		}
	}, func(r *model.ManifestActivity) uint32 { return r.Hash }, manifestActivitySpec)
}

func (s *Synchronizer) SyncManifestActivityType(ctx context.Context, repo repository.SyncRepository, msg model.Message) (int, error) {
	return syncManifest(ctx, repo, msg.Data, func(k string, d model.ActivityTypeDefinition) *model.ManifestActivityType {
		return &model.ManifestActivityType{
			Hash:        defHash(k, d.Hash),
			HashIndex:   d.Index,
			Name:        d.DisplayProperties.Name,
			Description: d.DisplayProperties.Description,
			Icon:        d.DisplayProperties.Icon,
			Audit:       s.audit(),
		}
	}, func(r *model.ManifestActivityType) uint32 { return r.Hash }, manifestActivityTypeSpec)
}

func (s *Synchronizer) SyncManifestClass(ctx context.Context, repo repository.SyncRepository, msg model.Message) (int, error) {
	return syncManifest(ctx, repo, msg.Data, func(k string, d model.ClassDefinition) *model.ManifestClass {
		return &model.ManifestClass{
			Hash:      defHash(k, d.Hash),
			HashIndex: d.Index,
			Type:      d.ClassType,
			Name:      d.DisplayProperties.Name,
			Audit:     s.audit(),
		}
	}, func(r *model.ManifestClass) uint32 { return r.Hash }, manifestClassSpec)
}

func (s *Synchronizer) SyncManifestSeason(ctx context.Context, repo repository.SyncRepository, msg model.Message) (int, error) {
	return syncManifest(ctx, repo, msg.Data, func(k string, d model.SeasonDefinition) *model.ManifestSeason {
		return &model.ManifestSeason{
			Hash:      defHash(k, d.Hash),
			HashIndex: d.Index,
			Name:      d.DisplayProperties.Name,
			Number:    d.SeasonNumber,
			PassHash:  d.SeasonPassHash,
			Icon:      d.DisplayProperties.Icon,
			StartsAt:  model.ParseTimestamp(d.StartDate),
			EndsAt:    model.ParseTimestamp(d.EndDate),
			Audit:     s.audit(),
		}
	}, func(r *model.ManifestSeason) uint32 { return r.Hash }, manifestSeasonSpec)
}

func (s *Synchronizer) SyncManifestTriumph(ctx context.Context, repo repository.SyncRepository, msg model.Message) (int, error) {
	return syncManifest(ctx, repo, msg.Data, func(k string, d model.RecordDefinition) *model.ManifestTriumph {
		row := &model.ManifestTriumph{
			Hash:        defHash(k, d.Hash),
			HashIndex:   d.Index,
			Name:        d.DisplayProperties.Name,
			Description: d.DisplayProperties.Description,
			Icon:        d.DisplayProperties.Icon,
			HasTitle:    d.TitleInfo.HasTitle,
			Gilding:     d.ForTitleGilding,
			Audit:       s.audit(),
		}
		if d.TitleInfo.HasTitle {
			row.Title = titleOf(d.TitleInfo.TitlesByGender)
		}
		return row
	}, func(r *model.ManifestTriumph) uint32 { return r.Hash }, manifestTriumphSpec)
}

// titleOf 头衔按性别区分，优先 Male，其余取字典序第一个
func titleOf(byGender map[string]string) string {
	if t, ok := byGender["Male"]; ok {
		return t
	}
	keys := make([]string, 0, len(byGender))
	for k := range byGender {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return byGender[keys[0]]
}
