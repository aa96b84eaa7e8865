package service

import "DestinySync/internal/repository"

// 各实体的自然键与冲突时覆盖的可变列
var (
	memberSpec = repository.UpsertSpec{
		Keys: []string{"membership_id"},
		Columns: []string{"platform", "display_name", "display_name_global",
			"guardian_rank_current", "guardian_rank_lifetime", "last_played_at"},
	}
	characterSpec = repository.UpsertSpec{
		Keys: []string{"membership_id", "character_id"},
		Columns: []string{"platform", "class_hash", "light", "emblem_hash", "emblem_url",
			"emblem_background_url", "duration_played_total", "duration_played_session", "last_played_at"},
	}
	triumphSpec = repository.UpsertSpec{
		Keys:    []string{"membership_id", "hash"},
		Columns: []string{"state", "times_completed"},
	}
	clanSpec = repository.UpsertSpec{
		Keys:    []string{"group_id"},
		Columns: []string{"name", "slug", "motto", "about", "call_sign", "member_count"},
	}
	clanMemberSpec = repository.UpsertSpec{
		Keys:    []string{"membership_id", "group_id"},
		Columns: []string{"platform", "role", "joined_at"},
	}
	instanceSpec = repository.UpsertSpec{
		Keys: []string{"instance_id"},
		Columns: []string{"occurred_at", "starting_phase_index", "started_from_beginning", "activity_hash",
			"director_activity_hash", "mode", "is_private", "completed", "completion_reasons"},
	}
	instanceMemberSpec = repository.UpsertSpec{
		Keys: []string{"membership_id", "character_id", "instance_id"},
		Columns: []string{"platform", "class_hash", "class_name", "emblem_hash", "light_level",
			"clan_name", "clan_tag", "completed", "completion_reason"},
	}
	activitySpec = repository.UpsertSpec{
		Keys: []string{"membership_id", "character_id", "instance_id"},
		Columns: []string{"activity_hash", "director_activity_hash", "mode", "modes",
			"platform_played", "is_private", "occurred_at"},
	}
	activityStatSpec = repository.UpsertSpec{
		Keys:    []string{"membership_id", "character_id", "instance_id", "name"},
		Columns: []string{"value", "display_value"},
	}

	manifestActivitySpec = repository.UpsertSpec{
		Keys: []string{"hash"},
		Columns: []string{"hash_index", "name", "description", "image", "activity_type_hash", "fireteam_min_size",
			"fireteam_max_size", "max_players", "requires_guardian_oath", "is_pvp", "matchmaking"},
	}
	manifestActivityTypeSpec = repository.UpsertSpec{
		Keys:    []string{"hash"},
		Columns: []string{"hash_index", "name", "description", "icon"},
	}
	manifestClassSpec = repository.UpsertSpec{
		Keys:    []string{"hash"},
		Columns: []string{"hash_index", "type", "name"},
	}
	manifestSeasonSpec = repository.UpsertSpec{
		Keys:    []string{"hash"},
		Columns: []string{"hash_index", "name", "number", "pass_hash", "icon", "starts_at", "ends_at"},
	}
	manifestTriumphSpec = repository.UpsertSpec{
		Keys:    []string{"hash"},
		Columns: []string{"hash_index", "name", "description", "icon", "has_title", "title", "gilding"},
	}
)
