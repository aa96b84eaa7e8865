package model

// Audit 所有同步表共享的审计字段（epoch 秒）。
// updated_at / deleted_at 为 0 表示未设置；软删除只写 deleted_at，不物理删除。
type Audit struct {
	CreatedAt int64 `gorm:"column:created_at;type:bigint;not null;autoCreateTime:false;comment:创建时间"`
	UpdatedAt int64 `gorm:"column:updated_at;type:bigint;not null;autoUpdateTime:false;comment:更新时间"`
	DeletedAt int64 `gorm:"column:deleted_at;type:bigint;not null;comment:软删除时间"`
}

// NewAudit 以给定时间作为 created_at 生成审计字段
func NewAudit(now int64) Audit {
	return Audit{CreatedAt: now}
}

type Member struct {
	ID                   uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	MembershipID         int64  `gorm:"column:membership_id;type:bigint;uniqueIndex:uk_member;not null;comment:账号ID"`
	Platform             int    `gorm:"column:platform;type:integer;not null;comment:平台类型"`
	DisplayName          string `gorm:"column:display_name;type:varchar(255);not null;comment:平台显示名"`
	DisplayNameGlobal    string `gorm:"column:display_name_global;type:varchar(255);not null;comment:全局显示名（含数字后缀）"`
	GuardianRankCurrent  int    `gorm:"column:guardian_rank_current;type:integer;not null;comment:当前守护者等级"`
	GuardianRankLifetime int    `gorm:"column:guardian_rank_lifetime;type:integer;not null;comment:历史最高守护者等级"`
	LastPlayedAt         int64  `gorm:"column:last_played_at;type:bigint;not null;comment:最后游玩时间"`
	Audit
}

type MemberCharacter struct {
	ID                    uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	MembershipID          int64  `gorm:"column:membership_id;type:bigint;uniqueIndex:uk_member_character;not null;comment:账号ID"`
	CharacterID           int64  `gorm:"column:character_id;type:bigint;uniqueIndex:uk_member_character;not null;comment:角色ID"`
	Platform              int    `gorm:"column:platform;type:integer;not null;comment:平台类型"`
	ClassHash             uint32 `gorm:"column:class_hash;type:bigint;not null;comment:职业hash"`
	Light                 int    `gorm:"column:light;type:integer;not null;comment:光等"`
	EmblemHash            uint32 `gorm:"column:emblem_hash;type:bigint;not null;comment:徽章hash"`
	EmblemURL             string `gorm:"column:emblem_url;type:varchar(255);not null"`
	EmblemBackgroundURL   string `gorm:"column:emblem_background_url;type:varchar(255);not null"`
	DurationPlayedTotal   int64  `gorm:"column:duration_played_total;type:bigint;not null;comment:累计游玩分钟"`
	DurationPlayedSession int64  `gorm:"column:duration_played_session;type:bigint;not null;comment:本次会话游玩分钟"`
	LastPlayedAt          int64  `gorm:"column:last_played_at;type:bigint;not null;comment:最后游玩时间"`
	Audit
}

type MemberTriumph struct {
	ID             uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	MembershipID   int64  `gorm:"column:membership_id;type:bigint;uniqueIndex:uk_member_triumph;not null;comment:账号ID"`
	Hash           uint32 `gorm:"column:hash;type:bigint;uniqueIndex:uk_member_triumph;not null;comment:成就hash"`
	State          int    `gorm:"column:state;type:integer;not null;comment:状态位掩码"`
	TimesCompleted int    `gorm:"column:times_completed;type:integer;not null;comment:完成次数"`
	Audit
}

type Clan struct {
	ID          uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	GroupID     int64  `gorm:"column:group_id;type:bigint;uniqueIndex:uk_clan;not null;comment:战队ID"`
	Name        string `gorm:"column:name;type:varchar(255);not null;comment:战队名"`
	Slug        string `gorm:"column:slug;type:varchar(255);index;not null;comment:由名称派生，不保证唯一"`
	Motto       string `gorm:"column:motto;type:text;not null"`
	About       string `gorm:"column:about;type:text;not null"`
	CallSign    string `gorm:"column:call_sign;type:varchar(16);not null;comment:战队标签"`
	MemberCount int    `gorm:"column:member_count;type:integer;not null"`
	Audit
}

// ClanMember 唯一会被物理删除的实体：不在最新名单中的成员直接删除
type ClanMember struct {
	ID           uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	MembershipID int64  `gorm:"column:membership_id;type:bigint;uniqueIndex:uk_clan_member;not null;comment:账号ID"`
	GroupID      int64  `gorm:"column:group_id;type:bigint;uniqueIndex:uk_clan_member;index;not null;comment:战队ID"`
	Platform     int    `gorm:"column:platform;type:integer;not null;comment:平台类型"`
	Role         int    `gorm:"column:role;type:integer;not null;comment:战队角色（memberType）"`
	JoinedAt     int64  `gorm:"column:joined_at;type:bigint;not null;comment:入队时间"`
	Audit
}

type Instance struct {
	ID                   uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	InstanceID           int64  `gorm:"column:instance_id;type:bigint;uniqueIndex:uk_instance;not null;comment:活动实例ID"`
	OccurredAt           int64  `gorm:"column:occurred_at;type:bigint;not null;comment:活动开始时间"`
	StartingPhaseIndex   int    `gorm:"column:starting_phase_index;type:integer;not null"`
	StartedFromBeginning bool   `gorm:"column:started_from_beginning;type:boolean;not null"`
	ActivityHash         uint32 `gorm:"column:activity_hash;type:bigint;not null"`
	DirectorActivityHash uint32 `gorm:"column:director_activity_hash;type:bigint;not null"`
	Mode                 int    `gorm:"column:mode;type:integer;not null"`
	IsPrivate            bool   `gorm:"column:is_private;type:boolean;not null"`
	Completed            bool   `gorm:"column:completed;type:boolean;not null;comment:任一参与者完成即为true"`
	CompletionReasons    string `gorm:"column:completion_reasons;type:varchar(255);not null;comment:去重后的完成原因，逗号分隔"`
	Audit
}

type InstanceMember struct {
	ID               uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	MembershipID     int64  `gorm:"column:membership_id;type:bigint;uniqueIndex:uk_instance_member;not null"`
	CharacterID      int64  `gorm:"column:character_id;type:bigint;uniqueIndex:uk_instance_member;not null"`
	InstanceID       int64  `gorm:"column:instance_id;type:bigint;uniqueIndex:uk_instance_member;index;not null"`
	Platform         int    `gorm:"column:platform;type:integer;not null"`
	ClassHash        uint32 `gorm:"column:class_hash;type:bigint;not null"`
	ClassName        string `gorm:"column:class_name;type:varchar(32);not null"`
	EmblemHash       uint32 `gorm:"column:emblem_hash;type:bigint;not null"`
	LightLevel       int    `gorm:"column:light_level;type:integer;not null"`
	ClanName         string `gorm:"column:clan_name;type:varchar(255);not null;comment:活动当时的战队快照"`
	ClanTag          string `gorm:"column:clan_tag;type:varchar(16);not null"`
	Completed        bool   `gorm:"column:completed;type:boolean;not null"`
	CompletionReason string `gorm:"column:completion_reason;type:varchar(64);not null"`
	Audit
}

type MemberActivity struct {
	ID                   uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	MembershipID         int64  `gorm:"column:membership_id;type:bigint;uniqueIndex:uk_member_activity;not null"`
	CharacterID          int64  `gorm:"column:character_id;type:bigint;uniqueIndex:uk_member_activity;not null"`
	InstanceID           int64  `gorm:"column:instance_id;type:bigint;uniqueIndex:uk_member_activity;index;not null"`
	ActivityHash         uint32 `gorm:"column:activity_hash;type:bigint;not null"`
	DirectorActivityHash uint32 `gorm:"column:director_activity_hash;type:bigint;not null"`
	Mode                 int    `gorm:"column:mode;type:integer;not null"`
	Modes                string `gorm:"column:modes;type:varchar(255);not null;comment:全部模式，逗号分隔"`
	PlatformPlayed       int    `gorm:"column:platform_played;type:integer;not null"`
	IsPrivate            bool   `gorm:"column:is_private;type:boolean;not null"`
	OccurredAt           int64  `gorm:"column:occurred_at;type:bigint;not null"`
	Audit
}

type MemberActivityStat struct {
	ID           uint64  `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	MembershipID int64   `gorm:"column:membership_id;type:bigint;uniqueIndex:uk_member_activity_stat;not null"`
	CharacterID  int64   `gorm:"column:character_id;type:bigint;uniqueIndex:uk_member_activity_stat;not null"`
	InstanceID   int64   `gorm:"column:instance_id;type:bigint;uniqueIndex:uk_member_activity_stat;not null"`
	Name         string  `gorm:"column:name;type:varchar(64);uniqueIndex:uk_member_activity_stat;not null;comment:统计项名称"`
	Value        float64 `gorm:"column:value;type:double precision;not null"`
	DisplayValue string  `gorm:"column:display_value;type:varchar(64);not null"`
	Audit
}

func (Member) TableName() string             { return "members" }
func (MemberCharacter) TableName() string    { return "member_characters" }
func (MemberTriumph) TableName() string      { return "member_triumphs" }
func (Clan) TableName() string               { return "clans" }
func (ClanMember) TableName() string         { return "clan_members" }
func (Instance) TableName() string           { return "instances" }
func (InstanceMember) TableName() string     { return "instance_members" }
func (MemberActivity) TableName() string     { return "member_activities" }
func (MemberActivityStat) TableName() string { return "member_activity_stats" }
