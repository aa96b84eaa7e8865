package model

// ========== 参考数据（manifest）表：按 hash 整体刷新，不删除 ==========

type ManifestActivity struct {
	ID                   uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Hash                 uint32 `gorm:"column:hash;type:bigint;uniqueIndex:uk_manifest_activity;not null"`
	HashIndex            int    `gorm:"column:hash_index;type:integer;not null"`
	Name                 string `gorm:"column:name;type:varchar(255);not null"`
	Description          string `gorm:"column:description;type:text;not null"`
	Image                string `gorm:"column:image;type:varchar(255);not null"`
	ActivityTypeHash     uint32 `gorm:"column:activity_type_hash;type:bigint;not null"`
	FireteamMinSize      int    `gorm:"column:fireteam_min_size;type:integer;not null"`
	FireteamMaxSize      int    `gorm:"column:fireteam_max_size;type:integer;not null"`
	MaxPlayers           int    `gorm:"column:max_players;type:integer;not null"`
	RequiresGuardianOath bool   `gorm:"column:requires_guardian_oath;type:boolean;not null"`
	IsPvP                bool   `gorm:"column:is_pvp;type:boolean;not null"`
	Matchmaking          bool   `gorm:"column:matchmaking;type:boolean;not null"`
	Audit
}

type ManifestActivityType struct {
	ID          uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Hash        uint32 `gorm:"column:hash;type:bigint;uniqueIndex:uk_manifest_activity_type;not null"`
	HashIndex   int    `gorm:"column:hash_index;type:integer;not null"`
	Name        string `gorm:"column:name;type:varchar(255);not null"`
	Description string `gorm:"column:description;type:text;not null"`
	Icon        string `gorm:"column:icon;type:varchar(255);not null"`
	Audit
}

type ManifestClass struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Hash      uint32 `gorm:"column:hash;type:bigint;uniqueIndex:uk_manifest_class;not null"`
	HashIndex int    `gorm:"column:hash_index;type:integer;not null"`
	Type      int    `gorm:"column:type;type:integer;not null;comment:0 Titan / 1 Hunter / 2 Warlock"`
	Name      string `gorm:"column:name;type:varchar(64);not null"`
	Audit
}

type ManifestSeason struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Hash      uint32 `gorm:"column:hash;type:bigint;uniqueIndex:uk_manifest_season;not null"`
	HashIndex int    `gorm:"column:hash_index;type:integer;not null"`
	Name      string `gorm:"column:name;type:varchar(255);not null"`
	Number    int    `gorm:"column:number;type:integer;not null"`
	PassHash  uint32 `gorm:"column:pass_hash;type:bigint;not null"`
	Icon      string `gorm:"column:icon;type:varchar(255);not null"`
	StartsAt  int64  `gorm:"column:starts_at;type:bigint;not null"`
	EndsAt    int64  `gorm:"column:ends_at;type:bigint;not null"`
	Audit
}

type ManifestTriumph struct {
	ID          uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Hash        uint32 `gorm:"column:hash;type:bigint;uniqueIndex:uk_manifest_triumph;not null"`
	HashIndex   int    `gorm:"column:hash_index;type:integer;not null"`
	Name        string `gorm:"column:name;type:varchar(255);not null"`
	Description string `gorm:"column:description;type:text;not null"`
	Icon        string `gorm:"column:icon;type:varchar(255);not null"`
	HasTitle    bool   `gorm:"column:has_title;type:boolean;not null"`
	Title       string `gorm:"column:title;type:varchar(255);not null"`
	Gilding     bool   `gorm:"column:gilding;type:boolean;not null"`
	Audit
}

func (ManifestActivity) TableName() string     { return "manifest_activities" }
func (ManifestActivityType) TableName() string { return "manifest_activity_types" }
func (ManifestClass) TableName() string        { return "manifest_classes" }
func (ManifestSeason) TableName() string       { return "manifest_seasons" }
func (ManifestTriumph) TableName() string      { return "manifest_triumphs" }

// ========== manifest 定义的 API 结构（按 hash 字符串索引的 map 的 value） ==========

type DisplayProperties struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	HasIcon     bool   `json:"hasIcon"`
}

type ActivityDefinition struct {
	Hash              uint32            `json:"hash"`
	Index             int               `json:"index"`
	Redacted          bool              `json:"redacted"`
	DisplayProperties DisplayProperties `json:"displayProperties"`
	PgcrImage         string            `json:"pgcrImage"`
	ActivityTypeHash  uint32            `json:"activityTypeHash"`
	IsPvP             bool              `json:"isPvP"`
	Matchmaking       struct {
		IsMatchmade          bool `json:"isMatchmade"`
		MinParty             int  `json:"minParty"`
		MaxParty             int  `json:"maxParty"`
		MaxPlayers           int  `json:"maxPlayers"`
		RequiresGuardianOath bool `json:"requiresGuardianOath"`
	} `json:"matchmaking"`
}

type ActivityTypeDefinition struct {
	Hash              uint32            `json:"hash"`
	Index             int               `json:"index"`
	Redacted          bool              `json:"redacted"`
	DisplayProperties DisplayProperties `json:"displayProperties"`
}

type ClassDefinition struct {
	Hash              uint32            `json:"hash"`
	Index             int               `json:"index"`
	Redacted          bool              `json:"redacted"`
	ClassType         int               `json:"classType"`
	DisplayProperties DisplayProperties `json:"displayProperties"`
}

type SeasonDefinition struct {
	Hash              uint32            `json:"hash"`
	Index             int               `json:"index"`
	Redacted          bool              `json:"redacted"`
	DisplayProperties DisplayProperties `json:"displayProperties"`
	SeasonNumber      int               `json:"seasonNumber"`
	SeasonPassHash    uint32            `json:"seasonPassHash"`
	StartDate         string            `json:"startDate"` // RFC3339，可为空
	EndDate           string            `json:"endDate"`
}

type RecordDefinition struct {
	Hash              uint32            `json:"hash"`
	Index             int               `json:"index"`
	Redacted          bool              `json:"redacted"`
	DisplayProperties DisplayProperties `json:"displayProperties"`
	ForTitleGilding   bool              `json:"forTitleGilding"`
	TitleInfo         struct {
		HasTitle       bool              `json:"hasTitle"`
		TitlesByGender map[string]string `json:"titlesByGender"`
	} `json:"titleInfo"`
}
