package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// FlexInt64 接口中的 int64 ID 以字符串形式下发（如 "4611686018467284386"），同时兼容数字形式
type FlexInt64 int64

func (f *FlexInt64) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*f = FlexInt64(v)
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FlexInt64(v)
	return nil
}

// ParseTimestamp 将 RFC3339 时间字符串转为 epoch 秒；空串或格式错误返回 0
func ParseTimestamp(s string) int64 {
	if s == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0
	}
	return t.Unix()
}

// UserInfo 账号基础信息（destinyUserInfo / userInfo）
type UserInfo struct {
	MembershipID                FlexInt64 `json:"membershipId"`
	MembershipType              int       `json:"membershipType"`
	DisplayName                 string    `json:"displayName"`
	BungieGlobalDisplayName     string    `json:"bungieGlobalDisplayName"`
	BungieGlobalDisplayNameCode int       `json:"bungieGlobalDisplayNameCode"`
	IconPath                    string    `json:"iconPath"`
}

// ========== 账号资料（GetProfile 响应，三个组件均可缺省） ==========

type ProfileResponse struct {
	Profile        *ProfileComponent        `json:"profile"`
	Characters     *CharactersComponent     `json:"characters"`
	ProfileRecords *ProfileRecordsComponent `json:"profileRecords"`
}

type ProfileComponent struct {
	Data *struct {
		UserInfo                    UserInfo    `json:"userInfo"`
		DateLastPlayed              string      `json:"dateLastPlayed"`
		CharacterIDs                []FlexInt64 `json:"characterIds"`
		CurrentGuardianRank         int         `json:"currentGuardianRank"`
		LifetimeHighestGuardianRank int         `json:"lifetimeHighestGuardianRank"`
	} `json:"data"`
}

type CharactersComponent struct {
	Data map[string]Character `json:"data"`
}

type Character struct {
	MembershipID             FlexInt64 `json:"membershipId"`
	MembershipType           int       `json:"membershipType"`
	CharacterID              FlexInt64 `json:"characterId"`
	DateLastPlayed           string    `json:"dateLastPlayed"`
	MinutesPlayedThisSession FlexInt64 `json:"minutesPlayedThisSession"`
	MinutesPlayedTotal       FlexInt64 `json:"minutesPlayedTotal"`
	Light                    int       `json:"light"`
	ClassHash                uint32    `json:"classHash"`
	EmblemPath               string    `json:"emblemPath"`
	EmblemBackgroundPath     string    `json:"emblemBackgroundPath"`
	EmblemHash               uint32    `json:"emblemHash"`
}

type ProfileRecordsComponent struct {
	Data *struct {
		Score   int                    `json:"score"`
		Records map[string]RecordState `json:"records"`
	} `json:"data"`
}

type RecordState struct {
	State          int `json:"state"`
	CompletedCount int `json:"completedCount"`
}

// ========== 活动历史 / 统计 ==========

// HistoricalStat 单项统计值
type HistoricalStat struct {
	StatID string `json:"statId"`
	Basic  struct {
		Value        float64 `json:"value"`
		DisplayValue string  `json:"displayValue"`
	} `json:"basic"`
}

type ActivityDetails struct {
	ReferenceID          uint32    `json:"referenceId"`
	DirectorActivityHash uint32    `json:"directorActivityHash"`
	InstanceID           FlexInt64 `json:"instanceId"`
	Mode                 int       `json:"mode"`
	Modes                []int     `json:"modes"`
	IsPrivate            bool      `json:"isPrivate"`
	MembershipType       int       `json:"membershipType"`
}

// HistoryEntry 活动历史条目（GetActivityHistory 的 activities[]）
type HistoryEntry struct {
	Period          string                    `json:"period"`
	ActivityDetails ActivityDetails           `json:"activityDetails"`
	Values          map[string]HistoricalStat `json:"values"`
}

// ========== 战后报告（PGCR） ==========

type CarnageReport struct {
	Period                          string          `json:"period"`
	StartingPhaseIndex              int             `json:"startingPhaseIndex"`
	ActivityWasStartedFromBeginning bool            `json:"activityWasStartedFromBeginning"`
	ActivityDetails                 ActivityDetails `json:"activityDetails"`
	Entries                         []CarnageEntry  `json:"entries"`
}

type CarnageEntry struct {
	CharacterID FlexInt64 `json:"characterId"`
	Player      struct {
		DestinyUserInfo UserInfo `json:"destinyUserInfo"`
		CharacterClass  string   `json:"characterClass"`
		ClassHash       uint32   `json:"classHash"`
		LightLevel      int      `json:"lightLevel"`
		EmblemHash      uint32   `json:"emblemHash"`
		ClanName        string   `json:"clanName"`
		ClanTag         string   `json:"clanTag"`
	} `json:"player"`
	Values map[string]HistoricalStat `json:"values"`
}

// ========== 战队 ==========

type GroupResponse struct {
	Detail struct {
		GroupID     FlexInt64 `json:"groupId"`
		Name        string    `json:"name"`
		Motto       string    `json:"motto"`
		About       string    `json:"about"`
		MemberCount int       `json:"memberCount"`
		ClanInfo    struct {
			ClanCallsign string `json:"clanCallsign"`
		} `json:"clanInfo"`
	} `json:"detail"`
}

// GroupMemberResponse 战队名单；Results 为 nil 表示载荷中没有 results 字段
type GroupMemberResponse struct {
	Results      *[]GroupMember `json:"results"`
	TotalResults int            `json:"totalResults"`
	HasMore      bool           `json:"hasMore"`
}

type GroupMember struct {
	MemberType      int       `json:"memberType"`
	GroupID         FlexInt64 `json:"groupId"`
	DestinyUserInfo UserInfo  `json:"destinyUserInfo"`
	JoinDate        string    `json:"joinDate"`
}
