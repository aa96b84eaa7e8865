package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTask    = errors.New("未知任务类型")
	ErrMissingContext = errors.New("缺少上下文消息头")
	ErrDecode         = errors.New("载荷解析失败")
)

// Task 入站消息的任务标签（封闭枚举）
type Task int

const (
	TaskUnknown Task = iota
	TaskMemberProfile
	TaskActivityHistory
	TaskActivityStats
	TaskInstance
	TaskClanInfo
	TaskClanRoster
	TaskManifestClass
	TaskManifestActivity
	TaskManifestActivityType
	TaskManifestTriumph
	TaskManifestSeason
)

// TaskInstanceDetail 回投到下游实例队列的消息任务标签
const TaskInstanceDetail = "instance_detail"

var taskNames = map[Task]string{
	TaskMemberProfile:        "member_profile",
	TaskActivityHistory:      "activity_history",
	TaskActivityStats:        "activity_stats",
	TaskInstance:             "instance",
	TaskClanInfo:             "clan_info",
	TaskClanRoster:           "clan_roster",
	TaskManifestClass:        "manifest_class",
	TaskManifestActivity:     "manifest_activity",
	TaskManifestActivityType: "manifest_activity_type",
	TaskManifestTriumph:      "manifest_triumph",
	TaskManifestSeason:       "manifest_season",
}

var tasksByName = func() map[string]Task {
	m := make(map[string]Task, len(taskNames))
	for t, name := range taskNames {
		m[name] = t
	}
	return m
}()

func (t Task) String() string {
	if name, ok := taskNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseTask 解析任务标签，兼容连字符写法（member-profile）
func ParseTask(s string) (Task, error) {
	if t, ok := tasksByName[normalizeTask(s)]; ok {
		return t, nil
	}
	return TaskUnknown, fmt.Errorf("%w: %q", ErrUnknownTask, s)
}

// Tasks 全部已知任务，按枚举顺序
func Tasks() []Task {
	out := make([]Task, 0, len(taskNames))
	for t := TaskMemberProfile; t <= TaskManifestSeason; t++ {
		out = append(out, t)
	}
	return out
}

func normalizeTask(s string) string {
	b := []byte(s)
	for i, c := range b {
		switch {
		case c == '-':
			b[i] = '_'
		case c >= 'A' && c <= 'Z':
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
