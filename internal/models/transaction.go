package models

type AdminLogType string

const (
	AdminLogRole    AdminLogType = "role"
	AdminLogAdjust  AdminLogType = "adjust"
	AdminLogMute    AdminLogType = "mute"
	AdminLogUnmute  AdminLogType = "unmute"
	AdminLogLevelUp AdminLogType = "level_up"
	AdminLogReset   AdminLogType = "reset"
)

// AdminLog is an append-only audit entry for moderation and progression events.
type AdminLog struct {
	ID                string       `json:"id"`
	Type              AdminLogType `json:"type"`
	Timestamp         int64        `json:"timestamp"`
	ActorUsername     string       `json:"actorUsername,omitempty"`
	ActorDisplayName  string       `json:"actorDisplayName,omitempty"`
	TargetUsername    string       `json:"targetUsername,omitempty"`
	TargetDisplayName string       `json:"targetDisplayName,omitempty"`
	Role              string       `json:"role,omitempty"`
	AdjustType        string       `json:"adjustType,omitempty"`
	Value             *float64     `json:"value,omitempty"`
	NewLevel          *int         `json:"newLevel,omitempty"`
	PreviousLevel     *int         `json:"previousLevel,omitempty"`
}
