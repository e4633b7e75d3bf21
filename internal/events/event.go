package events

import (
	"time"

	"github.com/google/uuid"
)

// Type 事件类型
type Type string

const (
	TypeUnlocked        Type = "unlocked"
	TypeLocked          Type = "locked"
	TypeDisguiseChanged Type = "disguise_changed"
	TypeSOSStarted      Type = "sos_started"
	TypeSOSTick         Type = "sos_tick"
	TypeSOSCancelled    Type = "sos_cancelled"
	TypeSOSDispatched   Type = "sos_dispatched"
)

// Event 核心状态事件（发给设备外壳、事件流和终端界面）
type Event struct {
	ID               string `json:"id"`
	Type             Type   `json:"type"`
	Timestamp        int64  `json:"timestamp"` // Unix 毫秒
	Disguise         string `json:"disguise,omitempty"`
	Remaining        int    `json:"remaining,omitempty"`
	RecordID         string `json:"recordId,omitempty"`
	ContactsNotified int    `json:"contactsNotified,omitempty"`
	HasLocation      bool   `json:"hasLocation,omitempty"`
}

// New 创建事件
func New(t Type, at time.Time) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      t,
		Timestamp: at.UnixMilli(),
	}
}
