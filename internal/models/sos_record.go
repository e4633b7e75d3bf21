package models

import "time"

// SOSRecord SOS 记录（对应本地存储 sos-history 键，创建后不再修改）
type SOSRecord struct {
	ID               string   `json:"id"`
	Timestamp        int64    `json:"timestamp"` // Unix 毫秒
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	ContactsNotified []string `json:"contactsNotified"`
	Cancelled        bool     `json:"cancelled"`
}

// MaxSOSHistory 本地 SOS 历史上限
const MaxSOSHistory = 50

// Time 返回记录时间
func (r SOSRecord) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// HasLocation 记录是否带位置
func (r SOSRecord) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Coordinates 经纬度
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
