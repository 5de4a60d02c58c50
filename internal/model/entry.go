package model

import "time"

// DefaultGate 未指定時使用的入場閘門名稱
const DefaultGate = "メインゲート"

// Entry 入場紀錄模型，append-only，每張票最多一筆
// （entries.ticket_id 帶唯一索引作為第二道防線）
type Entry struct {
	ID        int       `json:"id" db:"id"`
	TicketID  int       `json:"ticket_id" db:"ticket_id"`
	Gate      string    `json:"gate" db:"gate"`
	ScannedBy *int      `json:"scanned_by,omitempty" db:"scanned_by"`
	EnteredAt time.Time `json:"entered_at" db:"entered_at"`
}

// EntryStats 入場統計
type EntryStats struct {
	TotalEntries int            `json:"total_entries"`
	TodayEntries int            `json:"today_entries"`
	GateStats    map[string]int `json:"gate_stats"`
}
