package model

import "time"

// SeatStatus 座位狀態類型
type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusReserved  SeatStatus = "reserved"
	SeatStatusSold      SeatStatus = "sold"
)

// IsValid 驗證狀態是否有效
func (s SeatStatus) IsValid() bool {
	switch s {
	case SeatStatusAvailable, SeatStatusReserved, SeatStatusSold:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s SeatStatus) CanTransitionTo(target SeatStatus) bool {
	transitions := map[SeatStatus][]SeatStatus{
		SeatStatusAvailable: {SeatStatusReserved},
		SeatStatusReserved:  {SeatStatusAvailable, SeatStatusSold},
		SeatStatusSold:      {SeatStatusAvailable}, // 取消後釋放座位
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// SeatType 座位等級 (S/A/B)
type SeatType string

const (
	SeatTypeS SeatType = "S"
	SeatTypeA SeatType = "A"
	SeatTypeB SeatType = "B"
)

// Seat 座位模型。(venue_id, block, row, number) 為複合唯一鍵，
// version 於每次狀態變更遞增，供衝突診斷使用；實際併發防護靠 row lock。
type Seat struct {
	ID         int        `json:"id" db:"id"`
	VenueID    int        `json:"venue_id" db:"venue_id"`
	Block      string     `json:"block" db:"block"`
	Row        string     `json:"row" db:"row"`
	Number     string     `json:"number" db:"number"`
	SeatType   SeatType   `json:"seat_type" db:"seat_type"`
	Status     SeatStatus `json:"status" db:"status"`
	ReservedBy *int       `json:"reserved_by,omitempty" db:"reserved_by"`
	ReservedAt *time.Time `json:"reserved_at,omitempty" db:"reserved_at"`
	Version    int        `json:"version" db:"version"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// IsAvailable 是否可預約
func (s *Seat) IsAvailable() bool {
	return s.Status == SeatStatusAvailable
}

// Label 座位標籤，如 "A-1-1"
func (s *Seat) Label() string {
	return s.Block + "-" + s.Row + "-" + s.Number
}
