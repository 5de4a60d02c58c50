package model

import "time"

// TicketStatus 票券狀態類型
type TicketStatus string

const (
	TicketStatusValid     TicketStatus = "valid"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// IsValid 驗證狀態是否有效
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusValid, TicketStatusUsed, TicketStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態。
// valid→used（入場）、valid/used→cancelled（取消核准），不可逆轉。
func (s TicketStatus) CanTransitionTo(target TicketStatus) bool {
	transitions := map[TicketStatus][]TicketStatus{
		TicketStatusValid:     {TicketStatusUsed, TicketStatusCancelled},
		TicketStatusUsed:      {TicketStatusCancelled},
		TicketStatusCancelled: {},
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

// Ticket 票券模型。credential 為簽章後的 QR payload，
// qr_png 由 worker 事後補渲染，語意上以 credential 為準。
type Ticket struct {
	ID           int          `json:"id" db:"id"`
	OrderID      int          `json:"order_id" db:"order_id"`
	SeatID       *int         `json:"seat_id,omitempty" db:"seat_id"`
	TicketTypeID int          `json:"ticket_type_id" db:"ticket_type_id"`
	TicketNumber string       `json:"ticket_number" db:"ticket_number"`
	Credential   string       `json:"credential" db:"credential"`
	QRPng        []byte       `json:"-" db:"qr_png"`
	Status       TicketStatus `json:"status" db:"status"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`

	Seat  *Seat  `json:"seat,omitempty" db:"-"`
	Event *Event `json:"event,omitempty" db:"-"`
}

// TicketResponse 票券響應
type TicketResponse struct {
	TicketNumber string `json:"ticket_number"`
	Status       string `json:"status"`
	SeatLabel    string `json:"seat_label,omitempty"`
	EventName    string `json:"event_name,omitempty"`
}
