package model

import "time"

// Cart 購物車模型，每位使用者同時最多一個
type Cart struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CartItem 購物車項目。座席指定票帶 seat_id，自由席為 nil。
// ticket_type_id 明確記錄票種，結帳時不再從座位回推活動。
type CartItem struct {
	ID           int       `json:"id" db:"id"`
	CartID       int       `json:"cart_id" db:"cart_id"`
	SeatID       *int      `json:"seat_id,omitempty" db:"seat_id"`
	TicketTypeID int       `json:"ticket_type_id" db:"ticket_type_id"`
	AddedAt      time.Time `json:"added_at" db:"added_at"`

	Seat       *Seat       `json:"seat,omitempty" db:"-"`
	TicketType *TicketType `json:"ticket_type,omitempty" db:"-"`
}

// IsSeatItem 是否為座席指定項目
func (i *CartItem) IsSeatItem() bool {
	return i.SeatID != nil
}
