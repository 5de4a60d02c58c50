package model

import "time"

// Venue 會場模型
type Venue struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	Capacity  int       `json:"capacity" db:"capacity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Event 活動模型，核心只讀取、不更動
type Event struct {
	ID            int        `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Description   *string    `json:"description,omitempty" db:"description"`
	VenueID       int        `json:"venue_id" db:"venue_id"`
	OrganizerID   int        `json:"organizer_id" db:"organizer_id"`
	StartDatetime time.Time  `json:"start_datetime" db:"start_datetime"`
	EndDatetime   *time.Time `json:"end_datetime,omitempty" db:"end_datetime"`
	IsPublic      bool       `json:"is_public" db:"is_public"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// TicketTypeKind 票種類型：座席指定或自由席
type TicketTypeKind string

const (
	TicketTypeReserved TicketTypeKind = "reserved"
	TicketTypeFree     TicketTypeKind = "free"
)

// TicketType 票種模型
type TicketType struct {
	ID            int            `json:"id" db:"id"`
	EventID       int            `json:"event_id" db:"event_id"`
	Name          string         `json:"name" db:"name"`
	Kind          TicketTypeKind `json:"kind" db:"kind"`
	Price         float64        `json:"price" db:"price"`
	TotalQuantity int            `json:"total_quantity" db:"total_quantity"`
	SoldQuantity  int            `json:"sold_quantity" db:"sold_quantity"`
	SaleStart     *time.Time     `json:"sale_start,omitempty" db:"sale_start"`
	SaleEnd       *time.Time     `json:"sale_end,omitempty" db:"sale_end"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// RemainingQuantity 剩餘可售數量
func (t *TicketType) RemainingQuantity() int {
	return t.TotalQuantity - t.SoldQuantity
}

// IsSoldOut 是否完售
func (t *TicketType) IsSoldOut() bool {
	return t.SoldQuantity >= t.TotalQuantity
}

// IsOnSale 是否在販售期間內
func (t *TicketType) IsOnSale(now time.Time) bool {
	if t.SaleStart != nil && now.Before(*t.SaleStart) {
		return false
	}
	if t.SaleEnd != nil && now.After(*t.SaleEnd) {
		return false
	}
	return true
}
