package model

import "time"

// OrderStatus 訂單狀態類型
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid 驗證狀態是否有效
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	transitions := map[OrderStatus][]OrderStatus{
		OrderStatusPending:   {OrderStatusPaid, OrderStatusCancelled},
		OrderStatusPaid:      {OrderStatusCancelled},
		OrderStatusCancelled: {}, // 不能轉換到任何狀態
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

// Order 訂單模型。建立後除 status 外不可變更。
type Order struct {
	ID          int         `json:"id" db:"id"`
	OrderNumber string      `json:"order_number" db:"order_number"`
	UserID      int         `json:"user_id" db:"user_id"`
	EventID     int         `json:"event_id" db:"event_id"`
	TotalAmount float64     `json:"total_amount" db:"total_amount"`
	Status      OrderStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// PaymentMethod 支付方式
type PaymentMethod string

const (
	PaymentMethodCreditCard       PaymentMethod = "credit_card"
	PaymentMethodConvenienceStore PaymentMethod = "convenience_store"
	PaymentMethodBankTransfer     PaymentMethod = "bank_transfer"
)

// PaymentStatus 支付狀態
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment 支付模型，一張訂單恰有一筆
type Payment struct {
	ID            int           `json:"id" db:"id"`
	OrderID       int           `json:"order_id" db:"order_id"`
	Method        PaymentMethod `json:"method" db:"method"`
	Amount        float64       `json:"amount" db:"amount"`
	Status        PaymentStatus `json:"status" db:"status"`
	TransactionID string        `json:"transaction_id" db:"transaction_id"`
	PaidAt        *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}
