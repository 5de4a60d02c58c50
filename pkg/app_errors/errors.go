package apperrors

import "errors"

var (
	// not found
	ErrSeatNotFound       = errors.New("seat not found")
	ErrCartNotFound       = errors.New("cart not found")
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotAnOrganizer     = errors.New("user is not an organizer")

	// conflict
	ErrSeatUnavailable         = errors.New("seat is not available")
	ErrTicketAlreadyUsed       = errors.New("ticket already used")
	ErrSeatAlreadyTicketed     = errors.New("seat already has a ticket")
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// validation
	ErrInvalidCredential = errors.New("invalid qr credential")
	ErrInvalidInput      = errors.New("invalid input")

	// inventory
	ErrInsufficientInventory = errors.New("insufficient ticket inventory")
	ErrNotOnSale             = errors.New("ticket type is not on sale")

	ErrEmptyCart = errors.New("cart is empty")
)
