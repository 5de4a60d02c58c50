package model

import "time"

// User 使用者模型，核心只使用身分與 is_staff 旗標
type User struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	IsStaff   bool      `json:"is_staff" db:"is_staff"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OrganizerRole 主辦方角色
type OrganizerRole string

const (
	OrganizerRoleAdmin OrganizerRole = "admin"
	OrganizerRoleStaff OrganizerRole = "staff"
)

// Organizer 主辦方模型
type Organizer struct {
	ID               int           `json:"id" db:"id"`
	UserID           int           `json:"user_id" db:"user_id"`
	OrganizationName string        `json:"organization_name" db:"organization_name"`
	Role             OrganizerRole `json:"role" db:"role"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}
