package model

import "time"

// Organization is the tenancy unit. Every schedule, item and record belongs
// to exactly one organization. Guest organizations (Registered = false) are
// created without credentials so visitors can try the product.
type Organization struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Registered bool      `json:"registered"`
	Plan       string    `json:"plan"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Per-tenant limit overrides. Nil means "use the tier default".
	MaxSchedules        *int  `json:"max_schedules"`
	MaxItemsPerSchedule *int  `json:"max_items_per_schedule"`
	MaxQRAccessPerMonth *int  `json:"max_qr_access_per_month"`
	CanSelectFrequency  *bool `json:"can_select_frequency"`
	CanGroupSchedules   *bool `json:"can_group_schedules"`
}

const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

type User struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Session struct {
	ID             int64     `json:"id"`
	Token          string    `json:"token"`
	OrganizationID int64     `json:"organization_id"`
	UserID         *int64    `json:"user_id"`
	ExpiresAt      time.Time `json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`
}
