package model

import "time"

// ScheduleGroup collects schedules for premium organizations (e.g. one group
// per building floor).
type ScheduleGroup struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Name           string    `json:"name"`
	SortOrder      int       `json:"sort_order"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Schedule is a named checklist container reached through its QR token.
// Deactivation is a soft delete: historical completion records and access
// log rows stay joinable.
type Schedule struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	GroupID        *int64    `json:"group_id"`
	Name           string    `json:"name"`
	QRToken        string    `json:"qr_token"`
	AccessCode     string    `json:"-"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasAccessCode reports whether the schedule requires a code on QR access.
func (s *Schedule) HasAccessCode() bool {
	return s.AccessCode != ""
}
