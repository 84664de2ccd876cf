package model

import "time"

type RecordStatus string

const (
	RecordPending  RecordStatus = "pending"
	RecordApproved RecordStatus = "approved"
	RecordRejected RecordStatus = "rejected"
)

// CompletionRecord is one attempt to mark an item complete. At most one
// record exists per (item, UTC calendar day); a rejected record for the day
// is reused on resubmission instead of inserting a second row.
type CompletionRecord struct {
	ID              int64        `json:"id"`
	ItemID          int64        `json:"item_id"`
	CompletedAt     time.Time    `json:"completed_at"`
	CompletionDay   string       `json:"completion_day"`
	CompletedByName string       `json:"completed_by_name"`
	Status          RecordStatus `json:"status"`
	ReviewedAt      *time.Time   `json:"reviewed_at"`
	ReviewedByID    *int64       `json:"reviewed_by_id"`
	Note            string       `json:"note"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// AccessLogEntry is one successful QR page load against a schedule,
// append-only, counted per month for quota enforcement.
type AccessLogEntry struct {
	ID         int64     `json:"id"`
	ScheduleID int64     `json:"schedule_id"`
	MonthKey   string    `json:"month_key"`
	CreatedAt  time.Time `json:"created_at"`
}
