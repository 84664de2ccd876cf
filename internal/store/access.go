package store

import (
	"database/sql"
	"fmt"
)

// AccessLogStore records QR page loads. Rows are append-only and only ever
// counted, never mutated.
type AccessLogStore struct {
	db *sql.DB
}

func NewAccessLogStore(db *sql.DB) *AccessLogStore {
	return &AccessLogStore{db: db}
}

func (s *AccessLogStore) Log(scheduleID int64, monthKey string) error {
	_, err := s.db.Exec(
		`INSERT INTO qr_access_log (schedule_id, month_key) VALUES (?, ?)`,
		scheduleID, monthKey,
	)
	if err != nil {
		return fmt.Errorf("insert access log: %w", err)
	}
	return nil
}

// CountForOrganizationMonth counts accesses across all of the
// organization's schedules for the month, including deactivated schedules.
// The monthly quota is per tenant, not per schedule.
func (s *AccessLogStore) CountForOrganizationMonth(organizationID int64, monthKey string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*)
		 FROM qr_access_log a
		 JOIN schedules s ON s.id = a.schedule_id
		 WHERE s.organization_id = ? AND a.month_key = ?`,
		organizationID, monthKey,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count access for month: %w", err)
	}
	return n, nil
}

// CountForScheduleMonth counts one schedule's accesses for the month.
func (s *AccessLogStore) CountForScheduleMonth(scheduleID int64, monthKey string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM qr_access_log WHERE schedule_id = ? AND month_key = ?`,
		scheduleID, monthKey,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count access for schedule: %w", err)
	}
	return n, nil
}
