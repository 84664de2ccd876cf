package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/geldimmi/geldimmi/internal/model"
)

type RecordStore struct {
	db *sql.DB
}

func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db}
}

func scanRecord(scanner interface{ Scan(...any) error }) (*model.CompletionRecord, error) {
	var r model.CompletionRecord
	var reviewedAt sql.NullTime
	var reviewedBy sql.NullInt64

	err := scanner.Scan(
		&r.ID, &r.ItemID, &r.CompletedAt, &r.CompletionDay, &r.CompletedByName,
		&r.Status, &reviewedAt, &reviewedBy, &r.Note, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if reviewedAt.Valid {
		r.ReviewedAt = &reviewedAt.Time
	}
	if reviewedBy.Valid {
		r.ReviewedByID = &reviewedBy.Int64
	}
	return &r, nil
}

const recordCols = `id, item_id, completed_at, completion_day, completed_by_name, status, reviewed_at, reviewed_by_id, note, created_at, updated_at`

// Create inserts a pending record for the item on the given UTC day. The
// unique index on (item_id, completion_day) rejects a second row for the
// same day.
func (s *RecordStore) Create(itemID int64, completedAt time.Time, completionDay, completedByName string) (*model.CompletionRecord, error) {
	result, err := s.db.Exec(
		`INSERT INTO completion_records (item_id, completed_at, completion_day, completed_by_name, status)
		 VALUES (?, ?, ?, ?, ?)`,
		itemID, completedAt.UTC(), completionDay, completedByName, string(model.RecordPending),
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *RecordStore) GetByID(id int64) (*model.CompletionRecord, error) {
	row := s.db.QueryRow(`SELECT `+recordCols+` FROM completion_records WHERE id = ?`, id)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return r, nil
}

// GetForOrganization returns the record only if its item's schedule belongs
// to the organization. Records of other tenants look like missing rows, so
// nothing leaks about their existence.
func (s *RecordStore) GetForOrganization(organizationID, id int64) (*model.CompletionRecord, error) {
	row := s.db.QueryRow(
		`SELECT r.id, r.item_id, r.completed_at, r.completion_day, r.completed_by_name, r.status, r.reviewed_at, r.reviewed_by_id, r.note, r.created_at, r.updated_at
		 FROM completion_records r
		 JOIN items i ON i.id = r.item_id
		 JOIN schedules s ON s.id = i.schedule_id
		 WHERE r.id = ? AND s.organization_id = ?`,
		id, organizationID,
	)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record for organization: %w", err)
	}
	return r, nil
}

// GetForItemOnDay returns the record for an item on a UTC day key, if any.
func (s *RecordStore) GetForItemOnDay(itemID int64, day string) (*model.CompletionRecord, error) {
	row := s.db.QueryRow(
		`SELECT `+recordCols+` FROM completion_records WHERE item_id = ? AND completion_day = ?`,
		itemID, day,
	)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record for day: %w", err)
	}
	return r, nil
}

// LastApproved returns the most recent approved record for the item, the
// reference point for the eligibility check.
func (s *RecordStore) LastApproved(itemID int64) (*model.CompletionRecord, error) {
	row := s.db.QueryRow(
		`SELECT `+recordCols+` FROM completion_records
		 WHERE item_id = ? AND status = ? ORDER BY completed_at DESC LIMIT 1`,
		itemID, string(model.RecordApproved),
	)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last approved record: %w", err)
	}
	return r, nil
}

func (s *RecordStore) ListByItem(itemID int64) ([]model.CompletionRecord, error) {
	rows, err := s.db.Query(
		`SELECT `+recordCols+` FROM completion_records WHERE item_id = ? ORDER BY completed_at DESC`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListPendingByOrganization returns all pending records across the
// organization's schedules, oldest first.
func (s *RecordStore) ListPendingByOrganization(organizationID int64) ([]model.CompletionRecord, error) {
	rows, err := s.db.Query(
		`SELECT r.id, r.item_id, r.completed_at, r.completion_day, r.completed_by_name, r.status, r.reviewed_at, r.reviewed_by_id, r.note, r.created_at, r.updated_at
		 FROM completion_records r
		 JOIN items i ON i.id = r.item_id
		 JOIN schedules s ON s.id = i.schedule_id
		 WHERE s.organization_id = ? AND r.status = ?
		 ORDER BY r.completed_at ASC`,
		organizationID, string(model.RecordPending),
	)
	if err != nil {
		return nil, fmt.Errorf("list pending records: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// Resubmit resets a rejected record back to pending with a fresh timestamp
// and submitter, clearing the rejection note and review fields. This is the
// only backward transition in the record lifecycle.
func (s *RecordStore) Resubmit(id int64, completedAt time.Time, completedByName string) (*model.CompletionRecord, error) {
	_, err := s.db.Exec(
		`UPDATE completion_records
		 SET status = ?, completed_at = ?, completed_by_name = ?, note = '',
		     reviewed_at = NULL, reviewed_by_id = NULL, updated_at = datetime('now')
		 WHERE id = ?`,
		string(model.RecordPending), completedAt.UTC(), completedByName, id,
	)
	if err != nil {
		return nil, fmt.Errorf("resubmit record: %w", err)
	}
	return s.GetByID(id)
}

// SetReviewed stamps a review decision onto a record.
func (s *RecordStore) SetReviewed(id int64, status model.RecordStatus, reviewedByID int64, note string, reviewedAt time.Time) (*model.CompletionRecord, error) {
	_, err := s.db.Exec(
		`UPDATE completion_records
		 SET status = ?, reviewed_at = ?, reviewed_by_id = ?, note = ?, updated_at = datetime('now')
		 WHERE id = ?`,
		string(status), reviewedAt.UTC(), reviewedByID, note, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set reviewed: %w", err)
	}
	return s.GetByID(id)
}

// CountForItemOnDay exists for tests asserting the one-row-per-day invariant.
func (s *RecordStore) CountForItemOnDay(itemID int64, day string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM completion_records WHERE item_id = ? AND completion_day = ?`,
		itemID, day,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records for day: %w", err)
	}
	return n, nil
}

func collectRecords(rows *sql.Rows) ([]model.CompletionRecord, error) {
	var records []model.CompletionRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}
