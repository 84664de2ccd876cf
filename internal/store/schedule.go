package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/geldimmi/geldimmi/internal/model"
)

type ScheduleStore struct {
	db *sql.DB
}

func NewScheduleStore(db *sql.DB) *ScheduleStore {
	return &ScheduleStore{db: db}
}

// --- Group methods ---

func scanGroup(scanner interface{ Scan(...any) error }) (*model.ScheduleGroup, error) {
	var g model.ScheduleGroup
	err := scanner.Scan(&g.ID, &g.OrganizationID, &g.Name, &g.SortOrder, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

const groupCols = `id, organization_id, name, sort_order, created_at, updated_at`

func (s *ScheduleStore) CreateGroup(organizationID int64, name string, sortOrder int) (*model.ScheduleGroup, error) {
	result, err := s.db.Exec(
		`INSERT INTO schedule_groups (organization_id, name, sort_order) VALUES (?, ?, ?)`,
		organizationID, name, sortOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+groupCols+` FROM schedule_groups WHERE id = ?`, id)
	return scanGroup(row)
}

// GetGroup returns the group only if it belongs to the organization.
func (s *ScheduleStore) GetGroup(organizationID, id int64) (*model.ScheduleGroup, error) {
	row := s.db.QueryRow(
		`SELECT `+groupCols+` FROM schedule_groups WHERE id = ? AND organization_id = ?`,
		id, organizationID,
	)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

func (s *ScheduleStore) ListGroups(organizationID int64) ([]model.ScheduleGroup, error) {
	rows, err := s.db.Query(
		`SELECT `+groupCols+` FROM schedule_groups WHERE organization_id = ? ORDER BY sort_order ASC, name ASC`,
		organizationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []model.ScheduleGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

func (s *ScheduleStore) UpdateGroup(organizationID, id int64, name string, sortOrder int) (*model.ScheduleGroup, error) {
	_, err := s.db.Exec(
		`UPDATE schedule_groups SET name = ?, sort_order = ?, updated_at = datetime('now')
		 WHERE id = ? AND organization_id = ?`,
		name, sortOrder, id, organizationID,
	)
	if err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}
	return s.GetGroup(organizationID, id)
}

func (s *ScheduleStore) DeleteGroup(organizationID, id int64) error {
	_, err := s.db.Exec(
		`DELETE FROM schedule_groups WHERE id = ? AND organization_id = ?`,
		id, organizationID,
	)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}

// --- Schedule methods ---

func scanSchedule(scanner interface{ Scan(...any) error }) (*model.Schedule, error) {
	var sc model.Schedule
	var groupID sql.NullInt64
	var active int

	err := scanner.Scan(
		&sc.ID, &sc.OrganizationID, &groupID, &sc.Name, &sc.QRToken,
		&sc.AccessCode, &active, &sc.CreatedAt, &sc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if groupID.Valid {
		sc.GroupID = &groupID.Int64
	}
	sc.Active = active != 0
	return &sc, nil
}

const scheduleCols = `id, organization_id, group_id, name, qr_token, access_code, active, created_at, updated_at`

// Create inserts a schedule with a fresh QR token.
func (s *ScheduleStore) Create(organizationID int64, name string, groupID *int64, accessCode string) (*model.Schedule, error) {
	var gID sql.NullInt64
	if groupID != nil {
		gID = sql.NullInt64{Int64: *groupID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO schedules (organization_id, group_id, name, qr_token, access_code) VALUES (?, ?, ?, ?, ?)`,
		organizationID, gID, name, uuid.NewString(), accessCode,
	)
	if err != nil {
		return nil, fmt.Errorf("insert schedule: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+scheduleCols+` FROM schedules WHERE id = ?`, id)
	return scanSchedule(row)
}

// Get returns the schedule only if it belongs to the organization, active or
// not.
func (s *ScheduleStore) Get(organizationID, id int64) (*model.Schedule, error) {
	row := s.db.QueryRow(
		`SELECT `+scheduleCols+` FROM schedules WHERE id = ? AND organization_id = ?`,
		id, organizationID,
	)
	sc, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return sc, nil
}

// GetByToken returns the active schedule for a QR token. Deactivated
// schedules are invisible to the public endpoint.
func (s *ScheduleStore) GetByToken(token string) (*model.Schedule, error) {
	row := s.db.QueryRow(
		`SELECT `+scheduleCols+` FROM schedules WHERE qr_token = ? AND active = 1`,
		token,
	)
	sc, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule by token: %w", err)
	}
	return sc, nil
}

func (s *ScheduleStore) ListByOrganization(organizationID int64) ([]model.Schedule, error) {
	rows, err := s.db.Query(
		`SELECT `+scheduleCols+` FROM schedules WHERE organization_id = ? AND active = 1 ORDER BY name ASC`,
		organizationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []model.Schedule
	for rows.Next() {
		sc, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, *sc)
	}
	return schedules, rows.Err()
}

// CountActive counts the organization's active schedules for quota checks.
func (s *ScheduleStore) CountActive(organizationID int64) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM schedules WHERE organization_id = ? AND active = 1`,
		organizationID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count schedules: %w", err)
	}
	return n, nil
}

func (s *ScheduleStore) Update(organizationID, id int64, name string, groupID *int64, accessCode string) (*model.Schedule, error) {
	var gID sql.NullInt64
	if groupID != nil {
		gID = sql.NullInt64{Int64: *groupID, Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE schedules SET name = ?, group_id = ?, access_code = ?, updated_at = datetime('now')
		 WHERE id = ? AND organization_id = ?`,
		name, gID, accessCode, id, organizationID,
	)
	if err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}
	return s.Get(organizationID, id)
}

// Deactivate soft-deletes a schedule. Completion records and access log
// rows survive so history stays queryable.
func (s *ScheduleStore) Deactivate(organizationID, id int64) error {
	_, err := s.db.Exec(
		`UPDATE schedules SET active = 0, updated_at = datetime('now') WHERE id = ? AND organization_id = ?`,
		id, organizationID,
	)
	if err != nil {
		return fmt.Errorf("deactivate schedule: %w", err)
	}
	return nil
}
