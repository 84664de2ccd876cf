package store

import (
	"database/sql"
	"fmt"

	"github.com/geldimmi/geldimmi/internal/model"
)

type OrganizationStore struct {
	db *sql.DB
}

func NewOrganizationStore(db *sql.DB) *OrganizationStore {
	return &OrganizationStore{db: db}
}

func scanOrganization(scanner interface{ Scan(...any) error }) (*model.Organization, error) {
	var o model.Organization
	var registered int
	var maxSchedules, maxItems, maxAccess sql.NullInt64
	var canFreq, canGroup sql.NullInt64

	err := scanner.Scan(
		&o.ID, &o.Name, &registered, &o.Plan,
		&maxSchedules, &maxItems, &maxAccess, &canFreq, &canGroup,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Registered = registered != 0
	if maxSchedules.Valid {
		v := int(maxSchedules.Int64)
		o.MaxSchedules = &v
	}
	if maxItems.Valid {
		v := int(maxItems.Int64)
		o.MaxItemsPerSchedule = &v
	}
	if maxAccess.Valid {
		v := int(maxAccess.Int64)
		o.MaxQRAccessPerMonth = &v
	}
	if canFreq.Valid {
		v := canFreq.Int64 != 0
		o.CanSelectFrequency = &v
	}
	if canGroup.Valid {
		v := canGroup.Int64 != 0
		o.CanGroupSchedules = &v
	}
	return &o, nil
}

const organizationCols = `id, name, registered, plan, max_schedules, max_items_per_schedule, max_qr_access_per_month, can_select_frequency, can_group_schedules, created_at, updated_at`

func (s *OrganizationStore) Create(name string, registered bool) (*model.Organization, error) {
	var reg int
	if registered {
		reg = 1
	}
	result, err := s.db.Exec(
		`INSERT INTO organizations (name, registered) VALUES (?, ?)`,
		name, reg,
	)
	if err != nil {
		return nil, fmt.Errorf("insert organization: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *OrganizationStore) GetByID(id int64) (*model.Organization, error) {
	row := s.db.QueryRow(`SELECT `+organizationCols+` FROM organizations WHERE id = ?`, id)
	o, err := scanOrganization(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return o, nil
}

func (s *OrganizationStore) UpdateName(id int64, name string) (*model.Organization, error) {
	_, err := s.db.Exec(
		`UPDATE organizations SET name = ?, updated_at = datetime('now') WHERE id = ?`,
		name, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update organization: %w", err)
	}
	return s.GetByID(id)
}

// SetPlan changes the subscription plan ("free" or "premium").
func (s *OrganizationStore) SetPlan(id int64, plan string) (*model.Organization, error) {
	_, err := s.db.Exec(
		`UPDATE organizations SET plan = ?, updated_at = datetime('now') WHERE id = ?`,
		plan, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set plan: %w", err)
	}
	return s.GetByID(id)
}

// SetRegistered flips a guest organization to a registered one.
func (s *OrganizationStore) SetRegistered(id int64) error {
	_, err := s.db.Exec(
		`UPDATE organizations SET registered = 1, updated_at = datetime('now') WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("set registered: %w", err)
	}
	return nil
}

// SetLimitOverrides replaces the per-tenant limit overrides. Nil fields
// clear the override back to the tier default.
func (s *OrganizationStore) SetLimitOverrides(id int64, maxSchedules, maxItems, maxAccess *int, canFreq, canGroup *bool) (*model.Organization, error) {
	_, err := s.db.Exec(
		`UPDATE organizations
		 SET max_schedules = ?, max_items_per_schedule = ?, max_qr_access_per_month = ?,
		     can_select_frequency = ?, can_group_schedules = ?, updated_at = datetime('now')
		 WHERE id = ?`,
		nullInt(maxSchedules), nullInt(maxItems), nullInt(maxAccess),
		nullBool(canFreq), nullBool(canGroup), id,
	)
	if err != nil {
		return nil, fmt.Errorf("set limit overrides: %w", err)
	}
	return s.GetByID(id)
}

func (s *OrganizationStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM organizations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}
	return nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullBool(v *bool) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	var i int64
	if *v {
		i = 1
	}
	return sql.NullInt64{Int64: i, Valid: true}
}
