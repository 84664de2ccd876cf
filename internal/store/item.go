package store

import (
	"database/sql"
	"fmt"

	"github.com/geldimmi/geldimmi/internal/model"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var i model.Item
	var active int

	err := scanner.Scan(
		&i.ID, &i.ScheduleID, &i.Name, &i.Description,
		&i.Frequency, &i.FrequencyDays, &active, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	i.Active = active != 0
	return &i, nil
}

const itemCols = `id, schedule_id, name, description, frequency, frequency_days, active, created_at, updated_at`

func (s *ItemStore) Create(scheduleID int64, name, description string, freq model.Frequency, frequencyDays int) (*model.Item, error) {
	result, err := s.db.Exec(
		`INSERT INTO items (schedule_id, name, description, frequency, frequency_days) VALUES (?, ?, ?, ?, ?)`,
		scheduleID, name, description, string(freq), frequencyDays,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ItemStore) GetByID(id int64) (*model.Item, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM items WHERE id = ?`, id)
	i, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return i, nil
}

// GetForOrganization returns the item only if its schedule belongs to the
// organization. Cross-tenant ids look like missing rows.
func (s *ItemStore) GetForOrganization(organizationID, id int64) (*model.Item, error) {
	row := s.db.QueryRow(
		`SELECT i.id, i.schedule_id, i.name, i.description, i.frequency, i.frequency_days, i.active, i.created_at, i.updated_at
		 FROM items i
		 JOIN schedules s ON s.id = i.schedule_id
		 WHERE i.id = ? AND s.organization_id = ?`,
		id, organizationID,
	)
	i, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item for organization: %w", err)
	}
	return i, nil
}

func (s *ItemStore) ListBySchedule(scheduleID int64) ([]model.Item, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM items WHERE schedule_id = ? AND active = 1 ORDER BY name ASC`,
		scheduleID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *i)
	}
	return items, rows.Err()
}

// CountActive counts a schedule's active items for quota checks.
func (s *ItemStore) CountActive(scheduleID int64) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM items WHERE schedule_id = ? AND active = 1`,
		scheduleID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func (s *ItemStore) Update(id int64, name, description string, freq model.Frequency, frequencyDays int) (*model.Item, error) {
	_, err := s.db.Exec(
		`UPDATE items SET name = ?, description = ?, frequency = ?, frequency_days = ?, updated_at = datetime('now')
		 WHERE id = ?`,
		name, description, string(freq), frequencyDays, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.GetByID(id)
}

// Deactivate soft-deletes an item, preserving its completion history.
func (s *ItemStore) Deactivate(id int64) error {
	_, err := s.db.Exec(
		`UPDATE items SET active = 0, updated_at = datetime('now') WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deactivate item: %w", err)
	}
	return nil
}
