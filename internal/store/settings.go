package store

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/geldimmi/geldimmi/internal/plan"
)

// Keys holding the tier-default limit profiles. Unknown or malformed values
// fall back to the compiled-in defaults in the plan package.
var limitKeys = []string{
	"limits_anonymous_max_schedules",
	"limits_anonymous_max_items_per_schedule",
	"limits_anonymous_max_qr_access_per_month",
	"limits_registered_max_schedules",
	"limits_registered_max_items_per_schedule",
	"limits_registered_max_qr_access_per_month",
	"limits_registered_can_select_frequency",
	"limits_premium_max_schedules",
	"limits_premium_max_items_per_schedule",
	"limits_premium_max_qr_access_per_month",
	"limits_premium_can_select_frequency",
	"limits_premium_can_group_schedules",
}

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting %q not found", key)
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// GetLimitSettings returns the raw tier-default settings for the admin UI.
func (s *SettingsStore) GetLimitSettings() (map[string]string, error) {
	settings := make(map[string]string)
	for _, key := range limitKeys {
		value, err := s.Get(key)
		if err != nil {
			continue
		}
		settings[key] = value
	}
	return settings, nil
}

// IsLimitKey reports whether key is one of the tier-default limit keys.
func IsLimitKey(key string) bool {
	for _, k := range limitKeys {
		if k == key {
			return true
		}
	}
	return false
}

// LimitDefaults assembles the tier-default limit profiles from the settings
// table, falling back per field to the compiled-in defaults.
func (s *SettingsStore) LimitDefaults() plan.Defaults {
	d := plan.BuiltinDefaults()

	s.loadInt("limits_anonymous_max_schedules", &d.Anonymous.MaxSchedules)
	s.loadInt("limits_anonymous_max_items_per_schedule", &d.Anonymous.MaxItemsPerSchedule)
	s.loadInt("limits_anonymous_max_qr_access_per_month", &d.Anonymous.MaxQRAccessPerMonth)

	s.loadInt("limits_registered_max_schedules", &d.Registered.MaxSchedules)
	s.loadInt("limits_registered_max_items_per_schedule", &d.Registered.MaxItemsPerSchedule)
	s.loadInt("limits_registered_max_qr_access_per_month", &d.Registered.MaxQRAccessPerMonth)
	s.loadBool("limits_registered_can_select_frequency", &d.Registered.CanSelectFrequency)

	s.loadInt("limits_premium_max_schedules", &d.Premium.MaxSchedules)
	s.loadInt("limits_premium_max_items_per_schedule", &d.Premium.MaxItemsPerSchedule)
	s.loadInt("limits_premium_max_qr_access_per_month", &d.Premium.MaxQRAccessPerMonth)
	s.loadBool("limits_premium_can_select_frequency", &d.Premium.CanSelectFrequency)
	s.loadBool("limits_premium_can_group_schedules", &d.Premium.CanGroupSchedules)

	return d
}

func (s *SettingsStore) loadInt(key string, dst *int) {
	value, err := s.Get(key)
	if err != nil {
		return
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return
	}
	*dst = n
}

func (s *SettingsStore) loadBool(key string, dst *bool) {
	value, err := s.Get(key)
	if err != nil {
		return
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return
	}
	*dst = b
}
