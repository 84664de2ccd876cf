// Package completion implements the QR access and completion workflow: the
// monthly access quota, the frequency eligibility gate, the one-record-per-
// day submission rules, and the tenant-scoped review state machine.
package completion

import (
	"errors"
	"fmt"
	"time"

	"github.com/geldimmi/geldimmi/internal/frequency"
	"github.com/geldimmi/geldimmi/internal/model"
	"github.com/geldimmi/geldimmi/internal/plan"
	"github.com/geldimmi/geldimmi/internal/store"
)

// Caller-facing failure conditions. Handlers map these to HTTP statuses;
// anything else is an unexpected storage failure.
var (
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrRecordNotFound   = errors.New("record not found")
	ErrAccessCode       = errors.New("wrong access code")
	ErrAlreadySubmitted = errors.New("already submitted today, awaiting review")
	ErrAlreadyApproved  = errors.New("already approved today")
	ErrAlreadyReviewed  = errors.New("record has already been reviewed")
)

// NotEligibleError reports a completion attempt before the required interval
// elapsed. NextAvailable is when the item becomes eligible again.
type NotEligibleError struct {
	RequiredDays  int
	NextAvailable time.Time
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("not eligible yet: requires %d day(s) between completions, next available %s",
		e.RequiredDays, e.NextAvailable.UTC().Format("02.01.2006"))
}

// Engine coordinates the stores behind the public QR endpoints and the
// authenticated review endpoints.
type Engine struct {
	orgs      *store.OrganizationStore
	schedules *store.ScheduleStore
	items     *store.ItemStore
	records   *store.RecordStore
	access    *store.AccessLogStore
	settings  *store.SettingsStore
}

func NewEngine(orgs *store.OrganizationStore, schedules *store.ScheduleStore, items *store.ItemStore, records *store.RecordStore, access *store.AccessLogStore, settings *store.SettingsStore) *Engine {
	return &Engine{
		orgs:      orgs,
		schedules: schedules,
		items:     items,
		records:   records,
		access:    access,
		settings:  settings,
	}
}

// ItemStatus is an item enriched with its eligibility state at a point in
// time, as shown on the QR page.
type ItemStatus struct {
	model.Item
	LastApprovedAt  *time.Time `json:"last_approved_at"`
	NextAvailableAt *time.Time `json:"next_available_at"`
	CanComplete     bool       `json:"can_complete"`
}

// ScheduleView is the public QR page payload.
type ScheduleView struct {
	ScheduleID   int64        `json:"schedule_id"`
	ScheduleName string       `json:"schedule_name"`
	Items        []ItemStatus `json:"items"`
}

// Access resolves a QR token to its schedule, enforces the access code and
// the owner's monthly access quota, logs the access, and returns the active
// items with their eligibility state.
//
// At the quota ceiling the request fails and is not logged. The count-then-
// insert sequence is not transactional; the quota is advisory under
// concurrent load.
func (e *Engine) Access(token, accessCode string, now time.Time) (*ScheduleView, error) {
	schedule, err := e.authorize(token, accessCode)
	if err != nil {
		return nil, err
	}

	org, err := e.orgs.GetByID(schedule.OrganizationID)
	if err != nil {
		return nil, err
	}
	profile := plan.Resolve(org, e.settings.LimitDefaults())

	monthKey := frequency.MonthKey(now)
	count, err := e.access.CountForOrganizationMonth(schedule.OrganizationID, monthKey)
	if err != nil {
		return nil, err
	}
	if err := plan.CheckCeiling("monthly QR access", count, profile.MaxQRAccessPerMonth); err != nil {
		return nil, err
	}
	if err := e.access.Log(schedule.ID, monthKey); err != nil {
		return nil, err
	}

	items, err := e.items.ListBySchedule(schedule.ID)
	if err != nil {
		return nil, err
	}

	view := &ScheduleView{
		ScheduleID:   schedule.ID,
		ScheduleName: schedule.Name,
		Items:        make([]ItemStatus, 0, len(items)),
	}
	for _, item := range items {
		status, err := e.itemStatus(item, now)
		if err != nil {
			return nil, err
		}
		view.Items = append(view.Items, *status)
	}
	return view, nil
}

func (e *Engine) itemStatus(item model.Item, now time.Time) (*ItemStatus, error) {
	last, err := e.records.LastApproved(item.ID)
	if err != nil {
		return nil, err
	}

	status := &ItemStatus{Item: item, CanComplete: true}
	if last != nil {
		days := frequency.RequiredDays(item)
		next := frequency.NextAvailable(last.CompletedAt, days)
		status.LastApprovedAt = &last.CompletedAt
		status.NextAvailableAt = &next
		status.CanComplete = frequency.CanComplete(&last.CompletedAt, days, now)
	}
	return status, nil
}

// SubmitResult carries the created or reused record along with the owning
// schedule and organization, so callers can notify the right tenant.
type SubmitResult struct {
	Record         *model.CompletionRecord
	ScheduleID     int64
	OrganizationID int64
}

// Submit records a completion attempt for an item reached through a QR
// token. Eligibility is checked against the last approved record; the
// per-day record is then created, rejected as a duplicate, or reused if the
// day's record was rejected by a reviewer.
func (e *Engine) Submit(token, accessCode string, itemID int64, completedByName string, now time.Time) (*SubmitResult, error) {
	schedule, err := e.authorize(token, accessCode)
	if err != nil {
		return nil, err
	}

	item, err := e.items.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || !item.Active || item.ScheduleID != schedule.ID {
		return nil, ErrItemNotFound
	}

	last, err := e.records.LastApproved(item.ID)
	if err != nil {
		return nil, err
	}
	days := frequency.RequiredDays(*item)
	if last != nil && !frequency.CanComplete(&last.CompletedAt, days, now) {
		return nil, &NotEligibleError{
			RequiredDays:  days,
			NextAvailable: frequency.NextAvailable(last.CompletedAt, days),
		}
	}

	day := frequency.DayKey(now)
	existing, err := e.records.GetForItemOnDay(item.ID, day)
	if err != nil {
		return nil, err
	}

	var record *model.CompletionRecord
	switch {
	case existing == nil:
		record, err = e.records.Create(item.ID, now, day, completedByName)
	case existing.Status == model.RecordPending:
		return nil, ErrAlreadySubmitted
	case existing.Status == model.RecordApproved:
		return nil, ErrAlreadyApproved
	default:
		// Rejected earlier today: reuse the row so the day keeps one record.
		record, err = e.records.Resubmit(existing.ID, now, completedByName)
	}
	if err != nil {
		return nil, err
	}

	return &SubmitResult{
		Record:         record,
		ScheduleID:     schedule.ID,
		OrganizationID: schedule.OrganizationID,
	}, nil
}

// Approve marks a pending record approved. The record must belong to a
// schedule owned by the organization; anything else reads as not found.
func (e *Engine) Approve(organizationID, recordID, reviewerID int64, now time.Time) (*model.CompletionRecord, error) {
	return e.review(organizationID, recordID, reviewerID, model.RecordApproved, "", now)
}

// Reject marks a pending record rejected with a reviewer note. The cleaner
// may resubmit the same day, which resets the record to pending.
func (e *Engine) Reject(organizationID, recordID, reviewerID int64, note string, now time.Time) (*model.CompletionRecord, error) {
	return e.review(organizationID, recordID, reviewerID, model.RecordRejected, note, now)
}

func (e *Engine) review(organizationID, recordID, reviewerID int64, status model.RecordStatus, note string, now time.Time) (*model.CompletionRecord, error) {
	record, err := e.records.GetForOrganization(organizationID, recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}
	if record.Status != model.RecordPending {
		return nil, ErrAlreadyReviewed
	}
	return e.records.SetReviewed(record.ID, status, reviewerID, note, now)
}

func (e *Engine) authorize(token, accessCode string) (*model.Schedule, error) {
	schedule, err := e.schedules.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}
	if schedule.HasAccessCode() && schedule.AccessCode != accessCode {
		return nil, ErrAccessCode
	}
	return schedule, nil
}
