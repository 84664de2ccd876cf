package store

import (
	"testing"
	"time"

	"github.com/geldimmi/geldimmi/internal/database"
	"github.com/geldimmi/geldimmi/internal/model"
)

func setupRecordTestDB(t *testing.T) (*RecordStore, *ItemStore, *ScheduleStore, *OrganizationStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRecordStore(db), NewItemStore(db), NewScheduleStore(db), NewOrganizationStore(db)
}

func recordFixture(t *testing.T, is *ItemStore, ss *ScheduleStore, os *OrganizationStore) (*model.Organization, *model.Item) {
	t.Helper()
	org, err := os.Create("Acme", true)
	if err != nil {
		t.Fatalf("create org: %v", err)
	}
	schedule, err := ss.Create(org.ID, "Restroom", nil, "")
	if err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	item, err := is.Create(schedule.ID, "Mirrors", "", model.FrequencyDaily, 0)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return org, item
}

func TestRecordCreate(t *testing.T) {
	rs, is, ss, os := setupRecordTestDB(t)
	_, item := recordFixture(t, is, ss, os)

	now := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)
	record, err := rs.Create(item.ID, now, "2026-01-05", "Maria")
	if err != nil {
		t.Fatalf("create record: %v", err)
	}
	if record.Status != model.RecordPending {
		t.Errorf("status = %q, want pending", record.Status)
	}
	if record.CompletionDay != "2026-01-05" {
		t.Errorf("completion_day = %q, want 2026-01-05", record.CompletionDay)
	}
	if record.ReviewedAt != nil || record.ReviewedByID != nil {
		t.Error("new record should have no review fields")
	}
}

func TestRecordUniquePerDay(t *testing.T) {
	rs, is, ss, os := setupRecordTestDB(t)
	_, item := recordFixture(t, is, ss, os)

	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	if _, err := rs.Create(item.ID, now, "2026-01-05", "Maria"); err != nil {
		t.Fatalf("first create: %v", err)
	}

	// The unique index closes the check-then-insert race.
	if _, err := rs.Create(item.ID, now.Add(time.Hour), "2026-01-05", "Jonas"); err == nil {
		t.Fatal("second record for the same day should violate the unique index")
	}

	// A different day is fine.
	if _, err := rs.Create(item.ID, now.AddDate(0, 0, 1), "2026-01-06", "Maria"); err != nil {
		t.Fatalf("next-day create: %v", err)
	}
}

func TestRecordReviewLifecycle(t *testing.T) {
	rs, is, ss, os := setupRecordTestDB(t)
	_, item := recordFixture(t, is, ss, os)

	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	record, _ := rs.Create(item.ID, now, "2026-01-05", "Maria")

	reviewed, err := rs.SetReviewed(record.ID, model.RecordRejected, 3, "streaks on the glass", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("set reviewed: %v", err)
	}
	if reviewed.Status != model.RecordRejected {
		t.Errorf("status = %q, want rejected", reviewed.Status)
	}
	if reviewed.Note != "streaks on the glass" {
		t.Errorf("note = %q", reviewed.Note)
	}
	if reviewed.ReviewedAt == nil || reviewed.ReviewedByID == nil || *reviewed.ReviewedByID != 3 {
		t.Errorf("review fields = %v/%v", reviewed.ReviewedAt, reviewed.ReviewedByID)
	}

	// Resubmit resets the row to pending and clears the review.
	resubmitted, err := rs.Resubmit(record.ID, now.Add(3*time.Hour), "Jonas")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resubmitted.Status != model.RecordPending {
		t.Errorf("status = %q, want pending", resubmitted.Status)
	}
	if resubmitted.Note != "" || resubmitted.ReviewedAt != nil || resubmitted.ReviewedByID != nil {
		t.Error("resubmit should clear note and review fields")
	}
	if resubmitted.CompletedByName != "Jonas" {
		t.Errorf("completed_by_name = %q, want Jonas", resubmitted.CompletedByName)
	}

	n, _ := rs.CountForItemOnDay(item.ID, "2026-01-05")
	if n != 1 {
		t.Errorf("records for day = %d, want 1", n)
	}
}

func TestRecordLastApproved(t *testing.T) {
	rs, is, ss, os := setupRecordTestDB(t)
	_, item := recordFixture(t, is, ss, os)

	day1 := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	day3 := day1.AddDate(0, 0, 2)

	r1, _ := rs.Create(item.ID, day1, "2026-01-01", "Maria")
	r2, _ := rs.Create(item.ID, day2, "2026-01-02", "Maria")
	rs.Create(item.ID, day3, "2026-01-03", "Maria")

	// No approvals yet.
	got, err := rs.LastApproved(item.ID)
	if err != nil {
		t.Fatalf("last approved: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil with no approved records")
	}

	rs.SetReviewed(r1.ID, model.RecordApproved, 1, "", day1)
	rs.SetReviewed(r2.ID, model.RecordApproved, 1, "", day2)

	got, err = rs.LastApproved(item.ID)
	if err != nil {
		t.Fatalf("last approved: %v", err)
	}
	if got == nil || got.ID != r2.ID {
		t.Fatalf("last approved = %+v, want record %d", got, r2.ID)
	}
}

func TestRecordGetForOrganization(t *testing.T) {
	rs, is, ss, os := setupRecordTestDB(t)
	org1, item := recordFixture(t, is, ss, os)
	org2, _ := os.Create("Rival", true)

	record, _ := rs.Create(item.ID, time.Now().UTC(), "2026-01-05", "Maria")

	got, err := rs.GetForOrganization(org1.ID, record.ID)
	if err != nil {
		t.Fatalf("get for organization: %v", err)
	}
	if got == nil {
		t.Fatal("owner should see the record")
	}

	got, err = rs.GetForOrganization(org2.ID, record.ID)
	if err != nil {
		t.Fatalf("cross-tenant get: %v", err)
	}
	if got != nil {
		t.Error("cross-tenant record get should return nil")
	}
}

func TestRecordListPendingByOrganization(t *testing.T) {
	rs, is, ss, os := setupRecordTestDB(t)
	org, item := recordFixture(t, is, ss, os)

	day1 := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	r1, _ := rs.Create(item.ID, day1, "2026-01-01", "Maria")
	r2, _ := rs.Create(item.ID, day2, "2026-01-02", "Jonas")
	rs.SetReviewed(r1.ID, model.RecordApproved, 1, "", day2)

	pending, err := rs.ListPendingByOrganization(org.ID)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending record, got %d", len(pending))
	}
	if pending[0].ID != r2.ID {
		t.Errorf("pending record = %d, want %d", pending[0].ID, r2.ID)
	}

	// Another tenant's pending list is empty.
	other, _ := os.Create("Rival", true)
	pending, _ = rs.ListPendingByOrganization(other.ID)
	if len(pending) != 0 {
		t.Errorf("cross-tenant pending = %d records, want 0", len(pending))
	}
}
