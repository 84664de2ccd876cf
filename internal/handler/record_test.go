package handler

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/geldimmi/geldimmi/internal/completion"
	"github.com/geldimmi/geldimmi/internal/database"
	"github.com/geldimmi/geldimmi/internal/model"
	"github.com/geldimmi/geldimmi/internal/store"
)

func setupRecordHandler(t *testing.T) (*RecordHandler, int64, *model.CompletionRecord) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	orgs := store.NewOrganizationStore(db)
	schedules := store.NewScheduleStore(db)
	items := store.NewItemStore(db)
	records := store.NewRecordStore(db)
	engine := completion.NewEngine(orgs, schedules, items, records, store.NewAccessLogStore(db), store.NewSettingsStore(db))

	org, _ := orgs.Create("Acme", true)
	schedule, _ := schedules.Create(org.ID, "Restroom", nil, "")
	item, _ := items.Create(schedule.ID, "Mirrors", "", model.FrequencyDaily, 0)
	result, err := engine.Submit(schedule.QRToken, "", item.ID, "Maria", time.Now().UTC())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	h := NewRecordHandler(engine, records, nil, slog.Default())
	return h, org.ID, result.Record
}

func TestRejectMalformedJSON(t *testing.T) {
	h, orgID, record := setupRecordHandler(t)

	req := authedRequest("POST", "/api/records/"+strconv.FormatInt(record.ID, 10)+"/reject", `{"note":`, orgID)
	req.SetPathValue("id", strconv.FormatInt(record.ID, 10))
	rec := httptest.NewRecorder()
	h.Reject(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	// The record must be untouched.
	got, err := h.recordStore.GetByID(record.ID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if got.Status != model.RecordPending {
		t.Errorf("status = %q, want pending", got.Status)
	}
}

func TestRejectEmptyBody(t *testing.T) {
	h, orgID, record := setupRecordHandler(t)

	req := authedRequest("POST", "/api/records/"+strconv.FormatInt(record.ID, 10)+"/reject", "", orgID)
	req.SetPathValue("id", strconv.FormatInt(record.ID, 10))
	rec := httptest.NewRecorder()
	h.Reject(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	got, _ := h.recordStore.GetByID(record.ID)
	if got.Status != model.RecordRejected {
		t.Errorf("status = %q, want rejected", got.Status)
	}
	if got.Note != "" {
		t.Errorf("note = %q, want empty", got.Note)
	}
}
