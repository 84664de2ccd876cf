package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/geldimmi/geldimmi/internal/auth"
	"github.com/geldimmi/geldimmi/internal/database"
	"github.com/geldimmi/geldimmi/internal/store"
)

func setupScheduleHandler(t *testing.T) (*ScheduleHandler, *store.ScheduleStore, *store.OrganizationStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ss := store.NewScheduleStore(db)
	os := store.NewOrganizationStore(db)
	sets := store.NewSettingsStore(db)
	h := NewScheduleHandler(ss, os, sets, nil, slog.Default())
	return h, ss, os
}

func authedRequest(method, target, body string, organizationID int64) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := auth.WithAuth(context.Background(), auth.AuthContext{
		UserID:         1,
		OrganizationID: organizationID,
		Role:           "admin",
	})
	return req.WithContext(ctx)
}

func TestScheduleUpdateRejectsForeignGroup(t *testing.T) {
	h, ss, os := setupScheduleHandler(t)

	orgA, _ := os.Create("Acme", true)
	orgB, _ := os.Create("Rival", true)
	schedule, _ := ss.Create(orgA.ID, "Restroom", nil, "")
	foreignGroup, _ := ss.CreateGroup(orgB.ID, "Rival Floor 1", 0)

	body := `{"name": "Restroom", "group_id": ` + strconv.FormatInt(foreignGroup.ID, 10) + `}`
	req := authedRequest("PUT", "/api/schedules/"+strconv.FormatInt(schedule.ID, 10), body, orgA.ID)
	req.SetPathValue("id", strconv.FormatInt(schedule.ID, 10))
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	// Another tenant's group reads as absent, same as on Create.
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	got, err := ss.Get(orgA.ID, schedule.ID)
	if err != nil {
		t.Fatalf("get schedule: %v", err)
	}
	if got.GroupID != nil {
		t.Errorf("group_id = %v, foreign group must not be attached", got.GroupID)
	}
}

func TestScheduleUpdateOwnGroup(t *testing.T) {
	h, ss, os := setupScheduleHandler(t)

	org, _ := os.Create("Acme", true)
	schedule, _ := ss.Create(org.ID, "Restroom", nil, "")
	group, _ := ss.CreateGroup(org.ID, "Floor 1", 0)

	body := `{"name": "Restroom", "group_id": ` + strconv.FormatInt(group.ID, 10) + `}`
	req := authedRequest("PUT", "/api/schedules/"+strconv.FormatInt(schedule.ID, 10), body, org.ID)
	req.SetPathValue("id", strconv.FormatInt(schedule.ID, 10))
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	got, _ := ss.Get(org.ID, schedule.ID)
	if got.GroupID == nil || *got.GroupID != group.ID {
		t.Errorf("group_id = %v, want %d", got.GroupID, group.ID)
	}
}
