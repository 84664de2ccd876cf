package store

import (
	"testing"

	"github.com/geldimmi/geldimmi/internal/database"
	"github.com/geldimmi/geldimmi/internal/model"
)

func setupItemTestDB(t *testing.T) (*ItemStore, *ScheduleStore, *OrganizationStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewItemStore(db), NewScheduleStore(db), NewOrganizationStore(db)
}

func TestItemCRUD(t *testing.T) {
	is, ss, os := setupItemTestDB(t)
	org, _ := os.Create("Acme", true)
	schedule, _ := ss.Create(org.ID, "Restroom", nil, "")

	item, err := is.Create(schedule.ID, "Wipe mirrors", "All mirrors above the sinks", model.FrequencyWeekly, 0)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.Name != "Wipe mirrors" {
		t.Errorf("name = %q, want %q", item.Name, "Wipe mirrors")
	}
	if item.Frequency != model.FrequencyWeekly {
		t.Errorf("frequency = %q, want weekly", item.Frequency)
	}
	if !item.Active {
		t.Error("new item should be active")
	}

	updated, err := is.Update(item.ID, "Polish mirrors", "", model.FrequencyCustom, 3)
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if updated.Name != "Polish mirrors" || updated.Frequency != model.FrequencyCustom || updated.FrequencyDays != 3 {
		t.Errorf("updated item = %+v", updated)
	}

	if err := is.Deactivate(item.ID); err != nil {
		t.Fatalf("deactivate item: %v", err)
	}
	got, err := is.GetByID(item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.Active {
		t.Error("item should be inactive after deactivate")
	}
}

func TestItemListExcludesInactive(t *testing.T) {
	is, ss, os := setupItemTestDB(t)
	org, _ := os.Create("Acme", true)
	schedule, _ := ss.Create(org.ID, "Restroom", nil, "")

	i1, _ := is.Create(schedule.ID, "Mirrors", "", model.FrequencyDaily, 0)
	is.Create(schedule.ID, "Floor", "", model.FrequencyDaily, 0)
	is.Deactivate(i1.ID)

	items, err := is.ListBySchedule(schedule.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 active item, got %d", len(items))
	}
	if items[0].Name != "Floor" {
		t.Errorf("item = %q, want Floor", items[0].Name)
	}

	n, _ := is.CountActive(schedule.ID)
	if n != 1 {
		t.Errorf("active count = %d, want 1", n)
	}
}

func TestItemGetForOrganization(t *testing.T) {
	is, ss, os := setupItemTestDB(t)
	org1, _ := os.Create("Acme", true)
	org2, _ := os.Create("Rival", true)
	schedule, _ := ss.Create(org1.ID, "Restroom", nil, "")
	item, _ := is.Create(schedule.ID, "Mirrors", "", model.FrequencyDaily, 0)

	got, err := is.GetForOrganization(org1.ID, item.ID)
	if err != nil {
		t.Fatalf("get for organization: %v", err)
	}
	if got == nil {
		t.Fatal("owner should see the item")
	}

	got, err = is.GetForOrganization(org2.ID, item.ID)
	if err != nil {
		t.Fatalf("cross-tenant get: %v", err)
	}
	if got != nil {
		t.Error("cross-tenant item get should return nil")
	}
}
