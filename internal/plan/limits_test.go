package plan

import (
	"errors"
	"testing"

	"github.com/geldimmi/geldimmi/internal/model"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestTierOf(t *testing.T) {
	if got := TierOf(nil); got != TierAnonymous {
		t.Errorf("nil org tier = %q, want %q", got, TierAnonymous)
	}
	if got := TierOf(&model.Organization{Registered: false}); got != TierAnonymous {
		t.Errorf("unregistered org tier = %q, want %q", got, TierAnonymous)
	}
	if got := TierOf(&model.Organization{Registered: true, Plan: model.PlanFree}); got != TierRegistered {
		t.Errorf("free org tier = %q, want %q", got, TierRegistered)
	}
	if got := TierOf(&model.Organization{Registered: true, Plan: model.PlanPremium}); got != TierPremium {
		t.Errorf("premium org tier = %q, want %q", got, TierPremium)
	}
}

func TestResolveAnonymousIgnoresOverrides(t *testing.T) {
	d := BuiltinDefaults()
	org := &model.Organization{
		Registered:         false,
		MaxSchedules:       intPtr(100),
		CanSelectFrequency: boolPtr(true),
		CanGroupSchedules:  boolPtr(true),
	}

	p := Resolve(org, d)
	if p.MaxSchedules != d.Anonymous.MaxSchedules {
		t.Errorf("max_schedules = %d, want default %d", p.MaxSchedules, d.Anonymous.MaxSchedules)
	}
	if p.MaxItemsPerSchedule != d.Anonymous.MaxItemsPerSchedule {
		t.Errorf("max_items = %d, want default %d", p.MaxItemsPerSchedule, d.Anonymous.MaxItemsPerSchedule)
	}
	if p.CanSelectFrequency {
		t.Error("anonymous tier must not select frequency, even with an override")
	}
	if p.CanGroupSchedules {
		t.Error("anonymous tier must not group schedules, even with an override")
	}
}

func TestResolveRegistered(t *testing.T) {
	d := BuiltinDefaults()

	// No overrides: tier defaults apply.
	org := &model.Organization{Registered: true, Plan: model.PlanFree}
	p := Resolve(org, d)
	if p.MaxSchedules != d.Registered.MaxSchedules {
		t.Errorf("max_schedules = %d, want %d", p.MaxSchedules, d.Registered.MaxSchedules)
	}
	if !p.CanSelectFrequency {
		t.Error("registered tier should select frequency by default")
	}
	if p.CanGroupSchedules {
		t.Error("registered tier must never group schedules")
	}

	// Overrides win for numeric limits.
	org.MaxSchedules = intPtr(10)
	org.MaxQRAccessPerMonth = intPtr(999)
	p = Resolve(org, d)
	if p.MaxSchedules != 10 {
		t.Errorf("overridden max_schedules = %d, want 10", p.MaxSchedules)
	}
	if p.MaxQRAccessPerMonth != 999 {
		t.Errorf("overridden max_qr_access = %d, want 999", p.MaxQRAccessPerMonth)
	}

	// Grouping stays off regardless of any stored override.
	org.CanGroupSchedules = boolPtr(true)
	p = Resolve(org, d)
	if p.CanGroupSchedules {
		t.Error("grouping override must not apply to the registered tier")
	}
}

func TestResolvePremium(t *testing.T) {
	d := BuiltinDefaults()

	org := &model.Organization{Registered: true, Plan: model.PlanPremium}
	p := Resolve(org, d)
	if p.MaxSchedules != d.Premium.MaxSchedules {
		t.Errorf("max_schedules = %d, want %d", p.MaxSchedules, d.Premium.MaxSchedules)
	}
	if !p.CanSelectFrequency || !p.CanGroupSchedules {
		t.Error("premium tier capabilities should default to true")
	}

	// A premium tenant can have a capability explicitly disabled.
	org.CanGroupSchedules = boolPtr(false)
	org.MaxItemsPerSchedule = intPtr(7)
	p = Resolve(org, d)
	if p.CanGroupSchedules {
		t.Error("explicit false override should disable grouping")
	}
	if p.MaxItemsPerSchedule != 7 {
		t.Errorf("overridden max_items = %d, want 7", p.MaxItemsPerSchedule)
	}
}

func TestCheckCeiling(t *testing.T) {
	if err := CheckCeiling("schedule", 2, 3); err != nil {
		t.Errorf("below ceiling: unexpected error %v", err)
	}

	err := CheckCeiling("schedule", 3, 3)
	if err == nil {
		t.Fatal("at ceiling: expected error")
	}
	var limitErr *LimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected *LimitError, got %T", err)
	}
	if limitErr.Resource != "schedule" || limitErr.Limit != 3 {
		t.Errorf("limit error = %+v, want schedule/3", limitErr)
	}
	if want := "schedule limit reached (max 3)"; err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}

	if err := CheckCeiling("item", 10, 3); err == nil {
		t.Error("over ceiling: expected error")
	}
}
