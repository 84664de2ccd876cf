// Package plan resolves the effective feature limits for an organization
// from its tier (anonymous, registered, premium) and per-tenant overrides.
package plan

import (
	"fmt"

	"github.com/geldimmi/geldimmi/internal/model"
)

type Tier string

const (
	TierAnonymous  Tier = "anonymous"
	TierRegistered Tier = "registered"
	TierPremium    Tier = "premium"
)

// LimitProfile is the resolved set of ceilings for one organization. It is
// computed per request and never persisted.
type LimitProfile struct {
	MaxSchedules        int  `json:"max_schedules"`
	MaxItemsPerSchedule int  `json:"max_items_per_schedule"`
	MaxQRAccessPerMonth int  `json:"max_qr_access_per_month"`
	CanSelectFrequency  bool `json:"can_select_frequency"`
	CanGroupSchedules   bool `json:"can_group_schedules"`
}

// Defaults holds the tier-wide limit profiles. They normally come from the
// settings table; BuiltinDefaults is the compiled-in fallback.
type Defaults struct {
	Anonymous  LimitProfile
	Registered LimitProfile
	Premium    LimitProfile
}

func BuiltinDefaults() Defaults {
	return Defaults{
		Anonymous: LimitProfile{
			MaxSchedules:        1,
			MaxItemsPerSchedule: 5,
			MaxQRAccessPerMonth: 50,
		},
		Registered: LimitProfile{
			MaxSchedules:        3,
			MaxItemsPerSchedule: 20,
			MaxQRAccessPerMonth: 250,
			CanSelectFrequency:  true,
		},
		Premium: LimitProfile{
			MaxSchedules:        25,
			MaxItemsPerSchedule: 200,
			MaxQRAccessPerMonth: 5000,
			CanSelectFrequency:  true,
			CanGroupSchedules:   true,
		},
	}
}

// TierOf classifies an organization. A nil organization is anonymous.
func TierOf(org *model.Organization) Tier {
	switch {
	case org == nil || !org.Registered:
		return TierAnonymous
	case org.Plan == model.PlanPremium:
		return TierPremium
	default:
		return TierRegistered
	}
}

// Resolve produces the effective limit profile for org.
//
// Anonymous organizations get the anonymous defaults verbatim; their stored
// overrides (if any) are ignored and the capability flags are always false.
// Premium organizations use override-or-default for the numeric limits and
// override-or-true for the capability flags. Registered organizations use
// override-or-default, except grouping, which is premium-only regardless of
// any override.
func Resolve(org *model.Organization, d Defaults) LimitProfile {
	switch TierOf(org) {
	case TierAnonymous:
		p := d.Anonymous
		p.CanSelectFrequency = false
		p.CanGroupSchedules = false
		return p
	case TierPremium:
		return LimitProfile{
			MaxSchedules:        orInt(org.MaxSchedules, d.Premium.MaxSchedules),
			MaxItemsPerSchedule: orInt(org.MaxItemsPerSchedule, d.Premium.MaxItemsPerSchedule),
			MaxQRAccessPerMonth: orInt(org.MaxQRAccessPerMonth, d.Premium.MaxQRAccessPerMonth),
			CanSelectFrequency:  orBool(org.CanSelectFrequency, true),
			CanGroupSchedules:   orBool(org.CanGroupSchedules, true),
		}
	default:
		return LimitProfile{
			MaxSchedules:        orInt(org.MaxSchedules, d.Registered.MaxSchedules),
			MaxItemsPerSchedule: orInt(org.MaxItemsPerSchedule, d.Registered.MaxItemsPerSchedule),
			MaxQRAccessPerMonth: orInt(org.MaxQRAccessPerMonth, d.Registered.MaxQRAccessPerMonth),
			CanSelectFrequency:  orBool(org.CanSelectFrequency, d.Registered.CanSelectFrequency),
			CanGroupSchedules:   false,
		}
	}
}

func orInt(override *int, def int) int {
	if override != nil {
		return *override
	}
	return def
}

func orBool(override *bool, def bool) bool {
	if override != nil {
		return *override
	}
	return def
}

// LimitError reports that a usage ceiling has been reached. The message
// names the specific resource and its numeric limit.
type LimitError struct {
	Resource string
	Limit    int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s limit reached (max %d)", e.Resource, e.Limit)
}

// CheckCeiling compares current usage against a ceiling. It is advisory:
// callers count rows and then insert without a transaction, so two
// concurrent requests can both pass at the boundary.
func CheckCeiling(resource string, current, limit int) error {
	if current >= limit {
		return &LimitError{Resource: resource, Limit: limit}
	}
	return nil
}
