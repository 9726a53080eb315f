package domain

import "time"

// PlanTier enumerates billing plans.
type PlanTier string

const (
	PlanFree PlanTier = "free"
	PlanPro  PlanTier = "pro"
)

// ParsePlanTier normalizes a stored plan value, defaulting to free when the
// value is empty or unrecognized.
func ParsePlanTier(raw string) PlanTier {
	if PlanTier(raw) == PlanPro {
		return PlanPro
	}
	return PlanFree
}

// User represents an account within the platform.
type User struct {
	ID        string
	Email     string
	Name      string
	Locale    string
	Plan      PlanTier
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFree reports whether the user is on the free plan.
func (u User) IsFree() bool {
	return u.Plan != PlanPro
}
