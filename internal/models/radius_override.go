package models

import (
	"time"

	"github.com/google/uuid"
)

/*
RadiusOverride temporarily replaces an employee's default service
radius. It is effective iff IsActive and the instant falls in
[StartTime, EndTime). When several overrides are effective at once the
most recently created one wins; see services.EffectiveRadius.
*/
type RadiusOverride struct {
	Versioned

	ID         uuid.UUID `json:"id"`
	EmployeeID uuid.UUID `json:"employee_id"`

	OverrideRadiusMiles int    `json:"override_radius_miles"`
	Reason              string `json:"reason"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	IsActive  bool      `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *RadiusOverride) GetID() string {
	return o.ID.String()
}

// EffectiveAt reports whether the override applies at the given instant.
func (o *RadiusOverride) EffectiveAt(at time.Time) bool {
	return o.IsActive && !at.Before(o.StartTime) && at.Before(o.EndTime)
}
