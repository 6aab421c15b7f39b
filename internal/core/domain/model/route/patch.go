package route

import "time"

// Details are the caller-writable scalar attributes of a route. None of them
// takes part in the assignment relation.
type Details struct {
	StartLocation string
	EndLocation   string
	Distance      float64
	DistanceUnit  string
	Duration      float64
	TimeUnit      string
	Cost          float64
	Currency      string
	MaxSpeed      float64
	SpeedUnit     string
	Notes         string
}

// Patch carries the whitelisted scalar fields of an update request.
// A nil field was not supplied.
type Patch struct {
	StartLocation *string
	EndLocation   *string
	Distance      *float64
	DistanceUnit  *string
	Duration      *float64
	TimeUnit      *string
	Cost          *float64
	Currency      *string
	MaxSpeed      *float64
	SpeedUnit     *string
	Notes         *string
}

// IsEmpty reports whether the patch supplies no field at all.
func (p Patch) IsEmpty() bool {
	return p.StartLocation == nil && p.EndLocation == nil &&
		p.Distance == nil && p.DistanceUnit == nil &&
		p.Duration == nil && p.TimeUnit == nil &&
		p.Cost == nil && p.Currency == nil &&
		p.MaxSpeed == nil && p.SpeedUnit == nil &&
		p.Notes == nil
}

// ApplyPatch copies every supplied field that differs from the current value
// and records it in Changes. updated_at is stamped when anything changed.
// Returns whether any field changed.
func (r *Route) ApplyPatch(p Patch, now time.Time) bool {
	d := &r.details
	changed := false
	changed = patchField(r, FieldStartLocation, &d.StartLocation, p.StartLocation) || changed
	changed = patchField(r, FieldEndLocation, &d.EndLocation, p.EndLocation) || changed
	changed = patchField(r, FieldDistance, &d.Distance, p.Distance) || changed
	changed = patchField(r, FieldDistanceUnit, &d.DistanceUnit, p.DistanceUnit) || changed
	changed = patchField(r, FieldDuration, &d.Duration, p.Duration) || changed
	changed = patchField(r, FieldTimeUnit, &d.TimeUnit, p.TimeUnit) || changed
	changed = patchField(r, FieldCost, &d.Cost, p.Cost) || changed
	changed = patchField(r, FieldCurrency, &d.Currency, p.Currency) || changed
	changed = patchField(r, FieldMaxSpeed, &d.MaxSpeed, p.MaxSpeed) || changed
	changed = patchField(r, FieldSpeedUnit, &d.SpeedUnit, p.SpeedUnit) || changed
	changed = patchField(r, FieldNotes, &d.Notes, p.Notes) || changed

	if changed {
		r.touch(now)
	}
	return changed
}

func patchField[T comparable](r *Route, name string, current *T, next *T) bool {
	if next == nil || *next == *current {
		return false
	}
	*current = *next
	r.changes[name] = *next
	return true
}
