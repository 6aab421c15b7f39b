package route

import "maps"

// Field names as exposed to callers; they double as keys of Changes.
const (
	FieldRouteID          = "route_id"
	FieldAssignedDriverID = "assignedDriver_id"
	FieldLastDriverID     = "lastDriver_id"
	FieldStatus           = "status"
	FieldAssignedAt       = "assigned_at"
	FieldUpdatedAt        = "updated_at"
	FieldStartLocation    = "start_location"
	FieldEndLocation      = "end_location"
	FieldDistance         = "distance"
	FieldDistanceUnit     = "distance_unit"
	FieldDuration         = "duration"
	FieldTimeUnit         = "time_unit"
	FieldCost             = "cost"
	FieldCurrency         = "currency"
	FieldMaxSpeed         = "max_speed"
	FieldSpeedUnit        = "speed_unit"
	FieldNotes            = "notes"
)

// Changes maps a field name to the value it was changed to. A cleared
// reference is recorded as a nil value.
type Changes map[string]any

// Has reports whether field was changed.
func (c Changes) Has(field string) bool {
	_, ok := c[field]
	return ok
}

// Clone returns an independent copy.
func (c Changes) Clone() Changes {
	return maps.Clone(c)
}
