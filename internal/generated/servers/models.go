package servers

import "time"

// Error defines model for Error.
type Error struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
}

// NewRoute defines model for NewRoute.
type NewRoute struct {
	Cost          *float64 `json:"cost,omitempty"`
	Currency      *string  `json:"currency,omitempty"`
	Distance      *float64 `json:"distance,omitempty"`
	DistanceUnit  *string  `json:"distance_unit,omitempty"`
	Duration      *float64 `json:"duration,omitempty"`
	EndLocation   *string  `json:"end_location,omitempty"`
	MaxSpeed      *float64 `json:"max_speed,omitempty"`
	Notes         *string  `json:"notes,omitempty"`
	RouteId       string   `json:"route_id"`
	SpeedUnit     *string  `json:"speed_unit,omitempty"`
	StartLocation *string  `json:"start_location,omitempty"`
	TimeUnit      *string  `json:"time_unit,omitempty"`
}

// Route defines model for Route.
type Route struct {
	AssignedDriverId *string    `json:"assignedDriver_id"`
	AssignedAt       *time.Time `json:"assigned_at"`
	Cost             float64    `json:"cost"`
	Currency         string     `json:"currency"`
	Distance         float64    `json:"distance"`
	DistanceUnit     string     `json:"distance_unit"`
	Duration         float64    `json:"duration"`
	EndLocation      string     `json:"end_location"`
	LastDriverId     *string    `json:"lastDriver_id"`
	MaxSpeed         float64    `json:"max_speed"`
	Notes            string     `json:"notes"`
	RouteId          string     `json:"route_id"`
	SpeedUnit        string     `json:"speed_unit"`
	StartLocation    string     `json:"start_location"`
	Status           string     `json:"status"`
	TimeUnit         string     `json:"time_unit"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// RouteUpdated defines model for RouteUpdated.
type RouteUpdated struct {
	Message string                 `json:"message"`
	Route   map[string]interface{} `json:"route"`
}

// NewDriver defines model for NewDriver.
type NewDriver struct {
	Available *bool  `json:"available,omitempty"`
	DriverId  string `json:"driver_id"`
	Name      string `json:"name"`
}

// Driver defines model for Driver.
type Driver struct {
	AssignedRouteId    *string          `json:"assignedRoute_id"`
	AssignedAt         *time.Time       `json:"assigned_at"`
	DriverId           string           `json:"driver_id"`
	Name               string           `json:"name"`
	PastAssignedRoutes []PastAssignment `json:"pastAssignedRoutes"`
	Status             string           `json:"status"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// PastAssignment defines model for PastAssignment.
type PastAssignment struct {
	AssignedAt    time.Time `json:"assigned_at"`
	EndLocation   string    `json:"endLocation"`
	RouteId       string    `json:"route_id"`
	StartLocation string    `json:"startLocation"`
	UnassignedAt  time.Time `json:"unassigned_at"`
}

// DriverRef defines model for DriverRef.
type DriverRef struct {
	Id   string  `json:"id"`
	Name *string `json:"name,omitempty"`
}

// ActivityEntry defines model for ActivityEntry.
type ActivityEntry struct {
	ActionTime time.Time  `json:"action_time"`
	Driver     *DriverRef `json:"driver,omitempty"`
	Id         string     `json:"id"`
	LastDriver *DriverRef `json:"last_driver,omitempty"`
	RouteId    string     `json:"route_id"`
	Status     string     `json:"status"`
}

// GetRouteActivityParams defines parameters for GetRouteActivity.
type GetRouteActivityParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// CreateRouteJSONRequestBody defines body for CreateRoute for application/json ContentType.
type CreateRouteJSONRequestBody = NewRoute

// CreateDriverJSONRequestBody defines body for CreateDriver for application/json ContentType.
type CreateDriverJSONRequestBody = NewDriver
