// Package activitylog holds the wire form of activity feed entries shared by
// the broker publishers, and Tee, which forwards entries to several sinks.
package activitylog

import (
	"time"

	"dispatch/internal/core/domain/model/activity"
)

// DriverRef identifies a driver in a published event.
type DriverRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Event is the JSON payload published for every activity entry.
type Event struct {
	ID         string     `json:"id"`
	RouteID    string     `json:"route_id"`
	Status     string     `json:"status"`
	Driver     *DriverRef `json:"driver,omitempty"`
	LastDriver *DriverRef `json:"last_driver,omitempty"`
	ActionTime time.Time  `json:"action_time"`
}

func NewEvent(entry activity.Entry) Event {
	return Event{
		ID:         entry.ID().String(),
		RouteID:    entry.RouteID().String(),
		Status:     entry.Status().String(),
		Driver:     driverRef(entry.Driver()),
		LastDriver: driverRef(entry.LastDriver()),
		ActionTime: entry.ActionTime().UTC(),
	}
}

func driverRef(s *activity.Snapshot) *DriverRef {
	if s == nil {
		return nil
	}
	return &DriverRef{ID: s.ID.String(), Name: s.Name}
}
