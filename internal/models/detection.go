package models

import (
	"time"
)

// DetectionMethod indicates which fire detection path produced an event
type DetectionMethod string

const (
	MethodML    DetectionMethod = "ml"
	MethodColor DetectionMethod = "color"
)

// FireType distinguishes flame from smoke detections
type FireType string

const (
	FireTypeFire  FireType = "fire"
	FireTypeSmoke FireType = "smoke"
)

// AlertType represents different types of alerts that can be generated
type AlertType string

const (
	AlertTypeFireEmergency      AlertType = "FIRE_EMERGENCY"
	AlertTypeCriticalEvacuation AlertType = "CRITICAL_EVACUATION"
	AlertTypePresenceUpdate     AlertType = "PRESENCE_UPDATE"
)

// AlertSeverity represents the severity level of alerts
type AlertSeverity string

const (
	AlertSeverityLow      AlertSeverity = "LOW"
	AlertSeverityWarning  AlertSeverity = "WARNING"
	AlertSeverityCritical AlertSeverity = "CRITICAL"
)

// BBox is a pixel-space bounding box [x1 y1 x2 y2]
type BBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// FireEvent is produced by the fire detector for a sampled frame whose
// confidence passed the configured threshold. Immutable; consumed once
// by the alert manager.
type FireEvent struct {
	CameraID   int             `json:"camera_id"`
	FloorID    int             `json:"floor_id"`
	Room       string          `json:"room"`
	Confidence float64         `json:"confidence"`
	BBox       *BBox           `json:"bbox,omitempty"`
	FireType   FireType        `json:"fire_type"`
	Method     DetectionMethod `json:"method"`
	DetectedAt time.Time       `json:"detected_at"`
}

// PresenceEvent is produced by the face adapter for each identified
// employee in a sampled frame.
type PresenceEvent struct {
	EmployeeID int       `json:"employee_id"`
	Name       string    `json:"name"`
	FloorID    int       `json:"floor_id"`
	Room       string    `json:"room"`
	CameraID   int       `json:"camera_id"`
	Confidence float64   `json:"confidence"`
	ObservedAt time.Time `json:"observed_at"`
}

// PresenceEntry is the registry record for one employee. One entry per
// employee at any time; lifetime owned entirely by the presence tracker.
type PresenceEntry struct {
	EmployeeID int       `json:"employee_id"`
	Name       string    `json:"name"`
	FloorID    int       `json:"floor_id"`
	Room       string    `json:"room"`
	CameraID   int       `json:"camera_id"`
	Confidence float64   `json:"confidence"`
	LastSeen   time.Time `json:"last_seen"`
}

// OccupancySnapshot answers "who is on this floor right now".
type OccupancySnapshot struct {
	FloorID     int             `json:"floor_id"`
	PeopleCount int             `json:"people_count"`
	People      []PresenceEntry `json:"people"`
}

// Alert is the severity-routed record built from a fire event plus an
// occupancy snapshot, dispatched to the external sinks.
type Alert struct {
	ID          string          `json:"id"`
	AlertType   AlertType       `json:"alert_type"`
	Severity    AlertSeverity   `json:"severity"`
	FloorID     int             `json:"floor_id"`
	CameraID    int             `json:"camera_id"`
	Room        string          `json:"room"`
	FireType    FireType        `json:"fire_type,omitempty"`
	Method      string          `json:"method,omitempty"`
	Confidence  float64         `json:"confidence"`
	PeopleCount int             `json:"people_count"`
	People      []PresenceEntry `json:"people_details,omitempty"`
	Message     string          `json:"message"`
	DetectedAt  time.Time       `json:"detected_at"`
	CreatedAt   time.Time       `json:"created_at"`

	// Delivery metadata
	RequiresEvacuation bool                   `json:"requires_evacuation"`
	Priority           string                 `json:"priority"`
	Metadata           map[string]interface{} `json:"metadata,omitempty"`
}

// OccupancyProvider answers floor occupancy queries for the alert manager.
type OccupancyProvider interface {
	Occupancy(floorID int) OccupancySnapshot
}

// MessagePublisher interface for publishing alerts to the message bus
type MessagePublisher interface {
	Publish(subject string, data interface{}) error
}
