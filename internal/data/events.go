package data

import (
	"fmt"
	"time"
)

// Severity is fixed at event creation; only Status changes afterwards.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Status follows the workflow: active -> investigating -> resolved/false_positive.
// Transitions are not enforced; any valid status may be set via update.
type Status string

const (
	StatusActive        Status = "active"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
	StatusFalsePositive Status = "false_positive"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInvestigating, StatusResolved, StatusFalsePositive:
		return true
	}
	return false
}

// DensityLevel is a coarse occupancy classification derived from a raw count.
type DensityLevel string

const (
	DensityLow      DensityLevel = "low"
	DensityMedium   DensityLevel = "medium"
	DensityHigh     DensityLevel = "high"
	DensityCritical DensityLevel = "critical"
)

// ActionKind enumerates the detectable occurrences.
type ActionKind string

const (
	ActionLoitering          ActionKind = "loitering"
	ActionAbandonedObject    ActionKind = "abandoned_object"
	ActionIntrusion          ActionKind = "intrusion"
	ActionCrowdGathering     ActionKind = "crowd_gathering"
	ActionUnauthorizedAccess ActionKind = "unauthorized_access"
	ActionWeaponDetected     ActionKind = "weapon_detected"
	ActionOvercrowding       ActionKind = "overcrowding"
	ActionCrowdDispersal     ActionKind = "crowd_dispersal"
)

// Event is a discrete detection occurrence.
// Immutable after creation except for Status.
type Event struct {
	ID           string         `json:"id"`
	Action       ActionKind     `json:"action"`
	Timestamp    time.Time      `json:"timestamp"`
	CameraID     string         `json:"cameraId"`
	Location     string         `json:"location"`
	Severity     Severity       `json:"severity"`
	Confidence   float64        `json:"confidence"`
	Description  string         `json:"description"`
	Status       Status         `json:"status"`
	CrowdCount   *int           `json:"crowdCount,omitempty"`
	DensityLevel *DensityLevel  `json:"densityLevel,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// CrowdSample is a periodic density observation, independent of Event.
// Samples are ephemeral; they live only in the bounded crowd buffer.
type CrowdSample struct {
	Timestamp time.Time      `json:"timestamp"`
	Count     int            `json:"count"`
	Density   DensityLevel   `json:"density"`
	CameraID  string         `json:"cameraId"`
	Location  string         `json:"location"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// CameraType classifies a registry entry by placement.
type CameraType string

const (
	CameraEntrance   CameraType = "entrance"
	CameraOutdoor    CameraType = "outdoor"
	CameraIndoor     CameraType = "indoor"
	CameraRestricted CameraType = "restricted"
	CameraExit       CameraType = "exit"
)

// CameraDescriptor is a static registry entry. Fleet management is out of
// scope; descriptors are not persisted.
type CameraDescriptor struct {
	ID       string     `json:"id"`
	Location string     `json:"location"`
	Type     CameraType `json:"type"`
}

// ValidationError reports a malformed create/update payload field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the fields a caller may supply on create.
func (e *Event) Validate() error {
	if e.Action == "" {
		return &ValidationError{Field: "action", Reason: "required"}
	}
	if !e.Severity.Valid() {
		return &ValidationError{Field: "severity", Reason: fmt.Sprintf("unknown value %q", e.Severity)}
	}
	if !e.Status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown value %q", e.Status)}
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return &ValidationError{Field: "confidence", Reason: "must be within [0,1]"}
	}
	if e.CrowdCount != nil && *e.CrowdCount < 0 {
		return &ValidationError{Field: "crowdCount", Reason: "must be non-negative"}
	}
	// densityLevel is derived from crowdCount, never supplied alone
	if e.DensityLevel != nil && e.CrowdCount == nil {
		return &ValidationError{Field: "densityLevel", Reason: "requires crowdCount"}
	}
	return nil
}

// EventFilter is a conjunctive equality filter plus an inclusive time range.
type EventFilter struct {
	CameraID string
	Severity Severity
	Status   Status
	Start    *time.Time
	End      *time.Time
}

// Page bounds a Find result.
type Page struct {
	Limit  int
	Offset int
}
