package classify

import (
	"fmt"

	"github.com/technosupport/ts-sentinel/internal/data"
)

// ActionProfile declares the static properties of an action kind. Severity is
// a property of the kind itself and is never recomputed from confidence or
// crowd count.
type ActionProfile struct {
	Severity    data.Severity
	Weight      float64
	Description string
	Crowd       bool
}

// Actions is the fixed detection table. Weights sum to ~1.35 and are used
// as-is for selection; relative bias matches the stated weights without
// renormalization.
var Actions = map[data.ActionKind]ActionProfile{
	data.ActionLoitering:          {Severity: data.SeverityMedium, Weight: 0.25, Description: "Person loitering in monitored area"},
	data.ActionAbandonedObject:    {Severity: data.SeverityHigh, Weight: 0.15, Description: "Unattended object detected"},
	data.ActionIntrusion:          {Severity: data.SeverityCritical, Weight: 0.10, Description: "Perimeter intrusion detected"},
	data.ActionCrowdGathering:     {Severity: data.SeverityMedium, Weight: 0.30, Description: "Crowd gathering detected in zone", Crowd: true},
	data.ActionUnauthorizedAccess: {Severity: data.SeverityHigh, Weight: 0.15, Description: "Unauthorized access attempt"},
	data.ActionWeaponDetected:     {Severity: data.SeverityCritical, Weight: 0.05, Description: "Possible weapon detected"},
	data.ActionOvercrowding:       {Severity: data.SeverityHigh, Weight: 0.20, Description: "High crowd density detected", Crowd: true},
	data.ActionCrowdDispersal:     {Severity: data.SeverityLow, Weight: 0.15, Description: "Crowd dispersing from zone", Crowd: true},
}

// ActionOrder fixes iteration order for weighted selection.
var ActionOrder = []data.ActionKind{
	data.ActionLoitering,
	data.ActionAbandonedObject,
	data.ActionIntrusion,
	data.ActionCrowdGathering,
	data.ActionUnauthorizedAccess,
	data.ActionWeaponDetected,
	data.ActionOvercrowding,
	data.ActionCrowdDispersal,
}

// SeverityFor returns the declared base severity of an action kind.
// An unknown kind is a programmer error and panics.
func SeverityFor(kind data.ActionKind) data.Severity {
	p, ok := Actions[kind]
	if !ok {
		panic(fmt.Sprintf("classify: unknown action kind %q", kind))
	}
	return p.Severity
}

// DescriptionFor returns the fixed human-readable description for a kind.
func DescriptionFor(kind data.ActionKind) string {
	p, ok := Actions[kind]
	if !ok {
		panic(fmt.Sprintf("classify: unknown action kind %q", kind))
	}
	return p.Description
}

// IsCrowdAction reports whether the kind carries crowd count and density.
func IsCrowdAction(kind data.ActionKind) bool {
	return Actions[kind].Crowd
}

// TotalWeight is the raw sum of all selection weights.
func TotalWeight() float64 {
	var sum float64
	for _, k := range ActionOrder {
		sum += Actions[k].Weight
	}
	return sum
}
