package cameras

import (
	"time"

	"github.com/technosupport/ts-sentinel/internal/data"
)

// Registry is the static camera fleet the generator draws sources from.
// Fleet management is an external concern; the registry never changes at
// runtime.
type Registry struct {
	list []data.CameraDescriptor
}

// DefaultRegistry returns the built-in synthetic fleet.
func DefaultRegistry() *Registry {
	return &Registry{list: []data.CameraDescriptor{
		{ID: "CAM001", Location: "Main Entrance", Type: data.CameraEntrance},
		{ID: "CAM002", Location: "Parking Lot", Type: data.CameraOutdoor},
		{ID: "CAM003", Location: "Lobby", Type: data.CameraIndoor},
		{ID: "CAM004", Location: "Server Room", Type: data.CameraRestricted},
		{ID: "CAM005", Location: "Loading Dock", Type: data.CameraOutdoor},
		{ID: "CAM006", Location: "Emergency Exit", Type: data.CameraExit},
	}}
}

func NewRegistry(list []data.CameraDescriptor) *Registry {
	return &Registry{list: list}
}

// All returns the descriptors in registry order.
func (r *Registry) All() []data.CameraDescriptor {
	out := make([]data.CameraDescriptor, len(r.list))
	copy(out, r.list)
	return out
}

func (r *Registry) Len() int { return len(r.list) }

// At returns the descriptor at index i; the generator picks uniformly by index.
func (r *Registry) At(i int) data.CameraDescriptor { return r.list[i] }

// CameraStatus is the synthesized view served by the status endpoint.
// Online/offline is inferred from recent crowd activity, not from any real
// camera transport.
type CameraStatus struct {
	data.CameraDescriptor
	Online     bool       `json:"online"`
	CrowdCount int        `json:"crowdCount"`
	LastSeen   *time.Time `json:"lastSeen,omitempty"`
}
