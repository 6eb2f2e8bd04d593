package domain

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// AppID is the hierarchical path naming an application specification,
// e.g. "/payments/api". IDs are unique within one state tree snapshot.
type AppID string

// Segments splits the path into its name segments. The root path has
// no segments.
func (id AppID) Segments() []string {
	trimmed := strings.Trim(string(id), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// Parent returns the path one level up, or "/" for top-level ids.
func (id AppID) Parent() AppID {
	segs := id.Segments()
	if len(segs) <= 1 {
		return "/"
	}
	return AppID("/" + strings.Join(segs[:len(segs)-1], "/"))
}

// Join appends a name segment to the path.
func (id AppID) Join(name string) AppID {
	if id == "/" || id == "" {
		return AppID("/" + name)
	}
	return AppID(string(id) + "/" + name)
}

// RunSpec is the opaque declarative payload describing how an
// application runs. The planner never interprets it; it only
// participates in spec equality.
type RunSpec struct {
	Raw json.RawMessage
}

// Equal reports byte equality of the raw payloads.
func (r RunSpec) Equal(other RunSpec) bool {
	return bytes.Equal(r.Raw, other.Raw)
}

// UpgradePolicy governs how many old and new instances may coexist
// while an application restarts. MinimumHealthCapacity is the fraction
// of the instance count guaranteed to stay available through a restart
// phase. MaximumOverCapacity bounds extra instances beyond the target;
// it is enforced by the executor, not the planner, and is carried
// through unchanged.
type UpgradePolicy struct {
	MinimumHealthCapacity float64
	MaximumOverCapacity   *float64
}

// Equal compares the two policies, treating MaximumOverCapacity as a
// value (nil equals nil only).
func (p UpgradePolicy) Equal(other UpgradePolicy) bool {
	if p.MinimumHealthCapacity != other.MinimumHealthCapacity {
		return false
	}
	if (p.MaximumOverCapacity == nil) != (other.MaximumOverCapacity == nil) {
		return false
	}
	if p.MaximumOverCapacity != nil && *p.MaximumOverCapacity != *other.MaximumOverCapacity {
		return false
	}
	return true
}

// AppSpec is one application's desired state within a snapshot.
type AppSpec struct {
	ID           AppID
	Run          RunSpec
	Instances    int
	Version      time.Time
	Dependencies []AppID
	Upgrade      UpgradePolicy
}

// Equal reports whether two specifications match in every field.
// Dependency order is not significant.
func (s AppSpec) Equal(other AppSpec) bool {
	if s.ID != other.ID || s.Instances != other.Instances {
		return false
	}
	if !s.Version.Equal(other.Version) {
		return false
	}
	if !s.Run.Equal(other.Run) {
		return false
	}
	if !s.Upgrade.Equal(other.Upgrade) {
		return false
	}
	return slices.Equal(sortedDeps(s.Dependencies), sortedDeps(other.Dependencies))
}

func sortedDeps(deps []AppID) []AppID {
	out := make([]AppID, len(deps))
	copy(out, deps)
	slices.Sort(out)
	return out
}
