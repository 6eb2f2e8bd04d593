package domain

import "fmt"

// Group is a recursive container of application specifications: the
// desired-state tree of one cluster snapshot. A Group owns its Apps
// directly and nests child Groups.
type Group struct {
	ID     AppID
	Apps   []AppSpec
	Groups []Group
}

// Flatten walks the subtree depth-first and returns the union of all
// directly-owned specifications keyed by id. A duplicate id anywhere in
// the tree violates the snapshot invariant and fails with
// [ErrInvalidArgument].
func (g Group) Flatten() (map[AppID]AppSpec, error) {
	out := make(map[AppID]AppSpec)
	if err := g.flattenInto(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g Group) flattenInto(out map[AppID]AppSpec) error {
	for _, app := range g.Apps {
		if _, exists := out[app.ID]; exists {
			return fmt.Errorf("%w: duplicate app id %q in state tree", ErrInvalidArgument, app.ID)
		}
		out[app.ID] = app
	}
	for _, child := range g.Groups {
		if err := child.flattenInto(out); err != nil {
			return err
		}
	}
	return nil
}
