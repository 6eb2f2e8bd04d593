package domain

import "slices"

// AppChange pairs the origin and target specifications of a changed
// application.
type AppChange struct {
	Origin AppSpec
	Target AppSpec
}

// PureResize reports whether the only difference between origin and
// target is the instance count.
func (c AppChange) PureResize() bool {
	resized := c.Origin
	resized.Instances = c.Target.Instances
	return resized.Equal(c.Target)
}

// StateDelta classifies every application id in the union of two
// snapshots. Unchanged apps produce no actions and are excluded from
// graph construction; they are kept here for observability.
type StateDelta struct {
	Added     []AppSpec
	Removed   []AppSpec
	Changed   []AppChange
	Unchanged []AppSpec
}

// Empty reports whether the delta contains no actionable change.
func (d StateDelta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// ComputeDelta flattens both snapshots and classifies every id as
// added, removed, changed, or unchanged. Each slice is sorted by id so
// identical inputs always produce identical deltas.
func ComputeDelta(origin, target Group) (StateDelta, error) {
	originApps, err := origin.Flatten()
	if err != nil {
		return StateDelta{}, err
	}
	targetApps, err := target.Flatten()
	if err != nil {
		return StateDelta{}, err
	}

	ids := make([]AppID, 0, len(originApps)+len(targetApps))
	for id := range originApps {
		ids = append(ids, id)
	}
	for id := range targetApps {
		if _, inOrigin := originApps[id]; !inOrigin {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	var delta StateDelta
	for _, id := range ids {
		o, inOrigin := originApps[id]
		t, inTarget := targetApps[id]
		switch {
		case !inOrigin:
			delta.Added = append(delta.Added, t)
		case !inTarget:
			delta.Removed = append(delta.Removed, o)
		case o.Equal(t):
			delta.Unchanged = append(delta.Unchanged, t)
		default:
			delta.Changed = append(delta.Changed, AppChange{Origin: o, Target: t})
		}
	}
	return delta, nil
}
