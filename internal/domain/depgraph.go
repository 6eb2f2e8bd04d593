package domain

import "slices"

type changeKind int

const (
	changeAdded changeKind = iota
	changeRemoved
	changeChanged
)

// changeGraph is the directed dependency graph over exactly the
// changing applications of a delta. Nodes are arena-indexed in sorted
// id order; an edge app->dep exists iff dep appears in app's declared
// dependency set and dep is itself changing. Dependencies on unaffected
// or unknown ids impose no ordering and are dropped.
type changeGraph struct {
	ids   []AppID
	index map[AppID]int
	kinds []changeKind

	// origin holds the origin spec for removed and changed nodes;
	// target holds the target spec for added and changed nodes.
	origin []AppSpec
	target []AppSpec

	deps  [][]int // app -> its dependencies, sorted ascending
	rdeps [][]int // dependency -> its consumers, sorted ascending
}

func newChangeGraph(delta StateDelta) *changeGraph {
	n := len(delta.Added) + len(delta.Removed) + len(delta.Changed)
	g := &changeGraph{
		ids:    make([]AppID, 0, n),
		index:  make(map[AppID]int, n),
		kinds:  make([]changeKind, n),
		origin: make([]AppSpec, n),
		target: make([]AppSpec, n),
		deps:   make([][]int, n),
		rdeps:  make([][]int, n),
	}

	for _, app := range delta.Added {
		g.ids = append(g.ids, app.ID)
	}
	for _, app := range delta.Removed {
		g.ids = append(g.ids, app.ID)
	}
	for _, change := range delta.Changed {
		g.ids = append(g.ids, change.Target.ID)
	}
	slices.Sort(g.ids)
	for i, id := range g.ids {
		g.index[id] = i
	}

	for _, app := range delta.Added {
		i := g.index[app.ID]
		g.kinds[i] = changeAdded
		g.target[i] = app
	}
	for _, app := range delta.Removed {
		i := g.index[app.ID]
		g.kinds[i] = changeRemoved
		g.origin[i] = app
	}
	for _, change := range delta.Changed {
		i := g.index[change.Target.ID]
		g.kinds[i] = changeChanged
		g.origin[i] = change.Origin
		g.target[i] = change.Target
	}

	for i := range g.ids {
		// The applicable spec sources the dependency set: target for
		// added and changed apps, origin for removed ones.
		spec := g.target[i]
		if g.kinds[i] == changeRemoved {
			spec = g.origin[i]
		}
		for _, dep := range sortedDeps(spec.Dependencies) {
			j, changing := g.index[dep]
			if !changing || j == i {
				continue
			}
			if slices.Contains(g.deps[i], j) {
				continue
			}
			g.deps[i] = append(g.deps[i], j)
			g.rdeps[j] = append(g.rdeps[j], i)
		}
	}
	for i := range g.rdeps {
		slices.Sort(g.rdeps[i])
	}
	return g
}

// degree is the total number of edges incident to the node. A node of
// degree zero is a singleton connected component and takes the fast
// path.
func (g *changeGraph) degree(n int) int {
	return len(g.deps[n]) + len(g.rdeps[n])
}

// findCycle returns one deterministic witness cycle as an id path
// starting and ending at the same id, or nil if the graph is acyclic.
// DFS visits nodes and edges in canonical order so the witness is
// stable across runs.
func (g *changeGraph) findCycle() []AppID {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make([]int, len(g.ids))
	parent := make([]int, len(g.ids))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int
	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range g.deps[u] {
			if color[v] == white {
				parent[v] = u
				if dfs(v) {
					return true
				}
				continue
			}
			if color[v] == gray {
				// Back-edge u -> v closes a cycle v ... u -> v.
				cycle = append(cycle, v)
				for cur := u; cur != -1 && cur != v; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := range g.ids {
		if color[i] == white && dfs(i) {
			break
		}
	}
	if cycle == nil {
		return nil
	}

	// dfs records the path tail-first; reverse into forward order.
	path := make([]AppID, 0, len(cycle))
	for i := len(cycle) - 1; i >= 0; i-- {
		path = append(path, g.ids[cycle[i]])
	}
	return path
}
