package domain

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func graphApp(id AppID, deps ...AppID) AppSpec {
	return AppSpec{
		ID:           id,
		Run:          RunSpec{Raw: json.RawMessage(`{}`)},
		Instances:    1,
		Version:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Dependencies: deps,
	}
}

func TestChangeGraph_EdgesOnlyBetweenChangingApps(t *testing.T) {
	delta := StateDelta{
		Changed: []AppChange{
			{Origin: graphApp("/a"), Target: graphApp("/a", "/b", "/stable", "/nowhere")},
		},
		Added: []AppSpec{graphApp("/b")},
	}

	g := newChangeGraph(delta)

	if len(g.ids) != 2 {
		t.Fatalf("graph has %d nodes, want 2", len(g.ids))
	}
	a, b := g.index["/a"], g.index["/b"]
	if !reflect.DeepEqual(g.deps[a], []int{b}) {
		t.Errorf("deps[/a] = %v, want only /b", g.deps[a])
	}
	if !reflect.DeepEqual(g.rdeps[b], []int{a}) {
		t.Errorf("rdeps[/b] = %v, want only /a", g.rdeps[b])
	}
}

func TestChangeGraph_RemovedAppUsesOriginDependencies(t *testing.T) {
	delta := StateDelta{
		Removed: []AppSpec{graphApp("/gone", "/base")},
		Changed: []AppChange{
			{Origin: graphApp("/base"), Target: graphApp("/base")},
		},
	}

	g := newChangeGraph(delta)

	gone, base := g.index["/gone"], g.index["/base"]
	if !reflect.DeepEqual(g.deps[gone], []int{base}) {
		t.Errorf("deps[/gone] = %v, want edge to /base from the origin spec", g.deps[gone])
	}
}

func TestChangeGraph_DegreeZeroIsSingletonComponent(t *testing.T) {
	delta := StateDelta{
		Added: []AppSpec{graphApp("/alone")},
		Changed: []AppChange{
			{Origin: graphApp("/x"), Target: graphApp("/x", "/y")},
			{Origin: graphApp("/y"), Target: graphApp("/y")},
		},
	}

	g := newChangeGraph(delta)

	if d := g.degree(g.index["/alone"]); d != 0 {
		t.Errorf("degree(/alone) = %d, want 0", d)
	}
	if d := g.degree(g.index["/y"]); d == 0 {
		t.Error("degree(/y) = 0; a pure dependency still participates in its component")
	}
}

func TestChangeGraph_FindCycleWitness(t *testing.T) {
	delta := StateDelta{
		Changed: []AppChange{
			{Origin: graphApp("/a"), Target: graphApp("/a", "/b")},
			{Origin: graphApp("/b"), Target: graphApp("/b", "/c")},
			{Origin: graphApp("/c"), Target: graphApp("/c", "/a")},
		},
	}

	g := newChangeGraph(delta)
	path := g.findCycle()
	if path == nil {
		t.Fatal("findCycle returned nil for a cyclic graph")
	}
	if path[0] != path[len(path)-1] {
		t.Errorf("witness %v does not close on itself", path)
	}
	if len(path) != 4 {
		t.Errorf("witness %v, want the 3-cycle plus closing id", path)
	}

	// The witness is deterministic.
	for range 5 {
		if again := newChangeGraph(delta).findCycle(); !reflect.DeepEqual(path, again) {
			t.Fatalf("witness changed between runs: %v vs %v", path, again)
		}
	}
}

func TestChangeGraph_AcyclicHasNoCycle(t *testing.T) {
	delta := StateDelta{
		Changed: []AppChange{
			{Origin: graphApp("/a"), Target: graphApp("/a", "/b", "/c")},
			{Origin: graphApp("/b"), Target: graphApp("/b", "/c")},
			{Origin: graphApp("/c"), Target: graphApp("/c")},
		},
	}

	if path := newChangeGraph(delta).findCycle(); path != nil {
		t.Fatalf("findCycle = %v for an acyclic graph", path)
	}
}

func TestChangeGraph_SelfDependencyIsIgnored(t *testing.T) {
	delta := StateDelta{
		Changed: []AppChange{
			{Origin: graphApp("/a"), Target: graphApp("/a", "/a")},
		},
	}

	g := newChangeGraph(delta)
	if d := g.degree(g.index["/a"]); d != 0 {
		t.Errorf("self-dependency produced %d edges, want 0", d)
	}
}
