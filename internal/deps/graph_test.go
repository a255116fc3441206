//nolint:testpackage // Tests require internal access for thorough testing
package deps

import (
	"errors"
	"testing"
	"time"

	"github.com/bhirmbani/kwaci-grow-sub003/internal/task"
)

func makeTask(id string, status task.Status, deps ...string) *task.Task {
	return &task.Task{
		ID:        id,
		PlanID:    "plan-1",
		Title:     "Task " + id,
		Status:    status,
		Category:  task.CategoryProduction,
		Priority:  task.PriorityMedium,
		CreatedAt: time.Now(),
		DependsOn: deps,
	}
}

func makeTaskAt(id string, createdAt time.Time, status task.Status, deps ...string) *task.Task {
	t := makeTask(id, status, deps...)
	t.CreatedAt = createdAt
	return t
}

func TestCanStart(t *testing.T) {
	tasks := []*task.Task{
		makeTask("a", task.StatusPending),
		makeTask("b", task.StatusPending, "a"),     // blocked: a pending
		makeTask("c", task.StatusCompleted),
		makeTask("d", task.StatusPending, "c"),     // free: c completed
		makeTask("e", task.StatusPending, "ghost"), // blocked: dependency missing
		makeTask("f", task.StatusPending, "c", "a"),
	}

	g := NewGraph(tasks)

	tests := []struct {
		id       string
		canStart bool
	}{
		{"a", true},      // no dependencies
		{"b", false},     // depends on pending task
		{"c", true},      // no dependencies
		{"d", true},      // depends on completed task
		{"e", false},     // unknown dependency fails closed
		{"f", false},     // one of two met
		{"ghost", false}, // unknown task
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := g.CanStart(tt.id); got != tt.canStart {
				t.Errorf("CanStart(%q) = %v, want %v", tt.id, got, tt.canStart)
			}
		})
	}
}

func TestUnmet(t *testing.T) {
	tasks := []*task.Task{
		makeTask("a", task.StatusPending),
		makeTask("b", task.StatusInProgress),
		makeTask("c", task.StatusCompleted),
		makeTask("d", task.StatusPending, "a", "b", "c", "ghost"),
	}

	g := NewGraph(tasks)

	unmet := g.Unmet("d")
	want := []string{"a", "b", "ghost"}
	if len(unmet) != len(want) {
		t.Fatalf("Unmet(d) = %v, want %v", unmet, want)
	}
	for i := range want {
		if unmet[i] != want[i] {
			t.Errorf("Unmet(d)[%d] = %q, want %q", i, unmet[i], want[i])
		}
	}
}

func TestDependents(t *testing.T) {
	now := time.Now()
	tasks := []*task.Task{
		makeTaskAt("a", now, task.StatusPending),
		makeTaskAt("b", now.Add(1*time.Hour), task.StatusPending, "a"),
		makeTaskAt("c", now.Add(2*time.Hour), task.StatusPending, "a"),
		makeTaskAt("d", now.Add(3*time.Hour), task.StatusPending, "b"),
	}

	g := NewGraph(tasks)

	deps := g.Dependents("a")
	if len(deps) != 2 {
		t.Fatalf("Dependents(a) length = %d, want 2", len(deps))
	}
	if deps[0].ID != "b" || deps[1].ID != "c" {
		t.Errorf("Dependents(a) = [%s %s], want [b c]", deps[0].ID, deps[1].ID)
	}

	if n := len(g.Dependents("b")); n != 1 {
		t.Fatalf("Dependents(b) length = %d, want 1", n)
	}
	if n := len(g.Dependents("d")); n != 0 {
		t.Fatalf("Dependents(d) length = %d, want 0", n)
	}
}

func TestWouldCreateCycle(t *testing.T) {
	// a -> b -> c (a depends on b, b depends on c)
	tasks := []*task.Task{
		makeTask("a", task.StatusPending, "b"),
		makeTask("b", task.StatusPending, "c"),
		makeTask("c", task.StatusPending),
	}

	g := NewGraph(tasks)

	tests := []struct {
		name     string
		id       string
		proposed []string
		cycle    bool
	}{
		{"self loop", "a", []string{"a"}, true},
		{"direct back edge", "c", []string{"b"}, true},
		{"transitive back edge", "c", []string{"a"}, true},
		{"already reachable forward", "a", []string{"c"}, false},
		{"unknown dependency", "c", []string{"d"}, false},
		{"mixed set with one bad edge", "c", []string{"d", "a"}, true},
		{"empty set", "a", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.WouldCreateCycle(tt.id, tt.proposed); got != tt.cycle {
				t.Errorf("WouldCreateCycle(%q, %v) = %v, want %v", tt.id, tt.proposed, got, tt.cycle)
			}
		})
	}
}

func TestValidateDependencies(t *testing.T) {
	tasks := []*task.Task{
		makeTask("a", task.StatusPending, "b"),
		makeTask("b", task.StatusPending),
		makeTask("c", task.StatusPending),
	}

	g := NewGraph(tasks)

	t.Run("valid set", func(t *testing.T) {
		if err := g.ValidateDependencies("c", []string{"a", "b"}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("unknown dependency", func(t *testing.T) {
		err := g.ValidateDependencies("c", []string{"ghost"})
		var unknown UnknownDependencyError
		if !errors.As(err, &unknown) {
			t.Fatalf("expected UnknownDependencyError, got %v", err)
		}
		if unknown.DepID != "ghost" {
			t.Errorf("DepID = %q, want %q", unknown.DepID, "ghost")
		}
	})

	t.Run("self loop", func(t *testing.T) {
		err := g.ValidateDependencies("c", []string{"c"})
		var cycle CycleError
		if !errors.As(err, &cycle) {
			t.Fatalf("expected CycleError, got %v", err)
		}
		if len(cycle.Path) != 2 || cycle.Path[0] != "c" || cycle.Path[1] != "c" {
			t.Errorf("Path = %v, want [c c]", cycle.Path)
		}
	})

	t.Run("transitive cycle reports path", func(t *testing.T) {
		err := g.ValidateDependencies("b", []string{"a"})
		var cycle CycleError
		if !errors.As(err, &cycle) {
			t.Fatalf("expected CycleError, got %v", err)
		}
		// b would depend on a, and a already depends on b
		want := []string{"b", "a", "b"}
		if len(cycle.Path) != len(want) {
			t.Fatalf("Path = %v, want %v", cycle.Path, want)
		}
		for i := range want {
			if cycle.Path[i] != want[i] {
				t.Errorf("Path[%d] = %q, want %q", i, cycle.Path[i], want[i])
			}
		}
	})
}

func TestTopologicalOrder(t *testing.T) {
	now := time.Now()
	tasks := []*task.Task{
		makeTaskAt("d", now.Add(3*time.Hour), task.StatusPending, "b", "c"),
		makeTaskAt("b", now.Add(1*time.Hour), task.StatusPending, "a"),
		makeTaskAt("c", now.Add(2*time.Hour), task.StatusPending, "a"),
		makeTaskAt("a", now, task.StatusPending),
	}

	g := NewGraph(tasks)

	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder failed: %v", err)
	}
	if len(order) != 4 {
		t.Fatalf("order length = %d, want 4", len(order))
	}

	position := map[string]int{}
	for i, tk := range order {
		position[tk.ID] = i
	}

	pairs := [][2]string{{"a", "b"}, {"a", "c"}, {"a", "d"}, {"b", "d"}, {"c", "d"}}
	for _, p := range pairs {
		if position[p[0]] >= position[p[1]] {
			t.Errorf("%s should come before %s, got order %v", p[0], p[1], ids(order))
		}
	}

	// Creation time breaks the b/c tie
	if position["b"] >= position["c"] {
		t.Errorf("b (older) should come before c, got order %v", ids(order))
	}
}

func TestTopologicalOrderDeterministic(t *testing.T) {
	now := time.Now()
	// Four independent tasks, two sharing a creation time
	tasks := []*task.Task{
		makeTaskAt("w", now.Add(2*time.Hour), task.StatusPending),
		makeTaskAt("z", now, task.StatusPending),
		makeTaskAt("y", now, task.StatusPending),
		makeTaskAt("x", now.Add(1*time.Hour), task.StatusPending),
	}

	g := NewGraph(tasks)

	first, err := g.TopologicalOrder()
	if err != nil {
		t.Fatalf("TopologicalOrder failed: %v", err)
	}

	want := []string{"y", "z", "x", "w"} // creation time, then id
	got := ids(first)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	for run := 0; run < 10; run++ {
		again, err := NewGraph(tasks).TopologicalOrder()
		if err != nil {
			t.Fatalf("TopologicalOrder failed: %v", err)
		}
		for i := range first {
			if again[i].ID != first[i].ID {
				t.Fatalf("run %d produced %v, first produced %v", run, ids(again), ids(first))
			}
		}
	}
}

func TestTopologicalOrderCycle(t *testing.T) {
	tasks := []*task.Task{
		makeTask("a", task.StatusPending, "b"),
		makeTask("b", task.StatusPending, "c"),
		makeTask("c", task.StatusPending, "a"),
		makeTask("free", task.StatusPending),
	}

	g := NewGraph(tasks)

	order, err := g.TopologicalOrder()
	if err == nil {
		t.Fatalf("expected cycle error, got order %v", ids(order))
	}
	if order != nil {
		t.Error("cyclic input must not return a partial order")
	}

	var cycle CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if len(cycle.Path) < 4 {
		t.Fatalf("cycle path too short: %v", cycle.Path)
	}
	if cycle.Path[0] != cycle.Path[len(cycle.Path)-1] {
		t.Errorf("cycle path should close on itself: %v", cycle.Path)
	}
}

func TestReady(t *testing.T) {
	tasks := []*task.Task{
		makeTask("a", task.StatusPending),      // ready
		makeTask("b", task.StatusPending, "a"), // blocked by a
		makeTask("c", task.StatusCompleted),    // done
		makeTask("d", task.StatusPending, "c"), // ready (c completed)
		makeTask("e", task.StatusInProgress),   // already started
		makeTask("f", task.StatusCancelled),    // cancelled
	}

	g := NewGraph(tasks)
	ready := g.Ready()

	if len(ready) != 2 {
		t.Fatalf("Ready length = %d, want 2", len(ready))
	}

	found := map[string]bool{}
	for _, r := range ready {
		found[r.ID] = true
	}
	if !found["a"] || !found["d"] {
		t.Errorf("Ready should contain a and d, got %v", found)
	}
}

func TestReadyOrder(t *testing.T) {
	now := time.Now()
	high := makeTaskAt("high", now.Add(2*time.Hour), task.StatusPending)
	high.Priority = task.PriorityHigh
	low := makeTaskAt("low", now, task.StatusPending)
	low.Priority = task.PriorityLow
	med := makeTaskAt("med", now.Add(1*time.Hour), task.StatusPending)

	g := NewGraph([]*task.Task{low, med, high})
	ready := g.Ready()

	want := []string{"high", "med", "low"}
	got := ids(ready)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Ready order = %v, want %v", got, want)
		}
	}
}

func TestRoots(t *testing.T) {
	now := time.Now()
	tasks := []*task.Task{
		makeTaskAt("a", now, task.StatusPending),
		makeTaskAt("b", now.Add(1*time.Hour), task.StatusPending, "a"),
		makeTaskAt("c", now.Add(2*time.Hour), task.StatusPending, "b"),
		makeTaskAt("solo", now.Add(3*time.Hour), task.StatusPending),
	}

	g := NewGraph(tasks)
	roots := g.Roots()

	want := []string{"c", "solo"}
	got := ids(roots)
	if len(got) != len(want) {
		t.Fatalf("Roots = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Roots[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func ids(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
