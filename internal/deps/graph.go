package deps

import (
	"container/heap"
	"slices"
	"sort"

	"github.com/bhirmbani/kwaci-grow-sub003/internal/task"
)

// Graph indexes the dependency relationships between the tasks of one plan.
// It is built per call from an explicit task list and never mutated; every
// method is a read.
type Graph struct {
	tasks map[string]*task.Task
}

// NewGraph creates a Graph from a list of tasks.
func NewGraph(tasks []*task.Task) *Graph {
	g := &Graph{
		tasks: make(map[string]*task.Task),
	}
	for _, t := range tasks {
		g.tasks[t.ID] = t
	}
	return g
}

// Get returns a task by ID.
func (g *Graph) Get(id string) *task.Task {
	return g.tasks[id]
}

// CanStart returns true if every dependency of the task resolves to a
// completed task. Dependency ids that resolve to nothing count as unmet, so
// a stale reference can never unblock work.
func (g *Graph) CanStart(id string) bool {
	t := g.tasks[id]
	if t == nil {
		return false
	}
	for _, depID := range t.DependsOn {
		dep := g.tasks[depID]
		if dep == nil || dep.Status != task.StatusCompleted {
			return false
		}
	}
	return true
}

// Unmet returns the dependency ids currently blocking the task: those not
// yet completed plus any that resolve to no task, sorted.
func (g *Graph) Unmet(id string) []string {
	t := g.tasks[id]
	if t == nil {
		return nil
	}
	var unmet []string
	for _, depID := range t.DependsOn {
		dep := g.tasks[depID]
		if dep == nil || dep.Status != task.StatusCompleted {
			unmet = append(unmet, depID)
		}
	}
	sort.Strings(unmet)
	return unmet
}

// Dependents returns the tasks whose dependency set contains the given id,
// in creation order.
func (g *Graph) Dependents(id string) []*task.Task {
	var dependents []*task.Task
	for _, t := range g.tasks {
		if slices.Contains(t.DependsOn, id) {
			dependents = append(dependents, t)
		}
	}
	sort.Slice(dependents, func(i, j int) bool {
		return creationLess(dependents[i], dependents[j])
	})
	return dependents
}

// WouldCreateCycle checks whether giving the task the proposed dependency
// set would close a cycle, including the direct self-loop. Each proposed
// dependency is walked back through existing edges looking for the task.
func (g *Graph) WouldCreateCycle(id string, proposed []string) bool {
	for _, depID := range proposed {
		if depID == id {
			return true
		}
		if g.pathBetween(depID, id) != nil {
			return true
		}
	}
	return false
}

// pathBetween returns the dependency chain from one task to another
// (inclusive of both ends) following DependsOn edges, or nil if the target
// is unreachable.
func (g *Graph) pathBetween(from, to string) []string {
	if from == to {
		return []string{from}
	}
	parent := map[string]string{from: ""}
	queue := []string{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		t := g.tasks[current]
		if t == nil {
			continue
		}
		for _, next := range t.DependsOn {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = current
			if next == to {
				path := []string{to}
				for at := current; at != ""; at = parent[at] {
					path = append(path, at)
				}
				slices.Reverse(path)
				return path
			}
			queue = append(queue, next)
		}
	}
	return nil
}

// ValidateDependencies checks a proposed dependency set for the task before
// it may be persisted: every id must resolve to a task in the plan and the
// resulting graph must stay acyclic.
func (g *Graph) ValidateDependencies(id string, proposed []string) error {
	for _, depID := range proposed {
		if depID == id {
			return CycleError{Path: []string{id, id}}
		}
		if g.tasks[depID] == nil {
			return UnknownDependencyError{TaskID: id, DepID: depID}
		}
	}
	for _, depID := range proposed {
		if chain := g.pathBetween(depID, id); chain != nil {
			path := append([]string{id}, chain...)
			return CycleError{Path: path}
		}
	}
	return nil
}

// TopologicalOrder returns the plan's tasks ordered so every task appears
// after all of its dependencies. Ties break on creation time then id, so the
// order is stable across calls. A cyclic graph yields a CycleError naming
// the cycle; a partial order is never returned.
func (g *Graph) TopologicalOrder() ([]*task.Task, error) {
	tasks := g.sortedTasks()
	pos := make(map[string]int, len(tasks))
	for i, t := range tasks {
		pos[t.ID] = i
	}

	// indegree counts resolvable dependencies; dependents is the reverse
	// adjacency used to release tasks as their dependencies are emitted.
	indegree := make([]int, len(tasks))
	dependents := make(map[string][]int)
	for i, t := range tasks {
		for _, depID := range t.DependsOn {
			if _, ok := pos[depID]; !ok {
				continue
			}
			indegree[i]++
			dependents[depID] = append(dependents[depID], i)
		}
	}

	ready := &posHeap{}
	for i, d := range indegree {
		if d == 0 {
			heap.Push(ready, i)
		}
	}

	order := make([]*task.Task, 0, len(tasks))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		t := tasks[i]
		order = append(order, t)
		for _, j := range dependents[t.ID] {
			indegree[j]--
			if indegree[j] == 0 {
				heap.Push(ready, j)
			}
		}
	}

	if len(order) != len(tasks) {
		return nil, CycleError{Path: g.findCycle(tasks)}
	}
	return order, nil
}

// findCycle locates one cycle with a colored depth-first walk. Tasks are
// visited in creation order so the reported cycle is deterministic.
func (g *Graph) findCycle(tasks []*task.Task) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(tasks))
	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		stack = append(stack, id)
		for _, depID := range g.tasks[id].DependsOn {
			if g.tasks[depID] == nil {
				continue
			}
			switch color[depID] {
			case gray:
				start := slices.Index(stack, depID)
				cycle = append(cycle, stack[start:]...)
				cycle = append(cycle, depID)
				return true
			case white:
				if visit(depID) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for _, t := range tasks {
		if color[t.ID] == white && visit(t.ID) {
			return cycle
		}
	}
	return nil
}

// Ready returns all pending tasks whose dependencies are met, sorted by
// priority then creation time.
func (g *Graph) Ready() []*task.Task {
	var ready []*task.Task
	for _, t := range g.tasks {
		if t.Status != task.StatusPending {
			continue
		}
		if g.CanStart(t.ID) {
			ready = append(ready, t)
		}
	}

	sort.Slice(ready, func(i, j int) bool {
		return taskLess(ready[i], ready[j])
	})

	return ready
}

// Roots returns the tasks no other task depends on, in creation order.
// These are the tops of the dependency trees.
func (g *Graph) Roots() []*task.Task {
	depended := make(map[string]bool)
	for _, t := range g.tasks {
		for _, depID := range t.DependsOn {
			depended[depID] = true
		}
	}

	var roots []*task.Task
	for _, t := range g.tasks {
		if !depended[t.ID] {
			roots = append(roots, t)
		}
	}
	sort.Slice(roots, func(i, j int) bool {
		return creationLess(roots[i], roots[j])
	})
	return roots
}

// sortedTasks returns all tasks ordered by creation time then id.
func (g *Graph) sortedTasks() []*task.Task {
	tasks := make([]*task.Task, 0, len(g.tasks))
	for _, t := range g.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return creationLess(tasks[i], tasks[j])
	})
	return tasks
}

// taskLess returns true if task a should be sorted before task b.
// Sorts by priority first (high < medium < low), then by creation time.
func taskLess(a, b *task.Task) bool {
	pa := task.PriorityOrder(a.Priority)
	pb := task.PriorityOrder(b.Priority)
	if pa != pb {
		return pa < pb
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// creationLess orders tasks by creation time, with id as the final
// tie-break so equal timestamps still sort the same way every run.
func creationLess(a, b *task.Task) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// posHeap is a min-heap of positions into the creation-ordered task slice.
type posHeap []int

func (h posHeap) Len() int { return len(h) }

func (h posHeap) Less(i, j int) bool { return h[i] < h[j] }

func (h posHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *posHeap) Push(x any) { *h = append(*h, x.(int)) }

func (h *posHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
