package metadata

import (
	"sort"

	"github.com/arthur-debert/bcforge/pkg/errors"
)

// Graph indexes a Collection for the linker. It is immutable once built.
type Graph struct {
	targets []*Target
	index   map[string]int
	objects map[string]struct{}
}

// NewGraph indexes c. The collection must already be valid.
func NewGraph(c *Collection) *Graph {
	g := &Graph{
		targets: make([]*Target, len(c.Scripts)),
		index:   make(map[string]int, len(c.Scripts)),
		objects: make(map[string]struct{}, len(c.Objects)),
	}
	for i := range c.Scripts {
		g.targets[i] = &c.Scripts[i].Target
		g.index[c.Scripts[i].Target.AbsPath] = i
	}
	for _, o := range c.Objects {
		g.objects[o.AbsPath] = struct{}{}
	}
	return g
}

// Len returns the number of targets.
func (g *Graph) Len() int { return len(g.targets) }

// Target returns the target at index i.
func (g *Graph) Target(i int) *Target { return g.targets[i] }

// TargetIndex returns the index of the target at path.
func (g *Graph) TargetIndex(path string) (int, bool) {
	i, ok := g.index[path]
	return i, ok
}

// IsObject reports whether path is a known leaf object.
func (g *Graph) IsObject(path string) bool {
	_, ok := g.objects[path]
	return ok
}

// TargetDeps returns the distinct indexes of targets that target i depends
// on, in first-seen order. A self reference is kept, so CheckAcyclic
// reports it as a cycle.
func (g *Graph) TargetDeps(i int) []int {
	var deps []int
	seen := make(map[int]struct{})
	for _, dep := range g.targets[i].Dependencies {
		j, ok := g.index[dep]
		if !ok {
			continue
		}
		if _, dup := seen[j]; dup {
			continue
		}
		seen[j] = struct{}{}
		deps = append(deps, j)
	}
	return deps
}

// CheckAcyclic runs Kahn's algorithm over the target edges and reports the
// targets that can never become ready.
func (g *Graph) CheckAcyclic() error {
	n := len(g.targets)
	pending := make([]int, n)
	dependents := make([][]int, n)
	for i := 0; i < n; i++ {
		for _, j := range g.TargetDeps(i) {
			pending[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	queue := make([]int, 0, n)
	for i, p := range pending {
		if p == 0 {
			queue = append(queue, i)
		}
	}
	resolved := 0
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		resolved++
		for _, d := range dependents[i] {
			pending[d]--
			if pending[d] == 0 {
				queue = append(queue, d)
			}
		}
	}
	if resolved == n {
		return nil
	}

	var stuck []string
	for i, p := range pending {
		if p > 0 {
			stuck = append(stuck, g.targets[i].AbsPath)
		}
	}
	sort.Strings(stuck)
	return errors.Newf(errors.ErrGraphCycle, "%d target(s) are part of or depend on a dependency cycle", len(stuck)).
		WithDetail("targets", stuck)
}
