package arch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/archcheck/internal/codemodel"
)

// SlicesFreeOfCycles checks that the top-level slices beneath every model
// root do not import each other in a cycle.
//
// A slice is the first path element below a root: with root
// "github.com/acme", packages "github.com/acme/billing/..." form the slice
// "billing". Go rejects cyclic imports between packages, so cycles can only
// appear between slices.
//
// The algorithm:
//  1. Build the slice graph from the import edges between model packages
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each component with more than one slice as a violation
func SlicesFreeOfCycles() *Rule {
	return New("slices matching '<root>/(*)/..' should be free of cycles", func(m *codemodel.Model) []Violation {
		g := buildSliceGraph(m)

		var out []Violation
		for _, scc := range tarjanSCC(g.edges) {
			if len(scc) < 2 {
				continue
			}
			out = append(out, g.violation(scc))
		}
		return out
	})
}

// sliceGraph maps slice -> slices it imports, with one example import per
// slice pair for the report.
type sliceGraph struct {
	edges    map[string][]string
	examples map[[2]string]string
}

// sliceOf returns the slice of a package path, or "" for root packages and
// packages outside every root.
func sliceOf(pkgPath string, roots []string) string {
	pkgPath = strings.TrimSuffix(pkgPath, "_test")
	for _, root := range roots {
		rest, ok := strings.CutPrefix(pkgPath, strings.TrimSuffix(root, "/")+"/")
		if !ok {
			continue
		}
		head, _, _ := strings.Cut(rest, "/")
		return root + "/" + head
	}
	return ""
}

func buildSliceGraph(m *codemodel.Model) *sliceGraph {
	g := &sliceGraph{
		edges:    make(map[string][]string),
		examples: make(map[[2]string]string),
	}
	roots := m.Roots()

	for _, pkg := range m.Packages() {
		from := sliceOf(pkg.Path, roots)
		if from == "" {
			continue
		}
		// Ensure the node exists even without outgoing edges.
		if g.edges[from] == nil {
			g.edges[from] = []string{}
		}
		for _, imp := range pkg.Imports {
			if !m.Contains(imp) {
				continue
			}
			to := sliceOf(imp, roots)
			if to == "" || to == from {
				continue
			}
			key := [2]string{from, to}
			if _, seen := g.examples[key]; seen {
				continue
			}
			g.examples[key] = fmt.Sprintf("%s imports %s", pkg.Path, imp)
			g.edges[from] = append(g.edges[from], to)
		}
	}
	for node := range g.edges {
		sort.Strings(g.edges[node])
	}
	return g
}

func (g *sliceGraph) violation(scc []string) Violation {
	path := reconstructCyclePath(scc, g.edges)

	var b strings.Builder
	fmt.Fprintf(&b, "Cycle detected: %s", strings.Join(path, " -> "))
	for i := 0; i+1 < len(path); i++ {
		if ex, ok := g.examples[[2]string{path[i], path[i+1]}]; ok {
			fmt.Fprintf(&b, "\n    %s", ex)
		}
	}
	return Violation{Element: strings.Join(path, " -> "), Message: b.String()}
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Nodes and successors are visited in sorted order and every component is
// rotated to start at its smallest member so that reports are stable.
func tarjanSCC(graph map[string][]string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	sort.Slice(sccs, func(i, j int) bool { return sccs[i][0] < sccs[j][0] })
	return sccs
}

// reconstructCyclePath builds a cycle path through an SCC.
//
// Starting at the first member it follows edges to unvisited members until
// it returns to the start.
func reconstructCyclePath(scc []string, graph map[string][]string) []string {
	if len(scc) == 0 {
		return []string{}
	}

	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if neighbor == start && len(path) > 1 {
				next = neighbor
				break
			}
			if members[neighbor] && !visited[neighbor] {
				next = neighbor
				break
			}
		}
		if next == "" {
			// Dead end inside the component; close the loop explicitly.
			path = append(path, start)
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
