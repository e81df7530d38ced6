package compiler

import (
	"slices"

	"github.com/roach88/traitkit/internal/ir"
)

// baseGraph maps a type to its declared direct bases.
type baseGraph map[ir.TypeID][]ir.TypeID

// FindBaseCycles reports every inheritance cycle in types. Each cycle is a
// path that starts and ends at the same type, e.g. [A, B, A]. A type naming
// itself as a base yields [A, A].
//
// Bases that are not declared in types are ignored here; Validate reports
// them separately.
func FindBaseCycles(types []ir.TypeInfo) [][]ir.TypeID {
	graph := make(baseGraph, len(types))
	order := make([]ir.TypeID, 0, len(types))
	for _, t := range types {
		if _, seen := graph[t.Name]; !seen {
			order = append(order, t.Name)
		}
		graph[t.Name] = append(graph[t.Name], t.Bases...)
	}

	var cycles [][]ir.TypeID
	for _, scc := range stronglyConnected(graph, order) {
		if len(scc) == 1 && !slices.Contains(graph[scc[0]], scc[0]) {
			continue
		}
		cycles = append(cycles, cyclePath(scc, graph))
	}
	return cycles
}

// stronglyConnected is Tarjan's algorithm. Nodes are visited in order so the
// result is stable for a given declaration order.
func stronglyConnected(graph baseGraph, order []ir.TypeID) [][]ir.TypeID {
	var (
		index   int
		stack   []ir.TypeID
		indices = make(map[ir.TypeID]int)
		lowlink = make(map[ir.TypeID]int)
		onStack = make(map[ir.TypeID]bool)
		sccs    [][]ir.TypeID
	)

	var connect func(ir.TypeID)
	connect = func(v ir.TypeID) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, declared := graph[w]; !declared {
				continue
			}
			if _, visited := indices[w]; !visited {
				connect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []ir.TypeID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Reverse(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			connect(node)
		}
	}
	return sccs
}

// cyclePath walks base edges inside scc from its first member until it
// returns to the start.
func cyclePath(scc []ir.TypeID, graph baseGraph) []ir.TypeID {
	start := scc[0]
	if len(scc) == 1 {
		return []ir.TypeID{start, start}
	}

	members := make(map[ir.TypeID]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}

	path := []ir.TypeID{start}
	visited := map[ir.TypeID]bool{start: true}
	current := start
	for {
		var next ir.TypeID
		for _, w := range graph[current] {
			if members[w] && (!visited[w] || w == start) {
				next = w
				break
			}
		}
		if next == "" {
			return path
		}
		path = append(path, next)
		if next == start {
			return path
		}
		visited[next] = true
		current = next
	}
}
