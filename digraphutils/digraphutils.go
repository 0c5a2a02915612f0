// Package digraphutils provides utilities for directed graphs, represented as
// a mapping from node keys to edges.
package digraphutils

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/refaktor/sobind/textutils"
)

// CycleError is returned by [Follow] when a chain revisits a node.
type CycleError[K comparable] struct {
	// Chain holds the visited nodes in order, ending with the node
	// that closed the cycle.
	Chain []K
}

func (e *CycleError[K]) Error() string {
	parts := make([]string, len(e.Chain))
	for i, k := range e.Chain {
		parts[i] = fmt.Sprint(k)
	}
	return "cycle: " + strings.Join(parts, " -> ")
}

// Follow walks a functional graph from start, calling next until it
// reports no successor. It returns the visited nodes, start included.
// Each node is visited at most once, so Follow terminates on any input.
func Follow[K comparable](start K, next func(K) (K, bool)) ([]K, error) {
	chain := []K{start}
	seen := map[K]struct{}{start: {}}
	cur := start
	for {
		succ, ok := next(cur)
		if !ok {
			return chain, nil
		}
		chain = append(chain, succ)
		if _, ok := seen[succ]; ok {
			return chain, &CycleError[K]{Chain: chain}
		}
		seen[succ] = struct{}{}
		cur = succ
	}
}

// Reachable returns every node reachable from roots, roots included.
func Reachable[K comparable](roots []K, edges func(K) []K) map[K]struct{} {
	reachable := map[K]struct{}{}
	nodes := slices.Clone(roots)
	var newNodes []K
	for len(nodes) > 0 {
		for _, node := range nodes {
			if _, ok := reachable[node]; ok {
				continue
			}
			reachable[node] = struct{}{}
			newNodes = append(newNodes, edges(node)...)
		}
		nodes, newNodes = newNodes, nodes[:0]
	}
	return reachable
}

// DOTCode generates graphviz DOT code to visualize a graph.
// nodes represents all nodes included in the graph; edges to nodes
// outside of it are dropped. name is the name of the digraph and prelude
// DOT code inserted in the beginning. Nodes are labeled with their
// formatted key.
func DOTCode[K comparable](nodes []K, edges func(K) []K, name, prelude string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "digraph %v {\n", strconv.Quote(name))
	if prelude = strings.TrimSpace(prelude); prelude != "" {
		b.WriteString(textutils.IndentString(prelude, "  ", 1))
		b.WriteByte('\n')
	}
	nodeIDs := map[K]int{}
	for id, key := range nodes {
		fmt.Fprintf(&b, "  %v [label=%v]\n", id, strconv.Quote(fmt.Sprint(key)))
		nodeIDs[key] = id
	}
	for id, key := range nodes {
		edgs := slices.DeleteFunc(slices.Clone(edges(key)), func(k K) bool {
			_, ok := nodeIDs[k]
			return !ok
		})
		if len(edgs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %v -> {", id)
		for i, edg := range edgs {
			if i != 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%v", nodeIDs[edg])
		}
		fmt.Fprintf(&b, "}\n")
	}
	fmt.Fprintf(&b, "}\n")
	return b.Bytes()
}
