package encode

import (
	"github.com/mudesheng/chunkenc/seedhit"
)

type chainKind uint8

const (
	chainStart chainKind = iota
	chainEnd
	chainHit
)

type chainNode struct {
	kind chainKind
	hit  *seedhit.SeedHit
}

type chainEdge struct {
	to     int
	weight int
}

// edgeWeight return the weight of u->v and whether the edge exists. A hit
// may start up to margin reference bases before the previous hit ends.
func edgeWeight(u, v *chainNode, margin int) (int, bool) {
	switch u.kind {
	case chainEnd:
		return 0, false
	case chainStart:
		return 0, true
	}
	switch v.kind {
	case chainEnd:
		return 0, true
	case chainStart:
		return 0, false
	}
	a, b := u.hit, v.hit
	uRefEnd := a.RefEnd()
	if uRefEnd < margin {
		uRefEnd = margin
	}
	uRefEnd -= margin
	uQueryEnd := a.QueryEnd()
	if uRefEnd <= b.RefStart && uQueryEnd <= b.QueryStart {
		return -(b.RefStart - uRefEnd + b.QueryStart - uQueryEnd), true
	}
	return 0, false
}

// topoSort order the DAG by an explicit stack DFS from the start node
func topoSort(edges [][]chainEdge) []int {
	arrived := make([]bool, len(edges))
	stack := []int{0}
	order := make([]int, 0, len(edges))
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		arrived[node] = true
		pushed := false
		for _, e := range edges[node] {
			if !arrived[e.to] {
				stack = append(stack, e.to)
				pushed = true
				break
			}
		}
		if !pushed {
			stack = stack[:len(stack)-1]
			order = append(order, node)
		}
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// Chain pick the best scoring colinear path through the hits of one
// (chunk, strand) bucket. The returned hits are in path order.
func Chain(hits []*seedhit.SeedHit, margin int) []*seedhit.SeedHit {
	nodes := make([]chainNode, 2, len(hits)+2)
	nodes[0].kind, nodes[1].kind = chainStart, chainEnd
	for _, h := range hits {
		nodes = append(nodes, chainNode{kind: chainHit, hit: h})
	}
	edges := make([][]chainEdge, len(nodes))
	for i := range nodes {
		for j := range nodes {
			if i == j {
				continue
			}
			if w, ok := edgeWeight(&nodes[i], &nodes[j], margin); ok {
				edges[i] = append(edges[i], chainEdge{to: j, weight: w})
			}
		}
	}

	dp := make([]int, len(nodes))
	parent := make([]int, len(nodes))
	for i := range dp {
		dp[i] = -1
	}
	for _, i := range topoSort(edges) {
		for _, e := range edges[i] {
			score := 0
			if nodes[e.to].kind == chainHit {
				score = nodes[e.to].hit.Score
			}
			// later equal candidates replace the parent
			if cand := dp[i] + e.weight + score; dp[e.to] <= cand {
				dp[e.to] = cand
				parent[e.to] = i
			}
		}
	}

	var path []*seedhit.SeedHit
	for cur := parent[1]; cur != 0; cur = parent[cur] {
		path = append(path, nodes[cur].hit)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
