// Package chunkgraph counts how often chunks follow each other in the
// encoded reads and writes the adjacency as a graphviz file.
package chunkgraph

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/awalterschulze/gographviz"
	"github.com/mudesheng/chunkenc/encode"
)

// Adjacency is an oriented pair of chunks. It is stored in the orientation
// whose From is the smaller chunk id, a read and its reverse complement
// give the same key.
type Adjacency struct {
	From, To               uint64
	FromForward, ToForward bool
}

// canonical pick one of the two strand views of an adjacency. A tandem
// repeat keeps its forward view; (+,-) and (-,+) are their own reverse.
func canonical(a, b *encode.Node) Adjacency {
	adj := Adjacency{From: a.Chunk, FromForward: a.Forward, To: b.Chunk, ToForward: b.Forward}
	if b.Chunk < a.Chunk || (b.Chunk == a.Chunk && !a.Forward && !b.Forward) {
		adj = Adjacency{From: b.Chunk, FromForward: !b.Forward, To: a.Chunk, ToForward: !a.Forward}
	}
	return adj
}

type EdgeStat struct {
	Adjacency
	Count     int
	OffsetSum int
}

func (e *EdgeStat) MeanOffset() int {
	if e.Count == 0 {
		return 0
	}
	return e.OffsetSum / e.Count
}

type EdgeStatArr []*EdgeStat

func (arr EdgeStatArr) Len() int {
	return len(arr)
}

func (arr EdgeStatArr) Less(i, j int) bool {
	a, b := arr[i].Adjacency, arr[j].Adjacency
	if a.From != b.From {
		return a.From < b.From
	}
	if a.To != b.To {
		return a.To < b.To
	}
	if a.FromForward != b.FromForward {
		return a.FromForward
	}
	return a.ToForward && !b.ToForward
}

func (arr EdgeStatArr) Swap(i, j int) {
	arr[i], arr[j] = arr[j], arr[i]
}

type Graph struct {
	NodeCount map[uint64]int
	edges     map[Adjacency]*EdgeStat
}

// Build add every node and every edge of ers to a new graph
func Build(ers []*encode.EncodedRead) *Graph {
	g := &Graph{NodeCount: make(map[uint64]int), edges: make(map[Adjacency]*EdgeStat)}
	for _, er := range ers {
		for i := range er.Nodes {
			g.NodeCount[er.Nodes[i].Chunk]++
		}
		for i := 1; i < len(er.Nodes); i++ {
			adj := canonical(&er.Nodes[i-1], &er.Nodes[i])
			es, ok := g.edges[adj]
			if !ok {
				es = &EdgeStat{Adjacency: adj}
				g.edges[adj] = es
			}
			es.Count++
			es.OffsetSum += er.Edges[i-1].Offset
		}
	}
	return g
}

// Edges return the edges seen at least minCount times, sorted
func (g *Graph) Edges(minCount int) EdgeStatArr {
	arr := make(EdgeStatArr, 0, len(g.edges))
	for _, es := range g.edges {
		if es.Count >= minCount {
			arr = append(arr, es)
		}
	}
	sort.Sort(arr)
	return arr
}

func strandChar(forward bool) string {
	if forward {
		return "+"
	}
	return "-"
}

// WriteDot write the chunks and the edges seen at least minCount times
func (g *Graph) WriteDot(w io.Writer, minCount int) error {
	edges := g.Edges(minCount)
	used := make(map[uint64]bool)
	for _, es := range edges {
		used[es.From], used[es.To] = true, true
	}
	ids := make([]uint64, 0, len(used))
	for id := range used {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	gv := gographviz.NewGraph()
	gv.SetName("G")
	gv.SetDir(true)
	gv.SetStrict(false)
	for _, id := range ids {
		attr := make(map[string]string)
		attr["color"] = "Green"
		attr["label"] = "\"" + strconv.FormatUint(id, 10) + " n:" + strconv.Itoa(g.NodeCount[id]) + "\""
		if err := gv.AddNode("G", strconv.FormatUint(id, 10), attr); err != nil {
			return fmt.Errorf("add node: %d: %w", id, err)
		}
	}
	for _, es := range edges {
		attr := make(map[string]string)
		attr["color"] = "Blue"
		attr["label"] = "\"" + strandChar(es.FromForward) + strandChar(es.ToForward) + " n:" + strconv.Itoa(es.Count) + " off:" + strconv.Itoa(es.MeanOffset()) + "\""
		if err := gv.AddEdge(strconv.FormatUint(es.From, 10), strconv.FormatUint(es.To, 10), true, attr); err != nil {
			return fmt.Errorf("add edge: %d->%d: %w", es.From, es.To, err)
		}
	}
	_, err := io.WriteString(w, gv.String())
	return err
}
