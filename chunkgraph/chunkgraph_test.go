package chunkgraph

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mudesheng/chunkenc/encode"
)

func read(id uint64, chunks []uint64, forward []bool, offsets []int) *encode.EncodedRead {
	er := &encode.EncodedRead{ID: id}
	for i, c := range chunks {
		er.Nodes = append(er.Nodes, encode.Node{Chunk: c, Forward: forward[i]})
	}
	for i := 1; i < len(chunks); i++ {
		er.Edges = append(er.Edges, encode.Edge{From: chunks[i-1], To: chunks[i], Offset: offsets[i-1]})
	}
	return er
}

func TestBuild(t *testing.T) {
	ers := []*encode.EncodedRead{
		read(0, []uint64{1, 2, 3}, []bool{true, true, true}, []int{10, 20}),
		// reverse complement of the first read
		read(1, []uint64{3, 2, 1}, []bool{false, false, false}, []int{30, 20}),
		read(2, []uint64{2, 5}, []bool{true, false}, []int{-4}),
	}
	g := Build(ers)
	if g.NodeCount[2] != 3 || g.NodeCount[5] != 1 {
		t.Errorf("node count: %v", g.NodeCount)
	}
	edges := g.Edges(1)
	if len(edges) != 3 {
		t.Fatalf("edges: %d", len(edges))
	}
	e := edges[0]
	if e.From != 1 || e.To != 2 || !e.FromForward || !e.ToForward || e.Count != 2 || e.MeanOffset() != 15 {
		t.Errorf("edge 1->2: %+v", e)
	}
	if e := edges[1]; e.From != 2 || e.To != 3 || e.Count != 2 || e.MeanOffset() != 25 {
		t.Errorf("edge 2->3: %+v", e)
	}
	if e := edges[2]; e.From != 2 || e.To != 5 || e.ToForward || e.Count != 1 {
		t.Errorf("edge 2->5: %+v", e)
	}
	if len(g.Edges(2)) != 2 {
		t.Errorf("min count 2: %v", g.Edges(2))
	}
}

func TestBuildTandem(t *testing.T) {
	ers := []*encode.EncodedRead{
		read(0, []uint64{4, 4}, []bool{true, true}, []int{6}),
		read(1, []uint64{4, 4}, []bool{false, false}, []int{8}),
		read(2, []uint64{4, 4}, []bool{true, false}, []int{2}),
	}
	edges := Build(ers).Edges(1)
	if len(edges) != 2 {
		t.Fatalf("both strands of a tandem repeat should share one edge: %+v", edges)
	}
	for _, e := range edges {
		if e.FromForward && e.ToForward {
			if e.Count != 2 || e.MeanOffset() != 7 {
				t.Errorf("tandem edge: %+v", e)
			}
		} else if !e.FromForward || e.ToForward || e.Count != 1 {
			t.Errorf("inverted edge: %+v", e)
		}
	}
}

func TestWriteDot(t *testing.T) {
	g := Build([]*encode.EncodedRead{
		read(0, []uint64{1, 2, 3}, []bool{true, true, true}, []int{10, 20}),
		read(1, []uint64{1, 2}, []bool{true, true}, []int{12}),
	})
	var buf bytes.Buffer
	if err := g.WriteDot(&buf, 2); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "digraph G") || strings.Count(out, "->") != 1 || !strings.Contains(out, "n:2 off:11") {
		t.Errorf("dot output:\n%s", out)
	}
}
