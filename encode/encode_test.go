package encode

import (
	"bytes"
	"math/rand"
	"strconv"
	"testing"

	"github.com/mudesheng/chunkenc/cigar"
	"github.com/mudesheng/chunkenc/seedhit"
	"github.com/mudesheng/chunkenc/utils"
)

func randSeq(r *rand.Rand, n int) []byte {
	seq := make([]byte, n)
	for i := range seq {
		seq[i] = "ACGT"[r.Intn(4)]
	}
	return seq
}

func join(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func exactHit(chunk uint64, read string, forward bool, refStart, queryStart, l int) *seedhit.SeedHit {
	return &seedhit.SeedHit{
		RefName:       strconv.FormatUint(chunk, 10),
		RefStart:      refStart,
		RefMatchLen:   l,
		QueryName:     read,
		QueryForward:  forward,
		QueryStart:    queryStart,
		QueryMatchLen: l,
		Score:         l,
		Ops:           cigar.Cigar{{Kind: cigar.Match, Len: l}},
	}
}

func defaultOptions() Options {
	return NewOptions(utils.DefaultGlobalSetting(), false)
}

func TestEncodeReadForward(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	c1, c2 := randSeq(r, 400), randSeq(r, 300)
	chunks := NewChunkLib([]Chunk{{ID: 1, Seq: c1}, {ID: 2, Seq: c2}, {ID: 3, Seq: randSeq(r, 200)}})
	seq := join(randSeq(r, 50), c1, randSeq(r, 30), c2, randSeq(r, 20))
	read := &RawRead{ID: 5, Name: "r5", Seq: seq}
	hits := []*seedhit.SeedHit{
		exactHit(1, "r5", true, 0, 50, 200),
		exactHit(1, "r5", true, 200, 250, 200),
		exactHit(2, "r5", true, 0, 480, 300),
		exactHit(3, "r5", true, 0, 600, 90), // too short, ignored
	}
	er, ok := EncodeRead(read, hits, chunks, defaultOptions())
	if !ok {
		t.Fatal("read should be encoded")
	}
	if len(er.Nodes) != 2 || len(er.Edges) != 1 {
		t.Fatalf("nodes: %v edges: %v", er.Nodes, er.Edges)
	}
	n0, n1 := er.Nodes[0], er.Nodes[1]
	if n0.Chunk != 1 || n0.PositionFromStart != 50 || !bytes.Equal(n0.Seq, c1) || n0.Cigar.String() != "400M" {
		t.Errorf("node 0: %v %v", n0.String(), n0.Cigar)
	}
	if n1.Chunk != 2 || n1.PositionFromStart != 480 || n1.Cigar.RefLen() != 300 {
		t.Errorf("node 1: %v %v", n1.String(), n1.Cigar)
	}
	e := er.Edges[0]
	if e.From != 1 || e.To != 2 || e.Offset != 30 || !bytes.Equal(e.Label, seq[450:480]) {
		t.Errorf("edge: %+v", e)
	}
	if len(er.LeadingGap) != 50 || len(er.TrailingGap) != 20 || er.EncodedLength() != len(seq) {
		t.Errorf("gaps: %d %d encoded length: %d", len(er.LeadingGap), len(er.TrailingGap), er.EncodedLength())
	}
}

func TestEncodeReadReverse(t *testing.T) {
	r := rand.New(rand.NewSource(12))
	c1 := randSeq(r, 400)
	chunks := NewChunkLib([]Chunk{{ID: 8, Seq: c1}})
	seq := join(randSeq(r, 40), utils.GetReverseCompByteArr(c1), randSeq(r, 60))
	read := &RawRead{ID: 1, Name: "r1", Seq: seq}
	er, ok := EncodeRead(read, []*seedhit.SeedHit{exactHit(8, "r1", false, 0, 60, 400)}, chunks, defaultOptions())
	if !ok {
		t.Fatal("read should be encoded")
	}
	n := er.Nodes[0]
	if n.Forward || n.PositionFromStart != 40 || !bytes.Equal(n.Seq, c1) {
		t.Errorf("node: %v", n.String())
	}
	if len(er.LeadingGap) != 40 || len(er.TrailingGap) != 60 {
		t.Errorf("gaps: %d %d", len(er.LeadingGap), len(er.TrailingGap))
	}
}

func TestEncodeReadGapFilling(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	c1 := randSeq(r, 400)
	chunks := NewChunkLib([]Chunk{{ID: 4, Seq: c1}})
	seq := join(randSeq(r, 50), c1[:200], []byte("ACGTACGTACGT"), c1[210:], randSeq(r, 20))
	read := &RawRead{ID: 2, Name: "r2", Seq: seq}
	hits := []*seedhit.SeedHit{
		exactHit(4, "r2", true, 0, 50, 200),
		exactHit(4, "r2", true, 210, 262, 190),
	}
	er, ok := EncodeRead(read, hits, chunks, defaultOptions())
	if !ok {
		t.Fatal("read should be encoded")
	}
	n := er.Nodes[0]
	if n.PositionFromStart != 50 || len(n.Seq) != 402 || n.Cigar.RefLen() != 400 || n.Cigar.QueryLen() != 402 {
		t.Errorf("node: %v len: %d cigar: %v", n.String(), len(n.Seq), n.Cigar)
	}
}

func TestEncodeReadStepBack(t *testing.T) {
	r := rand.New(rand.NewSource(14))
	c1 := randSeq(r, 400)
	chunks := NewChunkLib([]Chunk{{ID: 6, Seq: c1}})
	seq := join(randSeq(r, 50), c1[:250], c1[200:], randSeq(r, 20))
	read := &RawRead{ID: 3, Name: "r3", Seq: seq}
	hits := []*seedhit.SeedHit{
		exactHit(6, "r3", true, 0, 50, 250),
		exactHit(6, "r3", true, 200, 300, 200),
	}
	er, ok := EncodeRead(read, hits, chunks, defaultOptions())
	if !ok {
		t.Fatal("read should be encoded")
	}
	n := er.Nodes[0]
	if n.PositionFromStart != 50 || len(n.Seq) != 450 || n.Cigar.String() != "200M50I200M" {
		t.Errorf("node: %v len: %d cigar: %v", n.String(), len(n.Seq), n.Cigar)
	}
}

func TestCoverageGate(t *testing.T) {
	r := rand.New(rand.NewSource(15))
	c1 := randSeq(r, 400)
	chunks := NewChunkLib([]Chunk{{ID: 1, Seq: c1}})
	seq := join(randSeq(r, 50), c1, randSeq(r, 50))
	read := &RawRead{ID: 4, Name: "r4", Seq: seq}
	if _, ok := EncodeRead(read, []*seedhit.SeedHit{exactHit(1, "r4", true, 0, 50, 300)}, chunks, defaultOptions()); ok {
		t.Error("300 of 400 bases should not pass the coverage gate")
	}
	if _, ok := EncodeRead(read, []*seedhit.SeedHit{exactHit(1, "r4", true, 0, 50, 360)}, chunks, defaultOptions()); !ok {
		t.Error("360 of 400 bases should pass the coverage gate")
	}
}

func TestPopCigarBy(t *testing.T) {
	cg := cigar.Cigar{{Kind: cigar.Match, Len: 5}, {Kind: cigar.Del, Len: 10}}
	cg, q, err := popCigarBy(cg, 4)
	if err != nil || q != 0 || cg.String() != "5M6D" {
		t.Errorf("del overflow: %v %d %v", cg, q, err)
	}
	cg = cigar.Cigar{{Kind: cigar.Match, Len: 20}, {Kind: cigar.Ins, Len: 3}, {Kind: cigar.Match, Len: 5}}
	cg, q, err = popCigarBy(cg, 7)
	if err != nil || q != 10 || cg.String() != "18M" {
		t.Errorf("match overflow: %v %d %v", cg, q, err)
	}
	if _, _, err = popCigarBy(cigar.Cigar{{Kind: cigar.Match, Len: 10}}, 20); err != errRetreatExhausted {
		t.Errorf("retreat past the start: %v", err)
	}
}

func TestChain(t *testing.T) {
	a := exactHit(1, "r", true, 0, 0, 200)
	b := exactHit(1, "r", true, 200, 210, 200)
	off := exactHit(1, "r", true, 50, 900, 150) // not colinear with a and b
	path := Chain([]*seedhit.SeedHit{off, b, a}, 100)
	if len(path) != 2 || path[0] != a || path[1] != b {
		t.Errorf("path: %v", path)
	}
}

func TestJoinAlignments(t *testing.T) {
	r := rand.New(rand.NewSource(16))
	refr := randSeq(r, 600)
	read := join(randSeq(r, 10), refr[100:500], randSeq(r, 10))
	hits := []*seedhit.SeedHit{
		exactHit(0, "r", true, 100, 10, 200),
		exactHit(0, "r", true, 300, 210, 200),
	}
	qs, rs, ops, err := JoinAlignments(hits, refr, read, 100)
	if err != nil || qs != 10 || rs != 100 || ops.String() != "400M" {
		t.Errorf("JoinAlignments: %d %d %v %v", qs, rs, ops, err)
	}
}

func TestEncodeAll(t *testing.T) {
	r := rand.New(rand.NewSource(17))
	c1 := randSeq(r, 300)
	chunks := NewChunkLib([]Chunk{{ID: 1, Seq: c1}})
	reads := []RawRead{
		{ID: 9, Name: "b", Seq: join(randSeq(r, 10), c1)},
		{ID: 2, Name: "a", Seq: join(c1, randSeq(r, 10))},
		{ID: 4, Name: "c", Seq: randSeq(r, 300)},
	}
	hits := []seedhit.SeedHit{
		*exactHit(1, "b", true, 0, 10, 300),
		*exactHit(1, "a", true, 0, 0, 300),
	}
	ers := EncodeAll(reads, seedhit.Distribute(hits), chunks, defaultOptions(), 2)
	if len(ers) != 2 || ers[0].ID != 2 || ers[1].ID != 9 {
		t.Fatalf("EncodeAll: %v", ers)
	}
	if ers[1].Nodes[0].PositionFromStart != 10 {
		t.Errorf("read b node: %v", ers[1].Nodes[0].String())
	}
}

func TestCheckLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("length mismatch should panic")
		}
	}()
	er := &EncodedRead{ID: 1, OriginalLength: 10, Nodes: []Node{{Seq: []byte("ACGT")}}}
	er.CheckLength()
}
