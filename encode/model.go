package encode

import (
	"fmt"
	"log"

	"github.com/mudesheng/chunkenc/cigar"
)

// RawRead is an input long read, Seq is upper case
type RawRead struct {
	ID   uint64
	Name string
	Seq  []byte
}

type Chunk struct {
	ID  uint64
	Seq []byte
}

// ChunkLib is the read-only reference chunk library indexed by chunk id
type ChunkLib map[uint64]*Chunk

func NewChunkLib(chunks []Chunk) ChunkLib {
	lib := make(ChunkLib, len(chunks))
	for i := range chunks {
		lib[chunks[i].ID] = &chunks[i]
	}
	return lib
}

// Node is a match of a read segment to one chunk. PositionFromStart is
// measured on the original read whatever the strand, Seq holds the
// matched bases on the strand of the chunk and Cigar consumes exactly the
// chunk length.
type Node struct {
	Chunk             uint64
	Forward           bool
	PositionFromStart int
	Seq               []byte
	Cigar             cigar.Cigar
	Cluster           int
}

func (n *Node) QueryLen() int {
	return len(n.Seq)
}

func (n *Node) End() int {
	return n.PositionFromStart + len(n.Seq)
}

func (n *Node) String() string {
	strand := '+'
	if !n.Forward {
		strand = '-'
	}
	return fmt.Sprintf("%d(%c)@%d", n.Chunk, strand, n.PositionFromStart)
}

type NodeArr []Node

func (arr NodeArr) Len() int {
	return len(arr)
}

func (arr NodeArr) Less(i, j int) bool {
	return arr[i].PositionFromStart < arr[j].PositionFromStart
}

func (arr NodeArr) Swap(i, j int) {
	arr[i], arr[j] = arr[j], arr[i]
}

// Edge join two consecutive nodes, a negative Offset is an overlap
type Edge struct {
	From, To uint64
	Offset   int
	Label    []byte
}

// EdgeFromNodes build the edge between prev and next, Label hold the read
// bases between them when they do not overlap.
func EdgeFromNodes(prev, next *Node, seq []byte) Edge {
	e := Edge{From: prev.Chunk, To: next.Chunk}
	e.Offset = next.PositionFromStart - prev.End()
	if e.Offset > 0 {
		e.Label = append([]byte(nil), seq[prev.End():next.PositionFromStart]...)
	}
	return e
}

type EncodedRead struct {
	ID             uint64
	Name           string
	OriginalLength int
	Nodes          []Node
	Edges          []Edge
	LeadingGap     []byte
	TrailingGap    []byte
}

// EncodedLength return node lengths plus edge offsets plus both gaps
func (er *EncodedRead) EncodedLength() int {
	l := len(er.LeadingGap) + len(er.TrailingGap)
	for i := range er.Nodes {
		l += len(er.Nodes[i].Seq)
	}
	for _, e := range er.Edges {
		l += e.Offset
	}
	return l
}

// CheckLength panic if the decomposition does not add up to the read length
func (er *EncodedRead) CheckLength() {
	if l := er.EncodedLength(); l != er.OriginalLength {
		log.Panicf("[CheckLength] read ID: %d encoded length: %d != original length: %d\n", er.ID, l, er.OriginalLength)
	}
}

// Rebuild recompute edges and gaps from Nodes, which must be sorted by
// position, and check the length
func (er *EncodedRead) Rebuild(seq []byte) {
	if len(er.Nodes) == 0 {
		log.Panicf("[Rebuild] read ID: %d has no node\n", er.ID)
	}
	er.OriginalLength = len(seq)
	er.Edges = make([]Edge, 0, len(er.Nodes)-1)
	for i := 1; i < len(er.Nodes); i++ {
		er.Edges = append(er.Edges, EdgeFromNodes(&er.Nodes[i-1], &er.Nodes[i], seq))
	}
	first, last := &er.Nodes[0], &er.Nodes[len(er.Nodes)-1]
	er.LeadingGap = append([]byte(nil), seq[:first.PositionFromStart]...)
	er.TrailingGap = append([]byte(nil), seq[last.End():]...)
	er.CheckLength()
}
