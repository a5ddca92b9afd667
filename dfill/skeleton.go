// Package dfill recovers chunk matches the encoder missed. Each encoded read
// is compared with its neighbours at the level of chunk order; a chunk that
// enough neighbours carry between two consecutive nodes is searched for in
// the raw read and spliced in when it aligns well.
package dfill

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mudesheng/chunkenc/cigar"
	"github.com/mudesheng/chunkenc/dpalign"
	"github.com/mudesheng/chunkenc/encode"
)

// LightNode is a node reduced to its chunk, strand and the distances to
// its neighbours on the read.
type LightNode struct {
	Chunk       uint64
	Forward     bool
	PrevOffset  int // start of this node minus end of the previous one
	AfterOffset int // start of the next node minus end of this one
	HasPrev     bool
	HasAfter    bool
}

// Rev view the node from the other strand of the read
func (n LightNode) Rev() LightNode {
	return LightNode{
		Chunk:       n.Chunk,
		Forward:     !n.Forward,
		PrevOffset:  n.AfterOffset,
		AfterOffset: n.PrevOffset,
		HasPrev:     n.HasAfter,
		HasAfter:    n.HasPrev,
	}
}

func (n LightNode) String() string {
	if n.Forward {
		return fmt.Sprintf("%d(+)", n.Chunk)
	}
	return fmt.Sprintf("%d(-)", n.Chunk)
}

type ReadSkelton struct {
	ID    uint64
	Nodes []LightNode
}

func NewReadSkelton(id uint64, nodes []encode.Node) ReadSkelton {
	sk := ReadSkelton{ID: id, Nodes: make([]LightNode, len(nodes))}
	for i := range nodes {
		ln := LightNode{Chunk: nodes[i].Chunk, Forward: nodes[i].Forward}
		if i > 0 {
			ln.HasPrev = true
			ln.PrevOffset = nodes[i].PositionFromStart - nodes[i-1].End()
		}
		if i+1 < len(nodes) {
			ln.HasAfter = true
			ln.AfterOffset = nodes[i+1].PositionFromStart - nodes[i].End()
		}
		sk.Nodes[i] = ln
	}
	return sk
}

// Rev reverse the chunk order and flip every strand
func (sk ReadSkelton) Rev() ReadSkelton {
	rs := ReadSkelton{ID: sk.ID, Nodes: make([]LightNode, len(sk.Nodes))}
	for i, n := range sk.Nodes {
		rs.Nodes[len(sk.Nodes)-1-i] = n.Rev()
	}
	return rs
}

func (sk ReadSkelton) String() string {
	var sb strings.Builder
	for _, n := range sk.Nodes {
		sb.WriteString(n.String())
		sb.WriteByte(':')
	}
	return sb.String()
}

const (
	minMatch = 2
	scoreThr = 1
)

func alignScore(read, query []LightNode) (int, cigar.Cigar) {
	return dpalign.AffineOverlap(len(read), len(query), func(i, j int) int {
		if read[i].Chunk == query[j].Chunk && read[i].Forward == query[j].Forward {
			return 1
		}
		return dpalign.MinScore
	})
}

// isProper reject an Ins directly followed by a Del or the reverse
func isProper(cg cigar.Cigar) bool {
	for i := 1; i < len(cg); i++ {
		a, b := cg[i-1].Kind, cg[i].Kind
		if (a == cigar.Ins && b == cigar.Del) || (a == cigar.Del && b == cigar.Ins) {
			return false
		}
	}
	return true
}

// AlignSkeltons overlap align query to read in both orientations. forward
// is false when the ops refer to the reversed query. The forward
// orientation wins ties and a winning orientation that is not a proper
// dovetail rejects the pair.
func AlignSkeltons(read, query *ReadSkelton) (ops cigar.Cigar, forward bool, ok bool) {
	fScore, fOps := alignScore(read.Nodes, query.Nodes)
	rev := query.Rev()
	rScore, rOps := alignScore(read.Nodes, rev.Nodes)
	matchThr := minMatch
	if len(read.Nodes) == 2 {
		matchThr = 1
	}
	if rScore <= fScore && fOps.MatchLen() >= matchThr && fScore >= scoreThr {
		return fOps, true, isProper(fOps)
	} else if fScore <= rScore && rOps.MatchLen() >= matchThr && rScore >= scoreThr {
		return rOps, false, isProper(rOps)
	}
	return nil, false, false
}

// SkeltonIndex hold the skeletons of all reads with at least two nodes and
// the skeletons each chunk appears in. It is not modified after creation.
type SkeltonIndex struct {
	Skeltons []ReadSkelton
	byChunk  map[uint64][]int
}

func NewSkeltonIndex(ers []*encode.EncodedRead) *SkeltonIndex {
	idx := &SkeltonIndex{byChunk: make(map[uint64][]int)}
	for _, er := range ers {
		if len(er.Nodes) < 2 {
			continue
		}
		si := len(idx.Skeltons)
		idx.Skeltons = append(idx.Skeltons, NewReadSkelton(er.ID, er.Nodes))
		for _, n := range er.Nodes {
			arr := idx.byChunk[n.Chunk]
			if len(arr) == 0 || arr[len(arr)-1] != si {
				idx.byChunk[n.Chunk] = append(arr, si)
			}
		}
	}
	return idx
}

// Candidates return the indices of skeletons sharing a chunk with nodes,
// each once and in index order
func (idx *SkeltonIndex) Candidates(nodes []encode.Node) []int {
	seen := make(map[int]bool)
	var cands []int
	for _, n := range nodes {
		for _, si := range idx.byChunk[n.Chunk] {
			if !seen[si] {
				seen[si] = true
				cands = append(cands, si)
			}
		}
	}
	sort.Ints(cands)
	return cands
}
