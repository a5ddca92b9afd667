package dfill

import (
	"fmt"
	"log"
	"math"

	"github.com/mudesheng/chunkenc/cigar"
	"github.com/mudesheng/chunkenc/dpalign"
	"github.com/mudesheng/chunkenc/encode"
	"github.com/mudesheng/chunkenc/utils"
)

type Options struct {
	FillOffset  int     // flank added on both sides of the search window
	AlignLimit  float64 // max edit distance as a fraction of the chunk length
	MaxIndelRun int
	MinSupport  int
	Debug       bool
}

func NewOptions(g utils.GlobalSetting, debug bool) Options {
	return Options{
		FillOffset:  g.FillOffset,
		AlignLimit:  g.AlignLimit,
		MaxIndelRun: g.MaxIndelRun,
		MinSupport:  g.MinSupport,
		Debug:       debug,
	}
}

// Pileup collect, for the gap before one node of the target read, the
// first chunk each aligned neighbour carries there.
type Pileup struct {
	Inserted []LightNode
	Coverage int
}

type insKey struct {
	chunk   uint64
	forward bool
}

func (p *Pileup) counts() map[insKey]int {
	count := make(map[insKey]int)
	for _, n := range p.Inserted {
		count[insKey{n.Chunk, n.Forward}]++
	}
	return count
}

// MaxInsertion return the count of the most frequent (chunk, strand)
func (p *Pileup) MaxInsertion() (max int) {
	for _, c := range p.counts() {
		if c > max {
			max = c
		}
	}
	return
}

// MaxInsInformation return the most frequent (chunk, strand) with the mean
// offsets of its occurrences. Ties go to the smaller chunk id, then to the
// forward strand.
func (p *Pileup) MaxInsInformation() (prevOffset int, chunk uint64, forward bool, afterOffset int, ok bool) {
	var best insKey
	bestCount := 0
	for k, c := range p.counts() {
		if c > bestCount || (c == bestCount && (k.chunk < best.chunk || (k.chunk == best.chunk && k.forward && !best.forward))) {
			best, bestCount = k, c
		}
	}
	if bestCount == 0 {
		return
	}
	var prevSum, prevNum, afterSum, afterNum int
	for _, n := range p.Inserted {
		if n.Chunk != best.chunk || n.Forward != best.forward {
			continue
		}
		if n.HasPrev {
			prevSum += n.PrevOffset
			prevNum++
		}
		if n.HasAfter {
			afterSum += n.AfterOffset
			afterNum++
		}
	}
	if prevNum > 0 {
		prevOffset = prevSum / prevNum
	}
	if afterNum > 0 {
		afterOffset = afterSum / afterNum
	}
	return prevOffset, best.chunk, best.forward, afterOffset, true
}

// GetPileup align the neighbours of er and pile up what they carry. The
// result has one slot more than er has nodes, slot i is the gap before node i.
func GetPileup(er *encode.EncodedRead, idx *SkeltonIndex) []Pileup {
	pileups := make([]Pileup, len(er.Nodes)+1)
	read := NewReadSkelton(er.ID, er.Nodes)
	for _, si := range idx.Candidates(er.Nodes) {
		query := &idx.Skeltons[si]
		ops, forward, ok := AlignSkeltons(&read, query)
		if !ok {
			continue
		}
		qNodes := query.Nodes
		if !forward {
			qNodes = query.Rev().Nodes
		}
		r, q := 0, 0
		for _, op := range ops {
			switch op.Kind {
			case cigar.Ins:
				// only the first inserted chunk is recorded
				if 0 < r && r < len(er.Nodes) {
					pileups[r].Inserted = append(pileups[r].Inserted, qNodes[q])
				}
				q += op.Len
			case cigar.Del:
				r += op.Len
			case cigar.Match:
				for i := r; i < r+op.Len; i++ {
					pileups[i].Coverage++
				}
				r += op.Len
				q += op.Len
			}
		}
	}
	return pileups
}

// Threshold return the count an insertion needs to be tried:
// a third of the mean coverage, at least minSupport
func Threshold(pileups []Pileup, minSupport int) int {
	if len(pileups) == 0 {
		return minSupport
	}
	tot := 0
	for _, p := range pileups {
		tot += p.Coverage
	}
	return utils.MaxInt(minSupport, tot/3/len(pileups))
}

// encodeNode search chunk in seq[start:end] and build the node when the
// alignment is close enough
func encodeNode(seq []byte, start, end int, forward bool, chunk *encode.Chunk, opt Options) (encode.Node, bool) {
	var query []byte
	if forward {
		query = append([]byte(nil), seq[start:end]...)
	} else {
		query = utils.GetReverseCompByteArr(seq[start:end])
	}
	utils.UpperSeq(query)
	aln := dpalign.InfixAlign(chunk.Seq, query)
	distThr := int(math.Floor(float64(len(chunk.Seq)) * opt.AlignLimit))
	if aln.Dist > distThr || aln.End < aln.Start {
		return encode.Node{}, false
	}
	if aln.Ops.MaxIndel() > opt.MaxIndelRun {
		return encode.Node{}, false
	}
	n := encode.Node{
		Chunk:   chunk.ID,
		Forward: forward,
		Seq:     append([]byte(nil), query[aln.Start:aln.End+1]...),
		Cigar:   aln.Ops,
	}
	if forward {
		n.PositionFromStart = start + aln.Start
	} else {
		n.PositionFromStart = start + len(query) - aln.End - 1
	}
	if opt.Debug {
		q, al, r := cigar.Recover(n.Seq, chunk.Seq, n.Cigar)
		fmt.Printf("[encodeNode] chunk: %d dist: %d\n%s\n%s\n%s\n", chunk.ID, aln.Dist, q, al, r)
	}
	return n, true
}

type insertion struct {
	idx  int
	node encode.Node
}

// CorrectDeletion fill the gaps of er that enough neighbours agree on and
// return the number of nodes spliced in. seq is the raw read.
func CorrectDeletion(er *encode.EncodedRead, seq []byte, chunks encode.ChunkLib, idx *SkeltonIndex, opt Options) int {
	pileups := GetPileup(er, idx)
	threshold := Threshold(pileups, opt.MinSupport)
	nodes := er.Nodes
	var inserts []insertion
	for i := 1; i < len(nodes); i++ {
		p := &pileups[i]
		if p.MaxInsertion() < threshold {
			continue
		}
		prevOffset, cid, forward, _, _ := p.MaxInsInformation()
		chunk, ok := chunks[cid]
		if !ok {
			log.Printf("[CorrectDeletion] chunk: %d not in library\n", cid)
			continue
		}
		start := nodes[i-1].End() + prevOffset - opt.FillOffset
		if start < 0 {
			start = 0
		}
		end := utils.MinInt(start+len(chunk.Seq)+2*opt.FillOffset, len(seq))
		if end <= start {
			continue
		}
		if n, ok := encodeNode(seq, start, end, forward, chunk, opt); ok {
			inserts = append(inserts, insertion{idx: i, node: n})
		}
	}
	if len(inserts) == 0 {
		return 0
	}

	newNodes := make([]encode.Node, 0, len(nodes)+len(inserts))
	newNodes = append(newNodes, nodes...)
	for accum, ins := range inserts {
		pos := ins.idx + accum
		newNodes = append(newNodes, encode.Node{})
		copy(newNodes[pos+1:], newNodes[pos:])
		newNodes[pos] = ins.node
	}
	er.Nodes = newNodes
	er.Rebuild(seq)
	if opt.Debug {
		fmt.Printf("[CorrectDeletion] read ID: %d inserted: %d nodes: %v\n", er.ID, len(inserts), NewReadSkelton(er.ID, er.Nodes))
	}
	return len(inserts)
}

type fillResult struct {
	idx      int
	inserted int
}

func paraCorrectDeletion(rc <-chan int, wc chan<- fillResult, ers []*encode.EncodedRead, rawSeqs map[uint64][]byte, chunks encode.ChunkLib, idx *SkeltonIndex, opt Options) {
	for {
		i, ok := <-rc
		if !ok {
			wc <- fillResult{idx: -1}
			break
		}
		er := ers[i]
		seq, ok := rawSeqs[er.ID]
		if !ok || len(seq) != er.OriginalLength {
			log.Printf("[paraCorrectDeletion] read ID: %d raw sequence missing or length changed\n", er.ID)
			wc <- fillResult{idx: i}
			continue
		}
		wc <- fillResult{idx: i, inserted: CorrectDeletion(er, seq, chunks, idx, opt)}
	}
}

// CorrectDeletions run CorrectDeletion over every read with at least two
// nodes. The skeletons are taken before any read is changed.
func CorrectDeletions(ers []*encode.EncodedRead, rawSeqs map[uint64][]byte, chunks encode.ChunkLib, opt Options, numCPU int) int {
	if numCPU < 1 {
		numCPU = 1
	}
	idx := NewSkeltonIndex(ers)
	var targets []int
	for i, er := range ers {
		if len(er.Nodes) > 1 {
			targets = append(targets, i)
		}
	}
	rc := make(chan int, numCPU)
	wc := make(chan fillResult, numCPU)
	go func() {
		for _, i := range targets {
			rc <- i
		}
		close(rc)
	}()
	for i := 0; i < numCPU; i++ {
		go paraCorrectDeletion(rc, wc, ers, rawSeqs, chunks, idx, opt)
	}

	counts := make([]int, len(ers))
	for finished := 0; finished < numCPU; {
		res := <-wc
		if res.idx < 0 {
			finished++
			continue
		}
		counts[res.idx] = res.inserted
	}
	total, changed := 0, 0
	for _, c := range counts {
		total += c
		if c > 0 {
			changed++
		}
	}
	fmt.Printf("[CorrectDeletions] reads: %d candidates: %d changed: %d nodes inserted: %d\n", len(ers), len(targets), changed, total)
	return total
}

