package encode

import (
	"fmt"
	"sort"

	"github.com/mudesheng/chunkenc/seedhit"
	"github.com/mudesheng/chunkenc/utils"
)

type bucketKey struct {
	chunk   uint64
	forward bool
}

func bucketLess(a, b bucketKey) bool {
	if a.chunk != b.chunk {
		return a.chunk < b.chunk
	}
	return a.forward && !b.forward
}

// EncodeRead encode every (chunk, strand) bucket of the read's hits and
// assemble the accepted nodes. ok is false when no node survives.
func EncodeRead(read *RawRead, hits []*seedhit.SeedHit, chunks ChunkLib, opt Options) (*EncodedRead, bool) {
	buckets := make(map[bucketKey][]*seedhit.SeedHit)
	for _, h := range hits {
		if h.RefMatchLen <= opt.Margin {
			continue
		}
		k := bucketKey{chunk: h.ChunkID(), forward: h.QueryForward}
		chunk, ok := chunks[k.chunk]
		if !ok {
			continue
		}
		if h.QueryStart < 0 || h.QueryEnd() > len(read.Seq) || h.RefStart < 0 || h.RefEnd() > len(chunk.Seq) {
			if opt.Debug {
				fmt.Printf("[EncodeRead] read: %s hit out of range q: %d-%d r: %d-%d\n", read.Name, h.QueryStart, h.QueryEnd(), h.RefStart, h.RefEnd())
			}
			continue
		}
		buckets[k] = append(buckets[k], h)
	}
	keys := make([]bucketKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return bucketLess(keys[i], keys[j]) })

	var rev []byte
	var nodes []Node
	for _, k := range keys {
		seq := read.Seq
		if !k.forward {
			if rev == nil {
				rev = utils.GetReverseCompByteArr(read.Seq)
			}
			seq = rev
		}
		start, mseq, cg, ok := encodeAlignment(buckets[k], chunks[k.chunk], seq, opt)
		if !ok {
			continue
		}
		if !k.forward {
			start = len(read.Seq) - start - len(mseq)
		}
		nodes = append(nodes, Node{Chunk: k.chunk, Forward: k.forward, PositionFromStart: start, Seq: mseq, Cigar: cg})
	}
	if len(nodes) == 0 {
		return nil, false
	}
	sort.Stable(NodeArr(nodes))
	er := &EncodedRead{ID: read.ID, Name: read.Name, Nodes: nodes}
	er.Rebuild(read.Seq)
	if opt.Debug {
		fmt.Printf("[EncodeRead] read: %s nodes: %v\n", read.Name, nodes)
	}
	return er, true
}

type encodeResult struct {
	idx int
	er  *EncodedRead
}

func paraEncodeRead(rc <-chan int, wc chan<- encodeResult, reads []RawRead, hits map[string][]*seedhit.SeedHit, chunks ChunkLib, opt Options) {
	for {
		idx, ok := <-rc
		if !ok {
			wc <- encodeResult{idx: -1}
			break
		}
		read := &reads[idx]
		er, _ := EncodeRead(read, hits[read.Name], chunks, opt)
		wc <- encodeResult{idx: idx, er: er}
	}
}

// EncodeAll encode the reads with numCPU workers. Reads without any
// accepted node are dropped, the result is sorted by read ID.
func EncodeAll(reads []RawRead, hits map[string][]*seedhit.SeedHit, chunks ChunkLib, opt Options, numCPU int) []*EncodedRead {
	if numCPU < 1 {
		numCPU = 1
	}
	rc := make(chan int, numCPU)
	wc := make(chan encodeResult, numCPU)
	go func() {
		for i := range reads {
			rc <- i
		}
		close(rc)
	}()
	for i := 0; i < numCPU; i++ {
		go paraEncodeRead(rc, wc, reads, hits, chunks, opt)
	}

	slots := make([]*EncodedRead, len(reads))
	for finished := 0; finished < numCPU; {
		res := <-wc
		if res.idx < 0 {
			finished++
			continue
		}
		slots[res.idx] = res.er
	}

	ers := make([]*EncodedRead, 0, len(reads))
	for _, er := range slots {
		if er != nil {
			ers = append(ers, er)
		}
	}
	sort.SliceStable(ers, func(i, j int) bool { return ers[i].ID < ers[j].ID })
	fmt.Printf("[EncodeAll] reads: %d encoded: %d dropped: %d\n", len(reads), len(ers), len(reads)-len(ers))
	return ers
}
