// Package encode turns a long read and its seed hits against the chunk
// library into an EncodedRead: an ordered list of chunk matches joined by
// gap edges.
package encode

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/mudesheng/chunkenc/cigar"
	"github.com/mudesheng/chunkenc/dpalign"
	"github.com/mudesheng/chunkenc/seedhit"
	"github.com/mudesheng/chunkenc/utils"
)

type Options struct {
	Margin           int
	MinCoverFraction float64
	Debug            bool
}

func NewOptions(g utils.GlobalSetting, debug bool) Options {
	return Options{Margin: g.Margin, MinCoverFraction: g.MinCoverFraction, Debug: debug}
}

var errRetreatExhausted = errors.New("retreat exhausted the cigar")

// popCigarBy drop trailing ops until refLen reference bases are released
// and return the query bases released with them. The part of the last
// popped op beyond refLen is pushed back.
func popCigarBy(cg cigar.Cigar, refLen int) (cigar.Cigar, int, error) {
	if refLen <= 0 {
		log.Panicf("[popCigarBy] refLen: %d must > 0\n", refLen)
	}
	var queryPop, refPop int
	var last cigar.Op
	for refPop < refLen {
		if len(cg) == 0 {
			return cg, 0, errRetreatExhausted
		}
		last = cg[len(cg)-1]
		cg = cg[:len(cg)-1]
		switch last.Kind {
		case cigar.Del:
			refPop += last.Len
		case cigar.Ins:
			queryPop += last.Len
		case cigar.Match:
			refPop += last.Len
			queryPop += last.Len
		}
	}
	if overflow := refPop - refLen; overflow > 0 {
		switch last.Kind {
		case cigar.Del:
			cg = cg.Push(cigar.Op{Kind: cigar.Del, Len: overflow})
		case cigar.Match:
			queryPop -= overflow
			cg = cg.Push(cigar.Op{Kind: cigar.Match, Len: overflow})
		default:
			log.Panicf("[popCigarBy] overflow: %d on op: %v\n", overflow, last)
		}
	}
	return cg, queryPop, nil
}

// stepTo extend cg from (qPos, rPos) to (qTarget, rTarget). When the
// reference cursor is already past rTarget the cigar is rolled back and the
// released query bases become an insertion.
func stepTo(cg cigar.Cigar, refr, read []byte, qPos, rPos, qTarget, rTarget int) (cigar.Cigar, error) {
	if qPos > qTarget {
		log.Panicf("[stepTo] query cursor: %d beyond target: %d\n", qPos, qTarget)
	}
	if rPos <= rTarget {
		for _, op := range dpalign.GlobalAlign(read[qPos:qTarget], refr[rPos:rTarget], 1, -1, -1) {
			cg = cg.Push(op)
		}
		return cg, nil
	}
	cg, queryPop, err := popCigarBy(cg, rPos-rTarget)
	if err != nil {
		return cg, err
	}
	return cg.Push(cigar.Op{Kind: cigar.Ins, Len: qTarget - qPos + queryPop}), nil
}

// stitch walk the chained hits, filling between them by global alignment
// and appending the hit ops. It return the cursors after the last hit.
func stitch(path []*seedhit.SeedHit, refr, read []byte, qPos, rPos int) (cg cigar.Cigar, q, r int, err error) {
	for _, h := range path {
		if cg, err = stepTo(cg, refr, read, qPos, rPos, h.QueryStart, h.RefStart); err != nil {
			return
		}
		for _, op := range h.Ops {
			cg = cg.Push(op)
		}
		qPos, rPos = h.QueryEnd(), h.RefEnd()
	}
	return cg, qPos, rPos, nil
}

func coverThreshold(chunkLen int, frac float64) int {
	return int(math.Floor(float64(chunkLen)*frac + 1e-9))
}

// encodeAlignment align one (chunk, strand) bucket. read is already on
// the strand of the hits. It return the query start on that strand, the
// matched bases and the cigar covering the whole chunk.
func encodeAlignment(hits []*seedhit.SeedHit, chunk *Chunk, read []byte, opt Options) (int, []byte, cigar.Cigar, bool) {
	path := Chain(hits, opt.Margin)
	if len(path) == 0 {
		return 0, nil, nil, false
	}
	cover := 0
	for _, h := range path {
		cover += h.RefMatchLen
	}
	if cover < coverThreshold(len(chunk.Seq), opt.MinCoverFraction) {
		if opt.Debug {
			fmt.Printf("[encodeAlignment] chunk: %d cover: %d < %v of %d\n", chunk.ID, cover, opt.MinCoverFraction, len(chunk.Seq))
		}
		return 0, nil, nil, false
	}
	queryStart, queryEnd := path[0].QueryStart, path[len(path)-1].QueryEnd()

	cg, qPos, rPos, err := stitch(path, chunk.Seq, read, queryStart, 0)
	if err == nil {
		cg, err = stepTo(cg, chunk.Seq, read, qPos, rPos, queryEnd, len(chunk.Seq))
	}
	if err != nil {
		log.Printf("[encodeAlignment] chunk: %d read: %s dropped: %v\n", chunk.ID, path[0].QueryName, err)
		return 0, nil, nil, false
	}

	for len(cg) > 0 && cg[0].Kind == cigar.Ins {
		queryStart += cg[0].Len
		cg = cg[1:]
	}
	for len(cg) > 0 && cg[len(cg)-1].Kind == cigar.Ins {
		queryEnd -= cg[len(cg)-1].Len
		cg = cg[:len(cg)-1]
	}
	if cg.RefLen() != len(chunk.Seq) {
		log.Panicf("[encodeAlignment] chunk: %d cigar reference length: %d != chunk length: %d\n", chunk.ID, cg.RefLen(), len(chunk.Seq))
	}
	if cg.QueryLen() != queryEnd-queryStart {
		log.Panicf("[encodeAlignment] chunk: %d cigar query length: %d != span: %d\n", chunk.ID, cg.QueryLen(), queryEnd-queryStart)
	}
	seq := append([]byte(nil), read[queryStart:queryEnd]...)
	return queryStart, seq, cg, true
}

// JoinAlignments stitch the hits against refr without the coverage check
// and without extending to the ends of refr. It return the query and
// reference start of the first chained hit.
func JoinAlignments(hits []*seedhit.SeedHit, refr, read []byte, margin int) (queryStart, refStart int, ops cigar.Cigar, err error) {
	if len(hits) == 0 {
		return 0, 0, nil, errors.New("no hits to join")
	}
	path := Chain(hits, margin)
	if len(path) == 0 {
		return 0, 0, nil, errors.New("empty chain")
	}
	queryStart, refStart = path[0].QueryStart, path[0].RefStart
	ops, _, _, err = stitch(path, refr, read, queryStart, refStart)
	return
}
