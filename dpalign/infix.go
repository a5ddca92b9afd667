package dpalign

import (
	"log"

	"github.com/mudesheng/chunkenc/cigar"
)

type InfixResult struct {
	Dist       int
	Start, End int // inclusive text interval of the alignment, End < Start when empty
	Ops        cigar.Cigar
}

// InfixAlign find the substring of text with the smallest unit cost edit
// distance to the whole pattern. The leftmost best end is reported. In Ops
// the pattern plays the reference: Ins is a text base absent from the
// pattern, Del is a pattern base missing in the text. On equal cost the
// traceback extends an open gap before it takes a match.
func InfixAlign(pattern, text []byte) InfixResult {
	pl, tl := len(pattern), len(text)
	w := tl + 1
	dp := make([]int32, (pl+1)*w)
	for i := 1; i <= pl; i++ {
		dp[i*w] = int32(i)
		for j := 1; j <= tl; j++ {
			d := dp[(i-1)*w+j-1]
			if pattern[i-1] != text[j-1] {
				d++
			}
			if v := dp[(i-1)*w+j] + 1; v < d {
				d = v
			}
			if v := dp[i*w+j-1] + 1; v < d {
				d = v
			}
			dp[i*w+j] = d
		}
	}

	end := 0
	for j := 1; j <= tl; j++ {
		if dp[pl*w+j] < dp[pl*w+end] {
			end = j
		}
	}
	res := InfixResult{Dist: int(dp[pl*w+end]), End: end - 1}

	trace := make([]uint8, 0, pl+tl)
	i, j := pl, end
	last := uint8(opMatch)
	for i > 0 {
		cur := dp[i*w+j]
		del := cur == dp[(i-1)*w+j]+1
		ins := j > 0 && cur == dp[i*w+j-1]+1
		diag := false
		if j > 0 {
			d := dp[(i-1)*w+j-1]
			if pattern[i-1] != text[j-1] {
				d++
			}
			diag = cur == d
		}
		switch {
		case last == opDel && del:
			last = opDel
		case last == opIns && ins:
			last = opIns
		case diag:
			last = opMatch
		case del:
			last = opDel
		case ins:
			last = opIns
		default:
			log.Panicf("[InfixAlign] broken traceback at p: %d, t: %d\n", i, j)
		}
		trace = append(trace, last)
		switch last {
		case opMatch:
			i--
			j--
		case opDel:
			i--
		case opIns:
			j--
		}
	}
	res.Start = j
	res.Ops = compress(trace)
	return res
}
