// Package dpalign implements the full dynamic programming aligners used to
// stitch seed hits, to compare read skeletons and to confirm deletion fills.
package dpalign

import (
	"log"

	"github.com/mudesheng/chunkenc/cigar"
)

const (
	opMatch = iota
	opIns
	opDel
)

// compress turn the single base trace (from alignment end to start) into a
// coalesced cigar in forward order.
func compress(trace []uint8) cigar.Cigar {
	cg := make(cigar.Cigar, 0, 8)
	for i := len(trace) - 1; i >= 0; i-- {
		var kind cigar.OpKind
		switch trace[i] {
		case opMatch:
			kind = cigar.Match
		case opIns:
			kind = cigar.Ins
		case opDel:
			kind = cigar.Del
		default:
			log.Panicf("[compress] unknown trace op: %v\n", trace[i])
		}
		cg = cg.Push(cigar.Op{Kind: kind, Len: 1})
	}
	return cg
}

// GlobalAlign align query to refr end to end with a linear gap score.
// On equal scores the traceback prefers Del, then Ins, then Match.
func GlobalAlign(query, refr []byte, mat, mism, gap int) cigar.Cigar {
	ql, rl := len(query), len(refr)
	dp := make([][]int, rl+1)
	for i := range dp {
		dp[i] = make([]int, ql+1)
		dp[i][0] = i * gap
	}
	for j := 0; j <= ql; j++ {
		dp[0][j] = j * gap
	}
	for i := 1; i <= rl; i++ {
		r := refr[i-1]
		for j := 1; j <= ql; j++ {
			ms := mism
			if r == query[j-1] {
				ms = mat
			}
			max := dp[i-1][j-1] + ms
			if s := dp[i-1][j] + gap; s > max {
				max = s
			}
			if s := dp[i][j-1] + gap; s > max {
				max = s
			}
			dp[i][j] = max
		}
	}

	trace := make([]uint8, 0, ql+rl)
	qPos, rPos := ql, rl
	for qPos > 0 && rPos > 0 {
		cur := dp[rPos][qPos]
		if cur == dp[rPos-1][qPos]+gap {
			trace = append(trace, opDel)
			rPos--
		} else if cur == dp[rPos][qPos-1]+gap {
			trace = append(trace, opIns)
			qPos--
		} else {
			ms := mism
			if query[qPos-1] == refr[rPos-1] {
				ms = mat
			}
			if cur != dp[rPos-1][qPos-1]+ms {
				log.Panicf("[GlobalAlign] broken traceback at r: %d, q: %d\n", rPos, qPos)
			}
			trace = append(trace, opMatch)
			qPos--
			rPos--
		}
	}
	for ; qPos > 0; qPos-- {
		trace = append(trace, opIns)
	}
	for ; rPos > 0; rPos-- {
		trace = append(trace, opDel)
	}
	return compress(trace)
}
