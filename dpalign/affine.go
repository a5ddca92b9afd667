package dpalign

import (
	"log"

	"github.com/mudesheng/chunkenc/cigar"
)

// MinScore forbid a mismatch, any path through it never wins.
const MinScore = -10000000

const (
	stMatch = iota
	stIns   // consume query only
	stDel   // consume reference only
)

// AffineOverlap align a reference of length n against a query of length m
// with three states. score(i, j) scores reference element i with query
// element j. Opening a gap costs 1, extending it is free, and overhangs on
// both ends of both sequences are free, so the result is an overlap
// (dovetail) alignment. The returned ops cover both sequences completely:
// unaligned reference remainder is Del, unaligned query remainder is Ins.
func AffineOverlap(n, m int, score func(i, j int) int) (int, cigar.Cigar) {
	var dp [3][][]int
	for s := range dp {
		dp[s] = make([][]int, n+1)
		for i := range dp[s] {
			dp[s][i] = make([]int, m+1)
		}
	}
	for i := 0; i <= n; i++ {
		dp[stMatch][i][0] = MinScore
		dp[stIns][i][0] = MinScore
	}
	for j := 0; j <= m; j++ {
		dp[stMatch][0][j] = MinScore
		dp[stDel][0][j] = MinScore
	}
	dp[stMatch][0][0] = 0

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			dp[stMatch][i][j] = max3(dp[stMatch][i-1][j-1], dp[stIns][i-1][j-1], dp[stDel][i-1][j-1]) + score(i-1, j-1)
			dp[stIns][i][j] = max2(dp[stMatch][i][j-1]-1, dp[stIns][i][j-1])
			dp[stDel][i][j] = max2(dp[stMatch][i-1][j]-1, dp[stDel][i-1][j])
		}
	}

	// best cell on the last column, then on the last row; later cells win ties
	state, rPos, qPos := stMatch, 0, m
	best := dp[stMatch][0][m]
	visit := func(i, j int) {
		for s := stMatch; s <= stDel; s++ {
			if dp[s][i][j] >= best {
				best, state, rPos, qPos = dp[s][i][j], s, i, j
			}
		}
	}
	for i := 0; i <= n; i++ {
		visit(i, m)
	}
	for j := 0; j <= m; j++ {
		visit(n, j)
	}

	trace := make([]uint8, 0, n+m)
	for i := rPos; i < n; i++ {
		trace = append(trace, opDel)
	}
	for j := qPos; j < m; j++ {
		trace = append(trace, opIns)
	}
	for rPos > 0 && qPos > 0 {
		cur := dp[state][rPos][qPos]
		switch state {
		case stMatch:
			prev := cur - score(rPos-1, qPos-1)
			switch prev {
			case dp[stMatch][rPos-1][qPos-1]:
				state = stMatch
			case dp[stIns][rPos-1][qPos-1]:
				state = stIns
			case dp[stDel][rPos-1][qPos-1]:
				state = stDel
			default:
				log.Panicf("[AffineOverlap] broken match traceback at r: %d, q: %d\n", rPos, qPos)
			}
			trace = append(trace, opMatch)
			rPos--
			qPos--
		case stIns:
			if cur == dp[stMatch][rPos][qPos-1]-1 {
				state = stMatch
			} else if cur == dp[stIns][rPos][qPos-1] {
				state = stIns
			} else {
				log.Panicf("[AffineOverlap] broken insertion traceback at r: %d, q: %d\n", rPos, qPos)
			}
			trace = append(trace, opIns)
			qPos--
		case stDel:
			if cur == dp[stMatch][rPos-1][qPos]-1 {
				state = stMatch
			} else if cur == dp[stDel][rPos-1][qPos] {
				state = stDel
			} else {
				log.Panicf("[AffineOverlap] broken deletion traceback at r: %d, q: %d\n", rPos, qPos)
			}
			trace = append(trace, opDel)
			rPos--
		default:
			log.Panicf("[AffineOverlap] unknown state: %d\n", state)
		}
	}
	for ; rPos > 0; rPos-- {
		trace = append(trace, opDel)
	}
	for ; qPos > 0; qPos-- {
		trace = append(trace, opIns)
	}
	return best, compress(trace)
}

func max2(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func max3(a, b, c int) int {
	return max2(max2(a, b), c)
}
