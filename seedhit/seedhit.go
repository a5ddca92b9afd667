// Package seedhit holds the local alignments of read segments against
// chunks, as produced by an external seed aligner, and the readers for the
// supported hit formats.
package seedhit

import (
	"log"
	"sort"

	"github.com/mudesheng/chunkenc/cigar"
	"github.com/mudesheng/chunkenc/utils"
)

// SeedHit is one local alignment. The chunk is the reference, the read is
// the query. Query coordinates are on the strand the hit was reported on,
// so a reverse strand hit counts from the start of the reverse complement.
type SeedHit struct {
	RefName                   string
	RefStart, RefMatchLen     int
	RefLen                    int
	QueryName                 string
	QueryForward              bool
	QueryStart, QueryMatchLen int
	QueryLen                  int
	Score                     int
	Ops                       cigar.Cigar
}

func (h *SeedHit) RefEnd() int {
	return h.RefStart + h.RefMatchLen
}

func (h *SeedHit) QueryEnd() int {
	return h.QueryStart + h.QueryMatchLen
}

// ChunkID parse RefName as the chunk id
func (h *SeedHit) ChunkID() uint64 {
	id, err := utils.ByteArrInt([]byte(h.RefName))
	if err != nil {
		log.Panicf("[ChunkID] reference name: %q is not a chunk id: %v\n", h.RefName, err)
	}
	return id
}

// check make sure the ops agree with the reported match lengths
func (h *SeedHit) check() bool {
	if len(h.Ops) == 0 {
		h.Ops = cigar.Cigar{{Kind: cigar.Match, Len: h.RefMatchLen}}
		return h.RefMatchLen == h.QueryMatchLen
	}
	return h.Ops.RefLen() == h.RefMatchLen && h.Ops.QueryLen() == h.QueryMatchLen
}

type SeedHitArr []SeedHit

func (arr SeedHitArr) Len() int {
	return len(arr)
}

func (arr SeedHitArr) Less(i, j int) bool {
	if arr[i].QueryStart != arr[j].QueryStart {
		return arr[i].QueryStart < arr[j].QueryStart
	}
	return arr[i].RefStart < arr[j].RefStart
}

func (arr SeedHitArr) Swap(i, j int) {
	arr[i], arr[j] = arr[j], arr[i]
}

// Distribute sort hits in place by query then reference start and group
// them by read name. Equal starts keep the input order.
func Distribute(hits []SeedHit) map[string][]*SeedHit {
	sort.Stable(SeedHitArr(hits))
	buckets := make(map[string][]*SeedHit)
	for i := range hits {
		h := &hits[i]
		buckets[h.QueryName] = append(buckets[h.QueryName], h)
	}
	return buckets
}

// SortedNames return the read names of a Distribute result in sorted order
func SortedNames(buckets map[string][]*SeedHit) []string {
	names := make([]string, 0, len(buckets))
	for n := range buckets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
