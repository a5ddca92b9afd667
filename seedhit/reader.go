package seedhit

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/mudesheng/chunkenc/cigar"
)

// Read dispatch to the reader of format, "" is the LAST TAB format
func Read(r io.Reader, format string, numCPU int) ([]SeedHit, error) {
	switch format {
	case "", "tab":
		return ReadLastTab(r)
	case "paf":
		return ReadPAF(r)
	case "bam":
		return ReadBAM(r, numCPU)
	}
	return nil, fmt.Errorf("unknown hits format: %q", format)
}

func atoiFields(sa []string, idx ...int) ([]int, error) {
	v := make([]int, len(idx))
	for i, x := range idx {
		d, err := strconv.Atoi(sa[x])
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", x+1, err)
		}
		v[i] = d
	}
	return v, nil
}

// parseTabBlocks decode the LAST TAB blocks column, "x:y" is a gap with x
// chunk bases and y read bases.
func parseTabBlocks(s string) (cg cigar.Cigar, err error) {
	for _, b := range strings.Split(s, ",") {
		if i := strings.IndexByte(b, ':'); i >= 0 {
			var d, n int
			if d, err = strconv.Atoi(b[:i]); err != nil {
				return nil, err
			}
			if n, err = strconv.Atoi(b[i+1:]); err != nil {
				return nil, err
			}
			cg = cg.Push(cigar.Op{Kind: cigar.Del, Len: d})
			cg = cg.Push(cigar.Op{Kind: cigar.Ins, Len: n})
		} else {
			var m int
			if m, err = strconv.Atoi(b); err != nil {
				return nil, err
			}
			cg = cg.Push(cigar.Op{Kind: cigar.Match, Len: m})
		}
	}
	return cg, nil
}

// ParseLastTab decode one LAST TAB line, the first sequence is the chunk
func ParseLastTab(line string) (h SeedHit, err error) {
	sa := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(sa) < 12 {
		return h, fmt.Errorf("LAST TAB line has %d columns, want >= 12", len(sa))
	}
	v, err := atoiFields(sa, 0, 2, 3, 5, 7, 8, 10)
	if err != nil {
		return h, err
	}
	h.Score = v[0]
	h.RefName, h.RefStart, h.RefMatchLen, h.RefLen = sa[1], v[1], v[2], v[3]
	h.QueryName, h.QueryStart, h.QueryMatchLen, h.QueryLen = sa[6], v[4], v[5], v[6]
	if sa[4] != "+" {
		return h, fmt.Errorf("chunk strand: %q must be '+'", sa[4])
	}
	switch sa[9] {
	case "+":
		h.QueryForward = true
	case "-":
	default:
		return h, fmt.Errorf("unknown read strand: %q", sa[9])
	}
	if h.Ops, err = parseTabBlocks(sa[11]); err != nil {
		return h, fmt.Errorf("blocks %q: %w", sa[11], err)
	}
	if !h.check() {
		return h, fmt.Errorf("blocks %v disagree with match length ref: %d read: %d", h.Ops, h.RefMatchLen, h.QueryMatchLen)
	}
	return h, nil
}

// ParsePAF decode one PAF line, the read is the query and the chunk the
// target. The cg:Z tag is used when present, else the hit is an ungapped
// match. Reverse strand query coordinates are moved to the reverse
// complement.
func ParsePAF(line string) (h SeedHit, err error) {
	sa := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(sa) < 12 {
		return h, fmt.Errorf("PAF line has %d columns, want >= 12", len(sa))
	}
	v, err := atoiFields(sa, 1, 2, 3, 6, 7, 8, 9)
	if err != nil {
		return h, err
	}
	qlen, qs, qe := v[0], v[1], v[2]
	h.QueryName, h.QueryLen, h.QueryMatchLen = sa[0], qlen, qe-qs
	h.RefName, h.RefLen, h.RefStart, h.RefMatchLen = sa[5], v[3], v[4], v[5]-v[4]
	h.Score = v[6]
	switch sa[4] {
	case "+":
		h.QueryForward = true
		h.QueryStart = qs
	case "-":
		h.QueryStart = qlen - qe
	default:
		return h, fmt.Errorf("unknown strand: %q", sa[4])
	}
	for _, tag := range sa[12:] {
		switch {
		case strings.HasPrefix(tag, "cg:Z:"):
			if h.Ops, err = cigar.Parse(tag[5:]); err != nil {
				return h, err
			}
		case strings.HasPrefix(tag, "AS:i:"):
			if h.Score, err = strconv.Atoi(tag[5:]); err != nil {
				return h, fmt.Errorf("AS tag %q: %w", tag, err)
			}
		}
	}
	if !h.check() {
		return h, fmt.Errorf("cigar %v disagree with match length ref: %d read: %d", h.Ops, h.RefMatchLen, h.QueryMatchLen)
	}
	return h, nil
}

func readLines(r io.Reader, parse func(string) (SeedHit, error)) (hits []SeedHit, err error) {
	buffp := bufio.NewReaderSize(r, 1<<20)
	for ln := 1; ; ln++ {
		line, err := buffp.ReadString('\n')
		if len(line) > 0 && line[0] != '#' && strings.TrimSpace(line) != "" {
			h, perr := parse(line)
			if perr != nil {
				return hits, fmt.Errorf("line %d: %w", ln, perr)
			}
			hits = append(hits, h)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return hits, err
		}
	}
	return hits, nil
}

func ReadLastTab(r io.Reader) ([]SeedHit, error) {
	return readLines(r, ParseLastTab)
}

func ReadPAF(r io.Reader) ([]SeedHit, error) {
	return readLines(r, ParsePAF)
}

// GetAuxInt return the integer value of an aux field
func GetAuxInt(v interface{}) int {
	switch x := v.(type) {
	case int8:
		return int(x)
	case uint8:
		return int(x)
	case int16:
		return int(x)
	case uint16:
		return int(x)
	case int32:
		return int(x)
	case uint32:
		return int(x)
	default:
		log.Panicf("[GetAuxInt] unknown type of aux value: %v\n", v)
	}
	return 0
}

var asTag = sam.Tag{'A', 'S'}

// ConvertSamRecord turn a mapped BAM record into a SeedHit. A reverse
// strand record already stores the read reverse complemented, so the leading
// clip is the start on that strand.
func ConvertSamRecord(r *sam.Record) (h SeedHit) {
	h.QueryName = r.Name
	h.RefName = r.Ref.Name()
	h.RefLen = r.Ref.Len()
	h.RefStart = r.Pos
	h.QueryForward = r.Flags&sam.Reverse == 0
	var lead int
	h.Ops, lead = cigar.FromSam(r.Cigar)
	h.QueryStart = lead
	h.RefMatchLen = h.Ops.RefLen()
	h.QueryMatchLen = h.Ops.QueryLen()
	h.QueryLen = h.QueryMatchLen
	for _, co := range r.Cigar {
		if t := co.Type(); t == sam.CigarSoftClipped || t == sam.CigarHardClipped {
			h.QueryLen += co.Len()
		}
	}
	if aux := r.AuxFields.Get(asTag); aux != nil {
		h.Score = GetAuxInt(aux.Value())
	} else {
		h.Score = h.Ops.MatchLen()
	}
	return
}

// ReadBAM collect the mapped records of a BAM stream, numCPU set the
// decompression concurrency
func ReadBAM(r io.Reader, numCPU int) (hits []SeedHit, err error) {
	bamfp, err := bam.NewReader(r, numCPU/5+1)
	if err != nil {
		return nil, fmt.Errorf("create bam reader: %w", err)
	}
	defer bamfp.Close()
	for {
		rd, err := bamfp.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return hits, fmt.Errorf("read bam record: %w", err)
		}
		if rd.Flags&sam.Unmapped != 0 || rd.Ref == nil {
			continue
		}
		hits = append(hits, ConvertSamRecord(rd))
	}
	return hits, nil
}
