package seqio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/mudesheng/chunkenc/cigar"
	"github.com/mudesheng/chunkenc/encode"
)

const encodedMagic = "#chunkenc"

// ChunkLibraryDigest fingerprint the chunk library independent of input order
func ChunkLibraryDigest(chunks []encode.Chunk) uint64 {
	idx := make([]int, len(chunks))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return chunks[idx[a]].ID < chunks[idx[b]].ID })
	h := xxhash.New()
	var id [8]byte
	for _, i := range idx {
		binary.LittleEndian.PutUint64(id[:], chunks[i].ID)
		h.Write(id[:])
		h.Write(chunks[i].Seq)
	}
	return h.Sum64()
}

func orStar(b []byte) string {
	if len(b) == 0 {
		return "*"
	}
	return string(b)
}

func fromStar(s string) []byte {
	if s == "*" {
		return nil
	}
	return []byte(s)
}

func strand(forward bool) string {
	if forward {
		return "+"
	}
	return "-"
}

// WriteEncodedReads write one R line per read followed by its N (node) and
// E (edge) lines. The first line records the chunk library digest.
func WriteEncodedReads(w io.Writer, digest uint64, ers []*encode.EncodedRead) error {
	buffp := bufio.NewWriterSize(w, 1<<20)
	fmt.Fprintf(buffp, "%s\tv1\t%016x\t%d\n", encodedMagic, digest, len(ers))
	for _, er := range ers {
		fmt.Fprintf(buffp, "R\t%d\t%s\t%d\t%d\t%s\t%s\n", er.ID, er.Name, er.OriginalLength, len(er.Nodes), orStar(er.LeadingGap), orStar(er.TrailingGap))
		for i := range er.Nodes {
			n := &er.Nodes[i]
			fmt.Fprintf(buffp, "N\t%d\t%s\t%d\t%d\t%s\t%s\n", n.Chunk, strand(n.Forward), n.PositionFromStart, n.Cluster, orStar(n.Seq), n.Cigar.ToSam().String())
		}
		for _, e := range er.Edges {
			fmt.Fprintf(buffp, "E\t%d\t%d\t%d\t%s\n", e.From, e.To, e.Offset, orStar(e.Label))
		}
	}
	return buffp.Flush()
}

type encodedParser struct {
	sa  []string
	err error
}

func (p *encodedParser) atoi(i int) int {
	if p.err != nil {
		return 0
	}
	d, err := strconv.Atoi(p.sa[i])
	if err != nil {
		p.err = err
	}
	return d
}

func (p *encodedParser) atou(i int) uint64 {
	if p.err != nil {
		return 0
	}
	d, err := strconv.ParseUint(p.sa[i], 10, 64)
	if err != nil {
		p.err = err
	}
	return d
}

// ReadEncodedReads parse a stream written by WriteEncodedReads. Every read
// is checked for length conservation.
func ReadEncodedReads(r io.Reader) (digest uint64, ers []*encode.EncodedRead, err error) {
	buffp := bufio.NewReaderSize(r, 1<<20)
	var er *encode.EncodedRead
	var nodeNum int
	finish := func() error {
		if er == nil {
			return nil
		}
		if len(er.Nodes) != nodeNum || (len(er.Nodes) > 0 && len(er.Edges) != len(er.Nodes)-1) {
			return fmt.Errorf("read ID: %d has %d nodes %d edges, want %d nodes", er.ID, len(er.Nodes), len(er.Edges), nodeNum)
		}
		if l := er.EncodedLength(); l != er.OriginalLength {
			return fmt.Errorf("read ID: %d encoded length: %d != original length: %d", er.ID, l, er.OriginalLength)
		}
		ers = append(ers, er)
		return nil
	}
	for ln := 1; ; ln++ {
		line, rerr := buffp.ReadString('\n')
		if rerr != nil && rerr != io.EOF {
			return digest, ers, rerr
		}
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			p := encodedParser{sa: strings.Split(line, "\t")}
			if ln == 1 {
				if len(p.sa) < 3 || p.sa[0] != encodedMagic {
					return digest, ers, fmt.Errorf("not an encoded read file, header: %q", line)
				}
				if digest, err = strconv.ParseUint(p.sa[2], 16, 64); err != nil {
					return digest, ers, fmt.Errorf("header digest: %w", err)
				}
				continue
			}
			switch {
			case p.sa[0] == "R" && len(p.sa) == 7:
				if err = finish(); err != nil {
					return
				}
				er = &encode.EncodedRead{ID: p.atou(1), Name: p.sa[2], OriginalLength: p.atoi(3)}
				nodeNum = p.atoi(4)
				er.LeadingGap, er.TrailingGap = fromStar(p.sa[5]), fromStar(p.sa[6])
			case p.sa[0] == "N" && len(p.sa) == 7 && er != nil:
				n := encode.Node{Chunk: p.atou(1), Forward: p.sa[2] == "+", PositionFromStart: p.atoi(3), Cluster: p.atoi(4), Seq: fromStar(p.sa[5])}
				if p.err == nil {
					n.Cigar, p.err = cigar.Parse(p.sa[6])
				}
				er.Nodes = append(er.Nodes, n)
			case p.sa[0] == "E" && len(p.sa) == 5 && er != nil:
				e := encode.Edge{From: p.atou(1), To: p.atou(2), Offset: p.atoi(3), Label: fromStar(p.sa[4])}
				er.Edges = append(er.Edges, e)
			default:
				return digest, ers, fmt.Errorf("line %d: unknown record: %.40q", ln, line)
			}
			if p.err != nil {
				return digest, ers, fmt.Errorf("line %d: %w", ln, p.err)
			}
		} else if ln == 1 {
			return digest, ers, fmt.Errorf("empty encoded read file")
		}
		if rerr == io.EOF {
			break
		}
	}
	err = finish()
	return
}

// LoadEncodedReads open fn and check the chunk library digest when want is not 0
func LoadEncodedReads(fn string, want uint64) ([]*encode.EncodedRead, error) {
	fp, err := Open(fn)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	digest, ers, err := ReadEncodedReads(fp)
	if err != nil {
		return nil, fmt.Errorf("read file: %s: %w", fn, err)
	}
	if want != 0 && digest != want {
		return nil, fmt.Errorf("file: %s was encoded against chunk library %016x, current library is %016x", fn, digest, want)
	}
	return ers, nil
}

func StoreEncodedReads(fn string, digest uint64, ers []*encode.EncodedRead) error {
	fp, err := Create(fn)
	if err != nil {
		return err
	}
	if err := WriteEncodedReads(fp, digest, ers); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}
