package seqio

import (
	"fmt"
	"io"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
	"github.com/mudesheng/chunkenc/encode"
	"github.com/mudesheng/chunkenc/seedhit"
	"github.com/mudesheng/chunkenc/utils"
)

type SeqRecord struct {
	Name string
	Seq  []byte
}

func isFastq(fn string) bool {
	for _, s := range []string{".fq", ".fastq"} {
		if strings.HasSuffix(fn, s) || strings.Contains(fn, s+".") {
			return true
		}
	}
	return false
}

// ReadSeqs read every record of a FASTA (or FASTQ when fq is set)
// stream, sequences are upper cased.
func ReadSeqs(r io.Reader, fq bool) (recs []SeqRecord, err error) {
	if fq {
		return readFastq(r)
	}
	fafp := fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNA))
	for {
		s, err := fafp.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return recs, err
		}
		l := s.(*linear.Seq)
		seq := make([]byte, len(l.Seq))
		for j, v := range l.Seq {
			seq[j] = byte(v)
		}
		recs = append(recs, SeqRecord{Name: l.ID, Seq: utils.UpperSeq(seq)})
	}
	return recs, nil
}

func readFastq(r io.Reader) (recs []SeqRecord, err error) {
	fqfp := fastq.NewReader(r, linear.NewQSeq("", nil, alphabet.DNA, alphabet.Sanger))
	for {
		s, err := fqfp.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return recs, err
		}
		l := s.(*linear.QSeq)
		seq := make([]byte, len(l.Seq))
		for j, v := range l.Seq {
			seq[j] = byte(v.L)
		}
		recs = append(recs, SeqRecord{Name: l.ID, Seq: utils.UpperSeq(seq)})
	}
	return recs, nil
}

// ReadSeqFiles read the records of all files in order
func ReadSeqFiles(fns []string) ([]SeqRecord, error) {
	var recs []SeqRecord
	for _, fn := range fns {
		fp, err := Open(fn)
		if err != nil {
			return recs, err
		}
		arr, err := ReadSeqs(fp, isFastq(fn))
		fp.Close()
		if err != nil {
			return recs, fmt.Errorf("read file: %s: %w", fn, err)
		}
		recs = append(recs, arr...)
	}
	return recs, nil
}

// LoadReads number the reads by input order
func LoadReads(fns []string) ([]encode.RawRead, error) {
	recs, err := ReadSeqFiles(fns)
	if err != nil {
		return nil, err
	}
	reads := make([]encode.RawRead, len(recs))
	for i, r := range recs {
		reads[i] = encode.RawRead{ID: uint64(i), Name: r.Name, Seq: r.Seq}
	}
	return reads, nil
}

// LoadChunks read the chunk library, each record name is the chunk id
func LoadChunks(fns []string) ([]encode.Chunk, error) {
	recs, err := ReadSeqFiles(fns)
	if err != nil {
		return nil, err
	}
	chunks := make([]encode.Chunk, len(recs))
	seen := make(map[uint64]bool, len(recs))
	for i, r := range recs {
		id, err := utils.ByteArrInt([]byte(r.Name))
		if err != nil {
			return nil, fmt.Errorf("chunk name: %q: %w", r.Name, err)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicated chunk id: %d", id)
		}
		seen[id] = true
		chunks[i] = encode.Chunk{ID: id, Seq: r.Seq}
	}
	return chunks, nil
}

// LoadHits read the seed hit file of a read library
func LoadHits(fn, format string, numCPU int) ([]seedhit.SeedHit, error) {
	fp, err := Open(fn)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	hits, err := seedhit.Read(fp, format, numCPU)
	if err != nil {
		return nil, fmt.Errorf("read hits file: %s: %w", fn, err)
	}
	return hits, nil
}
