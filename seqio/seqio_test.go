package seqio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mudesheng/chunkenc/cigar"
	"github.com/mudesheng/chunkenc/encode"
)

func TestReadSeqs(t *testing.T) {
	recs, err := ReadSeqs(strings.NewReader(">r1\nacgtN\nACGT\n>r2\nTTTT\n"), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].Name != "r1" || string(recs[0].Seq) != "ACGTNACGT" || string(recs[1].Seq) != "TTTT" {
		t.Errorf("fasta records: %+v", recs)
	}

	recs, err = ReadSeqs(strings.NewReader("@q1\nacgg\n+\nIIII\n"), true)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Name != "q1" || string(recs[0].Seq) != "ACGG" {
		t.Errorf("fastq records: %+v", recs)
	}
}

func TestLoadChunks(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "chunks.fa.gz")
	fp, err := Create(fn)
	if err != nil {
		t.Fatal(err)
	}
	fp.Write([]byte(">3\nACGT\n>1\nGGCC\n"))
	if err := fp.Close(); err != nil {
		t.Fatal(err)
	}
	chunks, err := LoadChunks([]string{fn})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 || chunks[0].ID != 3 || chunks[1].ID != 1 || string(chunks[1].Seq) != "GGCC" {
		t.Errorf("chunks: %+v", chunks)
	}

	bad := filepath.Join(dir, "bad.fa")
	os.WriteFile(bad, []byte(">chunk7\nACGT\n"), 0644)
	if _, err := LoadChunks([]string{bad}); err == nil {
		t.Error("non numeric chunk name should fail")
	}
	long := filepath.Join(dir, "long.fa")
	os.WriteFile(long, []byte(">123456789012345678901\nACGT\n"), 0644)
	if _, err := LoadChunks([]string{long}); err == nil {
		t.Error("chunk id above uint64 should fail")
	}
	dup := filepath.Join(dir, "dup.fa")
	os.WriteFile(dup, []byte(">2\nACGT\n>2\nACGA\n"), 0644)
	if _, err := LoadChunks([]string{dup}); err == nil {
		t.Error("duplicated chunk id should fail")
	}
}

func TestChunkLibraryDigest(t *testing.T) {
	a := []encode.Chunk{{ID: 1, Seq: []byte("ACGT")}, {ID: 2, Seq: []byte("GGA")}}
	b := []encode.Chunk{a[1], a[0]}
	if ChunkLibraryDigest(a) != ChunkLibraryDigest(b) {
		t.Error("digest depends on chunk order")
	}
	c := []encode.Chunk{{ID: 1, Seq: []byte("ACGT")}, {ID: 2, Seq: []byte("GGT")}}
	if ChunkLibraryDigest(a) == ChunkLibraryDigest(c) {
		t.Error("digest ignores sequence change")
	}
}

func encodedFixture() []*encode.EncodedRead {
	seq := []byte("TTACGTACGTAAGGGCCCGGGAA")
	er := &encode.EncodedRead{ID: 4, Name: "read4", Nodes: []encode.Node{
		{Chunk: 10, Forward: true, PositionFromStart: 2, Seq: []byte("ACGTACGT"), Cigar: cigar.Cigar{{Kind: cigar.Match, Len: 8}}},
		{Chunk: 11, Forward: false, PositionFromStart: 12, Seq: []byte("GGGCCC"), Cigar: cigar.Cigar{{Kind: cigar.Match, Len: 3}, {Kind: cigar.Ins, Len: 1}, {Kind: cigar.Match, Len: 2}}, Cluster: 5},
		{Chunk: 12, Forward: true, PositionFromStart: 16, Seq: []byte("CCGGG"), Cigar: cigar.Cigar{{Kind: cigar.Match, Len: 5}}},
	}}
	er.Rebuild(seq)
	single := &encode.EncodedRead{ID: 9, Name: "read9", Nodes: []encode.Node{
		{Chunk: 10, Forward: true, PositionFromStart: 0, Seq: []byte("ACGTACGT"), Cigar: cigar.Cigar{{Kind: cigar.Match, Len: 8}}},
	}}
	single.Rebuild([]byte("ACGTACGT"))
	return []*encode.EncodedRead{er, single}
}

func TestStoreLoadEncodedReads(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "reads.enc.zst")
	ers := encodedFixture()
	if err := StoreEncodedReads(fn, 0xabc, ers); err != nil {
		t.Fatal(err)
	}
	got, err := LoadEncodedReads(fn, 0xabc)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("reads: %d", len(got))
	}
	er, want := got[0], ers[0]
	if er.ID != 4 || er.Name != "read4" || er.OriginalLength != 23 || len(er.Nodes) != 3 || len(er.Edges) != 2 {
		t.Fatalf("read: %+v", er)
	}
	if string(er.LeadingGap) != "TT" || string(er.TrailingGap) != "AA" {
		t.Errorf("gaps: %q %q", er.LeadingGap, er.TrailingGap)
	}
	for i := range er.Nodes {
		n, w := er.Nodes[i], want.Nodes[i]
		if n.String() != w.String() || !bytes.Equal(n.Seq, w.Seq) || !n.Cigar.Equal(w.Cigar) || n.Cluster != w.Cluster {
			t.Errorf("node %d: %v %v, want %v %v", i, n.String(), n.Cigar, w.String(), w.Cigar)
		}
	}
	// the second pair of nodes overlap by two bases
	if string(er.Edges[0].Label) != "AA" || er.Edges[1].Offset != -2 || er.Edges[1].Label != nil {
		t.Errorf("edges: %+v", er.Edges)
	}
	if got[1].LeadingGap != nil || len(got[1].Edges) != 0 {
		t.Errorf("single node read: %+v", got[1])
	}

	if _, err := LoadEncodedReads(fn, 0xdef); err == nil {
		t.Error("digest mismatch should fail")
	}
}

func TestReadEncodedReadsLength(t *testing.T) {
	var buf bytes.Buffer
	ers := encodedFixture()
	ers[1].TrailingGap = []byte("A")
	WriteEncodedReads(&buf, 1, ers)
	if _, _, err := ReadEncodedReads(&buf); err == nil || !strings.Contains(err.Error(), "read ID: 9") {
		t.Errorf("length mismatch not reported: %v", err)
	}
	if _, _, err := ReadEncodedReads(strings.NewReader("R\t1\n")); err == nil {
		t.Error("missing header should fail")
	}
}
