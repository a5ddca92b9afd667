package cigar

import (
	"testing"

	"github.com/biogo/hts/sam"
)

func TestCoalesce(t *testing.T) {
	ops := []Op{{Match, 3}, {Match, 2}, {Ins, 0}, {Del, 1}, {Del, 4}, {Match, 1}}
	cg := Coalesce(ops)
	if cg.String() != "5M5D1M" {
		t.Errorf("coalesced: %v", cg)
	}
	if again := Coalesce(cg); !again.Equal(cg) {
		t.Errorf("coalesce is not idempotent: %v -> %v", cg, again)
	}
	if cg.RefLen() != 11 || cg.QueryLen() != 6 || cg.MatchLen() != 6 || cg.MaxIndel() != 5 {
		t.Errorf("lengths: %d %d %d %d", cg.RefLen(), cg.QueryLen(), cg.MatchLen(), cg.MaxIndel())
	}
}

func TestParse(t *testing.T) {
	cg, err := Parse("10M2I3=1X4D5M")
	if err != nil {
		t.Fatal(err)
	}
	if cg.String() != "10M2I4M4D5M" {
		t.Errorf("parsed: %v", cg)
	}
	if back := cg.ToSam().String(); back != "10M2I4M4D5M" {
		t.Errorf("sam: %s", back)
	}
	if cg, err := Parse("*"); err != nil || cg != nil {
		t.Errorf("empty cigar: %v %v", cg, err)
	}
	if _, err := Parse("12Q"); err == nil {
		t.Error("bad op should fail")
	}
}

func TestFromSamClip(t *testing.T) {
	sc := sam.Cigar{
		sam.NewCigarOp(sam.CigarHardClipped, 5),
		sam.NewCigarOp(sam.CigarSoftClipped, 7),
		sam.NewCigarOp(sam.CigarMatch, 20),
		sam.NewCigarOp(sam.CigarSoftClipped, 9),
	}
	cg, lead := FromSam(sc)
	if lead != 12 || cg.String() != "20M" {
		t.Errorf("lead: %d cigar: %v", lead, cg)
	}
}

func TestRecover(t *testing.T) {
	cg := Cigar{{Match, 3}, {Ins, 1}, {Match, 1}, {Del, 2}}
	q, al, r := Recover([]byte("ACGTA"), []byte("ACCAGG"), cg)
	if string(q) != "ACGTA  " || string(al) != "||X |  " || string(r) != "ACC AGG" {
		t.Errorf("\n%s\n%s\n%s", q, al, r)
	}
}
