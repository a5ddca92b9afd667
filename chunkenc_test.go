package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mudesheng/chunkenc/encode"
	"github.com/mudesheng/chunkenc/seedhit"
	"github.com/mudesheng/chunkenc/utils"
)

func TestLoadReadLib(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "reads.fa")
	if err := os.WriteFile(fn, []byte(">a\nacgt\n>b\nGG\n"), 0644); err != nil {
		t.Fatal(err)
	}
	reads := loadReadLib(utils.LibInfo{Name: "ont", FnName: []string{fn}}, 5)
	if len(reads) != 2 || reads[0].ID != 5 || reads[1].ID != 6 || reads[1].Name != "b" || string(reads[0].Seq) != "ACGT" {
		t.Errorf("reads: %+v", reads)
	}
}

func TestLoadChunkLib(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "chunks.fa")
	if err := os.WriteFile(fn, []byte(">2\nACGT\n>7\nTTGA\n"), 0644); err != nil {
		t.Fatal(err)
	}
	lib, digest := loadChunkLib(utils.CfgInfo{ChunkLib: []utils.LibInfo{{Name: "chunks", FnName: []string{fn}}}})
	if len(lib) != 2 || string(lib[7].Seq) != "TTGA" || digest == 0 {
		t.Errorf("lib: %v digest: %x", lib, digest)
	}
	startProfile("")()
}

func TestUnknownHitReads(t *testing.T) {
	reads := []encode.RawRead{{ID: 0, Name: "r2"}, {ID: 1, Name: "r5"}}
	hits := []seedhit.SeedHit{{QueryName: "r9"}, {QueryName: "r2"}, {QueryName: "r7"}, {QueryName: "r9"}}
	missing := unknownHitReads(reads, seedhit.Distribute(hits))
	if len(missing) != 2 || missing[0] != "r7" || missing[1] != "r9" {
		t.Errorf("missing: %v", missing)
	}
	if missing := unknownHitReads(reads, seedhit.Distribute(hits[1:2])); len(missing) != 0 {
		t.Errorf("all reads known, missing: %v", missing)
	}
}
