package main

import (
	"log"
	"os"
	"runtime/pprof"

	"github.com/jwaldrip/odin/cli"
	"github.com/mudesheng/chunkenc/encode"
	"github.com/mudesheng/chunkenc/seqio"
	"github.com/mudesheng/chunkenc/utils"
)

var app = cli.New("1.0.0", "encode long reads as chains of reference chunks", func(c cli.Command) {})

func init() {
	app.DefineStringFlag("C", "chunkenc.toml", "configure file")
	app.DefineStringFlag("cpuprofile", "", "write cpu profile to file")
	app.DefineStringFlag("p", "chunkenc", "prefix of the output file")
	app.DefineIntFlag("t", 1, "number of CPU used")
	enc := app.DefineSubCommand("encode", "encode reads by their seed hits against the chunk library", Encode)
	{
		enc.DefineBoolFlag("Debug", false, "Enable Debug model[false]")
	}
	df := app.DefineSubCommand("dfill", "fill chunks the encoder missed using neighbour reads", DFill)
	{
		df.DefineStringFlag("input", "", "encoded reads file[<prefix>.enc.zst]")
		df.DefineBoolFlag("Debug", false, "Enable Debug model[false]")
	}
	gr := app.DefineSubCommand("graph", "output chunk adjacency dot graph file", Graph)
	{
		gr.DefineStringFlag("input", "", "encoded reads file[<prefix>.dfill.enc.zst]")
		gr.DefineIntFlag("MinCount", 2, "Minimum reads support an adjacency")
	}
}

// startProfile start the cpu profile when fn is set, the returned func stop it
func startProfile(fn string) func() {
	if fn == "" {
		return func() {}
	}
	cpuprofilefp, err := os.Create(fn)
	if err != nil {
		log.Fatalf("[startProfile] open cpuprofile file: %v failed\n", fn)
	}
	pprof.StartCPUProfile(cpuprofilefp)
	return func() {
		pprof.StopCPUProfile()
		cpuprofilefp.Close()
	}
}

// loadChunkLib read every chunk library of the config and fingerprint it
func loadChunkLib(cfgInfo utils.CfgInfo) (encode.ChunkLib, uint64) {
	if len(cfgInfo.ChunkLib) == 0 {
		log.Fatalf("[loadChunkLib] config has no chunk_lib\n")
	}
	var fns []string
	for _, lib := range cfgInfo.ChunkLib {
		fns = append(fns, lib.FnName...)
	}
	chunks, err := seqio.LoadChunks(fns)
	if err != nil {
		log.Fatalf("[loadChunkLib] %v\n", err)
	}
	log.Printf("[loadChunkLib] load %d chunks from %d files\n", len(chunks), len(fns))
	return encode.NewChunkLib(chunks), seqio.ChunkLibraryDigest(chunks)
}

// loadReadLib read the reads of one library, IDs continue from startID so
// the numbering is the same in every stage
func loadReadLib(lib utils.LibInfo, startID uint64) []encode.RawRead {
	reads, err := seqio.LoadReads(lib.FnName)
	if err != nil {
		log.Fatalf("[loadReadLib] lib: %s %v\n", lib.Name, err)
	}
	for i := range reads {
		reads[i].ID += startID
	}
	return reads
}

func main() {
	app.Start()
}
