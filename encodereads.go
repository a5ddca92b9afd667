package main

import (
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/jwaldrip/odin/cli"
	"github.com/mudesheng/chunkenc/encode"
	"github.com/mudesheng/chunkenc/seedhit"
	"github.com/mudesheng/chunkenc/seqio"
	"github.com/mudesheng/chunkenc/utils"
)

type optionsEN struct {
	utils.ArgsOpt
	Debug bool
}

func checkArgsEncode(c cli.Command) (opt optionsEN, suc bool) {
	gOpt, suc := utils.CheckGlobalArgs(c.Parent())
	if !suc {
		log.Fatalf("[checkArgsEncode] check global Arguments error, opt: %v\n", gOpt)
	}
	opt.ArgsOpt = gOpt
	opt.Debug = c.Flag("Debug").Get().(bool)
	return opt, true
}

func Encode(c cli.Command) {
	opt, suc := checkArgsEncode(c)
	if !suc {
		log.Fatalf("[Encode] check Arguments error, opt: %v\n", opt)
	}
	fmt.Printf("[Encode] opt: %+v\n", opt)
	defer startProfile(opt.Cpuprofile)()
	runtime.GOMAXPROCS(opt.NumCPU)
	cfgInfo, err := utils.ParseCfg(opt.CfgFn)
	if err != nil {
		log.Fatalf("[Encode] ParseCfg 'C': %v err: %v\n", opt.CfgFn, err)
	}
	t0 := time.Now()
	chunks, digest := loadChunkLib(cfgInfo)
	encOpt := encode.NewOptions(cfgInfo.Global, opt.Debug)

	var ers []*encode.EncodedRead
	var startID uint64
	for _, lib := range cfgInfo.ReadLib {
		if lib.Hits == "" {
			log.Fatalf("[Encode] read lib: %s not set 'hits' file\n", lib.Name)
		}
		reads := loadReadLib(lib, startID)
		startID += uint64(len(reads))
		hits, err := seqio.LoadHits(lib.Hits, lib.HitsFormat, opt.NumCPU)
		if err != nil {
			log.Fatalf("[Encode] %v\n", err)
		}
		fmt.Printf("[Encode] lib: %s reads: %d hits: %d\n", lib.Name, len(reads), len(hits))
		buckets := seedhit.Distribute(hits)
		if missing := unknownHitReads(reads, buckets); len(missing) > 0 {
			fmt.Printf("[Encode] lib: %s hits of %d reads not in the read files, first: %s\n", lib.Name, len(missing), missing[0])
		}
		ers = append(ers, encode.EncodeAll(reads, buckets, chunks, encOpt, opt.NumCPU)...)
	}

	outfn := opt.Prefix + ".enc.zst"
	if err := seqio.StoreEncodedReads(outfn, digest, ers); err != nil {
		log.Fatalf("[Encode] write file: %s err: %v\n", outfn, err)
	}
	fmt.Printf("[Encode] encoded reads: %d written to: %s used: %v\n", len(ers), outfn, time.Since(t0))
}

// unknownHitReads return the sorted names of reads that have hits but no
// sequence
func unknownHitReads(reads []encode.RawRead, buckets map[string][]*seedhit.SeedHit) []string {
	known := make(map[string]bool, len(reads))
	for i := range reads {
		known[reads[i].Name] = true
	}
	var missing []string
	for _, name := range seedhit.SortedNames(buckets) {
		if !known[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
