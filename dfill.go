package main

import (
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/jwaldrip/odin/cli"
	"github.com/mudesheng/chunkenc/dfill"
	"github.com/mudesheng/chunkenc/seqio"
	"github.com/mudesheng/chunkenc/utils"
)

type optionsDF struct {
	utils.ArgsOpt
	Input string
	Debug bool
}

func checkArgsDFill(c cli.Command) (opt optionsDF, suc bool) {
	gOpt, suc := utils.CheckGlobalArgs(c.Parent())
	if !suc {
		log.Fatalf("[checkArgsDFill] check global Arguments error, opt: %v\n", gOpt)
	}
	opt.ArgsOpt = gOpt
	opt.Input = c.Flag("input").String()
	if opt.Input == "" {
		opt.Input = opt.Prefix + ".enc.zst"
	}
	opt.Debug = c.Flag("Debug").Get().(bool)
	return opt, true
}

func DFill(c cli.Command) {
	opt, suc := checkArgsDFill(c)
	if !suc {
		log.Fatalf("[DFill] check Arguments error, opt: %v\n", opt)
	}
	fmt.Printf("[DFill] opt: %+v\n", opt)
	defer startProfile(opt.Cpuprofile)()
	runtime.GOMAXPROCS(opt.NumCPU)
	cfgInfo, err := utils.ParseCfg(opt.CfgFn)
	if err != nil {
		log.Fatalf("[DFill] ParseCfg 'C': %v err: %v\n", opt.CfgFn, err)
	}
	t0 := time.Now()
	chunks, digest := loadChunkLib(cfgInfo)
	ers, err := seqio.LoadEncodedReads(opt.Input, digest)
	if err != nil {
		log.Fatalf("[DFill] %v\n", err)
	}

	rawSeqs := make(map[uint64][]byte, len(ers))
	var startID uint64
	for _, lib := range cfgInfo.ReadLib {
		reads := loadReadLib(lib, startID)
		startID += uint64(len(reads))
		for _, r := range reads {
			rawSeqs[r.ID] = r.Seq
		}
	}
	fmt.Printf("[DFill] encoded reads: %d raw reads: %d\n", len(ers), len(rawSeqs))

	inserted := dfill.CorrectDeletions(ers, rawSeqs, chunks, dfill.NewOptions(cfgInfo.Global, opt.Debug), opt.NumCPU)
	outfn := opt.Prefix + ".dfill.enc.zst"
	if err := seqio.StoreEncodedReads(outfn, digest, ers); err != nil {
		log.Fatalf("[DFill] write file: %s err: %v\n", outfn, err)
	}
	fmt.Printf("[DFill] inserted nodes: %d written to: %s used: %v\n", inserted, outfn, time.Since(t0))
}
