package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jwaldrip/odin/cli"
	"github.com/mudesheng/chunkenc/chunkgraph"
	"github.com/mudesheng/chunkenc/seqio"
	"github.com/mudesheng/chunkenc/utils"
)

type optionsGR struct {
	utils.ArgsOpt
	Input    string
	MinCount int
}

func checkArgsGraph(c cli.Command) (opt optionsGR, suc bool) {
	gOpt, suc := utils.CheckGlobalArgs(c.Parent())
	if !suc {
		log.Fatalf("[checkArgsGraph] check global Arguments error, opt: %v\n", gOpt)
	}
	opt.ArgsOpt = gOpt
	opt.Input = c.Flag("input").String()
	if opt.Input == "" {
		opt.Input = opt.Prefix + ".dfill.enc.zst"
	}
	opt.MinCount = c.Flag("MinCount").Get().(int)
	if opt.MinCount < 1 {
		log.Fatalf("[checkArgsGraph] argument 'MinCount': %d must >= 1\n", opt.MinCount)
	}
	return opt, true
}

func Graph(c cli.Command) {
	opt, suc := checkArgsGraph(c)
	if !suc {
		log.Fatalf("[Graph] check Arguments error, opt: %v\n", opt)
	}
	fmt.Printf("[Graph] opt: %+v\n", opt)
	cfgInfo, err := utils.ParseCfg(opt.CfgFn)
	if err != nil {
		log.Fatalf("[Graph] ParseCfg 'C': %v err: %v\n", opt.CfgFn, err)
	}
	_, digest := loadChunkLib(cfgInfo)
	ers, err := seqio.LoadEncodedReads(opt.Input, digest)
	if err != nil {
		log.Fatalf("[Graph] %v\n", err)
	}
	g := chunkgraph.Build(ers)

	graphfn := opt.Prefix + ".chunk.dot"
	gfp, err := os.Create(graphfn)
	if err != nil {
		log.Fatalf("[Graph] Create file: %s failed, err: %v\n", graphfn, err)
	}
	defer gfp.Close()
	if err := g.WriteDot(gfp, opt.MinCount); err != nil {
		log.Fatalf("[Graph] write file: %s err: %v\n", graphfn, err)
	}
	fmt.Printf("[Graph] chunks: %d adjacencies: %d written to: %s\n", len(g.NodeCount), len(g.Edges(opt.MinCount)), graphfn)
}
