package utils

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// GlobalSetting holds the thresholds shared by the encode and dfill stages.
type GlobalSetting struct {
	Margin           int     `toml:"margin"`             // hit tolerance and minimum hit length
	MinCoverFraction float64 `toml:"min_cover_fraction"` // chain must cover this part of the chunk
	FillOffset       int     `toml:"fill_offset"`        // window flank for deletion fill realignment
	AlignLimit       float64 `toml:"align_limit"`        // max edit distance fraction of chunk length
	MaxIndelRun      int     `toml:"max_indel_run"`
	MinSupport       int     `toml:"min_support"` // lower bound of the pileup threshold
}

type LibInfo struct {
	Name       string   `toml:"name"`
	FnName     []string `toml:"p"`
	Hits       string   `toml:"hits"`
	HitsFormat string   `toml:"hits_format"` // tab, paf or bam
}

type CfgInfo struct {
	Global   GlobalSetting `toml:"global_setting"`
	ChunkLib []LibInfo     `toml:"chunk_lib"`
	ReadLib  []LibInfo     `toml:"read_lib"`
}

func DefaultGlobalSetting() GlobalSetting {
	return GlobalSetting{
		Margin:           100,
		MinCoverFraction: 0.9,
		FillOffset:       300,
		AlignLimit:       0.3,
		MaxIndelRun:      50,
		MinSupport:       3,
	}
}

var seqSuffix = []string{".fa", ".fasta", ".fq", ".fastq"}
var compSuffix = []string{"", ".zst", ".br", ".gz"}

func checkSeqFn(fn string) bool {
	for _, s := range seqSuffix {
		for _, c := range compSuffix {
			if strings.HasSuffix(fn, s+c) {
				return true
			}
		}
	}
	return false
}

// ParseCfg decode the TOML config file, missing global settings keep the default value.
func ParseCfg(fn string) (cfgInfo CfgInfo, e error) {
	cfgInfo.Global = DefaultGlobalSetting()
	if _, err := toml.DecodeFile(fn, &cfgInfo); err != nil {
		return cfgInfo, fmt.Errorf("decode config %s: %w", fn, err)
	}
	if err := cfgInfo.Check(); err != nil {
		return cfgInfo, fmt.Errorf("config %s: %w", fn, err)
	}
	return cfgInfo, nil
}

func (cfg CfgInfo) Check() error {
	g := cfg.Global
	if g.Margin < 0 {
		return fmt.Errorf("margin: %d must >= 0", g.Margin)
	}
	if g.MinCoverFraction <= 0 || g.MinCoverFraction > 1 {
		return fmt.Errorf("min_cover_fraction: %v must between (0~1]", g.MinCoverFraction)
	}
	if g.AlignLimit <= 0 || g.AlignLimit >= 1 {
		return fmt.Errorf("align_limit: %v must between (0~1)", g.AlignLimit)
	}
	if g.FillOffset < 0 || g.MaxIndelRun < 1 || g.MinSupport < 1 {
		return fmt.Errorf("fill_offset: %d, max_indel_run: %d, min_support: %d out of range", g.FillOffset, g.MaxIndelRun, g.MinSupport)
	}
	for _, lib := range append(append([]LibInfo{}, cfg.ChunkLib...), cfg.ReadLib...) {
		if len(lib.FnName) == 0 {
			return fmt.Errorf("lib %q has no sequence file", lib.Name)
		}
		for _, fn := range lib.FnName {
			if !checkSeqFn(fn) {
				return fmt.Errorf("fn: %v, must used suffix *.[fasta|fa|fq|fastq][.zst|.br|.gz]", fn)
			}
		}
	}
	for _, lib := range cfg.ReadLib {
		switch lib.HitsFormat {
		case "", "tab", "paf", "bam":
		default:
			return fmt.Errorf("lib %q unknown hits_format: %q", lib.Name, lib.HitsFormat)
		}
	}
	return nil
}
