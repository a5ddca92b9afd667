package utils

import (
	"errors"
	"log"
	"math"

	"github.com/jwaldrip/odin/cli"
)

type ArgsOpt struct {
	Prefix     string
	NumCPU     int
	CfgFn      string
	Cpuprofile string
}

// return global arguments and check if successed
func CheckGlobalArgs(c cli.Command) (opt ArgsOpt, succ bool) {
	opt.Prefix = c.Flag("p").String()
	if opt.Prefix == "" {
		log.Fatalf("[CheckGlobalArgs] args 'p' not set\n")
	}
	opt.CfgFn = c.Flag("C").String()
	if opt.CfgFn == "" {
		log.Fatalf("[CheckGlobalArgs] args 'C' not set\n")
	}
	opt.Cpuprofile = c.Flag("cpuprofile").String()

	var ok bool
	opt.NumCPU, ok = c.Flag("t").Get().(int)
	if !ok {
		log.Fatalf("[CheckGlobalArgs] args 't': %v set error\n", c.Flag("t").String())
	}
	if opt.NumCPU < 1 {
		log.Fatalf("[CheckGlobalArgs] args 't': %v must >= 1\n", opt.NumCPU)
	}
	return opt, true
}

func MaxInt(a, b int) int {
	if a > b {
		return a
	} else {
		return b
	}
}

func MinInt(a, b int) int {
	if a > b {
		return b
	} else {
		return a
	}
}

// ByteArrInt parse a decimal chunk ID, any non digit byte or a value
// above MaxUint64 is an error.
func ByteArrInt(id []byte) (d uint64, err error) {
	if len(id) == 0 {
		return d, errors.New("empty id")
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			err = errors.New("can't convert to digit...")
			return d, err
		}
		v := uint64(c - '0')
		if d > (math.MaxUint64-v)/10 {
			return 0, errors.New("id overflows uint64")
		}
		d = d*10 + v
	}
	return d, nil
}

var complement = [256]byte{
	'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A', 'N': 'N',
	'a': 't', 'c': 'g', 'g': 'c', 't': 'a', 'n': 'n',
}

// GetReverseCompByteArr return a new reverse complement sequence, unknown base is set 'N'
func GetReverseCompByteArr(seq []byte) []byte {
	rc := make([]byte, len(seq))
	for i, b := range seq {
		c := complement[b]
		if c == 0 {
			c = 'N'
		}
		rc[len(seq)-1-i] = c
	}
	return rc
}

// UpperSeq upper case the sequence in place
func UpperSeq(seq []byte) []byte {
	for i, b := range seq {
		if b >= 'a' && b <= 'z' {
			seq[i] = b - 'a' + 'A'
		}
	}
	return seq
}
