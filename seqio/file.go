// Package seqio opens the compressed sequence, hit and encoded read files
// and reads or writes their records.
package seqio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/brotli/go/cbrotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() (err error) {
	for _, c := range rc.closers {
		if e := c.Close(); e != nil && err == nil {
			err = e
		}
	}
	return
}

type writeCloser struct {
	io.Writer
	closers []io.Closer
}

func (wc *writeCloser) Close() (err error) {
	for _, c := range wc.closers {
		if e := c.Close(); e != nil && err == nil {
			err = e
		}
	}
	return
}

// Open open fn and decompress it by the suffix: .zst, .br, .gz or plain
func Open(fn string) (io.ReadCloser, error) {
	fp, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(fn, ".zst"):
		zr, err := zstd.NewReader(fp, zstd.WithDecoderConcurrency(1))
		if err != nil {
			fp.Close()
			return nil, fmt.Errorf("zstd open file: %s: %w", fn, err)
		}
		zrc := zr.IOReadCloser()
		return &readCloser{Reader: zrc, closers: []io.Closer{zrc, fp}}, nil
	case strings.HasSuffix(fn, ".br"):
		brfp := cbrotli.NewReaderSize(fp, 1<<25)
		return &readCloser{Reader: brfp, closers: []io.Closer{brfp, fp}}, nil
	case strings.HasSuffix(fn, ".gz"):
		gzfp, err := gzip.NewReader(fp)
		if err != nil {
			fp.Close()
			return nil, fmt.Errorf("gzip open file: %s: %w", fn, err)
		}
		return &readCloser{Reader: gzfp, closers: []io.Closer{gzfp, fp}}, nil
	}
	return fp, nil
}

// Create create fn and compress the output by the suffix like Open
func Create(fn string) (io.WriteCloser, error) {
	fp, err := os.Create(fn)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(fn, ".zst"):
		zw, err := zstd.NewWriter(fp, zstd.WithEncoderCRC(false), zstd.WithEncoderConcurrency(1), zstd.WithEncoderLevel(1))
		if err != nil {
			fp.Close()
			return nil, fmt.Errorf("zstd create file: %s: %w", fn, err)
		}
		return &writeCloser{Writer: zw, closers: []io.Closer{zw, fp}}, nil
	case strings.HasSuffix(fn, ".br"):
		brfp := cbrotli.NewWriter(fp, cbrotli.WriterOptions{Quality: 1})
		return &writeCloser{Writer: brfp, closers: []io.Closer{brfp, fp}}, nil
	case strings.HasSuffix(fn, ".gz"):
		gzfp := gzip.NewWriter(fp)
		return &writeCloser{Writer: gzfp, closers: []io.Closer{gzfp, fp}}, nil
	}
	return fp, nil
}
