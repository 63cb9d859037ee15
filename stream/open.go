// Copyright 2025 The i5rc Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stream

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/golang/snappy"
	"github.com/hashicorp/go-multierror"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

var (
	gzipMagic   = []byte{0x1f, 0x8b}
	snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")
)

// 允许测试替换标准输入输出
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

type multiCloser []io.Closer

// Close 按顺序关闭所有 Closer 并汇总错误
func (mc multiCloser) Close() error {
	var errs error
	for _, c := range mc {
		if err := c.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs
}

type readCloser struct {
	io.Reader
	multiCloser
}

type writeCloser struct {
	io.Writer
	multiCloser
}

// OpenReader 按配置打开输入流
//
// Input 为 "-" 时读取标准输入 且不会关闭标准输入
// CompressionAuto 时先按文件后缀推断 再按 magic number 探测
func OpenReader(cfg Config) (io.ReadCloser, error) {
	var (
		r       io.Reader
		closers multiCloser
	)
	if cfg.Input == StdPath {
		r = stdin
	} else {
		f, err := os.Open(cfg.Input)
		if err != nil {
			return nil, errors.Wrap(err, "open input")
		}
		r = f
		closers = append(closers, f)
	}

	br := bufio.NewReaderSize(r, cfg.BufferSize)
	compression := cfg.Compression
	if compression == CompressionAuto {
		compression = sniffCompression(br, cfg.Input)
	}

	switch compression {
	case CompressionGzip:
		gr, err := gzip.NewReader(br)
		if err != nil {
			closers.Close()
			return nil, errors.Wrap(err, "open gzip input")
		}
		closers = append(multiCloser{gr}, closers...)
		return &readCloser{Reader: gr, multiCloser: closers}, nil

	case CompressionSnappy:
		return &readCloser{Reader: snappy.NewReader(br), multiCloser: closers}, nil
	}
	return &readCloser{Reader: br, multiCloser: closers}, nil
}

func sniffCompression(br *bufio.Reader, path string) string {
	if path != StdPath {
		if c := compressionByPath(path); c != CompressionNone {
			return c
		}
	}

	// Peek 出错 (如空输入) 时按未压缩处理 错误会在后续读取时暴露
	b, _ := br.Peek(len(snappyMagic))
	switch {
	case bytes.HasPrefix(b, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(b, snappyMagic):
		return CompressionSnappy
	}
	return CompressionNone
}

// OpenWriter 按配置打开输出流
//
// Output 为 "-" 时写入标准输出 Close 时仅关闭压缩层
// CompressionAuto 时按文件后缀推断 标准输出默认不压缩
func OpenWriter(cfg Config) (io.WriteCloser, error) {
	var (
		w       io.Writer
		closers multiCloser
	)
	if cfg.Output == StdPath {
		w = stdout
	} else {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return nil, errors.Wrap(err, "create output")
		}
		w = f
		closers = append(closers, f)
	}

	compression := cfg.Compression
	if compression == CompressionAuto {
		compression = CompressionNone
		if cfg.Output != StdPath {
			compression = compressionByPath(cfg.Output)
		}
	}

	switch compression {
	case CompressionGzip:
		gw, err := gzip.NewWriterLevel(w, cfg.GzipLevel)
		if err != nil {
			closers.Close()
			return nil, errors.Wrap(err, "open gzip output")
		}
		closers = append(multiCloser{gw}, closers...)
		return &writeCloser{Writer: gw, multiCloser: closers}, nil

	case CompressionSnappy:
		sw := snappy.NewBufferedWriter(w)
		closers = append(multiCloser{sw}, closers...)
		return &writeCloser{Writer: sw, multiCloser: closers}, nil
	}
	return &writeCloser{Writer: w, multiCloser: closers}, nil
}
