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
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/i5rc/i5rc/common"
)

// StdPath 代表标准输入/标准输出
const StdPath = "-"

const (
	CompressionAuto   = "auto"
	CompressionNone   = "none"
	CompressionGzip   = "gzip"
	CompressionSnappy = "snappy"
)

// DefaultGzipLevel 未显式配置时使用的 gzip 压缩级别
const DefaultGzipLevel = gzip.DefaultCompression

type Config struct {
	Input       string `config:"input"`
	Output      string `config:"output"`
	BufferSize  int    `config:"bufferSize"`
	Compression string `config:"compression"`
	GzipLevel   int    `config:"gzipLevel"`
}

// DefaultConfig 返回默认配置 配置文件中缺省的字段保留此处的值
//
// GzipLevel 的零值 (gzip.NoCompression) 是合法级别 因此默认值需在解析前填入
func DefaultConfig() Config {
	return Config{
		Input:       StdPath,
		Output:      StdPath,
		BufferSize:  common.IOBufferSize,
		Compression: CompressionAuto,
		GzipLevel:   DefaultGzipLevel,
	}
}

func (c *Config) Validate() error {
	if c.Input == "" {
		c.Input = StdPath
	}
	if c.Output == "" {
		c.Output = StdPath
	}
	if c.BufferSize <= 0 {
		c.BufferSize = common.IOBufferSize
	}

	c.Compression = strings.ToLower(strings.TrimSpace(c.Compression))
	switch c.Compression {
	case "":
		c.Compression = CompressionAuto
	case CompressionAuto, CompressionNone, CompressionGzip, CompressionSnappy:
	default:
		return errors.Errorf("unsupported compression (%s)", c.Compression)
	}

	if c.GzipLevel < gzip.HuffmanOnly || c.GzipLevel > gzip.BestCompression {
		return errors.Errorf("invalid gzip level (%d)", c.GzipLevel)
	}
	return nil
}

// compressionByPath 根据文件后缀推断压缩格式
func compressionByPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".gz"), strings.HasSuffix(path, ".gzip"):
		return CompressionGzip
	case strings.HasSuffix(path, ".sz"), strings.HasSuffix(path, ".snappy"):
		return CompressionSnappy
	}
	return CompressionNone
}
