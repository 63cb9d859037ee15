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

package report

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/i5rc/i5rc/common"
	"github.com/i5rc/i5rc/fastq"
)

const (
	StatusOK       = "ok"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
)

type Config struct {
	Enabled  bool   `config:"enabled"`
	Filename string `config:"filename"`
}

func (c *Config) Validate() {
	if c.Filename != "" {
		c.Enabled = true
	}
	if c.Enabled && c.Filename == "" {
		c.Filename = "-"
	}
}

// Report 单次运行的汇总信息
type Report struct {
	RunID        string           `json:"runId"`
	Build        common.BuildInfo `json:"build"`
	Input        string           `json:"input"`
	Output       string           `json:"output"`
	Records      int64            `json:"records"`
	Lines        int64            `json:"lines"`
	BytesRead    int64            `json:"bytesRead"`
	BytesWritten int64            `json:"bytesWritten"`
	OutputDigest string           `json:"outputXxhash64"`
	Started      time.Time        `json:"started"`
	Elapsed      string           `json:"elapsed"`
	Status       string           `json:"status"`
	Error        string           `json:"error,omitempty"`
	ErrorKind    string           `json:"errorKind,omitempty"`
}

// New 创建并返回 *Report 实例 每次运行分配唯一的 RunID
func New(input, output string) *Report {
	return &Report{
		RunID:   uuid.New().String(),
		Build:   common.GetBuildInfo(),
		Input:   input,
		Output:  output,
		Started: time.Now(),
		Status:  StatusOK,
	}
}

// Finish 填充统计信息与运行结果
func (r *Report) Finish(stats fastq.Stats, written int64, digest uint64, err error) {
	r.Records = stats.Records
	r.Lines = stats.Lines
	r.BytesRead = stats.BytesRead
	r.BytesWritten = written
	r.OutputDigest = strconv.FormatUint(digest, 16)
	r.Elapsed = time.Since(r.Started).String()

	if err == nil {
		r.Status = StatusOK
		return
	}

	r.Error = err.Error()
	r.ErrorKind = fastq.Kind(err)
	r.Status = StatusFailed
	if r.ErrorKind == fastq.KindCanceled {
		r.Status = StatusCanceled
	}
}

// Encode 以单行 JSON 写入 w
func (r *Report) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(r)
}

// WriteFile 将报告写入 filename "-" 代表标准错误
func (r *Report) WriteFile(filename string) error {
	if filename == "-" {
		return r.Encode(os.Stderr)
	}

	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "create report")
	}
	if err := r.Encode(f); err != nil {
		f.Close()
		return errors.Wrap(err, "encode report")
	}
	return f.Close()
}
