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
	"io"
	"sync/atomic"
	"syscall"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// DigestWriter 统计写入的字节数并计算 xxhash64 摘要
type DigestWriter struct {
	w io.Writer
	h *xxhash.Digest
	n atomic.Int64
}

func NewDigestWriter(w io.Writer) *DigestWriter {
	return &DigestWriter{
		w: w,
		h: xxhash.New(),
	}
}

// Write 实现 io.Writer 接口 摘要仅覆盖成功写入的部分
func (dw *DigestWriter) Write(p []byte) (int, error) {
	n, err := dw.w.Write(p)
	dw.h.Write(p[:n])
	dw.n.Add(int64(n))
	return n, err
}

// Count 返回成功写入的字节数 可并发调用
func (dw *DigestWriter) Count() int64 {
	return dw.n.Load()
}

// Sum64 返回已写入数据的摘要 不可与 Write 并发调用
func (dw *DigestWriter) Sum64() uint64 {
	return dw.h.Sum64()
}

// IsBrokenPipe 判断 err 是否由下游提前关闭管道导致 (如 `| head`)
func IsBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}
