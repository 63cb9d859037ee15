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

package fastq

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/i5rc/i5rc/common"
	"github.com/i5rc/i5rc/internal/bufbytes"
	"github.com/i5rc/i5rc/internal/splitio"
)

// previewSize 错误信息中保留的出错行长度
const previewSize = 96

// State 驱动器所处的状态
//
// AwaitingHeader -> ReadingPayload(1..3) -> AwaitingHeader ... -> Done | Failed
type State int32

const (
	StateAwaitingHeader State = iota
	StateReadingPayload1
	StateReadingPayload2
	StateReadingPayload3
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAwaitingHeader:
		return "awaiting-header"
	case StateReadingPayload1, StateReadingPayload2, StateReadingPayload3:
		return "reading-payload(" + strconv.Itoa(int(s)) + ")"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal 返回状态是否为终态
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Stats 驱动器运行统计
type Stats struct {
	Records   int64 `json:"records"`
	Lines     int64 `json:"lines"`
	BytesRead int64 `json:"bytesRead"`
	State     State `json:"-"`
}

// Rewriter 流式读取 FASTQ 记录 改写 header 中的 i5 字段后写出
//
// 每条记录的 4 行先暂存在 record 缓冲中 整条记录完整后才写入输出
// 因此无论在何处失败 输出中都不会出现残缺的记录
type Rewriter struct {
	rd *splitio.Reader
	wr *bufio.Writer

	line   *bytebufferpool.ByteBuffer
	record *bytebufferpool.ByteBuffer

	state     atomic.Int32
	records   atomic.Int64
	lines     atomic.Int64
	bytesRead atomic.Int64
}

// NewRewriter 创建并返回 *Rewriter 实例
//
// 输入输出均包装一层 bufferSize 大小的缓冲 bufferSize <= 0 时使用 common.IOBufferSize
func NewRewriter(r io.Reader, w io.Writer, bufferSize int) *Rewriter {
	if bufferSize <= 0 {
		bufferSize = common.IOBufferSize
	}

	line := bytebufferpool.Get()
	if cap(line.B) < common.LineBufferSize {
		line.B = make([]byte, 0, common.LineBufferSize)
	}
	return &Rewriter{
		rd:     splitio.NewReader(r, bufferSize),
		wr:     bufio.NewWriterSize(w, bufferSize),
		line:   line,
		record: bytebufferpool.Get(),
	}
}

// Run 处理输入流直至结束或发生错误
//
// 返回前总会 flush 输出 已完整写出的记录不会因为后续记录的错误而丢失
func (rw *Rewriter) Run(ctx context.Context) error {
	err := rw.run(ctx)
	if ferr := rw.wr.Flush(); ferr != nil && err == nil {
		err = rw.fail(errors.Wrap(ferr, "flush output"), false)
	}
	return err
}

func (rw *Rewriter) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			rw.setState(StateFailed)
			return err
		}

		rw.setState(StateAwaitingHeader)
		n, err := rw.readLine()
		if err != nil {
			return rw.fail(err, false)
		}
		if n == 0 {
			rw.setState(StateDone)
			return nil
		}

		if err := RewriteHeader(rw.line.B); err != nil {
			return rw.fail(err, true)
		}
		rw.record.Reset()
		rw.record.Write(rw.line.B)

		for i := 1; i < common.LinesPerRecord; i++ {
			rw.setState(State(i))
			n, err := rw.readLine()
			if err != nil {
				return rw.fail(err, false)
			}
			if n == 0 {
				return rw.fail(ErrTruncatedRecord, false)
			}
			rw.record.Write(rw.line.B)
		}

		if _, err := rw.wr.Write(rw.record.B); err != nil {
			return rw.fail(errors.Wrap(err, "write output"), false)
		}
		rw.records.Add(1)
	}
}

func (rw *Rewriter) readLine() (int, error) {
	n, err := rw.rd.ReadLine(rw.line)
	rw.bytesRead.Add(int64(n))
	if err != nil {
		return n, errors.Wrap(err, "read input")
	}
	if n > 0 {
		rw.lines.Add(1)
	}
	return n, nil
}

// fail 将 err 包装为 *RecordError 并切换至 Failed 状态
//
// withPreview 为 true 时在错误中附带当前行的截断预览
func (rw *Rewriter) fail(err error, withPreview bool) error {
	rw.setState(StateFailed)
	re := &RecordError{
		Record: rw.records.Load() + 1,
		Line:   rw.lines.Load(),
		Err:    err,
	}
	if withPreview {
		re.Preview = bufbytes.Preview(rw.line.B, previewSize)
	}
	return re
}

func (rw *Rewriter) setState(s State) {
	rw.state.Store(int32(s))
}

// State 返回当前状态 可并发调用
func (rw *Rewriter) State() State {
	return State(rw.state.Load())
}

// Stats 返回运行统计 可并发调用
func (rw *Rewriter) Stats() Stats {
	return Stats{
		Records:   rw.records.Load(),
		Lines:     rw.lines.Load(),
		BytesRead: rw.bytesRead.Load(),
		State:     rw.State(),
	}
}

// Release 归还内部缓冲 调用后 Rewriter 不可再使用
func (rw *Rewriter) Release() {
	bytebufferpool.Put(rw.line)
	bytebufferpool.Put(rw.record)
	rw.line, rw.record = nil, nil
}
