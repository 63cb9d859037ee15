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
	"context"
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrMissingMarker            = errors.New("invalid FASTQ header: does not start with '@'")
	ErrMissingTerminator        = errors.New("invalid FASTQ header: missing trailing newline")
	ErrMissingFieldDelimiter    = errors.New("invalid FASTQ header: missing ':' before index field")
	ErrMissingSubfieldDelimiter = errors.New("invalid FASTQ header: missing '+' in index field")
	ErrTruncatedRecord          = errors.New("truncated FASTQ record (expected 4 lines)")
)

// 错误分类名称 用于日志以及 metrics label
const (
	KindNone                     = ""
	KindMissingMarker            = "missing-marker"
	KindMissingTerminator        = "missing-terminator"
	KindMissingFieldDelimiter    = "missing-field-delimiter"
	KindMissingSubfieldDelimiter = "missing-subfield-delimiter"
	KindTruncatedRecord          = "truncated-record"
	KindStreamIO                 = "stream-io"
	KindCanceled                 = "canceled"
)

// Kind 返回 err 所属的错误分类
//
// 未识别的错误一律归为 stream-io 即底层读写失败
func Kind(err error) string {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMissingMarker):
		return KindMissingMarker
	case errors.Is(err, ErrMissingTerminator):
		return KindMissingTerminator
	case errors.Is(err, ErrMissingFieldDelimiter):
		return KindMissingFieldDelimiter
	case errors.Is(err, ErrMissingSubfieldDelimiter):
		return KindMissingSubfieldDelimiter
	case errors.Is(err, ErrTruncatedRecord):
		return KindTruncatedRecord
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	}
	return KindStreamIO
}

// RecordError 描述在某条记录上发生的错误
type RecordError struct {
	Record  int64  // 从 1 开始的记录序号
	Line    int64  // 出错时最后读取的行号 从 1 开始
	Preview string // 出错行的截断预览
	Err     error
}

func (e *RecordError) Error() string {
	if e.Preview == "" {
		return fmt.Sprintf("record %d (line %d): %v", e.Record, e.Line, e.Err)
	}
	return fmt.Sprintf("record %d (line %d): %v: %q", e.Record, e.Line, e.Err, e.Preview)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Cause 兼容 pkg/errors 的 causer 接口
func (e *RecordError) Cause() error {
	return e.Err
}
