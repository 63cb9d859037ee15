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

package splitio

import (
	"bufio"
	"bytes"
	"io"

	"github.com/valyala/bytebufferpool"
)

var CharLF = []byte("\n")

// Reader 按行读取流式数据 保留每行末尾的换行符
//
// 与 *bufio.Reader.ReadSlice 不同 单行长度不受缓冲区大小限制
// 与 *bufio.Scanner 不同 不会丢弃换行符 也不会因超长行报错
type Reader struct {
	br *bufio.Reader
}

// NewReader 创建并返回 *Reader 实例 size 为缓冲区大小
func NewReader(r io.Reader, size int) *Reader {
	if br, ok := r.(*bufio.Reader); ok && br.Size() >= size {
		return &Reader{br: br}
	}
	return &Reader{br: bufio.NewReaderSize(r, size)}
}

// ReadLine 清空 buf 后读取下一行 (包含 '\n') 并返回读取的字节数
//
// 返回 0 且 err 为 nil 表示流已结束
// 流末尾缺少换行符的最后一行也会被完整返回
func (lr *Reader) ReadLine(buf *bytebufferpool.ByteBuffer) (int, error) {
	buf.Reset()
	for {
		chunk, err := lr.chunk()
		if len(chunk) == 0 {
			if err == io.EOF {
				err = nil
			}
			return buf.Len(), err
		}

		if idx := bytes.IndexByte(chunk, CharLF[0]); idx >= 0 {
			lr.consume(buf, chunk[:idx+1])
			return buf.Len(), nil
		}
		lr.consume(buf, chunk)
	}
}

// chunk 返回当前缓冲区中的全部数据 缓冲区为空时触发一次底层读取
func (lr *Reader) chunk() ([]byte, error) {
	n := lr.br.Buffered()
	if n == 0 {
		if _, err := lr.br.Peek(1); err != nil {
			return nil, err
		}
		n = lr.br.Buffered()
	}
	return lr.br.Peek(n)
}

func (lr *Reader) consume(buf *bytebufferpool.ByteBuffer, p []byte) {
	buf.Write(p)
	lr.br.Discard(len(p))
}
