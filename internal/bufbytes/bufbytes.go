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

package bufbytes

import "bytes"

const ellipsis = "..."

// Bytes 容量受限的字节缓冲 超出 size 的部分会被丢弃
//
// 用于在日志与错误信息中保留一段输入行的预览 避免超长行撑爆输出
type Bytes struct {
	size      int
	buf       []byte
	truncated bool
}

func New(size int) *Bytes {
	return &Bytes{
		size: size,
	}
}

func (b *Bytes) Write(p []byte) {
	n := (b.size - len(b.buf)) - len(p)
	if n >= 0 {
		b.buf = append(b.buf, p...)
		return
	}

	b.truncated = true
	l := b.size - len(b.buf)
	if l > 0 {
		b.buf = append(b.buf, p[:l]...)
	}
}

// Truncated 返回是否有数据因超出容量被丢弃
func (b *Bytes) Truncated() bool {
	return b.truncated
}

// PreviewText 返回去除行尾换行符的文本 若发生截断则追加省略号
func (b *Bytes) PreviewText() string {
	s := string(bytes.TrimRight(b.buf, "\r\n"))
	if b.Truncated() {
		return s + ellipsis
	}
	return s
}

// Preview 返回 p 的截断预览文本
func Preview(p []byte, size int) string {
	b := New(size)
	b.Write(p)
	return b.PreviewText()
}
