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

import "bytes"

const (
	// Marker header 行首字符
	Marker = '@'

	// Terminator 行结束符
	Terminator = '\n'

	// FieldDelimiter 分隔 header 前缀与 index 字段
	FieldDelimiter = ':'

	// SubfieldDelimiter 分隔 i7 与 i5
	SubfieldDelimiter = '+'
)

// LocateBarcode 校验 header 并返回 i5 字段的区间 [start, end)
//
// header 需以 '@' 开头 以 '\n' 结尾 并以 `:<i7>+<i5>\n` 收尾
// ':' 取最后一次出现的位置 因此前缀中的 ':' (仪器/run 编号等) 不影响定位
func LocateBarcode(line []byte) (int, int, error) {
	if len(line) == 0 || line[0] != Marker {
		return 0, 0, ErrMissingMarker
	}

	end := len(line) - 1
	if line[end] != Terminator {
		return 0, 0, ErrMissingTerminator
	}

	colon := bytes.LastIndexByte(line, FieldDelimiter)
	if colon < 0 {
		return 0, 0, ErrMissingFieldDelimiter
	}

	plus := bytes.IndexByte(line[colon+1:], SubfieldDelimiter)
	if plus < 0 {
		return 0, 0, ErrMissingSubfieldDelimiter
	}
	return colon + 1 + plus + 1, end, nil
}

// Index header 尾部的双端 index
type Index struct {
	I7 []byte
	I5 []byte
}

// ParseIndex 解析 header 中的 i7/i5 字段 返回的切片引用 line 本身
func ParseIndex(line []byte) (Index, error) {
	start, end, err := LocateBarcode(line)
	if err != nil {
		return Index{}, err
	}

	colon := bytes.LastIndexByte(line, FieldDelimiter)
	return Index{
		I7: line[colon+1 : start-1],
		I5: line[start:end],
	}, nil
}

// RewriteHeader 原地将 header 中的 i5 字段替换为其反向互补序列
//
// 校验失败时 line 不会被修改
func RewriteHeader(line []byte) error {
	start, end, err := LocateBarcode(line)
	if err != nil {
		return err
	}
	ReverseComplement(line[start:end])
	return nil
}
