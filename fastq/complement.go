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

// complement 碱基互补表 未登记的字节映射为自身
var complement [256]byte

func init() {
	for i := range complement {
		complement[i] = byte(i)
	}

	pairs := []struct{ a, b byte }{
		{'A', 'T'}, {'C', 'G'}, {'N', 'N'},
		{'a', 't'}, {'c', 'g'}, {'n', 'n'},
	}
	for _, p := range pairs {
		complement[p.a] = p.b
		complement[p.b] = p.a
	}
}

// ComplementBase 返回碱基 b 的互补碱基 保留大小写
//
// 仅处理 A/C/G/T/N 其余字节原样返回
func ComplementBase(b byte) byte {
	return complement[b]
}

// ReverseComplement 原地反向互补 buf
//
// 双指针单遍扫描 不产生额外内存分配 奇数长度时中间字节只做互补
func ReverseComplement(buf []byte) {
	i, j := 0, len(buf)-1
	for i < j {
		buf[i], buf[j] = complement[buf[j]], complement[buf[i]]
		i++
		j--
	}
	if i == j {
		buf[i] = complement[buf[i]]
	}
}
