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

package common

const (
	// App 应用程序名称 同时作为 metrics namespace
	App = "i5rc"

	// Binary 可执行文件名称
	Binary = "fastq-i5-rc"

	// Version 应用程序版本
	Version = "v0.1.0"

	// IOBufferSize 输入输出流的默认缓冲大小
	//
	// 64K 足以摊薄 read/write 系统调用的开销 同时单行 header 远小于该长度
	IOBufferSize = 64 * 1024

	// LineBufferSize 行缓冲的初始容量
	LineBufferSize = 1024

	// LinesPerRecord 每条 FASTQ 记录固定为 4 行
	LinesPerRecord = 4
)
