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

package sigs

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// TerminateContext 返回一个在收到终止信号时被取消的 context
//
// 首个信号只取消 context 随后恢复默认处理 再次收到信号时进程直接退出
func TerminateContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	context.AfterFunc(ctx, stop)
	return ctx, stop
}

// IgnoreBrokenPipe 忽略 SIGPIPE 信号
//
// 下游提前关闭管道时 写操作会返回 EPIPE 由调用方按错误处理
func IgnoreBrokenPipe() {
	signal.Ignore(syscall.SIGPIPE)
}
