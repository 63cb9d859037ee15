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

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/i5rc/i5rc/common"
	"github.com/i5rc/i5rc/confengine"
	"github.com/i5rc/i5rc/controller"
	"github.com/i5rc/i5rc/internal/sigs"
	"github.com/i5rc/i5rc/logger"
	"github.com/i5rc/i5rc/stream"
)

const (
	exitFailure  = 1
	exitCanceled = 130
)

var rootConfig rootCmdConfig

var rootCmd = &cobra.Command{
	Use:   common.Binary,
	Short: "Rewrites FASTQ headers by reverse-complementing the i5 (Index2 / P5) barcode",
	Long: `A fast, streaming tool to rewrite FASTQ headers by reverse-complementing the i5 (Index2 / P5)
barcode, without modifying read sequences or quality scores. Headers are expected to end with
the standard Illumina ':<i7>+<i5>' format.`,
	Args:          cobra.NoArgs,
	Version:       common.GetBuildInfo().Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if interactiveStdin(cmd) {
			return cmd.Help()
		}

		conf, err := loadConfig(cmd)
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}

		ctr, err := controller.New(conf, common.GetBuildInfo())
		if err != nil {
			return errors.Wrap(err, "failed to create controller")
		}

		ctx, stop := sigs.TerminateContext(cmd.Context())
		defer stop()
		return ctr.Run(ctx)
	},
	Example: `# fastq-i5-rc < in.fastq > out.fastq
# fastq-i5-rc -i in.fastq.gz -o out.fastq.gz --report run.json`,
}

// interactiveStdin 未指定输入且标准输入为终端时返回 true 此时打印帮助而非阻塞等待
func interactiveStdin(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("input") || rootConfig.ConfigPath != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// loadConfig 加载配置
//
// 指定 --config 时以配置文件为基础 再合并显式设置的命令行参数
func loadConfig(cmd *cobra.Command) (*confengine.Config, error) {
	if rootConfig.ConfigPath == "" {
		content, err := rootConfig.Yaml()
		if err != nil {
			return nil, err
		}
		return confengine.LoadContent(content)
	}

	conf, err := confengine.LoadConfigPath(rootConfig.ConfigPath)
	if err != nil {
		return nil, err
	}

	content, err := rootConfig.changedOnly(cmd.Flags().Changed).Yaml()
	if err != nil {
		return nil, err
	}
	overrides, err := confengine.LoadContent(content)
	if err != nil {
		return nil, err
	}
	if err := conf.Merge(overrides); err != nil {
		return nil, err
	}
	return conf, nil
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return exitCanceled
	}
	return exitFailure
}

// printError 向 w 输出运行错误
//
// 下游关闭管道时 controller 已记录告警 此处不再重复输出
func printError(w io.Writer, err error) {
	if err == nil || stream.IsBrokenPipe(err) {
		return
	}
	fmt.Fprintf(w, "%s: %v\n", common.Binary, err)
}

// Execute 执行根命令并以对应状态码退出 由 main.main() 调用
func Execute() {
	sigs.IgnoreBrokenPipe()

	err := rootCmd.Execute()
	printError(os.Stderr, err)
	logger.Close()
	os.Exit(exitCode(err))
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&rootConfig.ConfigPath, "config", "", "Configuration file path, explicitly set flags take precedence")
	flags.StringVarP(&rootConfig.Input, "input", "i", stream.StdPath, "Input FASTQ path, '-' for stdin")
	flags.StringVarP(&rootConfig.Output, "output", "o", stream.StdPath, "Output FASTQ path, '-' for stdout")
	flags.StringVar(&rootConfig.Compression, "compression", stream.CompressionAuto, "Stream compression [auto|none|gzip|snappy]")
	rootConfig.GzipLevel = flags.Int("gzip-level", stream.DefaultGzipLevel, "Gzip level for compressed output [-2..9], 0 stores without compression")
	flags.IntVar(&rootConfig.BufferSize, "buffer-size", common.IOBufferSize, "Input and output buffer size in bytes")
	flags.StringVar(&rootConfig.LogLevel, "log.level", string(logger.LevelInfo), "Log level [debug|info|warn|error]")
	flags.StringVar(&rootConfig.LogFile, "log.file", "", "Write logs to a rotated file instead of stderr")
	flags.StringVar(&rootConfig.Report, "report", "", "Write a JSON run report to the path, '-' for stderr")
	flags.StringVar(&rootConfig.ServerAddress, "server.address", "", "Serve metrics and admin routes on the address while running")
	flags.BoolVar(&rootConfig.Pprof, "server.pprof", false, "Register pprof routes on the server")
}
