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

package controller

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/i5rc/i5rc/common"
	"github.com/i5rc/i5rc/confengine"
	"github.com/i5rc/i5rc/fastq"
	"github.com/i5rc/i5rc/internal/rescue"
	"github.com/i5rc/i5rc/logger"
	"github.com/i5rc/i5rc/report"
	"github.com/i5rc/i5rc/server"
	"github.com/i5rc/i5rc/stream"
)

const shutdownTimeout = 5 * time.Second

// abortTimeout 取消后等待 rewriter 抵达记录边界的时长
//
// 超时说明其阻塞在输入或输出上 此时放弃等待直接返回
var abortTimeout = time.Second

type Controller struct {
	buildInfo common.BuildInfo
	ioCfg     stream.Config
	reportCfg report.Config

	svr *server.Server

	openReader func(stream.Config) (io.ReadCloser, error)
	openWriter func(stream.Config) (io.WriteCloser, error)

	mut    sync.RWMutex
	rw     *fastq.Rewriter
	digest *stream.DigestWriter
}

func setupLogger(conf *confengine.Config) error {
	var opts logger.Options
	if err := conf.UnpackChild("logger", &opts); err != nil {
		return err
	}

	logger.SetOptions(opts)
	return nil
}

func New(conf *confengine.Config, buildInfo common.BuildInfo) (*Controller, error) {
	if err := setupLogger(conf); err != nil {
		return nil, err
	}

	ioCfg := stream.DefaultConfig()
	if err := conf.UnpackChild("io", &ioCfg); err != nil {
		return nil, err
	}
	if err := ioCfg.Validate(); err != nil {
		return nil, err
	}

	var reportCfg report.Config
	if err := conf.UnpackChild("report", &reportCfg); err != nil {
		return nil, err
	}
	reportCfg.Validate()

	svr, err := server.New(conf)
	if err != nil {
		return nil, err
	}

	return &Controller{
		buildInfo: buildInfo,
		ioCfg:     ioCfg,
		reportCfg: reportCfg,
		svr:       svr,

		openReader: stream.OpenReader,
		openWriter: stream.OpenWriter,
	}, nil
}

// Run 打开输入输出流并完成一次完整的改写
//
// 任何错误都会中止本次运行 返回前已完整写出的记录会被 flush 至输出
// ctx 被取消而 rewriter 阻塞在 I/O 上时 Run 仍会在 abortTimeout 后返回
func (c *Controller) Run(ctx context.Context) (err error) {
	defer rescue.HandleCrash(&err)

	rpt := report.New(c.ioCfg.Input, c.ioCfg.Output)
	logger.Debugf("run %s started: input=%s output=%s compression=%s bufferSize=%d",
		rpt.RunID, c.ioCfg.Input, c.ioCfg.Output, c.ioCfg.Compression, c.ioCfg.BufferSize)

	src, err := c.openReader(c.ioCfg)
	if err != nil {
		return c.finish(rpt, err, true)
	}
	dst, err := c.openWriter(c.ioCfg)
	if err != nil {
		src.Close()
		return c.finish(rpt, err, true)
	}

	digest := stream.NewDigestWriter(dst)
	rw := fastq.NewRewriter(src, digest, c.ioCfg.BufferSize)

	c.mut.Lock()
	c.rw, c.digest = rw, digest
	c.mut.Unlock()

	settled, err := c.runRewriter(ctx, rw)
	if !settled {
		// rewriter 仍持有输入输出以及内部缓冲 均不可再访问
		logger.Warnf("run %s aborted while blocked on I/O after %d records", rpt.RunID, rw.Stats().Records)
		return c.finish(rpt, err, false)
	}

	rw.Release()
	if cerr := closeStreams(dst, src); cerr != nil && err == nil {
		err = cerr
	}
	return c.finish(rpt, err, true)
}

// runRewriter 运行 rw 并托管 server 的生命周期
//
// 返回的 settled 为 false 表示 rw 在取消后未能按时退出 其 goroutine 被放弃
func (c *Controller) runRewriter(ctx context.Context, rw *fastq.Rewriter) (bool, error) {
	g, gctx := errgroup.WithContext(ctx)
	if c.svr != nil {
		c.setupServer()
		g.Go(c.svr.ListenAndServe)
	}

	done := make(chan error, 1)
	go func() {
		var err error
		defer func() { done <- err }()
		defer rescue.HandleCrash(&err)
		err = rw.Run(gctx)
	}()

	settled := true
	var err error
	select {
	case err = <-done:
	case <-gctx.Done():
		select {
		case err = <-done:
		case <-time.After(abortTimeout):
			settled = false
			err = gctx.Err()
		}
	}

	c.shutdownServer()
	if gerr := g.Wait(); gerr != nil && (err == nil || fastq.Kind(err) == fastq.KindCanceled) {
		err = gerr
	}
	return settled, err
}

func (c *Controller) shutdownServer() {
	if c.svr == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := c.svr.Shutdown(ctx); err != nil {
		logger.Warnf("failed to shutdown server: %v", err)
	}
}

// closeStreams 先关闭输出 (写出压缩尾部) 再关闭输入
func closeStreams(dst io.WriteCloser, src io.ReadCloser) error {
	var errs error
	if err := dst.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := src.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs
}

// finish 汇总本次运行结果 settled 为 false 时输出仍可能被并发写入 不计算摘要
func (c *Controller) finish(rpt *report.Report, err error, settled bool) error {
	var stats fastq.Stats
	var written int64
	var sum uint64

	c.mut.RLock()
	if c.rw != nil {
		stats = c.rw.Stats()
		written = c.digest.Count()
		if settled {
			sum = c.digest.Sum64()
		}
	}
	c.mut.RUnlock()

	rpt.Finish(stats, written, sum, err)
	c.recordMetrics()

	switch {
	case err == nil:
		logger.Debugf("rewrote %d records (%d bytes) in %s", stats.Records, written, rpt.Elapsed)
	case stream.IsBrokenPipe(err):
		runErrors.WithLabelValues(fastq.KindStreamIO).Inc()
		logger.Warnf("output closed by downstream after %d records", stats.Records)
	default:
		runErrors.WithLabelValues(fastq.Kind(err)).Inc()
		logger.Debugf("run %s failed after %d records: %v", rpt.RunID, stats.Records, err)
	}

	if c.reportCfg.Enabled {
		if rerr := rpt.WriteFile(c.reportCfg.Filename); rerr != nil {
			logger.Errorf("failed to write report: %v", rerr)
		}
	}
	return err
}

// Stats 返回当前运行进度
func (c *Controller) Stats() (fastq.Stats, int64) {
	c.mut.RLock()
	defer c.mut.RUnlock()

	if c.rw == nil {
		return fastq.Stats{}, 0
	}
	return c.rw.Stats(), c.digest.Count()
}

func (c *Controller) recordMetrics() {
	stats, written := c.Stats()
	uptime.Set(time.Since(common.Started()).Seconds())
	buildInfo.WithLabelValues(c.buildInfo.Version, c.buildInfo.GitHash, c.buildInfo.Time).Set(1)
	processedRecords.Set(float64(stats.Records))
	readBytes.Set(float64(stats.BytesRead))
	writtenBytes.Set(float64(written))
}

func (c *Controller) setupServer() {
	// Admin Routes
	c.svr.RegisterPostRoute("/-/logger", c.routeLogger)
	c.svr.RegisterGetRoute("/-/stats", c.routeStats)

	// Metrics Routes
	c.svr.RegisterGetRoute("/metrics", c.routeMetrics)
}

func (c *Controller) routeMetrics(w http.ResponseWriter, r *http.Request) {
	c.recordMetrics()
	promhttp.Handler().ServeHTTP(w, r)
}

func (c *Controller) routeLogger(w http.ResponseWriter, r *http.Request) {
	level := r.FormValue("level")
	logger.SetLoggerLevel(level)
	w.Write([]byte(`{"status": "success", "level": "` + logger.LoggerLevel() + `"}`))
}

func (c *Controller) routeStats(w http.ResponseWriter, _ *http.Request) {
	stats, written := c.Stats()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"records":      stats.Records,
		"lines":        stats.Lines,
		"bytesRead":    stats.BytesRead,
		"bytesWritten": written,
		"state":        stats.State.String(),
	})
}
