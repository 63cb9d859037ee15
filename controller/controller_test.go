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
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i5rc/i5rc/common"
	"github.com/i5rc/i5rc/confengine"
	"github.com/i5rc/i5rc/fastq"
	"github.com/i5rc/i5rc/logger"
	"github.com/i5rc/i5rc/report"
	"github.com/i5rc/i5rc/stream"
)

const (
	validInput  = "@r1 1:N:0:AAAA+ACTACTTGAG\nACGT\n+\n!!!!\n@r2 1:N:0:CCCC+atcacg\nTGCA\n+\n####\n"
	validOutput = "@r1 1:N:0:AAAA+CTCAAGTAGT\nACGT\n+\n!!!!\n@r2 1:N:0:CCCC+cgtgat\nTGCA\n+\n####\n"
)

type testEnv struct {
	input  string
	output string
	report string
}

func newTestEnv(t *testing.T, content string) testEnv {
	dir := t.TempDir()
	env := testEnv{
		input:  filepath.Join(dir, "in.fastq"),
		output: filepath.Join(dir, "out.fastq"),
		report: filepath.Join(dir, "report.json"),
	}
	require.NoError(t, os.WriteFile(env.input, []byte(content), 0o644))
	return env
}

func (e testEnv) controller(t *testing.T, extra string) *Controller {
	content := fmt.Sprintf("io:\n  input: %q\n  output: %q\n  bufferSize: 16\nreport:\n  filename: %q\n%s",
		e.input, e.output, e.report, extra)
	conf, err := confengine.LoadContent([]byte(content))
	require.NoError(t, err)

	ctr, err := New(conf, common.BuildInfo{Version: "test"})
	require.NoError(t, err)
	return ctr
}

func (e testEnv) readReport(t *testing.T) report.Report {
	b, err := os.ReadFile(e.report)
	require.NoError(t, err)

	var rpt report.Report
	require.NoError(t, json.Unmarshal(b, &rpt))
	return rpt
}

func TestRun(t *testing.T) {
	env := newTestEnv(t, validInput)
	ctr := env.controller(t, "")
	require.NoError(t, ctr.Run(context.Background()))

	b, err := os.ReadFile(env.output)
	require.NoError(t, err)
	assert.Equal(t, validOutput, string(b))

	rpt := env.readReport(t)
	assert.Equal(t, report.StatusOK, rpt.Status)
	assert.Equal(t, int64(2), rpt.Records)
	assert.Equal(t, int64(8), rpt.Lines)
	assert.Equal(t, int64(len(validInput)), rpt.BytesRead)
	assert.Equal(t, int64(len(validOutput)), rpt.BytesWritten)
	assert.Equal(t, fmt.Sprintf("%x", xxhash.Sum64String(validOutput)), rpt.OutputDigest)

	stats, written := ctr.Stats()
	assert.Equal(t, fastq.StateDone, stats.State)
	assert.Equal(t, int64(len(validOutput)), written)
}

func TestRunInvalidRecord(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		output  string
		kind    string
		records int64
	}{
		{
			name:    "MissingMarker",
			input:   validInput + "r3 1:N:0:AAAA+CCCC\nA\n+\n!\n",
			output:  validOutput,
			kind:    fastq.KindMissingMarker,
			records: 2,
		},
		{
			name:    "Truncated",
			input:   validInput + "@r3 1:N:0:AAAA+CCCC\nA\n",
			output:  validOutput,
			kind:    fastq.KindTruncatedRecord,
			records: 2,
		},
		{
			name:   "MissingSubfieldDelimiter",
			input:  "@r1 1:N:0:AAAA\nA\n+\n!\n",
			output: "",
			kind:   fastq.KindMissingSubfieldDelimiter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.input)
			err := env.controller(t, "").Run(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.kind, fastq.Kind(err))

			b, rerr := os.ReadFile(env.output)
			require.NoError(t, rerr)
			assert.Equal(t, tt.output, string(b))

			rpt := env.readReport(t)
			assert.Equal(t, report.StatusFailed, rpt.Status)
			assert.Equal(t, tt.kind, rpt.ErrorKind)
			assert.Equal(t, tt.records, rpt.Records)
		})
	}
}

func TestRunOpenError(t *testing.T) {
	env := newTestEnv(t, validInput)
	env.input = filepath.Join(filepath.Dir(env.input), "missing.fastq")

	err := env.controller(t, "").Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, fastq.KindStreamIO, fastq.Kind(err))

	rpt := env.readReport(t)
	assert.Equal(t, report.StatusFailed, rpt.Status)
	assert.Equal(t, int64(0), rpt.Records)
}

func TestRunCanceled(t *testing.T) {
	env := newTestEnv(t, validInput)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := env.controller(t, "").Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, report.StatusCanceled, env.readReport(t).Status)
}

func TestRunWithServer(t *testing.T) {
	env := newTestEnv(t, validInput)
	ctr := env.controller(t, "server:\n  address: 127.0.0.1:0\n")
	require.NotNil(t, ctr.svr)
	require.NoError(t, ctr.Run(context.Background()))

	rec := httptest.NewRecorder()
	ctr.svr.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/-/stats", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, float64(2), stats["records"])
	assert.Equal(t, "done", stats["state"])

	rec = httptest.NewRecorder()
	ctr.svr.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "i5rc_records_total 2")

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/-/logger", strings.NewReader("level=debug"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	ctr.svr.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"level": "debug"`)
}

func TestRunCanceledWhileInputBlocked(t *testing.T) {
	old := abortTimeout
	abortTimeout = 100 * time.Millisecond
	defer func() { abortTimeout = old }()

	env := newTestEnv(t, "")
	ctr := env.controller(t, "")

	pr, pw := io.Pipe()
	defer pw.Close()
	ctr.openReader = func(stream.Config) (io.ReadCloser, error) {
		return pr, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- ctr.Run(ctx)
	}()

	// 写入首条记录后上游停滞 rewriter 阻塞在下一次读取上
	_, err := pw.Write([]byte("@r1 1:N:0:AAAA+ACTACTTGAG\nACGT\n+\n!!!!\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		stats, _ := ctr.Stats()
		return stats.Records == 1 && stats.State == fastq.StateAwaitingHeader
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}

	rpt := env.readReport(t)
	assert.Equal(t, report.StatusCanceled, rpt.Status)
	assert.Equal(t, int64(1), rpt.Records)
	assert.Equal(t, "0", rpt.OutputDigest)
}

func TestRunQuietOnSuccess(t *testing.T) {
	env := newTestEnv(t, validInput)
	logFile := filepath.Join(filepath.Dir(env.input), "logs", "i5rc.log")
	ctr := env.controller(t, fmt.Sprintf("logger:\n  level: info\n  filename: %q\n", logFile))
	require.NoError(t, ctr.Run(context.Background()))
	require.NoError(t, logger.Close())

	b, err := os.ReadFile(logFile)
	if err != nil {
		assert.ErrorIs(t, err, os.ErrNotExist)
		return
	}
	assert.Empty(t, string(b))
}
