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

package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i5rc/i5rc/fastq"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		input Config
		want  Config
	}{
		{
			name:  "Disabled",
			input: Config{},
			want:  Config{},
		},
		{
			name:  "FilenameEnables",
			input: Config{Filename: "report.json"},
			want:  Config{Enabled: true, Filename: "report.json"},
		},
		{
			name:  "EnabledDefaultsToStderr",
			input: Config{Enabled: true},
			want:  Config{Enabled: true, Filename: "-"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.Validate()
			assert.Equal(t, tt.want, tt.input)
		})
	}
}

func TestFinish(t *testing.T) {
	stats := fastq.Stats{Records: 2, Lines: 8, BytesRead: 72}

	tests := []struct {
		name   string
		err    error
		status string
		kind   string
	}{
		{
			name:   "OK",
			status: StatusOK,
		},
		{
			name:   "Failed",
			err:    &fastq.RecordError{Record: 3, Line: 9, Err: fastq.ErrMissingMarker},
			status: StatusFailed,
			kind:   fastq.KindMissingMarker,
		},
		{
			name:   "StreamIO",
			err:    errors.New("disk on fire"),
			status: StatusFailed,
			kind:   fastq.KindStreamIO,
		},
		{
			name:   "Canceled",
			err:    errors.Wrap(context.Canceled, "run"),
			status: StatusCanceled,
			kind:   fastq.KindCanceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New("in.fastq", "-")
			r.Finish(stats, 72, 0xabc, tt.err)

			assert.Equal(t, tt.status, r.Status)
			assert.Equal(t, tt.kind, r.ErrorKind)
			assert.Equal(t, int64(2), r.Records)
			assert.Equal(t, int64(8), r.Lines)
			assert.Equal(t, int64(72), r.BytesRead)
			assert.Equal(t, int64(72), r.BytesWritten)
			assert.Equal(t, "abc", r.OutputDigest)
			if tt.err == nil {
				assert.Empty(t, r.Error)
			} else {
				assert.Equal(t, tt.err.Error(), r.Error)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	r := New("in.fastq.gz", "out.fastq")
	r.Finish(fastq.Stats{Records: 1, Lines: 4}, 10, 1, nil)

	var buf bytes.Buffer
	require.NoError(t, r.Encode(&buf))
	assert.Equal(t, byte('\n'), buf.Bytes()[buf.Len()-1])

	var fields map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fields))
	assert.Equal(t, "in.fastq.gz", fields["input"])
	assert.Equal(t, "out.fastq", fields["output"])
	assert.Equal(t, "ok", fields["status"])
	assert.Equal(t, float64(1), fields["records"])
	assert.NotEmpty(t, fields["runId"])
	assert.Contains(t, fields, "build")
	assert.NotContains(t, fields, "error")
	assert.NotContains(t, fields, "errorKind")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	r := New("-", "-")
	r.Finish(fastq.Stats{}, 0, 0, &fastq.RecordError{Record: 1, Line: 4, Err: fastq.ErrTruncatedRecord})
	require.NoError(t, r.WriteFile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Report
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, r.RunID, got.RunID)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, fastq.KindTruncatedRecord, got.ErrorKind)

	assert.Error(t, r.WriteFile(filepath.Join(t.TempDir(), "missing", "report.json")))
}
