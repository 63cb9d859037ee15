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
	"bytes"
	"text/template"
)

type rootCmdConfig struct {
	ConfigPath    string
	Input         string
	Output        string
	Compression   string
	GzipLevel     *int
	BufferSize    int
	LogLevel      string
	LogFile       string
	Report        string
	ServerAddress string
	Pprof         bool
}

const configTemplate = `
logger:
{{- if .LogLevel }}
  level: {{ printf "%q" .LogLevel }}
{{- end }}
{{- if .LogFile }}
  filename: {{ printf "%q" .LogFile }}
{{- end }}

io:
{{- if .Input }}
  input: {{ printf "%q" .Input }}
{{- end }}
{{- if .Output }}
  output: {{ printf "%q" .Output }}
{{- end }}
{{- if .Compression }}
  compression: {{ printf "%q" .Compression }}
{{- end }}
{{- if .GzipLevel }}
  gzipLevel: {{ deref .GzipLevel }}
{{- end }}
{{- if .BufferSize }}
  bufferSize: {{ .BufferSize }}
{{- end }}

report:
{{- if .Report }}
  enabled: true
  filename: {{ printf "%q" .Report }}
{{- end }}

server:
{{- if .ServerAddress }}
  enabled: true
  address: {{ printf "%q" .ServerAddress }}
{{- end }}
{{- if .Pprof }}
  pprof: true
{{- end }}
`

var configTpl = template.Must(template.New("Config").Funcs(template.FuncMap{
	"deref": func(p *int) int { return *p },
}).Parse(configTemplate))

// Yaml 将参数渲染为 confengine 可加载的 YAML 内容 零值字段不会输出
func (c *rootCmdConfig) Yaml() ([]byte, error) {
	var buf bytes.Buffer
	if err := configTpl.Execute(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// changedOnly 返回仅保留显式设置参数的副本 用于覆盖配置文件中的值
func (c *rootCmdConfig) changedOnly(changed func(name string) bool) *rootCmdConfig {
	out := &rootCmdConfig{}
	if changed("input") {
		out.Input = c.Input
	}
	if changed("output") {
		out.Output = c.Output
	}
	if changed("compression") {
		out.Compression = c.Compression
	}
	if changed("gzip-level") {
		out.GzipLevel = c.GzipLevel
	}
	if changed("buffer-size") {
		out.BufferSize = c.BufferSize
	}
	if changed("log.level") {
		out.LogLevel = c.LogLevel
	}
	if changed("log.file") {
		out.LogFile = c.LogFile
	}
	if changed("report") {
		out.Report = c.Report
	}
	if changed("server.address") {
		out.ServerAddress = c.ServerAddress
	}
	if changed("server.pprof") {
		out.Pprof = c.Pprof
	}
	return out
}
