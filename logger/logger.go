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

package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

func toZapLevel(l string) zapcore.Level {
	levels := map[Level]zapcore.Level{
		LevelDebug: zapcore.DebugLevel,
		LevelInfo:  zapcore.InfoLevel,
		LevelWarn:  zapcore.WarnLevel,
		LevelError: zapcore.ErrorLevel,
	}
	if level, ok := levels[Level(strings.ToLower(strings.TrimSpace(l)))]; ok {
		return level
	}
	return zapcore.InfoLevel
}

// Options 日志配置
//
// Filename 为空时输出至标准错误 标准输出专用于记录数据
type Options struct {
	Level      string `config:"level"`
	Filename   string `config:"filename"`
	MaxSize    int    `config:"maxSize"` // unit: MB
	MaxAge     int    `config:"maxAge"`  // unit: days
	MaxBackups int    `config:"maxBackups"`
}

func (o *Options) Validate() {
	if o.MaxBackups <= 0 {
		o.MaxBackups = 10
	}
	if o.MaxAge <= 0 {
		o.MaxAge = 7
	}
	if o.MaxSize <= 0 {
		o.MaxSize = 100
	}
}

type Logger struct {
	sugared *zap.SugaredLogger
	level   zap.AtomicLevel
	closer  io.Closer
}

func (l Logger) Debugf(template string, args ...any) {
	l.sugared.Debugf(template, args...)
}

func (l Logger) Infof(template string, args ...any) {
	l.sugared.Infof(template, args...)
}

func (l Logger) Warnf(template string, args ...any) {
	l.sugared.Warnf(template, args...)
}

func (l Logger) Errorf(template string, args ...any) {
	l.sugared.Errorf(template, args...)
}

// SetLevel 运行时调整日志级别
func (l Logger) SetLevel(s string) {
	l.level.SetLevel(toZapLevel(s))
}

// Level 返回当前日志级别
func (l Logger) Level() string {
	return l.level.Level().String()
}

// Close 刷写缓冲并关闭日志文件
func (l Logger) Close() error {
	_ = l.sugared.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// New 创建并返回标准 Logger 实例
func New(opt Options) Logger {
	var w zapcore.WriteSyncer
	var closer io.Closer
	switch {
	case opt.Filename == "":
		w = zapcore.Lock(zapcore.AddSync(os.Stderr))
	default:
		// 初始化日志目录
		if err := os.MkdirAll(filepath.Dir(opt.Filename), os.ModePerm); err != nil {
			panic(err)
		}

		opt.Validate()
		lj := &lumberjack.Logger{
			Filename:   opt.Filename,
			MaxSize:    opt.MaxSize,
			MaxBackups: opt.MaxBackups,
			MaxAge:     opt.MaxAge,
			LocalTime:  true,
		}
		w = zapcore.AddSync(lj)
		closer = lj
	}
	return newWithSyncer(opt, w, closer)
}

func newWithSyncer(opt Options, w zapcore.WriteSyncer, closer io.Closer) Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Local().Format("2006-01-02 15:04:05.000"))
	}
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	level := zap.NewAtomicLevelAt(toZapLevel(opt.Level))
	core := zapcore.NewCore(encoder, w, level)
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return Logger{
		sugared: logger.Sugar(),
		level:   level,
		closer:  closer,
	}
}

var std = New(Options{})

// SetOptions 设置全局 Logger 配置 并关闭旧的 Logger
func SetOptions(opt Options) {
	old := std
	std = New(opt)
	_ = old.Close()
}

// SetLoggerLevel 设置全局 Logger 日志级别
func SetLoggerLevel(s string) {
	std.SetLevel(s)
}

// LoggerLevel 返回全局 Logger 日志级别
func LoggerLevel() string {
	return std.Level()
}

// Close 关闭全局 Logger
func Close() error {
	return std.Close()
}

func Debugf(template string, args ...any) {
	std.Debugf(template, args...)
}

func Infof(template string, args ...any) {
	std.Infof(template, args...)
}

func Warnf(template string, args ...any) {
	std.Warnf(template, args...)
}

func Errorf(template string, args ...any) {
	std.Errorf(template, args...)
}
