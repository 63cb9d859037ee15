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

package confengine

import (
	"github.com/elastic/go-ucfg"
	"github.com/elastic/go-ucfg/yaml"
	"github.com/pkg/errors"
)

var configOpts = []ucfg.Option{
	ucfg.PathSep("."),
}

// Config 是对 ucfg.Config 的封装 并提供一些简便的操作函数
type Config struct {
	conf *ucfg.Config
}

func New(conf *ucfg.Config) *Config {
	return &Config{conf: conf}
}

// Empty 返回一个空配置 所有 section 均使用默认值
func Empty() *Config {
	return New(ucfg.New())
}

func (c *Config) Has(s string) bool {
	ok, err := c.conf.Has(s, -1, configOpts...)
	if err != nil {
		return false
	}
	return ok
}

// UnpackChild 将 section s 解析至 to
//
// section 不存在或为空时保留 to 的原值 由调用方的 Validate 补全默认值
func (c *Config) UnpackChild(s string, to any) error {
	if !c.Has(s) {
		return nil
	}
	content, err := c.conf.Child(s, -1, configOpts...)
	if err != nil {
		// `key:` 形式的空 section 会被解析为 nil 值
		return nil
	}
	if err := content.Unpack(to); err != nil {
		return errors.Wrapf(err, "unpack section (%s)", s)
	}
	return nil
}

// Merge 将 other 合并至 c 同名字段以 other 为准
func (c *Config) Merge(other *Config) error {
	if other == nil {
		return nil
	}
	return c.conf.Merge(other.conf, configOpts...)
}

func LoadConfigPath(path string) (*Config, error) {
	config, err := yaml.NewConfigWithFile(path, configOpts...)
	if err != nil {
		return nil, errors.Wrapf(err, "load config (%s)", path)
	}
	return New(config), nil
}

func LoadContent(b []byte) (*Config, error) {
	config, err := yaml.NewConfig(b, configOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "load config content")
	}
	return New(config), nil
}
