package config

import (
	"encoding/json"
)

// Config: 运行期只读配置（一次解析，运行期不变）。
// JSON/YAML 均使用 snake_case；未知字段在解析期失败。
type Config struct {
	Logging Logging `json:"logging"`
	// Status: 是否在 stdout 打印面向使用者的提示；nil 表示默认开启。
	Status *bool `json:"status,omitempty"`

	// 组件名选择（空则使用默认名）。
	Components Components `json:"components"`

	// 各组件 Options 子树，原样 JSON 传入工厂。
	Options Options `json:"options"`
}

// Logging: 日志级别与目录；轮转策略为固定默认。
type Logging struct {
	Level string `json:"level"`
	Dir   string `json:"dir,omitempty"`
}

// Components: 组件名选择（注册表中的实现名）。
type Components struct {
	Reader string `json:"reader"`
	Writer string `json:"writer"`
	Codec  string `json:"codec"`
	Text   string `json:"text"`
	Sheet  string `json:"sheet"`
}

// Options: 各组件的原样 JSON Options。
type Options struct {
	Reader json.RawMessage `json:"reader,omitempty"`
	Writer json.RawMessage `json:"writer,omitempty"`
	Codec  json.RawMessage `json:"codec,omitempty"`
	Text   json.RawMessage `json:"text,omitempty"`
	Sheet  json.RawMessage `json:"sheet,omitempty"`
}

// StatusEnabled 返回生效的终端提示开关。
func (c Config) StatusEnabled() bool {
	return c.Status == nil || *c.Status
}
