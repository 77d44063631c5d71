package config

import "encoding/json"

// DefaultTemplateConfig 返回一个可直接使用的配置模板：
// 组件名采用仓库内置实现，选项列出全部键并给出中性默认值。
func DefaultTemplateConfig() Config {
	d := Defaults()
	on := true
	return Config{
		Logging:    d.Logging,
		Status:     &on,
		Components: d.Components,
		Options: Options{
			Reader: json.RawMessage(`{"buf_size":65536}`),
			Writer: json.RawMessage(`{"atomic":true,"mkdir_parents":false,"perm_file":0,"perm_dir":0,"buf_size":65536}`),
			Codec:  json.RawMessage(`{"validate":false}`),
			Text:   json.RawMessage(`{"separator":", "}`),
			Sheet:  json.RawMessage(`{"sheet_name":"records"}`),
		},
	}
}
