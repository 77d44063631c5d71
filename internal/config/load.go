package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix 为环境变量覆盖的统一前缀。
const EnvPrefix = "EMOLABEL_"

// Defaults 返回带有安全默认值的 Config 雏形。
func Defaults() Config {
	return Config{
		Logging: Logging{Level: "info", Dir: "logs"},
		Components: Components{
			Reader: "fs",
			Writer: "fs",
			Codec:  "gob",
			Text:   "text",
			Sheet:  "sheet",
		},
	}
}

// LoadFile 按扩展名选择解析器：.yaml/.yml 走 YAML，其余按 JSON。
func LoadFile(path string) (Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		return LoadYAML(raw)
	default:
		return LoadJSON(path, nil)
	}
}

// LoadJSON 从文件路径或原始 JSON 解析 Config（严格拒绝未知字段）。
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadYAML 将 YAML 转为等价 JSON 后按 LoadJSON 的严格规则解析，
// 使 options 子树仍能以原样 JSON 交给组件工厂。
func LoadYAML(raw []byte) (Config, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	if doc == nil {
		return Config{}, errors.New("parse yaml: empty document")
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return Config{}, fmt.Errorf("yaml to json: %w", err)
	}
	return LoadJSON("", b)
}

// Merge 按优先级合并（后者覆盖前者）。
// 仅标量/字符串/原样 JSON 为“替换”；不做深度合并。
func Merge(base, over Config) Config {
	out := base
	if s := strings.TrimSpace(over.Logging.Level); s != "" {
		out.Logging.Level = s
	}
	if s := strings.TrimSpace(over.Logging.Dir); s != "" {
		out.Logging.Dir = s
	}
	if over.Status != nil {
		v := *over.Status
		out.Status = &v
	}

	// 组件名（空不覆盖）
	pickStr(&out.Components.Reader, over.Components.Reader)
	pickStr(&out.Components.Writer, over.Components.Writer)
	pickStr(&out.Components.Codec, over.Components.Codec)
	pickStr(&out.Components.Text, over.Components.Text)
	pickStr(&out.Components.Sheet, over.Components.Sheet)

	// Options（完整替换对应键）
	pickRaw(&out.Options.Reader, over.Options.Reader)
	pickRaw(&out.Options.Writer, over.Options.Writer)
	pickRaw(&out.Options.Codec, over.Options.Codec)
	pickRaw(&out.Options.Text, over.Options.Text)
	pickRaw(&out.Options.Sheet, over.Options.Sheet)
	return out
}

func pickStr(dst *string, v string) {
	if s := strings.TrimSpace(v); s != "" {
		*dst = s
	}
}

func pickRaw(dst *json.RawMessage, v json.RawMessage) {
	if len(v) > 0 {
		*dst = cloneRaw(v)
	}
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 支持：LOG_LEVEL, LOG_DIR, STATUS, COMPONENTS_{READER,WRITER,CODEC,TEXT,SHEET},
// OPTIONS_{READER,WRITER,CODEC,TEXT,SHEET}_JSON。未知键忽略。
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len(EnvPrefix) {
			continue
		}
		key := strings.TrimPrefix(kv[:eq], EnvPrefix)
		val := kv[eq+1:]
		switch key {
		case "LOG_LEVEL":
			over.Logging.Level = strings.TrimSpace(val)
		case "LOG_DIR":
			over.Logging.Dir = strings.TrimSpace(val)
		case "STATUS":
			if strings.TrimSpace(val) == "" {
				continue
			}
			b, err := strconv.ParseBool(strings.TrimSpace(val))
			if err != nil {
				return over, fmt.Errorf("%sSTATUS: %w", EnvPrefix, err)
			}
			over.Status = &b
		case "COMPONENTS_READER":
			over.Components.Reader = strings.TrimSpace(val)
		case "COMPONENTS_WRITER":
			over.Components.Writer = strings.TrimSpace(val)
		case "COMPONENTS_CODEC":
			over.Components.Codec = strings.TrimSpace(val)
		case "COMPONENTS_TEXT":
			over.Components.Text = strings.TrimSpace(val)
		case "COMPONENTS_SHEET":
			over.Components.Sheet = strings.TrimSpace(val)
		default:
			// OPTIONS_<NAME>_JSON：原样 JSON；空值视为未设置
			if !strings.HasPrefix(key, "OPTIONS_") || !strings.HasSuffix(key, "_JSON") || strings.TrimSpace(val) == "" {
				continue
			}
			raw := json.RawMessage(val)
			if !json.Valid(raw) {
				return over, fmt.Errorf("%s%s: invalid json", EnvPrefix, key)
			}
			switch strings.TrimSuffix(strings.TrimPrefix(key, "OPTIONS_"), "_JSON") {
			case "READER":
				over.Options.Reader = raw
			case "WRITER":
				over.Options.Writer = raw
			case "CODEC":
				over.Options.Codec = raw
			case "TEXT":
				over.Options.Text = raw
			case "SHEET":
				over.Options.Sheet = raw
			}
		}
	}
	return over, nil
}

func cloneRaw(in json.RawMessage) json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}
