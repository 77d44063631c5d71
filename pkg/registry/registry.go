package registry

import (
	"bytes"
	"encoding/json"

	"emolabel/pkg/contract"
	gsnap "emolabel/plugins/codec/gobsnap"
	xsheet "emolabel/plugins/exporter/sheet"
	xtext "emolabel/plugins/exporter/text"
	rfs "emolabel/plugins/reader/filesystem"
	wfs "emolabel/plugins/writer/filesystem"
)

// strictUnmarshal: 使用 DisallowUnknownFields 严格解码，拒绝未知字段。
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		// 保持零值（默认选项）
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// NewReader 工厂签名：接收原样 JSON Options。
type NewReader func(raw json.RawMessage) (contract.Reader, error)

// NewWriter 工厂签名：接收原样 JSON Options。
type NewWriter func(raw json.RawMessage) (contract.Writer, error)

// NewCodec 工厂签名：接收原样 JSON Options。
type NewCodec func(raw json.RawMessage) (contract.TableCodec, error)

// NewExporter 工厂签名：接收原样 JSON Options。
type NewExporter func(raw json.RawMessage) (contract.Exporter, error)

// Reader 工厂注册表（显式、零反射）。
var Reader = map[string]NewReader{
	// fs: 文件系统/STDIN 行读取
	"fs": func(raw json.RawMessage) (contract.Reader, error) {
		var opts rfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rfs.New(&opts), nil
	},
}

// Writer 工厂注册表。
var Writer = map[string]NewWriter{
	// fs: 文件系统 Writer（覆盖写/原子替换可配置）
	"fs": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wfs.New(&opts)
	},
}

// Codec 工厂注册表。
var Codec = map[string]NewCodec{
	// gob: 魔数 + 版本字节 + gob 载荷
	"gob": func(raw json.RawMessage) (contract.TableCodec, error) {
		var opts gsnap.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return gsnap.New(&opts), nil
	},
}

// TextExporter 工厂注册表（文本伴随导出槽位）。
var TextExporter = map[string]NewExporter{
	"text": func(raw json.RawMessage) (contract.Exporter, error) {
		var opts xtext.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return xtext.New(&opts), nil
	},
}

// SheetExporter 工厂注册表（表格伴随导出槽位）。
var SheetExporter = map[string]NewExporter{
	"sheet": func(raw json.RawMessage) (contract.Exporter, error) {
		var opts xsheet.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return xsheet.New(&opts), nil
	},
}
