// Package dataset 提供实验流水线的文件持久化操作：
// 行文件读写、带情绪标签记录集的快照保存/加载，以及伴随导出。
//
// 各操作相互独立，Store 仅聚合其依赖的组件，不保存跨调用状态。
// I/O 失败时向终端打印提示、记录结构化日志，并以 error 返回给调用方。
package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"emolabel/internal/diag"
	"emolabel/pkg/contract"
	gsnap "emolabel/plugins/codec/gobsnap"
	xsheet "emolabel/plugins/exporter/sheet"
	xtext "emolabel/plugins/exporter/text"
	rfs "emolabel/plugins/reader/filesystem"
	wfs "emolabel/plugins/writer/filesystem"
)

const comp = "dataset"

// LinesSuffix 为 SaveLines 追加的固定扩展名。
const LinesSuffix = ".txt"

// Components 为 Store 使用的组件；nil 字段使用内置默认实现。
type Components struct {
	Reader contract.Reader
	Writer contract.Writer
	Codec  contract.TableCodec
	Text   contract.Exporter
	Sheet  contract.Exporter
}

// Store 聚合读写组件、日志器与终端提示。
type Store struct {
	c    Components
	log  *diag.Logger
	term *diag.Terminal
}

// Option 配置 Store。
type Option func(*Store)

// WithLogger 指定结构化日志器；默认丢弃。
func WithLogger(l *diag.Logger) Option { return func(s *Store) { s.log = l } }

// WithTerminal 指定终端提示输出；默认 stdout。
func WithTerminal(t *diag.Terminal) Option { return func(s *Store) { s.term = t } }

// New 创建 Store。
func New(c Components, opts ...Option) *Store {
	if c.Reader == nil {
		c.Reader = rfs.New(nil)
	}
	if c.Writer == nil {
		// nil Options 不会返回错误
		w, _ := wfs.New(nil)
		c.Writer = w
	}
	if c.Codec == nil {
		c.Codec = gsnap.New(nil)
	}
	if c.Text == nil {
		c.Text = xtext.New(nil)
	}
	if c.Sheet == nil {
		c.Sheet = xsheet.New(nil)
	}
	s := &Store{c: c, log: diag.Discard(), term: diag.NewTerminal(os.Stdout, true)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Default 返回全部使用默认组件的 Store。
func Default() *Store { return New(Components{}) }

// LoadLines 按行读取 path；失败时打印提示并返回 nil。成功时不打印计数。
func (s *Store) LoadLines(ctx context.Context, path string) ([]string, error) {
	const op = "load_lines"
	t := s.log.StartWith(comp, op, path)
	lines, err := s.c.Reader.ReadLines(ctx, contract.NormalizeFileID(path))
	if err != nil {
		s.term.Failf(err, "Error loading file entries")
		s.fail(op, path, t, err)
		return nil, err
	}
	s.done(op, t, len(lines))
	return lines, nil
}

// SaveLines 将 lines 逐条写入 <base>.txt（每条后接 '\n'），返回写出条数。
func (s *Store) SaveLines(ctx context.Context, lines []string, base string) (int, error) {
	const op = "save_lines"
	path := base + LinesSuffix
	t := s.log.StartWith(comp, op, path)
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	if err := s.write(ctx, base, path, &buf); err != nil {
		s.term.Failf(err, "Error saving list entries to %s", path)
		s.fail(op, path, t, err)
		return 0, err
	}
	s.term.Saved(len(lines), path)
	s.done(op, t, len(lines))
	return len(lines), nil
}

// SaveLabeledRecords 由平行序列构造记录集并以快照格式写入 path（原样路径，不追加扩展名）。
// 查表失败与序列化失败直接返回，不打印终端提示。
// 三路长度不一致时按最短截断，并记录 warn 事件。
func (s *Store) SaveLabeledRecords(ctx context.Context, texts, emotions, queries []string, path string) (contract.RecordSet, error) {
	const op = "save_labeled_records"
	t := s.log.StartWith(comp, op, path)
	rs, err := contract.BuildRecordSet(texts, emotions, queries)
	if err != nil {
		s.fail(op, path, t, err)
		return contract.RecordSet{}, err
	}
	if contract.Truncated(texts, emotions, queries) {
		s.log.Warn(comp, "input lengths differ; truncated to shortest", path, map[string]string{
			"texts":    strconv.Itoa(len(texts)),
			"emotions": strconv.Itoa(len(emotions)),
			"queries":  strconv.Itoa(len(queries)),
			"rows":     strconv.Itoa(rs.Len()),
		})
	}
	var buf bytes.Buffer
	if err := s.c.Codec.Encode(&buf, rs); err != nil {
		s.fail(op, path, t, err)
		return contract.RecordSet{}, err
	}
	if err := s.write(ctx, path, path, &buf); err != nil {
		s.fail(op, path, t, err)
		return contract.RecordSet{}, err
	}
	s.done(op, t, rs.Len())
	return rs, nil
}

// SaveLabeledRecordsAsText 写出 <base>-with-emotions.txt，每行 "text, label, label_name"。
func (s *Store) SaveLabeledRecordsAsText(ctx context.Context, rs contract.RecordSet, base string) (int, error) {
	return s.export(ctx, "save_labeled_records_as_text", s.c.Text, rs, base)
}

// SaveLabeledRecordsAsSheet 写出 <base>-with-emotions.xlsx（表头 + 每条记录一行）。
func (s *Store) SaveLabeledRecordsAsSheet(ctx context.Context, rs contract.RecordSet, base string) (int, error) {
	return s.export(ctx, "save_labeled_records_as_sheet", s.c.Sheet, rs, base)
}

func (s *Store) export(ctx context.Context, op string, exp contract.Exporter, rs contract.RecordSet, base string) (int, error) {
	path := base + exp.Suffix()
	t := s.log.StartWith(comp, op, path)
	var buf bytes.Buffer
	n, err := exp.Export(&buf, rs)
	if err == nil {
		err = s.write(ctx, base, path, &buf)
	}
	if err != nil {
		s.term.Failf(err, "Error saving DataFrame to %s", path)
		s.fail(op, path, t, err)
		return 0, err
	}
	s.term.Saved(n, path)
	s.done(op, t, n)
	return n, nil
}

// LoadTable 加载快照。路径不存在时打印提示并返回 ErrTableNotFound；
// 解码失败直接返回错误，不打印终端提示。
func (s *Store) LoadTable(ctx context.Context, path string) (contract.RecordSet, error) {
	const op = "load_table"
	t := s.log.StartWith(comp, op, path)
	// 存在性检查与打开使用同一规范化路径
	id := contract.NormalizeFileID(path)
	if _, err := os.Stat(string(id)); errors.Is(err, fs.ErrNotExist) {
		s.term.Printf("ERROR: no dataframe available. Please recheck the given path %s and try again.", path)
		err = fmt.Errorf("%w: %s", contract.ErrTableNotFound, path)
		s.fail(op, path, t, err)
		return contract.RecordSet{}, err
	}
	rc, err := s.c.Reader.Open(ctx, id)
	if err != nil {
		s.fail(op, path, t, err)
		return contract.RecordSet{}, err
	}
	defer rc.Close()
	rs, err := s.decode(rc, path)
	if err != nil {
		s.fail(op, path, t, err)
		return contract.RecordSet{}, err
	}
	s.term.Printf("Loaded dataframe from %s successfully!", path)
	s.done(op, t, rs.Len())
	return rs, nil
}

// headerDecoder: 解码时可同时给出快照元信息的编解码器。
type headerDecoder interface {
	DecodeHeader(r io.Reader) (gsnap.Header, contract.RecordSet, error)
}

// decode 优先使用 headerDecoder，将快照 ID 与创建时间记入 debug 事件。
func (s *Store) decode(r io.Reader, path string) (contract.RecordSet, error) {
	hd, ok := s.c.Codec.(headerDecoder)
	if !ok {
		return s.c.Codec.Decode(r)
	}
	h, rs, err := hd.DecodeHeader(r)
	if err != nil {
		return contract.RecordSet{}, err
	}
	s.log.DebugStart(comp, "snapshot", path, map[string]string{
		"snapshot_id": h.ID.String(),
		"created_at":  h.CreatedAt.Format(time.RFC3339),
		"version":     strconv.Itoa(int(h.Version)),
		"rows":        strconv.Itoa(h.Rows),
	})
	return rs, nil
}

// write 校验基础路径非空后交给 Writer。
func (s *Store) write(ctx context.Context, base, path string, buf *bytes.Buffer) error {
	if _, err := contract.WithSuffix(base, ""); err != nil {
		return err
	}
	return s.c.Writer.Write(ctx, contract.NormalizeFileID(path), buf)
}

func (s *Store) fail(op, path string, t *diag.Timer, err error) {
	code := diag.Classify(err)
	s.log.ErrorWith(comp, string(code), op+": "+err.Error(), t.Since(), path)
	diag.IncOp(comp, op, "error")
	diag.IncError(comp, code)
}

func (s *Store) done(op string, t *diag.Timer, n int) {
	t.Finish(op, int64(n))
	diag.IncOp(comp, op, "success")
	if since := t.Since(); since != nil {
		diag.ObserveDuration(comp, op, time.Since(*since).Milliseconds())
	}
}
