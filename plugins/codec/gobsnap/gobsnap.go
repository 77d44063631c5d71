// Package gobsnap 实现记录集的二进制快照：固定魔数 + 版本字节 + gob 载荷。
package gobsnap

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"emolabel/pkg/contract"
)

// Version 为当前快照格式版本；读写双方必须一致。
const Version byte = 1

var magic = [6]byte{'E', 'M', 'O', 'L', 'B', 'L'}

// Options: 最小选项。
type Options struct {
	// Validate: 解码后校验每行 label 与 label_name 一致。默认 false。
	Validate bool `json:"validate,omitempty"`
}

// Codec 实现 contract.TableCodec。
type Codec struct {
	validate bool
	now      func() time.Time
}

// New 创建快照编解码器。
func New(opts *Options) *Codec {
	c := &Codec{now: time.Now}
	if opts != nil {
		c.validate = opts.Validate
	}
	return c
}

var _ contract.TableCodec = (*Codec)(nil)

// snapshot 为 gob 载荷；列名随快照保存，供加载方核对。
type snapshot struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Columns   []string
	Rows      []row
}

// row 与 contract.Record 解耦，避免导出类型改动影响已有快照。
type row struct {
	Query     string
	Text      string
	Label     int
	LabelName string
}

// Header 为快照元信息（不含行数据）。
type Header struct {
	Version   byte
	ID        uuid.UUID
	CreatedAt time.Time
	Rows      int
}

// Encode 写出魔数、版本与 gob 载荷。
func (c *Codec) Encode(w io.Writer, rs contract.RecordSet) error {
	snap := snapshot{
		ID:        uuid.New(),
		CreatedAt: c.now().UTC(),
		Columns:   contract.Columns(),
		Rows:      make([]row, len(rs.Rows)),
	}
	for i, r := range rs.Rows {
		snap.Rows[i] = row{Query: r.Query, Text: r.Text, Label: int(r.Label), LabelName: string(r.LabelName)}
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(magic[:]); err != nil {
		return err
	}
	if err := bw.WriteByte(Version); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return bw.Flush()
}

// Decode 校验魔数与版本后解码为记录集。
func (c *Codec) Decode(r io.Reader) (contract.RecordSet, error) {
	_, rs, err := c.decode(r)
	return rs, err
}

// DecodeHeader 解码并返回快照元信息与记录集。
func (c *Codec) DecodeHeader(r io.Reader) (Header, contract.RecordSet, error) {
	return c.decode(r)
}

func (c *Codec) decode(r io.Reader) (Header, contract.RecordSet, error) {
	br := bufio.NewReader(r)
	var head [len(magic) + 1]byte
	if _, err := io.ReadFull(br, head[:]); err != nil {
		return Header{}, contract.RecordSet{}, fmt.Errorf("%w: short header: %v", contract.ErrSnapshotInvalid, err)
	}
	if !bytes.Equal(head[:len(magic)], magic[:]) {
		return Header{}, contract.RecordSet{}, fmt.Errorf("%w: bad magic", contract.ErrSnapshotInvalid)
	}
	if v := head[len(magic)]; v != Version {
		return Header{}, contract.RecordSet{}, fmt.Errorf("%w: got %d want %d", contract.ErrSnapshotVersion, v, Version)
	}
	var snap snapshot
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return Header{}, contract.RecordSet{}, fmt.Errorf("%w: %v", contract.ErrSnapshotInvalid, err)
	}
	if !sameColumns(snap.Columns, contract.Columns()) {
		return Header{}, contract.RecordSet{}, fmt.Errorf("%w: columns %v", contract.ErrSnapshotInvalid, snap.Columns)
	}
	rs := contract.RecordSet{Rows: make([]contract.Record, len(snap.Rows))}
	for i, x := range snap.Rows {
		rs.Rows[i] = contract.Record{Query: x.Query, Text: x.Text, Label: contract.Label(x.Label), LabelName: contract.Emotion(x.LabelName)}
	}
	if c.validate {
		if err := rs.Validate(); err != nil {
			return Header{}, contract.RecordSet{}, err
		}
	}
	h := Header{Version: Version, ID: snap.ID, CreatedAt: snap.CreatedAt, Rows: len(rs.Rows)}
	return h, rs, nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
