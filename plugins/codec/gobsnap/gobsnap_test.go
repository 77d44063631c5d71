package gobsnap

import (
	"bytes"
	"encoding/gob"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"emolabel/pkg/contract"
)

func sample(t *testing.T) contract.RecordSet {
	t.Helper()
	rs, err := contract.BuildRecordSet([]string{"hi", "bye"}, []string{"joy", "sadness"}, []string{"q1", "q2"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return rs
}

// TestEncodeDecode 编码后解码得到相同行。
func TestEncodeDecode(t *testing.T) {
	c := New(&Options{Validate: true})
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }
	var buf bytes.Buffer
	in := sample(t)
	if err := c.Encode(&buf, in); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("EMOLBL\x01")) {
		t.Fatalf("header: %q", buf.Bytes()[:7])
	}
	h, out, err := c.DecodeHeader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Rows != 2 || h.ID == uuid.Nil || !h.CreatedAt.Equal(fixed) {
		t.Fatalf("header 字段错误: %+v", h)
	}
	for i := range in.Rows {
		if out.Rows[i] != in.Rows[i] {
			t.Fatalf("row %d: %+v != %+v", i, out.Rows[i], in.Rows[i])
		}
	}
}

// TestEncodeEmpty 空记录集也可往返。
func TestEncodeEmpty(t *testing.T) {
	c := New(nil)
	var buf bytes.Buffer
	if err := c.Encode(&buf, contract.RecordSet{}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	rs, err := c.Decode(&buf)
	if err != nil || rs.Len() != 0 {
		t.Fatalf("decode empty: %v %d", err, rs.Len())
	}
}

// TestDecodeErrors 头部/版本/载荷错误分类。
func TestDecodeErrors(t *testing.T) {
	c := New(nil)
	var good bytes.Buffer
	if err := c.Encode(&good, sample(t)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	wrongVer := append([]byte(nil), good.Bytes()...)
	wrongVer[6] = Version + 1

	cases := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, contract.ErrSnapshotInvalid},
		{"short", []byte("EMO"), contract.ErrSnapshotInvalid},
		{"magic", []byte("PICKLE\x01rest"), contract.ErrSnapshotInvalid},
		{"version", wrongVer, contract.ErrSnapshotVersion},
		{"payload", []byte("EMOLBL\x01garbage"), contract.ErrSnapshotInvalid},
		{"truncated", good.Bytes()[:good.Len()/2], contract.ErrSnapshotInvalid},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Decode(bytes.NewReader(tt.data)); !errors.Is(err, tt.want) {
				t.Fatalf("want %v got %v", tt.want, err)
			}
		})
	}
}

// TestDecodeColumnsMismatch 列集合不一致视为无效快照。
func TestDecodeColumnsMismatch(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(magic[:])
	buf.WriteByte(Version)
	snap := snapshot{ID: uuid.New(), Columns: []string{"text", "label"}}
	if err := gob.NewEncoder(&buf).Encode(&snap); err != nil {
		t.Fatalf("gob: %v", err)
	}
	if _, err := New(nil).Decode(&buf); !errors.Is(err, contract.ErrSnapshotInvalid) {
		t.Fatalf("want invalid got %v", err)
	}
}

// TestDecodeValidate 开启校验时拒绝 label 不一致的行。
func TestDecodeValidate(t *testing.T) {
	rs := contract.RecordSet{Rows: []contract.Record{{Text: "x", Label: 0, LabelName: contract.Joy}}}
	var buf bytes.Buffer
	if err := New(nil).Encode(&buf, rs); err != nil {
		t.Fatalf("encode: %v", err)
	}
	data := buf.Bytes()
	if _, err := New(nil).Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("未开启校验时应成功: %v", err)
	}
	if _, err := New(&Options{Validate: true}).Decode(bytes.NewReader(data)); !errors.Is(err, contract.ErrLabelMismatch) {
		t.Fatalf("want mismatch got %v", err)
	}
}
