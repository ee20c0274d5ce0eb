package wire

import (
	"errors"
	"math"
	"testing"
)

func byteFunc(b []byte) ByteFunc {
	return func() (byte, error) {
		if len(b) == 0 {
			return 0, ErrOutOfData
		}
		c := b[0]
		b = b[1:]
		return c, nil
	}
}

func TestZigZag32(t *testing.T) {
	tests := []struct {
		v int32
		u uint32
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{2147483647, 4294967294},
		{-2147483648, 4294967295},
	}
	for _, tt := range tests {
		if got := EncodeZigZag32(tt.v); got != tt.u {
			t.Errorf("EncodeZigZag32(%d) = %d, want %d", tt.v, got, tt.u)
		}
		if got := DecodeZigZag32(tt.u); got != tt.v {
			t.Errorf("DecodeZigZag32(%d) = %d, want %d", tt.u, got, tt.v)
		}
	}
}

func TestZigZag64Extremes(t *testing.T) {
	for _, v := range []int64{0, -1, 1, math.MaxInt32 + 1, math.MinInt32 - 1, math.MaxInt64, math.MinInt64} {
		buf := AppendUvarint(nil, EncodeZigZag64(v))
		got, err := ReadZigZag64(byteFunc(buf))
		if err != nil {
			t.Fatalf("ReadZigZag64(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip of %d gave %d", v, got)
		}
	}

	if n := len(AppendUvarint(nil, EncodeZigZag64(math.MinInt64))); n != maxVarintLen64 {
		t.Errorf("MinInt64 encodes to %d bytes, want %d", n, maxVarintLen64)
	}
	if n := UvarintSize(math.MaxUint64); n != maxVarintLen64 {
		t.Errorf("UvarintSize(MaxUint64) = %d", n)
	}
}

func TestReadUvarint32(t *testing.T) {
	tests := []struct {
		in   []byte
		want uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xac, 0x02}, 300},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, math.MaxUint32},
	}
	for _, tt := range tests {
		got, err := ReadUvarint32(byteFunc(tt.in))
		if err != nil {
			t.Fatalf("ReadUvarint32(% x): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ReadUvarint32(% x) = %d, want %d", tt.in, got, tt.want)
		}
	}

	if _, err := ReadUvarint32(byteFunc([]byte{0x80})); !errors.Is(err, ErrOutOfData) {
		t.Errorf("truncated varint: got %v, want ErrOutOfData", err)
	}
}
