package wire

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// ByteFunc supplies one byte at a time to the varint readers.
type ByteFunc func() (byte, error)

// maxVarintLen64 is the longest a 64-bit varint can legally be.
const maxVarintLen64 = 10

// DECODER FUNCTIONS

// ReadUvarint32 reads an unsigned varint: 7-bit groups, low to high, with the
// top bit of each byte signalling continuation. Values wider than 32 bits
// wrap; no length limit is enforced beyond that.
func ReadUvarint32(next ByteFunc) (uint32, error) {
	var result uint32
	var shift uint
	for {
		b, err := next()
		if err != nil {
			return 0, err
		}
		if shift < 32 {
			result |= uint32(b&0x7f) << shift
		}
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// ReadUvarint64 reads an unsigned varint of up to 64 bits. Continuation
// bytes past the tenth are consumed and ignored.
func ReadUvarint64(next ByteFunc) (uint64, error) {
	var result uint64
	var shift uint
	for i := 0; ; i++ {
		b, err := next()
		if err != nil {
			return 0, err
		}
		if i < maxVarintLen64 {
			result |= uint64(b&0x7f) << shift
		}
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// ReadZigZag32 reads a zigzag-encoded signed 32-bit varint.
func ReadZigZag32(next ByteFunc) (int32, error) {
	u, err := ReadUvarint32(next)
	if err != nil {
		return 0, err
	}
	return DecodeZigZag32(u), nil
}

// ReadZigZag64 reads a zigzag-encoded signed 64-bit varint. The full int64
// range round-trips; there is no floating point precision ceiling.
func ReadZigZag64(next ByteFunc) (int64, error) {
	u, err := ReadUvarint64(next)
	if err != nil {
		return 0, err
	}
	return DecodeZigZag64(u), nil
}

// ENCODER FUNCTIONS

// AppendUvarint appends v as an unsigned varint.
func AppendUvarint(dst []byte, v uint64) []byte {
	return protowire.AppendVarint(dst, v)
}

// UvarintSize returns the number of bytes needed to encode v.
func UvarintSize(v uint64) int {
	return protowire.SizeVarint(v)
}

// UTILITY FUNCTIONS

// EncodeZigZag32 maps a signed 32-bit value onto an unsigned one:
// (v << 1) ^ (v >> 31).
func EncodeZigZag32(v int32) uint32 {
	return uint32(v<<1) ^ uint32(v>>31)
}

// DecodeZigZag32 reverses EncodeZigZag32: (u >> 1) ^ -(u & 1).
func DecodeZigZag32(u uint32) int32 {
	return int32(u>>1) ^ -int32(u&1)
}

// EncodeZigZag64 maps a signed 64-bit value onto an unsigned one.
func EncodeZigZag64(v int64) uint64 {
	return protowire.EncodeZigZag(v)
}

// DecodeZigZag64 reverses EncodeZigZag64.
func DecodeZigZag64(u uint64) int64 {
	return protowire.DecodeZigZag(u)
}
