package wire

import (
	"encoding/binary"
	"math"

	"github.com/google/uuid"
)

// Fixed-width values carry no length prefix: doubles are always 8 bytes and
// UUIDs always 16.

// DECODER METHODS

// ReadDouble reads exactly 8 bytes as a little-endian IEEE-754 double.
func (r *Reader) ReadDouble() float64 {
	b := r.readN(8)
	if len(b) < 8 {
		var full [8]byte
		copy(full[:], b)
		b = full[:]
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// ReadUUID reads exactly 16 raw bytes.
func (r *Reader) ReadUUID() uuid.UUID {
	var u uuid.UUID
	copy(u[:], r.readN(16))
	return u
}

// ENCODER METHODS

// WriteDouble writes 8 bytes, little-endian IEEE-754.
func (w *Writer) WriteDouble(v float64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// WriteUUID writes the 16 bytes of u.
func (w *Writer) WriteUUID(u uuid.UUID) {
	w.buf = append(w.buf, u[:]...)
}

// WriteUUIDBytes writes exactly 16 bytes: longer input is truncated and
// shorter input is zero-padded.
func (w *Writer) WriteUUIDBytes(b []byte) {
	var u uuid.UUID
	copy(u[:], b)
	w.WriteUUID(u)
}
