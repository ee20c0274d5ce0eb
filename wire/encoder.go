package wire

import (
	"io"
)

// Writer encodes the compact protocol into an in-memory buffer.
//
// Like Reader, a Writer keeps the first error it sees; Err reports it. A
// Writer is not safe for concurrent use.
type Writer struct {
	buf []byte
	err error

	fieldID        int16
	stack          []int16
	pendingBoolSet bool
	pendingBoolID  int16
}

// NewWriter creates a new compact protocol writer.
func NewWriter() *Writer {
	return &Writer{
		buf: make([]byte, 0, 64),
	}
}

// Bytes returns the encoded bytes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Reset clears the buffer and all protocol state, keeping capacity.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.err = nil
	w.fieldID = 0
	w.stack = w.stack[:0]
	w.pendingBoolSet = false
	w.pendingBoolID = 0
}

// Err returns the first error encountered, if any.
func (w *Writer) Err() error {
	return w.err
}

// WriteTo writes the encoded bytes to dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	n, err := dst.Write(w.buf)
	return int64(n), err
}

func (w *Writer) writeRaw(b byte) {
	w.buf = append(w.buf, b)
}

func (w *Writer) writeUvarint(v uint64) {
	w.buf = AppendUvarint(w.buf, v)
}

// ===== STRUCTURE =====

// WriteStructBegin enters a struct, pushing the field id cursor.
func (w *Writer) WriteStructBegin() {
	w.stack = append(w.stack, w.fieldID)
	w.fieldID = 0
}

// WriteStructKey writes a field header. Passing TypeStop ends the struct and
// restores the outer cursor.
//
// For bool fields nothing is written yet: the header carries the value, so
// it is emitted by the WriteBool call that must follow.
func (w *Writer) WriteStructKey(t CompactType, fieldID int16) {
	switch t {
	case TypeStop:
		if w.pendingBoolSet {
			w.fail(ErrPendingBool)
			w.pendingBoolSet = false
		}
		w.writeRaw(0)
		if n := len(w.stack); n > 0 {
			w.fieldID = w.stack[n-1]
			w.stack = w.stack[:n-1]
		} else {
			w.fieldID = 0
		}
	case TypeBooleanTrue, TypeBool:
		if w.pendingBoolSet {
			w.fail(ErrPendingBool)
		}
		w.pendingBoolSet = true
		w.pendingBoolID = fieldID
	default:
		if w.pendingBoolSet {
			w.fail(ErrPendingBool)
			w.pendingBoolSet = false
		}
		w.writeFieldHeader(t, fieldID)
	}
}

// writeFieldHeader uses the one-byte delta form when the id moves forward
// by 1..15, otherwise the type byte followed by the absolute id.
func (w *Writer) writeFieldHeader(t CompactType, fieldID int16) {
	delta := int(fieldID) - int(w.fieldID)
	if delta > 0 && delta <= 15 {
		w.writeRaw(byte(delta)<<4 | byte(t))
	} else {
		w.writeRaw(byte(t))
		w.WriteI16(fieldID)
	}
	w.fieldID = fieldID
}

// WriteListHeader writes a list or set header. Negative lengths are treated
// as zero.
func (w *Writer) WriteListHeader(t CompactType, length int) {
	length = max(0, length)
	if length < 15 {
		w.writeRaw(byte(length)<<4 | byte(t))
		return
	}
	w.writeRaw(0xf0 | byte(t))
	w.writeUvarint(uint64(length))
}

// WriteMapHeader writes a map header. An empty map is a single zero byte
// with no type byte.
func (w *Writer) WriteMapHeader(mkey byte, length int) {
	if length <= 0 {
		w.writeRaw(0)
		return
	}
	w.writeUvarint(uint64(length))
	w.writeRaw(mkey)
}

// ===== VALUES =====

// WriteBool completes a pending bool field header, or writes a single value
// byte inside collections.
func (w *Writer) WriteBool(v bool) {
	if w.pendingBoolSet {
		t := TypeBool
		if v {
			t = TypeBooleanTrue
		}
		w.pendingBoolSet = false
		w.writeFieldHeader(t, w.pendingBoolID)
		return
	}
	if v {
		w.writeRaw(1)
	} else {
		w.writeRaw(0)
	}
}

// WriteI8 writes one raw byte.
func (w *Writer) WriteI8(v int8) {
	w.writeRaw(byte(v))
}

// WriteI16 writes a zigzag varint.
func (w *Writer) WriteI16(v int16) {
	w.writeUvarint(uint64(EncodeZigZag32(int32(v))))
}

// WriteI32 writes a zigzag varint.
func (w *Writer) WriteI32(v int32) {
	w.writeUvarint(uint64(EncodeZigZag32(v)))
}

// WriteI64 writes a 64-bit zigzag varint.
func (w *Writer) WriteI64(v int64) {
	w.writeUvarint(EncodeZigZag64(v))
}

// WriteBinary writes a varint length followed by the bytes.
func (w *Writer) WriteBinary(v []byte) {
	w.writeUvarint(uint64(len(v)))
	w.buf = append(w.buf, v...)
}

// WriteString writes s as UTF-8 binary.
func (w *Writer) WriteString(s string) {
	w.writeUvarint(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}
