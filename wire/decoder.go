package wire

import (
	"fmt"
	"unicode/utf8"
)

// Reader decodes the compact protocol from a Source.
//
// Errors are sticky: the first failure is kept and returned by Err, and
// every later read returns a zero value. Because a zero header byte is the
// stop marker, a dispatch loop over ReadStructKey always terminates after a
// failure without checking errors on every call.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	src Source
	buf *BufferSource // set when src is a fixed buffer
	err error

	fieldID    int16
	stack      []int16
	pendingSet bool
	pending    bool
}

// NewReader creates a reader over src.
func NewReader(src Source) *Reader {
	r := &Reader{src: src}
	if b, ok := src.(*BufferSource); ok {
		r.buf = b
	}
	return r
}

// NewBufferReader creates a reader over a fixed buffer. Reads past the end
// yield zeros rather than errors.
func NewBufferReader(data []byte) *Reader {
	return NewReader(NewBufferSource(data))
}

// NewPollReader creates a reader that polls more for input and fails with
// ErrOutOfData when it runs dry.
func NewPollReader(more MoreFunc) *Reader {
	return NewReader(NewPollSource(more))
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error {
	return r.err
}

// Depth returns the current struct nesting depth.
func (r *Reader) Depth() int {
	return len(r.stack)
}

// stalled reports whether reading cannot make progress: an error was
// recorded, or a fixed buffer has been read past its end. Collection loops
// use it so a corrupt length cannot spin over an exhausted buffer.
func (r *Reader) stalled() bool {
	return r.err != nil || (r.buf != nil && r.buf.pos > len(r.buf.buf))
}

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) next() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	b, err := r.src.ReadByte()
	if err != nil {
		r.fail(err)
		return 0, err
	}
	return b, nil
}

func (r *Reader) readRaw() byte {
	b, _ := r.next()
	return b
}

func (r *Reader) readN(n int) []byte {
	if r.err != nil {
		return nil
	}
	b, err := r.src.ReadBytes(n)
	if err != nil {
		r.fail(err)
		return nil
	}
	return b
}

func (r *Reader) skipN(n int) {
	if r.err != nil {
		return
	}
	if err := r.src.SkipBytes(n); err != nil {
		r.fail(err)
	}
}

func (r *Reader) readUvarint32() uint32 {
	v, _ := ReadUvarint32(r.next)
	return v
}

func (r *Reader) skipVarint() {
	for r.readRaw()&0x80 != 0 {
	}
}

// ===== STRUCTURE =====

// ReadStructBegin enters a struct: the current field id cursor is pushed and
// reset to 0 so deltas inside the struct start afresh.
func (r *Reader) ReadStructBegin() {
	r.stack = append(r.stack, r.fieldID)
	r.fieldID = 0
}

// ReadStructKey reads the next field header and returns its dispatch key.
// A zero byte ends the struct: the outer cursor is restored and Stop is
// returned.
//
// Booleans are carried in the header itself. A true header is reported with
// the generic bool type so callers see one key per bool field; the value is
// kept for the following ReadBool.
func (r *Reader) ReadStructKey() Key {
	b := r.readRaw()
	if b == 0 {
		r.popFieldID()
		return Stop
	}

	t := CompactType(b & 0x0f)
	if modifier := b >> 4; modifier == 0 {
		r.fieldID = r.ReadI16()
	} else {
		r.fieldID += int16(modifier)
	}

	switch t {
	case TypeBooleanTrue:
		r.pendingSet, r.pending = true, true
		return MakeKey(r.fieldID, TypeBool)
	case TypeBool:
		r.pendingSet, r.pending = true, false
	}
	return MakeKey(r.fieldID, t)
}

func (r *Reader) popFieldID() {
	if n := len(r.stack); n > 0 {
		r.fieldID = r.stack[n-1]
		r.stack = r.stack[:n-1]
		return
	}
	r.fieldID = 0
}

// readStructKeyTypeSkip reads a field header while skipping a struct. It
// does not touch the field id stack; only the type matters.
func (r *Reader) readStructKeyTypeSkip() CompactType {
	b := r.readRaw()
	if b == 0 {
		return TypeStop
	}
	t := CompactType(b & 0x0f)
	if b>>4 == 0 {
		r.skipVarint()
	}
	switch t {
	case TypeBooleanTrue:
		r.pendingSet, r.pending = true, true
	case TypeBool:
		r.pendingSet, r.pending = true, false
	}
	return t
}

// ReadListHeader reads a list or set header. Lengths up to 14 live in the
// high nibble; 15 means the real length follows as a varint.
func (r *Reader) ReadListHeader() (CompactType, int) {
	head := r.readRaw()
	length := int(head >> 4)
	if length == 15 {
		length = max(0, int(int32(r.readUvarint32())))
	}
	return CompactType(head & 0x0f), length
}

// ReadMapHeader reads a map header and returns the packed key/value type
// byte and the length. An empty map carries no type byte.
func (r *Reader) ReadMapHeader() (byte, int) {
	length := int(int32(r.readUvarint32()))
	if length <= 0 {
		return 0, 0
	}
	return r.readRaw(), length
}

// ===== VALUES =====

// ReadBool returns the bool stashed by the last field header, or reads one
// value byte when there is none (list, set and map elements).
func (r *Reader) ReadBool() bool {
	if r.pendingSet {
		v := r.pending
		r.pendingSet, r.pending = false, false
		return v
	}
	return r.readRaw() == 1
}

// ReadI8 reads a single raw byte.
func (r *Reader) ReadI8() int8 {
	return int8(r.readRaw())
}

// ReadI16 reads a zigzag varint. The wire shares the 32-bit path with i32.
func (r *Reader) ReadI16() int16 {
	v, _ := ReadZigZag32(r.next)
	return int16(v)
}

// ReadI32 reads a 32-bit zigzag varint.
func (r *Reader) ReadI32() int32 {
	v, _ := ReadZigZag32(r.next)
	return v
}

// ReadI64 reads a 64-bit zigzag varint.
func (r *Reader) ReadI64() int64 {
	v, _ := ReadZigZag64(r.next)
	return v
}

// ReadBinary reads a varint length followed by that many bytes. The result
// is a copy and does not alias the source.
func (r *Reader) ReadBinary() []byte {
	size := int(int32(r.readUvarint32()))
	b := r.readN(size)
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// ReadString reads a binary value as UTF-8 text. Invalid sequences are
// replaced rather than rejected.
func (r *Reader) ReadString() string {
	b := r.readN(int(int32(r.readUvarint32())))
	if utf8.Valid(b) {
		return string(b)
	}
	return string([]rune(string(b)))
}

// ===== SKIPPING =====

// Skip consumes one value of type t without decoding it. Nested collections
// and structs are walked using their own headers, so unknown fields can be
// discarded without any schema.
func (r *Reader) Skip(t CompactType) {
	if r.err != nil {
		return
	}
	switch t {
	case TypeStop:
	case TypeBooleanTrue, TypeBool:
		if r.pendingSet {
			r.pendingSet, r.pending = false, false
			return
		}
		r.readRaw()
	case TypeByte:
		r.readRaw()
	case TypeI16, TypeI32, TypeI64:
		r.skipVarint()
	case TypeDouble:
		r.skipN(8)
	case TypeBinary:
		r.skipN(int(int32(r.readUvarint32())))
	case TypeList, TypeSet:
		et, n := r.ReadListHeader()
		r.SkipMany(n, et, TypeStop)
	case TypeMap:
		mkey, n := r.ReadMapHeader()
		kt, vt := UnpackMapKey(mkey)
		r.skipEntries(n, kt, vt)
	case TypeStruct:
		for !r.stalled() {
			ft := r.readStructKeyTypeSkip()
			if ft == TypeStop {
				return
			}
			r.Skip(ft)
		}
	case TypeUUID:
		r.skipN(16)
	default:
		r.fail(&FormatError{Type: t, Detail: fmt.Sprintf("cannot skip %s", t)})
	}
}

// SkipMany skips count repetitions of t followed by extra. Pass TypeStop as
// extra for lists; maps pass the value type. A non-empty collection of
// TypeStop elements is a format error: nothing would be consumed.
func (r *Reader) SkipMany(count int, t, extra CompactType) {
	if count > 0 && t == TypeStop {
		r.fail(&FormatError{Type: t, Detail: fmt.Sprintf("%d elements without a type", count)})
		return
	}
	for i := 0; i < count && !r.stalled(); i++ {
		r.Skip(t)
		r.Skip(extra)
	}
}

// skipEntries skips count map entries. Both element types must be set.
func (r *Reader) skipEntries(count int, kt, vt CompactType) {
	if count > 0 && vt == TypeStop {
		r.fail(&FormatError{Type: vt, Detail: fmt.Sprintf("%d map values without a type", count)})
		return
	}
	r.SkipMany(count, kt, vt)
}
