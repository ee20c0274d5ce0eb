package wire

import "fmt"

// ===== COMPACT PROTOCOL WIRE TYPES =====

// CompactType is the 4-bit type tag carried by struct field headers and
// collection headers. The numeric values are fixed by the wire format.
type CompactType uint8

const (
	TypeStop        CompactType = 0  // end of struct
	TypeBooleanTrue CompactType = 1  // true, packed into a struct field header
	TypeBool        CompactType = 2  // false in a field header, generic bool elsewhere
	TypeByte        CompactType = 3  // i8, one raw byte
	TypeI16         CompactType = 4  // zigzag varint
	TypeI32         CompactType = 5  // zigzag varint
	TypeI64         CompactType = 6  // zigzag varint
	TypeDouble      CompactType = 7  // 8 bytes, little-endian
	TypeBinary      CompactType = 8  // varint length + bytes
	TypeList        CompactType = 9  // list header + elements
	TypeSet         CompactType = 10 // same encoding as list
	TypeMap         CompactType = 11 // map header + key/value pairs
	TypeStruct      CompactType = 12 // field headers until stop
	TypeUUID        CompactType = 13 // always 16 bytes
)

var typeNames = [...]string{
	TypeStop:        "stop",
	TypeBooleanTrue: "bool(true)",
	TypeBool:        "bool",
	TypeByte:        "byte",
	TypeI16:         "i16",
	TypeI32:         "i32",
	TypeI64:         "i64",
	TypeDouble:      "double",
	TypeBinary:      "binary",
	TypeList:        "list",
	TypeSet:         "set",
	TypeMap:         "map",
	TypeStruct:      "struct",
	TypeUUID:        "uuid",
}

func (t CompactType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("CompactType(%d)", uint8(t))
}

// Valid reports whether t is a known tag.
func (t CompactType) Valid() bool {
	return t <= TypeUUID
}

// Key combines a field id and a wire type into a single dispatch value:
// (fieldID << 8) | type. Key 0 is the stop sentinel.
type Key int32

// Stop is the key returned when a struct ends.
const Stop Key = 0

// MakeKey creates a dispatch key from a field id and wire type.
func MakeKey(fieldID int16, t CompactType) Key {
	return Key(int32(fieldID)<<8 | int32(t))
}

// FieldID returns the field id portion of the key.
func (k Key) FieldID() int16 {
	return int16(k >> 8)
}

// Type returns the wire type portion of the key.
func (k Key) Type() CompactType {
	return CompactType(k & 0xff)
}

// PackMapKey packs key and value element types into the single map header
// byte: (key << 4) | value.
func PackMapKey(key, value CompactType) byte {
	return byte(key)<<4 | byte(value)&0x0f
}

// UnpackMapKey splits a packed map header byte.
func UnpackMapKey(b byte) (key, value CompactType) {
	return CompactType(b >> 4), CompactType(b & 0x0f)
}
