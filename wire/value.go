package wire

// ===== SCHEMA-LESS DECODING =====

// StructValue is a struct decoded without a schema, keyed by field id.
type StructValue map[int16]any

// MapEntry is one decoded map entry. Maps are returned as entry slices
// because schema-less keys (binary, structs) are not always comparable.
type MapEntry struct {
	Key   any
	Value any
}

// ReadStructValue decodes a whole struct without a schema.
func ReadStructValue(r *Reader) (StructValue, error) {
	v := readValue(r, TypeStruct)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return v.(StructValue), nil
}

// ReadValue decodes one value of type t without a schema. Binary values come
// back as []byte since strings and binary share a wire type; lists and sets
// as []any; maps as []MapEntry; structs as StructValue.
func ReadValue(r *Reader, t CompactType) (any, error) {
	v := readValue(r, t)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return v, nil
}

func readValue(r *Reader, t CompactType) any {
	switch t {
	case TypeBooleanTrue, TypeBool:
		return r.ReadBool()
	case TypeByte:
		return r.ReadI8()
	case TypeI16:
		return r.ReadI16()
	case TypeI32:
		return r.ReadI32()
	case TypeI64:
		return r.ReadI64()
	case TypeDouble:
		return r.ReadDouble()
	case TypeBinary:
		return r.ReadBinary()
	case TypeUUID:
		return r.ReadUUID()
	case TypeList, TypeSet:
		et, n := r.ReadListHeader()
		out := make([]any, 0, min(n, 1024))
		for i := 0; i < n && !r.stalled(); i++ {
			out = append(out, readValue(r, et))
		}
		return out
	case TypeMap:
		mkey, n := r.ReadMapHeader()
		kt, vt := UnpackMapKey(mkey)
		out := make([]MapEntry, 0, min(n, 1024))
		for i := 0; i < n && !r.stalled(); i++ {
			k := readValue(r, kt)
			out = append(out, MapEntry{Key: k, Value: readValue(r, vt)})
		}
		return out
	case TypeStruct:
		out := make(StructValue)
		r.ReadStructBegin()
		for {
			key := r.ReadStructKey()
			if key == Stop {
				return out
			}
			out[key.FieldID()] = readValue(r, key.Type())
		}
	default:
		r.fail(&FormatError{Type: t, Detail: "cannot decode"})
		return nil
	}
}
