package dynamic

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/anirudhraja/thriftlite/compiler"
	"github.com/anirudhraja/thriftlite/schema"
	"github.com/anirudhraja/thriftlite/wire"
)

// Encode encodes data as the named struct.
//
// Fields are written in declaration order. Keys that name no field are
// ignored. Absent fields are written only when they are required or carry
// a default, matching generated writers.
func (c *Codec) Encode(data map[string]any, structName string) ([]byte, error) {
	st, err := c.lookup(structName)
	if err != nil {
		return nil, err
	}
	w := wire.NewWriter()
	if err := c.EncodeTo(w, data, st); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeTo writes one struct to w.
func (c *Codec) EncodeTo(w *wire.Writer, data map[string]any, st *compiler.Struct) error {
	if err := c.writeStruct(w, data, st); err != nil {
		return err
	}
	return w.Err()
}

func (c *Codec) writeStruct(w *wire.Writer, data map[string]any, st *compiler.Struct) error {
	w.WriteStructBegin()
	for _, f := range st.Fields {
		v, ok := data[f.Name]
		if !ok || v == nil {
			if v, ok = c.initial(f); !ok {
				continue
			}
		}
		w.WriteStructKey(f.Mapping.Wire, f.ID)
		if err := c.writeValue(w, f.Mapping, v); err != nil {
			return wire.WrapField(err, f.Name)
		}
	}
	w.WriteStructKey(wire.TypeStop, 0)
	return nil
}

func (c *Codec) writeValue(w *wire.Writer, m *compiler.Mapping, v any) error {
	switch m.Kind {
	case compiler.KindPrimitive:
		return writePrimitive(w, m.Primitive, v)

	case compiler.KindEnum:
		n, err := c.enumNumber(m.Ref, v)
		if err != nil {
			return err
		}
		w.WriteI32(n)
		return nil

	case compiler.KindStruct:
		st, err := c.lookup(m.Ref)
		if err != nil {
			return err
		}
		fields, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("expected map[string]any for %s, got %T", m.Ref, v)
		}
		return c.writeStruct(w, fields, st)

	case compiler.KindList, compiler.KindSet:
		list, err := toSlice(v)
		if err != nil {
			return err
		}
		if m.Kind == compiler.KindSet {
			if list, err = c.dedupe(m.Elem, list); err != nil {
				return err
			}
		}
		w.WriteListHeader(m.Elem.Wire, len(list))
		for i, e := range list {
			if err := c.writeValue(w, m.Elem, e); err != nil {
				return wire.WrapField(err, strconv.Itoa(i))
			}
		}
		return nil

	case compiler.KindMap:
		entries, err := toEntries(v)
		if err != nil {
			return err
		}
		w.WriteMapHeader(m.MapKey, len(entries))
		for _, e := range entries {
			name := fmt.Sprint(e.key)
			if err := c.writeValue(w, m.Key, e.key); err != nil {
				return wire.WrapField(err, name)
			}
			if err := c.writeValue(w, m.Value, e.value); err != nil {
				return wire.WrapField(err, name)
			}
		}
		return nil
	}
	return fmt.Errorf("unsupported kind %s", m.Kind)
}

func writePrimitive(w *wire.Writer, p schema.Primitive, v any) error {
	switch p {
	case schema.TypeI8, schema.TypeI16, schema.TypeI32, schema.TypeI64:
		bits, _ := strconv.Atoi(string(p[1:]))
		n, err := coerceToIntN(v, bits)
		if err != nil {
			return err
		}
		switch p {
		case schema.TypeI8:
			w.WriteI8(int8(n))
		case schema.TypeI16:
			w.WriteI16(int16(n))
		case schema.TypeI32:
			w.WriteI32(int32(n))
		default:
			w.WriteI64(n)
		}
	case schema.TypeDouble:
		f, err := coerceToFloat64(v)
		if err != nil {
			return err
		}
		w.WriteDouble(f)
	case schema.TypeBool:
		b, err := coerceToBool(v)
		if err != nil {
			return err
		}
		w.WriteBool(b)
	case schema.TypeBinary:
		b, err := coerceToBytes(v)
		if err != nil {
			return err
		}
		w.WriteBinary(b)
	case schema.TypeUUID:
		u, err := coerceToUUID(v)
		if err != nil {
			return err
		}
		w.WriteUUID(u)
	default:
		s, err := coerceToString(v)
		if err != nil {
			return err
		}
		w.WriteString(s)
	}
	return nil
}

// enumNumber accepts a member symbol or any integer-like value.
func (c *Codec) enumNumber(name string, v any) (int32, error) {
	if s, ok := v.(string); ok {
		if e := c.unit.Enum(name); e != nil {
			if n, ok := e.Value(s); ok {
				return n, nil
			}
		}
	}
	n, err := coerceToIntN(v, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %v: %w", name, v, err)
	}
	return int32(n), nil
}

// dedupe drops set elements that coerce to an earlier element's value.
func (c *Codec) dedupe(elem *compiler.Mapping, list []any) ([]any, error) {
	out := make([]any, 0, len(list))
	seen := make(map[string]bool, len(list))
	for i, v := range list {
		w := wire.NewWriter()
		if err := c.writeValue(w, elem, v); err != nil {
			return nil, wire.WrapField(err, strconv.Itoa(i))
		}
		k := string(w.Bytes())
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out, nil
}

func sortEntries(entries []entry) {
	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Compare(fmt.Sprint(a.key), fmt.Sprint(b.key))
	})
}
