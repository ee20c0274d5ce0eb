// Package dynamic encodes and decodes compact protocol structs without
// generated code, interpreting compiled dispatch plans at runtime.
//
// Decoded structs are map[string]any keyed by schema field name. Values use
// the same Go types as generated code (int8 through int64, float64, bool,
// string, []byte, uuid.UUID); enums are int32, or their symbol name with
// Options.EnumNames; lists and sets are []any; maps are map[any]any.
package dynamic

import (
	"fmt"

	"github.com/anirudhraja/thriftlite/compiler"
	"github.com/anirudhraja/thriftlite/schema"
	"github.com/anirudhraja/thriftlite/wire"
)

// Options controls dynamic decoding.
type Options struct {
	// PopulateDefaults fills in fields absent from the payload that have a
	// default value or are required, as a generated constructor would.
	PopulateDefaults bool
	// EnumNames decodes known enum values as their symbol name.
	EnumNames bool
}

// Codec reads and writes structs of one compiled unit.
type Codec struct {
	unit *compiler.Unit
	opts Options
}

// New creates a codec for unit.
func New(unit *compiler.Unit, opts Options) *Codec {
	return &Codec{unit: unit, opts: opts}
}

func (c *Codec) lookup(name string) (*compiler.Struct, error) {
	st := c.unit.Struct(name)
	if st == nil {
		return nil, fmt.Errorf("struct not found: %s", name)
	}
	return st, nil
}

// Decode decodes data as the named struct.
func (c *Codec) Decode(data []byte, structName string) (map[string]any, error) {
	st, err := c.lookup(structName)
	if err != nil {
		return nil, err
	}
	return c.DecodeFrom(wire.NewBufferReader(data), st)
}

// DecodeFrom decodes one struct from r.
func (c *Codec) DecodeFrom(r *wire.Reader, st *compiler.Struct) (map[string]any, error) {
	out, err := c.readStruct(r, st)
	if err != nil {
		return nil, err
	}
	return out, r.Err()
}

func (c *Codec) readStruct(r *wire.Reader, st *compiler.Struct) (map[string]any, error) {
	out := make(map[string]any, len(st.Fields))
	r.ReadStructBegin()
	for {
		key := r.ReadStructKey()
		if key == wire.Stop {
			break
		}
		f := st.FieldByKey(key)
		if f == nil {
			r.Skip(key.Type())
			continue
		}
		v, err := c.readValue(r, f.Mapping)
		if err == nil {
			err = r.Err()
		}
		if err != nil {
			return nil, wire.WrapField(err, f.Name)
		}
		out[f.Name] = v
	}

	if c.opts.PopulateDefaults {
		for _, f := range st.Fields {
			if _, ok := out[f.Name]; ok {
				continue
			}
			if v, ok := c.initial(f); ok {
				out[f.Name] = v
			}
		}
	}
	return out, nil
}

func (c *Codec) readValue(r *wire.Reader, m *compiler.Mapping) (any, error) {
	switch m.Kind {
	case compiler.KindPrimitive:
		return readPrimitive(r, m.Primitive), nil

	case compiler.KindEnum:
		return c.enumValue(m.Ref, r.ReadI32()), nil

	case compiler.KindStruct:
		st, err := c.lookup(m.Ref)
		if err != nil {
			return nil, err
		}
		return c.readStruct(r, st)

	case compiler.KindList, compiler.KindSet:
		var first error
		list := wire.ReadList(r, m.Elem.Wire, func() any {
			v, err := c.readValue(r, m.Elem)
			if err != nil && first == nil {
				first = err
			}
			return v
		})
		if first != nil {
			return nil, first
		}
		out := make([]any, 0, len(list))
		seen := make(map[any]bool)
		for _, v := range list {
			if m.Kind == compiler.KindSet {
				if seen[v] {
					continue
				}
				seen[v] = true
			}
			out = append(out, v)
		}
		return out, nil

	case compiler.KindMap:
		var first error
		keep := func(v any, err error) any {
			if err != nil && first == nil {
				first = err
			}
			return v
		}
		out := wire.ReadMap(r, m.MapKey,
			func() any { return keep(c.readValue(r, m.Key)) },
			func() any { return keep(c.readValue(r, m.Value)) })
		if first != nil {
			return nil, first
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported kind %s", m.Kind)
}

func readPrimitive(r *wire.Reader, p schema.Primitive) any {
	switch p {
	case schema.TypeI8:
		return r.ReadI8()
	case schema.TypeI16:
		return r.ReadI16()
	case schema.TypeI32:
		return r.ReadI32()
	case schema.TypeI64:
		return r.ReadI64()
	case schema.TypeDouble:
		return r.ReadDouble()
	case schema.TypeBool:
		return r.ReadBool()
	case schema.TypeBinary:
		return r.ReadBinary()
	case schema.TypeUUID:
		return r.ReadUUID()
	default:
		return r.ReadString()
	}
}

func (c *Codec) enumValue(name string, v int32) any {
	if !c.opts.EnumNames {
		return v
	}
	if e := c.unit.Enum(name); e != nil {
		if sym, ok := e.Symbol(v); ok {
			return sym
		}
	}
	return v
}

// initial returns the value a field holds before any payload is applied:
// its default, or a zero value when it is required.
func (c *Codec) initial(f *compiler.Field) (any, bool) {
	if f.Default != nil {
		if f.Mapping.Kind == compiler.KindEnum {
			return c.enumValue(f.Mapping.Ref, f.Default.(int32)), true
		}
		return f.Default, true
	}
	if !f.Required {
		return nil, false
	}
	return c.zero(f.Mapping), true
}

func (c *Codec) zero(m *compiler.Mapping) any {
	switch m.Kind {
	case compiler.KindEnum:
		return c.enumValue(m.Ref, m.EnumDefault)
	case compiler.KindStruct:
		return map[string]any{}
	case compiler.KindList, compiler.KindSet:
		return []any{}
	case compiler.KindMap:
		return map[any]any{}
	}
	return zeroPrimitive(m.Primitive)
}
