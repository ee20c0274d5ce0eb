package thriftlite

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/anirudhraja/thriftlite/compiler"
	"github.com/anirudhraja/thriftlite/dynamic"
	"github.com/anirudhraja/thriftlite/gen"
	"github.com/anirudhraja/thriftlite/registry"
	"github.com/anirudhraja/thriftlite/wire"
)

// ===== SCHEMA-AWARE API =====

// Thriftlite provides schema-aware compact protocol operations without
// generated code.
type Thriftlite struct {
	registry *registry.Registry
	compile  compiler.Options
	decode   dynamic.Options

	unit *compiler.Unit // compiled lazily, reset on every load
}

// New creates a new Thriftlite instance
func New(opts ...registry.Option) *Thriftlite {
	return &Thriftlite{
		registry: registry.NewRegistry(opts...),
		compile:  compiler.DefaultOptions(),
	}
}

// SetCompilerOptions replaces the options used to compile loaded schemas.
func (t *Thriftlite) SetCompilerOptions(opts compiler.Options) {
	t.compile = opts
	t.unit = nil
}

// SetDecodeOptions replaces the options used by Parse and Unmarshal.
func (t *Thriftlite) SetDecodeOptions(opts dynamic.Options) {
	t.decode = opts
}

// LoadSchema loads a .thrift file or every .thrift file under a directory.
func (t *Thriftlite) LoadSchema(path string) error {
	t.unit = nil
	return t.registry.LoadSchema(path)
}

// LoadProto imports a .proto file and its imports.
func (t *Thriftlite) LoadProto(path string) error {
	t.unit = nil
	return t.registry.LoadProto(path)
}

// LoadSource loads schema source held in memory.
func (t *Thriftlite) LoadSource(name, src string) error {
	t.unit = nil
	return t.registry.LoadSource(name, src)
}

// Unit returns the compiled form of everything loaded so far.
func (t *Thriftlite) Unit() (*compiler.Unit, error) {
	if t.unit != nil {
		return t.unit, nil
	}
	unit, err := t.registry.Compile(t.compile)
	if err != nil {
		return nil, err
	}
	t.unit = unit
	return unit, nil
}

func (t *Thriftlite) codec() (*dynamic.Codec, error) {
	unit, err := t.Unit()
	if err != nil {
		return nil, err
	}
	return dynamic.New(unit, t.decode), nil
}

// Parse decodes compact protocol bytes as the named struct.
func (t *Thriftlite) Parse(data []byte, structName string) (map[string]any, error) {
	c, err := t.codec()
	if err != nil {
		return nil, err
	}
	return c.Decode(data, structName)
}

// ParseRaw decodes a struct without any schema, keyed by field id.
func (t *Thriftlite) ParseRaw(data []byte) (wire.StructValue, error) {
	return wire.ReadStructValue(wire.NewBufferReader(data))
}

// Marshal encodes a map to compact protocol bytes using schema information
func (t *Thriftlite) Marshal(data map[string]any, structName string) ([]byte, error) {
	c, err := t.codec()
	if err != nil {
		return nil, err
	}
	return c.Encode(data, structName)
}

// Generate renders everything loaded so far as Go source.
func (t *Thriftlite) Generate(opts gen.Options) ([]byte, error) {
	unit, err := t.Unit()
	if err != nil {
		return nil, err
	}
	return gen.Generate(unit, opts)
}

// Unmarshal decodes compact protocol bytes into v. Generated structs decode
// themselves; other struct pointers are filled by reflection from a dynamic
// decode of the struct named like v's type.
func (t *Thriftlite) Unmarshal(data []byte, v any) error {
	if sr, ok := v.(wire.StructReader); ok {
		return sr.Read(wire.NewBufferReader(data))
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("unmarshal target must be a pointer to struct")
	}

	structName := rv.Elem().Type().Name()
	result, err := t.Parse(data, structName)
	if err != nil {
		return err
	}
	return mapToStruct(result, rv.Elem())
}

// mapToStruct maps parsed result to struct fields. A `thrift:"name"` tag
// selects the schema field; otherwise names match ignoring case and
// underscores.
func mapToStruct(data map[string]any, rv reflect.Value) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		fieldValue := rv.Field(i)

		if !fieldValue.CanSet() {
			continue
		}

		value, ok := lookupField(data, field)
		if !ok {
			continue
		}
		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}
	return nil
}

func lookupField(data map[string]any, field reflect.StructField) (any, bool) {
	if tag := field.Tag.Get("thrift"); tag != "" {
		v, ok := data[tag]
		return v, ok
	}
	for k, v := range data {
		if strings.EqualFold(strings.ReplaceAll(k, "_", ""), field.Name) {
			return v, true
		}
	}
	return nil, false
}

// setFieldValue sets a struct field with type conversion
func setFieldValue(fieldValue reflect.Value, value any) error {
	if value == nil {
		return nil
	}

	sourceValue := reflect.ValueOf(value)
	target := fieldValue.Type()
	switch {
	case sourceValue.Type().AssignableTo(target):
		fieldValue.Set(sourceValue)
		return nil

	case sourceValue.Type().ConvertibleTo(target) && !numberToString(sourceValue.Kind(), target.Kind()):
		fieldValue.Set(sourceValue.Convert(target))
		return nil

	case target.Kind() == reflect.Ptr:
		elem := reflect.New(target.Elem())
		if err := setFieldValue(elem.Elem(), value); err != nil {
			return err
		}
		fieldValue.Set(elem)
		return nil

	case target.Kind() == reflect.Slice && sourceValue.Kind() == reflect.Slice:
		out := reflect.MakeSlice(target, sourceValue.Len(), sourceValue.Len())
		for i := 0; i < sourceValue.Len(); i++ {
			if err := setFieldValue(out.Index(i), sourceValue.Index(i).Interface()); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		fieldValue.Set(out)
		return nil

	case target.Kind() == reflect.Struct:
		if m, ok := value.(map[string]any); ok {
			return mapToStruct(m, fieldValue)
		}
	}

	return fmt.Errorf("cannot convert %T to %s", value, target)
}

// numberToString reports a conversion Go allows but that would turn an
// integer into a one-rune string.
func numberToString(src, dst reflect.Kind) bool {
	return dst == reflect.String && src >= reflect.Int && src <= reflect.Uintptr
}

// ===== REGISTRY ACCESS =====

func (t *Thriftlite) GetRegistry() *registry.Registry { return t.registry }
func (t *Thriftlite) ListStructs() []string           { return t.registry.ListStructs() }
func (t *Thriftlite) ListEnums() []string             { return t.registry.ListEnums() }
