package compiler

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anirudhraja/thriftlite/parser"
	"github.com/anirudhraja/thriftlite/schema"
	"github.com/anirudhraja/thriftlite/wire"
)

const sampleSchema = `
namespace go fortest

enum Color { RED = 1; GREEN = 2; BLUE = 4 }

struct ForTest {
  1: uuid foo;
  2: required list<bool> bar;
  4: i32 zing = 123;
  5: optional map<string, set<Color>> tags;
  6: Color color = 2;
  7: Empty nothing;
  8: required Other other;
}

union Other { 1: string name; 2: i64 id }

struct Empty {}
`

func mustCompile(t *testing.T, src string, opts Options) *Unit {
	t.Helper()
	doc, err := parser.Parse(src)
	require.NoError(t, err)
	unit, err := Compile(doc, opts)
	require.NoError(t, err)
	return unit
}

func TestCompileUnit(t *testing.T) {
	unit := mustCompile(t, sampleSchema, DefaultOptions())

	assert.Equal(t, []string{"Color", "ForTest", "Other", "Empty"}, unit.Order)
	require.Len(t, unit.Enums, 1)
	require.Len(t, unit.Structs, 3)

	st := unit.Struct("ForTest")
	require.NotNil(t, st)
	require.Len(t, st.Fields, 7)

	tests := []struct {
		name     string
		key      wire.Key
		kind     Kind
		optional bool
		pointer  bool
		guarded  bool
	}{
		{"foo", 1<<8 | 13, KindPrimitive, true, true, true},
		{"bar", 2<<8 | 9, KindList, false, false, false},
		{"zing", 4<<8 | 5, KindPrimitive, false, false, false},
		{"tags", 5<<8 | 11, KindMap, true, false, true},
		{"color", 6<<8 | 5, KindEnum, false, false, false},
		{"nothing", 7<<8 | 12, KindStruct, true, false, true},
		{"other", 8<<8 | 12, KindStruct, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := st.FieldByName(tt.name)
			require.NotNil(t, f)
			assert.Equal(t, tt.key, f.Key)
			assert.Equal(t, tt.kind, f.Mapping.Kind)
			assert.Equal(t, tt.optional, f.Optional)
			assert.Equal(t, tt.pointer, f.Pointer())
			assert.Equal(t, tt.guarded, f.Guarded())
			assert.Same(t, f, st.FieldByKey(tt.key))
		})
	}

	assert.Equal(t, int32(123), st.FieldByName("zing").Default)
	assert.Equal(t, int32(2), st.FieldByName("color").Default)
	assert.Equal(t, int32(1), st.FieldByName("color").Mapping.EnumDefault)

	tags := st.FieldByName("tags").Mapping
	assert.Equal(t, byte(0x8a), tags.MapKey)
	assert.Equal(t, KindSet, tags.Value.Kind)
	assert.Equal(t, wire.TypeSet, tags.Value.Wire)
	assert.Equal(t, "map<string, set<Color>>", tags.String())

	assert.True(t, st.FieldByName("nothing").Mapping.ZeroInstance)
	assert.False(t, st.FieldByName("other").Mapping.ZeroInstance)

	empty := unit.Struct("Empty")
	assert.True(t, empty.SkipBody)
	assert.True(t, empty.ZeroInstance)

	assert.Equal(t, schema.KindUnion, unit.Struct("Other").Kind)
}

func TestCompileZeroInstanceDisabled(t *testing.T) {
	unit := mustCompile(t, sampleSchema, Options{})

	assert.False(t, unit.Struct("Empty").ZeroInstance)
	assert.True(t, unit.Struct("Empty").SkipBody)
	assert.False(t, unit.Struct("ForTest").FieldByName("nothing").Mapping.ZeroInstance)
}

func TestResolvePrimitives(t *testing.T) {
	c := New(schema.NewDocument(), DefaultOptions())

	tests := map[string]wire.CompactType{
		"i8":     wire.TypeByte,
		"byte":   wire.TypeByte,
		"i16":    wire.TypeI16,
		"i32":    wire.TypeI32,
		"i64":    wire.TypeI64,
		"double": wire.TypeDouble,
		"bool":   wire.TypeBool,
		"binary": wire.TypeBinary,
		"string": wire.TypeBinary,
		"uuid":   wire.TypeUUID,
	}
	for name, want := range tests {
		m, err := c.ResolveType(schema.Ref(name))
		require.NoError(t, err, name)
		assert.Equal(t, want, m.Wire, name)
		assert.Equal(t, KindPrimitive, m.Kind, name)
	}

	m, err := c.ResolveType(schema.Template("list", schema.Template("map", schema.Ref("i8"), schema.Ref("bool"))))
	require.NoError(t, err)
	assert.Equal(t, wire.TypeList, m.Wire)
	assert.Equal(t, byte(0x32), m.Elem.MapKey)
}

func TestEnumSymbols(t *testing.T) {
	unit := mustCompile(t, `enum Dup { A = 1, B = 1, C = 3 }`, DefaultOptions())
	e := unit.Enum("Dup")
	require.NotNil(t, e)

	sym, ok := e.Symbol(1)
	assert.True(t, ok)
	assert.Equal(t, "A", sym)

	_, ok = e.Symbol(2)
	assert.False(t, ok)

	v, ok := e.Value("C")
	assert.True(t, ok)
	assert.Equal(t, int32(3), v)
}

func TestDefaults(t *testing.T) {
	unit := mustCompile(t, `
enum Color { RED = 1, GREEN }
struct D {
  1: i8 a = -3
  2: double b = 2
  3: bool c = "true"
  4: bool d = 0
  5: binary e = "raw"
  6: uuid f = "01020304-0506-0708-0102-030405060708"
  7: Color g = "GREEN"
  8: i64 h = 9007199254740993
}`, DefaultOptions())

	st := unit.Struct("D")
	want := map[string]any{
		"a": int8(-3),
		"b": float64(2),
		"c": true,
		"d": false,
		"e": []byte("raw"),
		"f": uuid.UUID{1, 2, 3, 4, 5, 6, 7, 8, 1, 2, 3, 4, 5, 6, 7, 8},
		"g": int32(2),
		"h": int64(9007199254740993),
	}
	for name, v := range want {
		assert.Equal(t, v, st.FieldByName(name).Default, name)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		want   error
	}{
		{"unknown type", `struct A { 1: Missing m }`, ErrUnknownType},
		{"unknown nested type", `struct A { 1: list<Missing> m }`, ErrUnknownType},
		{"map arity", `struct A { 1: map<i32> m }`, ErrTemplateArity},
		{"list arity", `struct A { 1: list<i32, i32> m }`, ErrTemplateArity},
		{"bare template", `struct A { 1: list m }`, ErrTemplateArity},
		{"unsupported template", `struct A { 1: vector<i32> m }`, ErrUnknownType},
		{"reserved id", `struct A { 0: i32 m }`, ErrReservedFieldID},
		{"duplicate id", `struct A { 1: i32 m; 1: i32 n }`, ErrDuplicateFieldID},
		{"duplicate field name", `struct A { 1: i32 m; 2: i32 m }`, ErrDuplicateName},
		{"duplicate enum member", `enum E { X, X }`, ErrDuplicateName},
		{"empty enum", `enum E {} struct A { 1: E e }`, ErrEmptyEnum},
		{"int default out of range", `struct A { 1: i8 m = 300 }`, ErrInvalidDefault},
		{"string default on int", `struct A { 1: i32 m = "x" }`, ErrInvalidDefault},
		{"bad uuid default", `struct A { 1: uuid m = "nope" }`, ErrInvalidDefault},
		{"container default", `struct A { 1: list<i32> m = 1 }`, ErrInvalidDefault},
		{"struct default", `struct B {} struct A { 1: B m = 1 }`, ErrInvalidDefault},
		{"unknown enum symbol", `enum E { X } struct A { 1: E m = "Y" }`, ErrInvalidDefault},
		{"binary map key", `struct A { 1: map<binary, i32> m }`, ErrUnhashableKey},
		{"struct set element", `struct B {} struct A { 1: set<B> m }`, ErrUnhashableKey},
		{"list map key", `struct A { 1: map<list<i32>, i32> m }`, ErrUnhashableKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := parser.Parse(tt.schema)
			require.NoError(t, err)

			_, err = Compile(doc, DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			var se *SchemaError
			assert.True(t, errors.As(err, &se))
		})
	}
}

func TestSchemaErrorLocation(t *testing.T) {
	doc, err := parser.Parse(`struct A { 3: list<Missing> items }`)
	require.NoError(t, err)

	_, err = Compile(doc, DefaultOptions())
	require.Error(t, err)

	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "A.items", se.Expr)
	assert.Contains(t, err.Error(), "Missing")
}
