package gen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anirudhraja/thriftlite/compiler"
	"github.com/anirudhraja/thriftlite/parser"
)

const forTestSchema = `
namespace go example.fortest

enum Color {
  RED = 1;
  CRIMSON = 1;
  GREEN = 2;
}

struct ForTest {
  1: uuid foo;
  2: required list<bool> bar;
  4: i32 zing = 123;
  5: optional map<string, list<map<i8, bool>>> nested;
  6: Color color;
  7: required Color shade;
  8: Empty nothing;
  9: required Other other;
  10: binary blob;
  11: set<Color> palette;
  12: string read;
}

union Other {
  1: string name;
  2: i64 id = -9;
}

struct Empty {}
`

func generate(t *testing.T, src string, opts Options, copts compiler.Options) string {
	t.Helper()
	doc, err := parser.Parse(src)
	require.NoError(t, err)
	unit, err := compiler.Compile(doc, copts)
	require.NoError(t, err)
	out, err := Generate(unit, opts)
	require.NoError(t, err, "generated source:\n%s", out)
	return string(out)
}

func mustContain(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Errorf("output missing %q\n--- output ---\n%s", want, output)
	}
}

func mustNotContain(t *testing.T, output, unwanted string) {
	t.Helper()
	if strings.Contains(output, unwanted) {
		t.Errorf("output unexpectedly contains %q", unwanted)
	}
}

func TestGenerateHeader(t *testing.T) {
	opts := DefaultOptions()
	opts.Source = "fortest.thrift"
	output := generate(t, forTestSchema, opts, compiler.DefaultOptions())

	mustContain(t, output, "// Code generated by thriftlite. DO NOT EDIT.")
	mustContain(t, output, "// source: fortest.thrift")
	mustContain(t, output, "package fortest")
	mustContain(t, output, `"github.com/google/uuid"`)
	mustContain(t, output, `"github.com/anirudhraja/thriftlite/wire"`)
	mustContain(t, output, `"fmt"`)
}

func TestGenerateEnum(t *testing.T) {
	output := generate(t, forTestSchema, DefaultOptions(), compiler.DefaultOptions())

	mustContain(t, output, "type Color int32")
	mustContain(t, output, "Color_RED     Color = 1")
	mustContain(t, output, "Color_CRIMSON Color = 1")
	mustContain(t, output, "func (v Color) String() string {")
	mustContain(t, output, "case Color_RED:")
	mustNotContain(t, output, "case Color_CRIMSON:")
	mustContain(t, output, `return fmt.Sprintf("Color(%d)", int32(v))`)
}

func TestGenerateStructFields(t *testing.T) {
	output := generate(t, forTestSchema, DefaultOptions(), compiler.DefaultOptions())

	mustContain(t, output, "type ForTest struct {")
	mustContain(t, output, "Foo     *uuid.UUID")
	mustContain(t, output, "Bar     []bool")
	mustContain(t, output, "Zing    int32")
	mustContain(t, output, "Nested  map[string][]map[int8]bool")
	mustContain(t, output, "Color   *Color")
	mustContain(t, output, "Shade   Color")
	mustContain(t, output, "Nothing *Empty")
	mustContain(t, output, "Other   *Other")
	mustContain(t, output, "Blob    []byte")
	mustContain(t, output, "Palette map[Color]struct{}")
	mustContain(t, output, "Read_   *string")
}

func TestGenerateConstructor(t *testing.T) {
	output := generate(t, forTestSchema, DefaultOptions(), compiler.DefaultOptions())

	mustContain(t, output, "func NewForTest() *ForTest {")
	mustContain(t, output, "Bar:   []bool{},")
	mustContain(t, output, "Zing:  123,")
	mustContain(t, output, "Shade: Color_RED,")
	mustContain(t, output, "Other: NewOther(),")
	mustContain(t, output, "Id: -9,")
}

func TestGenerateReader(t *testing.T) {
	output := generate(t, forTestSchema, DefaultOptions(), compiler.DefaultOptions())

	mustContain(t, output, "func (s *ForTest) Read(r *wire.Reader) error {")
	mustContain(t, output, "switch key := r.ReadStructKey(); key {")
	mustContain(t, output, "case 0x010d: // 1: wire.TypeUUID")
	mustContain(t, output, "s.Foo = wire.Ptr(r.ReadUUID())")
	mustContain(t, output, "case 0x0209: // 2: wire.TypeList")
	mustContain(t, output, "s.Bar = wire.ReadList(r, wire.TypeBool, func() bool { return r.ReadBool() })")
	mustContain(t, output, "s.Zing = r.ReadI32()")
	mustContain(t, output, "s.Nested = wire.ReadMap(r, 0x89, func() string { return r.ReadString() }, func() []map[int8]bool {")
	mustContain(t, output, "wire.ReadMap(r, 0x32, func() int8 { return r.ReadI8() }, func() bool { return r.ReadBool() })")
	mustContain(t, output, "s.Color = wire.Ptr(Color(r.ReadI32()))")
	mustContain(t, output, "s.Nothing = wire.ReadStruct(r, zeroEmpty)")
	mustContain(t, output, "s.Other = wire.ReadStruct(r, NewOther())")
	mustContain(t, output, "s.Palette = wire.ReadSet(r, wire.TypeI32, func() Color { return Color(r.ReadI32()) })")
	mustContain(t, output, "r.Skip(key.Type())")
	mustContain(t, output, "case wire.Stop:")
}

func TestGenerateNegativeFieldID(t *testing.T) {
	output := generate(t, "struct N {\n  -4: i16 back;\n  1: i32 ok;\n  -300: required i64 far;\n}\n",
		DefaultOptions(), compiler.DefaultOptions())

	mustContain(t, output, "case -0x03fc: // -4: wire.TypeI16")
	mustContain(t, output, "case 0x0105: // 1: wire.TypeI32")
	mustContain(t, output, "case -0x12bfa: // -300: wire.TypeI64")
	mustContain(t, output, "w.WriteStructKey(wire.TypeI16, -4)")
	mustContain(t, output, "w.WriteStructKey(wire.TypeI64, -300)")
}

func TestHexKey(t *testing.T) {
	assert.Equal(t, "0x010d", hexKey(0x010d))
	assert.Equal(t, "-0x03fc", hexKey(-1020))
	assert.Equal(t, "-0x7ffff4", hexKey(-32768<<8|12)) // smallest field id, struct
}

func TestGenerateZeroFieldStruct(t *testing.T) {
	output := generate(t, forTestSchema, DefaultOptions(), compiler.DefaultOptions())

	mustContain(t, output, "var zeroEmpty = &Empty{}")
	mustContain(t, output, "func (s *Empty) Read(r *wire.Reader) error {\n\tr.Skip(wire.TypeStruct)\n\treturn r.Err()\n}")

	output = generate(t, forTestSchema, DefaultOptions(), compiler.Options{})
	mustNotContain(t, output, "zeroEmpty")
	mustContain(t, output, "s.Nothing = wire.ReadStruct(r, NewEmpty())")
}

func TestGenerateWriter(t *testing.T) {
	output := generate(t, forTestSchema, DefaultOptions(), compiler.DefaultOptions())

	mustContain(t, output, "func (s *ForTest) Write(w *wire.Writer) error {")
	mustContain(t, output, "if s.Foo != nil {\n\t\tw.WriteStructKey(wire.TypeUUID, 1)\n\t\tw.WriteUUID(*s.Foo)\n\t}")
	mustContain(t, output, "w.WriteStructKey(wire.TypeList, 2)\n\twire.WriteList(w, wire.TypeBool, s.Bar, func(e0 bool) { w.WriteBool(e0) })")
	mustContain(t, output, "w.WriteStructKey(wire.TypeI32, 4)\n\tw.WriteI32(s.Zing)")
	mustContain(t, output, "func(k0 string) { w.WriteString(k0) }")
	mustContain(t, output, "func(v0 []map[int8]bool) { wire.WriteList(w, wire.TypeMap, v0, func(e1 map[int8]bool) {")
	mustContain(t, output, "w.WriteI32(int32(*s.Color))")
	mustContain(t, output, "w.WriteI32(int32(s.Shade))")
	mustContain(t, output, "if s.Other != nil {")
	mustContain(t, output, "wire.WriteStruct(w, s.Other)")
	mustContain(t, output, "wire.WriteSet(w, wire.TypeI32, s.Palette, func(e0 Color) { w.WriteI32(int32(e0)) })")
	mustContain(t, output, "w.WriteStructKey(wire.TypeStop, 0)\n\treturn w.Err()")
}

func TestGenerateReadOnly(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeWriter = false
	output := generate(t, forTestSchema, opts, compiler.DefaultOptions())

	mustNotContain(t, output, "Write(w *wire.Writer)")
	mustContain(t, output, "Read(r *wire.Reader)")
}

func TestGenerateOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Package = "custom"
	opts.RuntimeImport = "example.com/runtime/thrift"
	output := generate(t, `struct A { 1: i32 x }`, opts, compiler.DefaultOptions())

	mustContain(t, output, "package custom")
	mustContain(t, output, `wire "example.com/runtime/thrift"`)
	mustNotContain(t, output, `"fmt"`)
	mustNotContain(t, output, `"github.com/google/uuid"`)

	output = generate(t, `struct A { 1: i32 x }`, DefaultOptions(), compiler.DefaultOptions())
	mustContain(t, output, "package thrift")
}

func TestGenerateDefaults(t *testing.T) {
	output := generate(t, `
enum E { A = 1, B }
struct D {
  1: string s = "a\"b"
  2: binary raw = "xy"
  3: uuid id = "01020304-0506-0708-0102-030405060708"
  4: double d = 2.5
  5: bool flag = 1
  6: E e = 7
  7: E named = "B"
}`, DefaultOptions(), compiler.DefaultOptions())

	mustContain(t, output, `S:     "a\"b",`)
	mustContain(t, output, `Raw:   []byte("xy"),`)
	mustContain(t, output, `Id:    uuid.MustParse("01020304-0506-0708-0102-030405060708"),`)
	mustContain(t, output, `D:     2.5,`)
	mustContain(t, output, `Flag:  true,`)
	mustContain(t, output, `E:     E(7),`)
	mustContain(t, output, `Named: E_B,`)
}

func TestNaming(t *testing.T) {
	tests := map[string]string{
		"user_name":   "UserName",
		"foo":         "Foo",
		"Outer.Inner": "OuterInner",
		"_private":    "Private",
		"1st":         "X1st",
		"HTTPCode":    "HTTPCode",
	}
	for in, want := range tests {
		assert.Equal(t, want, goName(in), in)
	}

	assert.Equal(t, "Write_", fieldName("write"))
	assert.Equal(t, "Color_RED", enumConst("Color", "RED"))
	assert.Equal(t, "fortest", packageName("example.fortest"))
	assert.Equal(t, "fortest", packageName("github.com/acme/fortest"))
	assert.Equal(t, "my_pkg", packageName("my-pkg"))
}
