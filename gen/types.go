package gen

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/anirudhraja/thriftlite/compiler"
	"github.com/anirudhraja/thriftlite/schema"
	"github.com/anirudhraja/thriftlite/wire"
)

var wireConsts = map[wire.CompactType]string{
	wire.TypeStop:        "wire.TypeStop",
	wire.TypeBooleanTrue: "wire.TypeBooleanTrue",
	wire.TypeBool:        "wire.TypeBool",
	wire.TypeByte:        "wire.TypeByte",
	wire.TypeI16:         "wire.TypeI16",
	wire.TypeI32:         "wire.TypeI32",
	wire.TypeI64:         "wire.TypeI64",
	wire.TypeDouble:      "wire.TypeDouble",
	wire.TypeBinary:      "wire.TypeBinary",
	wire.TypeList:        "wire.TypeList",
	wire.TypeSet:         "wire.TypeSet",
	wire.TypeMap:         "wire.TypeMap",
	wire.TypeStruct:      "wire.TypeStruct",
	wire.TypeUUID:        "wire.TypeUUID",
}

func wireConst(t wire.CompactType) string {
	return wireConsts[t]
}

type primitiveCode struct {
	goType string
	read   string
	write  string
}

var primitiveCodes = map[schema.Primitive]primitiveCode{
	schema.TypeI8:     {"int8", "r.ReadI8()", "w.WriteI8(%s)"},
	schema.TypeI16:    {"int16", "r.ReadI16()", "w.WriteI16(%s)"},
	schema.TypeI32:    {"int32", "r.ReadI32()", "w.WriteI32(%s)"},
	schema.TypeI64:    {"int64", "r.ReadI64()", "w.WriteI64(%s)"},
	schema.TypeDouble: {"float64", "r.ReadDouble()", "w.WriteDouble(%s)"},
	schema.TypeBool:   {"bool", "r.ReadBool()", "w.WriteBool(%s)"},
	schema.TypeBinary: {"[]byte", "r.ReadBinary()", "w.WriteBinary(%s)"},
	schema.TypeString: {"string", "r.ReadString()", "w.WriteString(%s)"},
	schema.TypeUUID:   {"uuid.UUID", "r.ReadUUID()", "w.WriteUUID(%s)"},
}

// goType renders the Go type holding values of m.
func goType(m *compiler.Mapping) string {
	switch m.Kind {
	case compiler.KindPrimitive:
		return primitiveCodes[m.Primitive].goType
	case compiler.KindEnum:
		return goName(m.Ref)
	case compiler.KindStruct:
		return "*" + goName(m.Ref)
	case compiler.KindList:
		return "[]" + goType(m.Elem)
	case compiler.KindSet:
		return "map[" + goType(m.Elem) + "]struct{}"
	case compiler.KindMap:
		return "map[" + goType(m.Key) + "]" + goType(m.Value)
	}
	panic(fmt.Sprintf("gen: unhandled kind %s", m.Kind))
}

// structInit is the expression producing a fresh value for a struct
// reference: the shared instance when the target has no fields.
func structInit(m *compiler.Mapping) string {
	if m.ZeroInstance {
		return "zero" + goName(m.Ref)
	}
	return "New" + goName(m.Ref) + "()"
}

// readExpr renders an expression decoding one value of m from r.
func readExpr(m *compiler.Mapping) string {
	switch m.Kind {
	case compiler.KindPrimitive:
		return primitiveCodes[m.Primitive].read
	case compiler.KindEnum:
		return goName(m.Ref) + "(r.ReadI32())"
	case compiler.KindStruct:
		return "wire.ReadStruct(r, " + structInit(m) + ")"
	case compiler.KindList:
		return fmt.Sprintf("wire.ReadList(r, %s, func() %s { return %s })",
			wireConst(m.Elem.Wire), goType(m.Elem), readExpr(m.Elem))
	case compiler.KindSet:
		return fmt.Sprintf("wire.ReadSet(r, %s, func() %s { return %s })",
			wireConst(m.Elem.Wire), goType(m.Elem), readExpr(m.Elem))
	case compiler.KindMap:
		return fmt.Sprintf("wire.ReadMap(r, 0x%02x, func() %s { return %s }, func() %s { return %s })",
			m.MapKey, goType(m.Key), readExpr(m.Key), goType(m.Value), readExpr(m.Value))
	}
	panic(fmt.Sprintf("gen: unhandled kind %s", m.Kind))
}

// writeStmt renders a statement encoding the value expression v of m to w.
// depth keeps closure parameter names distinct when collections nest.
func writeStmt(m *compiler.Mapping, v string, depth int) string {
	switch m.Kind {
	case compiler.KindPrimitive:
		return fmt.Sprintf(primitiveCodes[m.Primitive].write, v)
	case compiler.KindEnum:
		return "w.WriteI32(int32(" + v + "))"
	case compiler.KindStruct:
		return "wire.WriteStruct(w, " + v + ")"
	case compiler.KindList, compiler.KindSet:
		fn := "wire.WriteList"
		if m.Kind == compiler.KindSet {
			fn = "wire.WriteSet"
		}
		e := "e" + strconv.Itoa(depth)
		return fmt.Sprintf("%s(w, %s, %s, func(%s %s) { %s })",
			fn, wireConst(m.Elem.Wire), v, e, goType(m.Elem), writeStmt(m.Elem, e, depth+1))
	case compiler.KindMap:
		k, val := "k"+strconv.Itoa(depth), "v"+strconv.Itoa(depth)
		return fmt.Sprintf("wire.WriteMap(w, 0x%02x, %s, func(%s %s) { %s }, func(%s %s) { %s })",
			m.MapKey, v,
			k, goType(m.Key), writeStmt(m.Key, k, depth+1),
			val, goType(m.Value), writeStmt(m.Value, val, depth+1))
	}
	panic(fmt.Sprintf("gen: unhandled kind %s", m.Kind))
}

// initExpr renders the constructor initialiser of a field, or "" when the
// Go zero value already matches.
func initExpr(unit *compiler.Unit, f *compiler.Field) string {
	m := f.Mapping
	if f.Default != nil {
		if m.Kind == compiler.KindEnum {
			return enumLiteral(unit, m.Ref, f.Default.(int32))
		}
		return literal(f.Default)
	}
	if !f.Required {
		return ""
	}

	switch m.Kind {
	case compiler.KindEnum:
		return enumLiteral(unit, m.Ref, m.EnumDefault)
	case compiler.KindStruct:
		return structInit(m)
	case compiler.KindList, compiler.KindSet, compiler.KindMap:
		return goType(m) + "{}"
	case compiler.KindPrimitive:
		if m.Primitive == schema.TypeBinary {
			return "[]byte{}"
		}
	}
	return ""
}

func enumLiteral(unit *compiler.Unit, name string, v int32) string {
	if e := unit.Enum(name); e != nil {
		if sym, ok := e.Symbol(v); ok {
			return enumConst(name, sym)
		}
	}
	return fmt.Sprintf("%s(%d)", goName(name), v)
}

// literal renders a converted default value as a Go literal.
func literal(v any) string {
	switch x := v.(type) {
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return strconv.Quote(x)
	case []byte:
		return "[]byte(" + strconv.Quote(string(x)) + ")"
	case uuid.UUID:
		return "uuid.MustParse(" + strconv.Quote(x.String()) + ")"
	}
	panic(fmt.Sprintf("gen: unhandled default %T", v))
}

// usesUUID reports whether m mentions the uuid type anywhere.
func usesUUID(m *compiler.Mapping) bool {
	switch m.Kind {
	case compiler.KindPrimitive:
		return m.Primitive == schema.TypeUUID
	case compiler.KindList, compiler.KindSet:
		return usesUUID(m.Elem)
	case compiler.KindMap:
		return usesUUID(m.Key) || usesUUID(m.Value)
	}
	return false
}
