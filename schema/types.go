package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Document represents a parsed schema: namespaces plus enum and object
// declarations in source order.
type Document struct {
	Namespaces []*Namespace `json:"namespaces"` // namespace declarations
	Decls      []Decl       `json:"decls"`      // enums and objects, in order

	index map[string]Decl
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{index: make(map[string]Decl)}
}

// Add appends a declaration. Declaration names must be unique.
func (d *Document) Add(decl Decl) error {
	if d.index == nil {
		d.index = make(map[string]Decl)
	}
	name := decl.DeclName()
	if _, exists := d.index[name]; exists {
		return fmt.Errorf("duplicate declaration: %s", name)
	}
	d.index[name] = decl
	d.Decls = append(d.Decls, decl)
	return nil
}

// Lookup returns the declaration with the given name.
func (d *Document) Lookup(name string) (Decl, bool) {
	decl, ok := d.index[name]
	return decl, ok
}

// Namespace returns the namespace value declared for scope, if any.
func (d *Document) Namespace(scope string) (string, bool) {
	for _, ns := range d.Namespaces {
		if ns.Scope == scope {
			return ns.Value, true
		}
	}
	return "", false
}

// Enums returns the enum declarations in order.
func (d *Document) Enums() []*Enum {
	var out []*Enum
	for _, decl := range d.Decls {
		if e, ok := decl.(*Enum); ok {
			out = append(out, e)
		}
	}
	return out
}

// Objects returns the struct and union declarations in order.
func (d *Document) Objects() []*Object {
	var out []*Object
	for _, decl := range d.Decls {
		if o, ok := decl.(*Object); ok {
			out = append(out, o)
		}
	}
	return out
}

// Merge adds every namespace and declaration of other to d.
func (d *Document) Merge(other *Document) error {
	d.Namespaces = append(d.Namespaces, other.Namespaces...)
	for _, decl := range other.Decls {
		if err := d.Add(decl); err != nil {
			return err
		}
	}
	return nil
}

// Namespace represents `namespace <scope> <value>`. It carries no meaning
// for the wire format.
type Namespace struct {
	Scope string `json:"scope"` // "go"
	Value string `json:"value"` // "example.fortest"
}

// Decl is a named top-level declaration: *Enum or *Object.
type Decl interface {
	DeclName() string
}

// Enum represents an enum definition
type Enum struct {
	Name    string        `json:"name"`    // "Status"
	Members []*EnumMember `json:"members"` // in declaration order
}

// DeclName implements Decl.
func (e *Enum) DeclName() string { return e.Name }

// EnumMember represents an enum value. Values need not be unique.
type EnumMember struct {
	Name  string `json:"name"`  // "ACTIVE"
	Value int32  `json:"value"` // 1
}

// ObjectKind distinguishes structs from unions.
type ObjectKind string

const (
	KindStruct ObjectKind = "struct"
	KindUnion  ObjectKind = "union"
)

// Object represents a struct or union definition.
type Object struct {
	Name   string     `json:"name"`   // "User"
	Kind   ObjectKind `json:"kind"`   // struct or union
	Fields []*Field   `json:"fields"` // declaration order, not wire order
}

// DeclName implements Decl.
func (o *Object) DeclName() string { return o.Name }

// FieldByID returns the field with the given id.
func (o *Object) FieldByID(id int16) *Field {
	for _, f := range o.Fields {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// Field represents a numbered struct field. ID 0 is reserved for the wire
// stop marker.
type Field struct {
	Name     string   `json:"name"`              // "user_name"
	ID       int16    `json:"id"`                // 1
	Type     TypeRef  `json:"type"`              // field type
	Required bool     `json:"required"`          // required qualifier
	Default  *Literal `json:"default,omitempty"` // literal after `=`
}

// Optional reports whether the field starts out absent: it is neither
// required nor given a default.
func (f *Field) Optional() bool {
	return !f.Required && f.Default == nil
}

// TypeRef names a primitive, a declared type, or a template when Inner is
// non-empty (map<K,V>, list<T>, set<T>).
type TypeRef struct {
	Name  string    `json:"name"`            // "i32", "User", "map"
	Inner []TypeRef `json:"inner,omitempty"` // template arguments
}

// Ref creates a plain type reference.
func Ref(name string) TypeRef {
	return TypeRef{Name: name}
}

// Template creates a template type reference.
func Template(outer string, inner ...TypeRef) TypeRef {
	return TypeRef{Name: outer, Inner: inner}
}

// IsTemplate reports whether t has template arguments.
func (t TypeRef) IsTemplate() bool {
	return len(t.Inner) > 0
}

// String renders the type expression as written in a schema.
func (t TypeRef) String() string {
	if !t.IsTemplate() {
		return t.Name
	}
	parts := make([]string, len(t.Inner))
	for i, in := range t.Inner {
		parts[i] = in.String()
	}
	return t.Name + "<" + strings.Join(parts, ", ") + ">"
}

// Primitive represents the built-in scalar types.
type Primitive string

const (
	TypeI8     Primitive = "i8"
	TypeI16    Primitive = "i16"
	TypeI32    Primitive = "i32"
	TypeI64    Primitive = "i64"
	TypeDouble Primitive = "double"
	TypeBool   Primitive = "bool"
	TypeBinary Primitive = "binary"
	TypeUUID   Primitive = "uuid"
	TypeString Primitive = "string"
)

var primitives = map[string]Primitive{
	"i8":     TypeI8,
	"byte":   TypeI8,
	"i16":    TypeI16,
	"i32":    TypeI32,
	"i64":    TypeI64,
	"double": TypeDouble,
	"bool":   TypeBool,
	"binary": TypeBinary,
	"uuid":   TypeUUID,
	"string": TypeString,
}

// LookupPrimitive returns the primitive named name, if it is one.
func LookupPrimitive(name string) (Primitive, bool) {
	p, ok := primitives[name]
	return p, ok
}

// Template outer names.
const (
	TemplateMap  = "map"
	TemplateList = "list"
	TemplateSet  = "set"
)

// LiteralKind represents the kind of a default value literal.
type LiteralKind string

const (
	LiteralInt    LiteralKind = "int"
	LiteralFloat  LiteralKind = "float"
	LiteralString LiteralKind = "string"
)

// Literal represents a default value as written in the schema.
type Literal struct {
	Kind  LiteralKind `json:"kind"`
	Int   int64       `json:"int,omitempty"`
	Float float64     `json:"float,omitempty"`
	Str   string      `json:"str,omitempty"`
}

// IntLiteral creates an integer literal.
func IntLiteral(v int64) *Literal {
	return &Literal{Kind: LiteralInt, Int: v}
}

// StringLiteral creates a string literal.
func StringLiteral(s string) *Literal {
	return &Literal{Kind: LiteralString, Str: s}
}

// String renders the literal as written in a schema.
func (l *Literal) String() string {
	switch l.Kind {
	case LiteralInt:
		return strconv.FormatInt(l.Int, 10)
	case LiteralFloat:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	default:
		return strconv.Quote(l.Str)
	}
}
