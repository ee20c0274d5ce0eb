// Package compiler maps a parsed schema onto the compact protocol runtime.
//
// Every schema type resolves to a Mapping (wire tag plus structure), every
// struct to a dispatch plan keyed by (fieldID << 8) | wireType. The plans are
// consumed by the Go emitter in package gen and interpreted directly by
// package dynamic.
package compiler

import (
	"go.uber.org/zap"

	"github.com/anirudhraja/thriftlite/schema"
	"github.com/anirudhraja/thriftlite/wire"
)

// Options controls compilation.
type Options struct {
	// ZeroInstance lets references to field-less structs share one instance.
	ZeroInstance bool
	Logger       *zap.Logger
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{ZeroInstance: true}
}

// Field is one compiled struct field.
type Field struct {
	Name     string
	ID       int16
	Key      wire.Key // dispatch key: (ID << 8) | Mapping.Wire
	Mapping  *Mapping
	Required bool
	Default  any // converted default literal, nil when none

	// Optional fields start out absent and are written only when present.
	Optional bool
}

// Pointer reports whether an optional field needs a pointer to express
// absence.
func (f *Field) Pointer() bool {
	return f.Optional && !f.Mapping.Nillable()
}

// Guarded reports whether the field is written only when non-nil.
func (f *Field) Guarded() bool {
	return f.Optional || f.Mapping.Kind == KindStruct
}

// Struct is the compiled read/write plan of a struct or union.
type Struct struct {
	Name   string
	Kind   schema.ObjectKind
	Fields []*Field // declaration order; also the write order

	// SkipBody is set when the struct declares no fields: reading it is a
	// single skip of the whole struct.
	SkipBody bool
	// ZeroInstance is set when a shared instance is emitted for SkipBody
	// structs.
	ZeroInstance bool

	byKey  map[wire.Key]*Field
	byName map[string]*Field
}

// FieldByKey returns the field a dispatch key selects, or nil.
func (s *Struct) FieldByKey(k wire.Key) *Field {
	return s.byKey[k]
}

// FieldByName returns the field with the given schema name, or nil.
func (s *Struct) FieldByName(name string) *Field {
	return s.byName[name]
}

// Enum is a compiled enum.
type Enum struct {
	Name    string
	Members []*schema.EnumMember

	byName map[string]int32
}

// Value returns the value of the named member.
func (e *Enum) Value(symbol string) (int32, bool) {
	v, ok := e.byName[symbol]
	return v, ok
}

// Symbol returns the first member declared with value v.
func (e *Enum) Symbol(v int32) (string, bool) {
	for _, m := range e.Members {
		if m.Value == v {
			return m.Name, true
		}
	}
	return "", false
}

// Unit is a compiled document.
type Unit struct {
	Namespaces []*schema.Namespace
	Enums      []*Enum
	Structs    []*Struct
	Order      []string // declaration names in source order

	enums   map[string]*Enum
	structs map[string]*Struct
}

// Enum returns the compiled enum with the given name.
func (u *Unit) Enum(name string) *Enum {
	return u.enums[name]
}

// Struct returns the compiled struct or union with the given name.
func (u *Unit) Struct(name string) *Struct {
	return u.structs[name]
}

// Compiler resolves types against one document. Enums are compiled lazily
// and cached; structs are compiled on request.
type Compiler struct {
	doc   *schema.Document
	opts  Options
	log   *zap.Logger
	enums map[string]*Enum
}

// New creates a compiler for doc.
func New(doc *schema.Document, opts Options) *Compiler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{
		doc:   doc,
		opts:  opts,
		log:   log,
		enums: make(map[string]*Enum),
	}
}

// Compile compiles every declaration of doc. It fails on the first error.
func Compile(doc *schema.Document, opts Options) (*Unit, error) {
	c := New(doc, opts)
	u := &Unit{
		Namespaces: doc.Namespaces,
		enums:      make(map[string]*Enum),
		structs:    make(map[string]*Struct),
	}

	for _, decl := range doc.Decls {
		switch d := decl.(type) {
		case *schema.Enum:
			e, err := c.CompileEnum(d)
			if err != nil {
				return nil, err
			}
			u.Enums = append(u.Enums, e)
			u.enums[e.Name] = e
		case *schema.Object:
			s, err := c.CompileStruct(d)
			if err != nil {
				return nil, err
			}
			u.Structs = append(u.Structs, s)
			u.structs[s.Name] = s
		default:
			continue
		}
		u.Order = append(u.Order, decl.DeclName())
	}

	c.log.Debug("compiled schema",
		zap.Int("enums", len(u.Enums)),
		zap.Int("structs", len(u.Structs)))
	return u, nil
}

// CompileEnum validates member names and indexes them.
func (c *Compiler) CompileEnum(e *schema.Enum) (*Enum, error) {
	if ce, ok := c.enums[e.Name]; ok {
		return ce, nil
	}
	ce := &Enum{Name: e.Name, Members: e.Members, byName: make(map[string]int32, len(e.Members))}
	for _, m := range e.Members {
		if _, dup := ce.byName[m.Name]; dup {
			return nil, schemaErr(e.Name+"."+m.Name, ErrDuplicateName, "")
		}
		ce.byName[m.Name] = m.Value
	}
	c.enums[e.Name] = ce
	return ce, nil
}

func (c *Compiler) enum(name string) (*Enum, error) {
	decl, ok := c.doc.Lookup(name)
	if !ok {
		return nil, schemaErr(name, ErrUnknownType, "")
	}
	e, ok := decl.(*schema.Enum)
	if !ok {
		return nil, schemaErr(name, ErrUnknownType, "not an enum")
	}
	return c.CompileEnum(e)
}

// CompileStruct builds the dispatch plan of a struct or union.
func (c *Compiler) CompileStruct(o *schema.Object) (*Struct, error) {
	s := &Struct{
		Name:   o.Name,
		Kind:   o.Kind,
		byKey:  make(map[wire.Key]*Field, len(o.Fields)),
		byName: make(map[string]*Field, len(o.Fields)),
	}

	ids := make(map[int16]bool, len(o.Fields))
	for _, f := range o.Fields {
		expr := o.Name + "." + f.Name
		if f.ID == 0 {
			return nil, schemaErr(expr, ErrReservedFieldID, "")
		}
		if ids[f.ID] {
			return nil, schemaErr(expr, ErrDuplicateFieldID, "%d", f.ID)
		}
		ids[f.ID] = true
		if s.byName[f.Name] != nil {
			return nil, schemaErr(expr, ErrDuplicateName, "")
		}

		m, err := c.ResolveType(f.Type)
		if err != nil {
			return nil, wrapExpr(expr, err)
		}

		cf := &Field{
			Name:     f.Name,
			ID:       f.ID,
			Key:      wire.MakeKey(f.ID, m.Wire),
			Mapping:  m,
			Required: f.Required,
			Optional: f.Optional(),
		}
		if f.Default != nil {
			if cf.Default, err = c.resolveDefault(m, f.Default); err != nil {
				return nil, wrapExpr(expr, err)
			}
		}

		s.Fields = append(s.Fields, cf)
		s.byKey[cf.Key] = cf
		s.byName[cf.Name] = cf
	}

	if len(s.Fields) == 0 {
		s.SkipBody = true
		s.ZeroInstance = c.opts.ZeroInstance
	}

	c.log.Debug("compiled struct",
		zap.String("name", s.Name),
		zap.Int("fields", len(s.Fields)),
		zap.Bool("skipBody", s.SkipBody))
	return s, nil
}

// ResolveType maps a type reference onto its wire representation.
func (c *Compiler) ResolveType(ref schema.TypeRef) (*Mapping, error) {
	if ref.IsTemplate() {
		return c.resolveTemplate(ref)
	}

	if p, ok := schema.LookupPrimitive(ref.Name); ok {
		return &Mapping{Wire: primitiveWire[p], Kind: KindPrimitive, Primitive: p}, nil
	}
	switch ref.Name {
	case schema.TemplateMap, schema.TemplateList, schema.TemplateSet:
		return nil, schemaErr(ref.String(), ErrTemplateArity, "missing arguments")
	}

	decl, ok := c.doc.Lookup(ref.Name)
	if !ok {
		return nil, schemaErr(ref.Name, ErrUnknownType, "")
	}

	switch d := decl.(type) {
	case *schema.Enum:
		if len(d.Members) == 0 {
			return nil, schemaErr(d.Name, ErrEmptyEnum, "")
		}
		return &Mapping{
			Wire:        wire.TypeI32,
			Kind:        KindEnum,
			Ref:         d.Name,
			EnumDefault: d.Members[0].Value,
		}, nil
	case *schema.Object:
		return &Mapping{
			Wire:         wire.TypeStruct,
			Kind:         KindStruct,
			Ref:          d.Name,
			ZeroInstance: c.opts.ZeroInstance && len(d.Fields) == 0,
		}, nil
	}
	return nil, schemaErr(ref.Name, ErrUnknownType, "")
}

func (c *Compiler) resolveTemplate(ref schema.TypeRef) (*Mapping, error) {
	inner := make([]*Mapping, len(ref.Inner))
	for i, in := range ref.Inner {
		m, err := c.ResolveType(in)
		if err != nil {
			return nil, err
		}
		inner[i] = m
	}

	switch ref.Name {
	case schema.TemplateMap:
		if len(inner) != 2 {
			return nil, schemaErr(ref.String(), ErrTemplateArity, "map takes 2, got %d", len(inner))
		}
		key, value := inner[0], inner[1]
		if !key.Comparable() {
			return nil, schemaErr(ref.String(), ErrUnhashableKey, "%s", key)
		}
		return &Mapping{
			Wire:   wire.TypeMap,
			Kind:   KindMap,
			Key:    key,
			Value:  value,
			MapKey: wire.PackMapKey(key.Wire, value.Wire),
		}, nil

	case schema.TemplateList, schema.TemplateSet:
		if len(inner) != 1 {
			return nil, schemaErr(ref.String(), ErrTemplateArity, "%s takes 1, got %d", ref.Name, len(inner))
		}
		if ref.Name == schema.TemplateList {
			return &Mapping{Wire: wire.TypeList, Kind: KindList, Elem: inner[0]}, nil
		}
		if !inner[0].Comparable() {
			return nil, schemaErr(ref.String(), ErrUnhashableKey, "%s", inner[0])
		}
		return &Mapping{Wire: wire.TypeSet, Kind: KindSet, Elem: inner[0]}, nil
	}

	return nil, schemaErr(ref.String(), ErrUnknownType, "unsupported template %s", ref.Name)
}

// wrapExpr locates a nested schema error at the field that triggered it.
func wrapExpr(expr string, err error) error {
	return &SchemaError{Expr: expr, Err: err}
}
