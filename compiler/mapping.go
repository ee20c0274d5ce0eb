package compiler

import (
	"github.com/anirudhraja/thriftlite/schema"
	"github.com/anirudhraja/thriftlite/wire"
)

// Kind classifies a resolved type.
type Kind int

const (
	KindPrimitive Kind = iota
	KindEnum
	KindStruct
	KindList
	KindSet
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindEnum:
		return "enum"
	case KindStruct:
		return "struct"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindMap:
		return "map"
	}
	return "unknown"
}

// Mapping describes how one schema type travels over the wire. Emitters
// derive their target-language types and expressions from it.
type Mapping struct {
	Wire wire.CompactType // tag used in field headers and collection headers
	Kind Kind

	Primitive schema.Primitive // KindPrimitive
	Ref       string           // KindEnum, KindStruct: declared name

	Elem       *Mapping // KindList, KindSet
	Key, Value *Mapping // KindMap
	MapKey     byte     // KindMap: (Key.Wire << 4) | Value.Wire

	// ZeroInstance is set on struct references whose target has no fields,
	// so decoding may reuse one shared instance.
	ZeroInstance bool

	// EnumDefault is the first declared member of a referenced enum.
	EnumDefault int32
}

// Nillable reports whether absence can be represented by nil without a
// pointer: binary values, containers and structs.
func (m *Mapping) Nillable() bool {
	switch m.Kind {
	case KindStruct, KindList, KindSet, KindMap:
		return true
	case KindPrimitive:
		return m.Primitive == schema.TypeBinary
	}
	return false
}

// Comparable reports whether values of this type can be Go map keys.
func (m *Mapping) Comparable() bool {
	switch m.Kind {
	case KindEnum:
		return true
	case KindPrimitive:
		return m.Primitive != schema.TypeBinary
	}
	return false
}

// String renders the mapping as a schema type expression.
func (m *Mapping) String() string {
	switch m.Kind {
	case KindPrimitive:
		return string(m.Primitive)
	case KindEnum, KindStruct:
		return m.Ref
	case KindList:
		return "list<" + m.Elem.String() + ">"
	case KindSet:
		return "set<" + m.Elem.String() + ">"
	case KindMap:
		return "map<" + m.Key.String() + ", " + m.Value.String() + ">"
	}
	return "?"
}

var primitiveWire = map[schema.Primitive]wire.CompactType{
	schema.TypeI8:     wire.TypeByte,
	schema.TypeI16:    wire.TypeI16,
	schema.TypeI32:    wire.TypeI32,
	schema.TypeI64:    wire.TypeI64,
	schema.TypeDouble: wire.TypeDouble,
	schema.TypeBool:   wire.TypeBool,
	schema.TypeBinary: wire.TypeBinary,
	schema.TypeString: wire.TypeBinary,
	schema.TypeUUID:   wire.TypeUUID,
}
