package compiler

import (
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/anirudhraja/thriftlite/schema"
)

// resolveDefault converts a literal into the Go value of the field's type:
// int8, int16, int32, int64, float64, bool, string, []byte, uuid.UUID, or
// int32 for enums. Struct and container fields take no literal.
func (c *Compiler) resolveDefault(m *Mapping, lit *schema.Literal) (any, error) {
	switch m.Kind {
	case KindEnum:
		return c.enumDefault(m.Ref, lit)
	case KindPrimitive:
	default:
		return nil, errInvalidDefault(lit, m)
	}

	switch m.Primitive {
	case schema.TypeI8:
		return intDefault(lit, m, math.MinInt8, math.MaxInt8, func(v int64) any { return int8(v) })
	case schema.TypeI16:
		return intDefault(lit, m, math.MinInt16, math.MaxInt16, func(v int64) any { return int16(v) })
	case schema.TypeI32:
		return intDefault(lit, m, math.MinInt32, math.MaxInt32, func(v int64) any { return int32(v) })
	case schema.TypeI64:
		return intDefault(lit, m, math.MinInt64, math.MaxInt64, func(v int64) any { return v })

	case schema.TypeDouble:
		switch lit.Kind {
		case schema.LiteralFloat:
			return lit.Float, nil
		case schema.LiteralInt:
			return float64(lit.Int), nil
		}

	case schema.TypeBool:
		switch lit.Kind {
		case schema.LiteralInt:
			return lit.Int != 0, nil
		case schema.LiteralString:
			if b, err := strconv.ParseBool(lit.Str); err == nil {
				return b, nil
			}
		}

	case schema.TypeString:
		if lit.Kind == schema.LiteralString {
			return lit.Str, nil
		}
	case schema.TypeBinary:
		if lit.Kind == schema.LiteralString {
			return []byte(lit.Str), nil
		}
	case schema.TypeUUID:
		if lit.Kind == schema.LiteralString {
			if u, err := uuid.Parse(lit.Str); err == nil {
				return u, nil
			}
		}
	}
	return nil, errInvalidDefault(lit, m)
}

func intDefault(lit *schema.Literal, m *Mapping, lo, hi int64, conv func(int64) any) (any, error) {
	if lit.Kind != schema.LiteralInt || lit.Int < lo || lit.Int > hi {
		return nil, errInvalidDefault(lit, m)
	}
	return conv(lit.Int), nil
}

// enumDefault accepts a numeric value or a member symbol.
func (c *Compiler) enumDefault(name string, lit *schema.Literal) (any, error) {
	e, err := c.enum(name)
	if err != nil {
		return nil, err
	}
	switch lit.Kind {
	case schema.LiteralInt:
		if lit.Int >= math.MinInt32 && lit.Int <= math.MaxInt32 {
			return int32(lit.Int), nil
		}
	case schema.LiteralString:
		if v, ok := e.Value(lit.Str); ok {
			return v, nil
		}
	}
	return nil, schemaErr(name, ErrInvalidDefault, "%s", lit)
}

func errInvalidDefault(lit *schema.Literal, m *Mapping) error {
	return schemaErr(m.String(), ErrInvalidDefault, "%s", lit)
}
