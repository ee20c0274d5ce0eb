// Package gen renders compiled schemas as Go source using the wire runtime.
package gen

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/anirudhraja/thriftlite/compiler"
)

const (
	// DefaultRuntimeImport is the import path of the runtime package the
	// generated code calls into.
	DefaultRuntimeImport = "github.com/anirudhraja/thriftlite/wire"

	defaultPackage = "thrift"
	uuidImport     = "github.com/google/uuid"
)

// Options controls code generation.
type Options struct {
	Package       string // defaults to the "go" namespace, else "thrift"
	RuntimeImport string // defaults to DefaultRuntimeImport
	IncludeWriter bool   // emit Write methods
	Source        string // recorded in the header comment when set
}

// DefaultOptions returns options that emit readers and writers.
func DefaultOptions() Options {
	return Options{IncludeWriter: true}
}

// Generate renders unit as one formatted Go file.
func Generate(unit *compiler.Unit, opts Options) ([]byte, error) {
	if opts.Package == "" {
		opts.Package = defaultPackage
		for _, ns := range unit.Namespaces {
			if ns.Scope == "go" {
				opts.Package = packageName(ns.Value)
			}
		}
	}
	if opts.RuntimeImport == "" {
		opts.RuntimeImport = DefaultRuntimeImport
	}

	var body strings.Builder
	for _, name := range unit.Order {
		var err error
		if e := unit.Enum(name); e != nil {
			err = renderTemplate(&body, "enum", buildEnum(e))
		} else if s := unit.Struct(name); s != nil {
			err = renderTemplate(&body, "struct", buildStruct(unit, s, opts))
		}
		if err != nil {
			return nil, err
		}
	}

	var b strings.Builder
	header := headerData{
		Source:  opts.Source,
		Package: opts.Package,
		Imports: collectImports(unit, opts),
	}
	if err := renderTemplate(&b, "header", header); err != nil {
		return nil, err
	}
	b.WriteString(body.String())

	src := []byte(b.String())
	out, err := imports.Process(opts.Package+".go", src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return src, fmt.Errorf("formatting generated code: %w", err)
	}
	return out, nil
}

func collectImports(unit *compiler.Unit, opts Options) []importSpec {
	var specs []importSpec
	if len(unit.Enums) > 0 {
		specs = append(specs, importSpec{Path: "fmt"})
	}

	needUUID := false
	for _, s := range unit.Structs {
		for _, f := range s.Fields {
			if usesUUID(f.Mapping) {
				needUUID = true
			}
		}
	}
	if needUUID {
		specs = append(specs, importSpec{Path: uuidImport})
	}

	if len(unit.Structs) > 0 {
		spec := importSpec{Path: opts.RuntimeImport}
		if path.Base(opts.RuntimeImport) != "wire" {
			spec.Alias = "wire"
		}
		specs = append(specs, spec)
	}
	return specs
}

func buildEnum(e *compiler.Enum) enumData {
	d := enumData{Name: goName(e.Name), Kind: "enum"}
	seen := make(map[int32]bool, len(e.Members))
	for _, m := range e.Members {
		md := enumMemberData{Const: enumConst(e.Name, m.Name), Name: m.Name, Value: m.Value}
		d.Members = append(d.Members, md)
		if !seen[m.Value] {
			seen[m.Value] = true
			d.Unique = append(d.Unique, md)
		}
	}
	return d
}

func buildStruct(unit *compiler.Unit, s *compiler.Struct, opts Options) structData {
	d := structData{
		Name:          goName(s.Name),
		Kind:          string(s.Kind),
		SkipBody:      s.SkipBody,
		ZeroInstance:  s.ZeroInstance,
		IncludeWriter: opts.IncludeWriter,
	}

	for _, f := range s.Fields {
		fd := fieldData{
			GoName:  fieldName(f.Name),
			GoType:  goType(f.Mapping),
			Schema:  describeField(f),
			Key:     int32(f.Key),
			Wire:    wireConst(f.Mapping.Wire),
			ID:      f.ID,
			Read:    readExpr(f.Mapping),
			Guarded: f.Guarded(),
			Init:    initExpr(unit, f),
		}

		value := "s." + fd.GoName
		if f.Pointer() {
			fd.GoType = "*" + fd.GoType
			fd.Read = "wire.Ptr(" + fd.Read + ")"
			value = "*" + value
		}
		fd.Write = writeStmt(f.Mapping, value, 0)

		d.Fields = append(d.Fields, fd)
		if fd.Init != "" {
			d.Inits = append(d.Inits, fd)
		}
	}
	return d
}

func describeField(f *compiler.Field) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d: ", f.ID)
	if f.Required {
		b.WriteString("required ")
	}
	b.WriteString(f.Mapping.String())
	b.WriteString(" ")
	b.WriteString(f.Name)
	if f.Default != nil {
		b.WriteString(" = ")
		b.WriteString(defaultComment(f.Default))
	}
	return b.String()
}

func defaultComment(v any) string {
	switch x := v.(type) {
	case []byte:
		return fmt.Sprintf("%q", x)
	case string:
		return fmt.Sprintf("%q", x)
	}
	return fmt.Sprintf("%v", v)
}
