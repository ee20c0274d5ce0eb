package gen

import (
	"fmt"
	"strings"
	"text/template"
)

var funcMap = template.FuncMap{
	"quote": func(s string) string { return fmt.Sprintf("%q", s) },
	"hex":   hexKey,
}

// hexKey renders a dispatch key as a Go literal. Negative field ids give
// negative keys.
func hexKey(v int32) string {
	if v < 0 {
		return fmt.Sprintf("-0x%04x", -int64(v))
	}
	return fmt.Sprintf("0x%04x", v)
}

var templates = template.Must(template.New("").Funcs(funcMap).Parse(
	headerTmpl +
		enumTmpl +
		structTmpl,
))

func renderTemplate(b *strings.Builder, name string, data any) error {
	if err := templates.ExecuteTemplate(b, name, data); err != nil {
		return fmt.Errorf("template %s: %w", name, err)
	}
	return nil
}

// --- Template data types ---

type headerData struct {
	Source  string
	Package string
	Imports []importSpec
}

type importSpec struct {
	Alias string
	Path  string
}

type enumData struct {
	Name    string
	Kind    string
	Members []enumMemberData
	Unique  []enumMemberData // first member per distinct value
}

type enumMemberData struct {
	Const string
	Name  string
	Value int32
}

type structData struct {
	Name          string
	Kind          string
	Fields        []fieldData
	Inits         []fieldData
	SkipBody      bool
	ZeroInstance  bool
	IncludeWriter bool
}

type fieldData struct {
	GoName  string
	GoType  string
	Schema  string // "1: required list<bool> bar"
	Key     int32
	Wire    string
	ID      int16
	Read    string
	Write   string
	Guarded bool
	Init    string
}

// --- Template definitions ---

const headerTmpl = `{{define "header" -}}
// Code generated by thriftlite. DO NOT EDIT.
{{- if .Source}}
// source: {{.Source}}
{{- end}}

package {{.Package}}
{{if .Imports}}
import (
{{- range .Imports}}
	{{if .Alias}}{{.Alias}} {{end}}{{quote .Path}}
{{- end}}
)
{{end}}
{{end}}`

const enumTmpl = `{{define "enum"}}
// {{.Name}} is generated from {{.Kind}} {{.Name}}.
type {{.Name}} int32

{{if .Members -}}
const (
{{- range .Members}}
	{{.Const}} {{$.Name}} = {{.Value}}
{{- end}}
)
{{- end}}

func (v {{.Name}}) String() string {
	switch v {
{{- range .Unique}}
	case {{.Const}}:
		return {{quote .Name}}
{{- end}}
	}
	return fmt.Sprintf("{{.Name}}(%d)", int32(v))
}
{{end}}`

const structTmpl = `{{define "struct"}}
// {{.Name}} is generated from {{.Kind}} {{.Name}}.
{{- if .Fields}}
type {{.Name}} struct {
{{- range .Fields}}
	{{.GoName}} {{.GoType}} // {{.Schema}}
{{- end}}
}
{{- else}}
type {{.Name}} struct{}
{{- end}}

// New{{.Name}} creates a {{.Name}} with required and default fields set.
func New{{.Name}}() *{{.Name}} {
{{- if .Inits}}
	return &{{.Name}}{
{{- range .Inits}}
		{{.GoName}}: {{.Init}},
{{- end}}
	}
{{- else}}
	return &{{.Name}}{}
{{- end}}
}
{{- if .ZeroInstance}}

// zero{{.Name}} is shared by every decode of {{.Name}}: it has no fields.
var zero{{.Name}} = &{{.Name}}{}
{{- end}}

// Read decodes s from r. Unknown fields are skipped.
func (s *{{.Name}}) Read(r *wire.Reader) error {
{{- if .SkipBody}}
	r.Skip(wire.TypeStruct)
	return r.Err()
{{- else}}
	r.ReadStructBegin()
	for {
		switch key := r.ReadStructKey(); key {
		case wire.Stop:
			return r.Err()
{{- range .Fields}}
		case {{hex .Key}}: // {{.ID}}: {{.Wire}}
			s.{{.GoName}} = {{.Read}}
{{- end}}
		default:
			r.Skip(key.Type())
		}
	}
{{- end}}
}
{{- if .IncludeWriter}}

// Write encodes s to w.
func (s *{{.Name}}) Write(w *wire.Writer) error {
	w.WriteStructBegin()
{{- range .Fields}}
{{- if .Guarded}}
	if s.{{.GoName}} != nil {
		w.WriteStructKey({{.Wire}}, {{.ID}})
		{{.Write}}
	}
{{- else}}
	w.WriteStructKey({{.Wire}}, {{.ID}})
	{{.Write}}
{{- end}}
{{- end}}
	w.WriteStructKey(wire.TypeStop, 0)
	return w.Err()
}
{{- end}}
{{end}}`
