package registry

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/anirudhraja/thriftlite/compiler"
	"github.com/anirudhraja/thriftlite/parser"
	"github.com/anirudhraja/thriftlite/schema"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()

	if registry == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if len(registry.Document().Decls) != 0 {
		t.Error("Expected an empty document initially")
	}
	if len(registry.ListStructs()) != 0 || len(registry.ListEnums()) != 0 {
		t.Error("Expected no declarations initially")
	}
}

func TestLoadSchema_NonExistentPath(t *testing.T) {
	registry := NewRegistry()

	err := registry.LoadSchema("/nonexistent/path")
	if err == nil {
		t.Fatal("Expected error for non-existent path")
	}
	if !strings.Contains(err.Error(), "path does not exist") {
		t.Errorf("Expected 'path does not exist' error, got: %v", err)
	}
}

func TestLoadSchema_NonThriftFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{"test.txt": "struct A {}"})

	registry := NewRegistry()
	err := registry.LoadSchema(filepath.Join(tmpDir, "test.txt"))
	if err == nil {
		t.Fatal("Expected error for non-thrift file")
	}
	if !strings.Contains(err.Error(), "is not a .thrift file") {
		t.Errorf("Expected 'is not a .thrift file' error, got: %v", err)
	}
}

func TestLoadSchema_SingleFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{"test.thrift": `
namespace go test.pkg

enum TestEnum {
  UNKNOWN = 0;
  ACTIVE = 1;
}

struct TestStruct {
  1: string name;
  2: i32 id;
  3: TestEnum state;
}
`})

	registry := NewRegistry()
	if err := registry.LoadSchema(filepath.Join(tmpDir, "test.thrift")); err != nil {
		t.Fatalf("LoadSchema failed: %v", err)
	}

	if ns, ok := registry.Document().Namespace("go"); !ok || ns != "test.pkg" {
		t.Errorf("Expected namespace 'test.pkg', got %q", ns)
	}

	s, err := registry.GetStruct("TestStruct")
	if err != nil {
		t.Fatalf("GetStruct failed: %v", err)
	}
	if len(s.Fields) != 3 {
		t.Errorf("Expected 3 fields, got %d", len(s.Fields))
	}

	e, err := registry.GetEnum("TestEnum")
	if err != nil {
		t.Fatalf("GetEnum failed: %v", err)
	}
	if len(e.Members) != 2 {
		t.Errorf("Expected 2 members, got %d", len(e.Members))
	}

	if _, err := registry.GetStruct("TestEnum"); err == nil {
		t.Error("Expected GetStruct to reject an enum name")
	}
	if _, err := registry.GetEnum("Missing"); err == nil {
		t.Error("Expected error for a missing enum")
	}
}

func TestLoadSchema_Directory(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"file1.thrift":        `struct B { 1: A a }`,
		"subdir/file2.thrift": `struct A { 1: i64 x } enum E { X }`,
		"notthrift.txt":       "not a schema file",
	})

	registry := NewRegistry()
	if err := registry.LoadSchema(tmpDir); err != nil {
		t.Fatalf("LoadSchema failed: %v", err)
	}

	if got := len(registry.Files()); got != 2 {
		t.Errorf("Expected 2 schema files, got %d", got)
	}
	if got, want := registry.ListStructs(), []string{"A", "B"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ListStructs() = %v, want %v", got, want)
	}
	if got, want := registry.ListEnums(), []string{"E"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ListEnums() = %v, want %v", got, want)
	}

	// References across files resolve once everything is merged.
	unit, err := registry.Compile(compiler.DefaultOptions())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if unit.Struct("B").Fields[0].Mapping.Ref != "A" {
		t.Error("Expected B.a to reference A")
	}
}

func TestLoadSchema_DuplicateAcrossFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"a.thrift": `struct A {}`,
		"b.thrift": `enum A { X }`,
	})

	err := NewRegistry().LoadSchema(tmpDir)
	if err == nil || !strings.Contains(err.Error(), "duplicate declaration") {
		t.Fatalf("Expected duplicate declaration error, got: %v", err)
	}
}

func TestLoadSchema_SyntaxError(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{"bad.thrift": "struct A {\n  1 i32 x\n}"})

	err := NewRegistry().LoadSchema(tmpDir)
	var se *parser.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("Expected a SyntaxError, got: %v", err)
	}
	if se.Line != 2 {
		t.Errorf("Expected line 2, got %d", se.Line)
	}
}

func TestLoadSource(t *testing.T) {
	registry := NewRegistry()
	if err := registry.LoadSource("inline", `struct A { 1: i32 x }`); err != nil {
		t.Fatalf("LoadSource failed: %v", err)
	}
	if err := registry.LoadSource("inline2", `struct A { 1: i32 x }`); err == nil {
		t.Error("Expected duplicate declaration error")
	}

	o, err := registry.GetStruct("A")
	if err != nil {
		t.Fatal(err)
	}
	want := &schema.Field{Name: "x", ID: 1, Type: schema.Ref("i32")}
	if !reflect.DeepEqual(o.Fields[0], want) {
		t.Errorf("field = %+v, want %+v", o.Fields[0], want)
	}
}
