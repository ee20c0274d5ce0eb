package registry

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/anirudhraja/thriftlite/compiler"
	"github.com/anirudhraja/thriftlite/schema"
)

const orderProto = `syntax = "proto2";
package acme.shop;

import "common.proto";

message Order {
  required int64 id = 1;
  repeated Item items = 2;
  map<string, int32> tags = 3;
  optional Status status = 4 [default = ACTIVE];
  oneof payment {
    string card = 5;
    bytes token = 6;
  }
  optional acme.common.Money total = 7;
  optional uint32 count = 8 [default = 3];

  message Item {
    optional string sku = 1;
    optional float price = 2;
  }
}

enum Status {
  UNKNOWN = 0;
  ACTIVE = 1;
}
`

const commonProto = `syntax = "proto3";
package acme.common;

message Money {
  int64 units = 1;
  string currency = 2;
}
`

func TestLoadProto(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"order.proto":  orderProto,
		"common.proto": commonProto,
	})

	registry := NewRegistry()
	if err := registry.LoadProto(filepath.Join(tmpDir, "order.proto")); err != nil {
		t.Fatalf("LoadProto failed: %v", err)
	}

	if got, want := registry.ListStructs(), []string{"Order", "Order.Item", "acme.common.Money"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ListStructs() = %v, want %v", got, want)
	}
	if got, want := registry.ListEnums(), []string{"Status"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ListEnums() = %v, want %v", got, want)
	}
	if ns, _ := registry.Document().Namespace("go"); ns != "acme.shop" {
		t.Errorf("Expected go namespace acme.shop, got %q", ns)
	}

	order, err := registry.GetStruct("Order")
	if err != nil {
		t.Fatal(err)
	}
	want := []*schema.Field{
		{Name: "id", ID: 1, Type: schema.Ref("i64"), Required: true},
		{Name: "items", ID: 2, Type: schema.Template("list", schema.Ref("Order.Item"))},
		{Name: "tags", ID: 3, Type: schema.Template("map", schema.Ref("string"), schema.Ref("i32"))},
		{Name: "status", ID: 4, Type: schema.Ref("Status"), Default: schema.StringLiteral("ACTIVE")},
		{Name: "card", ID: 5, Type: schema.Ref("string")},
		{Name: "token", ID: 6, Type: schema.Ref("binary")},
		{Name: "total", ID: 7, Type: schema.Ref("acme.common.Money")},
		{Name: "count", ID: 8, Type: schema.Ref("i64"), Default: schema.IntLiteral(3)},
	}
	if len(order.Fields) != len(want) {
		t.Fatalf("Expected %d fields, got %d", len(want), len(order.Fields))
	}
	for i, f := range order.Fields {
		if !reflect.DeepEqual(f, want[i]) {
			t.Errorf("field %d = %+v, want %+v", i, f, want[i])
		}
	}

	item, err := registry.GetStruct("Order.Item")
	if err != nil {
		t.Fatal(err)
	}
	if item.Fields[1].Type.Name != "double" {
		t.Errorf("Expected float to map to double, got %s", item.Fields[1].Type)
	}

	unit, err := registry.Compile(compiler.DefaultOptions())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	status := unit.Struct("Order").FieldByName("status")
	if status.Default != int32(1) {
		t.Errorf("Expected status default 1, got %v", status.Default)
	}
}

func TestLoadProto_ImportDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"src/order.proto":   orderProto,
		"deps/common.proto": commonProto,
	})

	registry := NewRegistry(WithProtoDirectories(filepath.Join(tmpDir, "deps")))
	if err := registry.LoadProto(filepath.Join(tmpDir, "src", "order.proto")); err != nil {
		t.Fatalf("LoadProto failed: %v", err)
	}
	if _, err := registry.GetStruct("acme.common.Money"); err != nil {
		t.Error(err)
	}

	err := NewRegistry().LoadProto(filepath.Join(tmpDir, "src", "order.proto"))
	if err == nil || !strings.Contains(err.Error(), "path does not exist") {
		t.Errorf("Expected missing import error, got: %v", err)
	}
}

func TestLoadProto_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "unresolved type",
			content: `syntax = "proto3"; message A { Missing m = 1; }`,
			want:    "unable to resolve type name: Missing",
		},
		{
			name:    "field number too large",
			content: `syntax = "proto3"; message A { int32 big = 40000; }`,
			want:    "does not fit a 16-bit field id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			writeFiles(t, tmpDir, map[string]string{"a.proto": tt.content})

			err := NewRegistry().LoadProto(filepath.Join(tmpDir, "a.proto"))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestGetReferencedType(t *testing.T) {
	entities := map[string]struct{}{
		"a.b.Outer":       {},
		"a.b.Outer.Inner": {},
		"a.Top":           {},
		"other.Thing":     {},
	}

	tests := []struct {
		typeName, prefix, want string
	}{
		{"Inner", "a.b.Outer", "a.b.Outer.Inner"},
		{"Outer", "a.b.Outer.Inner", "a.b.Outer"},
		{"Top", "a.b.Outer", "a.Top"},
		{"other.Thing", "a.b.Outer", "other.Thing"},
		{".a.Top", "x.y", "a.Top"},
	}
	for _, tt := range tests {
		got, err := getReferencedType(tt.typeName, tt.prefix, entities)
		if err != nil {
			t.Errorf("getReferencedType(%q, %q) failed: %v", tt.typeName, tt.prefix, err)
			continue
		}
		if got != tt.want {
			t.Errorf("getReferencedType(%q, %q) = %q, want %q", tt.typeName, tt.prefix, got, tt.want)
		}
	}

	if _, err := getReferencedType(".Inner", "a.b.Outer", entities); err == nil {
		t.Error("Expected error for an unknown fully qualified name")
	}
}
