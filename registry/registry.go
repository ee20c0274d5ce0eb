package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/anirudhraja/thriftlite/compiler"
	"github.com/anirudhraja/thriftlite/parser"
	"github.com/anirudhraja/thriftlite/schema"
)

// Registry allows us to store the schema of the thrift structs and enums. We
// look this up when we need to compile, decode or encode a struct.
type Registry struct {
	doc   *schema.Document
	files []string
	log   *zap.Logger

	// ProtoDirectories are searched, in order, for .proto imports.
	ProtoDirectories []string

	parsedProto map[string]*protoFile
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for load events.
func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// WithProtoDirectories sets the .proto import search path.
func WithProtoDirectories(dirs ...string) Option {
	return func(r *Registry) {
		r.ProtoDirectories = dirs
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		doc:         schema.NewDocument(),
		log:         zap.NewNop(),
		parsedProto: make(map[string]*protoFile),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadSchema Given a path it will recursively scan all *.thrift files inside
// it and merge their declarations into the registry.
func (r *Registry) LoadSchema(schemaPath string) error {
	// Check if the path exists
	info, err := os.Stat(schemaPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}

	// If it's a single file, process it directly
	if !info.IsDir() {
		if !strings.HasSuffix(schemaPath, ".thrift") {
			return fmt.Errorf("file %s is not a .thrift file", schemaPath)
		}
		if err := r.loadSingleFile(schemaPath); err != nil {
			return fmt.Errorf("failed to load schema file: %w", err)
		}
		return nil
	}

	// If it's a directory, walk through it recursively
	err = filepath.WalkDir(schemaPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip directories and non-thrift files
		if d.IsDir() || !strings.HasSuffix(path, ".thrift") {
			return nil
		}

		if err := r.loadSingleFile(path); err != nil {
			return fmt.Errorf("failed to load schema file %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}
	return nil
}

// loadSingleFile parses one .thrift file and merges it.
func (r *Registry) loadSingleFile(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	doc, err := parser.Parse(string(content))
	if err != nil {
		return err
	}
	return r.merge(filePath, doc)
}

// LoadSource parses schema source held in memory and merges it. name is
// only used for diagnostics.
func (r *Registry) LoadSource(name, src string) error {
	doc, err := parser.Parse(src)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return r.merge(name, doc)
}

func (r *Registry) merge(name string, doc *schema.Document) error {
	if err := r.doc.Merge(doc); err != nil {
		return err
	}
	r.files = append(r.files, name)
	r.log.Debug("loaded schema",
		zap.String("file", name),
		zap.Int("decls", len(doc.Decls)))
	return nil
}

// Document returns the merged schema document.
func (r *Registry) Document() *schema.Document {
	return r.doc
}

// Files returns the loaded files in load order.
func (r *Registry) Files() []string {
	return r.files
}

// Compile compiles every loaded declaration.
func (r *Registry) Compile(opts compiler.Options) (*compiler.Unit, error) {
	if opts.Logger == nil {
		opts.Logger = r.log
	}
	return compiler.Compile(r.doc, opts)
}

// GetStruct retrieves a struct or union definition by name
func (r *Registry) GetStruct(name string) (*schema.Object, error) {
	if decl, ok := r.doc.Lookup(name); ok {
		if o, ok := decl.(*schema.Object); ok {
			return o, nil
		}
	}
	return nil, fmt.Errorf("struct not found: %s", name)
}

// GetEnum retrieves an enum definition by name
func (r *Registry) GetEnum(name string) (*schema.Enum, error) {
	if decl, ok := r.doc.Lookup(name); ok {
		if e, ok := decl.(*schema.Enum); ok {
			return e, nil
		}
	}
	return nil, fmt.Errorf("enum not found: %s", name)
}

// ListStructs returns all registered struct and union names, sorted.
func (r *Registry) ListStructs() []string {
	var names []string
	for _, o := range r.doc.Objects() {
		names = append(names, o.Name)
	}
	sort.Strings(names)
	return names
}

// ListEnums returns all registered enum names, sorted.
func (r *Registry) ListEnums() []string {
	var names []string
	for _, e := range r.doc.Enums() {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}
