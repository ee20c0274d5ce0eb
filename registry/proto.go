package registry

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	protoparser "github.com/yoheimuta/go-protoparser/v4"
	protoparserparser "github.com/yoheimuta/go-protoparser/v4/parser"
	"go.uber.org/zap"

	"github.com/anirudhraja/thriftlite/schema"
)

// protoFile is one parsed .proto file.
type protoFile struct {
	path    string
	pkg     string
	body    *protoparserparser.Proto
	imports []string
}

// protoScalars maps proto scalar types onto schema primitives. Unsigned
// 32-bit values widen to i64 so their whole range fits.
var protoScalars = map[string]schema.Primitive{
	"double":   schema.TypeDouble,
	"float":    schema.TypeDouble,
	"int32":    schema.TypeI32,
	"sint32":   schema.TypeI32,
	"sfixed32": schema.TypeI32,
	"int64":    schema.TypeI64,
	"sint64":   schema.TypeI64,
	"sfixed64": schema.TypeI64,
	"uint32":   schema.TypeI64,
	"fixed32":  schema.TypeI64,
	"uint64":   schema.TypeI64,
	"fixed64":  schema.TypeI64,
	"bool":     schema.TypeBool,
	"string":   schema.TypeString,
	"bytes":    schema.TypeBinary,
}

// LoadProto imports a .proto file and everything it imports. Messages
// become structs (nested messages get dotted names), repeated fields become
// lists, oneof members become optional fields.
func (r *Registry) LoadProto(protoPath string) error {
	files, err := r.getAllProtoInfo(protoPath)
	if err != nil {
		return fmt.Errorf("failed to load proto %s: %w", protoPath, err)
	}

	// Pass 1: every message and enum by fully qualified name.
	entities := make(map[string]struct{})
	for _, f := range files {
		pf := r.parsedProto[f]
		for _, body := range pf.body.ProtoBody {
			switch b := body.(type) {
			case *protoparserparser.Message:
				registerMessageNames(joinName(pf.pkg, b.MessageName), b, entities)
			case *protoparserparser.Enum:
				entities[joinName(pf.pkg, b.EnumName)] = struct{}{}
			}
		}
	}

	// Pass 2: build declarations with resolved references.
	root := r.parsedProto[files[0]]
	conv := &protoConverter{rootPkg: root.pkg, entities: entities, doc: schema.NewDocument()}
	for _, f := range files {
		pf := r.parsedProto[f]
		if err := conv.convertFile(pf.pkg, pf.body); err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
	}
	doc := conv.doc
	if root.pkg != "" {
		doc.Namespaces = append(doc.Namespaces, &schema.Namespace{Scope: "go", Value: root.pkg})
	}

	if err := r.merge(files[0], doc); err != nil {
		return err
	}
	r.log.Debug("imported proto",
		zap.String("file", files[0]),
		zap.Int("files", len(files)))
	return nil
}

// getAllProtoInfo uses DFS to fetch all the files from all directories passed and stores relevant proto files
func (r *Registry) getAllProtoInfo(protoFilePath string) ([]string, error) {
	visited := make(map[string]struct{}) // to make sure we don't end up in a loop
	result := make([]string, 0)

	var dfs func(protoFilePath string) error
	dfs = func(protoFilePath string) error {
		if _, ok := visited[protoFilePath]; ok {
			return nil
		}
		visited[protoFilePath] = struct{}{}
		result = append(result, protoFilePath)

		protoBytes, err := os.ReadFile(protoFilePath)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		parsedBody, err := protoparser.Parse(bytes.NewBuffer(protoBytes), protoparser.WithFilename(filepath.Base(protoFilePath)))
		if err != nil {
			return err
		}

		pf := &protoFile{path: protoFilePath, body: parsedBody}
		r.parsedProto[protoFilePath] = pf
		for _, body := range parsedBody.ProtoBody {
			switch b := body.(type) {
			case *protoparserparser.Package:
				pf.pkg = b.Name
			case *protoparserparser.Import: // resolve relation for each imports
				importPath := strings.Trim(b.Location, `"`)
				if strings.HasPrefix(importPath, "google/protobuf") {
					continue
				}
				fullImportPath, err := r.findIfProtoExists(importPath, filepath.Dir(protoFilePath))
				if err != nil {
					return err
				}
				pf.imports = append(pf.imports, fullImportPath)
				if err = dfs(fullImportPath); err != nil {
					return err
				}
			}
		}
		return nil
	}

	// run dfs on the input proto path
	protoPath, err := r.findIfProtoExists(protoFilePath, "")
	if err != nil {
		return nil, err
	}
	if err := dfs(protoPath); err != nil {
		return nil, err
	}
	return result, nil
}

// findIfProtoExists looks for protoPath as given, then under each import
// directory, then next to the importing file.
func (r *Registry) findIfProtoExists(protoPath, from string) (string, error) {
	protoPath = strings.Trim(protoPath, `"`)
	if !strings.HasSuffix(protoPath, ".proto") {
		return "", fmt.Errorf("%s is not a .proto file", protoPath)
	}

	candidates := []string{protoPath}
	if !filepath.IsAbs(protoPath) {
		candidates = candidates[:0]
		for _, dir := range r.ProtoDirectories {
			candidates = append(candidates, path.Join(dir, protoPath))
		}
		if from != "" {
			candidates = append(candidates, path.Join(from, protoPath))
		} else {
			candidates = append(candidates, protoPath)
		}
	}

	var err error
	for _, p := range candidates {
		if _, err = os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("path does not exist: %s: %w", protoPath, err)
}

func registerMessageNames(fullName string, msg *protoparserparser.Message, entities map[string]struct{}) {
	entities[fullName] = struct{}{}
	for _, body := range msg.MessageBody {
		switch b := body.(type) {
		case *protoparserparser.Message:
			registerMessageNames(fullName+"."+b.MessageName, b, entities)
		case *protoparserparser.Enum:
			entities[fullName+"."+b.EnumName] = struct{}{}
		}
	}
}

// protoConverter turns proto declarations into schema declarations.
// Declarations in the root file's package drop the package prefix; those
// from other packages keep their fully qualified name.
type protoConverter struct {
	rootPkg  string
	entities map[string]struct{}
	doc      *schema.Document
}

func (c *protoConverter) convertFile(pkg string, body *protoparserparser.Proto) error {
	for _, v := range body.ProtoBody {
		switch b := v.(type) {
		case *protoparserparser.Message:
			if err := c.convertMessage(joinName(pkg, b.MessageName), b); err != nil {
				return err
			}
		case *protoparserparser.Enum:
			if err := c.convertEnum(joinName(pkg, b.EnumName), b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *protoConverter) convertEnum(full string, e *protoparserparser.Enum) error {
	name := c.localName(full)
	out := &schema.Enum{Name: name}
	for _, body := range e.EnumBody {
		f, ok := body.(*protoparserparser.EnumField)
		if !ok {
			continue
		}
		v, err := strconv.ParseInt(f.Number, 0, 32)
		if err != nil {
			return fmt.Errorf("enum %s.%s: invalid value %q", name, f.Ident, f.Number)
		}
		out.Members = append(out.Members, &schema.EnumMember{Name: f.Ident, Value: int32(v)})
	}
	return c.doc.Add(out)
}

func (c *protoConverter) convertMessage(full string, msg *protoparserparser.Message) error {
	name := c.localName(full)
	out := &schema.Object{Name: name, Kind: schema.KindStruct}
	scope := full

	add := func(fieldName, number string, ref schema.TypeRef, required bool, opts []*protoparserparser.FieldOption) error {
		id, err := fieldID(number)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", name, fieldName, err)
		}
		f := &schema.Field{Name: fieldName, ID: id, Type: ref, Required: required}
		for _, opt := range opts {
			if opt.OptionName == "default" {
				f.Default = protoDefault(opt.Constant)
			}
		}
		out.Fields = append(out.Fields, f)
		return nil
	}

	for _, body := range msg.MessageBody {
		switch b := body.(type) {
		case *protoparserparser.Field:
			ref, err := c.resolve(b.Type, scope)
			if err != nil {
				return err
			}
			if b.IsRepeated {
				ref = schema.Template(schema.TemplateList, ref)
			}
			if err := add(b.FieldName, b.FieldNumber, ref, b.IsRequired, b.FieldOptions); err != nil {
				return err
			}

		case *protoparserparser.MapField:
			key, err := c.resolve(b.KeyType, scope)
			if err != nil {
				return err
			}
			value, err := c.resolve(b.Type, scope)
			if err != nil {
				return err
			}
			ref := schema.Template(schema.TemplateMap, key, value)
			if err := add(b.MapName, b.FieldNumber, ref, false, b.FieldOptions); err != nil {
				return err
			}

		case *protoparserparser.Oneof:
			for _, of := range b.OneofFields {
				ref, err := c.resolve(of.Type, scope)
				if err != nil {
					return err
				}
				if err := add(of.FieldName, of.FieldNumber, ref, false, of.FieldOptions); err != nil {
					return err
				}
			}

		case *protoparserparser.Message:
			if err := c.convertMessage(full+"."+b.MessageName, b); err != nil {
				return err
			}

		case *protoparserparser.Enum:
			if err := c.convertEnum(full+"."+b.EnumName, b); err != nil {
				return err
			}
		}
	}
	return c.doc.Add(out)
}

// resolve maps a proto type name onto a schema type reference.
func (c *protoConverter) resolve(typeName, scope string) (schema.TypeRef, error) {
	if p, ok := protoScalars[typeName]; ok {
		return schema.Ref(string(p)), nil
	}
	full, err := getReferencedType(typeName, scope, c.entities)
	if err != nil {
		return schema.TypeRef{}, err
	}
	return schema.Ref(c.localName(full)), nil
}

// localName strips the root package from a fully qualified name.
func (c *protoConverter) localName(full string) string {
	if c.rootPkg != "" && strings.HasPrefix(full, c.rootPkg+".") {
		return strings.TrimPrefix(full, c.rootPkg+".")
	}
	return full
}

func fieldID(number string) (int16, error) {
	n, err := strconv.ParseInt(number, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid field number %q", number)
	}
	if n < 1 || n > 32767 {
		return 0, fmt.Errorf("field number %d does not fit a 16-bit field id", n)
	}
	return int16(n), nil
}

// protoDefault converts a proto2 [default = ...] constant into a literal.
// Identifiers other than true and false name enum members.
func protoDefault(constant string) *schema.Literal {
	switch constant {
	case "true":
		return schema.IntLiteral(1)
	case "false":
		return schema.IntLiteral(0)
	}
	if s, err := strconv.Unquote(constant); err == nil {
		return schema.StringLiteral(s)
	}
	if n, err := strconv.ParseInt(constant, 0, 64); err == nil {
		return schema.IntLiteral(n)
	}
	if f, err := strconv.ParseFloat(constant, 64); err == nil {
		return &schema.Literal{Kind: schema.LiteralFloat, Float: f}
	}
	return schema.StringLiteral(constant)
}

func joinName(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

/*
This helper function will return the entity for any referenced type ,
Be it top/file,nested or imported entities.If not found will return an error
Ref - https://github.com/protocolbuffers/protobuf/blob/b7a5772caf08d62a20fd1bca258f501fa4db022c/src/google/protobuf/descriptor.proto#L186-L191
*/
func getReferencedType(typeName, prefix string, allResolvedEntities map[string]struct{}) (string, error) {
	// check if fully qualifed prefixed by dot
	if strings.HasPrefix(typeName, ".") {
		return getFullyQualifiedType(typeName, allResolvedEntities)
	}
	// try resolving from inner entities up till the parent package
	if result, ok := splitNameAndCheck(typeName, prefix, allResolvedEntities); ok {
		return result, nil
	}
	//  check if the entity is referenced to other packages via packageName
	if _, ok := allResolvedEntities[typeName]; ok {
		return typeName, nil
	}
	return "", fmt.Errorf("unable to resolve type name: %s", typeName)
}

// splitNameAndCheck splits the prefixName and tries to append the typeName and find the entity for resolution
// it also tries the find the entities defined using relative path
func splitNameAndCheck(typeName, prefix string, allResolvedEntities map[string]struct{}) (string, bool) {
	prefixSplit := strings.Split(prefix, ".")

	for len(prefixSplit) > 0 && prefixSplit[0] != "" {
		entityName := strings.Join(prefixSplit, ".") + "." + typeName
		if _, ok := allResolvedEntities[entityName]; ok {
			return entityName, true
		}
		// Omit the last element in each iteration as we go level above to outer entity
		prefixSplit = prefixSplit[:len(prefixSplit)-1]
	}
	return "", false
}

func getFullyQualifiedType(typeName string, allResolvedEntities map[string]struct{}) (string, error) {
	typeName = strings.TrimPrefix(typeName, ".")
	if _, ok := allResolvedEntities[typeName]; ok {
		return typeName, nil
	}
	return "", fmt.Errorf("unable to resolve fully qualified type name: %s", typeName)
}
