// Package schema generates Go types from an Admin API SDL document.
package schema

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// Options controls what Generate emits.
type Options struct {
	// Package is the package name of the generated file.
	Package string
	// Types restricts generation to the named object types. Enums referenced
	// by their fields are always included. Empty means every object type.
	Types []string
}

// Generate parses an SDL document and returns a gofmt-formatted Go source
// file containing structs for the selected object types and const blocks
// for their enums.
func Generate(sdl []byte, opts Options) ([]byte, error) {
	if opts.Package == "" {
		opts.Package = "schema"
	}

	doc, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: string(sdl)})
	if err != nil {
		return nil, fmt.Errorf("parse sdl: %w", err)
	}

	selected := make(map[string]bool, len(opts.Types))
	for _, t := range opts.Types {
		selected[t] = true
	}

	var objects []*ast.Definition
	enums := make(map[string]*ast.Definition)

	for name, def := range doc.Types {
		if def.BuiltIn || strings.HasPrefix(name, "__") {
			continue
		}
		if def.Kind != ast.Object {
			continue
		}
		if name == "Query" || name == "Mutation" || name == "Subscription" {
			continue
		}
		if len(selected) > 0 && !selected[name] {
			continue
		}
		objects = append(objects, def)

		for _, field := range def.Fields {
			if ref := doc.Types[field.Type.Name()]; ref != nil && ref.Kind == ast.Enum {
				enums[ref.Name] = ref
			}
		}
	}

	if len(selected) > 0 {
		for name := range selected {
			if def := doc.Types[name]; def == nil {
				return nil, fmt.Errorf("type %s not found in schema", name)
			}
		}
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("no object types to generate")
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	enumNames := make([]string, 0, len(enums))
	for name := range enums {
		enumNames = append(enumNames, name)
	}
	sort.Strings(enumNames)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by shopify-toolkit schema generate. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", opts.Package)

	for _, name := range enumNames {
		writeEnum(&buf, enums[name])
	}
	for _, def := range objects {
		writeStruct(&buf, doc, def)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return formatted, nil
}

func writeEnum(buf *bytes.Buffer, def *ast.Definition) {
	if def.Description != "" {
		writeDoc(buf, def.Name, def.Description)
	}
	fmt.Fprintf(buf, "type %s string\n\n", def.Name)
	fmt.Fprintf(buf, "const (\n")
	for _, v := range def.EnumValues {
		fmt.Fprintf(buf, "\t%s%s %s = %q\n", def.Name, exportName(v.Name), def.Name, v.Name)
	}
	fmt.Fprintf(buf, ")\n\n")
}

func writeStruct(buf *bytes.Buffer, doc *ast.Schema, def *ast.Definition) {
	if def.Description != "" {
		writeDoc(buf, def.Name, def.Description)
	}
	fmt.Fprintf(buf, "type %s struct {\n", def.Name)
	for _, field := range def.Fields {
		if strings.HasPrefix(field.Name, "__") {
			continue
		}
		fmt.Fprintf(buf, "\t%s %s `json:%q`\n",
			exportName(field.Name), goType(doc, field.Type), field.Name)
	}
	fmt.Fprintf(buf, "}\n\n")
}

// goType maps a GraphQL type reference to its Go representation. Nullable
// named types become pointers so absent values survive a round trip.
func goType(doc *ast.Schema, t *ast.Type) string {
	if t.Elem != nil {
		return "[]" + goType(doc, t.Elem)
	}

	var name string
	switch t.NamedType {
	case "String", "ID", "DateTime", "URL", "Decimal", "UnsignedInt64":
		name = "string"
	case "Int":
		name = "int"
	case "Float":
		name = "float64"
	case "Boolean":
		name = "bool"
	case "JSON":
		return "map[string]any"
	default:
		if def := doc.Types[t.NamedType]; def != nil {
			switch def.Kind {
			case ast.Enum, ast.Object, ast.InputObject:
				name = def.Name
			default:
				name = "string"
			}
		} else {
			name = "string"
		}
	}

	if !t.NonNull && name != "string" {
		return "*" + name
	}
	return name
}

// exportName turns a GraphQL field or enum value name into an exported Go
// identifier: createdAt -> CreatedAt, ACCESS_DENIED -> AccessDenied.
func exportName(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if p == strings.ToUpper(p) {
			p = strings.ToLower(p)
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	name := b.String()
	if strings.HasSuffix(strings.ToLower(s), "id") && strings.HasSuffix(name, "Id") {
		name = name[:len(name)-2] + "ID"
	}
	if strings.HasSuffix(name, "Url") {
		name = name[:len(name)-3] + "URL"
	}
	return name
}

func writeDoc(buf *bytes.Buffer, name, description string) {
	line := strings.Split(strings.TrimSpace(description), "\n")[0]
	if !strings.HasPrefix(line, name) {
		line = name + " is " + lowerFirst(line)
	}
	fmt.Fprintf(buf, "// %s\n", line)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
