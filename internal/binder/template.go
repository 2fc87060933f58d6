// Package binder turns declarative request templates into request bodies.
//
// A template is JSONC text. Any JSON string whose whole content is a placeholder of the form
// {{key}}, {{key:kind}} or {{key:kind?}} is replaced with the typed argument stored under key;
// every other value is copied literally. Templates are parsed once into a small tree so binding
// never re-parses text.
package binder

import "github.com/temirov/vcoctl/internal/types"

// NodeKind enumerates template tree node variants.
type NodeKind int

const (
	NodeLiteral NodeKind = iota
	NodePlaceholder
	NodeObject
	NodeArray
)

// Placeholder references a request argument.
type Placeholder struct {
	Key      string
	Kind     types.ValueKind
	Optional bool
}

// Member is one key of an object node. Members keep their template order.
type Member struct {
	Key   string
	Value Node
}

// Node is one element of a parsed template.
type Node struct {
	Kind        NodeKind
	Literal     any
	Placeholder Placeholder
	Members     []Member
	Elements    []Node
}

// Template is a parsed parameter template. The root is always an object node.
type Template struct {
	root   Node
	source string
}

// Source returns the template text the template was parsed from.
func (template *Template) Source() string {
	if template == nil {
		return ""
	}
	return template.source
}

// Placeholders lists every placeholder in document order.
func (template *Template) Placeholders() []Placeholder {
	if template == nil {
		return nil
	}
	var placeholders []Placeholder
	collectPlaceholders(template.root, &placeholders)
	return placeholders
}

func collectPlaceholders(node Node, placeholders *[]Placeholder) {
	switch node.Kind {
	case NodePlaceholder:
		*placeholders = append(*placeholders, node.Placeholder)
	case NodeObject:
		for _, member := range node.Members {
			collectPlaceholders(member.Value, placeholders)
		}
	case NodeArray:
		for _, element := range node.Elements {
			collectPlaceholders(element, placeholders)
		}
	}
}
