package binder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"

	"github.com/temirov/vcoctl/internal/types"
)

const (
	nullTemplateText = "null"

	errorInvalidTemplateFormat   = "%w: template is not valid JSON: %s"
	errorNonObjectTemplateFormat = "%w: template root must be an object, got %s"
	errorInvalidKindFormat       = "%w: placeholder %q: %v"
)

var placeholderPattern = regexp.MustCompile(`^\{\{\s*([A-Za-z_][A-Za-z0-9_.\-]*)\s*(?::\s*([A-Za-z]+)\s*)?(\?)?\s*\}\}$`)

// Parse compiles template text. Blank text and a literal null produce a nil template, which binds
// to an empty request body.
func Parse(text string) (*Template, error) {
	trimmedText := strings.TrimSpace(text)
	if trimmedText == "" {
		return nil, nil
	}
	cleanedText := strings.TrimSpace(string(jsonc.ToJSON([]byte(trimmedText))))
	if cleanedText == nullTemplateText {
		return nil, nil
	}
	if !gjson.Valid(cleanedText) {
		return nil, fmt.Errorf(errorInvalidTemplateFormat, types.ErrBinding, trimmedText)
	}
	parsed := gjson.Parse(cleanedText)
	if !parsed.IsObject() {
		return nil, fmt.Errorf(errorNonObjectTemplateFormat, types.ErrBinding, parsed.Type.String())
	}
	root, err := buildNode(parsed)
	if err != nil {
		return nil, err
	}
	return &Template{root: root, source: text}, nil
}

// MustParse is Parse for templates known to be valid. It panics on error.
func MustParse(text string) *Template {
	template, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return template
}

func buildNode(value gjson.Result) (Node, error) {
	switch {
	case value.IsObject():
		node := Node{Kind: NodeObject}
		var buildError error
		value.ForEach(func(key, memberValue gjson.Result) bool {
			memberNode, err := buildNode(memberValue)
			if err != nil {
				buildError = err
				return false
			}
			node.Members = append(node.Members, Member{Key: key.String(), Value: memberNode})
			return true
		})
		return node, buildError
	case value.IsArray():
		node := Node{Kind: NodeArray, Elements: []Node{}}
		for _, element := range value.Array() {
			elementNode, err := buildNode(element)
			if err != nil {
				return Node{}, err
			}
			node.Elements = append(node.Elements, elementNode)
		}
		return node, nil
	case value.Type == gjson.String:
		placeholder, isPlaceholder, err := parsePlaceholder(value.String())
		if err != nil {
			return Node{}, err
		}
		if isPlaceholder {
			return Node{Kind: NodePlaceholder, Placeholder: placeholder}, nil
		}
		return Node{Kind: NodeLiteral, Literal: value.String()}, nil
	default:
		return Node{Kind: NodeLiteral, Literal: literalValue(value)}, nil
	}
}

func parsePlaceholder(text string) (Placeholder, bool, error) {
	matches := placeholderPattern.FindStringSubmatch(text)
	if matches == nil {
		return Placeholder{}, false, nil
	}
	kind, err := types.ParseValueKind(matches[2])
	if err != nil {
		return Placeholder{}, false, fmt.Errorf(errorInvalidKindFormat, types.ErrBinding, text, err)
	}
	return Placeholder{Key: matches[1], Kind: kind, Optional: matches[3] != ""}, true, nil
}

func literalValue(value gjson.Result) any {
	switch value.Type {
	case gjson.Null:
		return nil
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		if strings.ContainsAny(value.Raw, ".eE") {
			return value.Float()
		}
		return value.Int()
	default:
		return value.Value()
	}
}
