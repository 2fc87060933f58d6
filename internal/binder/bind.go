package binder

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/temirov/vcoctl/internal/types"
)

const (
	errorMissingArgumentFormat = "%w: missing argument %q"
	errorCoerceArgumentFormat  = "%w: argument %q is not a valid %s: %v"
)

// Bind builds a request body from template and arguments. Binding never mutates its inputs and
// produces identical bodies for identical inputs.
func Bind(template *Template, arguments types.Arguments) (map[string]any, error) {
	if template == nil {
		return map[string]any{}, nil
	}
	body, _, err := bindNode(template.root, arguments)
	if err != nil {
		return nil, err
	}
	requestBody, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf(errorNonObjectTemplateFormat, types.ErrBinding, fmt.Sprintf("%T", body))
	}
	return requestBody, nil
}

// bindNode returns the bound value and whether it is present. Only optional placeholders without
// an argument are absent.
func bindNode(node Node, arguments types.Arguments) (any, bool, error) {
	switch node.Kind {
	case NodeObject:
		object := make(map[string]any, len(node.Members))
		for _, member := range node.Members {
			value, present, err := bindNode(member.Value, arguments)
			if err != nil {
				return nil, false, err
			}
			if present {
				object[member.Key] = value
			}
		}
		return object, true, nil
	case NodeArray:
		elements := make([]any, 0, len(node.Elements))
		for _, element := range node.Elements {
			value, _, err := bindNode(element, arguments)
			if err != nil {
				return nil, false, err
			}
			elements = append(elements, value)
		}
		return elements, true, nil
	case NodePlaceholder:
		return bindPlaceholder(node.Placeholder, arguments)
	default:
		return node.Literal, true, nil
	}
}

func bindPlaceholder(placeholder Placeholder, arguments types.Arguments) (any, bool, error) {
	argument, exists := arguments.Lookup(placeholder.Key)
	if !exists || argument == nil {
		if placeholder.Optional {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf(errorMissingArgumentFormat, types.ErrBinding, placeholder.Key)
	}
	value, err := FormatValue(placeholder.Kind, argument)
	if err != nil {
		return nil, false, fmt.Errorf(errorCoerceArgumentFormat, types.ErrBinding, placeholder.Key, placeholder.Kind, err)
	}
	return value, true, nil
}

// FormatValue coerces an argument to the Go type its kind is encoded as: string and secret
// values become strings, int values int64, datetime values epoch milliseconds and flags bool.
func FormatValue(kind types.ValueKind, value any) (any, error) {
	switch kind {
	case types.KindInt:
		return cast.ToInt64E(value)
	case types.KindDatetime:
		return EpochMilliseconds(value)
	case types.KindFlag:
		return cast.ToBoolE(value)
	default:
		return cast.ToStringE(value)
	}
}

// EpochMilliseconds converts an epoch integer, a time.Time or a date string to epoch milliseconds.
// Date strings without a zone are read as UTC.
func EpochMilliseconds(value any) (int64, error) {
	switch typedValue := value.(type) {
	case time.Time:
		return typedValue.UnixMilli(), nil
	case string:
		trimmedValue := strings.TrimSpace(typedValue)
		if epoch, err := strconv.ParseInt(trimmedValue, 10, 64); err == nil {
			return epoch, nil
		}
		parsedTime, err := cast.ToTimeInDefaultLocationE(trimmedValue, time.UTC)
		if err != nil {
			return 0, err
		}
		return parsedTime.UnixMilli(), nil
	default:
		return cast.ToInt64E(value)
	}
}
