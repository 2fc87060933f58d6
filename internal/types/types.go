// Package types defines every cross‑package data structure used by the vcoctl CLI.
package types

import (
	"fmt"
	"strings"
)

// OutputFormat selects how a rendered table is serialized.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatCSV   OutputFormat = "csv"
	FormatYAML  OutputFormat = "yaml"
)

const unsupportedFormatMessage = "unsupported output format '%s'"

// ParseOutputFormat normalizes a user supplied format name.
// An empty value selects FormatTable.
func ParseOutputFormat(value string) (OutputFormat, error) {
	normalized := OutputFormat(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatCSV, FormatYAML:
		return normalized, nil
	default:
		return "", fmt.Errorf(unsupportedFormatMessage, value)
	}
}

// SupportedFormats lists the accepted --output values.
func SupportedFormats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatCSV), string(FormatYAML)}
}

// ValueKind describes how an option value is parsed on the command line and
// how a template placeholder formats it in a request body.
type ValueKind string

const (
	KindString   ValueKind = "string"
	KindInt      ValueKind = "int"
	KindDatetime ValueKind = "datetime"
	KindFlag     ValueKind = "flag"
	KindSecret   ValueKind = "secret"
)

const unsupportedKindMessage = "unsupported value kind '%s'"

// ParseValueKind validates a kind name. An empty value selects KindString.
func ParseValueKind(value string) (ValueKind, error) {
	normalized := ValueKind(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case "":
		return KindString, nil
	case KindString, KindInt, KindDatetime, KindFlag, KindSecret:
		return normalized, nil
	default:
		return "", fmt.Errorf(unsupportedKindMessage, value)
	}
}

// Arguments maps an option destination key to its typed value.
// Strings are string, int and datetime values are int64 (datetimes in epoch
// milliseconds) and flags are bool.
type Arguments map[string]any

// Lookup returns the value stored under key.
func (arguments Arguments) Lookup(key string) (any, bool) {
	if arguments == nil {
		return nil, false
	}
	value, exists := arguments[key]
	return value, exists
}

// String returns the string value stored under key or an empty string.
func (arguments Arguments) String(key string) string {
	value, exists := arguments.Lookup(key)
	if !exists || value == nil {
		return ""
	}
	if text, ok := value.(string); ok {
		return text
	}
	return fmt.Sprint(value)
}

// Bool returns the boolean value stored under key, or fallback when absent.
func (arguments Arguments) Bool(key string, fallback bool) bool {
	value, exists := arguments.Lookup(key)
	if !exists {
		return fallback
	}
	flag, ok := value.(bool)
	if !ok {
		return fallback
	}
	return flag
}

// Well-known destination keys shared by the registry, the dispatcher and the table transformer.
const (
	ArgumentName     = "name"
	ArgumentFilters  = "filters"
	ArgumentSearch   = "search"
	ArgumentRowsName = "rows_name"
	ArgumentStats    = "stats"
	ArgumentUsername = "username"
	ArgumentPassword = "password"
	ArgumentOperator = "operator"
)
