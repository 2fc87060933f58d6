package table

import (
	"strconv"

	"github.com/tidwall/gjson"
)

const (
	labelSeparator    = "_"
	scalarColumnLabel = "value"
	nameField         = "name"
)

// Entities returns the top level elements of a result. A non array result is a single entity and
// a missing or null result has none.
func Entities(result gjson.Result) []gjson.Result {
	if !result.Exists() || result.Type == gjson.Null {
		return nil
	}
	if result.IsArray() {
		return result.Array()
	}
	return []gjson.Result{result}
}

// EntityLabel returns the name field of an object entity, or its index.
func EntityLabel(entity gjson.Result, index int) string {
	if entity.IsObject() {
		name := entity.Get(nameField)
		if name.Exists() && name.Type != gjson.Null {
			return name.String()
		}
	}
	return strconv.Itoa(index)
}

// Flatten builds one row per entity. Nested objects and arrays become underscore joined column
// labels, columns keep their first appearance order and a scalar entity fills column "value".
func Flatten(result gjson.Result) Table {
	tableBuilder := newBuilder()
	for index, entity := range Entities(result) {
		row := tableBuilder.addRow(EntityLabel(entity, index))
		visitEntityLeaves(entity, func(label string, leaf gjson.Result) {
			tableBuilder.set(row, label, NewCell(leaf))
		})
	}
	return tableBuilder.build()
}

// visitEntityLeaves calls visit for every leaf of entity with its label relative to the entity.
func visitEntityLeaves(entity gjson.Result, visit func(label string, leaf gjson.Result)) {
	walkLeaves("", entity, func(path string, leaf gjson.Result) {
		if path == "" {
			if entity.IsObject() {
				return
			}
			path = scalarColumnLabel
		}
		visit(path, leaf)
	})
}

// walkLeaves visits leaves depth first in document order. Empty objects and arrays are leaves.
func walkLeaves(path string, value gjson.Result, visit func(path string, leaf gjson.Result)) {
	if value.IsObject() || value.IsArray() {
		isArray := value.IsArray()
		visited := false
		index := 0
		value.ForEach(func(key, child gjson.Result) bool {
			segment := key.String()
			if isArray {
				segment = strconv.Itoa(index)
			}
			index++
			visited = true
			walkLeaves(joinLabel(path, segment), child, visit)
			return true
		})
		if visited {
			return
		}
	}
	visit(path, value)
}

func joinLabel(prefix string, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + labelSeparator + segment
}
