package table

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

const (
	missingDisplayText = "NaN"
	jsonNullText       = "null"
)

// Cell is one value of a table. Cells keep the JSON type of the source value; a missing cell is
// distinct from an empty string.
type Cell struct {
	value gjson.Result
}

// NewCell wraps a JSON value. JSON null is treated as missing.
func NewCell(value gjson.Result) Cell {
	return Cell{value: value}
}

// MissingCell returns the explicit no-value marker.
func MissingCell() Cell {
	return Cell{}
}

// NumberCell builds a numeric cell. NaN and infinities are missing.
func NumberCell(number float64) Cell {
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return MissingCell()
	}
	return Cell{value: gjson.Result{Type: gjson.Number, Num: number, Raw: strconv.FormatFloat(number, 'f', -1, 64)}}
}

// StringCell builds a string cell.
func StringCell(text string) Cell {
	encoded, _ := json.Marshal(text)
	return Cell{value: gjson.Result{Type: gjson.String, Str: text, Raw: string(encoded)}}
}

// Missing reports whether the cell carries no value.
func (cell Cell) Missing() bool {
	return !cell.value.Exists() || cell.value.Type == gjson.Null
}

// Value returns the wrapped JSON value.
func (cell Cell) Value() gjson.Result {
	return cell.value
}

// IsNumber reports whether the cell holds a JSON number.
func (cell Cell) IsNumber() bool {
	return !cell.Missing() && cell.value.Type == gjson.Number
}

// Text returns the plain text form used by search, csv and the table renderer. Missing cells
// are empty.
func (cell Cell) Text() string {
	if cell.Missing() {
		return ""
	}
	switch cell.value.Type {
	case gjson.String:
		return cell.value.Str
	case gjson.JSON:
		return string(pretty.Ugly([]byte(cell.value.Raw)))
	default:
		return cell.value.Raw
	}
}

// JSON returns the cell encoded as JSON. Missing cells encode as null.
func (cell Cell) JSON() string {
	if cell.Missing() {
		return jsonNullText
	}
	if cell.value.Type == gjson.JSON {
		return string(pretty.Ugly([]byte(cell.value.Raw)))
	}
	return cell.value.Raw
}

func displayText(cell Cell) string {
	if cell.Missing() {
		return missingDisplayText
	}
	return cell.Text()
}
