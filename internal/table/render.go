package table

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lipglosstable "github.com/charmbracelet/lipgloss/table"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"

	"github.com/temirov/vcoctl/internal/types"
)

const (
	yamlTagString = "!!str"
	yamlTagInt    = "!!int"
	yamlTagFloat  = "!!float"
	yamlTagBool   = "!!bool"
	yamlTagNull   = "!!null"

	errorWriteCSVFormat  = "write csv: %w"
	errorWriteYAMLFormat = "write yaml: %w"
	errorUnknownFormat   = "unsupported output format '%s'"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Render serializes view in format. JSON and YAML documents map every column label to an object
// of row label to value; CSV starts with a header row. Width limits the table format when
// positive.
func Render(view Table, format types.OutputFormat, width int) (string, error) {
	switch format {
	case types.FormatTable, "":
		return renderTable(view, width), nil
	case types.FormatJSON:
		return renderJSON(view), nil
	case types.FormatCSV:
		return renderCSV(view)
	case types.FormatYAML:
		return renderYAML(view)
	default:
		return "", fmt.Errorf(errorUnknownFormat, format)
	}
}

// RenderLabels serializes a list of entity labels in format.
func RenderLabels(labels []string, format types.OutputFormat) (string, error) {
	switch format {
	case types.FormatTable, "":
		return strings.Join(labels, "\n"), nil
	case types.FormatJSON:
		if labels == nil {
			labels = []string{}
		}
		encoded, err := json.Marshal(labels)
		if err != nil {
			return "", err
		}
		return prettyJSON(encoded), nil
	case types.FormatCSV:
		records := make([][]string, 0, len(labels))
		for _, label := range labels {
			records = append(records, []string{label})
		}
		return writeCSV(records)
	case types.FormatYAML:
		sequence := &yaml.Node{Kind: yaml.SequenceNode}
		for _, label := range labels {
			sequence.Content = append(sequence.Content, stringNode(label))
		}
		return writeYAML(sequence)
	default:
		return "", fmt.Errorf(errorUnknownFormat, format)
	}
}

func renderTable(view Table, width int) string {
	if view.Empty() {
		return ""
	}
	headers := append([]string{""}, view.ColumnLabels...)
	rows := make([][]string, 0, len(view.RowLabels))
	for row, label := range view.RowLabels {
		record := []string{label}
		for column := range view.ColumnLabels {
			record = append(record, displayText(view.Cell(row, column)))
		}
		rows = append(rows, record)
	}
	rendered := lipglosstable.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, column int) lipgloss.Style {
			if row == lipglosstable.HeaderRow || column == 0 {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	output := rendered.String()
	if width > 0 && lipgloss.Width(output) > width {
		output = rendered.Width(width).String()
	}
	return output
}

func renderJSON(view Table) string {
	var buffer bytes.Buffer
	buffer.WriteByte('{')
	for column, columnLabel := range view.ColumnLabels {
		if column > 0 {
			buffer.WriteByte(',')
		}
		writeJSONString(&buffer, columnLabel)
		buffer.WriteString(":{")
		for row, rowLabel := range view.RowLabels {
			if row > 0 {
				buffer.WriteByte(',')
			}
			writeJSONString(&buffer, rowLabel)
			buffer.WriteByte(':')
			buffer.WriteString(view.Cell(row, column).JSON())
		}
		buffer.WriteByte('}')
	}
	buffer.WriteByte('}')
	return prettyJSON(buffer.Bytes())
}

func writeJSONString(buffer *bytes.Buffer, text string) {
	encoded, _ := json.Marshal(text)
	buffer.Write(encoded)
}

func prettyJSON(document []byte) string {
	return strings.TrimRight(string(pretty.Pretty(document)), "\n")
}

func renderCSV(view Table) (string, error) {
	if view.Empty() {
		return "", nil
	}
	records := make([][]string, 0, len(view.RowLabels)+1)
	records = append(records, append([]string{""}, view.ColumnLabels...))
	for row, label := range view.RowLabels {
		record := []string{label}
		for column := range view.ColumnLabels {
			record = append(record, view.Cell(row, column).Text())
		}
		records = append(records, record)
	}
	return writeCSV(records)
}

func writeCSV(records [][]string) (string, error) {
	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)
	if err := writer.WriteAll(records); err != nil {
		return "", fmt.Errorf(errorWriteCSVFormat, err)
	}
	return strings.TrimRight(buffer.String(), "\n"), nil
}

func renderYAML(view Table) (string, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for column, columnLabel := range view.ColumnLabels {
		rowsNode := &yaml.Node{Kind: yaml.MappingNode}
		for row, rowLabel := range view.RowLabels {
			rowsNode.Content = append(rowsNode.Content, stringNode(rowLabel), cellNode(view.Cell(row, column)))
		}
		root.Content = append(root.Content, stringNode(columnLabel), rowsNode)
	}
	return writeYAML(root)
}

func writeYAML(node *yaml.Node) (string, error) {
	if len(node.Content) == 0 {
		node.Style = yaml.FlowStyle
	}
	encoded, err := yaml.Marshal(node)
	if err != nil {
		return "", fmt.Errorf(errorWriteYAMLFormat, err)
	}
	return strings.TrimRight(string(encoded), "\n"), nil
}

func stringNode(text string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: yamlTagString, Value: text}
}

func cellNode(cell Cell) *yaml.Node {
	if cell.Missing() {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: yamlTagNull, Value: jsonNullText}
	}
	value := cell.Value()
	switch value.Type {
	case gjson.String:
		return stringNode(value.Str)
	case gjson.Number:
		if strings.ContainsAny(value.Raw, ".eE") {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: yamlTagFloat, Value: value.Raw}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: yamlTagInt, Value: value.Raw}
	case gjson.True, gjson.False:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: yamlTagBool, Value: value.Raw}
	}
	if value.IsArray() && len(value.Array()) == 0 {
		return &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	}
	if value.IsObject() && len(value.Map()) == 0 {
		return &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
	}
	return stringNode(cell.Text())
}
