// Package table turns arbitrary JSON results into filterable tables and serializes them.
package table

import "strings"

// Table is a two dimensional view of a JSON result. Cells is indexed by row, then column, and
// every row holds exactly len(ColumnLabels) cells.
type Table struct {
	RowLabels    []string
	ColumnLabels []string
	Cells        [][]Cell
}

// Empty reports whether the table has neither rows nor columns.
func (view Table) Empty() bool {
	return len(view.RowLabels) == 0 && len(view.ColumnLabels) == 0
}

// Cell returns the cell at row and column, or a missing cell outside the table.
func (view Table) Cell(row int, column int) Cell {
	if row < 0 || row >= len(view.Cells) || column < 0 || column >= len(view.Cells[row]) {
		return MissingCell()
	}
	return view.Cells[row][column]
}

// Transpose swaps rows and columns.
func (view Table) Transpose() Table {
	transposed := Table{
		RowLabels:    append([]string(nil), view.ColumnLabels...),
		ColumnLabels: append([]string(nil), view.RowLabels...),
		Cells:        make([][]Cell, len(view.ColumnLabels)),
	}
	for column := range view.ColumnLabels {
		transposed.Cells[column] = make([]Cell, len(view.RowLabels))
		for row := range view.RowLabels {
			transposed.Cells[column][row] = view.Cell(row, column)
		}
	}
	return transposed
}

// FilterRows keeps the rows whose label satisfies keep.
func (view Table) FilterRows(keep func(label string) bool) Table {
	filtered := Table{ColumnLabels: append([]string(nil), view.ColumnLabels...)}
	for row, label := range view.RowLabels {
		if !keep(label) {
			continue
		}
		filtered.RowLabels = append(filtered.RowLabels, label)
		filtered.Cells = append(filtered.Cells, append([]Cell(nil), view.Cells[row]...))
	}
	return filtered
}

// FilterColumns keeps the columns whose label satisfies keep.
func (view Table) FilterColumns(keep func(label string) bool) Table {
	var kept []int
	for column, label := range view.ColumnLabels {
		if keep(label) {
			kept = append(kept, column)
		}
	}
	return view.selectColumns(kept)
}

// DropEmptyColumns removes every column without a single present cell.
func (view Table) DropEmptyColumns() Table {
	var kept []int
	for column := range view.ColumnLabels {
		for row := range view.RowLabels {
			if !view.Cell(row, column).Missing() {
				kept = append(kept, column)
				break
			}
		}
	}
	return view.selectColumns(kept)
}

func (view Table) selectColumns(columns []int) Table {
	selected := Table{
		RowLabels: append([]string(nil), view.RowLabels...),
		Cells:     make([][]Cell, len(view.RowLabels)),
	}
	for _, column := range columns {
		selected.ColumnLabels = append(selected.ColumnLabels, view.ColumnLabels[column])
	}
	for row := range view.RowLabels {
		selected.Cells[row] = make([]Cell, 0, len(columns))
		for _, column := range columns {
			selected.Cells[row] = append(selected.Cells[row], view.Cell(row, column))
		}
	}
	return selected
}

func containing(fragment string) func(string) bool {
	return func(label string) bool {
		return strings.Contains(label, fragment)
	}
}

// builder accumulates rows whose columns appear in first-seen order.
type builder struct {
	view        Table
	columnIndex map[string]int
	rowIndex    map[string]int
}

func newBuilder() *builder {
	return &builder{columnIndex: map[string]int{}, rowIndex: map[string]int{}}
}

func (tableBuilder *builder) addRow(label string) int {
	tableBuilder.view.RowLabels = append(tableBuilder.view.RowLabels, label)
	tableBuilder.view.Cells = append(tableBuilder.view.Cells, nil)
	return len(tableBuilder.view.RowLabels) - 1
}

// rowFor returns the row labeled label, adding it on first use.
func (tableBuilder *builder) rowFor(label string) int {
	if row, exists := tableBuilder.rowIndex[label]; exists {
		return row
	}
	row := tableBuilder.addRow(label)
	tableBuilder.rowIndex[label] = row
	return row
}

func (tableBuilder *builder) set(row int, columnLabel string, cell Cell) {
	column, exists := tableBuilder.columnIndex[columnLabel]
	if !exists {
		column = len(tableBuilder.view.ColumnLabels)
		tableBuilder.view.ColumnLabels = append(tableBuilder.view.ColumnLabels, columnLabel)
		tableBuilder.columnIndex[columnLabel] = column
	}
	for len(tableBuilder.view.Cells[row]) <= column {
		tableBuilder.view.Cells[row] = append(tableBuilder.view.Cells[row], MissingCell())
	}
	tableBuilder.view.Cells[row][column] = cell
}

func (tableBuilder *builder) build() Table {
	columnCount := len(tableBuilder.view.ColumnLabels)
	for row := range tableBuilder.view.Cells {
		for len(tableBuilder.view.Cells[row]) < columnCount {
			tableBuilder.view.Cells[row] = append(tableBuilder.view.Cells[row], MissingCell())
		}
	}
	return tableBuilder.view
}
