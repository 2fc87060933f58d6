package table

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	statCount         = "count"
	statUnique        = "unique"
	statTop           = "top"
	statFrequency     = "freq"
	statMean          = "mean"
	statStdDev        = "std"
	statMin           = "min"
	statLowerQuartile = "25%"
	statMedian        = "50%"
	statUpperQuartile = "75%"
	statMax           = "max"
)

var (
	categoricalStatLabels = []string{statUnique, statTop, statFrequency}
	numericStatLabels     = []string{statMean, statStdDev, statMin, statLowerQuartile, statMedian, statUpperQuartile, statMax}
)

// Describe summarizes every column of view. A column is numeric when all of its present cells are
// JSON numbers; numeric columns report count, mean, sample standard deviation, min, quartiles and
// max, other columns report count, unique, top and freq. The result has one row per statistic and
// one column per source column; statistics that do not apply to a column are missing.
func Describe(view Table) Table {
	if len(view.ColumnLabels) == 0 {
		return Table{}
	}
	summaries := make([]map[string]Cell, len(view.ColumnLabels))
	hasNumeric := false
	hasCategorical := false
	for column := range view.ColumnLabels {
		present := presentCells(view, column)
		if isNumericColumn(present) {
			summaries[column] = describeNumeric(present)
			hasNumeric = true
			continue
		}
		summaries[column] = describeCategorical(present)
		hasCategorical = true
	}

	statLabels := []string{statCount}
	if hasCategorical {
		statLabels = append(statLabels, categoricalStatLabels...)
	}
	if hasNumeric {
		statLabels = append(statLabels, numericStatLabels...)
	}

	described := Table{
		RowLabels:    statLabels,
		ColumnLabels: append([]string(nil), view.ColumnLabels...),
		Cells:        make([][]Cell, len(statLabels)),
	}
	for row, statLabel := range statLabels {
		described.Cells[row] = make([]Cell, len(view.ColumnLabels))
		for column := range view.ColumnLabels {
			described.Cells[row][column] = summaries[column][statLabel]
		}
	}
	return described
}

func presentCells(view Table, column int) []Cell {
	var present []Cell
	for row := range view.RowLabels {
		cell := view.Cell(row, column)
		if !cell.Missing() {
			present = append(present, cell)
		}
	}
	return present
}

func isNumericColumn(cells []Cell) bool {
	if len(cells) == 0 {
		return false
	}
	for _, cell := range cells {
		if !cell.IsNumber() {
			return false
		}
	}
	return true
}

func describeNumeric(cells []Cell) map[string]Cell {
	values := make([]float64, 0, len(cells))
	for _, cell := range cells {
		values = append(values, cell.Value().Float())
	}
	sortedValues := append([]float64(nil), values...)
	sort.Float64s(sortedValues)
	return map[string]Cell{
		statCount:         NumberCell(float64(len(values))),
		statMean:          NumberCell(stat.Mean(values, nil)),
		statStdDev:        NumberCell(sampleStdDev(values)),
		statMin:           NumberCell(floats.Min(values)),
		statLowerQuartile: NumberCell(linearQuantile(sortedValues, 0.25)),
		statMedian:        NumberCell(linearQuantile(sortedValues, 0.5)),
		statUpperQuartile: NumberCell(linearQuantile(sortedValues, 0.75)),
		statMax:           NumberCell(floats.Max(values)),
	}
}

func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	return stat.StdDev(values, nil)
}

// linearQuantile interpolates between the closest ranks of sortedValues (the R type 7 estimator).
func linearQuantile(sortedValues []float64, probability float64) float64 {
	position := probability * float64(len(sortedValues)-1)
	lowerIndex := int(math.Floor(position))
	if lowerIndex+1 >= len(sortedValues) {
		return sortedValues[len(sortedValues)-1]
	}
	fraction := position - float64(lowerIndex)
	return sortedValues[lowerIndex] + fraction*(sortedValues[lowerIndex+1]-sortedValues[lowerIndex])
}

func describeCategorical(cells []Cell) map[string]Cell {
	counts := map[string]int{}
	firstCells := map[string]Cell{}
	var order []string
	for _, cell := range cells {
		text := cell.Text()
		if counts[text] == 0 {
			order = append(order, text)
			firstCells[text] = cell
		}
		counts[text]++
	}
	summary := map[string]Cell{
		statCount:  NumberCell(float64(len(cells))),
		statUnique: NumberCell(float64(len(order))),
	}
	if len(order) == 0 {
		return summary
	}
	top := order[0]
	for _, text := range order[1:] {
		if counts[text] > counts[top] {
			top = text
		}
	}
	summary[statTop] = firstCells[top]
	summary[statFrequency] = NumberCell(float64(counts[top]))
	return summary
}
