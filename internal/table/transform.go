package table

import (
	"github.com/tidwall/gjson"

	"github.com/temirov/vcoctl/internal/types"
)

// Directives select the transformation stages applied to a result.
type Directives struct {
	// Name keeps entities whose label contains it.
	Name string
	// Filters keeps attributes whose label contains it.
	Filters string
	// Search replaces the flattened table with the leaves matching the expression.
	Search   string
	RowsOnly bool
	Stats    bool
	Format   types.OutputFormat
	// Width caps the table format to the terminal width when positive.
	Width int
}

// Transform renders result according to directives. Zero entities produce an empty rendering,
// never an error.
func Transform(result gjson.Result, directives Directives) (string, error) {
	format, err := types.ParseOutputFormat(string(directives.Format))
	if err != nil {
		return "", err
	}
	if directives.RowsOnly {
		return RenderLabels(EntityLabels(result, directives), format)
	}
	presented := Present(result, directives)
	if format == types.FormatTable {
		return Render(presented, format, directives.Width)
	}
	// Documents are keyed by attribute, then entity.
	return Render(presented.Transpose(), format, directives.Width)
}

// EntityLabels returns the ordered entity labels that survive the name filter.
func EntityLabels(result gjson.Result, directives Directives) []string {
	return entityTable(result, directives).RowLabels
}

// Present runs the pipeline up to sparsity cleanup and returns the table as displayed: one row per
// attribute and one column per entity, or one column per statistic in stats mode.
func Present(result gjson.Result, directives Directives) Table {
	view := entityTable(result, directives)
	if directives.Filters != "" {
		view = view.FilterColumns(containing(directives.Filters))
	}
	if directives.Stats {
		view = Describe(view)
	}
	return view.Transpose().DropEmptyColumns()
}

func entityTable(result gjson.Result, directives Directives) Table {
	view := Flatten(result)
	if directives.Search != "" {
		if matched, found := Search(result, directives.Search); found {
			view = matched
		}
	}
	if directives.Name != "" {
		view = view.FilterRows(containing(directives.Name))
	}
	return view
}
