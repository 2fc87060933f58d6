package table

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/temirov/vcoctl/internal/utils"
)

const (
	searchMatchAll      = "*"
	searchTermSeparator = "|"
)

type searchMatcher struct {
	matchAll bool
	terms    []string
}

// newSearchMatcher splits expression into case-insensitive terms. Empty terms never match.
func newSearchMatcher(expression string) searchMatcher {
	matcher := searchMatcher{}
	for _, term := range strings.Split(expression, searchTermSeparator) {
		if term == searchMatchAll {
			matcher.matchAll = true
			continue
		}
		if term == "" {
			continue
		}
		matcher.terms = append(matcher.terms, term)
	}
	return matcher
}

func (matcher searchMatcher) matches(text string) bool {
	if matcher.matchAll {
		return true
	}
	for _, term := range matcher.terms {
		if utils.ContainsFold(text, term) {
			return true
		}
	}
	return false
}

// Search collects every leaf of the nested result whose text matches expression. Matches are
// grouped by entity label and labeled by their path inside the entity. The boolean result is
// false when nothing matched.
func Search(result gjson.Result, expression string) (Table, bool) {
	matcher := newSearchMatcher(expression)
	tableBuilder := newBuilder()
	for index, entity := range Entities(result) {
		entityLabel := EntityLabel(entity, index)
		visitEntityLeaves(entity, func(label string, leaf gjson.Result) {
			cell := NewCell(leaf)
			if !matcher.matches(cell.Text()) {
				return
			}
			tableBuilder.set(tableBuilder.rowFor(entityLabel), label, cell)
		})
	}
	matched := tableBuilder.build()
	return matched, len(matched.RowLabels) > 0
}
