package registry

import (
	"strings"

	"github.com/temirov/vcoctl/internal/types"
)

// OptionSpec declares one command line option of an operation.
type OptionSpec struct {
	Flag        string
	Kind        types.ValueKind
	Required    bool
	Default     any
	Destination string
	Usage       string
	// Suppressed removes the common option with the same flag from the operation.
	Suppressed bool
}

// Key returns the argument key the option value is stored under.
func (option OptionSpec) Key() string {
	if option.Destination != "" {
		return option.Destination
	}
	return strings.ReplaceAll(option.Flag, "-", "_")
}

const (
	flagName     = "name"
	flagFilters  = "filters"
	flagSearch   = "search"
	flagRowsName = "rows_name"
	flagStats    = "stats"

	usageName     = "keep only entities whose name contains the value (case-sensitive)"
	usageFilters  = "keep only attributes whose label contains the value"
	usageSearch   = "search leaf values; '|' separates terms, '*' matches everything"
	usageRowsName = "print only the entity names"
	usageStats    = "print descriptive statistics per attribute instead of values"
)

// CommonOptions returns the options every operation accepts unless it suppresses them.
func CommonOptions() []OptionSpec {
	return []OptionSpec{
		{Flag: flagName, Kind: types.KindString, Destination: types.ArgumentName, Usage: usageName},
		{Flag: flagFilters, Kind: types.KindString, Destination: types.ArgumentFilters, Usage: usageFilters},
		{Flag: flagSearch, Kind: types.KindString, Destination: types.ArgumentSearch, Usage: usageSearch},
		{Flag: flagRowsName, Kind: types.KindFlag, Destination: types.ArgumentRowsName, Default: false, Usage: usageRowsName},
		{Flag: flagStats, Kind: types.KindFlag, Destination: types.ArgumentStats, Default: false, Usage: usageStats},
	}
}

// Suppress declares the removal of the named common options.
func Suppress(flags ...string) []OptionSpec {
	suppressed := make([]OptionSpec, 0, len(flags))
	for _, flag := range flags {
		suppressed = append(suppressed, OptionSpec{Flag: flag, Suppressed: true})
	}
	return suppressed
}

// SuppressAllCommon declares the removal of every common option.
func SuppressAllCommon() []OptionSpec {
	var flags []string
	for _, option := range CommonOptions() {
		flags = append(flags, option.Flag)
	}
	return Suppress(flags...)
}

// MergeOptions merges operation specific options with the common set. Specific options keep their
// declaration order and replace a common option with the same flag; suppressed entries remove the
// common option and are not part of the result. Remaining common options follow in canonical order.
func MergeOptions(specific []OptionSpec) []OptionSpec {
	replacedFlags := map[string]struct{}{}
	merged := make([]OptionSpec, 0, len(specific)+len(CommonOptions()))
	for _, option := range specific {
		replacedFlags[option.Flag] = struct{}{}
		if option.Suppressed {
			continue
		}
		if option.Kind == "" {
			option.Kind = types.KindString
		}
		merged = append(merged, option)
	}
	for _, option := range CommonOptions() {
		if _, replaced := replacedFlags[option.Flag]; replaced {
			continue
		}
		merged = append(merged, option)
	}
	return merged
}
