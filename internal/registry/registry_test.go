package registry_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/temirov/vcoctl/internal/registry"
	"github.com/temirov/vcoctl/internal/types"
)

func optionFlags(options []registry.OptionSpec) []string {
	var flags []string
	for _, option := range options {
		flags = append(flags, option.Flag)
	}
	return flags
}

func TestBuiltinOptionsAreUniqueAfterMerge(t *testing.T) {
	t.Parallel()
	operations, err := registry.New(registry.Builtin()...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, name := range operations.Names() {
		operation, err := operations.Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", name, err)
		}
		seenFlags := map[string]struct{}{}
		seenKeys := map[string]struct{}{}
		for _, option := range operation.Options {
			if _, duplicate := seenFlags[option.Flag]; duplicate {
				t.Fatalf("%s: duplicate flag --%s", name, option.Flag)
			}
			if _, duplicate := seenKeys[option.Key()]; duplicate {
				t.Fatalf("%s: duplicate destination %s", name, option.Key())
			}
			if option.Suppressed {
				t.Fatalf("%s: suppressed option --%s leaked into the merged set", name, option.Flag)
			}
			seenFlags[option.Flag] = struct{}{}
			seenKeys[option.Key()] = struct{}{}
		}
	}
}

func TestMergeOptions(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name          string
		specific      []registry.OptionSpec
		expectedFlags []string
	}{
		{
			name:          "common only",
			expectedFlags: []string{"name", "filters", "search", "rows_name", "stats"},
		},
		{
			name:          "specific options first",
			specific:      []registry.OptionSpec{{Flag: "id", Kind: types.KindInt}},
			expectedFlags: []string{"id", "name", "filters", "search", "rows_name", "stats"},
		},
		{
			name:          "override replaces common option",
			specific:      []registry.OptionSpec{{Flag: "name", Required: true}},
			expectedFlags: []string{"name", "filters", "search", "rows_name", "stats"},
		},
		{
			name:          "suppression removes common option",
			specific:      append([]registry.OptionSpec{{Flag: "value"}}, registry.Suppress("search", "stats")...),
			expectedFlags: []string{"value", "name", "filters", "rows_name"},
		},
		{
			name:          "suppress everything",
			specific:      registry.SuppressAllCommon(),
			expectedFlags: nil,
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			merged := registry.MergeOptions(testCase.specific)
			if flags := optionFlags(merged); !reflect.DeepEqual(flags, testCase.expectedFlags) {
				t.Fatalf("merged flags = %v, want %v", flags, testCase.expectedFlags)
			}
		})
	}
}

func TestOverrideKeepsOperationSpecificDeclaration(t *testing.T) {
	t.Parallel()
	operations, err := registry.New(registry.Builtin()...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	operation, err := operations.Lookup("sysprop_get")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	option, found := operation.Option(types.ArgumentName)
	if !found || !option.Required {
		t.Fatalf("expected the required --name declaration to win, got %+v", option)
	}
	if operation.RemoteMethod != "systemProperty/getSystemProperty" || operation.Processor != registry.ProcessorFormatByName {
		t.Fatalf("unexpected operation %+v", operation)
	}
}

func TestAuthenticationOperations(t *testing.T) {
	t.Parallel()
	operations, err := registry.New(registry.Builtin()...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	login, err := operations.Lookup(registry.OperationLogin)
	if err != nil {
		t.Fatalf("Lookup(login): %v", err)
	}
	if login.Handler != registry.HandlerLogin || login.RemoteMethod != "" || login.Parameters != nil {
		t.Fatalf("unexpected login spec %+v", login)
	}
	if flags := optionFlags(login.Options); !reflect.DeepEqual(flags, []string{"username", "password", "operator"}) {
		t.Fatalf("login flags = %v", flags)
	}
	logout, err := operations.Lookup(registry.OperationLogout)
	if err != nil {
		t.Fatalf("Lookup(logout): %v", err)
	}
	if logout.Handler != registry.HandlerLogout || len(logout.Options) != 0 {
		t.Fatalf("unexpected logout spec %+v", logout)
	}
}

func TestLookupUnknownOperation(t *testing.T) {
	t.Parallel()
	operations, err := registry.New(registry.Builtin()...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := operations.Lookup("edges_delete"); !errors.Is(err, types.ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
}

func TestNewRejectsInvalidDeclarations(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name         string
		declarations []registry.Declaration
	}{
		{name: "missing name", declarations: []registry.Declaration{{Method: "a/b"}}},
		{name: "missing method", declarations: []registry.Declaration{{Name: "x"}}},
		{
			name: "duplicate name",
			declarations: []registry.Declaration{
				{Name: "x", Method: "a/b"},
				{Name: "x", Method: "a/c"},
			},
		},
		{name: "malformed template", declarations: []registry.Declaration{{Name: "x", Method: "a/b", Template: `{"id":`}}},
		{name: "array template", declarations: []registry.Declaration{{Name: "x", Method: "a/b", Template: `[1]`}}},
		{name: "unbound placeholder", declarations: []registry.Declaration{{Name: "x", Method: "a/b", Template: `{"id": "{{id:int}}"}`}}},
		{
			name: "duplicate flag",
			declarations: []registry.Declaration{{
				Name: "x", Method: "a/b",
				Options: []registry.OptionSpec{{Flag: "id"}, {Flag: "id"}},
			}},
		},
		{
			name: "duplicate destination",
			declarations: []registry.Declaration{{
				Name: "x", Method: "a/b",
				Options: []registry.OptionSpec{{Flag: "label", Destination: types.ArgumentName}},
			}},
		},
		{
			name: "unknown kind",
			declarations: []registry.Declaration{{
				Name: "x", Method: "a/b",
				Options: []registry.OptionSpec{{Flag: "id", Kind: "uuid"}},
			}},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			if _, err := registry.New(testCase.declarations...); !errors.Is(err, registry.ErrInvalidDeclaration) {
				t.Fatalf("expected ErrInvalidDeclaration, got %v", err)
			}
		})
	}
}

func TestNamesAreSorted(t *testing.T) {
	t.Parallel()
	operations, err := registry.New(
		registry.Declaration{Name: "zeta", Method: "a/z"},
		registry.Declaration{Name: "alpha", Method: "a/a"},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if names := operations.Names(); !reflect.DeepEqual(names, []string{"alpha", "zeta"}) {
		t.Fatalf("Names() = %v", names)
	}
}

func TestParseProcessor(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		value       string
		expected    registry.Processor
		expectError bool
	}{
		{value: "", expected: registry.ProcessorFormatByName},
		{value: "format_by_name", expected: registry.ProcessorFormatByName},
		{value: "NONE", expected: registry.ProcessorNone},
		{value: "pandas", expectError: true},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.value, func(t *testing.T) {
			t.Parallel()
			processor, err := registry.ParseProcessor(testCase.value)
			if testCase.expectError {
				if !errors.Is(err, registry.ErrInvalidDeclaration) {
					t.Fatalf("expected ErrInvalidDeclaration, got %v", err)
				}
				return
			}
			if err != nil || processor != testCase.expected {
				t.Fatalf("ParseProcessor(%q) = %v, %v", testCase.value, processor, err)
			}
		})
	}
}
