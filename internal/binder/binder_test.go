package binder_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/temirov/vcoctl/internal/binder"
	"github.com/temirov/vcoctl/internal/types"
)

const eventsTemplate = `{
	// filter window
	"enterpriseId": "{{id:int}}",
	"interval": {
		"start": "{{start:datetime?}}",
		"end": "{{end:datetime?}}",
	},
	"with": ["edges", "{{extra?}}"],
	"note": "id {{id}} is literal here",
	"limit": 50,
	"ratio": 0.5,
	"verbose": false,
	"cursor": null,
}`

func TestParse(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name          string
		text          string
		expectNil     bool
		expectError   bool
		expectedNames []string
	}{
		{name: "blank text", text: "  ", expectNil: true},
		{name: "null text", text: "null", expectNil: true},
		{name: "jsonc template", text: eventsTemplate, expectedNames: []string{"id", "start", "end", "extra"}},
		{name: "array root", text: `["{{id}}"]`, expectError: true},
		{name: "scalar root", text: `"{{id}}"`, expectError: true},
		{name: "malformed text", text: `{"id": `, expectError: true},
		{name: "unknown kind", text: `{"id": "{{id:uuid}}"}`, expectError: true},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			template, err := binder.Parse(testCase.text)
			if testCase.expectError {
				if !errors.Is(err, types.ErrBinding) {
					t.Fatalf("expected ErrBinding, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if testCase.expectNil {
				if template != nil {
					t.Fatalf("expected nil template")
				}
				return
			}
			var names []string
			for _, placeholder := range template.Placeholders() {
				names = append(names, placeholder.Key)
			}
			if !reflect.DeepEqual(names, testCase.expectedNames) {
				t.Fatalf("placeholders = %v, want %v", names, testCase.expectedNames)
			}
		})
	}
}

func TestBind(t *testing.T) {
	t.Parallel()
	template := binder.MustParse(eventsTemplate)
	startTime := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

	testCases := []struct {
		name        string
		arguments   types.Arguments
		expected    map[string]any
		expectError bool
	}{
		{
			name:      "optional placeholders absent",
			arguments: types.Arguments{"id": int64(7)},
			expected: map[string]any{
				"enterpriseId": int64(7),
				"interval":     map[string]any{},
				"with":         []any{"edges", nil},
				"note":         "id {{id}} is literal here",
				"limit":        int64(50),
				"ratio":        0.5,
				"verbose":      false,
				"cursor":       nil,
			},
		},
		{
			name:      "all placeholders present",
			arguments: types.Arguments{"id": "7", "start": startTime, "end": "2024-01-03", "extra": "links"},
			expected: map[string]any{
				"enterpriseId": int64(7),
				"interval": map[string]any{
					"start": startTime.UnixMilli(),
					"end":   time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC).UnixMilli(),
				},
				"with":    []any{"edges", "links"},
				"note":    "id {{id}} is literal here",
				"limit":   int64(50),
				"ratio":   0.5,
				"verbose": false,
				"cursor":  nil,
			},
		},
		{name: "missing required key", arguments: types.Arguments{"start": startTime}, expectError: true},
		{name: "uncoercible int", arguments: types.Arguments{"id": "seven"}, expectError: true},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			body, err := binder.Bind(template, testCase.arguments)
			if testCase.expectError {
				if !errors.Is(err, types.ErrBinding) {
					t.Fatalf("expected ErrBinding, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Bind: %v", err)
			}
			if !reflect.DeepEqual(body, testCase.expected) {
				t.Fatalf("Bind() = %#v, want %#v", body, testCase.expected)
			}
		})
	}
}

func TestBindIsIdempotent(t *testing.T) {
	t.Parallel()
	template := binder.MustParse(eventsTemplate)
	arguments := types.Arguments{"id": int64(3), "start": int64(1700000000000)}

	first, err := binder.Bind(template, arguments)
	if err != nil {
		t.Fatalf("first Bind: %v", err)
	}
	second, err := binder.Bind(template, arguments)
	if err != nil {
		t.Fatalf("second Bind: %v", err)
	}
	firstEncoded, _ := json.Marshal(first)
	secondEncoded, _ := json.Marshal(second)
	if string(firstEncoded) != string(secondEncoded) {
		t.Fatalf("binding differs: %s vs %s", firstEncoded, secondEncoded)
	}
	if len(arguments) != 2 {
		t.Fatalf("arguments were mutated: %v", arguments)
	}
}

func TestBindNilTemplate(t *testing.T) {
	t.Parallel()
	body, err := binder.Bind(nil, types.Arguments{"name": "Branch1"})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if body == nil || len(body) != 0 {
		t.Fatalf("expected empty body, got %v", body)
	}
}

func TestBindEncodesKinds(t *testing.T) {
	t.Parallel()
	template := binder.MustParse(`{"name": "{{name}}", "id": "{{id:int}}", "enabled": "{{enabled:flag}}", "secret": "{{password:secret}}"}`)
	body, err := binder.Bind(template, types.Arguments{"name": "42", "id": int64(42), "enabled": "true", "password": "p@ss"})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	expected := `{"enabled":true,"id":42,"name":"42","secret":"p@ss"}`
	if string(encoded) != expected {
		t.Fatalf("encoded body = %s, want %s", encoded, expected)
	}
}

func TestEpochMilliseconds(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name        string
		value       any
		expected    int64
		expectError bool
	}{
		{name: "epoch integer", value: int64(1700000000000), expected: 1700000000000},
		{name: "epoch string", value: "1700000000000", expected: 1700000000000},
		{name: "rfc3339", value: "2024-01-02T03:04:05Z", expected: time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC).UnixMilli()},
		{name: "date only", value: "2024-01-02", expected: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC).UnixMilli()},
		{name: "garbage", value: "yesterday-ish", expectError: true},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			milliseconds, err := binder.EpochMilliseconds(testCase.value)
			if testCase.expectError {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("EpochMilliseconds: %v", err)
			}
			if milliseconds != testCase.expected {
				t.Fatalf("EpochMilliseconds(%v) = %d, want %d", testCase.value, milliseconds, testCase.expected)
			}
		})
	}
}
