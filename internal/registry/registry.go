// Package registry holds the declarative table of operations the CLI can run.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/temirov/vcoctl/internal/binder"
	"github.com/temirov/vcoctl/internal/types"
)

// Handler selects the code path that runs an operation.
type Handler int

const (
	// HandlerCall binds the parameter template and issues a remote call.
	HandlerCall Handler = iota
	// HandlerLogin runs the authentication primitive.
	HandlerLogin
	// HandlerLogout ends the current session.
	HandlerLogout
)

// Processor selects the result post-processor.
type Processor int

const (
	// ProcessorNone discards the result.
	ProcessorNone Processor = iota
	// ProcessorFormatByName renders the result through the table transformer.
	ProcessorFormatByName
)

const (
	processorNameNone         = "none"
	processorNameFormatByName = "format_by_name"
)

// ParseProcessor maps a configuration value to a Processor. An empty value selects
// ProcessorFormatByName.
func ParseProcessor(value string) (Processor, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", processorNameFormatByName:
		return ProcessorFormatByName, nil
	case processorNameNone:
		return ProcessorNone, nil
	default:
		return ProcessorNone, fmt.Errorf(errorUnknownProcessorFormat, ErrInvalidDeclaration, value)
	}
}

// String returns the configuration name of the processor.
func (processor Processor) String() string {
	if processor == ProcessorNone {
		return processorNameNone
	}
	return processorNameFormatByName
}

// Declaration is the data row an operation is declared with.
type Declaration struct {
	Name      string
	Method    string
	Template  string
	Processor Processor
	Handler   Handler
	Options   []OptionSpec
	Summary   string
}

// OperationSpec is a resolved operation. It is immutable after registry construction.
type OperationSpec struct {
	Name         string
	RemoteMethod string
	Parameters   *binder.Template
	Processor    Processor
	Handler      Handler
	Options      []OptionSpec
	Summary      string
}

// Option returns the merged option stored under key.
func (operation OperationSpec) Option(key string) (OptionSpec, bool) {
	for _, option := range operation.Options {
		if option.Key() == key {
			return option, true
		}
	}
	return OptionSpec{}, false
}

// ErrInvalidDeclaration reports an operation declaration the registry cannot accept.
var ErrInvalidDeclaration = errors.New("invalid operation declaration")

const (
	errorMissingNameMessage       = "%w: operation name is required"
	errorDuplicateNameFormat      = "%w: operation %q is declared twice"
	errorMissingMethodFormat      = "%w: operation %q has no remote method"
	errorTemplateFormat           = "%w: operation %q: %w"
	errorDuplicateFlagFormat      = "%w: operation %q declares option --%s twice"
	errorDuplicateDestFormat      = "%w: operation %q stores two options under %q"
	errorOptionKindFormat         = "%w: operation %q option --%s: %w"
	errorUnboundPlaceholderFormat = "%w: operation %q template references %q but no option stores it"
	errorUnknownProcessorFormat   = "%w: unknown processor %q"
)

// Registry resolves operation names to their specs.
type Registry struct {
	operations map[string]OperationSpec
	names      []string
}

// New resolves every declaration once: templates are parsed, options merged with the common set
// and uniqueness checked.
func New(declarations ...Declaration) (Registry, error) {
	registry := Registry{operations: make(map[string]OperationSpec, len(declarations))}
	for _, declaration := range declarations {
		operation, err := resolve(declaration)
		if err != nil {
			return Registry{}, err
		}
		if _, exists := registry.operations[operation.Name]; exists {
			return Registry{}, fmt.Errorf(errorDuplicateNameFormat, ErrInvalidDeclaration, operation.Name)
		}
		registry.operations[operation.Name] = operation
		registry.names = append(registry.names, operation.Name)
	}
	sort.Strings(registry.names)
	return registry, nil
}

func resolve(declaration Declaration) (OperationSpec, error) {
	name := strings.TrimSpace(declaration.Name)
	if name == "" {
		return OperationSpec{}, fmt.Errorf(errorMissingNameMessage, ErrInvalidDeclaration)
	}
	operation := OperationSpec{
		Name:      name,
		Processor: declaration.Processor,
		Handler:   declaration.Handler,
		Summary:   declaration.Summary,
	}
	if declaration.Handler == HandlerCall {
		operation.RemoteMethod = strings.TrimSpace(declaration.Method)
		if operation.RemoteMethod == "" {
			return OperationSpec{}, fmt.Errorf(errorMissingMethodFormat, ErrInvalidDeclaration, name)
		}
		template, err := binder.Parse(declaration.Template)
		if err != nil {
			return OperationSpec{}, fmt.Errorf(errorTemplateFormat, ErrInvalidDeclaration, name, err)
		}
		operation.Parameters = template
	}

	operation.Options = MergeOptions(declaration.Options)
	seenFlags := map[string]struct{}{}
	seenDestinations := map[string]struct{}{}
	for index, option := range operation.Options {
		kind, err := types.ParseValueKind(string(option.Kind))
		if err != nil {
			return OperationSpec{}, fmt.Errorf(errorOptionKindFormat, ErrInvalidDeclaration, name, option.Flag, err)
		}
		operation.Options[index].Kind = kind
		if _, duplicate := seenFlags[option.Flag]; duplicate {
			return OperationSpec{}, fmt.Errorf(errorDuplicateFlagFormat, ErrInvalidDeclaration, name, option.Flag)
		}
		seenFlags[option.Flag] = struct{}{}
		if _, duplicate := seenDestinations[option.Key()]; duplicate {
			return OperationSpec{}, fmt.Errorf(errorDuplicateDestFormat, ErrInvalidDeclaration, name, option.Key())
		}
		seenDestinations[option.Key()] = struct{}{}
	}
	for _, placeholder := range operation.Parameters.Placeholders() {
		if _, bound := seenDestinations[placeholder.Key]; !bound {
			return OperationSpec{}, fmt.Errorf(errorUnboundPlaceholderFormat, ErrInvalidDeclaration, name, placeholder.Key)
		}
	}
	return operation, nil
}

// Lookup returns the operation registered under name.
func (registry Registry) Lookup(name string) (OperationSpec, error) {
	operation, exists := registry.operations[name]
	if !exists {
		return OperationSpec{}, fmt.Errorf("%w: %s", types.ErrUnknownOperation, name)
	}
	return operation, nil
}

// Names lists the registered operation names in sorted order.
func (registry Registry) Names() []string {
	return append([]string(nil), registry.names...)
}
