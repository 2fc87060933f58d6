// Package dispatch runs one registry operation end to end: binding, the remote call or the
// authentication primitive, and result rendering.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/temirov/vcoctl/internal/binder"
	"github.com/temirov/vcoctl/internal/registry"
	"github.com/temirov/vcoctl/internal/session"
	"github.com/temirov/vcoctl/internal/table"
	"github.com/temirov/vcoctl/internal/types"
)

// Operations resolves operation names.
type Operations interface {
	Lookup(name string) (registry.OperationSpec, error)
}

// Channel is the transport to a single orchestrator host.
type Channel interface {
	Call(ctx context.Context, method string, params map[string]any) (gjson.Result, error)
	Login(ctx context.Context, username string, password string, operator bool) (session.Token, error)
	Logout(ctx context.Context) error
	Resume(token session.Token)
}

// SessionStore persists session tokens per host.
type SessionStore interface {
	Load(host string) (session.Token, error)
	Save(host string, token session.Token) error
	Delete(host string) error
}

// State is the authentication state of the dispatcher's host.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
)

// String returns the state name.
func (state State) String() string {
	if state == StateAuthenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

const (
	errorRestoreSessionFormat = "%w: %v"
	errorSaveSessionFormat    = "save session for %s: %w"
	errorDeleteSessionFormat  = "delete session for %s: %w"
	errorCallFormat           = "%s: %w"
	errorRenderFormat         = "render %s result: %w"

	logFieldOperation = "operation"
	logFieldHost      = "host"
	logFieldMethod    = "method"
	logFieldState     = "state"
)

// Dispatcher executes operations against one host.
type Dispatcher struct {
	operations Operations
	channel    Channel
	store      SessionStore
	host       string
	logger     *zap.Logger
	state      State
	tableWidth int
}

// New builds a dispatcher. It starts unauthenticated; a stored session is restored on first use.
func New(operations Operations, channel Channel, store SessionStore, host string, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		operations: operations,
		channel:    channel,
		store:      store,
		host:       host,
		logger:     logger,
		state:      StateUnauthenticated,
	}
}

// WithTableWidth caps the width of table output.
func (dispatcher *Dispatcher) WithTableWidth(width int) *Dispatcher {
	dispatcher.tableWidth = width
	return dispatcher
}

// State returns the current authentication state.
func (dispatcher *Dispatcher) State() State {
	return dispatcher.state
}

// Execute runs the named operation and returns its rendered output. Operations without a
// renderable result return an empty string.
func (dispatcher *Dispatcher) Execute(ctx context.Context, name string, arguments types.Arguments, format types.OutputFormat) (string, error) {
	operation, err := dispatcher.operations.Lookup(name)
	if err != nil {
		return "", err
	}
	dispatcher.logger.Debug("executing operation",
		zap.String(logFieldOperation, operation.Name),
		zap.String(logFieldHost, dispatcher.host),
	)

	switch operation.Handler {
	case registry.HandlerLogin:
		return "", dispatcher.login(ctx, arguments)
	case registry.HandlerLogout:
		return "", dispatcher.logout(ctx)
	default:
		return dispatcher.call(ctx, operation, arguments, format)
	}
}

func (dispatcher *Dispatcher) login(ctx context.Context, arguments types.Arguments) error {
	token, err := dispatcher.channel.Login(
		ctx,
		arguments.String(types.ArgumentUsername),
		arguments.String(types.ArgumentPassword),
		arguments.Bool(types.ArgumentOperator, true),
	)
	if err != nil {
		return err
	}
	if err := dispatcher.store.Save(dispatcher.host, token); err != nil {
		return fmt.Errorf(errorSaveSessionFormat, dispatcher.host, err)
	}
	dispatcher.transition(StateAuthenticated)
	return nil
}

func (dispatcher *Dispatcher) logout(ctx context.Context) error {
	if err := dispatcher.ensureSession(); err != nil {
		return err
	}
	if err := dispatcher.channel.Logout(ctx); err != nil {
		return err
	}
	if err := dispatcher.store.Delete(dispatcher.host); err != nil {
		return fmt.Errorf(errorDeleteSessionFormat, dispatcher.host, err)
	}
	dispatcher.transition(StateUnauthenticated)
	return nil
}

func (dispatcher *Dispatcher) call(ctx context.Context, operation registry.OperationSpec, arguments types.Arguments, format types.OutputFormat) (string, error) {
	if err := dispatcher.ensureSession(); err != nil {
		return "", err
	}
	body, err := binder.Bind(operation.Parameters, arguments)
	if err != nil {
		return "", fmt.Errorf(errorCallFormat, operation.Name, err)
	}
	dispatcher.logger.Debug("calling remote method", zap.String(logFieldMethod, operation.RemoteMethod))
	result, err := dispatcher.channel.Call(ctx, operation.RemoteMethod, body)
	if err != nil {
		return "", err
	}
	if operation.Processor == registry.ProcessorNone || isEmptyResult(result) {
		return "", nil
	}
	directives := table.Directives{
		Name:     arguments.String(types.ArgumentName),
		Filters:  arguments.String(types.ArgumentFilters),
		Search:   arguments.String(types.ArgumentSearch),
		RowsOnly: arguments.Bool(types.ArgumentRowsName, false),
		Stats:    arguments.Bool(types.ArgumentStats, false),
		Format:   format,
		Width:    dispatcher.tableWidth,
	}
	rendered, err := table.Transform(result, directives)
	if err != nil {
		return "", fmt.Errorf(errorRenderFormat, operation.Name, err)
	}
	return rendered, nil
}

// ensureSession restores a persisted token when no session is held.
func (dispatcher *Dispatcher) ensureSession() error {
	if dispatcher.state == StateAuthenticated {
		return nil
	}
	token, err := dispatcher.store.Load(dispatcher.host)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return types.ErrNoSession
		}
		return fmt.Errorf(errorRestoreSessionFormat, types.ErrNoSession, err)
	}
	dispatcher.channel.Resume(token)
	dispatcher.transition(StateAuthenticated)
	return nil
}

func (dispatcher *Dispatcher) transition(next State) {
	if dispatcher.state == next {
		return
	}
	dispatcher.logger.Debug("session state changed",
		zap.String(logFieldHost, dispatcher.host),
		zap.Stringer(logFieldState, next),
	)
	dispatcher.state = next
}

func isEmptyResult(result gjson.Result) bool {
	switch {
	case !result.Exists() || result.Type == gjson.Null:
		return true
	case result.Type == gjson.String:
		return result.Str == ""
	case result.IsArray():
		return len(result.Array()) == 0
	case result.IsObject():
		empty := true
		result.ForEach(func(_, _ gjson.Result) bool {
			empty = false
			return false
		})
		return empty
	default:
		return false
	}
}
