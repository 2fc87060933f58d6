package dispatch_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/temirov/vcoctl/internal/dispatch"
	"github.com/temirov/vcoctl/internal/registry"
	"github.com/temirov/vcoctl/internal/session"
	"github.com/temirov/vcoctl/internal/types"
)

const (
	testHost         = "vco.example.net"
	branchesResponse = `[{"name":"Branch1","activationState":"ACTIVATED"},{"name":"Branch2","activationState":"PENDING"}]`
)

type recordedCall struct {
	method string
	params map[string]any
}

type fakeChannel struct {
	calls        []recordedCall
	result       string
	callError    error
	loginToken   session.Token
	loginError   error
	logins       []types.Arguments
	logoutCount  int
	resumedToken *session.Token
}

func (channel *fakeChannel) Call(_ context.Context, method string, params map[string]any) (gjson.Result, error) {
	channel.calls = append(channel.calls, recordedCall{method: method, params: params})
	if channel.callError != nil {
		return gjson.Result{}, channel.callError
	}
	return gjson.Parse(channel.result), nil
}

func (channel *fakeChannel) Login(_ context.Context, username string, password string, operator bool) (session.Token, error) {
	channel.logins = append(channel.logins, types.Arguments{
		types.ArgumentUsername: username,
		types.ArgumentPassword: password,
		types.ArgumentOperator: operator,
	})
	return channel.loginToken, channel.loginError
}

func (channel *fakeChannel) Logout(context.Context) error {
	channel.logoutCount++
	return nil
}

func (channel *fakeChannel) Resume(token session.Token) {
	channel.resumedToken = &token
}

type fakeStore struct {
	tokens    map[string]session.Token
	loadError error
}

func newFakeStore() *fakeStore {
	return &fakeStore{tokens: map[string]session.Token{}}
}

func (store *fakeStore) Load(host string) (session.Token, error) {
	if store.loadError != nil {
		return session.Token{}, store.loadError
	}
	token, exists := store.tokens[host]
	if !exists {
		return session.Token{}, fmt.Errorf("%s: %w", host, session.ErrNotFound)
	}
	return token, nil
}

func (store *fakeStore) Save(host string, token session.Token) error {
	store.tokens[host] = token
	return nil
}

func (store *fakeStore) Delete(host string) error {
	delete(store.tokens, host)
	return nil
}

func storedToken() session.Token {
	return session.Token{Host: testHost, Cookies: []session.Cookie{{Name: "velocloud.session", Value: "abc"}}}
}

func newDispatcher(t *testing.T, channel *fakeChannel, store *fakeStore) *dispatch.Dispatcher {
	t.Helper()
	operations, err := registry.New(registry.Builtin()...)
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	return dispatch.New(operations, channel, store, testHost, nil)
}

func TestExecuteRequiresSessionBeforeAnyCall(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name      string
		operation string
		loadError error
	}{
		{name: "data operation without stored session", operation: "edges_get"},
		{name: "logout without stored session", operation: registry.OperationLogout},
		{name: "unreadable stored session", operation: "sysprops_get", loadError: errors.New("corrupt session file")},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			channel := &fakeChannel{result: branchesResponse}
			store := newFakeStore()
			store.loadError = testCase.loadError
			dispatcher := newDispatcher(t, channel, store)

			_, err := dispatcher.Execute(context.Background(), testCase.operation, types.Arguments{"id": int64(1)}, types.FormatTable)
			if !errors.Is(err, types.ErrNoSession) {
				t.Fatalf("expected ErrNoSession, got %v", err)
			}
			if len(channel.calls) != 0 || channel.logoutCount != 0 {
				t.Fatalf("no request may be sent without a session")
			}
			if dispatcher.State() != dispatch.StateUnauthenticated {
				t.Fatalf("state = %s", dispatcher.State())
			}
		})
	}
}

func TestExecuteUnknownOperation(t *testing.T) {
	t.Parallel()
	channel := &fakeChannel{}
	dispatcher := newDispatcher(t, channel, newFakeStore())
	if _, err := dispatcher.Execute(context.Background(), "edges_delete", nil, types.FormatTable); !errors.Is(err, types.ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
}

func TestExecuteCallRestoresSessionAndRenders(t *testing.T) {
	t.Parallel()
	channel := &fakeChannel{result: branchesResponse}
	store := newFakeStore()
	store.tokens[testHost] = storedToken()
	dispatcher := newDispatcher(t, channel, store)

	arguments := types.Arguments{"id": int64(5), types.ArgumentFilters: "activationState"}
	output, err := dispatcher.Execute(context.Background(), "edges_get", arguments, types.FormatCSV)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	expected := ",activationState\nBranch1,ACTIVATED\nBranch2,PENDING"
	if output != expected {
		t.Fatalf("output = %q, want %q", output, expected)
	}
	if channel.resumedToken == nil || channel.resumedToken.Cookies[0].Value != "abc" {
		t.Fatalf("stored token was not attached to the channel")
	}
	if len(channel.calls) != 1 || channel.calls[0].method != "enterprise/getEnterpriseEdges" {
		t.Fatalf("unexpected calls %+v", channel.calls)
	}
	if enterpriseID := channel.calls[0].params["enterpriseId"]; enterpriseID != int64(5) {
		t.Fatalf("enterpriseId = %#v", enterpriseID)
	}
	if dispatcher.State() != dispatch.StateAuthenticated {
		t.Fatalf("state = %s", dispatcher.State())
	}
}

func TestExecuteRowsOnly(t *testing.T) {
	t.Parallel()
	channel := &fakeChannel{result: branchesResponse}
	store := newFakeStore()
	store.tokens[testHost] = storedToken()
	dispatcher := newDispatcher(t, channel, store)

	output, err := dispatcher.Execute(context.Background(), "edges_get", types.Arguments{"id": int64(1), types.ArgumentRowsName: true}, types.FormatTable)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if output != "Branch1\nBranch2" {
		t.Fatalf("output = %q", output)
	}
}

func TestExecuteReturnsNothing(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name      string
		operation string
		arguments types.Arguments
		result    string
	}{
		{name: "side effect only operation", operation: "sysprop_set", arguments: types.Arguments{"name": "a", "value": "b"}, result: `{"id":1,"rows":1}`},
		{name: "empty result", operation: "edges_get", arguments: types.Arguments{"id": int64(1)}, result: `[]`},
		{name: "null result", operation: "sysprops_get", result: `null`},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			channel := &fakeChannel{result: testCase.result}
			store := newFakeStore()
			store.tokens[testHost] = storedToken()
			dispatcher := newDispatcher(t, channel, store)

			output, err := dispatcher.Execute(context.Background(), testCase.operation, testCase.arguments, types.FormatJSON)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if output != "" {
				t.Fatalf("expected no output, got %q", output)
			}
			if len(channel.calls) != 1 {
				t.Fatalf("expected one call, got %d", len(channel.calls))
			}
		})
	}
}

func TestExecuteSurfacesErrors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name          string
		operation     string
		arguments     types.Arguments
		callError     error
		expectedError error
		expectCall    bool
	}{
		{
			name:          "remote error",
			operation:     "edges_get",
			arguments:     types.Arguments{"id": int64(1)},
			callError:     &types.RemoteAPIError{Method: "enterprise/getEnterpriseEdges", Code: -32603, Message: "enterpriseId is invalid"},
			expectedError: types.ErrRemoteAPI,
			expectCall:    true,
		},
		{
			name:          "missing argument",
			operation:     "sysprop_get",
			arguments:     types.Arguments{},
			expectedError: types.ErrBinding,
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			channel := &fakeChannel{callError: testCase.callError}
			store := newFakeStore()
			store.tokens[testHost] = storedToken()
			dispatcher := newDispatcher(t, channel, store)

			_, err := dispatcher.Execute(context.Background(), testCase.operation, testCase.arguments, types.FormatTable)
			if !errors.Is(err, testCase.expectedError) {
				t.Fatalf("expected %v, got %v", testCase.expectedError, err)
			}
			if called := len(channel.calls) > 0; called != testCase.expectCall {
				t.Fatalf("call sent = %t, want %t", called, testCase.expectCall)
			}
		})
	}
}

func TestLoginAndLogout(t *testing.T) {
	t.Parallel()
	channel := &fakeChannel{loginToken: storedToken()}
	store := newFakeStore()
	dispatcher := newDispatcher(t, channel, store)

	output, err := dispatcher.Execute(context.Background(), registry.OperationLogin, types.Arguments{
		types.ArgumentUsername: "super@velocloud.net",
		types.ArgumentPassword: "secret",
	}, types.FormatTable)
	if err != nil || output != "" {
		t.Fatalf("login: output %q, error %v", output, err)
	}
	if len(channel.logins) != 1 || channel.logins[0][types.ArgumentOperator] != true {
		t.Fatalf("login must default to operator: %+v", channel.logins)
	}
	if _, saved := store.tokens[testHost]; !saved {
		t.Fatalf("login must persist the session token")
	}
	if dispatcher.State() != dispatch.StateAuthenticated {
		t.Fatalf("state after login = %s", dispatcher.State())
	}

	if _, err := dispatcher.Execute(context.Background(), registry.OperationLogout, nil, types.FormatTable); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if channel.logoutCount != 1 {
		t.Fatalf("logout count = %d", channel.logoutCount)
	}
	if _, saved := store.tokens[testHost]; saved {
		t.Fatalf("logout must delete the session token")
	}
	if dispatcher.State() != dispatch.StateUnauthenticated {
		t.Fatalf("state after logout = %s", dispatcher.State())
	}
	if len(channel.calls) != 0 {
		t.Fatalf("authentication must bypass the call path")
	}
}

func TestLoginFailureKeepsUnauthenticated(t *testing.T) {
	t.Parallel()
	channel := &fakeChannel{loginError: &types.AuthError{StatusCode: 200, Reason: "server returned an invalid velocloud.session cookie"}}
	store := newFakeStore()
	dispatcher := newDispatcher(t, channel, store)

	_, err := dispatcher.Execute(context.Background(), registry.OperationLogin, types.Arguments{
		types.ArgumentUsername: "super@velocloud.net",
		types.ArgumentOperator: false,
	}, types.FormatTable)
	if !errors.Is(err, types.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	if len(store.tokens) != 0 || dispatcher.State() != dispatch.StateUnauthenticated {
		t.Fatalf("failed login must not store a session")
	}
	if channel.logins[0][types.ArgumentOperator] != false {
		t.Fatalf("operator flag was not passed through")
	}
}
