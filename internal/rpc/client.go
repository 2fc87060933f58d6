// Package rpc implements the JSON-RPC over HTTP channel to the orchestrator together
// with the cookie based login and logout primitives.
package rpc

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/temirov/vcoctl/internal/session"
	"github.com/temirov/vcoctl/internal/types"
)

const (
	// SessionCookieName is the cookie the orchestrator sets on a successful login.
	SessionCookieName = "velocloud.session"

	invalidCookieMarker = "invalid"
	defaultScheme       = "https://"
	portalPath          = "/portal/"
	livePullPath        = "/livepull/liveData/"
	operatorLoginPath   = "/login/operatorLogin"
	enterpriseLoginPath = "/login/enterpriseLogin"
	logoutPath          = "/logout"
	headerContentType   = "Content-Type"
	mimeTypeJSON        = "application/json"
	errorFieldName      = "error"
	resultFieldName     = "result"
	maximumBodyExcerpt  = 512

	errorMissingHostMessage     = "orchestrator host is required"
	errorInvalidHostFormat      = "invalid orchestrator host %q: %w"
	errorMarshalRequestFormat   = "marshal request for %s: %w"
	errorCreateRequestFormat    = "create request for %s: %w"
	errorSendRequestFormat      = "%w: post %s: %v"
	errorReadResponseFormat     = "%w: read response from %s: %v"
	errorDecodeResponseFormat   = "%w: response from %s is not valid JSON (status %d): %s"
	errorMissingResultFormat    = "%w: response from %s carries neither result nor error"
	loginRejectedReason         = "login rejected"
	logoutRejectedReason        = "logout rejected"
	missingSessionCookieReason  = "server did not set the " + SessionCookieName + " cookie"
	invalidSessionCookieReason  = "server returned an invalid " + SessionCookieName + " cookie"
	unknownRemoteErrorMessage   = "unknown error"
	cookieJarCreationFailedText = "create cookie jar: %w"
)

// Options configures a Client.
type Options struct {
	// VerifyTLS enables certificate verification. Orchestrators are frequently deployed
	// with self-signed certificates, so verification is opt-in.
	VerifyTLS bool
	// Transport overrides the HTTP transport. Used by tests.
	Transport http.RoundTripper
	// Logger receives debug level request traces.
	Logger *zap.Logger
}

// Client talks to a single orchestrator host.
type Client struct {
	httpClient *http.Client
	rootURL    *url.URL
	host       string
	sequence   int
	logger     *zap.Logger
}

// NewClient builds a client for host. A bare host name is reached over https; an explicit
// http:// or https:// scheme is kept.
func NewClient(host string, options Options) (*Client, error) {
	rootURL, err := RootURL(host)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf(cookieJarCreationFailedText, err)
	}
	transport := options.Transport
	if transport == nil {
		defaultTransport := http.DefaultTransport.(*http.Transport).Clone()
		if !options.VerifyTLS {
			// #nosec G402
			defaultTransport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		transport = defaultTransport
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Jar: jar, Transport: transport},
		rootURL:    rootURL,
		host:       host,
		logger:     logger,
	}, nil
}

// RootURL translates an orchestrator host into the root URL of its API.
func RootURL(host string) (*url.URL, error) {
	trimmedHost := strings.TrimRight(strings.TrimSpace(host), "/")
	if trimmedHost == "" {
		return nil, errors.New(errorMissingHostMessage)
	}
	lowerHost := strings.ToLower(trimmedHost)
	if !strings.HasPrefix(lowerHost, "http://") && !strings.HasPrefix(lowerHost, "https://") {
		trimmedHost = defaultScheme + trimmedHost
	}
	parsedURL, err := url.Parse(trimmedHost)
	if err != nil {
		return nil, fmt.Errorf(errorInvalidHostFormat, host, err)
	}
	if parsedURL.Host == "" {
		return nil, fmt.Errorf(errorInvalidHostFormat, host, errors.New(errorMissingHostMessage))
	}
	parsedURL.Path = ""
	return parsedURL, nil
}

// Root returns the root URL of the orchestrator API.
func (client *Client) Root() string {
	return client.rootURL.String()
}

// EndpointURL returns the absolute URL of an endpoint.
func (client *Client) EndpointURL(endpoint Endpoint) string {
	if endpoint == EndpointLivePull {
		return client.urlFor(livePullPath)
	}
	return client.urlFor(portalPath)
}

func (client *Client) urlFor(path string) string {
	return strings.TrimRight(client.rootURL.String(), "/") + path
}

// HasSession reports whether the session cookie is currently held.
func (client *Client) HasSession() bool {
	for _, cookie := range client.httpClient.Jar.Cookies(client.rootURL) {
		if cookie.Name == SessionCookieName {
			return true
		}
	}
	return false
}

// Resume attaches a previously persisted token to the transport.
func (client *Client) Resume(token session.Token) {
	cookies := make([]*http.Cookie, 0, len(token.Cookies))
	for _, storedCookie := range token.Cookies {
		cookies = append(cookies, &http.Cookie{Name: storedCookie.Name, Value: storedCookie.Value, Path: "/"})
	}
	client.httpClient.Jar.SetCookies(client.rootURL, cookies)
}

// Call issues one JSON-RPC request and returns its result payload.
func (client *Client) Call(ctx context.Context, method string, params map[string]any) (gjson.Result, error) {
	if !client.HasSession() {
		return gjson.Result{}, types.ErrNoSession
	}
	if params == nil {
		params = map[string]any{}
	}
	client.sequence++
	cleanedMethod := CleanMethodName(method)
	request := Request{
		JSONRPC: jsonRPCVersion,
		ID:      client.sequence,
		Method:  cleanedMethod,
		Params:  params,
	}
	endpoint := EndpointFor(cleanedMethod)
	client.logger.Debug("calling remote method",
		zap.String("method", cleanedMethod),
		zap.String("endpoint", string(endpoint)),
		zap.Int("id", request.ID),
	)

	response, err := client.Post(ctx, endpoint, request)
	if err != nil {
		return gjson.Result{}, err
	}
	errorField := response.Get(errorFieldName)
	if errorField.Exists() && errorField.Type != gjson.Null {
		return gjson.Result{}, newRemoteAPIError(cleanedMethod, errorField)
	}
	result := response.Get(resultFieldName)
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf(errorMissingResultFormat, types.ErrTransport, cleanedMethod)
	}
	return result, nil
}

// Post sends payload to an endpoint and returns the decoded response document.
func (client *Client) Post(ctx context.Context, endpoint Endpoint, payload any) (gjson.Result, error) {
	targetURL := client.EndpointURL(endpoint)
	statusCode, body, err := client.postJSON(ctx, targetURL, payload)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf(errorDecodeResponseFormat, types.ErrTransport, targetURL, statusCode, excerpt(body))
	}
	return gjson.ParseBytes(body), nil
}

// Login authenticates as an operator or enterprise user and returns the session token.
func (client *Client) Login(ctx context.Context, username string, password string, operator bool) (session.Token, error) {
	loginPath := enterpriseLoginPath
	if operator {
		loginPath = operatorLoginPath
	}
	targetURL := client.urlFor(loginPath)
	client.logger.Debug("logging in", zap.String("url", targetURL), zap.String("username", username))

	credentials := map[string]string{"username": username, "password": password}
	statusCode, body, err := client.postJSON(ctx, targetURL, credentials)
	if err != nil {
		return session.Token{}, err
	}
	if statusCode != http.StatusOK {
		return session.Token{}, &types.AuthError{StatusCode: statusCode, Reason: loginRejectedReason, Body: excerpt(body)}
	}

	var token session.Token
	sessionCookieFound := false
	for _, cookie := range client.httpClient.Jar.Cookies(client.rootURL) {
		if cookie.Name == SessionCookieName {
			if strings.Contains(strings.ToLower(cookie.Value), invalidCookieMarker) {
				return session.Token{}, &types.AuthError{StatusCode: statusCode, Reason: invalidSessionCookieReason}
			}
			sessionCookieFound = true
		}
		token.Cookies = append(token.Cookies, session.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	if !sessionCookieFound {
		return session.Token{}, &types.AuthError{StatusCode: statusCode, Reason: missingSessionCookieReason}
	}
	token.Host = client.host
	return token, nil
}

// Logout terminates the server side session and forgets the local cookies.
func (client *Client) Logout(ctx context.Context) error {
	targetURL := client.urlFor(logoutPath)
	client.logger.Debug("logging out", zap.String("url", targetURL))
	statusCode, body, err := client.postJSON(ctx, targetURL, map[string]any{})
	if err != nil {
		return err
	}
	if statusCode != http.StatusOK {
		return &types.AuthError{StatusCode: statusCode, Reason: logoutRejectedReason, Body: excerpt(body)}
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf(cookieJarCreationFailedText, err)
	}
	client.httpClient.Jar = jar
	return nil
}

func (client *Client) postJSON(ctx context.Context, targetURL string, payload any) (int, []byte, error) {
	encodedPayload, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf(errorMarshalRequestFormat, targetURL, err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewReader(encodedPayload))
	if err != nil {
		return 0, nil, fmt.Errorf(errorCreateRequestFormat, targetURL, err)
	}
	request.Header.Set(headerContentType, mimeTypeJSON)

	response, err := client.httpClient.Do(request)
	if err != nil {
		return 0, nil, fmt.Errorf(errorSendRequestFormat, types.ErrTransport, targetURL, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return response.StatusCode, nil, fmt.Errorf(errorReadResponseFormat, types.ErrTransport, targetURL, err)
	}
	return response.StatusCode, body, nil
}

func newRemoteAPIError(method string, errorField gjson.Result) *types.RemoteAPIError {
	message := errorField.Get("message").String()
	if message == "" {
		message = errorField.String()
	}
	if message == "" {
		message = unknownRemoteErrorMessage
	}
	return &types.RemoteAPIError{
		Method:  method,
		Code:    int(errorField.Get("code").Int()),
		Message: message,
	}
}

func excerpt(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > maximumBodyExcerpt {
		return text[:maximumBodyExcerpt] + "..."
	}
	return text
}
