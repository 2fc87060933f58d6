// Package session persists authentication tokens per orchestrator host so that
// separate vcoctl invocations can reuse a single login.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/temirov/vcoctl/internal/utils"
)

const (
	sessionFileExtension     = ".json"
	sessionDirectoryMode     = 0o700
	sessionFileMode          = 0o600
	xdgConfigHomeEnvironment = "XDG_CONFIG_HOME"
	fallbackSessionDirectory = "/tmp/vcoctl-sessions"

	errorMissingHostMessage    = "session host is required"
	errorReadSessionFormat     = "reading session file %s: %w"
	errorParseSessionFormat    = "parsing session file %s: %w"
	errorEmptySessionFormat    = "session file %s holds no cookies"
	errorMarshalSessionFormat  = "marshaling session for %s: %w"
	errorCreateDirectoryFormat = "creating session directory %s: %w"
	errorWriteSessionFormat    = "writing session file %s: %w"
	errorDeleteSessionFormat   = "deleting session file %s: %w"
)

// ErrNotFound reports that no session file exists for a host.
var ErrNotFound = errors.New("session not found")

// Cookie is one persisted HTTP cookie.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Token is the credential material obtained by a successful login.
type Token struct {
	Host      string    `json:"host"`
	Cookies   []Cookie  `json:"cookies"`
	CreatedAt time.Time `json:"created_at"`
}

// Cookie returns the cookie with the given name.
func (token Token) Cookie(name string) (Cookie, bool) {
	for _, cookie := range token.Cookies {
		if cookie.Name == name {
			return cookie, true
		}
	}
	return Cookie{}, false
}

// Store keeps one session file per host inside a directory.
// No locking is applied: concurrent invocations against the same host may lose an update.
type Store struct {
	directory string
}

// NewStore returns a store rooted at directory. An empty directory selects DefaultDirectory.
func NewStore(directory string) Store {
	if strings.TrimSpace(directory) == "" {
		directory = DefaultDirectory()
	}
	return Store{directory: directory}
}

// DefaultDirectory returns $XDG_CONFIG_HOME/vcoctl/sessions, falling back to ~/.config.
func DefaultDirectory() string {
	configDirectory := os.Getenv(xdgConfigHomeEnvironment)
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil || homeDirectory == "" {
			return fallbackSessionDirectory
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, utils.ApplicationName, utils.SessionDirectoryName)
}

// Directory reports where session files are written.
func (store Store) Directory() string {
	return store.directory
}

// Path returns the session file path for host.
func (store Store) Path(host string) string {
	return filepath.Join(store.directory, FileName(host))
}

// FileName derives a deterministic file name from a host identifier. The scheme and
// any trailing slash are ignored and characters unsafe in file names are replaced.
func FileName(host string) string {
	normalized := strings.ToLower(strings.TrimSpace(host))
	normalized = strings.TrimPrefix(normalized, "https://")
	normalized = strings.TrimPrefix(normalized, "http://")
	normalized = strings.TrimRight(normalized, "/")
	var builder strings.Builder
	for _, character := range normalized {
		switch {
		case character >= 'a' && character <= 'z',
			character >= '0' && character <= '9',
			character == '.', character == '-', character == '_':
			builder.WriteRune(character)
		default:
			builder.WriteRune('_')
		}
	}
	return builder.String() + sessionFileExtension
}

// Load reads the token stored for host. A missing file yields ErrNotFound.
func (store Store) Load(host string) (Token, error) {
	if strings.TrimSpace(host) == "" {
		return Token{}, errors.New(errorMissingHostMessage)
	}
	path := store.Path(host)
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Token{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Token{}, fmt.Errorf(errorReadSessionFormat, path, err)
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return Token{}, fmt.Errorf(errorParseSessionFormat, path, err)
	}
	if len(token.Cookies) == 0 {
		return Token{}, fmt.Errorf(errorEmptySessionFormat, path)
	}
	return token, nil
}

// Save writes token for host, creating the session directory when needed.
func (store Store) Save(host string, token Token) error {
	if strings.TrimSpace(host) == "" {
		return errors.New(errorMissingHostMessage)
	}
	if token.Host == "" {
		token.Host = host
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf(errorMarshalSessionFormat, host, err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(store.directory, sessionDirectoryMode); err != nil {
		return fmt.Errorf(errorCreateDirectoryFormat, store.directory, err)
	}
	path := store.Path(host)
	if err := os.WriteFile(path, data, sessionFileMode); err != nil {
		return fmt.Errorf(errorWriteSessionFormat, path, err)
	}
	return nil
}

// Delete removes the token stored for host. Deleting a missing session is not an error.
func (store Store) Delete(host string) error {
	if strings.TrimSpace(host) == "" {
		return errors.New(errorMissingHostMessage)
	}
	path := store.Path(host)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf(errorDeleteSessionFormat, path, err)
	}
	return nil
}
