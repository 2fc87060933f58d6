package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileNameIsDeterministic(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		host     string
		expected string
	}{
		{name: "bare_host", host: "vco.example.net", expected: "vco.example.net.json"},
		{name: "scheme_stripped", host: "https://VCO.example.net/", expected: "vco.example.net.json"},
		{name: "port_replaced", host: "http://127.0.0.1:8443", expected: "127.0.0.1_8443.json"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			if actual := FileName(testCase.host); actual != testCase.expected {
				t.Fatalf("expected %s, got %s", testCase.expected, actual)
			}
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	directory := filepath.Join(t.TempDir(), "sessions")
	store := NewStore(directory)
	host := "vco.example.net"

	if _, err := store.Load(host); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before save, got %v", err)
	}

	token := Token{Cookies: []Cookie{{Name: "velocloud.session", Value: "abc"}}}
	if err := store.Save(host, token); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(store.Path(host))
	if err != nil {
		t.Fatalf("stat session file: %v", err)
	}
	if info.Mode().Perm() != sessionFileMode {
		t.Fatalf("expected mode %o, got %o", sessionFileMode, info.Mode().Perm())
	}

	loaded, err := store.Load(host)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Host != host {
		t.Fatalf("expected host %s, got %s", host, loaded.Host)
	}
	cookie, found := loaded.Cookie("velocloud.session")
	if !found || cookie.Value != "abc" {
		t.Fatalf("expected stored cookie, got %+v", loaded.Cookies)
	}
	if loaded.CreatedAt.IsZero() {
		t.Fatalf("expected creation time to be recorded")
	}

	if err := store.Delete(host); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(host); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(host); err != nil {
		t.Fatalf("deleting a missing session should succeed: %v", err)
	}
}

func TestLoadRejectsCorruptFiles(t *testing.T) {
	t.Parallel()

	directory := t.TempDir()
	store := NewStore(directory)
	testCases := []struct {
		name    string
		content string
	}{
		{name: "invalid_json", content: "{not json"},
		{name: "no_cookies", content: `{"host":"h","cookies":[]}`},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			host := testCase.name + ".example.net"
			if err := os.WriteFile(store.Path(host), []byte(testCase.content), 0o600); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, err := store.Load(host)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if errors.Is(err, ErrNotFound) {
				t.Fatalf("corrupt file must not be reported as missing: %v", err)
			}
		})
	}
}

func TestDefaultDirectoryHonoursXDG(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv(xdgConfigHomeEnvironment, configHome)

	expected := filepath.Join(configHome, "vcoctl", "sessions")
	if actual := NewStore("").Directory(); actual != expected {
		t.Fatalf("expected %s, got %s", expected, actual)
	}
}
