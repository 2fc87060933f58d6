package cli

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

var errNoTerminal = errors.New("no terminal available for an interactive prompt, pass the value as a flag")

// promptSecret reads a value from the terminal without echoing it.
func promptSecret(prompt string) (string, error) {
	stdinFileDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFileDescriptor) {
		return "", errNoTerminal
	}
	fmt.Fprint(os.Stderr, prompt)
	secretBytes, err := term.ReadPassword(stdinFileDescriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return string(secretBytes), nil
}

// terminalWidth reports the stdout column count, or zero when stdout is not a terminal.
func terminalWidth() int {
	stdoutFileDescriptor := int(os.Stdout.Fd())
	if !term.IsTerminal(stdoutFileDescriptor) {
		return 0
	}
	width, _, err := term.GetSize(stdoutFileDescriptor)
	if err != nil {
		return 0
	}
	return width
}
