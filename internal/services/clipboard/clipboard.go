// Package clipboard copies rendered command output to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnsupported reports that no clipboard utility is available on this host.
var ErrUnsupported = errors.New("clipboard is not available on this system")

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// CopierFunc adapts a function to the Copier interface.
type CopierFunc func(text string) error

// Copy calls the wrapped function.
func (copier CopierFunc) Copy(text string) error {
	return copier(text)
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a Clipboard service implementation.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

var (
	_ Copier = (*Service)(nil)
	_ Copier = CopierFunc(nil)
)
