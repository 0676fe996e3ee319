//go:build !cgo

package hal

import (
	"context"
	"fmt"
)

func RunWindow(context.Context, Host, WindowConfig) error {
	return fmt.Errorf("window mode requires cgo (build/run with CGO_ENABLED=1): %w", ErrNotAvailable)
}
