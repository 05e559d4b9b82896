//go:build windows

package launcher

import (
	"context"
	"errors"
	"io"
)

// RunForeground is unsupported on Windows; launching requires tmux on unix.
func RunForeground(ctx context.Context, argv []string, output io.Writer) error {
	return errors.New("foreground mode is not supported on windows")
}
