//go:build !windows

package launcher

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

// RunForeground runs argv under a pty in the calling process instead of a
// detached session, copying output to the writer until the process exits.
// Cancelling the context kills the process group.
func RunForeground(ctx context.Context, argv []string, output io.Writer) error {
	if len(argv) == 0 {
		return errors.New("server command is required")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	// pty.Start sets Setsid, which already makes the child the leader of a
	// new process group; an explicit Setpgid would make exec fail with EPERM.
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return err
	}
	defer ptmx.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if output != nil {
			// The pty read fails with EIO once the child exits; that is the
			// normal end of stream, not an error worth surfacing.
			_, _ = io.Copy(output, ptmx)
		} else {
			_, _ = io.Copy(io.Discard, ptmx)
		}
	}()

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
	}()

	select {
	case err := <-waitErr:
		<-done
		return err
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
		}
		<-waitErr
		<-done
		return ctx.Err()
	}
}
