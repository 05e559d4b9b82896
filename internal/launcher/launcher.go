package launcher

import (
	"errors"
	"strings"

	"sashboard/internal/logging"
	"sashboard/internal/tmux"
)

// Client defines the tmux operations used by this package.
type Client interface {
	CreateSession(name string, command []string) error
	HasSession(name string) (bool, error)
	KillSession(name string) error
	CapturePane(target string, lines int) ([]byte, error)
}

// Spec describes a dashboard launch.
type Spec struct {
	SessionName  string
	ActivatePath string
	Argv         []string
}

// Result reports the outcome of a launch request.
type Result struct {
	SessionName    string
	AlreadyRunning bool
}

// Launcher starts the dashboard server in a detached tmux session. It is
// fire-and-forget: a launch succeeds once the session is created, and
// failures inside the session (missing activation script, missing server
// binary) are only visible through Logs.
type Launcher struct {
	client Client
	logger *logging.Logger
}

func New(client Client, logger *logging.Logger) *Launcher {
	if client == nil {
		client = tmux.NewClient()
	}
	return &Launcher{client: client, logger: logger}
}

// Launch creates the detached session unless one with the same name is
// already active. Re-running while a session is live is reported, not an
// error: exactly one session per name.
func (l *Launcher) Launch(spec Spec) (Result, error) {
	if l == nil || l.client == nil {
		return Result{}, errors.New("tmux client unavailable")
	}
	name := strings.TrimSpace(spec.SessionName)
	if name == "" {
		return Result{}, errors.New("session name is required")
	}
	if len(spec.Argv) == 0 {
		return Result{}, errors.New("server command is required")
	}

	active, err := l.client.HasSession(name)
	if err != nil {
		return Result{}, err
	}
	if active {
		l.info("session already running", map[string]string{"session": name})
		return Result{SessionName: name, AlreadyRunning: true}, nil
	}

	command := BuildSessionCommand(spec.ActivatePath, spec.Argv)
	if err := l.client.CreateSession(name, command); err != nil {
		return Result{}, err
	}
	l.info("session created", map[string]string{"session": name})
	return Result{SessionName: name}, nil
}

// Status reports whether the named session is active.
func (l *Launcher) Status(name string) (bool, error) {
	if l == nil || l.client == nil {
		return false, errors.New("tmux client unavailable")
	}
	return l.client.HasSession(name)
}

// Logs captures the tail of the session's pane, including scrollback, so
// in-session failures can be diagnosed without attaching.
func (l *Launcher) Logs(name string, lines int) ([]byte, error) {
	if l == nil || l.client == nil {
		return nil, errors.New("tmux client unavailable")
	}
	active, err := l.client.HasSession(name)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, errors.New("session not running: " + name)
	}
	return l.client.CapturePane(name, lines)
}

// Kill terminates the named session.
func (l *Launcher) Kill(name string) error {
	if l == nil || l.client == nil {
		return errors.New("tmux client unavailable")
	}
	active, err := l.client.HasSession(name)
	if err != nil {
		return err
	}
	if !active {
		return errors.New("session not running: " + name)
	}
	if err := l.client.KillSession(name); err != nil {
		return err
	}
	l.info("session killed", map[string]string{"session": name})
	return nil
}

func (l *Launcher) info(message string, fields map[string]string) {
	if l.logger != nil {
		l.logger.Info(message, fields)
	}
}
