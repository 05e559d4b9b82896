package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"sashboard/internal/config"
	"sashboard/internal/launcher"
	"sashboard/internal/logging"
	"sashboard/internal/tmux"
)

// newTmuxClient is replaced in tests with a fake.
var newTmuxClient = func() launcher.Client {
	return tmux.NewClient()
}

func runLaunch(args []string, out io.Writer, errOut io.Writer) int {
	flags := flag.NewFlagSet("launch", flag.ContinueOnError)
	flags.SetOutput(errOut)
	configPath := flags.String("config", config.DefaultPath(), "config file path")
	session := flags.String("session", "", "tmux session name")
	venv := flags.String("venv", "", "virtualenv activation script sourced before the server starts")
	entry := flags.String("entry", "", "entry point appended to the server command")
	listen := flags.String("listen", "", "dashboard listen address")
	foreground := flags.Bool("foreground", false, "run the server in the foreground instead of a tmux session")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadRuntime(*configPath)
	if err != nil {
		fmt.Fprintln(errOut, "sashboard:", err)
		return 1
	}
	if *session != "" {
		cfg.SessionName = *session
	}
	if *venv != "" {
		cfg.VenvActivate = *venv
	}
	if *entry != "" {
		cfg.EntryPath = *entry
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	cfg, err = config.Normalize(cfg)
	if err != nil {
		fmt.Fprintln(errOut, "sashboard:", err)
		return 1
	}

	argv := serverArgv(cfg)
	if *foreground {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err := launcher.RunForeground(ctx, argv, out)
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(errOut, "sashboard:", err)
			return 1
		}
		return 0
	}

	logger := newCommandLogger(cfg)
	l := launcher.New(newTmuxClient(), logger)
	result, err := l.Launch(launcher.Spec{
		SessionName:  cfg.SessionName,
		ActivatePath: cfg.VenvActivate,
		Argv:         argv,
	})
	if err != nil {
		fmt.Fprintln(errOut, "sashboard:", err)
		return 1
	}
	if result.AlreadyRunning {
		fmt.Fprintf(out, "session %q is already running\n", result.SessionName)
		return 0
	}
	fmt.Fprintf(out, "started session %q, dashboard on http://%s\n", result.SessionName, cfg.ListenAddr)
	return 0
}

// serverArgv builds the command the session runs. With no configured server
// command the binary re-invokes itself in serve mode, so a plain "sashboard"
// needs nothing besides tmux on the PATH.
func serverArgv(cfg config.Config) []string {
	argv := cfg.ServerCommand
	if len(argv) == 0 {
		exe, err := os.Executable()
		if err != nil {
			exe = "sashboard"
		}
		argv = []string{exe, "serve", "--listen", cfg.ListenAddr}
	}
	if cfg.EntryPath != "" {
		argv = append(append([]string{}, argv...), cfg.EntryPath)
	}
	return argv
}

func loadRuntime(configPath string) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	return config.ApplyEnv(cfg, nil), nil
}

func newCommandLogger(cfg config.Config) *logging.Logger {
	level, ok := logging.ParseLevel(cfg.LogLevel)
	if !ok {
		level = logging.LevelInfo
	}
	return logging.NewLogger(level)
}
