package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"time"

	"sashboard/internal/config"
	"sashboard/internal/launcher"
	"sashboard/internal/version"
)

const portProbeTimeout = 500 * time.Millisecond

type sessionFlags struct {
	configPath string
	session    string
}

func parseSessionFlags(name string, args []string, errOut io.Writer, extra func(*flag.FlagSet)) (sessionFlags, bool) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(errOut)
	parsed := sessionFlags{}
	flags.StringVar(&parsed.configPath, "config", config.DefaultPath(), "config file path")
	flags.StringVar(&parsed.session, "session", "", "tmux session name")
	if extra != nil {
		extra(flags)
	}
	if err := flags.Parse(args); err != nil {
		return parsed, false
	}
	return parsed, true
}

func sessionConfig(parsed sessionFlags) (config.Config, error) {
	cfg, err := loadRuntime(parsed.configPath)
	if err != nil {
		return cfg, err
	}
	if parsed.session != "" {
		cfg.SessionName = parsed.session
	}
	return config.Normalize(cfg)
}

func runStatus(args []string, out io.Writer, errOut io.Writer) int {
	parsed, ok := parseSessionFlags("status", args, errOut, nil)
	if !ok {
		return 2
	}
	cfg, err := sessionConfig(parsed)
	if err != nil {
		fmt.Fprintln(errOut, "sashboard:", err)
		return 2
	}

	l := launcher.New(newTmuxClient(), nil)
	active, err := l.Status(cfg.SessionName)
	if err != nil {
		fmt.Fprintln(errOut, "sashboard:", err)
		return 2
	}
	if !active {
		fmt.Fprintf(out, "session %q is not running\n", cfg.SessionName)
		return 1
	}
	fmt.Fprintf(out, "session %q is running\n", cfg.SessionName)
	if probePort(cfg.ListenAddr) {
		fmt.Fprintf(out, "dashboard answering on http://%s\n", cfg.ListenAddr)
	} else {
		fmt.Fprintf(out, "dashboard not answering on %s (still starting, or failed; see 'sashboard logs')\n", cfg.ListenAddr)
	}
	return 0
}

// probePort distinguishes "session exists" from "server is actually up": the
// session can outlive a crashed server command, or the server may still be
// starting.
func probePort(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, portProbeTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func runLogs(args []string, out io.Writer, errOut io.Writer) int {
	var lines int
	parsed, ok := parseSessionFlags("logs", args, errOut, func(flags *flag.FlagSet) {
		flags.IntVar(&lines, "lines", 0, "number of scrollback lines to capture")
	})
	if !ok {
		return 2
	}
	cfg, err := sessionConfig(parsed)
	if err != nil {
		fmt.Fprintln(errOut, "sashboard:", err)
		return 2
	}
	if lines <= 0 {
		lines = cfg.SessionLogLines
	}

	l := launcher.New(newTmuxClient(), nil)
	output, err := l.Logs(cfg.SessionName, lines)
	if err != nil {
		fmt.Fprintln(errOut, "sashboard:", err)
		return 1
	}
	_, _ = out.Write(output)
	return 0
}

func runKill(args []string, out io.Writer, errOut io.Writer) int {
	parsed, ok := parseSessionFlags("kill", args, errOut, nil)
	if !ok {
		return 2
	}
	cfg, err := sessionConfig(parsed)
	if err != nil {
		fmt.Fprintln(errOut, "sashboard:", err)
		return 2
	}

	l := launcher.New(newTmuxClient(), nil)
	if err := l.Kill(cfg.SessionName); err != nil {
		fmt.Fprintln(errOut, "sashboard:", err)
		return 1
	}
	fmt.Fprintf(out, "killed session %q\n", cfg.SessionName)
	return 0
}

func runVersion(out io.Writer) int {
	fmt.Fprintln(out, version.Get().String())
	return 0
}
