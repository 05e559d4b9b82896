package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

type command interface {
	Run(args []string) int
}

type commandDeps struct {
	Stdout     io.Writer
	Stderr     io.Writer
	RunLaunch  func(args []string, out io.Writer, errOut io.Writer) int
	RunServe   func(args []string, out io.Writer, errOut io.Writer) int
	RunStatus  func(args []string, out io.Writer, errOut io.Writer) int
	RunLogs    func(args []string, out io.Writer, errOut io.Writer) int
	RunKill    func(args []string, out io.Writer, errOut io.Writer) int
	RunVersion func(out io.Writer) int
}

func defaultCommandDeps() commandDeps {
	return commandDeps{
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		RunLaunch:  runLaunch,
		RunServe:   runServe,
		RunStatus:  runStatus,
		RunLogs:    runLogs,
		RunKill:    runKill,
		RunVersion: runVersion,
	}
}

type launchCommand struct{ deps commandDeps }

func (c launchCommand) Run(args []string) int {
	return c.deps.RunLaunch(args, c.deps.Stdout, c.deps.Stderr)
}

type serveCommand struct{ deps commandDeps }

func (c serveCommand) Run(args []string) int {
	return c.deps.RunServe(args, c.deps.Stdout, c.deps.Stderr)
}

type statusCommand struct{ deps commandDeps }

func (c statusCommand) Run(args []string) int {
	return c.deps.RunStatus(args, c.deps.Stdout, c.deps.Stderr)
}

type logsCommand struct{ deps commandDeps }

func (c logsCommand) Run(args []string) int {
	return c.deps.RunLogs(args, c.deps.Stdout, c.deps.Stderr)
}

type killCommand struct{ deps commandDeps }

func (c killCommand) Run(args []string) int {
	return c.deps.RunKill(args, c.deps.Stdout, c.deps.Stderr)
}

type versionCommand struct{ deps commandDeps }

func (c versionCommand) Run(args []string) int {
	return c.deps.RunVersion(c.deps.Stdout)
}

type usageCommand struct {
	deps    commandDeps
	unknown string
}

func (c usageCommand) Run(args []string) int {
	if c.unknown != "" {
		fmt.Fprintf(c.deps.Stderr, "sashboard: unknown command %q\n\n", c.unknown)
	}
	printUsage(c.deps.Stderr)
	if c.unknown != "" {
		return 2
	}
	return 0
}

// resolveCommand maps os.Args[1:] onto a subcommand. Bare invocation and
// flag-only invocation both launch, preserving the original one-shot
// launcher behavior.
func resolveCommand(args []string, deps commandDeps) (command, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return launchCommand{deps: deps}, args
	}
	switch args[0] {
	case "launch":
		return launchCommand{deps: deps}, args[1:]
	case "serve":
		return serveCommand{deps: deps}, args[1:]
	case "status":
		return statusCommand{deps: deps}, args[1:]
	case "logs":
		return logsCommand{deps: deps}, args[1:]
	case "kill":
		return killCommand{deps: deps}, args[1:]
	case "version":
		return versionCommand{deps: deps}, args[1:]
	case "help":
		return usageCommand{deps: deps}, args[1:]
	}
	return usageCommand{deps: deps, unknown: args[0]}, args
}

func printUsage(out io.Writer) {
	fmt.Fprint(out, `Usage: sashboard [command] [flags]

Commands:
  launch    start the dashboard server in a detached tmux session (default)
  serve     run the dashboard server in this process
  status    report whether the dashboard session is running
  logs      print the tail of the dashboard session's pane
  kill      terminate the dashboard session
  version   print version information
  help      print this help

Run "sashboard <command> -h" for command flags.
`)
}
