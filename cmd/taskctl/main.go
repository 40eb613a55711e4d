// Package main implements taskctl, a command-line client for the Taskflow API.
//
// Usage:
//
//	taskctl [-url URL] [-token TOKEN] [-v] <command> [flags] [args]
//
// The base URL defaults to $TASKFLOW_URL, then http://localhost:8080. The
// token defaults to $TASKFLOW_TOKEN; `taskctl login` prints it.
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

	"github.com/phrazzld/taskflow-api/internal/client"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/viewstate"
)

const defaultURL = "http://localhost:8080"

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// errUsage marks errors caused by bad arguments.
var errUsage = errors.New("usage error")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	fs := flag.NewFlagSet("taskctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	baseURL := fs.String("url", envOr(getenv, "TASKFLOW_URL", defaultURL), "API base URL")
	token := fs.String("token", getenv("TASKFLOW_TOKEN"), "session token")
	verbose := fs.Bool("v", false, "log requests to stderr")
	fs.Usage = func() { printUsage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() == 0 {
		printUsage(stderr, fs)
		return exitUsage
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	c, err := client.New(*baseURL, client.WithLogger(logger.New(stderr, level)))
	if err != nil {
		fmt.Fprintf(stderr, "taskctl: %v\n", err)
		return exitUsage
	}

	cli := &cli{
		client:  c,
		session: &viewstate.Session{Token: *token},
		out:     stdout,
	}

	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "taskctl: unknown command %q\n", name)
		printUsage(stderr, fs)
		return exitUsage
	}

	if err := cmd.run(ctx, cli, rest); err != nil {
		return reportError(stderr, name, err)
	}
	return exitOK
}

// reportError prints err the way the views classify it.
func reportError(w io.Writer, command string, err error) int {
	if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(w, "taskctl %s: %v\n", command, err)
		}
		return exitUsage
	}

	feedback := viewstate.Classify(err)
	switch feedback.Outcome {
	case viewstate.OutcomeSignIn:
		fmt.Fprintln(w, "taskctl: not signed in or session expired; run `taskctl login` and set TASKFLOW_TOKEN")
	case viewstate.OutcomeInline:
		fmt.Fprintf(w, "taskctl %s: %s\n", command, feedback.Message)
		for _, field := range sortedKeys(feedback.Fields) {
			fmt.Fprintf(w, "  %s: %s\n", field, feedback.Fields[field])
		}
	default:
		fmt.Fprintf(w, "taskctl %s: %s (%v)\n", command, feedback.Message, err)
	}
	return exitError
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "usage: taskctl [flags] <command> [command flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, name := range commandNames() {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "flags:")
	fs.PrintDefaults()
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}
