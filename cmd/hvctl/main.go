// hvctl is the operator CLI for the HV crate: it lists ticket types,
// validates ticket envelopes, and executes tickets against a live crate.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hvctl-io/hvctl/internal/board"
	"github.com/hvctl-io/hvctl/internal/config"
	"github.com/hvctl-io/hvctl/internal/monitor"
	"github.com/hvctl-io/hvctl/internal/setup"
	"github.com/hvctl-io/hvctl/internal/ticket"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "types":
		cmdTypes()
	case "inspect":
		cmdInspect(os.Args[2:])
	case "exec":
		cmdExec(os.Args[2:])
	case "run":
		cmdRun(os.Args[2:])
	case "watch":
		cmdWatch(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hvctl - HV crate ticket dispatch

Usage:
  hvctl types                                    List ticket types and their parameters
  hvctl inspect -type <name> [json|-]            Validate a ticket envelope
  hvctl exec -config <path> [flags] [json|-]     Execute one ticket
  hvctl run -config <path> [flags]               Execute tickets line by line from stdin
  hvctl watch -config <path> [flags]             Periodically read back and log parameters`)
}

// readInput returns the trailing positional argument, or stdin when it is
// "-" or absent.
func readInput(args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newHandler builds a live handler from a crate config. Only the fake
// driver ships with this build; the real driver plugs into the same seam.
func newHandler(configPath string, logger *slog.Logger) (*setup.Handler, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	store, err := setup.NewSQLiteStore(setup.InMemory)
	if err != nil {
		return nil, err
	}
	h, err := setup.New(cfg, board.NewFake(), store, setup.WithLogger(logger))
	if err != nil {
		store.Close()
		return nil, err
	}
	return h, nil
}

func cmdTypes() {
	for _, t := range ticket.Types() {
		desc, err := ticket.Describe(t)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(desc.JSON())
	}
}

func cmdInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	typeName := fs.String("type", "", "Ticket type to validate against")
	fs.Parse(args)

	if *typeName == "" {
		fmt.Fprintln(os.Stderr, "error: -type is required")
		os.Exit(1)
	}
	raw, err := readInput(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := ticket.Inspect(raw, ticket.Type(*typeName)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("valid")
}

// execute inspects, deserializes, and executes one envelope, returning the
// result envelope JSON. Validation and dispatch failures surface as errors;
// execution failures are part of the result.
func execute(raw string, h ticket.Handler) (string, error) {
	tk, err := ticket.Deserialize(raw)
	if err != nil {
		return "", err
	}
	if err := ticket.Inspect(raw, tk.Type()); err != nil {
		return "", err
	}
	return tk.Execute(h).JSON(), nil
}

func cmdExec(args []string) {
	fs := flag.NewFlagSet("exec", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to crate config (JSON or YAML)")
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Parse(args)

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "error: -config is required")
		os.Exit(1)
	}
	raw, err := readInput(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(*verbose)
	h, err := newHandler(*configPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer h.Close()

	result, err := execute(raw, h)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(result)
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to crate config (JSON or YAML)")
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Parse(args)

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "error: -config is required")
		os.Exit(1)
	}

	logger := newLogger(*verbose)
	h, err := newHandler(*configPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer h.Close()

	// One ticket envelope per line in, one result envelope per line out.
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		result, err := execute(line, h)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(result)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func cmdWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to crate config (JSON or YAML)")
	schedule := fs.String("every", "@every 30s", "Readback cron schedule")
	params := fs.String("params", "", "Comma-separated parameter names (all when empty)")
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Parse(args)

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "error: -config is required")
		os.Exit(1)
	}

	logger := newLogger(*verbose)
	h, err := newHandler(*configPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer h.Close()

	var selected []string
	if *params != "" {
		selected = strings.Split(*params, ",")
	}
	m, err := monitor.New(h, *schedule, selected, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	m.Start(ctx)
}
