package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	"ursa/internal/commands"
	"ursa/internal/config"

	"golang.org/x/term"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 1
	}

	command := args[0]

	switch command {
	case "version", "-v", "--version":
		fmt.Printf("ursa %s\n", version)
		return 0
	case "help", "-h", "--help":
		printUsage()
		return 0
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load config: %v\n", err)
		return 1
	}

	log := cfg.NewLogger(os.Stderr)
	slog.SetDefault(log)

	start := time.Now()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := commands.New(
		cfg,
		version,
		log,
		os.Stdout,
		os.Stderr,
		term.IsTerminal(int(os.Stdout.Fd())), //nolint:gosec // fd fits in int
	)

	var handler func(context.Context, []string) error

	switch command {
	case "merge":
		handler = app.HandleMerge
	case "posts":
		handler = app.HandlePosts
	case "liner":
		handler = app.HandleLiner
	case "verify-json":
		handler = app.HandleVerifyJSON
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		return 1
	}

	log.DebugContext(ctx, "Running command",
		"command", command,
		"baseURL", cfg.BaseURL)

	if err = handler(ctx, args[1:]); err != nil {
		if errors.Is(err, commands.ErrUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}

		log.ErrorContext(ctx, "Command failed",
			"error", err,
			"command", command,
			"uptimeSeconds", time.Since(start).Seconds())

		return 1
	}

	log.DebugContext(ctx, "Command finished",
		"command", command,
		"uptimeSeconds", time.Since(start).Seconds())

	return 0
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: ursa <command> [flags]

Commands:
  merge         Join posts with their authors and print or save the result
  posts         Fetch all posts, or one post with its comments
  liner         Number the lines of a text file
  verify-json   Check whether a file contains valid JSON
  version       Print the version
  help          Show this help

Environment:
  URSA_BASE_URL      API base URL (default https://jsonplaceholder.typicode.com)
  URSA_HTTP_TIMEOUT  per-request timeout, 0 disables (default 30s)
  URSA_USER_AGENT    User-Agent header (default ursa/<version>)
  URSA_LOG_LEVEL     debug, info, warn or error (default info)
  URSA_LOG_FORMAT    text or json (default text)

Run 'ursa <command> -h' for command flags.
`)
}
