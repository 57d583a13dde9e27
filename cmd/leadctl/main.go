// Command leadctl submits a lead to a running installer-man server the same
// way the site's contact form does.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/installer-man/internal/leadclient"
	"github.com/wolfman30/installer-man/internal/leads"
	"github.com/wolfman30/installer-man/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// consoleNotifier prints outcomes where a browser would show a toast.
type consoleNotifier struct {
	out io.Writer
	err io.Writer
}

func (n consoleNotifier) Success(msg string) { fmt.Fprintln(n.out, msg) }
func (n consoleNotifier) Error(msg string)   { fmt.Fprintln(n.err, msg) }

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("leadctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	apiURL := fs.String("api", envOr("LEADCTL_API", "http://localhost:8080"), "Server base URL")
	timeout := fs.Duration("timeout", 15*time.Second, "Request timeout")
	logLevel := fs.String("log-level", "error", "Log level")
	form := leadclient.MapForm{}
	for _, field := range leads.Fields() {
		field := field
		fs.Func(field, "Lead "+field, func(v string) error {
			form[field] = v
			return nil
		})
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger := logging.NewWithOptions(logging.Options{Level: *logLevel, Format: "text", Output: stderr})
	client := leadclient.NewClient(*apiURL, consoleNotifier{out: stdout, err: stderr},
		leadclient.WithLogger(logger),
	)

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	receipt, err := client.Submit(ctx, form)
	if err != nil {
		logger.Debug("submission failed", "error", err)
		return 1
	}
	fmt.Fprintf(stdout, "id: %s\n", receipt.ID)
	return 0
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
