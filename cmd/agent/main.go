package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Outstandr/lovable-fit-sub000/internal/agent/api"
	"github.com/Outstandr/lovable-fit-sub000/internal/agent/localstore"
	"github.com/Outstandr/lovable-fit-sub000/internal/agent/runner"
	"github.com/Outstandr/lovable-fit-sub000/internal/pedometer"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
)

var exitFn = os.Exit
var runAgentFn = runAgent

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Backend URL")
	dbPath := flag.String("db", "stridewell-agent.db", "Path to local state database")
	email := flag.String("email", "", "Account email")
	password := flag.String("password", "", "Account password")
	interval := flag.Duration("interval", 30*time.Second, "Reporting interval")

	flag.Parse()

	if *showVersion {
		fmt.Printf("stridewell-agent %s (built %s)\n", Version, BuildDate)
		exitFn(0)
		return
	}

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "email and password are required")
		exitFn(1)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runAgentFn(ctx, *serverURL, *dbPath, *email, *password, *interval, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitFn(1)
	}
}

func runAgent(ctx context.Context, serverURL, dbPath, email, password string, interval time.Duration, samples io.Reader) error {
	store, err := localstore.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open local database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("failed to close local database", "error", err)
		}
	}()

	client := api.NewClient(serverURL)
	if _, err := client.Login(ctx, email, password); err != nil {
		return err
	}

	rec := pedometer.New(store, pedometer.WithResetFunc(func(lostBaseline int64) {
		slog.Info("step counter reset detected", "lost_baseline", lostBaseline)
	}))

	slog.Info("agent started", "server", serverURL, "interval", interval)
	return runner.New(rec, runner.NewReaderSource(samples), client, interval).Run(ctx)
}
