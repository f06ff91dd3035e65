// Command restaurant manages the menu, orders, and revenue of one restaurant
// from the shell. Each invocation loads the saved document, runs one
// subcommand, and saves any change before exiting.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"

	"restaurantcore/internal/config"
	"restaurantcore/internal/core"
	"restaurantcore/internal/infra/notify/rabbitmq"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var exitFunc = os.Exit

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	exitFunc(code)
}

// errUsage marks errors caused by bad arguments.
var errUsage = errors.New("usage")

type app struct {
	store  *core.Store
	stdout io.Writer
	logger *slog.Logger
}

func cli(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("restaurant", flag.ContinueOnError)
	fs.SetOutput(stderr)
	envFile := fs.String("env", ".env", "optional dotenv file")
	textfile := fs.String("metrics-textfile", "", "write Prometheus metrics to this file after the command")
	fs.Usage = func() { usage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() == 0 {
		usage(stderr, fs)
		return exitUsage
	}
	name, rest := fs.Arg(0), fs.Args()[1:]
	run, ok := commands[name]
	if !ok {
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n", name)
		usage(stderr, fs)
		return exitUsage
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "config: %v\n", err)
		return exitError
	}
	logger := newLogger(cfg, stderr)

	reg := prometheus.NewRegistry()
	metrics, err := core.NewPrometheusMetrics(reg)
	if err != nil {
		logger.Error("register metrics failed", "error", err)
		return exitError
	}

	backend, err := core.OpenBackend(ctx, cfg.Storage())
	if err != nil {
		logger.Error("open storage failed", "driver", string(cfg.StorageDriver), "error", err)
		return exitError
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("close storage failed", "error", err)
		}
	}()

	opts := []core.Option{core.WithLogger(logger), core.WithMetrics(metrics)}
	if cfg.StrictLoad {
		opts = append(opts, core.WithStrictLoad())
	}
	if cfg.AMQPURL != "" {
		publisher, err := rabbitmq.Dial(rabbitmq.Config{URL: cfg.AMQPURL, Exchange: cfg.AMQPExchange})
		if err != nil {
			logger.Warn("status notifications disabled", "error", err)
		} else {
			defer func() { _ = publisher.Close() }()
			opts = append(opts, core.WithNotifier(publisher))
		}
	}

	store, err := core.Open(ctx, cfg.RestaurantName, backend, opts...)
	if err != nil {
		logger.Error("open store failed", "error", err)
		return exitError
	}

	code := exitOK
	a := &app{store: store, stdout: stdout, logger: logger}
	if err := run(ctx, a, rest); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
		case errors.Is(err, errUsage):
			_, _ = fmt.Fprintf(stderr, "%s: %v\n", name, err)
			code = exitUsage
		default:
			_, _ = fmt.Fprintf(stderr, "%s: %v\n", name, err)
			code = exitError
		}
	}

	if *textfile != "" {
		if err := prometheus.WriteToTextfile(*textfile, reg); err != nil {
			logger.Error("write metrics textfile failed", "path", *textfile, "error", err)
			code = exitError
		}
	}
	return code
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler
	if cfg.LogFormat == "text" {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h).With("restaurant", cfg.RestaurantName)
}

func usage(w io.Writer, fs *flag.FlagSet) {
	_, _ = fmt.Fprintln(w, "usage: restaurant [flags] <command> [command flags]")
	_, _ = fmt.Fprintln(w, "\ncommands:")
	for _, name := range commandOrder {
		_, _ = fmt.Fprintf(w, "  %-17s %s\n", name, commandHelp[name])
	}
	_, _ = fmt.Fprintln(w, "\nflags:")
	fs.PrintDefaults()
}
