package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"

	"github.com/timmy/asciime/internal/app"
	"github.com/timmy/asciime/internal/config"
	"github.com/timmy/asciime/internal/logger"
)

type globalOptions struct {
	Config  string `short:"c" long:"config" env:"CONFIG_PATH" description:"Path to config file"`
	Verbose bool   `short:"v" long:"verbose" description:"Log at debug level to stderr"`
	NoColor bool   `long:"no-color" description:"Disable colored output"`
}

var opts globalOptions

var (
	// buildApp constructs the service graph for commands that need it.
	buildApp = setup

	stdout io.Writer = os.Stdout
)

func newParser() *flags.Parser {
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.ShortDescription = "asciime gif toolbox"
	parser.LongDescription = "Fetches gif batches, inspects the catalog and manages seen-sets without running the API server."

	parser.AddCommand("batch", "Fetch a gif batch", "Runs the full aggregation across every enabled provider.", &batchCommand{})
	parser.AddCommand("source", "Fetch from one provider", "Runs a single fetch task against one provider.", &sourceCommand{})
	parser.AddCommand("categories", "List catalog categories", "Prints the loaded category catalog.", &categoriesCommand{})
	parser.AddCommand("seen-clear", "Clear today's seen-set", "Deletes today's seen-set for one provider.", &seenClearCommand{})
	parser.AddCommand("catalog-push", "Upload a catalog document", "Validates a catalog document and uploads it to object storage.", &catalogPushCommand{})
	return parser
}

func main() {
	if _, err := newParser().Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, flagsErr.Message)
			return
		}
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig applies the global options and returns the config together with
// a signal-aware context carrying the CLI logger.
func loadConfig() (context.Context, context.CancelFunc, *config.Config, *logger.Logger, error) {
	if opts.NoColor {
		color.NoColor = true
	}

	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	log := logger.New(&logger.Config{
		Level:       level,
		Format:      "text",
		Output:      os.Stderr,
		ServiceName: "gifctl",
	})
	logger.SetDefaultLogger(log)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return log.WithContext(ctx), cancel, cfg, log, nil
}

// setup loads config and builds the service graph for a command.
func setup() (context.Context, context.CancelFunc, *app.App, error) {
	ctx, cancel, cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return ctx, cancel, a, nil
}
