// Command portfolio is the terminal front end of the portfolio dashboard.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"portfolio-dashboard/internal/cli"
	"portfolio-dashboard/internal/config"
	"portfolio-dashboard/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configDir(args))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger := logging.NewLoggerWithConfig(cfg.LogConfig())
	logger.Debug().Str("config", cfg.Dir()).Msg("Configuration loaded")

	root := cli.NewRootCmd(cfg, logger)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// configDir reads --config before cobra runs, since the config decides
// how the command tree is built.
func configDir(args []string) string {
	fs := pflag.NewFlagSet("portfolio", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	dir := fs.String("config", "", "")
	_ = fs.Parse(args)
	return *dir
}
