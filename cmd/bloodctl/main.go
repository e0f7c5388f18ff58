package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kirillkom/blood-insights/internal/bootstrap"
	"github.com/kirillkom/blood-insights/internal/config"
	"github.com/kirillkom/blood-insights/internal/core/domain"
	"github.com/kirillkom/blood-insights/internal/observability/logging"
)

const serviceName = "bloodctl"

// cli holds state shared by every subcommand. The app is built on first use
// so `bloodctl --help` works without a reachable session store.
type cli struct {
	cfg    config.Config
	out    io.Writer
	errOut io.Writer
	format string

	app *bootstrap.App
}

func (c *cli) appFor(ctx context.Context) (*bootstrap.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	logger := logging.New(c.errOut, serviceName, c.cfg.LogLevel, "text")
	slog.SetDefault(logger)
	app, err := bootstrap.New(ctx, c.cfg, serviceName, logger)
	if err != nil {
		return nil, err
	}
	c.app = app
	return app, nil
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "bloodctl",
		Short:         "Blood test analysis from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch c.format {
			case formatText, formatJSON, formatYAML:
				return nil
			default:
				return fmt.Errorf("unknown --output %q (text, json or yaml)", c.format)
			}
		},
	}
	root.PersistentFlags().StringVarP(&c.format, "output", "o", formatText, "output format: text, json or yaml")
	root.PersistentFlags().StringVar(&c.cfg.BackendURL, "backend-url", c.cfg.BackendURL, "analysis backend base URL")

	root.AddCommand(
		signupCmd(c),
		loginCmd(c),
		logoutCmd(c),
		whoamiCmd(c),
		paramsCmd(c),
		analyzeCmd(c),
		uploadCmd(c),
		historyCmd(c),
		showCmd(c),
		speakCmd(c),
		languageCmd(c),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{cfg: config.Load(), out: os.Stdout, errOut: os.Stderr}
	root := newRootCmd(c)
	err := root.ExecuteContext(ctx)
	c.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", domain.MessageOf(err))
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrUnauthorized), domain.IsKind(err, domain.ErrNotAuthenticated):
		return 3
	case domain.IsKind(err, domain.ErrInvalidInput):
		return 2
	default:
		return 1
	}
}
