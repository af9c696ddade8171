// Command fitctl performs operational tasks against the payment provider,
// the mail server and the admin account.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fitcoach/backend/internal/infrastructure/config"
	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli := &CLI{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		deps:   productionDeps,
	}
	os.Exit(cli.Run(ctx, os.Args[1:]))
}

// CLI dispatches subcommands. deps is built lazily so commands that need no
// configuration, such as admin hash-password, run without it.
type CLI struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	deps func(ctx context.Context) (*Deps, error)
}

// Run executes args and returns the process exit code
func (c *CLI) Run(ctx context.Context, args []string) int {
	if len(args) < 2 {
		c.usage()
		return 2
	}

	var err error
	switch group, cmd, rest := args[0], args[1], args[2:]; group {
	case "webhooks":
		err = c.webhooks(ctx, cmd, rest)
	case "products":
		err = c.products(ctx, cmd, rest)
	case "mail":
		err = c.mail(ctx, cmd, rest)
	case "admin":
		err = c.admin(cmd, rest)
	default:
		err = errUsage
	}

	if err == errUsage {
		c.usage()
		return 2
	}
	if err != nil {
		fmt.Fprintln(c.Stderr, "fitctl:", err)
		return 1
	}
	return 0
}

func (c *CLI) usage() {
	fmt.Fprint(c.Stderr, `Usage: fitctl <group> <command> [flags]

  webhooks list                         List registered Stripe webhook endpoints
  webhooks register -url URL [-events]  Register an endpoint for the configured events
  webhooks delete -id ID                Delete an endpoint
  products sync                         Create missing catalog products and prices
  mail test -to ADDRESS                 Send a test email with the SMTP settings
  admin hash-password                   Read a password from stdin and print its bcrypt hash
`)
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "15:04:05",
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
