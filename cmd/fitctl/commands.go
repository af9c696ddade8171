package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fitcoach/backend/internal/infrastructure/auth"
	"github.com/fitcoach/backend/internal/infrastructure/mailer"
)

func (c *CLI) withDeps(ctx context.Context, fn func(*Deps) error) error {
	deps, err := c.deps(ctx)
	if err != nil {
		return err
	}
	if deps.Close != nil {
		defer deps.Close()
	}
	return fn(deps)
}

func (c *CLI) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.Stderr)
	return fs
}

func (c *CLI) webhooks(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "list":
		return c.withDeps(ctx, func(d *Deps) error {
			endpoints, err := d.Webhooks.ListWebhookEndpoints(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tURL\tEVENTS")
			for _, e := range endpoints {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Status, e.URL, strings.Join(e.EnabledEvents, ","))
			}
			return w.Flush()
		})

	case "register":
		fs := c.flagSet("webhooks register")
		url := fs.String("url", "", "public URL of POST /webhooks/stripe")
		events := fs.String("events", "", "comma separated event types (default: configured stripe.webhook_events)")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		if *url == "" {
			return errors.New("-url is required")
		}
		return c.withDeps(ctx, func(d *Deps) error {
			enabled := d.WebhookEvents
			if *events != "" {
				enabled = splitList(*events)
			}
			if len(enabled) == 0 {
				return errors.New("no webhook events configured")
			}
			endpoint, err := d.Webhooks.CreateWebhookEndpoint(ctx, *url, enabled)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Stdout, "registered %s for %d events\n", endpoint.ID, len(endpoint.EnabledEvents))
			if endpoint.Secret != "" {
				fmt.Fprintf(c.Stdout, "signing secret (set stripe.webhook_secret): %s\n", endpoint.Secret)
			}
			return nil
		})

	case "delete":
		fs := c.flagSet("webhooks delete")
		id := fs.String("id", "", "webhook endpoint id (we_...)")
		if err := fs.Parse(args); err != nil {
			return errUsage
		}
		if *id == "" {
			return errors.New("-id is required")
		}
		return c.withDeps(ctx, func(d *Deps) error {
			if err := d.Webhooks.DeleteWebhookEndpoint(ctx, *id); err != nil {
				return err
			}
			fmt.Fprintf(c.Stdout, "deleted %s\n", *id)
			return nil
		})
	}
	return errUsage
}

func (c *CLI) products(ctx context.Context, cmd string, _ []string) error {
	if cmd != "sync" {
		return errUsage
	}
	return c.withDeps(ctx, func(d *Deps) error {
		result, err := d.Products.SyncProducts(ctx)
		if err != nil {
			return err
		}
		for _, p := range result.Created {
			fmt.Fprintf(c.Stdout, "created  %s -> %s (%s)\n", p.LookupKey, p.PriceID, p.ProductID)
		}
		for _, p := range result.Existing {
			fmt.Fprintf(c.Stdout, "existing %s -> %s (%s)\n", p.LookupKey, p.PriceID, p.ProductID)
		}
		return nil
	})
}

func (c *CLI) mail(ctx context.Context, cmd string, args []string) error {
	if cmd != "test" {
		return errUsage
	}
	fs := c.flagSet("mail test")
	to := fs.String("to", "", "recipient address")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *to == "" {
		return errors.New("-to is required")
	}
	return c.withDeps(ctx, func(d *Deps) error {
		if !d.SMTPEnabled {
			fmt.Fprintln(c.Stderr, "smtp.enabled is false; the message will only be logged")
		}
		if err := d.Mailer.Send(ctx, mailer.TestMessage(*to)); err != nil {
			return err
		}
		fmt.Fprintf(c.Stdout, "sent test message to %s\n", *to)
		return nil
	})
}

func (c *CLI) admin(cmd string, _ []string) error {
	if cmd != "hash-password" {
		return errUsage
	}
	password, err := readLine(c.Stdin)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.Stdout, hash)
	return nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no password on stdin")
	}
	return line, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
