package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/docdesk/internal/apperr"
	"github.com/starford/docdesk/internal/docservice"
	"github.com/starford/docdesk/internal/mcpserver"
)

type sampleDocument struct {
	filename string
	body     string
	tags     []string
	expires  int // days from now, 0 for none
}

var sampleDocuments = []sampleDocument{
	{"welcome.md", "# Welcome to docdesk\n\nUpload, tag and share documents. #onboarding\n", []string{"guide"}, 0},
	{"invoice-0042.csv", "item,amount\nconsulting,1200\nlicences,300\n", []string{"invoice", "finance"}, 30},
	{"policy.txt", "Travel policy\n\nBook economy for flights under six hours. #hr\n", []string{"policy"}, 5},
}

// Seed fills an empty database with sample users, workflows, notifications
// and documents.
func Seed(ctx context.Context, opts ...Option) error {
	c, err := setup(opts...)
	if err != nil {
		return err
	}
	defer c.Close()

	now := time.Now()
	res, err := c.db.Seed(ctx, now)
	if errors.Is(err, apperr.ErrAlreadyExists) {
		c.logger.Info("database already seeded")
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	for i, d := range sampleDocuments {
		in := docservice.UploadInput{
			OwnerID:  res.UserIDs[i%len(res.UserIDs)],
			Filename: d.filename,
			Tags:     d.tags,
			Body:     strings.NewReader(d.body),
		}
		if d.expires > 0 {
			exp := now.AddDate(0, 0, d.expires).Truncate(24 * time.Hour)
			in.Expiry = &exp
		}
		if _, err := c.svc.Upload(ctx, in); err != nil {
			return fmt.Errorf("seed document %s: %w", d.filename, err)
		}
	}
	c.logger.Info("database seeded",
		slog.Int("users", len(res.UserIDs)),
		slog.Int("workflows", len(res.WorkflowIDs)),
		slog.Int("documents", len(sampleDocuments)))
	return nil
}

// ServeMCP serves the MCP tools on stdin/stdout as the session user. Logs
// go to stderr.
func ServeMCP(ctx context.Context, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	c, err := setup(opts...)
	if err != nil {
		return err
	}
	defer c.Close()

	c.logger.Info("MCP server starting", slog.Int64("session_user", c.cfg.Session.UserID))
	return mcpserver.New(c.svc, c.cfg.Session.UserID).ServeStdio()
}

// Watch runs the inbox monitor and the reminder job without the HTTP
// server.
func Watch(ctx context.Context, opts ...Option) error {
	c, err := setup(opts...)
	if err != nil {
		return err
	}
	defer c.Close()

	if !c.cfg.Inbox.Enabled && !c.cfg.Reminders.Enabled {
		return fmt.Errorf("nothing to watch: inbox and reminders are both disabled")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	if c.cfg.Inbox.Enabled {
		g.Go(func() error { return c.watchInbox(gCtx) })
	}
	if c.cfg.Reminders.Enabled {
		g.Go(func() error { return c.reminderJob().Run(gCtx, c.cfg.Reminders.Interval) })
	}
	return g.Wait()
}
