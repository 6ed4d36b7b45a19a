package internal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/starford/docdesk/internal/client"
)

// baseURL is the server the client commands talk to.
func (a *application) baseURL() string {
	if a.serverURL != "" {
		return a.serverURL
	}
	return "http://localhost" + a.config.App.HTTP.Address()
}

// Badge follows a running server's notification badge, logging one line
// per poll until interrupted.
func Badge(ctx context.Context, opts ...Option) error {
	app, logger, err := newApplication(opts...)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Following notifications", slog.String("server", app.baseURL()))
	p := client.NewPoller(client.New(app.baseURL(), nil), app.config.Notifications.PollInterval, func(s client.Snapshot) {
		if s.Err != nil {
			logger.Warn("notification poll failed", slog.String("error", s.Err.Error()))
			return
		}
		attrs := []any{
			slog.Int("count", s.Count),
			slog.String("badge", s.BadgeText()),
		}
		if len(s.Recent) > 0 {
			attrs = append(attrs, slog.String("latest", s.Recent[0].Message))
		}
		logger.Info("notifications", attrs...)
	})
	return p.Run(ctx)
}

// FindUsers reads search queries from the input, one per line, and prints
// the users matching each query that is still the latest when its answer
// arrives.
func FindUsers(ctx context.Context, opts ...Option) error {
	app, _, err := newApplication(opts...)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := client.NewUserSearcher(client.New(app.baseURL(), nil), func(res client.SearchResult) {
		printSearch(app.output, res)
	})
	defer s.Close()

	sc := bufio.NewScanner(app.input)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		s.Search(ctx, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read queries: %w", err)
	}
	s.Wait()
	return nil
}

func printSearch(w io.Writer, res client.SearchResult) {
	switch {
	case res.Err != nil:
		fmt.Fprintf(w, "%s: error: %v\n", res.Query, res.Err)
	case res.Hint != "":
		fmt.Fprintf(w, "%s: %s\n", res.Query, res.Hint)
	}
	for _, u := range res.Users {
		fmt.Fprintf(w, "%s: %d %s <%s>\n", res.Query, u.ID, u.Username, u.Email)
	}
}
