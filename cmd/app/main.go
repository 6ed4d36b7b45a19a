package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/docdesk/internal"
	pkgconfig "github.com/starford/docdesk/pkg/config"
)

// loadConfig reads the --config file over the defaults. A missing file is
// only fine when it was not asked for explicitly.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found && cmd.IsSet("config") {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}
	return cfg, nil
}

// action adapts an application entry point to a CLI action.
func action(name string, fn func(context.Context, ...internal.Option) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := fn(ctx, internal.WithConfig(cfg)); err != nil {
			return fmt.Errorf("%s error: %w", name, err)
		}
		return nil
	}
}

// remoteAction is action for the commands that talk to a running server.
func remoteAction(name string, fn func(context.Context, ...internal.Option) error, extra ...internal.Option) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		opts := append([]internal.Option{internal.WithConfig(cfg)}, extra...)
		if u := cmd.String("server"); u != "" {
			opts = append(opts, internal.WithServerURL(u))
		}
		if err := fn(ctx, opts...); err != nil {
			return fmt.Errorf("%s error: %w", name, err)
		}
		return nil
	}
}

func main() {
	serverFlag := &cli.StringFlag{
		Name:        "server",
		Usage:       "Base URL of the docdesk server",
		DefaultText: "http://localhost:<app.http.port>",
		Sources:     cli.EnvVars("DOCDESK_SERVER"),
	}

	serve := action("app run", internal.Run)

	cmd := &cli.Command{
		Name:   "docdesk",
		Usage:  "Document management with sharing, review workflows, notifications and a watched inbox",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server, inbox monitor and reminder job",
				Action: serve,
			},
			{
				Name:   "seed",
				Usage:  "Fill an empty database with sample users, workflows and documents",
				Action: action("seed", internal.Seed),
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools over stdio as the session user",
				Action: action("mcp", internal.ServeMCP),
			},
			{
				Name:   "watch",
				Usage:  "Run only the inbox monitor and reminder job",
				Action: action("watch", internal.Watch),
			},
			{
				Name:   "badge",
				Usage:  "Follow the session user's notification badge on a running server",
				Flags:  []cli.Flag{serverFlag},
				Action: remoteAction("badge", internal.Badge),
			},
			{
				Name:   "users",
				Usage:  "Search users on a running server, one query per input line",
				Flags:  []cli.Flag{serverFlag},
				Action: remoteAction("users", internal.FindUsers, internal.WithLogOutput(os.Stderr)),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
