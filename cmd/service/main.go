package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		newLogger(nil, "info").Fatal("watchplay", "err", err)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "watchplay",
		Usage: "Video playlist service with sharing and live updates",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from `FILE` (default .env when present)",
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP and websocket server",
				Action: serveAction,
			},
			{
				Name:   "migrate",
				Usage:  "Create or update the Postgres schema and exit",
				Action: migrateAction,
			},
		},
	}
}

func setup(cmd *cli.Command) (Config, error) {
	if err := loadEnvFile(cmd.String("env-file")); err != nil {
		return Config{}, err
	}
	return loadConfigFromEnv()
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(nil, cfg.LogLevel)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.run(ctx)
}

func migrateAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("watchplay: migrate needs DATABASE_URL (or DB_HOST)")
	}
	logger := newLogger(nil, cfg.LogLevel)

	pool, err := openPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := migrate(ctx, pool); err != nil {
		return err
	}
	logger.Info("schema up to date")
	return nil
}
