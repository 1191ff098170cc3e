package main

import (
	"log/slog"
	"os"

	"github.com/corray333/backend-labs/meatshop/internal/app"
	"github.com/corray333/backend-labs/meatshop/internal/config"
	"github.com/corray333/backend-labs/meatshop/internal/dal/postgres"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "meatshop",
		Usage: "order desk for a meat shop",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config.yaml",
				EnvVars: []string{"MEATSHOP_CONFIG"},
			},
		},
		Before: func(c *cli.Context) error {
			config.MustInit(c.String("config"))

			return nil
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API, change feed and outbox worker",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply database migrations and exit",
				Action: func(_ *cli.Context) error {
					client := postgres.MustNewClient()
					client.Close()
					slog.Info("Migrations applied")

					return nil
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func serve(_ *cli.Context) error {
	return app.MustNewApp().Run()
}
