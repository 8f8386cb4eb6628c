package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"painel/internal/core"
	"painel/internal/fetch"
	"painel/internal/render"
)

func showCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Fetch the dashboard and print it to the terminal",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "ano",
				Usage: "Year to show (default: current year)",
			},
			&cli.IntFlag{
				Name:  "mes",
				Usage: "Month to show, 1-12; 0 shows the whole year (default: current month)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of transactions to list (default: DASHBOARD_LIMIT)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the raw payload as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}

			now := time.Now()
			q := core.Query{Year: now.Year(), Month: int(now.Month()), Limit: cfg.DefaultLimit}
			if cmd.IsSet("ano") {
				q.Year = int(cmd.Int("ano"))
			}
			if cmd.IsSet("mes") {
				q.Month = int(cmd.Int("mes"))
			}
			if cmd.IsSet("limit") {
				q.Limit = int(cmd.Int("limit"))
			}

			client, err := fetch.New(cfg.Endpoint,
				fetch.WithLogger(logger),
				fetch.WithTimeouts(cfg.PrimaryTimeout, cfg.FallbackTimeout))
			if err != nil {
				return err
			}

			d, err := client.Fetch(ctx, q)
			if cmd.Bool("json") {
				if err != nil {
					return err
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}

			view := render.Build(d, q, now)
			if err != nil {
				view = render.ErrorView(err, q, now)
			}
			if rerr := (render.Terminal{}).Render(os.Stdout, view); rerr != nil {
				return rerr
			}
			return err
		},
	}
}
