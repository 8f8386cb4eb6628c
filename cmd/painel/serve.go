package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"

	"painel/internal/aggregate"
	"painel/internal/backend"
	appcli "painel/internal/cli"
	"painel/internal/fetch"
	apphttp "painel/internal/http"
	applog "painel/internal/log"
)

const shutdownTimeout = 30 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the dashboard over HTTP",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "trusted-proxy",
				Usage: "CIDR of a reverse proxy allowed to set X-Forwarded-For (repeatable)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			fetcher, err := fetch.New(cfg.Endpoint,
				fetch.WithLogger(logger),
				fetch.WithRegisterer(reg),
				fetch.WithTimeouts(cfg.PrimaryTimeout, cfg.FallbackTimeout))
			if err != nil {
				return err
			}

			backendCfg, err := backend.FromAppConfig(cfg)
			if err != nil {
				return err
			}
			src, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
			if err != nil {
				return err
			}
			defer src.Close()

			opts := apphttp.Options{
				Addr:               ":" + cfg.Port,
				Fetcher:            fetcher,
				Logger:             logger,
				Registry:           reg,
				RateLimitPerMinute: cfg.RateLimitPerMinute,
				DefaultLimit:       cfg.DefaultLimit,
				TrustedProxies:     cmd.StringSlice("trusted-proxy"),
				Checks:             map[string]apphttp.Check{},
			}
			if src != nil {
				opts.Aggregator = aggregate.NewService(src.Backend, logger)
				opts.Checks[src.Type.String()] = src.Backend.Ping
			}

			srv, err := apphttp.NewServer(opts)
			if err != nil {
				return err
			}

			logger.InfoContext(ctx, "Starting painel server",
				"port", cfg.Port,
				applog.FieldEndpoint, cfg.Endpoint,
				applog.FieldBackend, cfg.DataBackend,
				applog.FieldOperation, applog.OpStartup)

			return appcli.RunUntilSignal(ctx, logger, shutdownTimeout, appcli.Service{
				Name: "http",
				Run: func(context.Context) error {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return err
					}
					return nil
				},
				Stop: srv.Shutdown,
			})
		},
	}
}
