package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"painel/internal/amqp"
	appcli "painel/internal/cli"
	applog "painel/internal/log"
	"painel/internal/worker"
)

func workerCommand() *cli.Command {
	return &cli.Command{
		Name:  "worker",
		Usage: "Consume transaction messages into the SQLite store",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			if cfg.AMQPURL == "" {
				return errors.New("AMQP_URL is required for the worker")
			}

			repo, err := appcli.InitSQLite(logger, cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			ingest := worker.NewIngest(repo, logger)
			logger.InfoContext(ctx, "Starting painel worker",
				"queue", cfg.AMQPQueue,
				"path", cfg.SQLiteDBPath,
				applog.FieldOperation, applog.OpStartup)

			return appcli.RunUntilSignal(ctx, logger, shutdownTimeout, appcli.Service{
				Name: "ingest",
				Run: func(ctx context.Context) error {
					return client.ConsumeTransactions(ctx, ingest.Handle)
				},
			})
		},
	}
}
