package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"painel/internal/amqp"
	"painel/internal/core"
)

func publishCommand() *cli.Command {
	return &cli.Command{
		Name:  "publish",
		Usage: "Publish one transaction message for the worker",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "Transaction date, DD/MM/YYYY or YYYY-MM-DD (default: today)"},
			&cli.StringFlag{Name: "name", Usage: "Description", Required: true},
			&cli.StringFlag{Name: "category", Usage: "Category"},
			&cli.StringFlag{Name: "amount", Usage: "Amount, e.g. 1234,56", Required: true},
			&cli.StringFlag{Name: "kind", Value: "despesa", Usage: "receita or despesa"},
			&cli.StringFlag{Name: "status", Value: core.StatusSucceeded, Usage: "Succeeded or Pending"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			if cfg.AMQPURL == "" {
				return errors.New("AMQP_URL is required to publish")
			}

			t, err := transactionFromFlags(cmd, time.Now())
			if err != nil {
				return err
			}

			client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			msg := amqp.NewTransactionMessage(t)
			if err := client.PublishTransaction(ctx, msg); err != nil {
				return err
			}
			fmt.Println(msg.ID)
			return nil
		},
	}
}

func transactionFromFlags(cmd *cli.Command, now time.Time) (core.Transaction, error) {
	date := core.NewDate(now.Year(), int(now.Month()), now.Day())
	if s := cmd.String("date"); s != "" {
		d, err := core.ParseDate(s)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("--date %q: %w", s, err)
		}
		date = d
	}

	cents, err := core.ParseDecimalToCents(cmd.String("amount"))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("--amount %q: %w", cmd.String("amount"), err)
	}
	kind, err := core.ParseKind(cmd.String("kind"))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("--kind %q: %w", cmd.String("kind"), err)
	}

	t := core.Transaction{
		Date:     date,
		Name:     cmd.String("name"),
		Category: cmd.String("category"),
		Amount:   core.Money{Cents: cents},
		Kind:     kind,
		Status:   core.NormalizeStatus(cmd.String("status")),
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}
