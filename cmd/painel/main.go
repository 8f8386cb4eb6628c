package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	appcli "painel/internal/cli"
	"painel/internal/config"
	applog "painel/internal/log"
)

// globalFlags are the flags that should be available on all commands
var globalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "env-file",
		Value: ".env",
		Usage: "Load environment variables from this file when it exists.",
	},
	&cli.StringFlag{
		Name:    "log-level",
		Aliases: []string{"l"},
		Usage:   "Set the log level. One of: debug, info, warn, error.",
	},
	&cli.StringFlag{
		Name:  "log-format",
		Usage: "Set the log format. One of: text, json, dev.",
	},
}

func main() {
	app := &cli.Command{
		Name:  "painel",
		Usage: "Financial dashboard server and tools",
		Flags: globalFlags,
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := appcli.LoadEnvFile(cmd.String("env-file")); err != nil {
				return ctx, err
			}
			// Flags win over the environment and the env file.
			if cmd.IsSet("log-level") {
				os.Setenv("LOG_LEVEL", cmd.String("log-level"))
			}
			if cmd.IsSet("log-format") {
				os.Setenv("LOG_FORMAT", cmd.String("log-format"))
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			showCommand(),
			workerCommand(),
			publishCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "painel:", err)
		os.Exit(1)
	}
}

// bootstrap loads and validates the configuration and sets up logging.
func bootstrap() (*config.Config, *applog.Logger, error) {
	cfg, err := appcli.LoadAndValidateConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, appcli.SetupLogger(cfg), nil
}
