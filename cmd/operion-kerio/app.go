package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/dukex/operion-kerio/pkg/credentials"
	"github.com/dukex/operion-kerio/pkg/kerio"
	"github.com/dukex/operion-kerio/pkg/log"
	"github.com/dukex/operion-kerio/pkg/otelhelper"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "operion-kerio"

// NewCommand builds the root command with every subcommand attached.
func NewCommand() *cli.Command {
	var tracerProvider *sdktrace.TracerProvider

	return &cli.Command{
		Name:                  serviceName,
		Usage:                 "Run Kerio Connect groupware operations",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server-url",
				Usage:   "Kerio Connect server base URL",
				Sources: cli.EnvVars(credentials.EnvServerURL),
			},
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Account user name",
				Sources: cli.EnvVars(credentials.EnvUsername),
			},
			&cli.StringFlag{
				Name:    "password",
				Usage:   "Account password",
				Sources: cli.EnvVars(credentials.EnvPassword),
			},
			&cli.BoolFlag{
				Name:    "ignore-ssl",
				Usage:   "Skip TLS certificate verification on calls to the server",
				Sources: cli.EnvVars(credentials.EnvIgnoreSSL),
			},
			&cli.StringFlag{
				Name:    "credentials-file",
				Usage:   "JSON file with serverUrl, username, password and ignoreSSL",
				Sources: cli.EnvVars("KERIO_CREDENTIALS_FILE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			log.SetupWithFormat(command.String("log-level"), command.String("log-format"))

			if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
				return ctx, nil
			}

			tp, err := otelhelper.NewTracerProvider(ctx, serviceName)
			if err != nil {
				return ctx, err
			}

			tracerProvider = tp

			return ctx, nil
		},
		After: func(ctx context.Context, command *cli.Command) error {
			if tracerProvider == nil {
				return nil
			}

			return tracerProvider.Shutdown(ctx)
		},
		Commands: []*cli.Command{
			LoginCommand(),
			LogoutCommand(),
			ExecCommand(),
			TestCredentialsCommand(),
			OperationsCommand(),
			ServeCommand(),
		},
	}
}

func overrides(command *cli.Command) credentials.Overrides {
	return credentials.Overrides{
		Path:      command.String("credentials-file"),
		ServerURL: command.String("server-url"),
		Username:  command.String("username"),
		Password:  command.String("password"),
		IgnoreSSL: command.Bool("ignore-ssl"),
		SkipEnv:   true,
	}
}

// loadAccount returns credentials able to log in.
func loadAccount(command *cli.Command) (credentials.Credentials, error) {
	return credentials.Load(overrides(command))
}

// loadServer returns credentials that at least name a valid server.
func loadServer(command *cli.Command) (credentials.Credentials, error) {
	creds, err := credentials.Merge(overrides(command))
	if err != nil {
		return credentials.Credentials{}, err
	}

	return creds, creds.ValidateServer()
}

func newClient(creds credentials.Credentials, logger *slog.Logger) *kerio.Client {
	return creds.Client(
		kerio.WithLogger(logger),
		kerio.WithTracer(otel.Tracer(serviceName)),
	)
}

var errCredentialTestFailed = errors.New("credential test failed")
