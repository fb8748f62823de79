package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/dukex/operion-kerio/pkg/cmd"
	"github.com/dukex/operion-kerio/pkg/credentials"
	"github.com/dukex/operion-kerio/pkg/kerio"
	"github.com/dukex/operion-kerio/pkg/log"
	kerionode "github.com/dukex/operion-kerio/pkg/nodes/kerio"
	"github.com/dukex/operion-kerio/pkg/registry"
	"github.com/dukex/operion-kerio/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel"
)

const defaultPort = 9095

func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus for execution events (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringSliceFlag{
				Name:    "cors-origins",
				Usage:   "Origins allowed to call the API from a browser; none when empty",
				Sources: cli.EnvVars("CORS_ALLOWED_ORIGINS"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Value:   "localhost:9092",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("api")

			logger.InfoContext(ctx, "Initializing Kerio API")

			defaults, err := credentials.Merge(overrides(command))
			if err != nil {
				return err
			}

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			if err := cmd.SubscribeAuditLog(ctx, eventBus, logger); err != nil {
				return err
			}

			clientOptions := []kerio.Option{kerio.WithTracer(otel.Tracer(serviceName))}
			reg := cmd.NewRegistry(logger, eventBus, kerionode.WithClientOptions(clientOptions...))

			api := NewAPI(logger, reg, defaults, web.WithClientOptions(clientOptions...))
			api.corsOrigins = command.StringSlice("cors-origins")

			return api.Start(command.Int("port"))
		},
	}
}

type API struct {
	logger   *slog.Logger
	registry *registry.Registry
	defaults credentials.Credentials
	options  []web.Option
	validate *validator.Validate

	corsOrigins []string
}

func NewAPI(
	logger *slog.Logger,
	registry *registry.Registry,
	defaults credentials.Credentials,
	opts ...web.Option,
) *API {
	return &API{
		logger:   logger,
		registry: registry,
		defaults: defaults,
		options:  opts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.logger, a.validate, a.registry, a.defaults, a.options...)

	app := fiber.New()

	if len(a.corsOrigins) > 0 {
		app.Use(cors.New(cors.Config{AllowOrigins: a.corsOrigins}))
	}

	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Operion Kerio API")
	})

	handlers.Register(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
