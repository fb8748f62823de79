package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dukex/operion-kerio/pkg/kerio"
	"github.com/dukex/operion-kerio/pkg/log"
	"github.com/dukex/operion-kerio/pkg/operations"
	cli "github.com/urfave/cli/v3"
)

func sessionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "token",
			Usage:   "Session token from login",
			Sources: cli.EnvVars("KERIO_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "cookie",
			Usage:   "Session cookie from login",
			Sources: cli.EnvVars("KERIO_COOKIE"),
		},
	}
}

func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in and print the session token and cookie",
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("cli")

			creds, err := loadAccount(command)
			if err != nil {
				return err
			}

			session, err := newClient(creds, logger).Login(ctx, creds.ServerURL, creds.LoginParams(kerio.DefaultApplication))
			if err != nil {
				return err
			}

			return writeJSON(command.Root().Writer, map[string]string{
				"token":  session.Token,
				"cookie": session.Cookie,
			})
		},
	}
}

func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Invalidate a session",
		Flags: sessionFlags(),
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("cli")

			creds, err := loadServer(command)
			if err != nil {
				return err
			}

			session := kerio.Session{
				BaseURL: creds.ServerURL,
				Token:   command.String("token"),
				Cookie:  command.String("cookie"),
			}

			reply, err := newClient(creds, logger).Logout(ctx, session)
			if err != nil {
				return err
			}

			return writeJSON(command.Root().Writer, reply.Result)
		},
	}
}

func ExecCommand() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Run one operation and print its result as JSON",
		ArgsUsage: "<resource> <operation>",
		Flags: append(sessionFlags(),
			&cli.StringFlag{
				Name:  "fields",
				Usage: "Operation fields as a JSON object",
			},
			&cli.StringSliceFlag{
				Name:    "field",
				Aliases: []string{"f"},
				Usage:   "Operation field as key=value, repeatable; wins over --fields",
			},
		),
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("cli")

			if command.Args().Len() != 2 {
				return fmt.Errorf("exec expects <resource> <operation>, got %d arguments", command.Args().Len())
			}

			resource, operation := command.Args().Get(0), command.Args().Get(1)

			if _, err := operations.Lookup(resource, operation); err != nil {
				return err
			}

			fields, err := parseFields(command.String("fields"), command.StringSlice("field"))
			if err != nil {
				return err
			}

			creds, err := loadServer(command)
			if err != nil {
				return err
			}

			client := newClient(creds, logger)
			session := kerio.Session{
				BaseURL: creds.ServerURL,
				Token:   command.String("token"),
				Cookie:  command.String("cookie"),
			}

			if session.Token == "" && resource != "authentication" {
				if err := creds.Validate(); err != nil {
					return fmt.Errorf("no --token given and cannot log in: %w", err)
				}

				session, err = client.Login(ctx, creds.ServerURL, creds.LoginParams(kerio.DefaultApplication))
				if err != nil {
					return err
				}

				defer func() {
					if _, err := client.Logout(context.WithoutCancel(ctx), session); err != nil {
						logger.WarnContext(ctx, "Failed to log out", "error", err)
					}
				}()
			}

			translator := operations.NewTranslator(client,
				operations.WithLogger(logger),
				operations.WithCredentials(creds.Username, creds.Password),
			)

			result, err := translator.Execute(ctx, session, resource, operation, fields)
			if err != nil {
				return err
			}

			return writeJSON(command.Root().Writer, result)
		},
	}
}

func TestCredentialsCommand() *cli.Command {
	return &cli.Command{
		Name:  "test-credentials",
		Usage: "Check that the configured account can log in",
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("cli")

			creds, err := loadAccount(command)
			if err != nil {
				return err
			}

			result := newClient(creds, logger).TestCredentials(ctx, creds.ServerURL, creds.LoginParams(kerio.DefaultApplication))

			if err := writeJSON(command.Root().Writer, result); err != nil {
				return err
			}

			if !result.Success {
				return errCredentialTestFailed
			}

			return nil
		},
	}
}

func OperationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "operations",
		Usage: "List the supported resources and operations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "resource",
				Usage: "Only list operations of this resource",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			resource := command.String("resource")

			w := tabwriter.NewWriter(command.Root().Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RESOURCE\tOPERATION\tMETHOD\tDESCRIPTION")

			for _, d := range operations.Descriptors() {
				if resource != "" && d.Resource != resource {
					continue
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Resource, d.Operation, d.Method, d.Description)
			}

			return w.Flush()
		},
	}
}

// parseFields merges a JSON object with key=value pairs.
func parseFields(raw string, pairs []string) (operations.Fields, error) {
	fields := operations.Fields{}

	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fmt.Errorf("invalid --fields: %w", err)
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --field %q, expected key=value", pair)
		}

		fields[key] = value
	}

	return fields, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
