package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/touchmap-go/internal/cli/connection"
	"github.com/yndnr/touchmap-go/internal/infra/buildinfo"
)

// HealthCommand checks a running server.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check server readiness",
		Action: func(c *cli.Context) error {
			ctx, cancel := requestContext(c)
			defer cancel()

			resp, err := newClient(c).Get(ctx, "/ready")
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			var result map[string]any
			if err := connection.ParseResponse(resp, &result); err != nil {
				return err
			}
			return printResult(c, result)
		},
	}
}

// VersionCommand prints build information.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(c *cli.Context) error {
			return printResult(c, buildinfo.Get())
		},
	}
}
