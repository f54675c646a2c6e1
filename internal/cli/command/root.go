package command

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/touchmap-go/internal/cli/connection"
	"github.com/yndnr/touchmap-go/internal/cli/output"
	"github.com/yndnr/touchmap-go/internal/infra/buildinfo"
	"github.com/yndnr/touchmap-go/internal/telemetry/logger"
)

// DefaultServer is the address of a local touchmap-server.
const DefaultServer = "127.0.0.1:7080"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "touchmap-cli",
		Usage:   "Render touch heatmaps and manage TouchMap sessions and exports",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			RenderCommand(),
			ExportsCommand(),
			SessionCommand(),
			HealthCommand(),
			VersionCommand(),
		},
		Before: func(c *cli.Context) error {
			_, err := output.ParseFormat(c.String("output"))
			return err
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "touchmap-server address",
			EnvVars: []string{"TOUCHMAP_SERVER"},
			Value:   DefaultServer,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log debug diagnostics to stderr",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Output  output.Format
	Wide    bool
	Verbose bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	format, _ := output.ParseFormat(c.String("output"))
	return &GlobalFlags{
		Server:  c.String("server"),
		Output:  format,
		Wide:    c.Bool("wide"),
		Verbose: c.Bool("verbose"),
	}
}

// printResult writes data in the selected output format.
func printResult(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	return output.NewFormatter(flags.Output, flags.Wide).Format(c.App.Writer, data)
}

// newClient returns a client for the configured server.
func newClient(c *cli.Context) *connection.HTTPClient {
	return connection.NewHTTPClient(ParseGlobalFlags(c).Server)
}

// cliLogger logs warnings to stderr, or everything with --verbose.
func cliLogger(c *cli.Context) *slog.Logger {
	level := "warn"
	if ParseGlobalFlags(c).Verbose {
		level = "debug"
	}
	var w io.Writer = c.App.ErrWriter
	l, err := logger.New(logger.Config{Level: level, Format: "text", Output: w})
	if err != nil {
		return slog.Default()
	}
	return l.Slog()
}

// notice prints a human oriented line to stderr so piped output stays clean.
func notice(c *cli.Context, format string, args ...any) {
	fmt.Fprintf(c.App.ErrWriter, format+"\n", args...)
}
