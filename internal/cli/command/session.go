package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/touchmap-go/internal/cli/connection"
	"github.com/yndnr/touchmap-go/internal/cli/output"
)

// SessionCommand returns the session subcommand group.
func SessionCommand() *cli.Command {
	return &cli.Command{
		Name:    "session",
		Aliases: []string{"sess"},
		Usage:   "Inspect and flush sessions on a running server",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List hosted sessions",
				Action: sessionList,
			},
			{
				Name:      "get",
				Usage:     "Show a session's screens",
				ArgsUsage: "SESSION_ID",
				Action:    sessionGet,
			},
			{
				Name:      "flush",
				Usage:     "Render and export a session, keeping it open",
				ArgsUsage: "SESSION_ID",
				Action:    sessionFlush,
			},
			{
				Name:      "close",
				Usage:     "Flush a session and stop hosting it",
				ArgsUsage: "SESSION_ID",
				Action:    sessionClose,
			},
			{
				Name:      "heatmap",
				Usage:     "Download a preview heatmap of one screen",
				ArgsUsage: "SESSION_ID SCREEN_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Required: true, Usage: "Output PNG path"},
				},
				Action: sessionHeatmap,
			},
		},
	}
}

// SessionStats mirrors the server's per-session counters.
type SessionStats struct {
	Screens   int    `json:"screens"`
	Samples   int    `json:"samples"`
	Snapshots int    `json:"snapshots"`
	Active    string `json:"active,omitempty"`
}

// SessionSummary is one entry of GET /sessions.
type SessionSummary struct {
	ID        string       `json:"session_id"`
	CreatedAt time.Time    `json:"created_at"`
	Stats     SessionStats `json:"stats"`
}

// SessionRow is the table rendering of a SessionSummary.
type SessionRow struct {
	ID        string    `json:"session_id"`
	Active    string    `json:"active"`
	Screens   int       `json:"screens"`
	Samples   int       `json:"samples"`
	Snapshots int       `json:"snapshots"`
	CreatedAt time.Time `json:"created_at"`
}

// ScreenRow is one screen of GET /sessions/{id}.
type ScreenRow struct {
	ScreenID    string    `json:"screen_id"`
	Samples     int       `json:"samples"`
	HasSnapshot bool      `json:"has_snapshot"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	FirstSeen   time.Time `json:"first_seen" table:"wide"`
	LastSeen    time.Time `json:"last_seen"`
}

// FlushReport mirrors the server's flush result.
type FlushReport struct {
	SessionID  string   `json:"session_id"`
	Rendered   []string `json:"rendered"`
	Unmodified []string `json:"unmodified"`
	Incomplete []string `json:"incomplete"`
	Failed     []struct {
		ScreenID string `json:"screen_id"`
		Error    string `json:"error"`
	} `json:"failed"`
	Duration time.Duration `json:"duration"`
}

func requestContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context, connection.DefaultTimeout)
}

func sessionArg(c *cli.Context) (string, error) {
	id := c.Args().First()
	if id == "" {
		return "", errors.New("SESSION_ID is required")
	}
	return id, nil
}

func sessionList(c *cli.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := newClient(c).Get(ctx, "/sessions")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var result struct {
		Items []SessionSummary `json:"items"`
		Total int              `json:"total"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	if ParseGlobalFlags(c).Output != output.FormatTable {
		return printResult(c, result.Items)
	}
	if len(result.Items) == 0 {
		notice(c, "no sessions")
		return nil
	}
	rows := make([]SessionRow, 0, len(result.Items))
	for _, s := range result.Items {
		rows = append(rows, SessionRow{
			ID:        s.ID,
			Active:    s.Stats.Active,
			Screens:   s.Stats.Screens,
			Samples:   s.Stats.Samples,
			Snapshots: s.Stats.Snapshots,
			CreatedAt: s.CreatedAt,
		})
	}
	return printResult(c, rows)
}

func sessionGet(c *cli.Context) error {
	id, err := sessionArg(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := newClient(c).Get(ctx, "/sessions/"+url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var result struct {
		SessionID string       `json:"session_id"`
		CreatedAt time.Time    `json:"created_at"`
		Active    string       `json:"active,omitempty"`
		Stats     SessionStats `json:"stats"`
		Screens   []ScreenRow  `json:"screens"`
	}
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	if ParseGlobalFlags(c).Output != output.FormatTable {
		return printResult(c, result)
	}
	notice(c, "session %s, active screen %q, %d samples", result.SessionID, result.Active, result.Stats.Samples)
	return printResult(c, result.Screens)
}

func sessionFlush(c *cli.Context) error {
	return flushRequest(c, http.MethodPost, "/flush")
}

func sessionClose(c *cli.Context) error {
	return flushRequest(c, http.MethodDelete, "")
}

func flushRequest(c *cli.Context, method, suffix string) error {
	id, err := sessionArg(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	client := newClient(c)
	path := "/sessions/" + url.PathEscape(id) + suffix

	var resp *http.Response
	if method == http.MethodDelete {
		resp, err = client.Delete(ctx, path)
	} else {
		resp, err = client.Post(ctx, path, nil)
	}
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var report FlushReport
	if err := connection.ParseResponse(resp, &report); err != nil {
		return err
	}
	if ParseGlobalFlags(c).Output != output.FormatTable {
		return printResult(c, report)
	}

	t := &output.Table{}
	t.SetHeaders("SCREEN", "RESULT")
	for _, s := range report.Rendered {
		t.AddRow(s, "rendered")
	}
	for _, s := range report.Unmodified {
		t.AddRow(s, "unmodified")
	}
	for _, s := range report.Incomplete {
		t.AddRow(s, "no snapshot")
	}
	for _, f := range report.Failed {
		t.AddRow(f.ScreenID, "failed: "+f.Error)
	}
	notice(c, "flushed %s in %s", report.SessionID, report.Duration.Round(time.Millisecond))
	return printResult(c, t)
}

func sessionHeatmap(c *cli.Context) error {
	if c.NArg() < 2 {
		return errors.New("SESSION_ID and SCREEN_ID are required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	path := fmt.Sprintf("/sessions/%s/screens/%s/heatmap.png",
		url.PathEscape(c.Args().Get(0)), url.PathEscape(c.Args().Get(1)))
	resp, err := newClient(c).Get(ctx, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return connection.ParseResponse(resp, nil)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read heatmap: %w", err)
	}
	out := c.String("out")
	if err := writeFile(out, data); err != nil {
		return err
	}
	notice(c, "wrote %s (%s, rendered=%s)", out, output.FormatBytes(int64(len(data))), resp.Header.Get("X-Heatmap-Rendered"))
	return nil
}
