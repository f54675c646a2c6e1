package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/touchmap-go/internal/cli/output"
	"github.com/yndnr/touchmap-go/internal/export"
)

// ExportsCommand returns the exports subcommand group. It opens the export
// store directly, so it must not share a Badger directory with a running
// server.
func ExportsCommand() *cli.Command {
	return &cli.Command{
		Name:    "exports",
		Aliases: []string{"exp"},
		Usage:   "Inspect and maintain an export store",
		Flags:   storeFlags(),
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List exported heatmaps",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "session",
						Usage: "Only list this session",
					},
				},
				Action: exportsList,
			},
			{
				Name:  "get",
				Usage: "Write one exported heatmap to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "session", Required: true, Usage: "Session ID"},
					&cli.StringFlag{Name: "screen", Required: true, Usage: "Screen ID"},
					&cli.StringFlag{Name: "out", Required: true, Usage: "Output PNG path"},
				},
				Action: exportsGet,
			},
			{
				Name:      "delete",
				Usage:     "Delete every heatmap of a session",
				ArgsUsage: "SESSION_ID",
				Action:    exportsDelete,
			},
			{
				Name:  "backup",
				Usage: "Write a full backup of a Badger export store",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Required: true, Usage: "Backup file path"},
				},
				Action: exportsBackup,
			},
			{
				Name:      "restore",
				Usage:     "Load a backup into a Badger export store",
				ArgsUsage: "BACKUP_FILE",
				Action:    exportsRestore,
			},
		},
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "kind",
			Usage:   "Store kind: badger or dir",
			EnvVars: []string{"TOUCHMAP_EXPORT_KIND"},
			Value:   export.KindBadger,
		},
		&cli.StringFlag{
			Name:    "badger-dir",
			Usage:   "Badger export database directory",
			EnvVars: []string{"TOUCHMAP_EXPORT_BADGER_DIR"},
			Value:   "./heatmaps.db",
		},
		&cli.StringFlag{
			Name:    "dir",
			Usage:   "Directory export root",
			EnvVars: []string{"TOUCHMAP_EXPORT_DIR"},
			Value:   "./heatmaps",
		},
		&cli.StringFlag{
			Name:    "key",
			Usage:   "Encryption key for sealed stores (hex or base64)",
			EnvVars: []string{"TOUCHMAP_EXPORT_ENCRYPTION_KEY"},
		},
	}
}

// openStore opens the export store named by the group flags.
func openStore(c *cli.Context, readOnly bool) (export.Backend, error) {
	kind := c.String("kind")
	if kind != export.KindBadger && kind != export.KindDir {
		return nil, fmt.Errorf("unsupported store kind %q (want badger or dir)", kind)
	}
	return export.Open(export.Config{
		Kind:          kind,
		Dir:           c.String("dir"),
		BadgerDir:     c.String("badger-dir"),
		EncryptionKey: c.String("key"),
		ReadOnly:      readOnly,
	}, cliLogger(c), nil)
}

// ExportRow is one listed artifact.
type ExportRow struct {
	SessionID string    `json:"session_id"`
	ScreenID  string    `json:"screen_id"`
	Rendered  bool      `json:"rendered"`
	Samples   int       `json:"sample_count"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Size      string    `json:"size"`
	Sealed    bool      `json:"sealed" table:"wide"`
	ID        string    `json:"id" table:"wide"`
	Checksum  string    `json:"checksum" table:"wide"`
	CreatedAt time.Time `json:"created_at"`
}

func exportsList(c *cli.Context) error {
	store, err := openStore(c, true)
	if err != nil {
		return err
	}
	defer store.Close()

	items, err := store.List(c.Context, c.String("session"))
	if err != nil {
		return err
	}

	if ParseGlobalFlags(c).Output != output.FormatTable {
		if items == nil {
			items = []export.Metadata{}
		}
		return printResult(c, items)
	}

	rows := make([]ExportRow, 0, len(items))
	for _, m := range items {
		rows = append(rows, ExportRow{
			SessionID: m.SessionID,
			ScreenID:  m.ScreenID,
			Rendered:  m.Rendered,
			Samples:   m.SampleCount,
			Width:     m.Width,
			Height:    m.Height,
			Size:      output.FormatBytes(int64(m.Size)),
			Sealed:    m.Sealed,
			ID:        m.ID,
			Checksum:  m.Checksum,
			CreatedAt: m.CreatedAt,
		})
	}
	if len(rows) == 0 {
		notice(c, "no exports found")
		return nil
	}
	return printResult(c, rows)
}

func exportsGet(c *cli.Context) error {
	store, err := openStore(c, true)
	if err != nil {
		return err
	}
	defer store.Close()

	meta, data, err := store.Get(c.Context, c.String("session"), c.String("screen"))
	if err != nil {
		return err
	}
	out := c.String("out")
	if err := writeFile(out, data); err != nil {
		return err
	}
	notice(c, "wrote %s (%s, %dx%d)", out, output.FormatBytes(int64(len(data))), meta.Width, meta.Height)
	return nil
}

func exportsDelete(c *cli.Context) error {
	session := c.Args().First()
	if session == "" {
		return errors.New("SESSION_ID is required")
	}

	store, err := openStore(c, false)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(c.Context, session); err != nil {
		return err
	}
	notice(c, "deleted exports of %s", session)
	return nil
}

// backupStore is implemented by stores that support full backups.
type backupStore interface {
	Backup(ctx context.Context, w io.Writer) error
	Restore(ctx context.Context, r io.Reader) error
}

func exportsBackup(c *cli.Context) error {
	store, err := openStore(c, true)
	if err != nil {
		return err
	}
	defer store.Close()

	bs, ok := store.(backupStore)
	if !ok {
		return fmt.Errorf("backup requires the %s store", export.KindBadger)
	}

	out := c.String("out")
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}

	bar := output.NewProgressBar(c.App.ErrWriter, "backup")
	if err := bs.Backup(c.Context, io.MultiWriter(f, bar)); err != nil {
		f.Close()
		os.Remove(out)
		return err
	}
	bar.Finish()
	if err := f.Close(); err != nil {
		return fmt.Errorf("close backup: %w", err)
	}
	notice(c, "wrote %s (%s)", out, output.FormatBytes(bar.Current()))
	return nil
}

func exportsRestore(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("BACKUP_FILE is required")
	}

	store, err := openStore(c, false)
	if err != nil {
		return err
	}
	defer store.Close()

	bs, ok := store.(backupStore)
	if !ok {
		return fmt.Errorf("restore requires the %s store", export.KindBadger)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	bar := output.NewProgressBar(c.App.ErrWriter, "restore")
	if st, err := f.Stat(); err == nil {
		bar.SetTotal(st.Size())
	}
	if err := bs.Restore(c.Context, io.TeeReader(f, bar)); err != nil {
		return err
	}
	bar.Finish()
	notice(c, "restored %s", path)
	return nil
}
