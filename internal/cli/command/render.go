package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/touchmap-go/internal/core/domain"
	"github.com/yndnr/touchmap-go/internal/core/render"
)

// RenderCommand renders a heatmap offline.
func RenderCommand() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Render a heatmap from a snapshot and a recorded sample file",
		Description: "The sample file holds a JSON array of touch samples, or an object with a\n" +
			"\"samples\" array as accepted by POST /sessions/{id}/samples. Use - to\n" +
			"read samples from stdin.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "snapshot",
				Usage:    "Background image (png, jpeg, gif, webp, bmp, tiff)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "samples",
				Usage:    "Sample file, or - for stdin",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "out",
				Usage:    "Output PNG path",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "radius",
				Usage: "Kernel radius in image units",
				Value: render.DefaultRadius,
			},
			&cli.StringSliceFlag{
				Name:  "phases",
				Usage: "Touch phases to keep (default: all)",
			},
		},
		Action: renderAction,
	}
}

// RenderSummary describes an offline render.
type RenderSummary struct {
	Out      string  `json:"out"`
	Format   string  `json:"snapshot_format"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Samples  int     `json:"samples"`
	Dropped  int     `json:"dropped"`
	Rendered bool    `json:"rendered"`
	Peak     float64 `json:"peak"`
}

func renderAction(c *cli.Context) error {
	phases := domain.AllPhases
	if names := c.StringSlice("phases"); len(names) > 0 {
		var err error
		if phases, err = domain.NewPhaseSet(names); err != nil {
			return err
		}
	}

	bg, format, err := readSnapshot(c.String("snapshot"))
	if err != nil {
		return err
	}

	all, err := readSamples(c, c.String("samples"))
	if err != nil {
		return err
	}
	samples := make([]domain.TouchSample, 0, len(all))
	for _, s := range all {
		if phases.Has(s.Phase) && s.Validate() == nil {
			samples = append(samples, s)
		}
	}

	renderer, err := render.NewRenderer(render.Config{
		Radius:          c.Int("radius"),
		KernelCacheSize: 1,
		Logger:          cliLogger(c),
	})
	if err != nil {
		return err
	}
	res, err := renderer.Render(c.Context, bg, samples)
	if err != nil {
		return err
	}

	data, err := render.PNGBytes(res.Image)
	if err != nil {
		return fmt.Errorf("encode heatmap: %w", err)
	}
	out := c.String("out")
	if err := writeFile(out, data); err != nil {
		return err
	}

	b := res.Image.Bounds()
	return printResult(c, RenderSummary{
		Out:      out,
		Format:   format,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Samples:  len(samples),
		Dropped:  len(all) - len(samples),
		Rendered: res.Rendered,
		Peak:     res.Peak,
	})
}

func readSnapshot(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return render.DecodeImage(f)
}

// readSamples accepts a bare array or a {"samples": [...]} object.
func readSamples(c *cli.Context, path string) ([]domain.TouchSample, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(c.App.Reader)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var samples []domain.TouchSample
	if data[0] == '[' {
		err = json.Unmarshal(data, &samples)
	} else {
		var wrapped struct {
			Samples []domain.TouchSample `json:"samples"`
		}
		err = json.Unmarshal(data, &wrapped)
		samples = wrapped.Samples
	}
	if err != nil {
		return nil, fmt.Errorf("parse samples %s: %w", path, err)
	}
	return samples, nil
}

// writeFile writes data next to path and renames it into place.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+strings.TrimPrefix(filepath.Base(path), ".")+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
