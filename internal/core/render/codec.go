package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	// Snapshot formats accepted from capture collaborators.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/yndnr/touchmap-go/internal/core/domain"
)

// MaxSnapshotPixels bounds decoded snapshot size (64 megapixels).
const MaxSnapshotPixels = 64 << 20

// DecodeImage decodes a snapshot in any registered format (png, jpeg, gif,
// webp, bmp, tiff). It returns the format name alongside the image.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	var buf bytes.Buffer
	cfg, format, err := image.DecodeConfig(io.TeeReader(r, &buf))
	if err != nil {
		return nil, "", domain.ErrSnapshotDecode.WithCause(err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", domain.ErrSnapshotDecode.WithDetails(fmt.Sprintf("empty image %dx%d", cfg.Width, cfg.Height))
	}
	if cfg.Width*cfg.Height > MaxSnapshotPixels {
		return nil, "", domain.ErrSnapshotDecode.WithDetails(fmt.Sprintf("image too large %dx%d", cfg.Width, cfg.Height))
	}

	img, _, err := image.Decode(io.MultiReader(&buf, r))
	if err != nil {
		return nil, "", domain.ErrSnapshotDecode.WithCause(err)
	}
	return img, format, nil
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	return enc.Encode(w, img)
}

// PNGBytes encodes img as PNG into memory.
func PNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
