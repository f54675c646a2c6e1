package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/yndnr/touchmap-go/internal/core/domain"
)

func TestPNGRoundTrip(t *testing.T) {
	src := solid(image.Rect(0, 0, 7, 5), color.RGBA{200, 100, 50, 255})

	data, err := PNGBytes(src)
	if err != nil {
		t.Fatalf("PNGBytes: %v", err)
	}

	img, format, err := DecodeImage(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if img.Bounds() != src.Bounds() {
		t.Errorf("bounds = %v, want %v", img.Bounds(), src.Bounds())
	}
	got := color.RGBAModel.Convert(img.At(3, 2)).(color.RGBA)
	if got != (color.RGBA{200, 100, 50, 255}) {
		t.Errorf("pixel = %v", got)
	}
}

func TestDecodeImage_JPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solid(image.Rect(0, 0, 16, 8), color.RGBA{0, 0, 0, 255}), nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}

	img, format, err := DecodeImage(&buf)
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if format != "jpeg" || img.Bounds().Dx() != 16 || img.Bounds().Dy() != 8 {
		t.Errorf("got %s %v", format, img.Bounds())
	}
}

func TestDecodeImage_Invalid(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("not an image")} {
		_, _, err := DecodeImage(bytes.NewReader(data))
		if !errors.Is(err, domain.ErrSnapshotDecode) {
			t.Errorf("DecodeImage(%q) err = %v, want ErrSnapshotDecode", data, err)
		}
	}
}
