package output

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestProgressBar_WithTotal(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, "backup")
	bar.SetTotal(2048)

	if _, err := io.Copy(bar, strings.NewReader(strings.Repeat("x", 1024))); err != nil {
		t.Fatal(err)
	}
	if bar.Current() != 1024 {
		t.Errorf("Current() = %d", bar.Current())
	}
	if !strings.Contains(buf.String(), " 50%") {
		t.Errorf("output = %q, want 50%%", buf.String())
	}

	bar.Finish()
	out := buf.String()
	if !strings.Contains(out, "100%") || !strings.HasSuffix(out, "\n") {
		t.Errorf("finished output = %q", out)
	}
}

func TestProgressBar_Counter(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, "backup")
	bar.Add(3 * 1024)
	bar.Finish()

	if !strings.Contains(buf.String(), "backup 3.0 KiB") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
