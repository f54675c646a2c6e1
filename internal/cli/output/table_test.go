package output

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"
)

type artifactRow struct {
	Session  string        `json:"session_id"`
	Screen   string        `json:"screen_id"`
	Rendered bool          `json:"rendered"`
	Samples  int           `json:"sample_count"`
	Checksum string        `json:"checksum" table:"wide"`
	Secret   string        `json:"secret" table:"-"`
	Took     time.Duration `json:"took"`
	hidden   string
}

func TestTableFormatter_Slice(t *testing.T) {
	rows := []artifactRow{
		{Session: "ths-a", Screen: "home", Rendered: true, Samples: 12, Checksum: "abc", Secret: "s", Took: 1500 * time.Millisecond},
		{Session: "ths-a", Screen: "cart", Samples: 0},
	}

	tests := []struct {
		name    string
		f       TableFormatter
		want    []string
		notWant []string
	}{
		{
			name:    "narrow",
			f:       TableFormatter{},
			want:    []string{"SESSION_ID", "SCREEN_ID", "RENDERED", "SAMPLE_COUNT", "home", "1.5s", "true"},
			notWant: []string{"CHECKSUM", "abc", "SECRET", "HIDDEN"},
		},
		{
			name:    "wide",
			f:       TableFormatter{Wide: true},
			want:    []string{"CHECKSUM", "abc"},
			notWant: []string{"SECRET"},
		},
		{
			name:    "no headers",
			f:       TableFormatter{NoHeaders: true},
			want:    []string{"ths-a", "cart"},
			notWant: []string{"SESSION_ID"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.f.Format(&buf, rows); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, s) {
					t.Errorf("output contains %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestTableFormatter_Shapes(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{"nil", nil, ""},
		{"empty slice", []artifactRow{}, ""},
		{"pointer slice", []*artifactRow{{Screen: "home"}}, "home"},
		{"string slice", []string{"a", "b"}, "VALUE\na\nb\n"},
		{"map sorted", map[string]int{"b": 2, "a": 1}, "KEY  VALUE\na    1\nb    2\n"},
		{"single struct", &artifactRow{Screen: "home"}, "screen_id"},
		{"table", &Table{Headers: []string{"A"}, Rows: [][]string{{"x"}}}, "A\nx\n"},
		{"scalar falls back to json", 42, "42\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&TableFormatter{}).Format(&buf, tt.data); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if tt.want == "" {
				if buf.Len() != 0 {
					t.Errorf("output = %q, want empty", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	var nilPtr *int
	stamp := time.Date(2024, 5, 1, 12, 30, 0, 0, time.Local)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "x", "x"},
		{"empty string", "", "-"},
		{"int", 42, "42"},
		{"uint", uint8(7), "7"},
		{"float", 1.5, "1.50"},
		{"bool", false, "false"},
		{"short string slice", []string{"a", "b"}, "a,b"},
		{"long slice", []int{1, 2, 3}, "[3 items]"},
		{"empty slice", []int{}, "-"},
		{"map", map[string]int{"a": 1}, "{1 keys}"},
		{"nil pointer", nilPtr, ""},
		{"zero time", time.Time{}, "-"},
		{"time", stamp, "2024-05-01 12:30:00"},
		{"duration", 2*time.Second + 345678*time.Microsecond, "2.346s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(reflect.ValueOf(tt.in)); got != tt.want {
				t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if got := formatValue(reflect.Value{}); got != "" {
		t.Errorf("invalid value = %q", got)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Name":        "Name",
		"SampleCount": "Sample_Count",
		"session_id":  "session_id",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
