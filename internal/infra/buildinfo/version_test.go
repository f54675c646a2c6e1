package buildinfo

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	if info.Version == "" || info.Commit == "" || info.BuildTime == "" {
		t.Errorf("empty field in %+v", info)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
}

func TestFromSettings(t *testing.T) {
	tests := []struct {
		name     string
		preset   Info
		settings []debug.BuildSetting
		want     Info
	}{
		{
			name: "vcs stamp",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef0123"},
				{Key: "vcs.time", Value: "2024-05-01T12:00:00Z"},
				{Key: "vcs.modified", Value: "true"},
			},
			want: Info{Commit: "0123456789ab", BuildTime: "2024-05-01T12:00:00Z", Modified: true},
		},
		{
			name:   "ldflags win",
			preset: Info{Commit: "abc", BuildTime: "today"},
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "fff"},
				{Key: "vcs.time", Value: "yesterday"},
			},
			want: Info{Commit: "abc", BuildTime: "today"},
		},
		{
			name:     "no vcs",
			settings: []debug.BuildSetting{{Key: "GOOS", Value: "linux"}},
			want:     Info{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.preset
			fromSettings(&got, tt.settings)
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, Version+" (") || !strings.Contains(s, " built at ") {
		t.Errorf("String() = %q", s)
	}
}
