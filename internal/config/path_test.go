package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty passes through", in: "", want: ""},
		{name: "absolute passes through", in: "/tmp/db.sqlite", want: "/tmp/db.sqlite"},
		{name: "tilde expands", in: "~/data/db.sqlite", want: filepath.Join(home, "data", "db.sqlite")},
		{name: "bare tilde expands", in: "~", want: home},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.in); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExpandPath_EnvVar(t *testing.T) {
	t.Setenv("CHRONOFIN_TEST_DIR", "/var/data")
	if got := ExpandPath("$CHRONOFIN_TEST_DIR/db.sqlite"); got != "/var/data/db.sqlite" {
		t.Errorf("ExpandPath with env var = %q", got)
	}
}

func TestDefaultDatabasePath(t *testing.T) {
	got := DefaultDatabasePath()
	if !strings.HasSuffix(got, filepath.Join("chronofin", "chronofin.db")) {
		t.Errorf("DefaultDatabasePath() = %q", got)
	}
}
