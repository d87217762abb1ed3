package platform

import (
	"path/filepath"
	"testing"
)

// TestPathsFor covers base directory selection per OS.
func TestPathsFor(t *testing.T) {
	cases := []struct {
		name       string
		goos       string
		env        map[string]string
		configBase string
		dataBase   string
		wantConfig string
		wantDataIn string
	}{
		{
			name:       "linux xdg",
			goos:       "linux",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"},
			configBase: "/home/me/.config",
			dataBase:   "/home/me/.local/share",
			wantConfig: "/xdg/config",
			wantDataIn: "/xdg/data",
		},
		{
			name:       "linux without xdg",
			goos:       "linux",
			env:        map[string]string{},
			configBase: "/home/me/.config",
			dataBase:   "/home/me/.local/share",
			wantConfig: "/home/me/.config",
			wantDataIn: "/home/me/.local/share",
		},
		{
			name:       "windows appdata",
			goos:       "windows",
			env:        map[string]string{"APPDATA": `C:\Roaming`, "LOCALAPPDATA": `C:\Local`},
			configBase: `C:\fallback\config`,
			dataBase:   `C:\fallback\data`,
			wantConfig: `C:\Roaming`,
			wantDataIn: `C:\Local`,
		},
		{
			name:       "darwin ignores xdg",
			goos:       "darwin",
			env:        map[string]string{"XDG_CONFIG_HOME": "/ignored"},
			configBase: "/Users/me/Library/Application Support",
			dataBase:   "/Users/me/Library/Application Support",
			wantConfig: "/Users/me/Library/Application Support",
			wantDataIn: "/Users/me/Library/Application Support",
		},
		{
			name:       "other os",
			goos:       "plan9",
			configBase: "/cfg",
			dataBase:   "/data",
			wantConfig: "/cfg",
			wantDataIn: "/data",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := PathsFor(tc.goos, tc.env, tc.configBase, tc.dataBase, "koni")
			if err != nil {
				t.Fatalf("PathsFor() error = %v", err)
			}
			if want := filepath.Join(tc.wantConfig, "koni", "config.toml"); p.ConfigPath != want {
				t.Fatalf("config path = %q, want %q", p.ConfigPath, want)
			}
			if want := filepath.Join(tc.wantDataIn, "koni"); p.DataDir != want {
				t.Fatalf("data dir = %q, want %q", p.DataDir, want)
			}
			if want := filepath.Join(tc.wantDataIn, "koni", "koni.db"); p.DBPath != want {
				t.Fatalf("db path = %q, want %q", p.DBPath, want)
			}
		})
	}
}

func TestPathsForRejectsBadInput(t *testing.T) {
	cases := map[string]struct {
		config, data, app string
	}{
		"empty config base": {config: "", data: "/data", app: "koni"},
		"empty data base":   {config: "/cfg", data: "", app: "koni"},
		"blank app":         {config: "/cfg", data: "/data", app: "  "},
		"slash in app":      {config: "/cfg", data: "/data", app: "../koni"},
		"backslash in app":  {config: "/cfg", data: "/data", app: `a\b`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := PathsFor("linux", nil, tc.config, tc.data, tc.app); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

// TestDefaultPathsWithOptions checks app naming on the running OS.
func TestDefaultPathsWithOptions(t *testing.T) {
	p, err := DefaultPathsWithOptions(Options{})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if filepath.Base(p.DBPath) != "koni.db" || p.DataDir == "" {
		t.Fatalf("unexpected default paths %#v", p)
	}

	p, err = DefaultPathsWithOptions(Options{AppName: " notes ", DevMode: true})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions() error = %v", err)
	}
	if filepath.Base(filepath.Dir(p.ConfigPath)) != "notes-dev" {
		t.Fatalf("expected dev config dir, got %q", p.ConfigPath)
	}
	if filepath.Base(p.DBPath) != "notes-dev.db" {
		t.Fatalf("expected dev db name, got %q", p.DBPath)
	}
}
