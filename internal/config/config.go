// Package config loads koni's TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Tick interval bounds accepted by Validate.
const (
	MinTickInterval = time.Millisecond
	MaxTickInterval = time.Second
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Editor   EditorConfig   `toml:"editor"`
	Input    InputConfig    `toml:"input"`
	Logging  LoggingConfig  `toml:"logging"`
	Notify   NotifyConfig   `toml:"notify"`
	Server   ServerConfig   `toml:"server"`
	Keys     KeyConfig      `toml:"keys"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// EditorConfig selects the external editor. A blank command falls back to
// $VISUAL, then $EDITOR, then vim.
type EditorConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

type InputConfig struct {
	TickInterval Duration `toml:"tick_interval"`
}

type LoggingConfig struct {
	Level   string         `toml:"level"`
	DevFile DevFileLogging `toml:"dev_file"`
}

// DevFileLogging controls the logfmt file sink used in dev mode.
type DevFileLogging struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type NotifyConfig struct {
	OnSave bool `toml:"on_save"`
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

// KeyConfig rebinds single-key commands. Blank entries keep the defaults.
type KeyConfig struct {
	Quit       string `toml:"quit"`
	Home       string `toml:"home"`
	Notes      string `toml:"notes"`
	Add        string `toml:"add"`
	DeleteTab  string `toml:"delete_tab"`
	DeleteNote string `toml:"delete_note"`
	Yank       string `toml:"yank"`
}

// Duration is a time.Duration written as a Go duration string ("20ms").
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText renders the duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Input: InputConfig{
			TickInterval: Duration(20 * time.Millisecond),
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileLogging{
				Enabled: true,
				Dir:     ".koni/log",
			},
		},
		Notify: NotifyConfig{
			OnSave: false,
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
	}
}

// Load overlays the file at path onto defaults. A blank path, a missing
// file, and an empty file all yield defaults.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	tick := c.Input.TickInterval.Std()
	if tick < MinTickInterval || tick > MaxTickInterval {
		return fmt.Errorf("input.tick_interval must be between %s and %s, got %s", MinTickInterval, MaxTickInterval, tick)
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if strings.TrimSpace(c.Editor.Command) == "" && len(c.Editor.Args) > 0 {
		return errors.New("editor.args requires editor.command")
	}

	if strings.TrimSpace(c.Server.HTTPBind) == "" {
		return errors.New("server.http_bind is required")
	}
	api := "/" + strings.Trim(strings.TrimSpace(c.Server.APIEndpoint), "/")
	mcp := "/" + strings.Trim(strings.TrimSpace(c.Server.MCPEndpoint), "/")
	if api != "/" && api == mcp {
		return fmt.Errorf("server.api_endpoint and server.mcp_endpoint must differ, both are %q", api)
	}

	return c.Keys.validate()
}

// FixedKeys are bound by the session itself and cannot be reassigned.
var FixedKeys = []string{"ctrl+c", "up", "down", "k", "j", "esc", "backspace", "ctrl+e"}

// DefaultKeys returns the stock single-key bindings.
func DefaultKeys() KeyConfig {
	return KeyConfig{
		Quit:       "q",
		Home:       "h",
		Notes:      "n",
		Add:        "a",
		DeleteTab:  "x",
		DeleteNote: "d",
		Yank:       "y",
	}
}

// validate checks the effective bindings, blank entries resolved to their
// defaults, for collisions with each other and with FixedKeys.
func (k KeyConfig) validate() error {
	seen := map[string]string{}
	for _, fixed := range FixedKeys {
		seen[fixed] = ""
	}
	defaults := DefaultKeys().entries()
	for i, entry := range k.entries() {
		name, raw := entry[0], strings.TrimSpace(entry[1])
		if raw == "" {
			raw = defaults[i][1]
		}
		norm := normalizeKey(raw)
		other, ok := seen[norm]
		switch {
		case ok && other == "":
			return fmt.Errorf("keys.%s cannot use %q, it is reserved", name, raw)
		case ok:
			return fmt.Errorf("keys.%s and keys.%s are both bound to %q", other, name, raw)
		}
		seen[norm] = name
	}
	return nil
}

// normalizeKey folds spellings that match the same key press.
func normalizeKey(raw string) string {
	if raw == " " || strings.EqualFold(raw, "space") {
		return "space"
	}
	if len([]rune(raw)) == 1 {
		return raw
	}
	return strings.ToLower(raw)
}

// entries lists the configured bindings in a fixed order.
func (k KeyConfig) entries() [][2]string {
	return [][2]string{
		{"quit", k.Quit},
		{"home", k.Home},
		{"notes", k.Notes},
		{"add", k.Add},
		{"delete_tab", k.DeleteTab},
		{"delete_note", k.DeleteNote},
		{"yank", k.Yank},
	}
}

// Save validates cfg and writes it to path as TOML, creating the parent
// directory when needed.
func Save(path string, cfg Config) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// EnsureConfigDir creates the directory that holds the config file at path.
func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
