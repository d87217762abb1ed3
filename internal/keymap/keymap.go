// Package keymap resolves terminal key presses into session commands.
package keymap

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/evanschultz/koni/internal/session"
)

// Overrides carries user-configured keys. Blank fields keep the defaults.
type Overrides struct {
	Quit       string
	Home       string
	Notes      string
	Add        string
	DeleteTab  string
	DeleteNote string
	Yank       string
}

// KeyMap holds every binding of the interactive session.
type KeyMap struct {
	ForceQuit  key.Binding
	Quit       key.Binding
	Home       key.Binding
	Notes      key.Binding
	Add        key.Binding
	DeleteTab  key.Binding
	DeleteNote key.Binding
	Yank       key.Binding
	Up         key.Binding
	Down       key.Binding
	Cancel     key.Binding
	Erase      key.Binding
	Editor     key.Binding
}

// Default returns the stock bindings.
func Default() KeyMap {
	return KeyMap{
		ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Home:       key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "home")),
		Notes:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "notes")),
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add note")),
		DeleteTab:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete tab")),
		DeleteNote: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete note")),
		Yank:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy body")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Erase:      key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "erase")),
		Editor:     key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "write body")),
	}
}

// New returns the default bindings with overrides applied.
func New(o Overrides) KeyMap {
	k := Default()
	configureBinding(&k.Quit, o.Quit, "q", "quit")
	configureBinding(&k.Home, o.Home, "h", "home")
	configureBinding(&k.Notes, o.Notes, "n", "notes")
	configureBinding(&k.Add, o.Add, "a", "add note")
	configureBinding(&k.DeleteTab, o.DeleteTab, "x", "delete tab")
	configureBinding(&k.DeleteNote, o.DeleteNote, "d", "delete note")
	configureBinding(&k.Yank, o.Yank, "y", "copy body")
	return k
}

// Resolve maps one key press to a command for the given view. The rune is
// the typed character for session.TypeRune and zero otherwise.
func (k KeyMap) Resolve(view session.View, msg tea.Key) (session.Command, rune) {
	if key.Matches(msg, k.ForceQuit) {
		return session.Quit, 0
	}
	if view == session.ViewAdd {
		return k.resolveAdd(msg)
	}
	switch {
	case key.Matches(msg, k.Quit):
		return session.Quit, 0
	case key.Matches(msg, k.Home):
		return session.GoHome, 0
	case key.Matches(msg, k.Notes):
		return session.OpenNotes, 0
	case key.Matches(msg, k.Add):
		return session.NewNote, 0
	case key.Matches(msg, k.DeleteTab):
		return session.OpenDelete, 0
	case key.Matches(msg, k.DeleteNote):
		return session.DeleteSelected, 0
	case key.Matches(msg, k.Yank):
		return session.Yank, 0
	case key.Matches(msg, k.Up):
		return session.Previous, 0
	case key.Matches(msg, k.Down):
		return session.Next, 0
	}
	return session.None, 0
}

// resolveAdd treats the Add view as a text field: any ctrl chord opens the
// editor and printable text is appended to the title.
func (k KeyMap) resolveAdd(msg tea.Key) (session.Command, rune) {
	switch {
	case key.Matches(msg, k.Cancel):
		return session.Cancel, 0
	case key.Matches(msg, k.Erase):
		return session.Backspace, 0
	case key.Matches(msg, k.Editor), isCtrlChord(msg):
		return session.BeginBody, 0
	}
	if msg.Text == "" {
		return session.None, 0
	}
	r, _ := utf8.DecodeRuneInString(msg.Text)
	if r == utf8.RuneError || !unicode.IsPrint(r) {
		return session.None, 0
	}
	return session.TypeRune, r
}

func isCtrlChord(msg tea.Key) bool {
	return msg.Mod&tea.ModCtrl != 0 && unicode.IsLetter(msg.Code)
}

// parseBindingKeys converts a configured key into matcher keys and a help label.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	if raw == "space" || raw == " " {
		return []string{" ", "space"}, "space"
	}
	if utf8.RuneCountInString(raw) == 1 {
		r, _ := utf8.DecodeRuneInString(raw)
		if unicode.IsUpper(r) {
			return []string{raw, "shift+" + string(unicode.ToLower(r))}, raw
		}
		return []string{raw}, raw
	}
	return []string{strings.ToLower(raw)}, raw
}

// configureBinding rebinds b to the configured key, keeping desc as help text.
func configureBinding(b *key.Binding, raw, fallback, desc string) {
	keys, help := parseBindingKeys(raw, fallback)
	b.SetKeys(keys...)
	b.SetHelp(help, desc)
}
