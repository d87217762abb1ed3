package keymap

import (
	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"

	"github.com/evanschultz/koni/internal/session"
)

// viewHelp adapts a KeyMap to help.KeyMap for one view.
type viewHelp struct {
	keys KeyMap
	view session.View
}

var _ help.KeyMap = viewHelp{}

// HelpFor returns the help bindings relevant to view.
func (k KeyMap) HelpFor(view session.View) help.KeyMap {
	return viewHelp{keys: k, view: view}
}

// ShortHelp returns the footer bindings.
func (h viewHelp) ShortHelp() []key.Binding {
	k := h.keys
	switch h.view {
	case session.ViewAdd:
		return []key.Binding{k.Editor, k.Erase, k.Cancel, k.ForceQuit}
	case session.ViewList, session.ViewDelete:
		return []key.Binding{k.Up, k.Down, k.DeleteNote, k.Yank, k.Add, k.Home, k.Quit}
	default:
		return []key.Binding{k.Notes, k.Add, k.DeleteTab, k.Quit}
	}
}

// FullHelp returns every binding grouped by purpose.
func (h viewHelp) FullHelp() [][]key.Binding {
	k := h.keys
	return [][]key.Binding{
		{k.Home, k.Notes, k.Add, k.DeleteTab, k.Quit, k.ForceQuit},
		{k.Up, k.Down, k.DeleteNote, k.Yank},
		{k.Editor, k.Erase, k.Cancel},
	}
}
