// Package tui draws interactive session frames.
package tui

import (
	"fmt"
	"io"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/evanschultz/koni/internal/keymap"
	"github.com/evanschultz/koni/internal/session"
)

// SizeFunc reports the terminal width and height.
type SizeFunc func() (int, int)

// Option configures a Renderer.
type Option func(*Renderer)

// WithSize sets the terminal size source.
func WithSize(size SizeFunc) Option {
	return func(r *Renderer) {
		if size != nil {
			r.size = size
		}
	}
}

// Renderer writes full frames to a raw-mode terminal.
type Renderer struct {
	out  io.Writer
	size SizeFunc
	keys keymap.KeyMap
	help help.Model
	md   markdownRenderer
	last string
}

// NewRenderer constructs a renderer writing to out.
func NewRenderer(out io.Writer, keys keymap.KeyMap, opts ...Option) *Renderer {
	h := help.New()
	h.ShowAll = false
	r := &Renderer{
		out:  out,
		size: func() (int, int) { return 80, 24 },
		keys: keys,
		help: h,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Render draws s unless the frame is unchanged since the last call.
func (r *Renderer) Render(s session.State) error {
	frame := r.View(s)
	if frame == r.last {
		return nil
	}
	r.last = frame
	// Raw mode disables output post-processing, so rows need explicit carriage returns.
	payload := ansi.CursorHomePosition + ansi.EraseEntireScreen + strings.ReplaceAll(frame, "\n", "\r\n")
	if _, err := io.WriteString(r.out, payload); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Invalidate forces the next Render to redraw, e.g. after an editor cleared the screen.
func (r *Renderer) Invalidate() {
	r.last = ""
}

// View returns the frame for s without writing it.
func (r *Renderer) View(s session.State) string {
	width, height := r.size()
	width = max(20, width)
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	sections := []string{renderHeader(s.View, width)}
	switch {
	case s.EditorActive:
		sections = append(sections, lipgloss.NewStyle().Foreground(muted).Padding(1, 2).Render("opening editor…"))
	case s.View == session.ViewHome:
		sections = append(sections, renderHome(width))
	case s.View == session.ViewAdd:
		sections = append(sections, renderAdd(s.Draft, width))
	default:
		sections = append(sections, r.renderNotes(s, width, height))
	}
	if strings.TrimSpace(s.Status) != "" {
		sections = append(sections, statusStyle.Render(" "+s.Status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := r.help
	helpBubble.SetWidth(max(0, width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(width).
		Render(helpBubble.View(r.keys.HelpFor(s.View)))

	if height > 0 {
		content = fitLines(content, max(0, height-lipgloss.Height(helpLine)))
	}
	return content + "\n" + helpLine
}

func renderHeader(active session.View, width int) string {
	accent := lipgloss.Color("62")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	inactiveStyle := lipgloss.NewStyle().Foreground(dim)

	tabs := make([]string, len(session.Tabs))
	for _, v := range session.Tabs {
		label := v.String()
		if v == active {
			tabs[v.TabIndex()] = activeStyle.Render("[" + label + "]")
		} else {
			tabs[v.TabIndex()] = inactiveStyle.Render(label)
		}
	}
	line := titleStyle.Render("koni") + "  " + strings.Join(tabs, " | ")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		Width(width).
		Render(line)
}

func renderHome(width int) string {
	accent := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	lines := []string{
		"",
		"Welcome to",
		"",
		accent.Render("koni"),
		"",
		"Press n to browse notes, a to add one, x for the delete tab.",
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

func renderAdd(draft string, width int) string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	field := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Width(width).
		Render("title: " + draft + "█")
	hint := muted.Render(" type a title, then ctrl+e to write the body in your editor")
	return field + "\n" + hint
}

func (r *Renderer) renderNotes(s session.State, width, height int) string {
	dim := lipgloss.Color("239")
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	if !s.Loaded {
		return muted.Render(" loading notes…")
	}
	if len(s.Notes) == 0 {
		return muted.Render(" no notes yet, press a to add one")
	}

	listWidth := max(16, width/3)
	detailWidth := max(16, width-listWidth-1)
	paneHeight := max(3, height-8)
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)

	items := make([]string, 0, len(s.Notes))
	for i, note := range s.Notes {
		label := truncate(note.Title, max(1, listWidth-6))
		if i == s.Selection {
			items = append(items, selectedStyle.Render("> "+label))
		} else {
			items = append(items, "  "+label)
		}
	}
	title := "Notes"
	if s.View == session.ViewDelete {
		title = "Delete (d removes the selected note)"
	}
	list := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		Width(listWidth).
		Render(truncate(title, max(1, listWidth-4)) + "\n" + fitLines(strings.Join(items, "\n"), paneHeight))

	body := ""
	if note, ok := s.Selected(); ok {
		body = r.md.render(note.Body, detailWidth-4)
		if body == "" {
			body = muted.Render("(empty)")
		}
		body = lipgloss.NewStyle().Bold(true).Render(note.Title) + "\n\n" + body
	}
	detail := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		Width(detailWidth).
		Render(fitLines(body, paneHeight+1))

	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

// fitLines pads or truncates content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// truncate shortens s to max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
