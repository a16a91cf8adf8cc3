package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type Palette struct {
	BG      string `json:"bg"`
	FG      string `json:"fg"`
	Muted   string `json:"muted"`
	Accent  string `json:"accent"`
	Success string `json:"success"`
	Warning string `json:"warning"`
	Danger  string `json:"danger"`
}

type StyleSpec struct {
	FG     string `json:"fg,omitempty"`
	BG     string `json:"bg,omitempty"`
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`
	Faint  bool   `json:"faint,omitempty"`
}

type ComponentStyles struct {
	Title       StyleSpec `json:"title"`
	MenuItem    StyleSpec `json:"menu_item"`
	MenuCursor  StyleSpec `json:"menu_cursor"`
	PromptLabel StyleSpec `json:"prompt_label"`
	Info        StyleSpec `json:"info"`
	Success     StyleSpec `json:"success"`
	Error       StyleSpec `json:"error"`
	Muted       StyleSpec `json:"muted"`
}

type Theme struct {
	Name       string          `json:"name"`
	Palette    Palette         `json:"palette"`
	Components ComponentStyles `json:"components"`
}

// Styles are the rendered lipgloss styles of a Theme.
type Styles struct {
	Title       lipgloss.Style
	MenuItem    lipgloss.Style
	MenuCursor  lipgloss.Style
	PromptLabel lipgloss.Style
	Info        lipgloss.Style
	Success     lipgloss.Style
	Error       lipgloss.Style
	Muted       lipgloss.Style
	Box         lipgloss.Style
}

func Default() Theme {
	p := Palette{
		BG:      "#1e1e2e",
		FG:      "#f2d5cf",
		Muted:   "#7f8ca3",
		Accent:  "#cba6f7",
		Success: "#a6e3a1",
		Warning: "#f9e2af",
		Danger:  "#f38ba8",
	}
	return Theme{
		Name:    "Default",
		Palette: p,
		Components: ComponentStyles{
			Title:       StyleSpec{FG: p.BG, BG: p.Accent, Bold: true},
			MenuItem:    StyleSpec{FG: p.FG},
			MenuCursor:  StyleSpec{FG: p.Warning, Bold: true},
			PromptLabel: StyleSpec{FG: p.Accent, Bold: true},
			Info:        StyleSpec{FG: p.FG},
			Success:     StyleSpec{FG: p.Success},
			Error:       StyleSpec{FG: p.Danger, Bold: true},
			Muted:       StyleSpec{FG: p.Muted, Italic: true},
		},
	}
}

// LoadFrom reads a JSON theme from path, filling unset fields from Default.
// A missing file yields the default theme.
func LoadFrom(path string) (Theme, error) {
	base := Default()
	if strings.TrimSpace(path) == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return base, nil
		}
		return base, err
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return Default(), fmt.Errorf("parse theme: %w", err)
	}
	return base, nil
}

// Path returns the theme file location next to the config file.
func Path() (string, error) {
	cfgHome := os.Getenv("XDG_CONFIG_HOME")
	if cfgHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		cfgHome = filepath.Join(home, ".config")
	}
	return filepath.Join(cfgHome, "pdfeditor", "theme.json"), nil
}

func (s StyleSpec) style() lipgloss.Style {
	st := lipgloss.NewStyle()
	if s.FG != "" {
		st = st.Foreground(lipgloss.Color(s.FG))
	}
	if s.BG != "" {
		st = st.Background(lipgloss.Color(s.BG))
	}
	return st.Bold(s.Bold).Italic(s.Italic).Faint(s.Faint)
}

func (t Theme) Styles() Styles {
	c := t.Components
	return Styles{
		Title:       c.Title.style().Padding(0, 1),
		MenuItem:    c.MenuItem.style(),
		MenuCursor:  c.MenuCursor.style(),
		PromptLabel: c.PromptLabel.style(),
		Info:        c.Info.style(),
		Success:     c.Success.style(),
		Error:       c.Error.style(),
		Muted:       c.Muted.style(),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Palette.Muted)).
			Padding(0, 1),
	}
}
