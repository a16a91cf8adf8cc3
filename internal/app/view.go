package app

import (
	"fmt"
	"strconv"
	"strings"
)

// truncate a string to at most width columns, keeping the tail of paths.
func truncateLeft(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[len(r)-width:])
	}
	return "…" + string(r[len(r)-width+1:])
}

func (m Model) View() string {
	if m.state == stateTerminated {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("PDF Editor"))
	b.WriteString("  ")
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%d PDFs indexed", m.indexed)))
	b.WriteString("\n\n")

	switch m.state {
	case stateMainMenu:
		b.WriteString(m.renderMenu())
	case stateRebuilding:
		b.WriteString(m.renderRebuild())
	default:
		b.WriteString(m.renderOperation())
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.renderStatus())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(m.helpLine()))
	return b.String()
}

func (m Model) renderMenu() string {
	lines := make([]string, 0, len(menuLabels)+8)
	for i, label := range menuLabels {
		item := fmt.Sprintf("%d. %s", i+1, label)
		if i == m.menuCursor {
			lines = append(lines, m.styles.MenuCursor.Render("> "+item))
		} else {
			lines = append(lines, m.styles.MenuItem.Render("  "+item))
		}
	}
	out := m.styles.Box.Render(strings.Join(lines, "\n"))

	if len(m.recent) > 0 {
		recent := []string{m.styles.PromptLabel.Render("Recent outputs")}
		for _, e := range m.recent {
			line := fmt.Sprintf("%-6s %s", e.Operation, truncateLeft(e.Output, 60))
			recent = append(recent, m.styles.Muted.Render(line))
		}
		out += "\n" + strings.Join(recent, "\n")
	}
	return out + "\n"
}

func (m Model) renderRebuild() string {
	p := m.progress
	percent := 0.0
	if p.Total > 0 {
		percent = float64(p.Done) / float64(p.Total)
	}
	lines := []string{
		m.styles.PromptLabel.Render("Searching for PDFs"),
		m.bar.ViewAs(percent),
		m.styles.Info.Render(fmt.Sprintf("%d/%d volumes, %d PDFs found", p.Done, p.Total, p.Found)),
	}
	if p.Volume != "" {
		lines = append(lines, m.styles.Muted.Render("scanning "+truncateLeft(p.Volume, 60)))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m Model) renderOperation() string {
	var lines []string
	switch m.state {
	case stateCombining:
		lines = append(lines, m.styles.PromptLabel.Render("Combine PDFs"))
		for i, p := range m.inputs {
			lines = append(lines, m.styles.Info.Render(fmt.Sprintf("  %d. %s", i+1, truncateLeft(p, 60))))
		}
	case stateDeleting:
		lines = append(lines, m.styles.PromptLabel.Render("Delete pages"))
		lines = append(lines, m.documentLine()...)
		if m.acc != nil && !m.acc.Selection().IsEmpty() {
			lines = append(lines, m.styles.Info.Render("  delete: "+m.acc.Selection().String()))
		}
	case stateRotating:
		lines = append(lines, m.styles.PromptLabel.Render("Rotate pages"))
		lines = append(lines, m.documentLine()...)
		if m.rot != nil && len(m.rot.Pages()) > 0 {
			lines = append(lines, m.styles.Info.Render("  rotate: "+describeTurns(m.rot.Pages(), m.rot.Turns())))
		}
	}

	lines = append(lines, "", m.styles.PromptLabel.Render(m.promptLabel()), m.input.View())
	return strings.Join(lines, "\n") + "\n"
}

func (m Model) documentLine() []string {
	if m.docPath == "" {
		return nil
	}
	return []string{m.styles.Info.Render(fmt.Sprintf("  %s (%d pages)", truncateLeft(m.docPath, 60), m.total))}
}

func (m Model) promptLabel() string {
	switch m.step {
	case stepName:
		if m.state == stateCombining {
			return "Name of PDF to add (blank to finish):"
		}
		return "Name of the PDF (blank to cancel):"
	case stepConfirmRebuild:
		return "Rebuild the index and search again? (y/n)"
	case stepPages:
		return "Pages to delete, e.g. 1,4-6 (blank to finish):"
	case stepConfirmDelete:
		return "Delete these pages? (y/n)"
	case stepPageNumber:
		return "Page to rotate, 1-" + strconv.Itoa(m.total) + " (blank to finish):"
	case stepTurns:
		return "Clockwise quarter turns for page " + strconv.Itoa(m.pendingPage) + " (0-3):"
	case stepOutputName:
		return "Output file name, saved in " + m.outputDir() + ":"
	}
	return ""
}

func (m Model) renderStatus() string {
	switch m.statusKind {
	case statusSuccess:
		return m.styles.Success.Render(m.status)
	case statusError:
		return m.styles.Error.Render(m.status)
	default:
		return m.styles.Info.Render(m.status)
	}
}

func (m Model) helpLine() string {
	switch m.state {
	case stateMainMenu:
		return "↑/↓ or j/k move • enter or 1-4 select • q quit"
	case stateRebuilding:
		return "ctrl+c quit"
	default:
		return "enter submit • esc back to menu • ctrl+c quit"
	}
}
