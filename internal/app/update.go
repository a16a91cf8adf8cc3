package app

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"pdfeditor/internal/pages"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		width := msg.Width - 8
		if width > 60 {
			width = 60
		}
		if width < 10 {
			width = 10
		}
		m.bar.Width = width
		return m, nil

	case rebuildProgressMsg:
		m.progress = msg.progress
		return m, waitForRebuild(m.rebuildCh)

	case rebuildDoneMsg:
		return m.finishRebuild(msg.err)

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		if b, ok := bar.(progress.Model); ok {
			m.bar = b
		}
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.terminate()
		}
		switch m.state {
		case stateMainMenu:
			return m.updateMenu(msg)
		case stateRebuilding:
			// input is ignored until the walk finishes
			return m, nil
		case stateTerminated:
			return m, tea.Quit
		default:
			return m.updatePrompt(msg)
		}
	}

	return m, nil
}

func (m Model) terminate() (tea.Model, tea.Cmd) {
	if m.cancelRebuild != nil {
		m.cancelRebuild()
		m.cancelRebuild = nil
	}
	m.toMainMenu()
	m.state = stateTerminated
	return m, tea.Quit
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case "down", "j":
		if m.menuCursor < len(menuLabels)-1 {
			m.menuCursor++
		}
	case "1", "2", "3", "4":
		m.menuCursor = int(msg.String()[0] - '1')
		return m.choose(menuChoice(m.menuCursor))
	case "enter":
		return m.choose(menuChoice(m.menuCursor))
	case "q", "esc":
		return m.terminate()
	}
	return m, nil
}

func (m Model) choose(c menuChoice) (tea.Model, tea.Cmd) {
	m.clearStatus()
	switch c {
	case choiceCombine:
		m.state = stateCombining
		m.inputs = nil
	case choiceDelete:
		m.state = stateDeleting
	case choiceRotate:
		m.state = stateRotating
	case choiceQuit:
		return m.terminate()
	default:
		return m, nil
	}
	m.prompt(stepName)
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.toMainMenu()
		m.setStatus("Cancelled")
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		m.input.SetValue("")
		return m.submit(value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(value string) (tea.Model, tea.Cmd) {
	switch m.step {
	case stepName:
		return m.submitName(value)
	case stepConfirmRebuild:
		return m.submitConfirmRebuild(value)
	case stepPages:
		return m.submitPages(value)
	case stepConfirmDelete:
		return m.submitConfirmDelete(value)
	case stepPageNumber:
		return m.submitPageNumber(value)
	case stepTurns:
		return m.submitTurns(value)
	case stepOutputName:
		return m.submitOutputName(value)
	}
	return m, nil
}

func (m Model) submitName(value string) (tea.Model, tea.Cmd) {
	if value == "" {
		if m.state == stateCombining && len(m.inputs) > 0 {
			if len(m.inputs) < 2 {
				m.toMainMenu()
				m.setStatus("Need at least two PDFs to combine; nothing written")
				return m, nil
			}
			m.prompt(stepOutputName)
			return m, nil
		}
		m.toMainMenu()
		m.setStatus("Cancelled")
		return m, nil
	}

	path, ok := m.idx.Lookup(value)
	if !ok {
		m.pendingName = value
		m.setError("Could not find " + value + ". Rebuild the index? (y/n)")
		m.prompt(stepConfirmRebuild)
		return m, nil
	}
	m.accept(path)
	return m, nil
}

// accept moves the current operation forward with a resolved path.
func (m *Model) accept(path string) {
	m.pendingName = ""
	switch m.state {
	case stateCombining:
		m.inputs = append(m.inputs, path)
		m.setStatus("Added " + path + ". Enter another name, or leave blank to finish")
		m.prompt(stepName)
		return
	}

	total, err := m.ops.PageCount(path)
	if err != nil {
		m.logger.Error("Failed to open document", "path", path, "error", err)
		m.toMainMenu()
		m.setError("Cannot open " + path + ": " + err.Error())
		return
	}
	m.docPath = path
	m.total = total
	switch m.state {
	case stateDeleting:
		m.acc = pages.NewAccumulator(total)
		m.setStatus(path + " has " + strconv.Itoa(total) + " pages")
		m.prompt(stepPages)
	case stateRotating:
		m.rot = pages.NewRotations(total)
		m.setStatus(path + " has " + strconv.Itoa(total) + " pages")
		m.prompt(stepPageNumber)
	}
}

func (m Model) submitConfirmRebuild(value string) (tea.Model, tea.Cmd) {
	switch yesNo(value) {
	case answerYes:
		return m.startRebuild()
	case answerNo:
		m.pendingName = ""
		m.setStatus("Check the file name and try again")
		m.prompt(stepName)
		return m, nil
	default:
		m.setError("Please answer y or n")
		m.prompt(stepConfirmRebuild)
		return m, nil
	}
}

func (m Model) submitPages(value string) (tea.Model, tea.Cmd) {
	step, err := m.acc.Add(value)
	if err != nil {
		m.setError(err.Error() + ". Please try again")
		m.prompt(stepPages)
		return m, nil
	}
	switch step {
	case pages.StepAbort:
		m.toMainMenu()
		m.setStatus("No pages selected; nothing deleted")
	case pages.StepDone:
		if len(m.acc.Selection().Indices) >= m.total {
			// start over; adding tokens can never shrink the selection
			m.acc = pages.NewAccumulator(m.total)
			m.setError("Cannot delete every page of the document. Enter the pages again")
			m.prompt(stepPages)
			return m, nil
		}
		m.setStatus("Pages to delete: " + m.acc.Selection().String())
		m.prompt(stepConfirmDelete)
	default:
		m.setStatus("You've entered: " + m.acc.Selection().String() + ". Add more, or leave blank to finish")
		m.prompt(stepPages)
	}
	return m, nil
}

func (m Model) submitConfirmDelete(value string) (tea.Model, tea.Cmd) {
	switch yesNo(value) {
	case answerYes:
		m.prompt(stepOutputName)
	case answerNo:
		m.toMainMenu()
		m.setStatus("Nothing deleted")
	default:
		m.setError("Please answer y or n")
		m.prompt(stepConfirmDelete)
	}
	return m, nil
}

func (m Model) submitPageNumber(value string) (tea.Model, tea.Cmd) {
	if value == "" {
		if m.rot.Changed() {
			m.prompt(stepOutputName)
			return m, nil
		}
		m.toMainMenu()
		m.setStatus("No pages rotated; nothing written")
		return m, nil
	}
	page, err := strconv.Atoi(value)
	if err != nil || page < 1 || page > m.total {
		m.setError("Enter a page number between 1 and " + strconv.Itoa(m.total))
		m.prompt(stepPageNumber)
		return m, nil
	}
	m.pendingPage = page
	m.clearStatus()
	m.prompt(stepTurns)
	return m, nil
}

func (m Model) submitTurns(value string) (tea.Model, tea.Cmd) {
	if value == "" {
		m.pendingPage = 0
		m.prompt(stepPageNumber)
		return m, nil
	}
	turns, err := strconv.Atoi(value)
	if err != nil || turns < 0 || turns > pages.MaxTurns {
		m.setError("Enter 0, 1, 2 or 3 quarter turns")
		m.prompt(stepTurns)
		return m, nil
	}
	if err := m.rot.Apply(m.pendingPage, turns); err != nil {
		m.setError(err.Error())
		m.prompt(stepPageNumber)
		return m, nil
	}
	m.setStatus("Rotated page " + strconv.Itoa(m.pendingPage) + " by " + strconv.Itoa(turns*90) + " degrees")
	m.pendingPage = 0
	m.prompt(stepPageNumber)
	return m, nil
}

type answer int

const (
	answerUnknown answer = iota
	answerYes
	answerNo
)

func yesNo(value string) answer {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes":
		return answerYes
	case "n", "no", "":
		return answerNo
	}
	return answerUnknown
}
