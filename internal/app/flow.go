package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"pdfeditor/internal/document"
	"pdfeditor/internal/history"
	"pdfeditor/internal/index"
)

type rebuildProgressMsg struct {
	progress index.Progress
}

type rebuildDoneMsg struct {
	err error
}

// startRebuild walks the volumes on a goroutine and streams progress back
// through a channel. The index is not touched by the model until
// rebuildDoneMsg arrives.
func (m Model) startRebuild() (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(m.ctx)
	ch := make(chan tea.Msg, 16)
	idx := m.idx
	go func() {
		defer close(ch)
		err := idx.Rebuild(ctx, func(p index.Progress) {
			ch <- rebuildProgressMsg{progress: p}
		})
		ch <- rebuildDoneMsg{err: err}
	}()

	m.resumeState = m.state
	m.state = stateRebuilding
	m.rebuildCh = ch
	m.cancelRebuild = cancel
	m.progress = index.Progress{}
	m.setStatus("Rebuilding the PDF index...")
	return m, waitForRebuild(ch)
}

func waitForRebuild(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m Model) finishRebuild(err error) (tea.Model, tea.Cmd) {
	if m.cancelRebuild != nil {
		m.cancelRebuild()
		m.cancelRebuild = nil
	}
	m.rebuildCh = nil
	m.indexed = m.idx.Len()
	m.state = m.resumeState
	name := m.pendingName

	if err != nil {
		m.logger.Error("Index rebuild failed", "error", err)
		m.toMainMenu()
		var persist *index.PersistError
		if errors.As(err, &persist) {
			m.setError("Could not save the index to " + persist.Path + ": " + persist.Err.Error())
		} else {
			m.setError("Index rebuild failed: " + err.Error())
		}
		return m, nil
	}

	if path, ok := m.idx.Lookup(name); ok {
		m.accept(path)
		return m, nil
	}
	m.pendingName = ""
	m.setError(fmt.Sprintf("Still could not find %s among %d indexed PDFs", index.Normalize(name), m.indexed))
	m.prompt(stepName)
	return m, nil
}

func (m Model) submitOutputName(value string) (tea.Model, tea.Cmd) {
	if value == "" {
		m.toMainMenu()
		m.setStatus("Cancelled; nothing written")
		return m, nil
	}
	target, err := document.Target(m.outputDir(), value)
	if err != nil {
		if errors.Is(err, document.ErrCollision) {
			m.setError(filepath.Base(target) + " already exists. Choose another name")
		} else {
			m.setError(err.Error())
		}
		m.prompt(stepOutputName)
		return m, nil
	}

	entry := history.Entry{Output: target}
	var written string
	switch m.state {
	case stateCombining:
		entry.Operation = history.OpMerge
		entry.Sources = append([]string(nil), m.inputs...)
		entry.Detail = fmt.Sprintf("%d documents", len(m.inputs))
		written, err = m.ops.Merge(m.inputs, target)
	case stateDeleting:
		sel := m.acc.Selection()
		entry.Operation = history.OpDelete
		entry.Sources = []string{m.docPath}
		entry.Detail = "deleted " + sel.String()
		written, err = m.ops.DeletePages(m.docPath, sel, target)
	case stateRotating:
		entry.Operation = history.OpRotate
		entry.Sources = []string{m.docPath}
		entry.Detail = describeTurns(m.rot.Pages(), m.rot.Turns())
		written, err = m.ops.RotatePages(m.docPath, m.rot.Turns(), target)
	default:
		m.toMainMenu()
		return m, nil
	}

	if err != nil {
		if errors.Is(err, document.ErrCollision) {
			m.setError(filepath.Base(target) + " already exists. Choose another name")
			m.prompt(stepOutputName)
			return m, nil
		}
		m.logger.Error("Operation failed", "state", m.state.String(), "target", target, "error", err)
		m.toMainMenu()
		m.setError("Failed to write " + filepath.Base(target) + ": " + err.Error())
		return m, nil
	}
	if written == "" {
		m.toMainMenu()
		m.setStatus("Nothing to write")
		return m, nil
	}

	m.afterWrite(entry)
	m.toMainMenu()
	return m, nil
}

// afterWrite records the output and hands it to the desktop. Only the write
// itself can fail the operation; the rest is best effort.
func (m *Model) afterWrite(entry history.Entry) {
	msg := "Wrote " + entry.Output
	if m.hist != nil {
		if _, err := m.hist.Record(m.ctx, entry); err != nil {
			m.logger.Warn("Failed to record history", "output", entry.Output, "error", err)
		}
		m.refreshRecent()
	}
	if m.copyToClipboard != nil {
		if err := m.copyToClipboard(entry.Output); err != nil {
			m.logger.Warn("Clipboard unavailable", "error", err)
		} else {
			msg += " (path copied)"
		}
	}
	if m.reveal != nil {
		if err := m.reveal(entry.Output); err != nil {
			m.logger.Warn("Failed to reveal output", "output", entry.Output, "error", err)
		}
	}
	m.setSuccess(msg)
}

// outputDir is where relative output names are placed: next to the first
// input document.
func (m Model) outputDir() string {
	switch {
	case m.docPath != "":
		return filepath.Dir(m.docPath)
	case len(m.inputs) > 0:
		return filepath.Dir(m.inputs[0])
	}
	return "."
}

func describeTurns(pagesSorted []int, turns map[int]int) string {
	out := ""
	for i, idx := range pagesSorted {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("p%d:%d", idx+1, turns[idx]*90)
	}
	return out
}
