package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/progress"
	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"pdfeditor/internal/config"
	"pdfeditor/internal/document"
	"pdfeditor/internal/history"
	"pdfeditor/internal/index"
	"pdfeditor/internal/pages"
	"pdfeditor/internal/theme"
)

// uiState is the top level state of the menu machine. stateMainMenu is both
// the initial state and where every operation returns; stateTerminated is
// absorbing.
type uiState int

const (
	stateMainMenu uiState = iota
	stateCombining
	stateDeleting
	stateRotating
	stateRebuilding
	stateTerminated
)

func (s uiState) String() string {
	switch s {
	case stateMainMenu:
		return "main menu"
	case stateCombining:
		return "combining"
	case stateDeleting:
		return "deleting"
	case stateRotating:
		return "rotating"
	case stateRebuilding:
		return "rebuilding"
	case stateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// step is the prompt an operation state is waiting on.
type step int

const (
	stepNone step = iota
	stepName
	stepConfirmRebuild
	stepPages
	stepConfirmDelete
	stepPageNumber
	stepTurns
	stepOutputName
)

type menuChoice int

const (
	choiceCombine menuChoice = iota
	choiceDelete
	choiceRotate
	choiceQuit
)

var menuLabels = []string{
	"Combine PDFs",
	"Delete pages of a PDF",
	"Rotate pages of a PDF",
	"Quit",
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

type Model struct {
	cfg    *config.Config
	idx    *index.Index
	ops    *document.Operations
	hist   *history.Store
	styles theme.Styles
	logger *slog.Logger
	ctx    context.Context

	state      uiState
	step       step
	menuCursor int
	input      textinput.Model

	status     string
	statusKind statusKind
	statusAt   time.Time

	// combining
	inputs []string
	// deleting and rotating
	docPath     string
	total       int
	acc         *pages.Accumulator
	rot         *pages.Rotations
	pendingPage int
	// lookup miss waiting on a rebuild answer
	pendingName string

	// rebuilding
	resumeState   uiState
	rebuildCh     <-chan tea.Msg
	cancelRebuild context.CancelFunc
	progress      index.Progress
	bar           progress.Model
	indexed       int

	recent []history.Entry

	copyToClipboard func(string) error
	reveal          func(string) error
}

// NewModel builds the menu over an already loaded index. store may be nil.
func NewModel(ctx context.Context, cfg *config.Config, idx *index.Index, ops *document.Operations, store *history.Store) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	ti := textinput.New()
	ti.Placeholder = ""
	ti.CharLimit = 400
	ti.Cursor.Style = ti.Cursor.Style.Bold(true)
	ti.Focus()

	m := Model{
		cfg:             cfg,
		idx:             idx,
		ops:             ops,
		hist:            store,
		styles:          theme.Default().Styles(),
		logger:          slog.Default(),
		ctx:             ctx,
		state:           stateMainMenu,
		input:           ti,
		bar:             progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		indexed:         idx.Len(),
		copyToClipboard: clipboard.WriteAll,
	}
	m.reveal = func(path string) error {
		if cfg == nil || !cfg.ShouldReveal() {
			return nil
		}
		return document.Reveal(path, cfg.RevealCommand)
	}
	m.refreshRecent()
	return m
}

// WithTheme swaps the styles used by View.
func (m Model) WithTheme(t theme.Theme) Model {
	m.styles = t.Styles()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) setStatus(msg string) {
	m.status = msg
	m.statusKind = statusInfo
	m.statusAt = time.Now()
}

func (m *Model) setSuccess(msg string) {
	m.status = msg
	m.statusKind = statusSuccess
	m.statusAt = time.Now()
}

func (m *Model) setError(msg string) {
	m.status = msg
	m.statusKind = statusError
	m.statusAt = time.Now()
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusKind = statusInfo
	m.statusAt = time.Time{}
}

// prompt moves to step s with an empty input.
func (m *Model) prompt(s step) {
	m.step = s
	m.input.SetValue("")
	m.input.Focus()
}

// toMainMenu unwinds whatever operation was in progress.
func (m *Model) toMainMenu() {
	m.state = stateMainMenu
	m.step = stepNone
	m.inputs = nil
	m.docPath = ""
	m.total = 0
	m.acc = nil
	m.rot = nil
	m.pendingPage = 0
	m.pendingName = ""
	m.input.SetValue("")
}

func (m *Model) refreshRecent() {
	if m.hist == nil || m.cfg == nil {
		return
	}
	list, err := m.hist.Recent(m.ctx, m.cfg.HistoryLimit)
	if err != nil {
		m.logger.Warn("Failed to load history", "error", err)
		return
	}
	m.recent = list
}
