package app

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"pdfeditor/internal/config"
	"pdfeditor/internal/document"
	"pdfeditor/internal/history"
	"pdfeditor/internal/index"
)

// textEngine treats a file as one page per line. Rotating a page appends
// "@<degrees>" to its line.
type textEngine struct{}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

func writeLines(path string, lines []string) error {
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}

func (textEngine) PageCount(path string) (int, error) {
	lines, err := readLines(path)
	return len(lines), err
}

func (textEngine) Merge(inputs []string, out string) error {
	var all []string
	for _, in := range inputs {
		lines, err := readLines(in)
		if err != nil {
			return err
		}
		all = append(all, lines...)
	}
	return writeLines(out, all)
}

func (textEngine) RemovePages(in string, indices []int, out string) error {
	lines, err := readLines(in)
	if err != nil {
		return err
	}
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		drop[i] = true
	}
	var kept []string
	for i, l := range lines {
		if !drop[i] {
			kept = append(kept, l)
		}
	}
	return writeLines(out, kept)
}

func (textEngine) Rotate(in string, turns map[int]int, out string) error {
	lines, err := readLines(in)
	if err != nil {
		return err
	}
	for i, t := range turns {
		if t != 0 {
			lines[i] += "@" + strconv.Itoa(t*90)
		}
	}
	return writeLines(out, lines)
}

type harness struct {
	dir      string
	idx      *index.Index
	store    *history.Store
	copied   []string
	revealed []string
}

func writeDoc(t *testing.T, dir, name string, pages int) string {
	t.Helper()
	lines := make([]string, pages)
	for i := range lines {
		lines[i] = name + "-p" + strconv.Itoa(i+1)
	}
	path := filepath.Join(dir, name+".pdf")
	if err := writeLines(path, lines); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func readDoc(t *testing.T, path string) []string {
	t.Helper()
	lines, err := readLines(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return lines
}

func newHarness(t *testing.T) (*harness, Model) {
	t.Helper()
	dir := t.TempDir()
	writeDoc(t, dir, "a", 2)
	writeDoc(t, dir, "b", 1)
	writeDoc(t, dir, "c", 3)

	idx := index.New(index.Options{
		SnapshotPath: filepath.Join(t.TempDir(), index.SnapshotName),
		Volumes:      index.Roots{dir},
	})
	if err := idx.Rebuild(context.Background(), nil); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	h := &harness{dir: dir, idx: idx, store: store}
	cfg := &config.Config{HistoryLimit: 5}
	m := NewModel(context.Background(), cfg, idx, document.New(textEngine{}, nil), store)
	m.copyToClipboard = func(p string) error {
		h.copied = append(h.copied, p)
		return nil
	}
	m.reveal = func(p string) error {
		h.revealed = append(h.revealed, p)
		return nil
	}
	return h, m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out, cmd
}

func press(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()
	switch key {
	case "enter":
		return update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	case "ctrl+c":
		return update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	case "down":
		return update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
}

// typeAnswer types text into the prompt and submits it.
func typeAnswer(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	if text != "" {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	}
	return press(t, m, "enter")
}

func answers(t *testing.T, m Model, texts ...string) Model {
	t.Helper()
	for _, text := range texts {
		m, _ = typeAnswer(t, m, text)
	}
	return m
}

// drain runs cmd and feeds its messages back until the chain ends.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for i := 0; cmd != nil && i < 1000; i++ {
		msg := cmd()
		if msg == nil {
			break
		}
		m, cmd = update(t, m, msg)
	}
	return m
}

func TestCombineWritesOutputAndRecordsIt(t *testing.T) {
	h, m := newHarness(t)

	m, _ = press(t, m, "1")
	if m.state != stateCombining || m.step != stepName {
		t.Fatalf("state = %v step = %v", m.state, m.step)
	}
	m = answers(t, m, "a", "b.pdf", "", "ab")

	if m.state != stateMainMenu {
		t.Fatalf("expected main menu, got %v (status %q)", m.state, m.status)
	}
	out := filepath.Join(h.dir, "ab.pdf")
	want := []string{"a-p1", "a-p2", "b-p1"}
	if got := readDoc(t, out); !reflect.DeepEqual(got, want) {
		t.Fatalf("merged pages = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(h.copied, []string{out}) || !reflect.DeepEqual(h.revealed, []string{out}) {
		t.Fatalf("copied %v revealed %v", h.copied, h.revealed)
	}
	if len(m.recent) != 1 || m.recent[0].Operation != history.OpMerge || m.recent[0].Output != out {
		t.Fatalf("recent = %+v", m.recent)
	}
	if m.statusKind != statusSuccess {
		t.Fatalf("status = %q", m.status)
	}
}

func TestCombineNeedsTwoDocuments(t *testing.T) {
	h, m := newHarness(t)
	m, _ = press(t, m, "1")
	m = answers(t, m, "a", "")

	if m.state != stateMainMenu {
		t.Fatalf("expected main menu, got %v", m.state)
	}
	if len(h.copied) != 0 {
		t.Fatalf("nothing should be written, copied %v", h.copied)
	}
	ents, _ := os.ReadDir(h.dir)
	if len(ents) != 3 {
		t.Fatalf("expected only the three inputs, got %d entries", len(ents))
	}
}

func TestDeletePagesFlow(t *testing.T) {
	h, m := newHarness(t)
	m, _ = press(t, m, "2")
	m = answers(t, m, "c", "1")
	if m.step != stepPages || !strings.Contains(m.status, "1") {
		t.Fatalf("step = %v status = %q", m.step, m.status)
	}
	m = answers(t, m, "3", "", "y", "c-short")

	got := readDoc(t, filepath.Join(h.dir, "c-short.pdf"))
	if !reflect.DeepEqual(got, []string{"c-p2"}) {
		t.Fatalf("remaining pages = %v", got)
	}
	if m.recent[0].Detail != "deleted 1, 3" {
		t.Fatalf("detail = %q", m.recent[0].Detail)
	}
	if src := readDoc(t, filepath.Join(h.dir, "c.pdf")); len(src) != 3 {
		t.Fatalf("input modified: %v", src)
	}
}

func TestDeleteRejectsBadTokensAndKeepsEarlierOnes(t *testing.T) {
	h, m := newHarness(t)
	m, _ = press(t, m, "2")
	m = answers(t, m, "c", "2", "0")

	if m.step != stepPages || m.statusKind != statusError {
		t.Fatalf("step = %v status = %q", m.step, m.status)
	}
	if got := m.acc.Selection().Indices; !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("selection = %v", got)
	}

	m = answers(t, m, "", "n")
	if m.state != stateMainMenu || len(h.copied) != 0 {
		t.Fatalf("declined delete should write nothing, state %v", m.state)
	}
}

func TestDeleteEveryPageRejectedBeforeConfirm(t *testing.T) {
	h, m := newHarness(t)
	m, _ = press(t, m, "2")
	m = answers(t, m, "c", "1-4", "")

	if m.state != stateDeleting || m.step != stepPages || m.statusKind != statusError {
		t.Fatalf("state = %v step = %v status = %q", m.state, m.step, m.status)
	}
	if !m.acc.Selection().IsEmpty() {
		t.Fatalf("selection should start over, got %v", m.acc.Selection().Indices)
	}

	m = answers(t, m, "2", "", "y", "c-two")
	got := readDoc(t, filepath.Join(h.dir, "c-two.pdf"))
	if !reflect.DeepEqual(got, []string{"c-p1", "c-p3"}) {
		t.Fatalf("remaining pages = %v", got)
	}
}

func TestDeleteBlankFirstAnswerCancels(t *testing.T) {
	_, m := newHarness(t)
	m, _ = press(t, m, "2")
	m = answers(t, m, "c", "")
	if m.state != stateMainMenu {
		t.Fatalf("expected main menu, got %v", m.state)
	}
}

func TestRotatePagesFlow(t *testing.T) {
	h, m := newHarness(t)
	m, _ = press(t, m, "3")
	m = answers(t, m, "c", "2", "1", "2", "2", "9")
	if m.step != stepPageNumber || m.statusKind != statusError {
		t.Fatalf("out of range page should re-prompt, step %v status %q", m.step, m.status)
	}
	m = answers(t, m, "", "c-rot")

	got := readDoc(t, filepath.Join(h.dir, "c-rot.pdf"))
	want := []string{"c-p1", "c-p2@270", "c-p3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("rotated pages = %v, want %v", got, want)
	}
}

func TestRotateInvalidTurnsReprompts(t *testing.T) {
	_, m := newHarness(t)
	m, _ = press(t, m, "3")
	m = answers(t, m, "c", "1", "4")
	if m.step != stepTurns || m.statusKind != statusError {
		t.Fatalf("step = %v status = %q", m.step, m.status)
	}
	m = answers(t, m, "")
	if m.step != stepPageNumber {
		t.Fatalf("blank turns should return to page prompt, got %v", m.step)
	}
}

func TestRotateWithoutChangesWritesNothing(t *testing.T) {
	h, m := newHarness(t)
	m, _ = press(t, m, "3")
	m = answers(t, m, "c", "1", "0", "")
	if m.state != stateMainMenu || len(h.copied) != 0 {
		t.Fatalf("state %v copied %v", m.state, h.copied)
	}
}

func TestOutputCollisionReprompts(t *testing.T) {
	h, m := newHarness(t)
	taken := filepath.Join(h.dir, "taken.pdf")
	if err := os.WriteFile(taken, []byte("keep\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, _ = press(t, m, "1")
	m = answers(t, m, "a", "b", "", "taken")

	if m.step != stepOutputName || m.statusKind != statusError {
		t.Fatalf("step = %v status = %q", m.step, m.status)
	}
	if got := readDoc(t, taken); !reflect.DeepEqual(got, []string{"keep"}) {
		t.Fatalf("existing file changed: %v", got)
	}

	m = answers(t, m, "fresh")
	if _, err := os.Stat(filepath.Join(h.dir, "fresh.pdf")); err != nil {
		t.Fatalf("expected fresh.pdf: %v", err)
	}
	if m.state != stateMainMenu {
		t.Fatalf("expected main menu, got %v", m.state)
	}
}

func TestMissOffersRebuildAndContinues(t *testing.T) {
	h, m := newHarness(t)
	writeDoc(t, h.dir, "late", 4)

	m, _ = press(t, m, "2")
	m = answers(t, m, "late")
	if m.step != stepConfirmRebuild {
		t.Fatalf("expected rebuild prompt, got %v", m.step)
	}
	m, cmd := typeAnswer(t, m, "y")
	if m.state != stateRebuilding || cmd == nil {
		t.Fatalf("expected rebuilding with a command, got %v", m.state)
	}
	m = drain(t, m, cmd)

	if m.state != stateDeleting || m.step != stepPages {
		t.Fatalf("state = %v step = %v status = %q", m.state, m.step, m.status)
	}
	if m.total != 4 || m.indexed != 4 {
		t.Fatalf("total = %d indexed = %d", m.total, m.indexed)
	}
}

func TestMissAfterRebuildAsksAgain(t *testing.T) {
	_, m := newHarness(t)
	m, _ = press(t, m, "1")
	m = answers(t, m, "ghost")
	m, cmd := typeAnswer(t, m, "yes")
	m = drain(t, m, cmd)

	if m.state != stateCombining || m.step != stepName || m.statusKind != statusError {
		t.Fatalf("state = %v step = %v status = %q", m.state, m.step, m.status)
	}
}

func TestDeclinedRebuildAsksForNameAgain(t *testing.T) {
	_, m := newHarness(t)
	m, _ = press(t, m, "3")
	m = answers(t, m, "ghost", "n")
	if m.state != stateRotating || m.step != stepName {
		t.Fatalf("state = %v step = %v", m.state, m.step)
	}
	m = answers(t, m, "maybe")
	if m.step != stepConfirmRebuild {
		t.Fatalf("expected another rebuild prompt, got %v", m.step)
	}
	m = answers(t, m, "perhaps")
	if m.step != stepConfirmRebuild || m.statusKind != statusError {
		t.Fatalf("unclear answer should re-prompt, step %v", m.step)
	}
}

func TestMenuNavigationAndQuit(t *testing.T) {
	_, m := newHarness(t)
	m, _ = press(t, m, "down")
	m, _ = press(t, m, "down")
	m, _ = press(t, m, "enter")
	if m.state != stateRotating {
		t.Fatalf("expected rotating, got %v", m.state)
	}
	m, _ = press(t, m, "esc")
	if m.state != stateMainMenu {
		t.Fatalf("esc should return to menu, got %v", m.state)
	}
	m, cmd := press(t, m, "4")
	if m.state != stateTerminated || cmd == nil {
		t.Fatalf("expected terminated with quit command, got %v", m.state)
	}
	if m.View() != "" {
		t.Fatalf("terminated view should be empty")
	}
}

func TestCtrlCTerminatesFromAnyState(t *testing.T) {
	_, m := newHarness(t)
	m, _ = press(t, m, "2")
	m = answers(t, m, "c")
	m, cmd := press(t, m, "ctrl+c")
	if m.state != stateTerminated || cmd == nil {
		t.Fatalf("expected terminated, got %v", m.state)
	}
}

func TestViewShowsPromptAndContext(t *testing.T) {
	_, m := newHarness(t)
	if !strings.Contains(m.View(), "Combine PDFs") {
		t.Fatalf("menu view missing entries")
	}
	m, _ = press(t, m, "3")
	m = answers(t, m, "c")
	view := m.View()
	if !strings.Contains(view, "(3 pages)") || !strings.Contains(view, "Page to rotate, 1-3") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestYesNo(t *testing.T) {
	cases := map[string]answer{
		"y": answerYes, "YES": answerYes, " n ": answerNo, "": answerNo, "sure": answerUnknown,
	}
	for in, want := range cases {
		if got := yesNo(in); got != want {
			t.Fatalf("yesNo(%q) = %v, want %v", in, got, want)
		}
	}
}
