package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"pdfeditor/internal/app"
	"pdfeditor/internal/config"
	"pdfeditor/internal/document"
	"pdfeditor/internal/history"
	"pdfeditor/internal/index"
	"pdfeditor/internal/theme"
)

type rootFlags struct {
	configPath string
	indexFile  string
	roots      []string
	noReveal   bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "pdfeditor",
		Short: "Find PDFs by name and merge, trim or rotate them",
		Long: `pdfeditor keeps an index of every PDF on your volumes so files can be
picked by name alone. From the menu you can combine several PDFs, delete
pages or rotate pages. Results are written as new files next to the first
input; existing files are never overwritten.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd, flags)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/pdfeditor/config.json)")
	pf.StringVar(&flags.indexFile, "index-file", "", "index snapshot to read and write (overrides config index_file)")
	pf.StringSliceVar(&flags.roots, "root", nil, "directory to index instead of the system volumes (repeatable)")
	cmd.Flags().BoolVar(&flags.noReveal, "no-reveal", false, "do not open a file manager after writing")

	cmd.AddCommand(newRebuildCmd(flags))
	cmd.AddCommand(newLocateCmd(flags))
	cmd.AddCommand(newGuideCmd())
	return cmd
}

// session is what every command needs once the config is loaded.
type session struct {
	cfg     *config.Config
	logFile *os.File
}

func openSession(flags *rootFlags) (*session, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadOrInitAt(flags.configPath)
	} else {
		cfg, err = config.LoadOrInit()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.indexFile != "" {
		cfg.IndexFile = flags.indexFile
	}
	if len(flags.roots) > 0 {
		cfg.Roots = flags.roots
	}
	if flags.noReveal {
		off := false
		cfg.RevealOutput = &off
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo})))
	slog.Info("Starting pdfeditor", "version", version, "index_file", cfg.IndexFile, "roots", cfg.Roots)
	return &session{cfg: cfg, logFile: f}, nil
}

func (s *session) indexOptions() index.Options {
	opts := s.cfg.IndexOptions()
	opts.Logger = slog.Default()
	return opts
}

func (s *session) Close() {
	if s.logFile != nil {
		_ = s.logFile.Close()
	}
}

// loadIndex reads the snapshot, rebuilding with a progress line on stderr when
// it is missing. A snapshot that could not be saved is reported and the
// in-memory index is used anyway.
func (s *session) loadIndex(cmd *cobra.Command) (*index.Index, error) {
	w := cmd.ErrOrStderr()
	idx, err := index.Load(cmd.Context(), s.indexOptions(), progressPrinter(w))
	if err != nil {
		var persist *index.PersistError
		if idx == nil || !errors.As(err, &persist) {
			return nil, err
		}
		fmt.Fprintf(w, "warning: %v\n", err)
	}
	return idx, nil
}

func runMenu(cmd *cobra.Command, flags *rootFlags) error {
	s, err := openSession(flags)
	if err != nil {
		return err
	}
	defer s.Close()

	idx, err := s.loadIndex(cmd)
	if err != nil {
		return err
	}

	store, err := history.Open(s.cfg.HistoryPath())
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	th := theme.Default()
	if path, err := theme.Path(); err == nil {
		if loaded, err := theme.LoadFrom(path); err != nil {
			slog.Warn("Ignoring theme file", "path", path, "error", err)
		} else {
			th = loaded
		}
	}

	ops := document.New(document.NewPDFCPU(), slog.Default())
	m := app.NewModel(cmd.Context(), s.cfg, idx, ops, store).WithTheme(th)

	p := tea.NewProgram(m, tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	slog.Info("Exiting pdfeditor", "log", filepath.Base(s.cfg.LogPath()))
	return nil
}
