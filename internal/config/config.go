package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pdfeditor/internal/index"
)

type Config struct {
	// IndexFile is the JSON snapshot of the name to path index.
	IndexFile string `json:"index_file"`
	// DataDir holds the log file and the history database.
	DataDir string `json:"data_dir"`
	// Roots replaces volume discovery when set.
	Roots []string `json:"roots,omitempty"`
	// Exclude lists directories a rebuild never descends into.
	Exclude       []string `json:"exclude,omitempty"`
	RevealCommand string   `json:"reveal_command,omitempty"`
	RevealOutput  *bool    `json:"reveal_output,omitempty"`
	HistoryLimit  int      `json:"history_limit,omitempty"`
}

const defaultHistoryLimit = 5

var defaultExclude = []string{"/proc", "/sys", "/dev", "/run"}

func defaultConfigPath() (string, error) {
	cfgHome := os.Getenv("XDG_CONFIG_HOME")
	if cfgHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		cfgHome = filepath.Join(home, ".config")
	}
	return filepath.Join(cfgHome, "pdfeditor", "config.json"), nil
}

// Path returns the full path to the config file, using the same rules as LoadOrInit.
func Path() (string, error) {
	return defaultConfigPath()
}

// defaultIndexFile keeps the snapshot next to the executable.
func defaultIndexFile() (string, error) {
	if v := strings.TrimSpace(os.Getenv("PDFEDITOR_INDEX_FILE")); v != "" {
		return v, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), index.SnapshotName), nil
}

func defaultDataDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("PDFEDITOR_DATA_DIR")); v != "" {
		return v, nil
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "pdfeditor"), nil
}

func LoadOrInit() (*Config, error) {
	path, err := defaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadOrInitAt(path)
}

// LoadOrInitAt is LoadOrInit with an explicit config file location.
func LoadOrInitAt(path string) (*Config, error) {
	// existing config
	if data, err := os.ReadFile(path); err == nil {
		var cfg Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := cfg.ensureDefaults(); err != nil {
			return nil, err
		}
		cfg.applyEnv()
		return &cfg, nil
	}

	// first run: write the defaults so they can be edited later
	cfg := &Config{}
	if err := cfg.ensureDefaults(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) ensureDefaults() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if strings.TrimSpace(c.IndexFile) == "" {
		f, err := defaultIndexFile()
		if err != nil {
			return err
		}
		c.IndexFile = f
	}
	if strings.TrimSpace(c.DataDir) == "" {
		d, err := defaultDataDir()
		if err != nil {
			return err
		}
		c.DataDir = d
	}
	if c.Exclude == nil {
		c.Exclude = append([]string{}, defaultExclude...)
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = defaultHistoryLimit
	}
	if c.RevealOutput == nil {
		on := true
		c.RevealOutput = &on
	}
	return nil
}

// applyEnv lets the environment (and a .env file) override saved values
// without rewriting the config file.
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("PDFEDITOR_INDEX_FILE")); v != "" {
		c.IndexFile = v
	}
	if v := strings.TrimSpace(os.Getenv("PDFEDITOR_DATA_DIR")); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("PDFEDITOR_ROOTS")); v != "" {
		c.Roots = filepath.SplitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("PDFEDITOR_REVEAL")); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			c.RevealOutput = &on
		}
	}
}

// ShouldReveal reports whether written files are shown in a file manager.
func (c *Config) ShouldReveal() bool {
	return c.RevealOutput == nil || *c.RevealOutput
}

// LogPath is where the application log is written.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "pdfeditor.log")
}

// HistoryPath is the sqlite database of written outputs.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// Volumes returns the configured roots, or the host's volumes when none are set.
func (c *Config) Volumes() index.Volumes {
	if len(c.Roots) > 0 {
		return index.Roots(c.Roots)
	}
	return index.SystemVolumes{}
}

// IndexOptions bundles what the index needs from the config.
func (c *Config) IndexOptions() index.Options {
	return index.Options{
		SnapshotPath: c.IndexFile,
		Volumes:      c.Volumes(),
		Exclude:      c.Exclude,
	}
}
