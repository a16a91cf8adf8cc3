package document

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"unicode"
)

// DefaultRevealCommand returns the platform's file-manager launcher.
func DefaultRevealCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "open -R"
	case "windows":
		return "explorer /select,"
	default:
		return "xdg-open"
	}
}

// Reveal starts command to show path in a file manager and does not wait for
// it. Launchers without a select flag are given the containing directory.
func Reveal(path, command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		command = DefaultRevealCommand()
	}
	parts, err := splitCommandLine(command)
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return fmt.Errorf("no reveal command configured")
	}
	target := path
	if parts[0] == "xdg-open" {
		target = filepath.Dir(path)
	}
	args := append([]string{}, parts[1:]...)
	args = append(args, target)
	_, err = startDetached(exec.Command(parts[0], args...))
	return err
}

// startDetached starts cmd without waiting for it and reaps it in the
// background. The channel receives the exit result.
func startDetached(cmd *exec.Cmd) (<-chan error, error) {
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()
	return done, nil
}

func splitCommandLine(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	var parts []string
	var current strings.Builder
	var quote rune
	escaped := false

	appendCurrent := func() {
		if current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
	}

	for _, r := range input {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
		case unicode.IsSpace(r):
			appendCurrent()
		default:
			current.WriteRune(r)
		}
	}

	if escaped {
		return nil, fmt.Errorf("unterminated escape in command")
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in command")
	}
	appendCurrent()
	return parts, nil
}
