// Package docs ships the pdfeditor manual inside the binary.
package docs

import _ "embed"

//go:embed user-guide.md
var userGuide string

// UserGuide returns the embedded Markdown manual printed by `pdfeditor guide`.
func UserGuide() string {
	return userGuide
}
