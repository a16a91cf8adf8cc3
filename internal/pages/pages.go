// Package pages turns free-form page range input such as "1, 3-5, 10" into
// validated sets of zero-based page indices.
package pages

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/facette/natsort"
)

// ErrInvalidToken is wrapped by every ParseError.
var ErrInvalidToken = errors.New("invalid page token")

// ParseError reports the first token that could not be interpreted.
type ParseError struct {
	Token string
	Total int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid page token %q (document has %d pages)", e.Token, e.Total)
}

func (e *ParseError) Unwrap() error { return ErrInvalidToken }

// Selection is the result of a successful Parse.
type Selection struct {
	// Tokens holds the deduplicated raw tokens in natural order, for display.
	Tokens []string
	// Indices holds unique zero-based page indices in ascending order.
	Indices []int
}

// IsEmpty reports whether nothing was selected.
func (s Selection) IsEmpty() bool {
	return len(s.Tokens) == 0
}

// Contains reports whether the zero-based index is selected.
func (s Selection) Contains(idx int) bool {
	i := sort.SearchInts(s.Indices, idx)
	return i < len(s.Indices) && s.Indices[i] == idx
}

// String renders the tokens the way the user typed them, deduplicated.
func (s Selection) String() string {
	return strings.Join(s.Tokens, ", ")
}

// Parse interprets raw against a document of total pages.
//
// Single numbers must satisfy 0 < n <= total. A range "a-b" (in either order)
// selects pages min(a,b) up to but not including max(a,b), so "3-5" selects
// pages 3 and 4. Range pages outside the document are dropped. Blank input
// yields the empty Selection and no error.
func Parse(raw string, total int) (Selection, error) {
	return parseTokens(splitTokens(raw), total)
}

func splitTokens(raw string) []string {
	parts := strings.Split(raw, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tokens = append(tokens, p)
	}
	return tokens
}

func parseTokens(raw []string, total int) (Selection, error) {
	tokens := uniqueTokens(raw)
	if len(tokens) == 0 {
		return Selection{}, nil
	}
	natsort.Sort(tokens)

	seen := make(map[int]struct{})
	for _, tok := range tokens {
		idxs, err := interpret(tok, total)
		if err != nil {
			return Selection{}, err
		}
		for _, idx := range idxs {
			seen[idx] = struct{}{}
		}
	}

	indices := make([]int, 0, len(seen))
	for idx := range seen {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return Selection{Tokens: tokens, Indices: indices}, nil
}

func uniqueTokens(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func interpret(tok string, total int) ([]int, error) {
	if strings.Contains(tok, "-") {
		return interpretRange(tok, total)
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n <= 0 || n > total {
		return nil, &ParseError{Token: tok, Total: total}
	}
	return []int{n - 1}, nil
}

func interpretRange(tok string, total int) ([]int, error) {
	parts := strings.Split(tok, "-")
	if len(parts) != 2 {
		return nil, &ParseError{Token: tok, Total: total}
	}
	a, errA := strconv.Atoi(strings.TrimSpace(parts[0]))
	b, errB := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errA != nil || errB != nil {
		return nil, &ParseError{Token: tok, Total: total}
	}
	// upper bound is exclusive; pages outside the document are dropped
	lo := max(min(a, b), 1)
	hi := min(max(a, b), total+1)
	if lo >= hi {
		return nil, nil
	}
	out := make([]int, 0, hi-lo)
	for page := lo; page < hi; page++ {
		out = append(out, page-1)
	}
	return out, nil
}
