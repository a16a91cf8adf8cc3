package pages

import (
	"fmt"
	"sort"
)

// Step tells the caller what to do after feeding input to an Accumulator.
type Step int

const (
	// StepMore means tokens were accepted and more input may follow.
	StepMore Step = iota
	// StepDone means blank input finalized a non-empty selection.
	StepDone
	// StepAbort means blank input arrived before anything was selected.
	StepAbort
)

// Accumulator collects page tokens over several rounds of input against a
// single document. Tokens from a round that fails to parse are discarded and
// earlier rounds are kept.
type Accumulator struct {
	total  int
	tokens []string
	sel    Selection
}

// NewAccumulator starts an empty accumulation for a document of total pages.
func NewAccumulator(total int) *Accumulator {
	return &Accumulator{total: total}
}

// Add feeds one line of input.
func (a *Accumulator) Add(raw string) (Step, error) {
	fresh := splitTokens(raw)
	if len(fresh) == 0 {
		if a.sel.IsEmpty() {
			return StepAbort, nil
		}
		return StepDone, nil
	}

	combined := append(append([]string{}, a.tokens...), fresh...)
	sel, err := parseTokens(combined, a.total)
	if err != nil {
		return StepMore, err
	}
	a.tokens = combined
	a.sel = sel
	return StepMore, nil
}

// Selection returns everything accepted so far.
func (a *Accumulator) Selection() Selection {
	return a.sel
}

// Total returns the page count the accumulator validates against.
func (a *Accumulator) Total() int {
	return a.total
}

// MaxTurns is the largest number of clockwise quarter turns accepted per entry.
const MaxTurns = 3

// Rotations maps zero-based page indices to clockwise quarter turns.
type Rotations struct {
	total int
	turns map[int]int
}

// NewRotations starts an empty rotation plan for a document of total pages.
func NewRotations(total int) *Rotations {
	return &Rotations{total: total, turns: make(map[int]int)}
}

// Apply adds turns clockwise quarter turns to the one-based page. Repeated
// entries for the same page add up modulo four.
func (r *Rotations) Apply(page, turns int) error {
	if page < 1 || page > r.total {
		return fmt.Errorf("page %d out of range 1-%d: %w", page, r.total, ErrInvalidToken)
	}
	if turns < 0 || turns > MaxTurns {
		return fmt.Errorf("turns must be between 0 and %d, got %d", MaxTurns, turns)
	}
	r.turns[page-1] = (r.turns[page-1] + turns) % 4
	return nil
}

// Turns returns a copy of the plan.
func (r *Rotations) Turns() map[int]int {
	out := make(map[int]int, len(r.turns))
	for k, v := range r.turns {
		out[k] = v
	}
	return out
}

// Changed reports whether any page ends up with a non-zero rotation.
func (r *Rotations) Changed() bool {
	for _, t := range r.turns {
		if t != 0 {
			return true
		}
	}
	return false
}

// Pages lists the zero-based indices with an entry, ascending.
func (r *Rotations) Pages() []int {
	out := make([]int, 0, len(r.turns))
	for k := range r.turns {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Total returns the page count the plan validates against.
func (r *Rotations) Total() int {
	return r.total
}
