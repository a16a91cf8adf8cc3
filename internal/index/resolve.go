package index

import (
	"context"
)

// NamePrompter supplies names to Resolve and decides what to do on a miss.
type NamePrompter interface {
	// NextName returns the next name to look up. ok is false when the user
	// gave up (blank input or end of input).
	NextName() (name string, ok bool)
	// ConfirmRebuild is asked after a miss; true rebuilds and retries.
	ConfirmRebuild(name string) bool
	// Notify receives human readable progress such as misses.
	Notify(msg string)
}

// Resolve keeps asking for names until one is found or the prompter gives up.
// A miss offers a rebuild; a rebuild that fails to persist ends the loop with
// that error.
func (i *Index) Resolve(ctx context.Context, p NamePrompter, progress func(Progress)) (string, bool, error) {
	for {
		raw, ok := p.NextName()
		if !ok {
			return "", false, nil
		}
		name := Normalize(raw)
		if name == "" {
			return "", false, nil
		}
		if path, ok := i.Lookup(name); ok {
			p.Notify("Found " + path)
			return path, true, nil
		}

		p.Notify("Could not find " + name)
		if !p.ConfirmRebuild(name) {
			p.Notify("Check the file name and try again")
			continue
		}
		if err := i.Rebuild(ctx, progress); err != nil {
			return "", false, err
		}
		if path, ok := i.Lookup(name); ok {
			p.Notify("Found " + path)
			return path, true, nil
		}
		p.Notify("Still could not find " + name)
	}
}
