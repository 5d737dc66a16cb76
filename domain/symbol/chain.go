package symbol

import (
	"context"
	"errors"
	"fmt"

	"github.com/helixml/linedit/domain/edit"
)

// Chain tries locators in order; the first success wins.
type Chain []Locator

// Attempt records a failed strategy.
type Attempt struct {
	Strategy string
	Err      error
}

// Locate runs the chain. When every strategy fails the error matches
// edit.ErrNotFound and the attempts explain why.
func (c Chain) Locate(ctx context.Context, source []byte, name string) (Range, []Attempt, error) {
	var attempts []Attempt
	for _, l := range c {
		if err := ctx.Err(); err != nil {
			return Range{}, attempts, err
		}
		r, err := l.Locate(ctx, source, name)
		if err == nil {
			return r.WithSource(l.Name()), attempts, nil
		}
		attempts = append(attempts, Attempt{Strategy: l.Name(), Err: err})
	}
	return Range{}, attempts, notFoundAfter(name, attempts)
}

func notFoundAfter(name string, attempts []Attempt) error {
	for _, a := range attempts {
		if !errors.Is(a.Err, edit.ErrNotFound) {
			return edit.WrapError(edit.KindNotFound, fmt.Sprintf("symbol %q not found", name),
				fmt.Errorf("%s: %w", a.Strategy, a.Err))
		}
	}
	return NotFound(name)
}
