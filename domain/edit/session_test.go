package edit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Transitions(t *testing.T) {
	s := NewSession("s1")
	assert.Equal(t, PhaseIdle, s.Phase())
	assert.Empty(t, s.Path())

	s = s.WithPath("/tmp/a.txt")
	sel := Selection{Range: NewLineRange(1, 2), Fingerprint: "L1-2-abc"}
	s = s.WithSelection(sel)
	assert.Equal(t, PhaseSelected, s.Phase())

	staged := s.WithPending(Pending{Target: sel.Range, Lines: []string{"x"}})
	assert.Equal(t, PhaseStaged, staged.Phase())

	// the earlier value is unaffected
	assert.Equal(t, PhaseSelected, s.Phase())

	cancelled := staged.WithoutPending()
	got, ok := cancelled.Selection()
	require.True(t, ok)
	assert.Equal(t, sel, got)

	reset := staged.WithoutSelection()
	assert.Equal(t, PhaseIdle, reset.Phase())
	assert.Equal(t, "/tmp/a.txt", reset.Path())

	closed := staged.Closed()
	assert.Empty(t, closed.Path())
	assert.Equal(t, "s1", closed.ID())
}

func TestSession_WithPathDropsState(t *testing.T) {
	s := NewSession("s").WithPath("/a").WithSelection(Selection{Range: SingleLine(1)})
	s = s.WithPath("/b")
	_, ok := s.Selection()
	assert.False(t, ok)
}

func TestSession_WithPendingCopiesLines(t *testing.T) {
	lines := []string{"a"}
	s := NewSession("s").WithPending(Pending{Lines: lines})
	lines[0] = "changed"
	p, ok := s.Pending()
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, p.Lines)
}
