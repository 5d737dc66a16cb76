package edit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplice(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		r           LineRange
		replacement []string
		want        string
	}{
		{
			name:        "shrinks middle block",
			content:     "L1\nL2\nL3\nL4\nL5\n",
			r:           NewLineRange(2, 4),
			replacement: []string{"A", "B"},
			want:        "L1\nA\nB\nL5\n",
		},
		{
			name:        "grows block",
			content:     "a\nb\nc\n",
			r:           SingleLine(2),
			replacement: []string{"x", "y", "z"},
			want:        "a\nx\ny\nz\nc\n",
		},
		{
			name:        "deletes",
			content:     "a\nb\nc\n",
			r:           NewLineRange(1, 2),
			replacement: nil,
			want:        "c\n",
		},
		{
			name:        "final block keeps trailing newline",
			content:     "a\nb\n",
			r:           SingleLine(2),
			replacement: []string{"B"},
			want:        "a\nB\n",
		},
		{
			name:        "final block without trailing newline",
			content:     "a\nb",
			r:           SingleLine(2),
			replacement: []string{"B", "C"},
			want:        "a\nB\nC",
		},
		{
			name:        "crlf preserved",
			content:     "a\r\nb\r\nc\r\n",
			r:           SingleLine(2),
			replacement: []string{"B"},
			want:        "a\r\nB\r\nc\r\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JoinLines(Splice(SplitLines(tt.content), tt.r, tt.replacement))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplice_DoesNotMutateInput(t *testing.T) {
	lines := SplitLines("a\nb")
	_ = Append(lines, []string{"c"})
	assert.Equal(t, []string{"a\n", "b"}, lines)
}

func TestInsertBefore(t *testing.T) {
	got := JoinLines(InsertBefore(SplitLines("a\nc\n"), 2, []string{"b"}))
	assert.Equal(t, "a\nb\nc\n", got)

	got = JoinLines(InsertBefore(SplitLines("a\n"), 2, []string{"b"}))
	assert.Equal(t, "a\nb\n", got)
}

func TestAppend(t *testing.T) {
	assert.Equal(t, "a\nb", JoinLines(Append(SplitLines("a"), []string{"b"})))
	assert.Equal(t, "a\nb\n", JoinLines(Append(SplitLines("a\n"), []string{"b"})))
	assert.Equal(t, "x\n", JoinLines(Append(nil, []string{"x"})))
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a\n", "b"}, SplitLines("a\nb"))
	assert.Equal(t, []string{"a\n", "\n"}, SplitLines("a\n\n"))
	assert.Equal(t, []string{"a", "b"}, StripLines([]string{"a\r\n", "b"}))
}
