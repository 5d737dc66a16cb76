// Package dto holds JSON:API request bodies for the v1 API.
package dto

import (
	"github.com/helixml/linedit/application/service"
	"github.com/helixml/linedit/domain/edit"
)

// Data is the primary data of a request document.
type Data[A any] struct {
	Type       string `json:"type"`
	Attributes A      `json:"attributes"`
}

// Request is a JSON:API request document.
type Request[A any] struct {
	Data Data[A] `json:"data"`
}

// SessionCreateAttributes creates a session. A set ID reuses that name;
// a set Path opens the file straight away.
type SessionCreateAttributes struct {
	ID   string `json:"id,omitempty"`
	Path string `json:"path,omitempty"`
}

// OpenAttributes opens a file in a session.
type OpenAttributes struct {
	Path string `json:"path"`
}

// SelectAttributes selects lines. End 0 selects only Start.
type SelectAttributes struct {
	Start int `json:"start"`
	End   int `json:"end,omitempty"`
}

// Range returns the requested line range.
func (a SelectAttributes) Range() edit.LineRange {
	return lineRange(a.Start, a.End)
}

// ProposeAttributes stages replacement text for the selection.
type ProposeAttributes struct {
	Content     string `json:"content"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Command returns the propose command.
func (a ProposeAttributes) Command() service.Propose {
	return service.Propose{Lines: edit.BlockLines(a.Content), Fingerprint: edit.Fingerprint(a.Fingerprint)}
}

// RangeSpec addresses lines by number and, for writes, carries the
// selection token and replacement text.
type RangeSpec struct {
	Start       int    `json:"start"`
	End         int    `json:"end,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Content     string `json:"content,omitempty"`
}

// Range returns the addressed line range.
func (r RangeSpec) Range() edit.LineRange {
	return lineRange(r.Start, r.End)
}

// Patch converts the request into a service patch.
func (r RangeSpec) Patch() service.Patch {
	return service.Patch{
		Range:       r.Range(),
		Fingerprint: edit.Fingerprint(r.Fingerprint),
		Lines:       edit.BlockLines(r.Content),
	}
}

// ReadAttributes reads ranges of a file. No ranges reads the whole file.
type ReadAttributes struct {
	Path   string      `json:"path"`
	Ranges []RangeSpec `json:"ranges,omitempty"`
}

// LineRanges returns the requested ranges.
func (a ReadAttributes) LineRanges() []edit.LineRange {
	out := make([]edit.LineRange, len(a.Ranges))
	for i, r := range a.Ranges {
		out[i] = r.Range()
	}
	return out
}

// RangesAttributes patches or deletes several ranges of one file.
type RangesAttributes struct {
	Path            string      `json:"path"`
	FileFingerprint string      `json:"file_fingerprint"`
	Ranges          []RangeSpec `json:"ranges"`
}

// Patches converts the ranges into service patches.
func (a RangesAttributes) Patches() []service.Patch {
	out := make([]service.Patch, len(a.Ranges))
	for i, r := range a.Ranges {
		out[i] = r.Patch()
	}
	return out
}

// InsertAttributes inserts a block before or after an anchor line.
type InsertAttributes struct {
	Path            string `json:"path"`
	FileFingerprint string `json:"file_fingerprint"`
	Line            int    `json:"line"`
	Position        string `json:"position,omitempty"`
	Content         string `json:"content"`
}

// AppendAttributes appends a block to a file.
type AppendAttributes struct {
	Path            string `json:"path"`
	FileFingerprint string `json:"file_fingerprint"`
	Content         string `json:"content"`
}

// CreateAttributes creates a new file.
type CreateAttributes struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// LocateAttributes finds a named definition in a file.
type LocateAttributes struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

func lineRange(start, end int) edit.LineRange {
	if end == 0 {
		end = start
	}
	return edit.NewLineRange(start, end)
}
