package edit

import "sort"

// ValidateRange checks r against a file of lineCount lines. The end is
// clamped to lineCount; start < 1 and start > end (after clamping) are
// rejected.
func ValidateRange(r LineRange, lineCount int) (LineRange, error) {
	if r.start < 1 {
		return LineRange{}, Errorf(KindOutOfRange, "start line %d must be at least 1", r.start)
	}
	end := r.end
	if end > lineCount {
		end = lineCount
	}
	if r.start > end {
		return LineRange{}, Errorf(KindOutOfRange, "start line %d is after end line %d (file has %d lines)", r.start, end, lineCount)
	}
	return NewLineRange(r.start, end), nil
}

// ValidateSize rejects ranges longer than limit. A limit of zero or less
// disables the check.
func ValidateSize(r LineRange, limit int) error {
	if limit > 0 && r.Len() > limit {
		return Errorf(KindTooLarge, "range %s spans %d lines, limit is %d", r, r.Len(), limit)
	}
	return nil
}

// ValidateRanges checks a set of ranges for a bulk operation. The result
// is sorted by start; the input is left untouched. Ranges must not overlap
// or touch the same line, and no end may exceed lineCount.
func ValidateRanges(ranges []LineRange, lineCount int) ([]LineRange, error) {
	if len(ranges) == 0 {
		return nil, NewError(KindInvalid, "no ranges given")
	}
	sorted := make([]LineRange, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].start == sorted[j].start {
			return sorted[i].end < sorted[j].end
		}
		return sorted[i].start < sorted[j].start
	})

	for i, r := range sorted {
		if r.start < 1 {
			return nil, Errorf(KindOutOfRange, "start line %d must be at least 1", r.start)
		}
		if r.start > r.end {
			return nil, Errorf(KindOutOfRange, "start line %d is after end line %d", r.start, r.end)
		}
		if r.end > lineCount {
			return nil, Errorf(KindOutOfRange, "end line %d exceeds file length %d", r.end, lineCount)
		}
		if i > 0 && r.start <= sorted[i-1].end {
			return nil, Errorf(KindOutOfRange, "range %s overlaps range %s", r, sorted[i-1])
		}
	}
	return sorted, nil
}
