package edit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// digestLength is the number of hex characters kept from the sha256 sum.
const digestLength = 16

// Fingerprint is an opaque version token derived from exact content and,
// optionally, the line range the content was read from.
type Fingerprint string

// Compute returns the fingerprint of text with no range prefix.
func Compute(text string) Fingerprint {
	return Fingerprint(digest(text))
}

// ComputeRange returns the fingerprint of text read from r. The token is
// "L{start}-{end}-{digest}", or "L{start}-{digest}" for a single line.
func ComputeRange(text string, r LineRange) Fingerprint {
	if r.start == r.end {
		return Fingerprint(fmt.Sprintf("L%d-%s", r.start, digest(text)))
	}
	return Fingerprint(fmt.Sprintf("L%d-%d-%s", r.start, r.end, digest(text)))
}

// FingerprintLines fingerprints lines[r.Start()-1 : r.End()]. The range
// must already be validated against len(lines).
func FingerprintLines(lines []string, r LineRange) Fingerprint {
	return ComputeRange(JoinLines(lines[r.start-1:r.end]), r)
}

func digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:digestLength]
}

// Equal compares full tokens, range prefix included.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f == other
}

// ContentEqual compares only the content digests, ignoring any range
// prefix.
func (f Fingerprint) ContentEqual(other Fingerprint) bool {
	return f.Digest() == other.Digest()
}

// Digest returns the hash part of the token.
func (f Fingerprint) Digest() string {
	s := string(f)
	if !strings.HasPrefix(s, "L") {
		return s
	}
	if i := strings.LastIndex(s, "-"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Range returns the line range encoded in the token prefix, if any.
func (f Fingerprint) Range() (LineRange, bool) {
	s := string(f)
	if !strings.HasPrefix(s, "L") {
		return LineRange{}, false
	}
	parts := strings.Split(s[1:], "-")
	switch len(parts) {
	case 2:
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			return LineRange{}, false
		}
		return SingleLine(n), true
	case 3:
		start, err := strconv.Atoi(parts[0])
		if err != nil {
			return LineRange{}, false
		}
		end, err := strconv.Atoi(parts[1])
		if err != nil {
			return LineRange{}, false
		}
		return NewLineRange(start, end), true
	default:
		return LineRange{}, false
	}
}

// IsZero reports whether the fingerprint is empty.
func (f Fingerprint) IsZero() bool { return f == "" }

// String returns the token.
func (f Fingerprint) String() string { return string(f) }
