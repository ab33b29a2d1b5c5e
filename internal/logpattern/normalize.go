package logpattern

import "regexp"

// Placeholder tokens substituted for volatile substrings.
const (
	NumToken       = "{NUM}"
	UUIDToken      = "{UUID}"
	HashToken      = "{HASH}"
	TimestampToken = "{TIMESTAMP}"
)

// Substitution order matters: digit runs are masked first, so the UUID and
// timestamp patterns below are written over the already-masked text (hex
// groups and timestamp fields show up as {NUM} placeholders by the time
// those passes run). Reordering the passes changes the output.
var (
	reDigits = regexp.MustCompile(`\d+`)

	// A UUID group after digit masking: hex letters interleaved with {NUM},
	// five groups joined by dashes.
	reUUID = regexp.MustCompile(`(?:[a-fA-F]|\{NUM\})+(?:-(?:[a-fA-F]|\{NUM\})+){4}`)

	reHash32 = regexp.MustCompile(`\b[0-9a-fA-F]{32}\b`)

	// An ISO-8601 timestamp after digit masking.
	reTimestamp = regexp.MustCompile(`\{NUM\}-\{NUM\}-\{NUM\}T\{NUM\}:\{NUM\}:\{NUM\}(?:\.\{NUM\})?(?:Z|[+-]\{NUM\}:\{NUM\})`)

	reHexToken = regexp.MustCompile(`\b[0-9a-fA-F]{7,40}\b`)
)

// Normalize maps a free-text message to its structural pattern by masking
// volatile tokens. It is a pure function: two messages belong to the same
// pattern iff their normalized forms are equal.
func Normalize(message string) string {
	if message == "" {
		return ""
	}
	s := reDigits.ReplaceAllString(message, NumToken)
	s = reUUID.ReplaceAllString(s, UUIDToken)
	s = reHash32.ReplaceAllString(s, HashToken)
	s = reTimestamp.ReplaceAllString(s, TimestampToken)
	s = reHexToken.ReplaceAllString(s, HashToken)
	return s
}
