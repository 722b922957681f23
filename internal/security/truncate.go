package security

import "unicode/utf8"

// maxDetailLen caps detail strings on the event stream. Command output can
// be arbitrarily large; the full text lives in the audit log table.
const maxDetailLen = 4096

// TruncateDetail shortens s to maxDetailLen, appending a truncation
// indicator. The cut walks back to a rune boundary so multi-byte characters
// are never split.
func TruncateDetail(s string) string {
	if len(s) <= maxDetailLen {
		return s
	}
	i := maxDetailLen
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[:i] + "...(truncated)"
}
