package utils

// TruncateString shortens long strings for logging. If s has more than maxLen
// runes, it is cut at maxLen runes and "..." is appended. A negative maxLen
// is treated as zero.
func TruncateString(s string, maxLen int) string {
	if maxLen < 0 {
		maxLen = 0
	}
	if len(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
