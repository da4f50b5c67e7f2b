package util

import "fmt"

// DefaultLogMaxLen is the default maximum length for truncated log output.
const DefaultLogMaxLen = 1024

// TruncateLog truncates long strings for logging. Webhook payloads and
// upstream error bodies can be arbitrarily large; this keeps log growth
// bounded without losing the useful prefix.
func TruncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("... [truncated, %d bytes total]", len(s))
}

// TruncateBytes is a convenience wrapper for TruncateLog that accepts []byte
// and uses DefaultLogMaxLen.
func TruncateBytes(b []byte) string {
	return TruncateLog(string(b), DefaultLogMaxLen)
}
