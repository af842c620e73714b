package util

// Truncate clips a string to max characters. NetBox caps most free-text
// fields at 200 characters and rejects longer values.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
