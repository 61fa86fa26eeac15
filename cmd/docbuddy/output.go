package main

import (
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"
)

// SnippetPreviewLen caps chunk text in human-readable listings.
const SnippetPreviewLen = 100

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		json.NewEncoder(os.Stderr).Encode(map[string]string{"error": msg})
	}
	os.Exit(code)
}

// truncateString shortens s to at most maxLen bytes with an ellipsis,
// cutting at a rune boundary.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	if maxLen >= 4 {
		cut = maxLen - 3
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if maxLen < 4 {
		return s[:cut]
	}
	return s[:cut] + "..."
}
