package tui

import (
	"regexp"
	"strings"
)

// reANSI matches ANSI/VT escape sequences that could be embedded in
// untrusted data such as record names or TXT content.
//
// Pattern covers:
//   - CSI sequences:  ESC [ <params> <final>  (colour codes, cursor movement)
//   - Other Fe seqs:  ESC <byte in 0x40-0x5F range>  (ESC M, ESC 7)
var reANSI = regexp.MustCompile(`\x1b(?:\[[0-?]*[ -/]*[@-~]|[@-Z\\-_])`)

// controlReplacer flattens line breaks and tabs so a value stays on one row.
var controlReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// sanitize strips escape sequences and control characters from s before it
// reaches the renderer. Apply it to every string that came from a provider
// or the account store.
func sanitize(s string) string {
	s = reANSI.ReplaceAllString(s, "")
	s = controlReplacer.Replace(s)
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
