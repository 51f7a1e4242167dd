// Package territory derives coverage territory keys from raw
// postcodes.  A territory key is the outward-code-like prefix of a
// postcode: its leading letters, the following digits, and an
// optional single trailing letter ("SW1A 1AA" -> "SW1A", "M1 1AE"
// -> "M1").  Keys index the territories table, which records the
// primary and secondary medic for each region.
package territory

import "strings"

// ResolveKey returns the canonical territory key for a postcode.  The
// input is upper-cased and trimmed before scanning; the space between
// outward and inward code terminates the scan.  When the postcode
// does not start with the letters+digits shape the function degrades
// to the first four characters rather than failing; callers always
// get some key to look up, possibly one matching no territory row.
func ResolveKey(postcode string) string {
	s := strings.ToUpper(strings.TrimSpace(postcode))
	if s == "" {
		return ""
	}

	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	letters := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	digits := i - letters

	if letters == 0 || digits == 0 {
		// Degraded key: first four characters of the cleaned input.
		if len(s) > 4 {
			return s[:4]
		}
		return s
	}

	// Optional single trailing letter completes the outward code
	// ("SW1A" in "SW1A 1AA").
	if i < len(s) && isLetter(s[i]) {
		i++
	}
	return s[:i]
}

func isLetter(c byte) bool { return c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
