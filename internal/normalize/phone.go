// Package normalize canonicalizes phone numbers and source-specific dates
// before candidate records reach the store.
package normalize

import "strings"

// Phone canonicalizes a raw phone string into +1 dialing format. It strips
// every non-digit character first. Ten digits get the +1 country code;
// eleven digits with a leading 1 get a bare +. Anything else is unparseable
// and reported via ok=false with an empty string.
func Phone(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 10:
		return "+1" + digits, true
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits, true
	default:
		return "", false
	}
}
