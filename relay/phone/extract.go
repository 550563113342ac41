package phone

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// space is any Unicode whitespace: ASCII \s plus \v, the C0 separators,
// NEL and every Z category rune (NBSP, thin space, ideographic space).
const space = `\s\v\x{1c}-\x{1f}\x{85}\p{Z}`

// sep is the optional separator between digit groups.
const sep = `[-.` + space + `]?`

// Order matters only for which raw match is seen first before dedup.
var patterns = []*regexp.Regexp{
	// US: +1 (555) 123-4567, 555.123.4567
	regexp.MustCompile(`\+?1?` + sep + `\(?([0-9]{3})\)?` + sep + `([0-9]{3})` + sep + `([0-9]{4})`),
	// International, loose grouping.
	regexp.MustCompile(`\+?([0-9]{1,3})` + sep + `([0-9]{3,4})` + sep + `([0-9]{3,4})` + sep + `([0-9]{3,4})`),
	// (555) 123-4567
	regexp.MustCompile(`\(([0-9]{3})\)[` + space + `]?([0-9]{3})-([0-9]{4})`),
	// 555-123-4567
	regexp.MustCompile(`([0-9]{3})-([0-9]{3})-([0-9]{4})`),
}

// Extract returns the unique phone numbers found in text, normalized to a
// leading "+" and in order of first appearance. Numbers with fewer than ten
// digits are dropped.
//
// A long digit run can come out twice in different shapes when two patterns
// capture a different number of its digits: "1234567890123" yields both
// "+11234567890" and "+1234567890123". That is kept as is.
func Extract(text string) []string {
	out := make([]string, 0, 4)
	seen := make(map[string]struct{}, 4)

	for _, re := range patterns {
		for _, groups := range re.FindAllStringSubmatch(text, -1) {
			formatted, ok := fromDigits(strings.Join(groups[1:], ""))
			if !ok {
				continue
			}
			if _, dup := seen[formatted]; dup {
				continue
			}
			seen[formatted] = struct{}{}
			out = append(out, formatted)
		}
	}

	return out
}

func fromDigits(digits string) (string, bool) {
	switch {
	case len(digits) == 10:
		return "+1" + digits, true
	case len(digits) > 10:
		if strings.HasPrefix(digits, "+") {
			return digits, true
		}
		return "+" + digits, true
	default:
		return "", false
	}
}

// Normalize prefixes a caller-supplied number for dialing. A number already
// starting with "+" is returned unchanged; a number of 10 characters (runes,
// not bytes) gets "+1"; anything else gets a bare "+" regardless of length.
func Normalize(raw string) string {
	if strings.HasPrefix(raw, "+") {
		return raw
	}
	if utf8.RuneCountInString(raw) == 10 {
		return "+1" + raw
	}
	return "+" + raw
}
