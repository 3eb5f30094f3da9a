package identity

import (
	"regexp"
	"strings"
)

var (
	noiseSuffix   = regexp.MustCompile(`(?i)\s*\((host|co-host|cohost|guest|external|me|organizer|organiser|unverified)\)\s*$`)
	parenthetical = regexp.MustCompile(`^(.*?)\s*\(\s*([^()\s]+@[^()\s]+)\s*\)\s*$`)
	initialForm   = regexp.MustCompile(`^([\p{L}])\.?\s+([\p{L}'\-]{2,})$`)
	reversedForm  = regexp.MustCompile(`^([^,]+),\s*([^,]+)$`)
)

// parsed is a display name after noise removal, with the structural form it
// was written in.
type parsed struct {
	raw        string
	clean      string
	email      string
	parenEmail string
	first      string
	last       string
	simple     bool

	reversedFirst, reversedLast string
	initial, initialLast        string
	parenName                   string
}

func parseName(name, email string) parsed {
	p := parsed{raw: name, email: strings.ToLower(strings.TrimSpace(email))}

	clean := collapse(name)
	for {
		stripped := noiseSuffix.ReplaceAllString(clean, "")
		if stripped == clean {
			break
		}
		clean = collapse(stripped)
	}
	p.clean = clean

	if m := parenthetical.FindStringSubmatch(clean); m != nil {
		p.parenName = collapse(m[1])
		p.parenEmail = strings.ToLower(m[2])
		return p
	}

	if m := reversedForm.FindStringSubmatch(clean); m != nil {
		p.reversedLast = collapse(m[1])
		p.reversedFirst = collapse(m[2])
		return p
	}

	if m := initialForm.FindStringSubmatch(clean); m != nil {
		p.initial = strings.ToLower(m[1])
		p.initialLast = strings.ToLower(m[2])
		return p
	}

	p.first, p.last, p.simple = splitName(clean)
	return p
}

// splitName splits "First [Middle...] Last" into first and last tokens.
func splitName(name string) (first, last string, ok bool) {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) < 2 {
		return "", "", false
	}
	for _, f := range fields {
		if strings.ContainsAny(f, ",()@") {
			return "", "", false
		}
	}
	return fields[0], fields[len(fields)-1], true
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func equalFold(a, b string) bool {
	return a != "" && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// isToken reports whether s is a usable partial-match token, not an initial.
func isToken(s string) bool {
	return len([]rune(strings.TrimSuffix(s, "."))) >= 2 && !strings.HasSuffix(s, ".")
}
