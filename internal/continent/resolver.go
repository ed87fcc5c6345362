// Package continent derives short display codes for continent and region
// labels and builds the alias lookup used when presenting filter results.
// Codes are deterministic best-effort slugs, not ISO codes.
package continent

import (
	"regexp"
	"strings"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// wellKnown fixes the code and aliases for the common continent and region
// names; everything else falls through to the derivation rules.
var wellKnown = []struct {
	Canonical string
	Code      string
	Aliases   []string
}{
	{"Africa", "AF", nil},
	{"Antarctica", "AN", nil},
	{"Asia", "AS", nil},
	{"Europe", "EU", nil},
	{"North America", "NA", []string{"n america"}},
	{"South America", "SA", []string{"s america"}},
	{"Central America", "CA", []string{"c america"}},
	{"Oceania", "OC", nil},
	{"Australia", "AU", []string{"australia and oceania"}},
	{"Middle East", "ME", nil},
	{"Caribbean", "CB", []string{"the caribbean"}},
}

// NormalizeKey canonicalizes a continent label for lookup: trimmed,
// separator punctuation flattened to spaces, "&" spelled out, internal
// whitespace collapsed, case-folded. Two differently punctuated labels
// normalize identically iff they carry the same tokens.
func NormalizeKey(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("_", " ", "-", " ", "/", " ", "&", " and ").Replace(s)
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// DeriveCode produces a stable 2-3 letter code for a continent or region
// name. Well-known names use their fixed codes; everything else gets a slug
// from its initials or leading letters.
func DeriveCode(name string) string {
	key := NormalizeKey(name)
	for _, wk := range wellKnown {
		if NormalizeKey(wk.Canonical) == key {
			return wk.Code
		}
	}

	var tokens []string
	for _, tok := range strings.Fields(key) {
		if tok == "and" {
			continue
		}
		tokens = append(tokens, tok)
	}

	switch len(tokens) {
	case 0:
		return leadingLetters(name)
	case 1:
		tok := []rune(strings.ToUpper(tokens[0]))
		if len(tok) == 1 {
			return string(tok) + string(tok)
		}
		return string(tok[:2])
	default:
		var initials []rune
		for _, tok := range tokens {
			initials = append(initials, []rune(tok)[0])
		}
		code := []rune(strings.ToUpper(string(initials)))
		if len(code) > 3 {
			code = code[:3]
		}
		if len(code) < 2 {
			return leadingLetters(name)
		}
		return string(code)
	}
}

// leadingLetters takes the first two alphabetic characters of the raw name,
// or "XX" when there are none.
func leadingLetters(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			if b.Len() == 2 {
				return b.String()
			}
		}
	}
	if b.Len() == 1 {
		s := b.String()
		return s + s
	}
	return "XX"
}

// Lookup is the session-scoped alias table: every recognized spelling of a
// continent maps back to one canonical display name, which maps to one code.
// It is rebuilt from the current attributes table on each filtering request
// and never persisted.
type Lookup struct {
	canonical map[string]string // normalized key -> display name
	codes     map[string]string // display name -> code
	aliases   map[string]string // folded alias -> display name
}

// Build constructs a Lookup from the raw continent values present in the
// attributes table. The first-seen raw form of each normalized key becomes
// the canonical display name.
func Build(values []string) Lookup {
	l := Lookup{
		canonical: make(map[string]string),
		codes:     make(map[string]string),
		aliases:   make(map[string]string),
	}

	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		key := NormalizeKey(raw)
		display, seen := l.canonical[key]
		if !seen {
			display = raw
			l.canonical[key] = display
			l.codes[display] = DeriveCode(display)
		}

		l.register(raw, display)
		l.register(key, display)
		l.register(l.codes[display], display)
		for _, wk := range wellKnown {
			if NormalizeKey(wk.Canonical) != key {
				continue
			}
			l.register(wk.Canonical, display)
			for _, alias := range wk.Aliases {
				l.register(alias, display)
			}
		}
	}

	return l
}

func (l Lookup) register(alias, display string) {
	alias = strings.ToLower(strings.TrimSpace(alias))
	if alias == "" {
		return
	}
	if _, ok := l.aliases[alias]; !ok {
		l.aliases[alias] = display
	}
}

// Resolve maps any registered alias (raw spelling, normalized key, or code)
// to the canonical display name.
func (l Lookup) Resolve(alias string) (string, bool) {
	display, ok := l.aliases[strings.ToLower(strings.TrimSpace(alias))]
	return display, ok
}

// CodeOf returns the derived code for a canonical display name.
func (l Lookup) CodeOf(display string) (string, bool) {
	code, ok := l.codes[display]
	return code, ok
}
