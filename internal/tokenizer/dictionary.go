package tokenizer

import "sort"

// DictionaryEntry is a canonical surface form together with the spellings
// that should be folded into it.
type DictionaryEntry struct {
	Surface  string   `json:"surface" yaml:"surface"`
	Variants []string `json:"variants,omitempty" yaml:"variants,omitempty"`
}

// Match is a dictionary hit over rune positions [Start, End).
type Match struct {
	Start   int
	End     int
	Surface string
}

type pattern struct {
	runes   []rune
	surface string
}

// UserDictionary resolves surface forms and variants by longest match.
type UserDictionary struct {
	entries  []DictionaryEntry
	surfaces map[string]struct{}
	lookup   map[string]string
	patterns []pattern
}

// NewUserDictionary indexes entries. Patterns are ordered longest first so a
// longer spelling always wins over a shorter one starting at the same rune.
func NewUserDictionary(entries []DictionaryEntry) *UserDictionary {
	d := &UserDictionary{
		entries:  make([]DictionaryEntry, 0, len(entries)),
		surfaces: make(map[string]struct{}, len(entries)),
		lookup:   make(map[string]string),
	}
	for _, e := range entries {
		if e.Surface == "" {
			continue
		}
		variants := append([]string(nil), e.Variants...)
		d.entries = append(d.entries, DictionaryEntry{Surface: e.Surface, Variants: variants})
		d.surfaces[e.Surface] = struct{}{}
		d.lookup[e.Surface] = e.Surface
		d.patterns = append(d.patterns, pattern{runes: []rune(e.Surface), surface: e.Surface})
		for _, v := range variants {
			if v == "" {
				continue
			}
			d.lookup[v] = e.Surface
			d.patterns = append(d.patterns, pattern{runes: []rune(v), surface: e.Surface})
		}
	}
	sort.SliceStable(d.patterns, func(i, j int) bool {
		return len(d.patterns[i].runes) > len(d.patterns[j].runes)
	})
	return d
}

// Entries returns a copy of the dictionary entries in insertion order.
func (d *UserDictionary) Entries() []DictionaryEntry {
	out := make([]DictionaryEntry, len(d.entries))
	for i, e := range d.entries {
		out[i] = DictionaryEntry{Surface: e.Surface, Variants: append([]string(nil), e.Variants...)}
	}
	return out
}

// IsSurface reports whether token is a canonical surface form.
func (d *UserDictionary) IsSurface(token string) bool {
	_, ok := d.surfaces[token]
	return ok
}

// Canonical returns the surface form for a surface or variant spelling.
func (d *UserDictionary) Canonical(token string) (string, bool) {
	s, ok := d.lookup[token]
	return s, ok
}

// FindMatches scans text left to right. A rune consumed by a match is never
// part of another match.
func (d *UserDictionary) FindMatches(text string) []Match {
	if len(d.patterns) == 0 || text == "" {
		return nil
	}
	chars := []rune(text)
	var matches []Match
	for i := 0; i < len(chars); {
		m, ok := d.matchAt(chars, i)
		if !ok {
			i++
			continue
		}
		matches = append(matches, m)
		i = m.End
	}
	return matches
}

func (d *UserDictionary) matchAt(chars []rune, i int) (Match, bool) {
	for _, p := range d.patterns {
		n := len(p.runes)
		if i+n > len(chars) {
			continue
		}
		if runesEqual(chars[i:i+n], p.runes) {
			return Match{Start: i, End: i + n, Surface: p.surface}, true
		}
	}
	return Match{}, false
}

// unmatchedSpans returns the maximal runs of text not covered by matches.
func unmatchedSpans(text string, matches []Match) []string {
	if len(matches) == 0 {
		return []string{text}
	}
	chars := []rune(text)
	consumed := make([]bool, len(chars))
	for _, m := range matches {
		for i := m.Start; i < m.End; i++ {
			consumed[i] = true
		}
	}
	var spans []string
	start := -1
	for i := range chars {
		switch {
		case !consumed[i] && start < 0:
			start = i
		case consumed[i] && start >= 0:
			spans = append(spans, string(chars[start:i]))
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, string(chars[start:]))
	}
	return spans
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
