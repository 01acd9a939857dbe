// Package sections recovers the logical sections of a paper from its
// extracted plain text.
package sections

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"paperlens/internal/models"
	"paperlens/internal/util"
)

const (
	PreambleName = "Preamble"
	FullTextName = "Full Text"
)

type spelling struct {
	text string
	name string
}

type Splitter struct {
	rules        Rules
	spellings    []spelling
	numeral      *regexp.Regexp
	connectors   map[string]struct{}
	contWords    map[string]struct{}
	contPatterns []*regexp.Regexp
}

var defaultSplitter = MustNew(DefaultRules())

// Split partitions text with the default rules.
func Split(text string) ([]models.Section, error) {
	return defaultSplitter.Split(text)
}

func New(rules Rules) (*Splitter, error) {
	numeral, err := regexp.Compile(rules.NumeralPattern)
	if err != nil {
		return nil, fmt.Errorf("numeral pattern: %w", err)
	}
	s := &Splitter{
		rules:      rules,
		numeral:    numeral,
		connectors: toSet(rules.TrailingConnectors),
		contWords:  toSet(lowerAll(rules.ContinuationWords)),
	}
	for _, p := range rules.ContinuationPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("continuation pattern %q: %w", p, err)
		}
		s.contPatterns = append(s.contPatterns, re)
	}
	for _, e := range rules.Vocabulary {
		for _, sp := range e.Spellings {
			s.spellings = append(s.spellings, spelling{text: strings.ToLower(sp), name: e.Name})
		}
	}
	return s, nil
}

func MustNew(rules Rules) *Splitter {
	s, err := New(rules)
	if err != nil {
		panic(err)
	}
	return s
}

type boundary struct {
	name      string
	heading   string
	start     int
	bodyStart int
}

// Split returns sections that are contiguous, non-overlapping and cover text
// exactly. Text before the first heading becomes a Preamble section; with no
// heading at all the whole text is one Full Text section.
func (s *Splitter) Split(text string) ([]models.Section, error) {
	if strings.TrimSpace(text) == "" {
		return nil, util.ErrEmptyDocument
	}

	var found []boundary
	prev := ""
	for pos := 0; pos < len(text); {
		lineEnd := len(text)
		next := len(text)
		if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
			lineEnd = pos + i
			next = lineEnd + 1
		}
		line := strings.TrimSpace(text[pos:lineEnd])
		if line != "" {
			if name, ok := s.matchHeading(line); ok && !s.continues(prev) {
				found = append(found, boundary{name: name, heading: line, start: pos, bodyStart: next})
			}
			prev = line
		}
		pos = next
	}

	if len(found) == 0 {
		return []models.Section{{Name: FullTextName, Start: 0, BodyStart: 0, End: len(text), Text: text}}, nil
	}

	out := make([]models.Section, 0, len(found)+1)
	if first := found[0].start; strings.TrimSpace(text[:first]) != "" {
		out = append(out, models.Section{Name: PreambleName, Start: 0, BodyStart: 0, End: first, Text: text[:first]})
	} else {
		found[0].start = 0
	}
	seen := map[string]int{}
	for i, b := range found {
		end := len(text)
		if i+1 < len(found) {
			end = found[i+1].start
		}
		seen[b.name]++
		name := b.name
		if n := seen[b.name]; n > 1 {
			name = fmt.Sprintf("%s (%d)", b.name, n)
		}
		out = append(out, models.Section{
			Name:      name,
			Heading:   b.heading,
			Start:     b.start,
			BodyStart: b.bodyStart,
			End:       end,
			Text:      text[b.bodyStart:end],
		})
	}
	return out, nil
}

// matchHeading reports the canonical name for a trimmed line, preferring the
// longest spelling when several match.
func (s *Splitter) matchHeading(line string) (string, bool) {
	if len(line) > s.rules.MaxHeadingLen {
		return "", false
	}
	rest := line
	if loc := s.numeral.FindStringIndex(rest); loc != nil {
		rest = rest[loc[1]:]
	}
	low := strings.ToLower(rest)

	best := -1
	for i, sp := range s.spellings {
		if !strings.HasPrefix(low, sp.text) || !wordBoundary(low, len(sp.text)) {
			continue
		}
		if best < 0 || len(sp.text) > len(s.spellings[best].text) {
			best = i
		}
	}
	if best < 0 || len(low) != len(rest) {
		return "", false
	}
	if !s.acceptableTail(rest[len(s.spellings[best].text):]) {
		return "", false
	}
	return s.spellings[best].name, true
}

func (s *Splitter) acceptableTail(tail string) bool {
	tail = strings.TrimRight(strings.TrimSpace(tail), ":.")
	words := strings.Fields(tail)
	if len(words) > s.rules.MaxTrailingWords {
		return false
	}
	for _, w := range words {
		if _, ok := s.connectors[w]; ok {
			continue
		}
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// continues reports whether prev reads as a sentence that runs on into the
// following line.
func (s *Splitter) continues(prev string) bool {
	if prev == "" {
		return false
	}
	if strings.ContainsRune(s.rules.ContinuationChars, rune(prev[len(prev)-1])) {
		return true
	}
	fields := strings.Fields(prev)
	last := strings.ToLower(strings.TrimRight(fields[len(fields)-1], ",;:"))
	if _, ok := s.contWords[last]; ok {
		return true
	}
	for _, re := range s.contPatterns {
		if re.MatchString(prev) {
			return true
		}
	}
	return false
}

func wordBoundary(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func toSet(words []string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

func lowerAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}
