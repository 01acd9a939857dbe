package util

import (
	"strings"
	"unicode/utf8"
)

// Span is a half-open byte range [Start, End) into a string.
type Span struct {
	Start int
	End   int
}

// chunkSeparators are tried in order when choosing where to end a chunk.
var chunkSeparators = []string{"\n\n", "\n", ". ", ", ", " "}

// SplitSpans cuts text into windows of at most chunkSize bytes that overlap by
// roughly overlap bytes. A window ends after the last separator found in its
// second half; failing that it ends at the last rune boundary. Whitespace-only
// windows are skipped. The result depends only on the inputs.
func SplitSpans(text string, chunkSize, overlap int) []Span {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	n := len(text)
	out := make([]Span, 0, n/chunkSize+1)
	start := 0
	for start < n {
		end := start + chunkSize
		if end >= n {
			end = n
		} else {
			end = cutPoint(text, start, end)
		}
		if strings.TrimSpace(text[start:end]) != "" {
			out = append(out, Span{Start: start, End: end})
		}
		if end == n {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = wordStart(text, next, end)
	}
	return out
}

func cutPoint(text string, start, end int) int {
	half := start + (end-start)/2
	window := text[half:end]
	for _, sep := range chunkSeparators {
		if i := strings.LastIndex(window, sep); i >= 0 {
			return half + i + len(sep)
		}
	}
	for end > start+1 && !utf8.RuneStart(text[end]) {
		end--
	}
	return end
}

// wordStart moves pos forward to a rune boundary and, when pos sits inside a
// word, to the start of the next word, without passing limit.
func wordStart(text string, pos, limit int) int {
	for pos < limit && !utf8.RuneStart(text[pos]) {
		pos++
	}
	if pos == 0 || pos >= limit || isASCIISpace(text[pos-1]) {
		return pos
	}
	if i := strings.IndexAny(text[pos:limit], " \n\t"); i >= 0 && pos+i+1 < limit {
		return pos + i + 1
	}
	return pos
}

func isASCIISpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}
