package sections

// Entry is one canonical section name and the lower-case spellings that
// introduce it.
type Entry struct {
	Name      string
	Spellings []string
}

// Rules drives heading recognition. Everything the splitter treats as
// heuristic lives here so it can be tuned without touching the algorithm.
type Rules struct {
	Vocabulary []Entry

	// MaxHeadingLen bounds the trimmed heading line, in bytes.
	MaxHeadingLen int
	// MaxTrailingWords bounds the words allowed after the matched spelling,
	// e.g. "Related Work on Efficient Transformers".
	MaxTrailingWords int
	// TrailingConnectors are lower-case words allowed among the trailing words.
	TrailingConnectors []string

	// A candidate is rejected when the previous non-blank line ends with one of
	// ContinuationChars, with one of ContinuationWords, or matches one of
	// ContinuationPatterns.
	ContinuationChars    string
	ContinuationWords    []string
	ContinuationPatterns []string

	// NumeralPattern matches an optional numbering prefix such as "1.", "3.2"
	// or "IV.".
	NumeralPattern string
}

func DefaultRules() Rules {
	return Rules{
		Vocabulary: []Entry{
			{Name: "Abstract", Spellings: []string{"abstract"}},
			{Name: "Introduction", Spellings: []string{"introduction"}},
			{Name: "Related Work", Spellings: []string{"related work", "related works", "literature review", "prior work"}},
			{Name: "Background", Spellings: []string{"background", "preliminaries"}},
			{Name: "Methods", Spellings: []string{"methods", "method", "methodology", "materials and methods", "proposed method", "approach"}},
			{Name: "Experiments", Spellings: []string{"experiments", "experimental setup", "experimental evaluation", "evaluation"}},
			{Name: "Results", Spellings: []string{"results", "experimental results", "results and discussion"}},
			{Name: "Discussion", Spellings: []string{"discussion"}},
			{Name: "Conclusion", Spellings: []string{"conclusion", "conclusions", "concluding remarks", "conclusions and future work", "summary and conclusion", "summary and conclusions"}},
			{Name: "Limitations", Spellings: []string{"limitations"}},
			{Name: "References", Spellings: []string{"references", "bibliography", "works cited"}},
			{Name: "Acknowledgments", Spellings: []string{"acknowledgments", "acknowledgements", "acknowledgment", "acknowledgement"}},
			{Name: "Appendix", Spellings: []string{"appendix", "appendices", "supplementary material"}},
		},
		MaxHeadingLen:        80,
		MaxTrailingWords:     4,
		TrailingConnectors:   []string{"and", "of", "for", "the", "in", "on", "with", "&"},
		ContinuationChars:    ",-(/;",
		ContinuationWords:    []string{"see", "in", "of", "the", "and", "or", "to", "with", "by", "from", "for", "on", "our", "this", "as", "at", "a", "an", "section"},
		ContinuationPatterns: []string{`(?i)\b(?:section|sec\.|§)\s*\d+(?:\.\d+)*$`},
		NumeralPattern:       `^(?:\d+(?:\.\d+)*(?:[.)]\s*|\s+)|[IVXLC]+[.)]\s*|[A-Z][.)]\s+)`,
	}
}
