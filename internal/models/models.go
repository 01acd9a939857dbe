package models

import "time"

type Document struct {
	ID        string     `json:"document_id"`
	Text      string     `json:"-"`
	Pages     []PageSpan `json:"pages"`
	Sections  []Section  `json:"sections"`
	CreatedAt time.Time  `json:"created_at"`
}

// PageAt returns the 1-based page holding byte offset off, or 0 when the
// document carries no page boundaries.
func (d *Document) PageAt(off int) int {
	for _, p := range d.Pages {
		if off >= p.Start && off < p.End {
			return p.Number
		}
	}
	if n := len(d.Pages); n > 0 && off >= d.Pages[n-1].End {
		return d.Pages[n-1].Number
	}
	return 0
}

type PageSpan struct {
	Number int `json:"number"`
	Start  int `json:"start"`
	End    int `json:"end"`
}

// Section is a contiguous span [Start, End) of the document text. The span
// includes the heading line; Text holds only the body, from BodyStart to End.
type Section struct {
	Name      string `json:"name"`
	Heading   string `json:"heading,omitempty"`
	Start     int    `json:"start"`
	BodyStart int    `json:"body_start"`
	End       int    `json:"end"`
	Text      string `json:"text"`
}

type Chunk struct {
	ID           string `json:"chunk_id"`
	Section      string `json:"section"`
	SectionIndex int    `json:"section_index"`
	Offset       int    `json:"offset"`
	DocOffset    int    `json:"doc_offset"`
	Page         int    `json:"page,omitempty"`
	Text         string `json:"text"`
}

type UploadState string

const (
	StateIdle              UploadState = "idle"
	StateExtracting        UploadState = "extracting"
	StateDetectingSections UploadState = "detecting_sections"
	StateBuildingIndex     UploadState = "building_index"
	StateReady             UploadState = "ready"
	StateFailed            UploadState = "failed"
)

// UploadSteps is the step count reported in UploadStatus.Total.
const UploadSteps = 4

// Step returns the progress step reached once s is entered.
func (s UploadState) Step() int {
	switch s {
	case StateExtracting:
		return 1
	case StateDetectingSections:
		return 2
	case StateBuildingIndex:
		return 3
	case StateReady:
		return 4
	default:
		return 0
	}
}

// InFlight reports whether an upload is still being processed.
func (s UploadState) InFlight() bool {
	return s == StateExtracting || s == StateDetectingSections || s == StateBuildingIndex
}

type UploadStatus struct {
	UploadID   string      `json:"upload_id,omitempty"`
	State      UploadState `json:"state"`
	Step       int         `json:"step"`
	Total      int         `json:"total"`
	Message    string      `json:"message"`
	FailedStep UploadState `json:"failed_step,omitempty"`
	Error      string      `json:"error,omitempty"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func IdleStatus() UploadStatus {
	return UploadStatus{State: StateIdle, Total: UploadSteps, Message: "Waiting for upload"}
}

type Groundedness string

const (
	Grounded Groundedness = "grounded"
	Blended  Groundedness = "blended"
	General  Groundedness = "general"
)

type AnswerResult struct {
	Text         string       `json:"text"`
	Groundedness Groundedness `json:"groundedness"`
	Insufficient bool         `json:"insufficient,omitempty"`
	Sources      []Source     `json:"sources"`
}

type Source struct {
	ChunkID string  `json:"chunk_id"`
	Section string  `json:"section"`
	Page    int     `json:"page,omitempty"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet"`
}

type SummaryResult struct {
	Section   string `json:"section"`
	Text      string `json:"text"`
	Truncated bool   `json:"truncated,omitempty"`
}

type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

type CitationStats struct {
	Total    int      `json:"total"`
	Examples []string `json:"examples"`
}

type TopicShare struct {
	Section string  `json:"section"`
	Chars   int     `json:"chars"`
	Percent float64 `json:"percent"`
}

type PaperStats struct {
	WordCount    int            `json:"word_count"`
	PageCount    int            `json:"page_count"`
	SectionCount int            `json:"section_count"`
	ChunkCount   int            `json:"chunk_count"`
	Keywords     []KeywordCount `json:"keywords"`
	Citations    CitationStats  `json:"citations"`
	Topics       []TopicShare   `json:"topics"`
}
