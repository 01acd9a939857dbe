package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"paperlens/internal/analysis"
	"paperlens/internal/config"
	"paperlens/internal/extract"
	"paperlens/internal/index"
	"paperlens/internal/models"
	"paperlens/internal/providers"
	"paperlens/internal/rag"
	"paperlens/internal/sections"
	"paperlens/internal/session"
	"paperlens/internal/summary"
	"paperlens/internal/util"
)

// Service is the outward API: uploads, status polling, summaries, chat and
// paper statistics, all scoped to a session.
type Service struct {
	cfg        config.Config
	store      *session.Store
	extractor  extract.Extractor
	splitter   *sections.Splitter
	builder    *index.Builder
	answerer   *rag.Answerer
	summarizer *summary.Generator
	runner     UploadRunner
}

// New wires the pipeline around the given collaborators. Uploads run on a
// LocalRunner until SetRunner replaces it.
func New(cfg config.Config, store *session.Store, embedder providers.EmbeddingProvider, llm providers.LLMProvider) *Service {
	s := &Service{
		cfg:        cfg,
		store:      store,
		extractor:  extract.PDFExtractor{},
		splitter:   sections.MustNew(sections.DefaultRules()),
		builder:    index.NewBuilder(cfg, embedder),
		answerer:   rag.NewAnswerer(cfg, embedder, llm),
		summarizer: summary.NewGenerator(cfg, llm),
	}
	s.runner = NewLocalRunner(s)
	return s
}

func (s *Service) SetRunner(r UploadRunner) { s.runner = r }

func (s *Service) SetExtractor(e extract.Extractor) { s.extractor = e }

func (s *Service) Runner() UploadRunner { return s.runner }

// StartUpload begins processing data for the session and returns at once.
// Processing failures are reported through PollStatus, not returned here.
func (s *Service) StartUpload(ctx context.Context, sessionID string, data []byte) (models.UploadStatus, error) {
	if len(data) == 0 {
		return models.UploadStatus{}, fmt.Errorf("start upload: %w", util.ErrEmptyDocument)
	}
	if s.cfg.MaxUploadBytes > 0 && len(data) > s.cfg.MaxUploadBytes {
		return models.UploadStatus{}, fmt.Errorf("%w: upload is %d bytes, limit is %d", util.ErrUnsupportedFormat, len(data), s.cfg.MaxUploadBytes)
	}
	sess := s.store.GetOrCreate(sessionID)
	st, err := sess.Begin(data)
	if err != nil {
		return st, err
	}
	ref := UploadRef{SessionID: sess.ID, UploadID: st.UploadID}
	log.Printf("upload started session_id=%s upload_id=%s bytes=%d", ref.SessionID, ref.UploadID, len(data))

	if err := s.runner.Run(ctx, ref); err != nil {
		log.Printf("upload runner failed session_id=%s upload_id=%s error=%v", ref.SessionID, ref.UploadID, err)
		if ferr := sess.Fail(ref.UploadID, err); ferr != nil {
			log.Printf("record upload failure session_id=%s upload_id=%s error=%v", ref.SessionID, ref.UploadID, ferr)
		}
		return sess.Status(), nil
	}
	return st, nil
}

// PollStatus reports upload progress. Unknown sessions are idle.
func (s *Service) PollStatus(sessionID string) models.UploadStatus {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return models.IdleStatus()
	}
	return sess.Status()
}

func (s *Service) GetSummary(ctx context.Context, sessionID, sectionName string) (models.SummaryResult, error) {
	snap, err := s.ready(sessionID)
	if err != nil {
		return models.SummaryResult{}, err
	}
	sec, ok := findSection(snap.Document.Sections, sectionName)
	if !ok {
		return models.SummaryResult{}, fmt.Errorf("%w: %q", util.ErrUnknownSection, sectionName)
	}
	return s.summarizer.Summarize(ctx, sec)
}

func (s *Service) Chat(ctx context.Context, sessionID, question string) (models.AnswerResult, error) {
	snap, err := s.ready(sessionID)
	if err != nil {
		return models.AnswerResult{}, err
	}
	return s.answerer.Answer(ctx, question, snap.Index)
}

func (s *Service) Sections(sessionID string) ([]models.Section, error) {
	snap, err := s.ready(sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Section, len(snap.Document.Sections))
	copy(out, snap.Document.Sections)
	return out, nil
}

func (s *Service) Stats(sessionID string) (models.PaperStats, error) {
	snap, err := s.ready(sessionID)
	if err != nil {
		return models.PaperStats{}, err
	}
	return analysis.Analyze(snap.Document, snap.Index.Len()), nil
}

// EndSession drops the session with its document and index.
func (s *Service) EndSession(sessionID string) bool {
	ok := s.store.Delete(sessionID)
	if ok {
		log.Printf("session ended session_id=%s", sessionID)
	}
	return ok
}

// ready returns the session snapshot when a document is queryable. A session
// that never uploaded has no index; any other state is not ready yet.
func (s *Service) ready(sessionID string) (session.Snapshot, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return session.Snapshot{}, fmt.Errorf("%w: session %s", util.ErrNoIndex, sessionID)
	}
	snap := sess.Snapshot()
	switch {
	case snap.Status.State == models.StateReady && snap.Index != nil && snap.Document != nil:
		return snap, nil
	case snap.Status.State == models.StateIdle:
		return session.Snapshot{}, fmt.Errorf("%w: session %s", util.ErrNoIndex, sessionID)
	default:
		return session.Snapshot{}, fmt.Errorf("%w: session %s is %s", util.ErrNotReady, sessionID, snap.Status.State)
	}
}

func findSection(secs []models.Section, name string) (models.Section, bool) {
	name = strings.TrimSpace(name)
	for _, sec := range secs {
		if strings.EqualFold(sec.Name, name) {
			return sec, true
		}
	}
	return models.Section{}, false
}
