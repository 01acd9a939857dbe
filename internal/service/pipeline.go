package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"paperlens/internal/models"
	"paperlens/internal/session"
	"paperlens/internal/util"
)

// UploadRef addresses one upload of one session.
type UploadRef struct {
	SessionID string `json:"session_id"`
	UploadID  string `json:"upload_id"`
}

// UploadRunner carries an upload through the pipeline steps in the
// background. Run must not block on the processing itself.
type UploadRunner interface {
	Run(ctx context.Context, ref UploadRef) error
}

// Extract turns the uploaded bytes into a document and moves the upload to
// section detection.
func (s *Service) Extract(ctx context.Context, ref UploadRef) error {
	sess, p, err := s.pending(ref)
	if err != nil {
		return err
	}
	res, err := s.extractor.Extract(ctx, p.Data)
	if err != nil {
		return err
	}
	doc := &models.Document{ID: ref.UploadID, Text: res.Text, Pages: res.Pages, CreatedAt: time.Now().UTC()}
	if err := sess.Advance(ref.UploadID, models.StateDetectingSections, session.Pending{Document: doc}); err != nil {
		return err
	}
	log.Printf("text extracted session_id=%s upload_id=%s bytes=%d pages=%d", ref.SessionID, ref.UploadID, len(doc.Text), len(doc.Pages))
	return nil
}

func (s *Service) DetectSections(_ context.Context, ref UploadRef) error {
	sess, p, err := s.pending(ref)
	if err != nil {
		return err
	}
	if p.Document == nil {
		return fmt.Errorf("detect sections: no extracted document for upload %s", ref.UploadID)
	}
	secs, err := s.splitter.Split(p.Document.Text)
	if err != nil {
		return err
	}
	doc := *p.Document
	doc.Sections = secs
	if err := sess.Advance(ref.UploadID, models.StateBuildingIndex, session.Pending{Document: &doc}); err != nil {
		return err
	}
	log.Printf("sections detected session_id=%s upload_id=%s count=%d", ref.SessionID, ref.UploadID, len(secs))
	return nil
}

// BuildIndex embeds the document and publishes document and index together.
func (s *Service) BuildIndex(ctx context.Context, ref UploadRef) error {
	sess, p, err := s.pending(ref)
	if err != nil {
		return err
	}
	if p.Document == nil {
		return fmt.Errorf("build index: no sectioned document for upload %s", ref.UploadID)
	}
	idx, err := s.builder.Build(ctx, p.Document)
	if err != nil {
		return err
	}
	if err := sess.Publish(ref.UploadID, p.Document, idx); err != nil {
		return err
	}
	log.Printf("upload ready session_id=%s upload_id=%s sections=%d chunks=%d", ref.SessionID, ref.UploadID, len(p.Document.Sections), idx.Len())
	return nil
}

// Fail marks the upload failed at its current step.
func (s *Service) Fail(ref UploadRef, cause error) error {
	sess, ok := s.store.Get(ref.SessionID)
	if !ok {
		return fmt.Errorf("%w: %s", util.ErrUnknownSession, ref.SessionID)
	}
	return sess.Fail(ref.UploadID, cause)
}

// Process runs every step of the upload in order. The first error fails the
// upload, unless the upload was superseded in the meantime.
func (s *Service) Process(ctx context.Context, ref UploadRef) error {
	steps := []struct {
		name string
		run  func(context.Context, UploadRef) error
	}{
		{"extract", s.Extract},
		{"detect_sections", s.DetectSections},
		{"build_index", s.BuildIndex},
	}
	for _, step := range steps {
		err := step.run(ctx, ref)
		if err == nil {
			continue
		}
		if errors.Is(err, util.ErrStaleUpload) || errors.Is(err, util.ErrUnknownSession) {
			log.Printf("upload abandoned session_id=%s upload_id=%s step=%s reason=%v", ref.SessionID, ref.UploadID, step.name, err)
			return err
		}
		log.Printf("upload failed session_id=%s upload_id=%s step=%s error=%v", ref.SessionID, ref.UploadID, step.name, err)
		if ferr := s.Fail(ref, err); ferr != nil {
			log.Printf("record upload failure session_id=%s upload_id=%s error=%v", ref.SessionID, ref.UploadID, ferr)
		}
		return err
	}
	return nil
}

func (s *Service) pending(ref UploadRef) (*session.Session, session.Pending, error) {
	sess, ok := s.store.Get(ref.SessionID)
	if !ok {
		return nil, session.Pending{}, fmt.Errorf("%w: %s", util.ErrUnknownSession, ref.SessionID)
	}
	p, err := sess.Pending(ref.UploadID)
	if err != nil {
		return nil, session.Pending{}, err
	}
	return sess, p, nil
}

// LocalRunner processes each upload on its own goroutine in this process.
// Processing is detached from the caller's context and is not cancelled.
type LocalRunner struct {
	svc *Service
	wg  sync.WaitGroup
}

func NewLocalRunner(svc *Service) *LocalRunner {
	return &LocalRunner{svc: svc}
}

func (r *LocalRunner) Run(ctx context.Context, ref UploadRef) error {
	ctx = context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_ = r.svc.Process(ctx, ref)
	}()
	return nil
}

// Wait blocks until every upload started so far has finished.
func (r *LocalRunner) Wait() {
	r.wg.Wait()
}
