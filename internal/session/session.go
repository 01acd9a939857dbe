package session

import (
	"fmt"
	"sync"
	"time"

	"paperlens/internal/index"
	"paperlens/internal/models"
	"paperlens/internal/util"

	"github.com/google/uuid"
)

var stepMessages = map[models.UploadState]string{
	models.StateExtracting:        "Extracting text from PDF",
	models.StateDetectingSections: "Detecting sections",
	models.StateBuildingIndex:     "Building vector index",
	models.StateReady:             "Ready",
}

// Pending is the work in progress of an upload, handed from one pipeline step
// to the next.
type Pending struct {
	Data     []byte
	Document *models.Document
}

// Snapshot is a consistent view of a session. The document and index are
// immutable and safe to use without the session lock.
type Snapshot struct {
	ID       string
	Status   models.UploadStatus
	Document *models.Document
	Index    *index.Index
}

// Session holds one user's document, index and upload progress.
type Session struct {
	ID string

	mu       sync.Mutex
	status   models.UploadStatus
	doc      *models.Document
	idx      *index.Index
	pending  Pending
	lastUsed time.Time
	now      func() time.Time
}

func newSession(id string, now func() time.Time) *Session {
	st := models.IdleStatus()
	st.UpdatedAt = now()
	return &Session{ID: id, status: st, lastUsed: now(), now: now}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{ID: s.ID, Status: s.status, Document: s.doc, Index: s.idx}
}

func (s *Session) Status() models.UploadStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsed = s.now()
	s.mu.Unlock()
}

// idleSince reports whether the session is expirable: unused since cutoff and
// not processing an upload.
func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.status.State.InFlight() && s.lastUsed.Before(cutoff)
}

// Begin starts a new upload. The previous document and index are discarded.
// It fails with ErrUploadInProgress while another upload is being processed.
func (s *Session) Begin(data []byte) (models.UploadStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.State.InFlight() {
		return s.status, fmt.Errorf("%w: upload %s is %s", util.ErrUploadInProgress, s.status.UploadID, s.status.State)
	}
	s.doc = nil
	s.idx = nil
	s.pending = Pending{Data: data}
	s.lastUsed = s.now()
	s.setState(uuid.NewString(), models.StateExtracting)
	return s.status, nil
}

// Pending returns the work handed over by the previous step of uploadID.
func (s *Session) Pending(uploadID string) (Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCurrent(uploadID); err != nil {
		return Pending{}, err
	}
	return s.pending, nil
}

// Advance moves uploadID forward to next and stores the work for the next
// step. Moving backwards, to a terminal state or for a superseded upload is
// refused.
func (s *Session) Advance(uploadID string, next models.UploadState, p Pending) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCurrent(uploadID); err != nil {
		return err
	}
	if !next.InFlight() || next.Step() <= s.status.Step {
		return fmt.Errorf("invalid upload transition %s -> %s", s.status.State, next)
	}
	s.pending = p
	s.setState(uploadID, next)
	return nil
}

// Publish installs the finished document and index together and marks the
// session ready.
func (s *Session) Publish(uploadID string, doc *models.Document, idx *index.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCurrent(uploadID); err != nil {
		return err
	}
	if s.status.State != models.StateBuildingIndex {
		return fmt.Errorf("invalid upload transition %s -> %s", s.status.State, models.StateReady)
	}
	if doc == nil || idx == nil {
		return fmt.Errorf("publish upload %s: document and index are required", uploadID)
	}
	s.doc = doc
	s.idx = idx
	s.pending = Pending{}
	s.setState(uploadID, models.StateReady)
	return nil
}

// Fail records that uploadID failed in its current step. The step number is
// kept so progress never goes backwards.
func (s *Session) Fail(uploadID string, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCurrent(uploadID); err != nil {
		return err
	}
	s.pending = Pending{}
	s.status.FailedStep = s.status.State
	s.status.State = models.StateFailed
	s.status.Message = fmt.Sprintf("Failed while %s", failedStepLabel(s.status.FailedStep))
	if cause != nil {
		s.status.Error = cause.Error()
	}
	s.status.UpdatedAt = s.now()
	return nil
}

// checkCurrent requires uploadID to be the session's upload and still in
// flight. Callers hold s.mu.
func (s *Session) checkCurrent(uploadID string) error {
	if uploadID == "" || uploadID != s.status.UploadID || !s.status.State.InFlight() {
		return fmt.Errorf("%w: %s", util.ErrStaleUpload, uploadID)
	}
	return nil
}

func (s *Session) setState(uploadID string, st models.UploadState) {
	s.status = models.UploadStatus{
		UploadID:  uploadID,
		State:     st,
		Step:      st.Step(),
		Total:     models.UploadSteps,
		Message:   stepMessages[st],
		UpdatedAt: s.now(),
	}
}

func failedStepLabel(st models.UploadState) string {
	switch st {
	case models.StateExtracting:
		return "extracting text"
	case models.StateDetectingSections:
		return "detecting sections"
	case models.StateBuildingIndex:
		return "building the index"
	default:
		return string(st)
	}
}
