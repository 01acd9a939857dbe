package activities

import (
	"context"
	"errors"
	"log"
	"time"

	"paperlens/internal/service"
	"paperlens/internal/util"

	"go.temporal.io/sdk/temporal"
)

// Error types reported to workflows. Both are non-retryable.
const (
	ErrTypeInput       = "InputError"
	ErrTypeStaleUpload = "StaleUpload"
)

// Pipeline is the upload pipeline the activities drive.
type Pipeline interface {
	Extract(ctx context.Context, ref service.UploadRef) error
	DetectSections(ctx context.Context, ref service.UploadRef) error
	BuildIndex(ctx context.Context, ref service.UploadRef) error
	Fail(ref service.UploadRef, cause error) error
}

type Activities struct {
	pipeline Pipeline
}

func New(p Pipeline) *Activities {
	return &Activities{pipeline: p}
}

func (a *Activities) ExtractTextActivity(ctx context.Context, in UploadInput) (StepOutput, error) {
	return a.step(ctx, "extract_text", in, a.pipeline.Extract)
}

func (a *Activities) DetectSectionsActivity(ctx context.Context, in UploadInput) (StepOutput, error) {
	return a.step(ctx, "detect_sections", in, a.pipeline.DetectSections)
}

func (a *Activities) BuildIndexActivity(ctx context.Context, in UploadInput) (StepOutput, error) {
	return a.step(ctx, "build_index", in, a.pipeline.BuildIndex)
}

func (a *Activities) FailUploadActivity(_ context.Context, in FailUploadInput) error {
	ref := service.UploadRef{SessionID: in.SessionID, UploadID: in.UploadID}
	err := a.pipeline.Fail(ref, errors.New(in.Reason))
	if errors.Is(err, util.ErrStaleUpload) || errors.Is(err, util.ErrUnknownSession) {
		log.Printf("skip failing superseded upload session_id=%s upload_id=%s step=%s", in.SessionID, in.UploadID, in.Step)
		return nil
	}
	return err
}

func (a *Activities) step(ctx context.Context, name string, in UploadInput, run func(context.Context, service.UploadRef) error) (StepOutput, error) {
	start := time.Now()
	if err := run(ctx, in.Ref()); err != nil {
		return StepOutput{}, toActivityError(err)
	}
	return StepOutput{Step: name, Duration: time.Since(start).Round(time.Millisecond).String()}, nil
}

// toActivityError marks errors that a retry cannot fix as non-retryable.
// Collaborator errors are returned as is and retried by the workflow policy.
func toActivityError(err error) error {
	switch {
	case errors.Is(err, util.ErrStaleUpload), errors.Is(err, util.ErrUnknownSession):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeStaleUpload, nil)
	case util.IsInputError(err):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInput, nil)
	default:
		return err
	}
}
