package workflows

import (
	"errors"
	"time"

	"paperlens/internal/activities"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetUploadStatus = "GetUploadStatus"

const (
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

var uploadSteps = []struct {
	name     string
	activity string
}{
	{"extract_text", "ExtractTextActivity"},
	{"detect_sections", "DetectSectionsActivity"},
	{"build_index", "BuildIndexActivity"},
}

// PaperUploadWorkflow runs the upload pipeline for one upload. A step that
// still fails after its retries fails the upload in the session; the workflow
// itself completes with StatusFailed.
func PaperUploadWorkflow(ctx workflow.Context, input UploadWorkflowInput) (string, error) {
	status := UploadProgress{
		SessionID:   input.SessionID,
		UploadID:    input.UploadID,
		CurrentStep: "init",
		Status:      StatusProcessing,
		Steps:       map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetUploadStatus, func() (UploadProgress, error) {
		return status, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	logger := workflow.GetLogger(ctx)
	in := activities.UploadInput{SessionID: input.SessionID, UploadID: input.UploadID}

	for _, step := range uploadSteps {
		status.CurrentStep = step.name
		status.Steps[step.name] = StatusProcessing
		var out activities.StepOutput
		err := workflow.ExecuteActivity(ctx, step.activity, in).Get(ctx, &out)
		if err == nil {
			status.Steps[step.name] = "done"
			continue
		}

		status.Steps[step.name] = StatusFailed
		status.Status = StatusFailed
		status.FailReason = failureMessage(err)
		if isStaleUpload(err) {
			logger.Info("upload superseded", "upload_id", input.UploadID, "step", step.name)
			return status.Status, nil
		}
		logger.Warn("upload step failed", "upload_id", input.UploadID, "step", step.name, "error", status.FailReason)
		failCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
			StartToCloseTimeout: 30 * time.Second,
			RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
		})
		if ferr := workflow.ExecuteActivity(failCtx, "FailUploadActivity", activities.FailUploadInput{
			SessionID: input.SessionID,
			UploadID:  input.UploadID,
			Step:      step.name,
			Reason:    status.FailReason,
		}).Get(ctx, nil); ferr != nil {
			return "", ferr
		}
		return status.Status, nil
	}

	status.CurrentStep = "done"
	status.Status = StatusReady
	return status.Status, nil
}

func failureMessage(err error) string {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Message()
	}
	return err.Error()
}

func isStaleUpload(err error) bool {
	var appErr *temporal.ApplicationError
	return errors.As(err, &appErr) && appErr.Type() == activities.ErrTypeStaleUpload
}
