package workflows

import (
	"context"
	"fmt"

	"paperlens/internal/service"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
)

var _ service.UploadRunner = (*Runner)(nil)

// Runner starts one PaperUploadWorkflow per upload.
type Runner struct {
	client    client.Client
	taskQueue string
}

func NewRunner(c client.Client, taskQueue string) *Runner {
	return &Runner{client: c, taskQueue: taskQueue}
}

func WorkflowID(uploadID string) string {
	return "upload-" + uploadID
}

func (r *Runner) Run(ctx context.Context, ref service.UploadRef) error {
	_, err := r.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                                       WorkflowID(ref.UploadID),
		TaskQueue:                                r.taskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, PaperUploadWorkflow, UploadWorkflowInput{SessionID: ref.SessionID, UploadID: ref.UploadID})
	if err != nil {
		return fmt.Errorf("start upload workflow: %w", err)
	}
	return nil
}

// Progress queries the workflow of an upload for its step map.
func (r *Runner) Progress(ctx context.Context, uploadID string) (UploadProgress, error) {
	resp, err := r.client.QueryWorkflow(ctx, WorkflowID(uploadID), "", QueryGetUploadStatus)
	if err != nil {
		return UploadProgress{}, fmt.Errorf("query upload workflow: %w", err)
	}
	var p UploadProgress
	if err := resp.Get(&p); err != nil {
		return UploadProgress{}, fmt.Errorf("decode upload progress: %w", err)
	}
	return p, nil
}
