package workflows

type UploadWorkflowInput struct {
	SessionID string `json:"session_id"`
	UploadID  string `json:"upload_id"`
}

// UploadProgress is returned by the GetUploadStatus query.
type UploadProgress struct {
	SessionID   string            `json:"session_id"`
	UploadID    string            `json:"upload_id"`
	CurrentStep string            `json:"current_step"`
	Status      string            `json:"status"`
	FailReason  string            `json:"fail_reason,omitempty"`
	Steps       map[string]string `json:"steps"`
}
