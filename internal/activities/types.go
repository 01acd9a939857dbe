package activities

import "paperlens/internal/service"

// UploadInput addresses the upload an activity works on. The document itself
// stays in the session store of the worker process.
type UploadInput struct {
	SessionID string `json:"session_id"`
	UploadID  string `json:"upload_id"`
}

func (in UploadInput) Ref() service.UploadRef {
	return service.UploadRef{SessionID: in.SessionID, UploadID: in.UploadID}
}

type FailUploadInput struct {
	SessionID string `json:"session_id"`
	UploadID  string `json:"upload_id"`
	Step      string `json:"step"`
	Reason    string `json:"reason"`
}

type StepOutput struct {
	Step     string `json:"step"`
	Duration string `json:"duration"`
}
