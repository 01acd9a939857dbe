package workflows

import (
	"paperlens/internal/activities"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func Register(w worker.Worker) {
	w.RegisterWorkflow(PaperUploadWorkflow)
}

// StartWorker starts a worker for the upload workflow and its activities. It
// must run in the process that owns the session store.
func StartWorker(c client.Client, taskQueue string, p activities.Pipeline) (worker.Worker, error) {
	w := worker.New(c, taskQueue, worker.Options{})
	Register(w)
	activities.Register(w, activities.New(p))
	if err := w.Start(); err != nil {
		return nil, err
	}
	return w, nil
}
