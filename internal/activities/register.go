package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ExtractTextActivity)
	w.RegisterActivity(a.DetectSectionsActivity)
	w.RegisterActivity(a.BuildIndexActivity)
	w.RegisterActivity(a.FailUploadActivity)
}
