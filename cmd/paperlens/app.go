package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"paperlens/internal/config"
	"paperlens/internal/models"
	"paperlens/internal/providers"
	"paperlens/internal/service"
	"paperlens/internal/session"
	"paperlens/internal/storage"
	"paperlens/internal/workflows"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
)

type app struct {
	cfg     config.Config
	svc     *service.Service
	tracker *workflows.Runner
	closers []func()
}

func newApp(ctx context.Context) (*app, error) {
	var (
		cfg config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if runnerFlag != "" {
		cfg.Runner = strings.ToLower(runnerFlag)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	a := &app{cfg: cfg}

	var audit providers.Auditor = providers.NopAuditor{}
	if cfg.PostgresURL != "" {
		dbCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		db, err := storage.NewDB(dbCtx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.EnsureSchema(dbCtx); err != nil {
			a.Close()
			return nil, err
		}
		audit = storage.NewLLMAuditRepo(db.Pool)
	}

	pm, err := providers.NewManager(cfg, audit)
	if err != nil {
		a.Close()
		return nil, err
	}
	store := session.NewStore(cfg.SessionTTL)
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	a.closers = append(a.closers, stopJanitor)
	go store.RunJanitor(janitorCtx, cfg.JanitorInterval)

	a.svc = service.New(cfg, store, pm, pm)
	if cfg.Runner == config.RunnerTemporal {
		c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("dial temporal: %w", err)
		}
		a.closers = append(a.closers, c.Close)
		w, err := workflows.StartWorker(c, cfg.TemporalTaskQueue, a.svc)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("start temporal worker: %w", err)
		}
		a.closers = append(a.closers, w.Stop)
		a.tracker = workflows.NewRunner(c, cfg.TemporalTaskQueue)
		a.svc.SetRunner(a.tracker)
	}
	log.Printf("paperlens ready runner=%s llm_providers=%q embed_providers=%q policy=%s", cfg.Runner, cfg.LLMProviders, cfg.EmbedProviders, cfg.AnswerPolicy)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// load uploads the PDF at path into a fresh session and waits until it is
// ready, printing progress as the steps advance.
func (a *app) load(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	sessionID := uuid.NewString()
	st, err := a.svc.StartUpload(ctx, sessionID, data)
	if err != nil {
		return "", err
	}

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	lastStep := -1
	for {
		if st.Step != lastStep && st.State != models.StateFailed {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", st.Step, st.Total, st.Message)
			lastStep = st.Step
			a.logWorkflow(ctx, st.UploadID)
		}
		switch st.State {
		case models.StateReady:
			return sessionID, nil
		case models.StateFailed:
			return "", fmt.Errorf("upload failed while %s: %s", st.FailedStep, st.Error)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
			st = a.svc.PollStatus(sessionID)
		}
	}
}

func (a *app) logWorkflow(ctx context.Context, uploadID string) {
	if a.tracker == nil || uploadID == "" {
		return
	}
	p, err := a.tracker.Progress(ctx, uploadID)
	if err != nil {
		log.Printf("query upload workflow failed upload_id=%s err=%v", uploadID, err)
		return
	}
	log.Printf("upload workflow upload_id=%s step=%s status=%s steps=%v", uploadID, p.CurrentStep, p.Status, p.Steps)
}
