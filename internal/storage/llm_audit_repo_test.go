package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"paperlens/internal/providers"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	sql  string
	args []any
}

type fakeExecer struct {
	calls []execCall
	err   error
}

func (f *fakeExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), f.err
}

func TestInsertWritesCallRecord(t *testing.T) {
	db := &fakeExecer{}
	repo := NewLLMAuditRepo(db)
	err := repo.Insert(context.Background(), providers.CallRecord{
		Operation: "answer",
		Provider:  "groq",
		Model:     "llama-3.1-8b-instant",
		Status:    "error",
		ErrorType: "rate_limit",
		Latency:   1500 * time.Millisecond,
	})
	require.NoError(t, err)
	require.Len(t, db.calls, 1)
	require.True(t, strings.Contains(db.calls[0].sql, "INSERT INTO llm_calls"))

	args := db.calls[0].args
	require.Len(t, args, 7)
	_, err = uuid.Parse(args[0].(string))
	require.NoError(t, err)
	require.Equal(t, []any{"answer", "groq", "llama-3.1-8b-instant", "error", "rate_limit", int64(1500)}, args[1:])
}

func TestRecordCallSwallowsErrors(t *testing.T) {
	db := &fakeExecer{err: errors.New("connection refused")}
	var auditor providers.Auditor = NewLLMAuditRepo(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	auditor.RecordCall(ctx, providers.CallRecord{Operation: "index", Provider: "mock", Status: "ok"})
	require.Len(t, db.calls, 1)
}
