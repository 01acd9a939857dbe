package activities

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"paperlens/internal/service"
	"paperlens/internal/util"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
)

type pipelineMock struct {
	mock.Mock
}

func (m *pipelineMock) Extract(ctx context.Context, ref service.UploadRef) error {
	return m.Called(ctx, ref).Error(0)
}

func (m *pipelineMock) DetectSections(ctx context.Context, ref service.UploadRef) error {
	return m.Called(ctx, ref).Error(0)
}

func (m *pipelineMock) BuildIndex(ctx context.Context, ref service.UploadRef) error {
	return m.Called(ctx, ref).Error(0)
}

func (m *pipelineMock) Fail(ref service.UploadRef, cause error) error {
	return m.Called(ref, cause).Error(0)
}

var ref = service.UploadRef{SessionID: "s1", UploadID: "u1"}

func TestStepActivitiesCallPipeline(t *testing.T) {
	p := &pipelineMock{}
	p.On("Extract", mock.Anything, ref).Return(nil).Once()
	p.On("DetectSections", mock.Anything, ref).Return(nil).Once()
	p.On("BuildIndex", mock.Anything, ref).Return(nil).Once()
	a := New(p)
	in := UploadInput{SessionID: "s1", UploadID: "u1"}

	out, err := a.ExtractTextActivity(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, "extract_text", out.Step)
	_, err = a.DetectSectionsActivity(context.Background(), in)
	require.NoError(t, err)
	out, err = a.BuildIndexActivity(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, "build_index", out.Step)
	p.AssertExpectations(t)
}

func TestInputErrorsAreNotRetried(t *testing.T) {
	p := &pipelineMock{}
	p.On("Extract", mock.Anything, ref).Return(fmt.Errorf("%w: missing header", util.ErrUnsupportedFormat)).Once()
	_, err := New(p).ExtractTextActivity(context.Background(), UploadInput{SessionID: "s1", UploadID: "u1"})

	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	require.True(t, appErr.NonRetryable())
	require.Equal(t, ErrTypeInput, appErr.Type())
	require.Contains(t, appErr.Error(), "unsupported document format")
}

func TestCollaboratorErrorsAreRetried(t *testing.T) {
	boom := fmt.Errorf("%w: rate limited", util.ErrEmbeddingService)
	p := &pipelineMock{}
	p.On("BuildIndex", mock.Anything, ref).Return(boom).Once()
	_, err := New(p).BuildIndexActivity(context.Background(), UploadInput{SessionID: "s1", UploadID: "u1"})
	require.ErrorIs(t, err, util.ErrEmbeddingService)

	var appErr *temporal.ApplicationError
	require.False(t, errors.As(err, &appErr))
}

func TestStaleUploadIsNonRetryable(t *testing.T) {
	err := toActivityError(fmt.Errorf("%w: u1", util.ErrStaleUpload))
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	require.True(t, appErr.NonRetryable())
	require.Equal(t, ErrTypeStaleUpload, appErr.Type())
}

func TestFailUploadActivity(t *testing.T) {
	p := &pipelineMock{}
	p.On("Fail", ref, mock.MatchedBy(func(err error) bool { return err.Error() == "embedding service error" })).Return(nil).Once()
	a := New(p)
	require.NoError(t, a.FailUploadActivity(context.Background(), FailUploadInput{SessionID: "s1", UploadID: "u1", Step: "build_index", Reason: "embedding service error"}))

	other := service.UploadRef{SessionID: "s1", UploadID: "old"}
	p.On("Fail", other, mock.Anything).Return(fmt.Errorf("%w: old", util.ErrStaleUpload)).Once()
	require.NoError(t, a.FailUploadActivity(context.Background(), FailUploadInput{SessionID: "s1", UploadID: "old", Reason: "x"}))
	p.AssertExpectations(t)
}
