package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/FrostGod/EventDash/call"
	"github.com/FrostGod/EventDash/config"
	"github.com/FrostGod/EventDash/telephony"
	"github.com/FrostGod/EventDash/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

type mockPlacer struct {
	mock.Mock
}

func (m *mockPlacer) Place(ctx context.Context, req telephony.CallRequest) (call.Result, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(call.Result), args.Error(1)
}

var testRequest = telephony.CallRequest{
	To:             "+15551234567",
	From:           "+15550000000",
	Prompt:         "the assistant is asking about availability",
	InitialMessage: "hi there",
}

func newTestEnv(t *testing.T, placer call.Placer) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()
	env.SetTestTimeout(time.Minute)
	Register(env, NewActivities(placer))
	return env
}

func TestPlaceCallWorkflow(t *testing.T) {
	t.Run("returns the transcript", func(t *testing.T) {
		placer := &mockPlacer{}
		placer.On("Place", mock.Anything, testRequest).Return(call.Result{
			ConversationID: "c1",
			SID:            "CA1",
			Transcript:     "we are free on June 3rd",
			State:          call.Completed,
		}, nil).Once()

		env := newTestEnv(t, placer)
		env.ExecuteWorkflow(WorkflowName, PlaceCallInput{Request: testRequest, WaitTimeout: time.Minute})

		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())
		var res call.Result
		require.NoError(t, env.GetWorkflowResult(&res))
		assert.Equal(t, "we are free on June 3rd", res.Transcript)
		assert.Equal(t, call.Completed, res.State)
		placer.AssertExpectations(t)
	})

	t.Run("failed calls are not retried", func(t *testing.T) {
		placer := &mockPlacer{}
		placer.On("Place", mock.Anything, testRequest).Return(call.Result{
			ConversationID: "c2",
			State:          call.TimedOut,
		}, types.ErrTranscriptTimeout).Once()

		env := newTestEnv(t, placer)
		env.ExecuteWorkflow(WorkflowName, PlaceCallInput{Request: testRequest})

		require.True(t, env.IsWorkflowCompleted())
		err := env.GetWorkflowError()
		require.Error(t, err)

		var appErr *temporal.ApplicationError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "TIMED_OUT", appErr.Type())
		assert.True(t, appErr.NonRetryable())

		res, ok := resultFromError(err)
		require.True(t, ok)
		assert.Equal(t, "c2", res.ConversationID)
		assert.Equal(t, call.TimedOut, res.State)
		placer.AssertNumberOfCalls(t, "Place", 1)
	})
}

func TestPlaceCallUsesCallerWaitBound(t *testing.T) {
	// The worker's orchestrator is configured for a longer wait than the caller asked for.
	hasCallerBound := mock.MatchedBy(func(ctx context.Context) bool {
		d, ok := call.WaitTimeoutFromContext(ctx)
		return ok && d == time.Minute
	})
	placer := &mockPlacer{}
	placer.On("Place", hasCallerBound, testRequest).Return(call.Result{
		ConversationID: "c3",
		State:          call.TimedOut,
	}, types.ErrTranscriptTimeout).Once()

	env := newTestEnv(t, placer)
	env.ExecuteWorkflow(WorkflowName, PlaceCallInput{Request: testRequest, WaitTimeout: time.Minute})

	require.True(t, env.IsWorkflowCompleted())
	res, ok := resultFromError(env.GetWorkflowError())
	require.True(t, ok)
	assert.Equal(t, call.TimedOut, res.State)
	placer.AssertExpectations(t)
}

func TestActivityTimeout(t *testing.T) {
	assert.Equal(t, 12*time.Minute, activityTimeout(10*time.Minute))
	assert.Equal(t, 24*time.Hour, activityTimeout(0))
}

func TestClientPlace(t *testing.T) {
	cfg := config.Temporal{TaskQueue: "calls"}
	transcripts := config.Transcript{WaitTimeout: 5 * time.Minute}
	isOptions := mock.MatchedBy(func(o client.StartWorkflowOptions) bool {
		return o.TaskQueue == "calls" && o.RetryPolicy != nil && o.RetryPolicy.MaximumAttempts == 1
	})
	isInput := mock.MatchedBy(func(in PlaceCallInput) bool {
		return in.Request == testRequest && in.WaitTimeout == 5*time.Minute
	})

	t.Run("waits for the workflow", func(t *testing.T) {
		run := &mocks.WorkflowRun{}
		run.On("GetID").Return("call-1")
		run.On("GetRunID").Return("run-1")
		run.On("Get", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			*args.Get(1).(*call.Result) = call.Result{ConversationID: "c1", Transcript: "hello", State: call.Completed}
		})
		tc := &mocks.Client{}
		tc.On("ExecuteWorkflow", mock.Anything, isOptions, WorkflowName, isInput).Return(run, nil).Once()

		res, err := NewClient(tc, cfg, transcripts).Place(context.Background(), testRequest)
		require.NoError(t, err)
		assert.Equal(t, "hello", res.Transcript)
		tc.AssertExpectations(t)
	})

	t.Run("maps a timed out call", func(t *testing.T) {
		run := &mocks.WorkflowRun{}
		run.On("GetID").Return("call-2")
		run.On("GetRunID").Return("run-2")
		run.On("Get", mock.Anything, mock.Anything).Return(
			temporal.NewNonRetryableApplicationError("no transcript", "TIMED_OUT", types.ErrTranscriptTimeout,
				call.Result{ConversationID: "c2", State: call.TimedOut}),
		)
		tc := &mocks.Client{}
		tc.On("ExecuteWorkflow", mock.Anything, isOptions, WorkflowName, isInput).Return(run, nil).Once()

		res, err := NewClient(tc, cfg, transcripts).Place(context.Background(), testRequest)
		assert.ErrorIs(t, err, types.ErrTranscriptTimeout)
		assert.Equal(t, call.TimedOut, res.State)
		assert.Equal(t, "c2", res.ConversationID)
	})

	t.Run("start failure", func(t *testing.T) {
		boom := errors.New("temporal unreachable")
		tc := &mocks.Client{}
		tc.On("ExecuteWorkflow", mock.Anything, isOptions, WorkflowName, isInput).Return(nil, boom).Once()

		res, err := NewClient(tc, cfg, transcripts).Place(context.Background(), testRequest)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, call.Failed, res.State)
	})
}
