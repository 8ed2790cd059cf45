package phonecall

import (
	"context"
	"testing"

	"github.com/FrostGod/EventDash/call"
	"github.com/FrostGod/EventDash/telephony"
	"github.com/FrostGod/EventDash/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPlacer struct {
	mock.Mock
}

func (m *mockPlacer) Place(ctx context.Context, req telephony.CallRequest) (call.Result, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(call.Result), args.Error(1)
}

func TestPhoneCallTool(t *testing.T) {
	t.Run("places the parsed call", func(t *testing.T) {
		placer := &mockPlacer{}
		placer.On("Place", mock.Anything, telephony.CallRequest{
			To:             "+15551234567",
			From:           "+15550000000",
			Prompt:         "the assistant is greeting the caller",
			InitialMessage: "hello there",
		}).Return(call.Result{State: call.Completed, Transcript: "hi, who is this?"}, nil).Once()

		tl := New(placer, "+15550000000")
		assert.Equal(t, "call_phone_number", tl.Name())

		out, err := tl.Invoke(context.Background(), "+15551234567|the assistant is greeting the caller|hello there")
		require.NoError(t, err)
		assert.Equal(t, "hi, who is this?", out)
		placer.AssertExpectations(t)
	})

	t.Run("rejects malformed input without calling", func(t *testing.T) {
		placer := &mockPlacer{}
		_, err := New(placer, "+1").Invoke(context.Background(), "+15551234567")
		assert.ErrorIs(t, err, telephony.ErrInvalidCallRequest)
		placer.AssertNotCalled(t, "Place", mock.Anything, mock.Anything)
	})

	t.Run("reports the terminal state", func(t *testing.T) {
		placer := &mockPlacer{}
		placer.On("Place", mock.Anything, mock.Anything).
			Return(call.Result{State: call.TimedOut}, types.ErrTranscriptTimeout).Once()

		_, err := New(placer, "+1").Invoke(context.Background(), "+15551234567|p|o")
		require.ErrorIs(t, err, types.ErrTranscriptTimeout)
		assert.Contains(t, err.Error(), "TIMED_OUT")
	})
}
