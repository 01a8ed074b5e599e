package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/munchmtxi/realtime-gateway/internal/core/catalog"
	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
	apperrors "github.com/munchmtxi/realtime-gateway/internal/core/errors"
	"github.com/munchmtxi/realtime-gateway/internal/core/mocks"
	"github.com/munchmtxi/realtime-gateway/internal/core/ports"
	"github.com/munchmtxi/realtime-gateway/internal/core/rooms"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEmit_DeliversToResolvedRoom(t *testing.T) {
	transport := mocks.NewMockTransport()
	sink := mocks.NewMockDispatchSink()
	d := New(transport, testLogger(), sink)

	transport.On("Broadcast", rooms.Key("ride:7"), mock.MatchedBy(func(env domain.Envelope) bool {
		return env.Event == catalog.RideUpdated && env.Room == "ride:7"
	})).Return(2, nil)
	sink.On("Record", mock.Anything, mock.Anything).Return(nil)

	out := d.Emit(context.Background(), catalog.RideUpdated, map[string]any{"status": "en_route"}, ports.ToRoom("ride:7"))

	assert.True(t, out.Delivered)
	assert.Equal(t, 2, out.Recipients)
	assert.Equal(t, []rooms.Key{"ride:7"}, out.Rooms)
	assert.NoError(t, out.Err)
	transport.AssertExpectations(t)
	sink.AssertExpectations(t)
}

func TestEmit_ToUserResolvesPersonalRoom(t *testing.T) {
	transport := mocks.NewMockTransport()
	d := New(transport, testLogger())

	transport.On("Broadcast", rooms.Key("customer:42"), mock.Anything).Return(1, nil)

	out := d.Emit(context.Background(), catalog.WalletFundsAdded, nil, ports.ToUser(domain.RoleCustomer, 42))

	assert.True(t, out.Delivered)
	assert.Equal(t, []rooms.Key{"customer:42"}, out.Rooms)
	transport.AssertExpectations(t)
}

func TestEmit_EmptyRoomIsDeliveredWithZeroRecipients(t *testing.T) {
	transport := mocks.NewMockTransport()
	d := New(transport, testLogger())

	transport.On("Broadcast", rooms.Key("ride:999"), mock.Anything).Return(0, nil)

	out := d.Emit(context.Background(), catalog.RideUpdated, nil, ports.ToRoom("ride:999"))

	// An empty room is a successful no-op, not a failure.
	assert.True(t, out.Delivered)
	assert.Zero(t, out.Recipients)
	assert.NoError(t, out.Err)
}

func TestEmit_UnknownEventFailsWithoutTouchingTransport(t *testing.T) {
	transport := mocks.NewMockTransport()
	sink := mocks.NewMockDispatchSink()
	d := New(transport, testLogger(), sink)

	sink.On("Record", mock.Anything, mock.MatchedBy(func(rec domain.DispatchRecord) bool {
		return !rec.Delivered && rec.Reason != ""
	})).Return(nil)

	out := d.Emit(context.Background(), "ride:teleported", nil, ports.ToRoom("ride:7"))

	assert.False(t, out.Delivered)
	require.Error(t, out.Err)
	assert.ErrorIs(t, out.Err, apperrors.ErrUnknownEvent)
	transport.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
	sink.AssertExpectations(t)
}

func TestEmit_UnresolvableTargetFails(t *testing.T) {
	transport := mocks.NewMockTransport()
	d := New(transport, testLogger())

	out := d.Emit(context.Background(), catalog.RideUpdated, nil, ports.ToUser(domain.Role("superuser"), 1))

	assert.False(t, out.Delivered)
	assert.ErrorIs(t, out.Err, apperrors.ErrInvalidAddress)
	transport.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
}

func TestEmit_TransportErrorIsCaught(t *testing.T) {
	transport := mocks.NewMockTransport()
	d := New(transport, testLogger())

	transport.On("Broadcast", rooms.Key("chat:9"), mock.Anything).Return(0, errors.New("connection reset"))

	out := d.Emit(context.Background(), catalog.ChatMessageSent, nil, ports.ToRoom("chat:9"))

	assert.False(t, out.Delivered)
	require.Error(t, out.Err)
	var failure *apperrors.DeliveryFailure
	assert.ErrorAs(t, out.Err, &failure)
	assert.Equal(t, "chat:9", failure.Room)
}

func TestEmit_MultiRoomAggregatesRecipientsAndFirstError(t *testing.T) {
	transport := mocks.NewMockTransport()
	d := New(transport, testLogger())

	transport.On("Broadcast", rooms.Key("ride:1"), mock.Anything).Return(3, nil)
	transport.On("Broadcast", rooms.Key("ride:2"), mock.Anything).Return(0, errors.New("boom"))
	transport.On("Broadcast", rooms.Key("ride:3"), mock.Anything).Return(1, nil)

	out := d.Emit(context.Background(), catalog.RideUpdated, nil, ports.ToRooms("ride:1", "ride:2", "ride:3"))

	// All rooms are attempted even after a failure; recipients accumulate.
	assert.False(t, out.Delivered)
	assert.Equal(t, 4, out.Recipients)
	assert.Len(t, out.Rooms, 3)
	transport.AssertExpectations(t)
}

type panickyTransport struct{}

func (panickyTransport) Broadcast(rooms.Key, domain.Envelope) (int, error) {
	panic("transport exploded")
}

func TestEmit_RecoversFromTransportPanic(t *testing.T) {
	d := New(panickyTransport{}, testLogger())

	var out ports.Outcome
	assert.NotPanics(t, func() {
		out = d.Emit(context.Background(), catalog.RideUpdated, nil, ports.ToRoom("ride:7"))
	})

	assert.False(t, out.Delivered)
	require.Error(t, out.Err)
	var failure *apperrors.DeliveryFailure
	assert.ErrorAs(t, out.Err, &failure)
}

func TestEmit_SinkFailureDoesNotAffectOutcome(t *testing.T) {
	transport := mocks.NewMockTransport()
	sink := mocks.NewMockDispatchSink()
	d := New(transport, testLogger(), sink)

	transport.On("Broadcast", rooms.Key("ride:7"), mock.Anything).Return(1, nil)
	sink.On("Record", mock.Anything, mock.Anything).Return(errors.New("database down"))

	out := d.Emit(context.Background(), catalog.RideUpdated, nil, ports.ToRoom("ride:7"))

	assert.True(t, out.Delivered)
	assert.NoError(t, out.Err)
}

func TestEmit_LanguageOptionTagsEnvelope(t *testing.T) {
	transport := mocks.NewMockTransport()
	d := New(transport, testLogger())

	transport.On("Broadcast", rooms.Key("customer:5"), mock.MatchedBy(func(env domain.Envelope) bool {
		return env.Language == "sw"
	})).Return(1, nil)

	out := d.Emit(context.Background(), catalog.WalletFundsAdded, nil,
		ports.ToUser(domain.RoleCustomer, 5), ports.WithLanguage("sw"))

	assert.True(t, out.Delivered)
	transport.AssertExpectations(t)
}

func TestLogSink_RecordNeverFails(t *testing.T) {
	sink := NewLogSink(testLogger())

	err := sink.Record(context.Background(), domain.DispatchRecord{
		Event:     catalog.RideUpdated,
		Rooms:     []string{"ride:7"},
		Delivered: true,
	})
	assert.NoError(t, err)

	err = sink.Record(context.Background(), domain.DispatchRecord{
		Event:  "ride:teleported",
		Reason: "unknown event",
	})
	assert.NoError(t, err)
}
