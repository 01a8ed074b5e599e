package mocks

import (
	"context"

	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
	"github.com/munchmtxi/realtime-gateway/internal/core/ports"
	"github.com/munchmtxi/realtime-gateway/internal/core/rooms"
	"github.com/stretchr/testify/mock"
)

// MockTransport is a mock implementation of ports.Transport
type MockTransport struct {
	mock.Mock
}

func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

func (m *MockTransport) Broadcast(room rooms.Key, envelope domain.Envelope) (int, error) {
	args := m.Called(room, envelope)
	return args.Int(0), args.Error(1)
}

// MockDispatchSink is a mock implementation of ports.DispatchSink
type MockDispatchSink struct {
	mock.Mock
}

func NewMockDispatchSink() *MockDispatchSink {
	return &MockDispatchSink{}
}

func (m *MockDispatchSink) Record(ctx context.Context, record domain.DispatchRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockEmitter is a mock implementation of ports.Emitter
type MockEmitter struct {
	mock.Mock
}

func NewMockEmitter() *MockEmitter {
	return &MockEmitter{}
}

func (m *MockEmitter) Emit(ctx context.Context, event string, payload interface{}, target ports.Target, opts ...ports.EmitOption) ports.Outcome {
	args := m.Called(ctx, event, payload, target)
	return args.Get(0).(ports.Outcome)
}
