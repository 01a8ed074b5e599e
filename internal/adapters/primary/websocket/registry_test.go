package websocket

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/munchmtxi/realtime-gateway/internal/core/catalog"
	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
	"github.com/munchmtxi/realtime-gateway/internal/core/mocks"
	"github.com/munchmtxi/realtime-gateway/internal/core/ports"
	"github.com/munchmtxi/realtime-gateway/internal/core/rooms"
)

// targetResolvesTo matches an emit target by its resolved room keys.
func targetResolvesTo(keys ...rooms.Key) interface{} {
	return mock.MatchedBy(func(target ports.Target) bool {
		resolved, err := target.Resolve()
		if err != nil || len(resolved) != len(keys) {
			return false
		}
		for i, key := range keys {
			if resolved[i] != key {
				return false
			}
		}
		return true
	})
}

func newTestRegistry(t *testing.T) (*Registry, *mocks.MockEmitter, *Hub) {
	t.Helper()
	emitter := mocks.NewMockEmitter()
	registry := NewRegistry(emitter, testLogger())
	hub := NewHub(testLogger())
	return registry, emitter, hub
}

func registeredClient(t *testing.T, hub *Hub, registry *Registry, role domain.Role, userID int64) *Client {
	t.Helper()
	client := NewClient(hub, registry, nil, domain.Identity{Role: role, UserID: userID}, testLogger())
	require.NoError(t, hub.Register(client))
	return client
}

func TestHandleMessage_PingRepliesWithPong(t *testing.T) {
	registry, _, hub := newTestRegistry(t)
	client := registeredClient(t, hub, registry, domain.RoleCustomer, 1)

	registry.HandleMessage(context.Background(), client, []byte(`{"type":"ping"}`))

	envs := drain(client)
	require.Len(t, envs, 1)
	assert.Equal(t, "pong", envs[0].Event)
}

func TestHandleMessage_JoinRideRoom(t *testing.T) {
	registry, _, hub := newTestRegistry(t)
	client := registeredClient(t, hub, registry, domain.RoleCustomer, 42)

	registry.HandleMessage(context.Background(), client,
		[]byte(`{"type":"joinRideRoom","payload":{"rideId":7}}`))

	assert.True(t, client.InRoom(rooms.Key("ride:7")))
	assert.Equal(t, 1, hub.RoomSize(rooms.Key("ride:7")))
}

func TestHandleMessage_LeaveRideRoom(t *testing.T) {
	registry, _, hub := newTestRegistry(t)
	client := registeredClient(t, hub, registry, domain.RoleDriver, 9)

	registry.HandleMessage(context.Background(), client,
		[]byte(`{"type":"joinRideRoom","payload":{"rideId":7}}`))
	registry.HandleMessage(context.Background(), client,
		[]byte(`{"type":"leaveRideRoom","payload":{"rideId":7}}`))

	assert.False(t, client.InRoom(rooms.Key("ride:7")))
}

func TestHandleMessage_JoinCancellationRoom(t *testing.T) {
	registry, _, hub := newTestRegistry(t)
	client := registeredClient(t, hub, registry, domain.RoleCustomer, 1)

	registry.HandleMessage(context.Background(), client,
		[]byte(`{"type":"joinCancellationRoom","payload":{"serviceType":"mpark","serviceId":123}}`))

	assert.True(t, client.InRoom(rooms.Key("cancellation:mpark:123")))
}

func TestHandleMessage_JoinCancellationRoom_RejectsUnknownService(t *testing.T) {
	registry, _, hub := newTestRegistry(t)
	client := registeredClient(t, hub, registry, domain.RoleCustomer, 1)
	before := len(client.Memberships())

	registry.HandleMessage(context.Background(), client,
		[]byte(`{"type":"joinCancellationRoom","payload":{"serviceType":"teleport","serviceId":123}}`))

	assert.Len(t, client.Memberships(), before)
}

func TestHandleMessage_ValidationFailureSkipsDispatch(t *testing.T) {
	registry, emitter, hub := newTestRegistry(t)
	client := registeredClient(t, hub, registry, domain.RoleDriver, 9)

	// Missing rideId fails the required,gt=0 rule; nothing is emitted.
	registry.HandleMessage(context.Background(), client,
		[]byte(`{"type":"locationUpdated","payload":{"lat":1.5,"lng":2.5}}`))

	emitter.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleMessage_ChatMessageRelayTagsSender(t *testing.T) {
	registry, emitter, hub := newTestRegistry(t)
	client := registeredClient(t, hub, registry, domain.RoleCustomer, 42)
	client.Identity.PreferredLanguage = "sw"

	emitter.On("Emit", mock.Anything, catalog.ChatMessageSent,
		mock.MatchedBy(func(payload interface{}) bool {
			m, ok := payload.(map[string]interface{})
			return ok && m["senderId"] == int64(42) && m["message"] == "karibu"
		}),
		targetResolvesTo(rooms.Key("chat:3")),
	).Return(ports.Outcome{Delivered: true})

	registry.HandleMessage(context.Background(), client,
		[]byte(`{"type":"chatMessage","payload":{"chatId":3,"message":"karibu"}}`))

	emitter.AssertExpectations(t)
}

func TestHandleMessage_TipSentTargetsDriverPersonalRoom(t *testing.T) {
	registry, emitter, hub := newTestRegistry(t)
	client := registeredClient(t, hub, registry, domain.RoleCustomer, 42)

	emitter.On("Emit", mock.Anything, catalog.DriverTipReceived, mock.Anything,
		targetResolvesTo(rooms.Key("driver:9")),
	).Return(ports.Outcome{Delivered: true})

	registry.HandleMessage(context.Background(), client,
		[]byte(`{"type":"tipSent","payload":{"rideId":7,"driverId":9,"amount":3.5}}`))

	emitter.AssertExpectations(t)
}

func TestHandleMessage_RequestCancellationTargetsCompositeRoom(t *testing.T) {
	registry, emitter, hub := newTestRegistry(t)
	client := registeredClient(t, hub, registry, domain.RoleCustomer, 42)

	emitter.On("Emit", mock.Anything, catalog.CancellationRequested, mock.Anything,
		targetResolvesTo(rooms.Key("cancellation:munch:55")),
	).Return(ports.Outcome{Delivered: true})

	registry.HandleMessage(context.Background(), client,
		[]byte(`{"type":"requestCancellation","payload":{"serviceType":"munch","serviceId":55,"reason":"late"}}`))

	emitter.AssertExpectations(t)
}

func TestHandleMessage_OrderStatusUpdatedEmitsTwice(t *testing.T) {
	registry, emitter, hub := newTestRegistry(t)
	client := registeredClient(t, hub, registry, domain.RoleMerchant, 12)

	emitter.On("Emit", mock.Anything, catalog.OrderStatusChanged, mock.Anything,
		targetResolvesTo(rooms.Key("order:88")),
	).Return(ports.Outcome{Delivered: true})
	emitter.On("Emit", mock.Anything, catalog.CustomerOrderStatusUpdated, mock.Anything,
		targetResolvesTo(rooms.Key("customer:42")),
	).Return(ports.Outcome{Delivered: true})

	registry.HandleMessage(context.Background(), client,
		[]byte(`{"type":"orderStatusUpdated","payload":{"orderId":88,"customerId":42,"status":"preparing"}}`))

	emitter.AssertExpectations(t)
}

func TestHandleMessage_RoleScopedListenerUnavailableToOtherRoles(t *testing.T) {
	registry, emitter, hub := newTestRegistry(t)
	customer := registeredClient(t, hub, registry, domain.RoleCustomer, 1)

	// locationUpdated is a driver listener; for a customer it is an unknown
	// type and the message is dropped.
	registry.HandleMessage(context.Background(), customer,
		[]byte(`{"type":"locationUpdated","payload":{"rideId":7,"lat":1,"lng":2}}`))

	emitter.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleMessage_UnknownTypeIsDropped(t *testing.T) {
	registry, emitter, hub := newTestRegistry(t)
	client := registeredClient(t, hub, registry, domain.RoleCustomer, 1)

	assert.NotPanics(t, func() {
		registry.HandleMessage(context.Background(), client, []byte(`{"type":"selfDestruct"}`))
	})
	emitter.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleMessage_MalformedJSONIsDropped(t *testing.T) {
	registry, _, hub := newTestRegistry(t)
	client := registeredClient(t, hub, registry, domain.RoleCustomer, 1)

	assert.NotPanics(t, func() {
		registry.HandleMessage(context.Background(), client, []byte(`{not json`))
	})
}

func TestHandleMessage_RecoversFromListenerPanic(t *testing.T) {
	registry, _, hub := newTestRegistry(t)
	client := registeredClient(t, hub, registry, domain.RoleCustomer, 1)

	registry.onAll("explode", func(ctx context.Context, c *Client, raw json.RawMessage) {
		panic("listener bug")
	})

	assert.NotPanics(t, func() {
		registry.HandleMessage(context.Background(), client, []byte(`{"type":"explode"}`))
	})
}

func TestRegistry_DuplicateListenerPanics(t *testing.T) {
	registry, _, _ := newTestRegistry(t)

	assert.Panics(t, func() {
		registry.onAll("ping", func(ctx context.Context, c *Client, raw json.RawMessage) {})
	})
	assert.Panics(t, func() {
		registry.on(domain.RoleCustomer, "tipSent", func(ctx context.Context, c *Client, raw json.RawMessage) {})
	})
}
