package websocket

import (
	"context"
	"encoding/json"

	"github.com/munchmtxi/realtime-gateway/internal/core/catalog"
	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
	"github.com/munchmtxi/realtime-gateway/internal/core/ports"
	"github.com/munchmtxi/realtime-gateway/internal/core/rooms"
)

// Static event references resolve through MustEvent, so a listener emitting
// a name that drifted from the catalog fails at process start instead of
// producing unroutable dispatches.
var (
	evtRideLocationUpdated   = catalog.MustEvent(catalog.RideLocationUpdated)
	evtRideUpdated           = catalog.MustEvent(catalog.RideUpdated)
	evtChatMessageSent       = catalog.MustEvent(catalog.ChatMessageSent)
	evtChatTyping            = catalog.MustEvent(catalog.ChatTyping)
	evtTipReceived           = catalog.MustEvent(catalog.DriverTipReceived)
	evtOrderStatusChanged    = catalog.MustEvent(catalog.OrderStatusChanged)
	evtCustomerOrderStatus   = catalog.MustEvent(catalog.CustomerOrderStatusUpdated)
	evtBookingUpdated        = catalog.MustEvent(catalog.BookingUpdated)
	evtTicketUpdated         = catalog.MustEvent(catalog.TicketUpdated)
	evtCancellationRequested = catalog.MustEvent(catalog.CancellationRequested)
	evtPoliciesUpdated       = catalog.MustEvent(catalog.MerchantReservationPoliciesUpdated)
	evtAnnouncement          = catalog.MustEvent(catalog.AdminPlatformAnnouncement)
)

// Inbound payload shapes. Required correlation fields are enforced here;
// everything else about the payload is the caller's contract.

type ridePayload struct {
	RideID int64 `json:"rideId" validate:"required,gt=0"`
}

type chatPayload struct {
	ChatID int64 `json:"chatId" validate:"required,gt=0"`
}

type orderPayload struct {
	OrderID int64 `json:"orderId" validate:"required,gt=0"`
}

type bookingPayload struct {
	BookingID int64 `json:"bookingId" validate:"required,gt=0"`
}

type ticketPayload struct {
	TicketID int64 `json:"ticketId" validate:"required,gt=0"`
}

type cancellationRoomPayload struct {
	ServiceType string `json:"serviceType" validate:"required,oneof=ride munch mtables mpark"`
	ServiceID   int64  `json:"serviceId" validate:"required,gt=0"`
}

type locationPayload struct {
	RideID int64   `json:"rideId" validate:"required,gt=0"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

type rideStatusPayload struct {
	RideID int64  `json:"rideId" validate:"required,gt=0"`
	Status string `json:"status" validate:"required"`
}

type chatMessagePayload struct {
	ChatID  int64  `json:"chatId" validate:"required,gt=0"`
	Message string `json:"message" validate:"required,max=2000"`
}

type tipPayload struct {
	RideID   int64   `json:"rideId" validate:"required,gt=0"`
	DriverID int64   `json:"driverId" validate:"required,gt=0"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}

type orderStatusPayload struct {
	OrderID    int64  `json:"orderId" validate:"required,gt=0"`
	CustomerID int64  `json:"customerId" validate:"required,gt=0"`
	Status     string `json:"status" validate:"required"`
}

type bookingStatusPayload struct {
	BookingID int64  `json:"bookingId" validate:"required,gt=0"`
	Status    string `json:"status" validate:"required"`
}

type ticketStatusPayload struct {
	TicketID int64  `json:"ticketId" validate:"required,gt=0"`
	Status   string `json:"status" validate:"required"`
}

type cancellationRequestPayload struct {
	ServiceType string `json:"serviceType" validate:"required,oneof=ride munch mtables mpark"`
	ServiceID   int64  `json:"serviceId" validate:"required,gt=0"`
	Reason      string `json:"reason" validate:"max=500"`
}

type policiesUpdatedPayload struct {
	MerchantID int64 `json:"merchantId" validate:"required,gt=0"`
}

type announcementPayload struct {
	AdminID int64  `json:"adminId" validate:"required,gt=0"`
	Message string `json:"message" validate:"required,max=1000"`
}

func (r *Registry) registerShared() {
	r.onAll("ping", func(ctx context.Context, c *Client, raw json.RawMessage) {
		c.sendDirect(pong())
	})

	r.onAll("joinChatRoom", r.entityJoin("joinChatRoom", "chat"))
	r.onAll("leaveChatRoom", r.entityLeave("leaveChatRoom", "chat"))

	r.onAll("chatMessage", func(ctx context.Context, c *Client, raw json.RawMessage) {
		var p chatMessagePayload
		if err := r.decode("chatMessage", raw, &p); err != nil {
			r.rejected(c, err)
			return
		}
		key, err := rooms.ForEntity("chat", p.ChatID)
		if err != nil {
			r.rejected(c, err)
			return
		}
		r.emitter.Emit(ctx, evtChatMessageSent, map[string]interface{}{
			"chatId":     p.ChatID,
			"senderRole": c.Identity.Role,
			"senderId":   c.Identity.UserID,
			"message":    p.Message,
		}, ports.ToRoom(key), ports.WithLanguage(c.Identity.PreferredLanguage))
	})

	r.onAll("typing", func(ctx context.Context, c *Client, raw json.RawMessage) {
		var p chatPayload
		if err := r.decode("typing", raw, &p); err != nil {
			r.rejected(c, err)
			return
		}
		key, err := rooms.ForEntity("chat", p.ChatID)
		if err != nil {
			r.rejected(c, err)
			return
		}
		r.emitter.Emit(ctx, evtChatTyping, map[string]interface{}{
			"chatId":     p.ChatID,
			"senderRole": c.Identity.Role,
			"senderId":   c.Identity.UserID,
		}, ports.ToRoom(key))
	})

	r.onAll("joinCancellationRoom", r.cancellationMembership("joinCancellationRoom", true))
	r.onAll("leaveCancellationRoom", r.cancellationMembership("leaveCancellationRoom", false))
}

func (r *Registry) registerCustomer() {
	r.on(domain.RoleCustomer, "joinRideRoom", r.entityJoin("joinRideRoom", "ride"))
	r.on(domain.RoleCustomer, "leaveRideRoom", r.entityLeave("leaveRideRoom", "ride"))

	r.on(domain.RoleCustomer, "tipSent", func(ctx context.Context, c *Client, raw json.RawMessage) {
		var p tipPayload
		if err := r.decode("tipSent", raw, &p); err != nil {
			r.rejected(c, err)
			return
		}
		r.emitter.Emit(ctx, evtTipReceived, map[string]interface{}{
			"rideId":     p.RideID,
			"customerId": c.Identity.UserID,
			"amount":     p.Amount,
		}, ports.ToUser(domain.RoleDriver, p.DriverID))
	})

	r.on(domain.RoleCustomer, "requestCancellation", func(ctx context.Context, c *Client, raw json.RawMessage) {
		var p cancellationRequestPayload
		if err := r.decode("requestCancellation", raw, &p); err != nil {
			r.rejected(c, err)
			return
		}
		key, err := rooms.ForComposite("cancellation", p.ServiceType, p.ServiceID)
		if err != nil {
			r.rejected(c, err)
			return
		}
		r.emitter.Emit(ctx, evtCancellationRequested, map[string]interface{}{
			"serviceType": p.ServiceType,
			"serviceId":   p.ServiceID,
			"reason":      p.Reason,
			"requestedBy": c.Identity.UserID,
		}, ports.ToRoom(key))
	})
}

func (r *Registry) registerDriver() {
	r.on(domain.RoleDriver, "joinRideRoom", r.entityJoin("joinRideRoom", "ride"))
	r.on(domain.RoleDriver, "leaveRideRoom", r.entityLeave("leaveRideRoom", "ride"))

	r.on(domain.RoleDriver, "locationUpdated", func(ctx context.Context, c *Client, raw json.RawMessage) {
		var p locationPayload
		if err := r.decode("locationUpdated", raw, &p); err != nil {
			r.rejected(c, err)
			return
		}
		key, err := rooms.ForEntity("ride", p.RideID)
		if err != nil {
			r.rejected(c, err)
			return
		}
		r.emitter.Emit(ctx, evtRideLocationUpdated, map[string]interface{}{
			"rideId":   p.RideID,
			"driverId": c.Identity.UserID,
			"lat":      p.Lat,
			"lng":      p.Lng,
		}, ports.ToRoom(key))
	})

	r.on(domain.RoleDriver, "rideStatusUpdated", func(ctx context.Context, c *Client, raw json.RawMessage) {
		var p rideStatusPayload
		if err := r.decode("rideStatusUpdated", raw, &p); err != nil {
			r.rejected(c, err)
			return
		}
		key, err := rooms.ForEntity("ride", p.RideID)
		if err != nil {
			r.rejected(c, err)
			return
		}
		r.emitter.Emit(ctx, evtRideUpdated, map[string]interface{}{
			"rideId": p.RideID,
			"status": p.Status,
		}, ports.ToRoom(key))
	})
}

func (r *Registry) registerMerchant() {
	r.on(domain.RoleMerchant, "joinOrderRoom", r.entityJoin("joinOrderRoom", "order"))
	r.on(domain.RoleMerchant, "leaveOrderRoom", r.entityLeave("leaveOrderRoom", "order"))

	r.on(domain.RoleMerchant, "orderStatusUpdated", func(ctx context.Context, c *Client, raw json.RawMessage) {
		var p orderStatusPayload
		if err := r.decode("orderStatusUpdated", raw, &p); err != nil {
			r.rejected(c, err)
			return
		}
		key, err := rooms.ForEntity("order", p.OrderID)
		if err != nil {
			r.rejected(c, err)
			return
		}
		payload := map[string]interface{}{
			"orderId":   p.OrderID,
			"status":    p.Status,
			"updatedBy": c.Identity.UserID,
		}
		// The order room gets the generic update; the customer's personal
		// room gets the customer-facing one.
		r.emitter.Emit(ctx, evtOrderStatusChanged, payload, ports.ToRoom(key))
		r.emitter.Emit(ctx, evtCustomerOrderStatus, map[string]interface{}{
			"orderId": p.OrderID,
			"status":  p.Status,
		}, ports.ToUser(domain.RoleCustomer, p.CustomerID))
	})

	r.on(domain.RoleMerchant, "reservationPoliciesUpdated", func(ctx context.Context, c *Client, raw json.RawMessage) {
		var p policiesUpdatedPayload
		if err := r.decode("reservationPoliciesUpdated", raw, &p); err != nil {
			r.rejected(c, err)
			return
		}
		r.emitter.Emit(ctx, evtPoliciesUpdated, map[string]interface{}{
			"merchantId": p.MerchantID,
		}, ports.ToUser(domain.RoleMerchant, p.MerchantID))
	})
}

func (r *Registry) registerStaff() {
	r.on(domain.RoleStaff, "joinBookingRoom", r.entityJoin("joinBookingRoom", "booking"))
	r.on(domain.RoleStaff, "leaveBookingRoom", r.entityLeave("leaveBookingRoom", "booking"))
	r.on(domain.RoleStaff, "joinTicketRoom", r.entityJoin("joinTicketRoom", "ticket"))
	r.on(domain.RoleStaff, "leaveTicketRoom", r.entityLeave("leaveTicketRoom", "ticket"))

	r.on(domain.RoleStaff, "bookingUpdated", func(ctx context.Context, c *Client, raw json.RawMessage) {
		var p bookingStatusPayload
		if err := r.decode("bookingUpdated", raw, &p); err != nil {
			r.rejected(c, err)
			return
		}
		key, err := rooms.ForEntity("booking", p.BookingID)
		if err != nil {
			r.rejected(c, err)
			return
		}
		r.emitter.Emit(ctx, evtBookingUpdated, map[string]interface{}{
			"bookingId": p.BookingID,
			"status":    p.Status,
			"updatedBy": c.Identity.UserID,
		}, ports.ToRoom(key))
	})

	r.on(domain.RoleStaff, "ticketStatusUpdated", r.ticketStatusUpdated())
}

func (r *Registry) registerAdmin() {
	r.on(domain.RoleAdmin, "joinTicketRoom", r.entityJoin("joinTicketRoom", "ticket"))
	r.on(domain.RoleAdmin, "leaveTicketRoom", r.entityLeave("leaveTicketRoom", "ticket"))
	r.on(domain.RoleAdmin, "ticketStatusUpdated", r.ticketStatusUpdated())

	r.on(domain.RoleAdmin, "announcement", func(ctx context.Context, c *Client, raw json.RawMessage) {
		var p announcementPayload
		if err := r.decode("announcement", raw, &p); err != nil {
			r.rejected(c, err)
			return
		}
		r.emitter.Emit(ctx, evtAnnouncement, map[string]interface{}{
			"message": p.Message,
			"sentBy":  c.Identity.UserID,
		}, ports.ToUser(domain.RoleAdmin, p.AdminID))
	})
}

// ticketStatusUpdated is shared between staff and admin.
func (r *Registry) ticketStatusUpdated() HandlerFunc {
	return func(ctx context.Context, c *Client, raw json.RawMessage) {
		var p ticketStatusPayload
		if err := r.decode("ticketStatusUpdated", raw, &p); err != nil {
			r.rejected(c, err)
			return
		}
		key, err := rooms.ForEntity("ticket", p.TicketID)
		if err != nil {
			r.rejected(c, err)
			return
		}
		r.emitter.Emit(ctx, evtTicketUpdated, map[string]interface{}{
			"ticketId":  p.TicketID,
			"status":    p.Status,
			"updatedBy": c.Identity.UserID,
		}, ports.ToRoom(key))
	}
}

// entityJoin builds a join listener for a single-id entity room.
func (r *Registry) entityJoin(listener, entityType string) HandlerFunc {
	return r.entityMembership(listener, entityType, true)
}

// entityLeave builds a leave listener for a single-id entity room.
func (r *Registry) entityLeave(listener, entityType string) HandlerFunc {
	return r.entityMembership(listener, entityType, false)
}

func (r *Registry) entityMembership(listener, entityType string, join bool) HandlerFunc {
	return func(ctx context.Context, c *Client, raw json.RawMessage) {
		id, err := r.decodeEntityID(listener, entityType, raw)
		if err != nil {
			r.rejected(c, err)
			return
		}
		key, err := rooms.ForEntity(entityType, id)
		if err != nil {
			r.rejected(c, err)
			return
		}
		if join {
			c.hub.Join(c, key)
		} else {
			c.hub.Leave(c, key)
		}
	}
}

// decodeEntityID extracts and validates the correlation id for an entity
// join/leave request. The JSON field name follows the "{entity}Id"
// convention clients already use.
func (r *Registry) decodeEntityID(listener, entityType string, raw json.RawMessage) (int64, error) {
	switch entityType {
	case "ride":
		var p ridePayload
		if err := r.decode(listener, raw, &p); err != nil {
			return 0, err
		}
		return p.RideID, nil
	case "chat":
		var p chatPayload
		if err := r.decode(listener, raw, &p); err != nil {
			return 0, err
		}
		return p.ChatID, nil
	case "order":
		var p orderPayload
		if err := r.decode(listener, raw, &p); err != nil {
			return 0, err
		}
		return p.OrderID, nil
	case "booking":
		var p bookingPayload
		if err := r.decode(listener, raw, &p); err != nil {
			return 0, err
		}
		return p.BookingID, nil
	case "ticket":
		var p ticketPayload
		if err := r.decode(listener, raw, &p); err != nil {
			return 0, err
		}
		return p.TicketID, nil
	default:
		panic("registry: no payload shape for entity type " + entityType)
	}
}

func (r *Registry) cancellationMembership(listener string, join bool) HandlerFunc {
	return func(ctx context.Context, c *Client, raw json.RawMessage) {
		var p cancellationRoomPayload
		if err := r.decode(listener, raw, &p); err != nil {
			r.rejected(c, err)
			return
		}
		key, err := rooms.ForComposite("cancellation", p.ServiceType, p.ServiceID)
		if err != nil {
			r.rejected(c, err)
			return
		}
		if join {
			c.hub.Join(c, key)
		} else {
			c.hub.Leave(c, key)
		}
	}
}
