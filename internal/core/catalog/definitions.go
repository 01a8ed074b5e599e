package catalog

import "github.com/munchmtxi/realtime-gateway/internal/core/domain"

// Wire names are a versioned public API: every client integration matches on
// these exact strings. Do not rename without a migration plan.

// Shared entity-scoped events. Delivered to entity rooms ("ride:42",
// "chat:7", ...) or, for wallet events, to the owner's personal room.
const (
	RideRequested       = "ride:requested"
	RideAccepted        = "ride:accepted"
	RideArrived         = "ride:arrived"
	RideStarted         = "ride:started"
	RideCompleted       = "ride:completed"
	RideCancelled       = "ride:cancelled"
	RideUpdated         = "ride:updated"
	RideLocationUpdated = "ride:location_updated"

	ChatMessageSent       = "chat:message_sent"
	ChatTyping            = "chat:typing"
	ChatParticipantJoined = "chat:participant_joined"
	ChatParticipantLeft   = "chat:participant_left"

	WalletFundsAdded       = "wallet:funds_added"
	WalletFundsWithdrawn   = "wallet:funds_withdrawn"
	WalletPaymentCompleted = "wallet:payment_completed"

	OrderUpdated       = "order:updated"
	OrderStatusChanged = "order:status_changed"

	BookingUpdated   = "booking:updated"
	BookingCancelled = "booking:cancelled"

	TicketUpdated   = "ticket:updated"
	TicketEscalated = "ticket:escalated"

	CancellationRequested       = "cancellation:requested"
	CancellationConfirmed       = "cancellation:confirmed"
	CancellationRefundProcessed = "cancellation:refund_processed"
)

// Customer events, delivered to "customer:{id}" personal rooms.
const (
	CustomerProfileUpdated        = "customer:profile:updated"
	CustomerPaymentMethodAdded    = "customer:profile:payment_method_added"
	CustomerTipConfirmed          = "customer:tips:tip_confirmed"
	CustomerSubscriptionActivated = "customer:subscriptions:activated"
	CustomerSubscriptionRenewed   = "customer:subscriptions:renewed"
	CustomerSubscriptionCancelled = "customer:subscriptions:cancelled"
	CustomerOrderConfirmed        = "customer:munch:order_confirmed"
	CustomerOrderStatusUpdated    = "customer:munch:order_status_updated"
	CustomerOrderDelivered        = "customer:munch:order_delivered"
	CustomerBookingConfirmed      = "customer:mtables:booking_confirmed"
	CustomerBookingReminder       = "customer:mtables:booking_reminder"
	CustomerParkingConfirmed      = "customer:mpark:space_confirmed"
	CustomerParkingExpiring       = "customer:mpark:time_expiring"
)

// Driver events, delivered to "driver:{id}" personal rooms.
const (
	DriverProfileUpdated         = "driver:profile:updated"
	DriverWalletBalanceUpdated   = "driver:wallet:balance_updated"
	DriverPayoutProcessed        = "driver:wallet:payout_processed"
	DriverRideAssigned           = "driver:rides:assigned"
	DriverBatchDeliveryRequested = "driver:rides:batch_delivery_requested"
	DriverTipReceived            = "driver:tips:tip_received"
)

// Merchant events, delivered to "merchant:{id}" personal rooms.
const (
	MerchantProfileUpdated             = "merchant:profile:updated"
	MerchantOrderReceived              = "merchant:munch:order_received"
	MerchantOrderReady                 = "merchant:munch:order_ready"
	MerchantReservationCreated         = "merchant:mtables:reservation_created"
	MerchantReservationPoliciesUpdated = "merchant:mtables:reservation_policies_updated"
	MerchantPromotionRedeemed          = "merchant:promotions:redeemed"
)

// Staff events, delivered to "staff:{id}" personal rooms.
const (
	StaffProfileUpdated  = "staff:profile:updated"
	StaffTicketAssigned  = "staff:support:ticket_assigned"
	StaffTicketEscalated = "staff:support:ticket_escalated"
	StaffBookingAssigned = "staff:mtables:booking_assigned"
)

// Admin events, delivered to "admin:{id}" personal rooms.
const (
	AdminTicketOpened         = "admin:support:ticket_opened"
	AdminPlatformAnnouncement = "admin:platform:announcement"
)

func init() {
	Register(Namespace{Feature: "ride"},
		Spec{Short: "requested", Description: "A customer requested a ride.", Payload: []string{"rideId", "customerId", "pickup", "destination"}},
		Spec{Short: "accepted", Description: "A driver accepted the ride.", Payload: []string{"rideId", "driverId"}},
		Spec{Short: "arrived", Description: "The driver arrived at pickup.", Payload: []string{"rideId", "driverId"}},
		Spec{Short: "started", Description: "The ride started.", Payload: []string{"rideId"}},
		Spec{Short: "completed", Description: "The ride completed.", Payload: []string{"rideId", "fare"}},
		Spec{Short: "cancelled", Description: "The ride was cancelled.", Payload: []string{"rideId", "reason"}},
		Spec{Short: "updated", Description: "Generic ride state change.", Payload: []string{"rideId", "status"}},
		Spec{Short: "location_updated", Description: "Driver position relayed to the ride room.", Payload: []string{"rideId", "driverId", "lat", "lng"}},
	)

	Register(Namespace{Feature: "chat"},
		Spec{Short: "message_sent", Description: "A chat participant sent a message.", Payload: []string{"chatId", "senderRole", "senderId", "message"}},
		Spec{Short: "typing", Description: "A participant is typing.", Payload: []string{"chatId", "senderRole", "senderId"}},
		Spec{Short: "participant_joined", Description: "A participant joined the chat room.", Payload: []string{"chatId", "role", "userId"}},
		Spec{Short: "participant_left", Description: "A participant left the chat room.", Payload: []string{"chatId", "role", "userId"}},
	)

	Register(Namespace{Feature: "wallet"},
		Spec{Short: "funds_added", Description: "Funds were credited to a wallet.", Payload: []string{"amount", "balance", "currency"}},
		Spec{Short: "funds_withdrawn", Description: "Funds were withdrawn from a wallet.", Payload: []string{"amount", "balance", "currency"}},
		Spec{Short: "payment_completed", Description: "A wallet payment settled.", Payload: []string{"paymentId", "amount", "currency"}},
	)

	Register(Namespace{Feature: "order"},
		Spec{Short: "updated", Description: "Generic order state change.", Payload: []string{"orderId", "status"}},
		Spec{Short: "status_changed", Description: "Order moved to a new status.", Payload: []string{"orderId", "status", "updatedBy"}},
	)

	Register(Namespace{Feature: "booking"},
		Spec{Short: "updated", Description: "Table booking state change.", Payload: []string{"bookingId", "status", "updatedBy"}},
		Spec{Short: "cancelled", Description: "Table booking cancelled.", Payload: []string{"bookingId", "reason"}},
	)

	Register(Namespace{Feature: "ticket"},
		Spec{Short: "updated", Description: "Support ticket state change.", Payload: []string{"ticketId", "status", "updatedBy"}},
		Spec{Short: "escalated", Description: "Support ticket escalated.", Payload: []string{"ticketId", "escalatedBy"}},
	)

	Register(Namespace{Feature: "cancellation"},
		Spec{Short: "requested", Description: "A cancellation was requested for a service.", Payload: []string{"serviceType", "serviceId", "reason"}},
		Spec{Short: "confirmed", Description: "The cancellation was confirmed.", Payload: []string{"serviceType", "serviceId"}},
		Spec{Short: "refund_processed", Description: "The cancellation refund settled.", Payload: []string{"serviceType", "serviceId", "amount"}},
	)

	Register(Namespace{Role: domain.RoleCustomer, Feature: "profile"},
		Spec{Short: "updated", Description: "Customer profile changed.", Payload: []string{"customerId"}},
		Spec{Short: "payment_method_added", Description: "Customer added a payment method.", Payload: []string{"customerId", "methodType"}},
	)
	Register(Namespace{Role: domain.RoleCustomer, Feature: "tips"},
		Spec{Short: "tip_confirmed", Description: "A sent tip was confirmed.", Payload: []string{"rideId", "driverId", "amount"}},
	)
	Register(Namespace{Role: domain.RoleCustomer, Feature: "subscriptions"},
		Spec{Short: "activated", Description: "A subscription became active.", Payload: []string{"subscriptionId", "plan"}},
		Spec{Short: "renewed", Description: "A subscription renewed.", Payload: []string{"subscriptionId", "renewsAt"}},
		Spec{Short: "cancelled", Description: "A subscription was cancelled.", Payload: []string{"subscriptionId"}},
	)
	Register(Namespace{Role: domain.RoleCustomer, Feature: "munch"},
		Spec{Short: "order_confirmed", Description: "A food order was accepted by the merchant.", Payload: []string{"orderId", "merchantId", "eta"}},
		Spec{Short: "order_status_updated", Description: "A food order changed status.", Payload: []string{"orderId", "status"}},
		Spec{Short: "order_delivered", Description: "A food order was delivered.", Payload: []string{"orderId"}},
	)
	Register(Namespace{Role: domain.RoleCustomer, Feature: "mtables"},
		Spec{Short: "booking_confirmed", Description: "A table booking was confirmed.", Payload: []string{"bookingId", "merchantId", "time"}},
		Spec{Short: "booking_reminder", Description: "A reminder ahead of a booking.", Payload: []string{"bookingId", "time"}},
	)
	Register(Namespace{Role: domain.RoleCustomer, Feature: "mpark"},
		Spec{Short: "space_confirmed", Description: "A parking space was confirmed.", Payload: []string{"parkingId", "space"}},
		Spec{Short: "time_expiring", Description: "Paid parking time is about to expire.", Payload: []string{"parkingId", "expiresAt"}},
	)

	Register(Namespace{Role: domain.RoleDriver, Feature: "profile"},
		Spec{Short: "updated", Description: "Driver profile changed.", Payload: []string{"driverId"}},
	)
	Register(Namespace{Role: domain.RoleDriver, Feature: "wallet"},
		Spec{Short: "balance_updated", Description: "Driver wallet balance changed.", Payload: []string{"driverId", "balance", "currency"}},
		Spec{Short: "payout_processed", Description: "A driver payout settled.", Payload: []string{"driverId", "amount", "currency"}},
	)
	Register(Namespace{Role: domain.RoleDriver, Feature: "rides"},
		Spec{Short: "assigned", Description: "A ride was assigned to the driver.", Payload: []string{"rideId", "pickup", "destination"}},
		Spec{Short: "batch_delivery_requested", Description: "A batched delivery run was offered.", Payload: []string{"batchId", "stops"}},
	)
	Register(Namespace{Role: domain.RoleDriver, Feature: "tips"},
		Spec{Short: "tip_received", Description: "A customer tipped the driver.", Payload: []string{"rideId", "customerId", "amount"}},
	)

	Register(Namespace{Role: domain.RoleMerchant, Feature: "profile"},
		Spec{Short: "updated", Description: "Merchant profile changed.", Payload: []string{"merchantId"}},
	)
	Register(Namespace{Role: domain.RoleMerchant, Feature: "munch"},
		Spec{Short: "order_received", Description: "A new food order arrived.", Payload: []string{"orderId", "customerId", "items"}},
		Spec{Short: "order_ready", Description: "An order is ready for pickup.", Payload: []string{"orderId"}},
	)
	Register(Namespace{Role: domain.RoleMerchant, Feature: "mtables"},
		Spec{Short: "reservation_created", Description: "A new table reservation arrived.", Payload: []string{"bookingId", "customerId", "time", "partySize"}},
		Spec{Short: "reservation_policies_updated", Description: "Reservation policies changed.", Payload: []string{"merchantId"}},
	)
	Register(Namespace{Role: domain.RoleMerchant, Feature: "promotions"},
		Spec{Short: "redeemed", Description: "A promotion was redeemed at the merchant.", Payload: []string{"promotionId", "customerId"}},
	)

	Register(Namespace{Role: domain.RoleStaff, Feature: "profile"},
		Spec{Short: "updated", Description: "Staff profile changed.", Payload: []string{"staffId"}},
	)
	Register(Namespace{Role: domain.RoleStaff, Feature: "support"},
		Spec{Short: "ticket_assigned", Description: "A support ticket was assigned.", Payload: []string{"ticketId"}},
		Spec{Short: "ticket_escalated", Description: "A support ticket was escalated to the staff member.", Payload: []string{"ticketId", "escalatedBy"}},
	)
	Register(Namespace{Role: domain.RoleStaff, Feature: "mtables"},
		Spec{Short: "booking_assigned", Description: "A table booking was assigned to the staff member.", Payload: []string{"bookingId"}},
	)

	Register(Namespace{Role: domain.RoleAdmin, Feature: "support"},
		Spec{Short: "ticket_opened", Description: "A support ticket was opened on the platform.", Payload: []string{"ticketId", "openedBy"}},
	)
	Register(Namespace{Role: domain.RoleAdmin, Feature: "platform"},
		Spec{Short: "announcement", Description: "A platform-wide announcement for admins.", Payload: []string{"message"}},
	)
}
