package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	wsAdapter "github.com/munchmtxi/realtime-gateway/internal/adapters/primary/websocket"
	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
	apperrors "github.com/munchmtxi/realtime-gateway/internal/core/errors"
	"github.com/munchmtxi/realtime-gateway/internal/core/rooms"
)

// DispatchAuditReader reads persisted dispatch records for operator
// dashboards. Nil when the audit store is disabled.
type DispatchAuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]domain.DispatchRecord, error)
	CountByEvent(ctx context.Context) (map[string]int64, error)
}

// StatsHandler exposes connection and room occupancy figures for operators.
type StatsHandler struct {
	hub          *wsAdapter.Hub
	audit        DispatchAuditReader
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewStatsHandler creates a new stats handler. audit may be nil.
func NewStatsHandler(hub *wsAdapter.Hub, audit DispatchAuditReader, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		hub:          hub,
		audit:        audit,
		errorHandler: NewErrorHandler(logger),
		logger:       logger,
	}
}

// statsResponse is the body for GET /api/v1/stats.
type statsResponse struct {
	Connections int            `json:"connections"`
	Rooms       int            `json:"rooms"`
	RoomSizes   map[string]int `json:"roomSizes"`
}

// Overview handles GET /api/v1/stats.
func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, statsResponse{
		Connections: h.hub.ClientCount(),
		Rooms:       h.hub.RoomCount(),
		RoomSizes:   h.hub.RoomSizes(),
	})
}

// RoomSize handles GET /api/v1/stats/rooms/{key}.
func (h *StatsHandler) RoomSize(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(nil, "Room key is required"))
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"room":    key,
		"members": h.hub.RoomSize(rooms.Key(key)),
	})
}

// dispatchStatsResponse is the body for GET /api/v1/stats/dispatches.
type dispatchStatsResponse struct {
	Recent        []domain.DispatchRecord `json:"recent"`
	CountsByEvent map[string]int64        `json:"countsByEvent"`
}

// Dispatches handles GET /api/v1/stats/dispatches. It serves the audit
// store's recent records and per-event totals; 404 when auditing is off.
func (h *StatsHandler) Dispatches(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		h.errorHandler.Handle(w, r, apperrors.NewNotFoundError(nil, "Dispatch audit store is not enabled"))
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Limit must be a positive integer up to 500"))
			return
		}
		limit = n
	}

	recent, err := h.audit.ListRecent(r.Context(), limit)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	counts, err := h.audit.CountByEvent(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, dispatchStatsResponse{
		Recent:        recent,
		CountsByEvent: counts,
	})
}

// Presence handles GET /api/v1/stats/presence/{role}/{userID}.
func (h *StatsHandler) Presence(w http.ResponseWriter, r *http.Request) {
	role, err := domain.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "User ID must be a positive integer"))
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"role":      role,
		"userId":    userID,
		"connected": h.hub.IsUserConnected(role, userID),
	})
}
