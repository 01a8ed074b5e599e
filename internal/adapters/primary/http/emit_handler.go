package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/munchmtxi/realtime-gateway/internal/config"
	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
	apperrors "github.com/munchmtxi/realtime-gateway/internal/core/errors"
	"github.com/munchmtxi/realtime-gateway/internal/core/ports"
	"github.com/munchmtxi/realtime-gateway/internal/core/rooms"
)

// EmitHandler exposes server-to-server event dispatch over HTTP. Backend
// services that cannot hold a WebSocket connection (payment processors,
// order pipelines, cron jobs) push their events through this endpoint.
type EmitHandler struct {
	emitter      ports.Emitter
	apiKeyHash   []byte
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewEmitHandler creates a new emit handler.
func NewEmitHandler(emitter ports.Emitter, cfg *config.Config, logger *slog.Logger) *EmitHandler {
	return &EmitHandler{
		emitter:      emitter,
		apiKeyHash:   []byte(cfg.EmitAPI.KeyHash),
		errorHandler: NewErrorHandler(logger),
		logger:       logger,
	}
}

// emitRequest is the request body for POST /api/v1/emit.
type emitRequest struct {
	Event        string          `json:"event"`
	Payload      json.RawMessage `json:"payload"`
	Target       emitTarget      `json:"target"`
	LanguageCode string          `json:"languageCode,omitempty"`
}

// emitTarget names either an explicit room or a (role, userId) pair whose
// personal room is resolved at dispatch time. Exactly one form must be set.
type emitTarget struct {
	Room   string `json:"room,omitempty"`
	Role   string `json:"role,omitempty"`
	UserID int64  `json:"userId,omitempty"`
}

// emitResponse mirrors the dispatch outcome back to the caller.
type emitResponse struct {
	Delivered  bool     `json:"delivered"`
	Recipients int      `json:"recipients"`
	Rooms      []string `json:"rooms"`
	Error      string   `json:"error,omitempty"`
}

// Emit handles POST /api/v1/emit.
func (h *EmitHandler) Emit(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		h.logger.Warn("emit request rejected: bad api key",
			"request_id", GetRequestID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
		http.Error(w, "Invalid API key", http.StatusUnauthorized)
		return
	}

	var req emitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid request body"))
		return
	}

	if req.Event == "" {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(nil, "Field 'event' is required"))
		return
	}

	target, err := h.resolveTarget(req.Target)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	var opts []ports.EmitOption
	if req.LanguageCode != "" {
		opts = append(opts, ports.WithLanguage(req.LanguageCode))
	}

	var payload interface{}
	if len(req.Payload) > 0 {
		payload = req.Payload
	}

	outcome := h.emitter.Emit(r.Context(), req.Event, payload, target, opts...)

	resp := emitResponse{
		Delivered:  outcome.Delivered,
		Recipients: outcome.Recipients,
		Rooms:      make([]string, 0, len(outcome.Rooms)),
	}
	for _, key := range outcome.Rooms {
		resp.Rooms = append(resp.Rooms, string(key))
	}
	if outcome.Err != nil {
		resp.Error = outcome.Err.Error()
	}

	WriteSuccess(w, resp)
}

// authorized compares the X-Api-Key header against the configured bcrypt hash.
func (h *EmitHandler) authorized(r *http.Request) bool {
	if len(h.apiKeyHash) == 0 {
		return false
	}
	key := r.Header.Get("X-Api-Key")
	if key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(h.apiKeyHash, []byte(key)) == nil
}

// resolveTarget converts the wire target into a dispatch target.
func (h *EmitHandler) resolveTarget(t emitTarget) (ports.Target, error) {
	switch {
	case t.Room != "" && t.Role != "":
		return ports.Target{}, apperrors.NewBadRequestError(nil, "Target must set either 'room' or 'role'+'userId', not both")
	case t.Room != "":
		return ports.ToRoom(rooms.Key(t.Room)), nil
	case t.Role != "":
		role, err := domain.ParseRole(t.Role)
		if err != nil {
			return ports.Target{}, err
		}
		return ports.ToUser(role, t.UserID), nil
	default:
		return ports.Target{}, apperrors.NewBadRequestError(nil, "Target is required")
	}
}
