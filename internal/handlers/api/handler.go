package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
	"github.com/KirkDiggler/shipyard-negotiation/internal/services/onboarding"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 16 << 10

// HandlerConfig holds configuration for the API handler
type HandlerConfig struct {
	Service onboarding.Service // Required
	Logger  *slog.Logger       // Optional
}

// Handler serves the first-login negotiation over HTTP
type Handler struct {
	service onboarding.Service
	logger  *slog.Logger
}

// NewHandler creates the API handler
func NewHandler(cfg *HandlerConfig) *Handler {
	if cfg == nil || cfg.Service == nil {
		panic("onboarding service is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: cfg.Service, logger: logger}
}

type claimRequest struct {
	Ship      string `json:"ship"`
	Statement string `json:"statement"`
}

type responseRequest struct {
	Sequence int    `json:"sequence"`
	Text     string `json:"text"`
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PlayerStatus tells a client whether to show the first-login flow
func (h *Handler) PlayerStatus(w http.ResponseWriter, r *http.Request) {
	ps, err := h.service.GetPlayerStatus(r.Context(), playerFrom(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlayerStatusView(ps))
}

// StartSession starts or resumes the caller's negotiation
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.StartOrResumeSession(r.Context(), playerFrom(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	status := http.StatusCreated
	if st.Resumed {
		status = http.StatusOK
	}
	writeJSON(w, status, newSessionView(st))
}

// GetSession returns the caller's session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	st, err := h.owned(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(st))
}

// ClaimShip answers the opening question with one of the offered ships
func (h *Handler) ClaimShip(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req claimRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if _, err := h.owned(r.Context(), sessionID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	st, err := h.service.ClaimShip(r.Context(), sessionID, firstlogin.ShipType(req.Ship), req.Statement)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(st))
}

// SubmitResponse answers the pending question
func (h *Handler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req responseRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.Sequence <= 0 {
		writeError(w, h.logger, dnderr.InvalidArgument("sequence must be positive"))
		return
	}
	if _, err := h.owned(r.Context(), sessionID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	st, err := h.service.SubmitResponse(r.Context(), sessionID, req.Sequence, req.Text)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(st))
}

// CompleteSession resolves the negotiation
func (h *Handler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.owned(r.Context(), sessionID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	st, err := h.service.CompleteSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(st))
}

// AbandonSession throws away an incomplete negotiation
func (h *Handler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.owned(r.Context(), sessionID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.service.AbandonSession(r.Context(), sessionID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// owned loads the session and checks it belongs to the caller
func (h *Handler) owned(ctx context.Context, sessionID string) (*onboarding.Status, error) {
	st, err := h.service.GetSessionStatus(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if st.Session.PlayerID != playerFrom(ctx) {
		return nil, dnderr.PermissionDeniedf("session %s belongs to another player", sessionID).
			WithMeta("session_id", sessionID)
	}
	return st, nil
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dnderr.WrapWithCode(err, dnderr.CodeInvalidArgument, "invalid request body")
	}
	return nil
}
