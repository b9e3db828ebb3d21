// Package admin exposes an operator-only HTTP surface, distinct from the
// anonymous player-facing board API (board operations never authenticate
// players — see SPEC_FULL.md's Non-goals). It is gated by a bearer JWT
// validated against an issuer's JWKS; when no issuer is configured the
// whole surface answers 503.
package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"memory-game-server/store"
)

const bearerPrefix = "Bearer "

// Validator verifies a bearer token and returns an error if it is
// missing, malformed, or rejected. *auth.Validator implements this.
type Validator interface {
	Validate(tokenString string) (jwt.MapClaims, error)
}

// Telemetry is the subset of *store.Store the admin surface reads.
type Telemetry interface {
	Stats(ctx context.Context) (store.Stats, error)
}

// boardInfo is implemented by *board.Board; kept as a narrow interface so
// admin depends on board for nothing but these read-only hooks plus the
// forced-renewal one.
type boardInfo interface {
	Version() uint64
	Rows() int
	Cols() int
	ForceRenew()
}

// Handler serves /admin/*.
type Handler struct {
	validator Validator // nil disables the surface with 503
	telemetry Telemetry
	board     boardInfo
	log       *slog.Logger
}

// New builds a Handler. validator may be nil, in which case every route
// answers 503 Service Unavailable (no AuthIssuerURL configured).
func New(validator Validator, telemetry Telemetry, board boardInfo, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{validator: validator, telemetry: telemetry, board: board, log: log}
}

// Routes registers the admin routes on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/admin/stats", h.requireAuth(h.handleStats))
	mux.HandleFunc("/admin/renew", h.requireAuth(h.handleRenew))
}

func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.validator == nil {
			http.Error(w, "admin surface not configured", http.StatusServiceUnavailable)
			return
		}
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			http.Error(w, "authorization required", http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if _, err := h.validator.Validate(token); err != nil {
			h.log.Warn("admin token rejected", "tag", "admin", "error", err)
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// statsResponse is what GET /admin/stats returns: the board's live
// version/dimensions plus whatever telemetry history the store holds.
type statsResponse struct {
	Version uint64 `json:"version"`
	Rows    int    `json:"rows"`
	Cols    int    `json:"cols"`
	store.Stats
}

// GET /admin/stats
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.telemetry.Stats(r.Context())
	if err != nil {
		h.log.Error("failed to load stats", "tag", "admin", "error", err)
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}
	resp := statsResponse{
		Version: h.board.Version(),
		Rows:    h.board.Rows(),
		Cols:    h.board.Cols(),
		Stats:   stats,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error("failed to encode stats response", "tag", "admin", "error", err)
	}
}

// POST /admin/renew triggers an out-of-band renewal (§4.5), e.g. to
// recover a board an operator judges stuck or abandoned.
func (h *Handler) handleRenew(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.board == nil {
		http.Error(w, "renew not available", http.StatusInternalServerError)
		return
	}
	h.board.ForceRenew()
	w.WriteHeader(http.StatusNoContent)
}
