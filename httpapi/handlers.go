// Package httpapi is the collaborator that translates URLs into Board
// calls (§6.3). The Board never parses URLs itself; this package owns
// routing, CORS, static file serving, and mapping Board errors onto HTTP
// status codes (§7).
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"memory-game-server/boarderr"
)

// Board is the subset of *board.Board that the HTTP layer depends on,
// kept narrow so handlers can be tested against a fake.
type Board interface {
	Look(playerID string) (string, error)
	Flip(ctx context.Context, playerID string, row, col int) (string, error)
	Map(playerID string, transform func(string) string) (string, error)
	Watch(ctx context.Context, playerID string, timeout time.Duration) (string, error)
}

// Handler serves the player-facing board routes.
type Handler struct {
	board        Board
	watchTimeout time.Duration
	staticDir    string
	log          *slog.Logger
}

// New builds a Handler. watchTimeout is the duration used for every
// /watch request; staticDir, if non-empty, is served at the index route.
func New(b Board, watchTimeout time.Duration, staticDir string, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{board: b, watchTimeout: watchTimeout, staticDir: staticDir, log: log}
}

// Routes registers every board route on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/look/", h.handleLook)
	mux.HandleFunc("/flip/", h.handleFlip)
	mux.HandleFunc("/replace/", h.handleReplace)
	mux.HandleFunc("/watch/", h.handleWatch)
	if h.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(h.staticDir)))
	}
}

func cors(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

func writeSnapshot(w http.ResponseWriter, snap string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(snap))
}

// writeBoardError maps a Board error to the HTTP status the spec assigns
// it (§7): contention errors are a conflict response with a
// human-readable message; position/parse errors are operator errors.
func writeBoardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, boarderr.ErrCardRemoved),
		errors.Is(err, boarderr.ErrControlledByOther),
		errors.Is(err, boarderr.ErrTimeout):
		http.Error(w, "cannot flip this card: "+err.Error(), http.StatusConflict)
	case errors.Is(err, boarderr.ErrInvalidPosition):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "request cancelled", http.StatusRequestTimeout)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// pathSegments splits the trailing path of prefix off r.URL.Path, e.g.
// "/flip/P1/0,1" with prefix "/flip/" yields ["P1", "0,1"].
func pathSegments(r *http.Request, prefix string) []string {
	trimmed := strings.TrimPrefix(r.URL.Path, prefix)
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// GET /look/{player_id}
func (h *Handler) handleLook(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	parts := pathSegments(r, "/look/")
	if len(parts) != 1 || parts[0] == "" {
		http.Error(w, "player id required", http.StatusBadRequest)
		return
	}
	snap, err := h.board.Look(parts[0])
	if err != nil {
		writeBoardError(w, err)
		return
	}
	writeSnapshot(w, snap)
}

// GET /flip/{player_id}/{row},{col}
func (h *Handler) handleFlip(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	parts := pathSegments(r, "/flip/")
	if len(parts) != 2 {
		http.Error(w, "player id and location required", http.StatusBadRequest)
		return
	}
	playerID, location := parts[0], parts[1]
	if playerID == "" {
		http.Error(w, "player id required", http.StatusBadRequest)
		return
	}
	rc := strings.SplitN(location, ",", 2)
	if len(rc) != 2 {
		http.Error(w, "location must be row,col", http.StatusBadRequest)
		return
	}
	row, errRow := strconv.Atoi(rc[0])
	col, errCol := strconv.Atoi(rc[1])
	if errRow != nil || errCol != nil {
		http.Error(w, "location must be row,col", http.StatusBadRequest)
		return
	}

	snap, err := h.board.Flip(r.Context(), playerID, row, col)
	if err != nil {
		writeBoardError(w, err)
		return
	}
	writeSnapshot(w, snap)
}

// GET /replace/{player_id}/{from_card}/{to_card}
func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	parts := pathSegments(r, "/replace/")
	if len(parts) != 3 {
		http.Error(w, "player id, from and to required", http.StatusBadRequest)
		return
	}
	playerID, from, to := parts[0], parts[1], parts[2]
	if playerID == "" || from == "" || to == "" {
		http.Error(w, "player id, from and to required", http.StatusBadRequest)
		return
	}
	transform := func(label string) string {
		if label == from {
			return to
		}
		return label
	}
	snap, err := h.board.Map(playerID, transform)
	if err != nil {
		writeBoardError(w, err)
		return
	}
	writeSnapshot(w, snap)
}

// GET /watch/{player_id}
func (h *Handler) handleWatch(w http.ResponseWriter, r *http.Request) {
	if cors(w, r) {
		return
	}
	parts := pathSegments(r, "/watch/")
	if len(parts) != 1 || parts[0] == "" {
		http.Error(w, "player id required", http.StatusBadRequest)
		return
	}
	snap, err := h.board.Watch(r.Context(), parts[0], h.watchTimeout)
	if err != nil {
		writeBoardError(w, err)
		return
	}
	writeSnapshot(w, snap)
}
