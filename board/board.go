// Package board implements the Memory Scramble server core: a shared
// grid of face-down cards, a per-player turn state machine, and the
// contention protocol that lets any number of concurrent callers flip,
// look at, remap, and watch the board. See SPEC_FULL.md for the full
// protocol; this file holds the shared state and its renewal.
package board

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"memory-game-server/boarderr"
	"memory-game-server/notify"
)

// DefaultFlipWait is the rule 1-D contention budget (§4.3, §5) used when
// a Board is built with New without a WithFlipWait option.
const DefaultFlipWait = 30 * time.Second

// Board is the shared game state. One Board serves any number of
// concurrent player sessions; a single mutex serializes every state
// transition, matching the "single mutex (or equivalent monitor)"
// contract in the spec's concurrency model.
type Board struct {
	mu sync.Mutex

	rows, cols int
	original   []string // initial labels, row-major; preserved for renewal
	cards      []Card   // row-major

	players map[string]*playerState

	notifier *notify.Notifier

	flipWait time.Duration
	log      *slog.Logger
	telem    Telemetry

	pairsClearedSinceRenewal int
}

// Option configures a Board at construction time.
type Option func(*Board)

// WithFlipWait overrides the rule 1-D contention budget (default
// DefaultFlipWait).
func WithFlipWait(d time.Duration) Option {
	return func(b *Board) { b.flipWait = d }
}

// WithLogger sets the logger used for board-tagged diagnostics. Defaults
// to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Board) { b.log = l }
}

// WithTelemetry sets an optional sink for renewal/activity events.
func WithTelemetry(t Telemetry) Option {
	return func(b *Board) { b.telem = t }
}

// New creates a Board from the given dimensions and row-major label
// sequence. len(labels) must equal rows*cols; labels are not validated
// for pairing (the protocol doesn't require it, only that map/renewal
// preserve whatever was given).
func New(rows, cols int, labels []string, opts ...Option) (*Board, error) {
	if rows <= 0 || cols <= 0 {
		return nil, &boarderr.ParseErrorAt{Reason: "rows and cols must be positive"}
	}
	if len(labels) != rows*cols {
		return nil, &boarderr.ParseErrorAt{Reason: "label count does not match rows*cols"}
	}

	b := &Board{
		rows:     rows,
		cols:     cols,
		original: append([]string(nil), labels...),
		players:  make(map[string]*playerState),
		notifier: notify.New(),
		flipWait: DefaultFlipWait,
		log:      slog.Default(),
		telem:    noopTelemetry{},
	}
	for _, o := range opts {
		o(b)
	}
	b.rebuildGridLocked()
	return b, nil
}

// Rows returns the board's row count (immutable after construction).
func (b *Board) Rows() int { return b.rows }

// Cols returns the board's column count (immutable after construction).
func (b *Board) Cols() int { return b.cols }

// Version returns the board's current change version (§4.7), the same
// counter Watch blocks on.
func (b *Board) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.notifier.Version()
}

func (b *Board) index(row, col int) (position, bool) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return 0, false
	}
	return row*b.cols + col, true
}

// rebuildGridLocked resets every card to its original label, face-down,
// uncontrolled, not removed. Caller must hold b.mu.
func (b *Board) rebuildGridLocked() {
	b.cards = make([]Card, len(b.original))
	for i, label := range b.original {
		b.cards[i] = Card{Label: label}
	}
}

// nonRemovedCountLocked returns how many cards are still in play.
func (b *Board) nonRemovedCountLocked() int {
	n := 0
	for _, c := range b.cards {
		if !c.Removed {
			n++
		}
	}
	return n
}

// maybeRenewLocked implements §4.5: if at most one card is left in play,
// reconstruct the grid and clear the player registry before the flip
// that triggered this check proceeds. Caller must hold b.mu.
func (b *Board) maybeRenewLocked() {
	if b.nonRemovedCountLocked() > 1 {
		return
	}
	pairsCleared := b.pairsClearedSinceRenewal
	b.rebuildGridLocked()
	b.players = make(map[string]*playerState)
	b.pairsClearedSinceRenewal = 0
	b.notifier.Advance()
	b.log.Debug("board renewed", "tag", "board", "rows", b.rows, "cols", b.cols, "pairs_cleared", pairsCleared)
	b.logGridLocked()
	b.telem.RenewalOccurred(b.rows, b.cols, pairsCleared)
}

// ForceRenew rebuilds the grid and clears the player registry
// unconditionally, bypassing the "at most one card left" threshold that
// gates the automatic renewal in maybeRenewLocked. It exists for the
// admin surface, letting an operator recover a board judged stuck.
func (b *Board) ForceRenew() {
	b.mu.Lock()
	defer b.mu.Unlock()
	pairsCleared := b.pairsClearedSinceRenewal
	b.rebuildGridLocked()
	b.players = make(map[string]*playerState)
	b.pairsClearedSinceRenewal = 0
	b.notifier.Advance()
	b.log.Info("board forcibly renewed", "tag", "board", "rows", b.rows, "cols", b.cols, "pairs_cleared", pairsCleared)
	b.telem.RenewalOccurred(b.rows, b.cols, pairsCleared)
}

// playerLocked returns the PlayerState for id, creating it on first
// contact. Caller must hold b.mu.
func (b *Board) playerLocked(id string) *playerState {
	ps, ok := b.players[id]
	if !ok {
		ps = newPlayerState()
		b.players[id] = ps
	}
	return ps
}

// logGridLocked emits the full grid as a debug-level rendering, the Go
// equivalent of the original Python source's _debug_print_board_state
// (dropped from the distilled spec; see SPEC_FULL.md's supplemented
// features). Costs nothing unless slog's debug level is enabled.
func (b *Board) logGridLocked() {
	if !b.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	rows := make([]string, b.rows)
	for r := 0; r < b.rows; r++ {
		row := make([]byte, 0, b.cols*4)
		for c := 0; c < b.cols; c++ {
			card := b.cards[r*b.cols+c]
			switch {
			case card.Removed:
				row = append(row, "[x]"...)
			case !card.FaceUp:
				row = append(row, "[?]"...)
			default:
				row = append(row, '[')
				row = append(row, card.Label...)
				row = append(row, ']')
			}
		}
		rows[r] = string(row)
	}
	for _, r := range rows {
		b.log.Debug(r, "tag", "board")
	}
}
