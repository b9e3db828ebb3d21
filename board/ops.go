package board

import (
	"context"
	"time"

	"memory-game-server/boarderr"
)

// Look returns a snapshot for playerID without mutating anything (§4.1:
// non-blocking, does not advance the version).
func (b *Board) Look(playerID string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked(playerID), nil
}

// Flip attempts to flip the card at (row, col) for playerID, dispatching
// to the first- or second-flip rules (§4.3, §4.4) depending on the
// player's current turn phase. It may block inside the first-flip path
// while contending for a card another player controls (rule 1-D); ctx
// cancellation and the board's configured flip-wait budget both bound
// that wait.
func (b *Board) Flip(ctx context.Context, playerID string, row, col int) (string, error) {
	if _, ok := b.index(row, col); !ok {
		return "", &boarderr.PositionError{Row: row, Col: col, Rows: b.rows, Cols: b.cols}
	}

	b.mu.Lock()
	b.maybeRenewLocked()
	ps := b.playerLocked(playerID)
	ps.flips++

	var snap string
	var err error
	switch ps.phase() {
	case 2: // Phase C: discharge the carried-over matched pair, then first-flip.
		b.dischargeMatchedLocked(ps)
		snap, err = b.firstFlip(ctx, playerID, ps, row, col)
	case 1: // Phase B: second flip never blocks beyond the lock itself.
		snap, err = b.secondFlipLocked(playerID, ps, row, col)
		b.mu.Unlock()
	default: // Phase A: discharge a pending no-match pair, then first-flip.
		if ps.pendingRelease != nil {
			b.dischargeNoMatchLocked(ps)
		}
		snap, err = b.firstFlip(ctx, playerID, ps, row, col)
	}
	b.mu.Lock()
	flips, matches := ps.flips, ps.matches
	b.mu.Unlock()
	b.telem.PlayerSeen(playerID, flips, matches)
	return snap, err
}

// dischargeMatchedLocked implements the "previous turn was a match"
// branch of §4.3: both previously controlled cards are removed. Caller
// must hold b.mu.
func (b *Board) dischargeMatchedLocked(ps *playerState) {
	if len(ps.controlled) == 0 {
		return
	}
	for _, pos := range ps.controlled {
		card := &b.cards[pos]
		card.Removed = true
		card.FaceUp = false
		card.Controller = ""
	}
	b.pairsClearedSinceRenewal++
	ps.controlled = nil
	ps.matched = false
	b.notifier.Advance()
}

// dischargeNoMatchLocked implements the "previous turn was a no-match"
// branch of §4.3: the two cards are turned face down only if still
// face-up and uncontrolled by anyone (another player may have claimed
// one in between). Caller must hold b.mu.
func (b *Board) dischargeNoMatchLocked(ps *playerState) {
	pair := ps.pendingRelease
	ps.pendingRelease = nil
	changed := false
	for _, pos := range pair {
		card := &b.cards[pos]
		if !card.Removed && card.FaceUp && card.Controller == "" {
			card.FaceUp = false
			changed = true
		}
	}
	if changed {
		b.notifier.Advance()
	}
}

// firstFlip resolves rules 1-A..1-D against (row, col) for playerID.
// Caller must hold b.mu on entry; firstFlip releases it before returning.
// Matching §5's suspension-point contract, the lock is released only
// while waiting on a contended card, and re-acquired to re-check the card
// after each wake.
func (b *Board) firstFlip(ctx context.Context, playerID string, ps *playerState, row, col int) (string, error) {
	pos, _ := b.index(row, col)
	timer := time.NewTimer(b.flipWait)
	defer timer.Stop()

	for {
		card := &b.cards[pos]

		switch {
		case card.Removed: // 1-A
			b.mu.Unlock()
			return "", boarderr.ErrCardRemoved

		case !card.FaceUp: // 1-B
			card.FaceUp = true
			card.Controller = playerID
			ps.controlled = []position{pos}
			b.notifier.Advance()
			snap := b.snapshotLocked(playerID)
			b.mu.Unlock()
			return snap, nil

		case card.Controller == "": // 1-C
			card.Controller = playerID
			ps.controlled = []position{pos}
			b.notifier.Advance()
			snap := b.snapshotLocked(playerID)
			b.mu.Unlock()
			return snap, nil

		default: // 1-D: controlled by someone else — wait and re-check.
			_, changed := b.notifier.Watch()
			b.mu.Unlock()
			select {
			case <-changed:
				b.mu.Lock()
				continue
			case <-timer.C:
				return "", boarderr.ErrTimeout
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
}

// secondFlipLocked resolves rules 2-A..2-D (and the match check) against
// (row, col) for playerID, whose first card is ps.controlled[0]. Caller
// must hold b.mu; second flip never suspends beyond the board lock.
func (b *Board) secondFlipLocked(playerID string, ps *playerState, row, col int) (string, error) {
	// Bounds were already checked by Flip before dispatching here.
	pos, _ := b.index(row, col)
	firstPos := ps.controlled[0]
	first := &b.cards[firstPos]
	second := &b.cards[pos]

	switch {
	case second.Removed: // 2-A
		first.Controller = ""
		ps.controlled = nil
		ps.matched = false
		b.notifier.Advance()
		return "", boarderr.ErrCardRemoved

	case second.FaceUp && second.Controller == playerID: // 2-B
		// Same player picking the card they already hold (including
		// picking the same position twice). First retains control;
		// the turn is not aborted, no version advance.
		return "", boarderr.ErrControlledByOther

	case second.FaceUp && second.Controller != "": // 2-C
		first.Controller = ""
		ps.controlled = nil
		ps.matched = false
		b.notifier.Advance()
		return "", boarderr.ErrControlledByOther
	}

	if !second.FaceUp { // 2-D
		second.FaceUp = true
		b.notifier.Advance()
	}

	if first.Label == second.Label {
		// Match: both cards stay face-up and controlled, crossing
		// into the next turn as phase C.
		second.Controller = playerID
		ps.controlled = []position{firstPos, pos}
		ps.matched = true
		ps.matches++
		b.notifier.Advance()
	} else {
		// No match: both become face-up and uncontrolled; remembered
		// for discharge on this player's next first flip.
		first.Controller = ""
		second.Controller = ""
		ps.pendingRelease = []position{firstPos, pos}
		ps.controlled = nil
		ps.matched = false
		b.notifier.Advance()
	}

	return b.snapshotLocked(playerID), nil
}

// Map applies transform to every non-removed card's label, serially,
// while the board lock is held (§4.6). transform is trusted: a slow or
// blocking transform observably holds up every other operation, by
// design.
func (b *Board) Map(playerID string, transform func(string) string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.cards {
		if !b.cards[i].Removed {
			b.cards[i].Label = transform(b.cards[i].Label)
		}
	}
	b.notifier.Advance()
	return b.snapshotLocked(playerID), nil
}

// Watch blocks until the board's version advances past its value at
// call time, or timeout elapses, whichever comes first, then returns a
// fresh snapshot. It never fails on timeout — a fresh (possibly
// unchanged) snapshot is always returned — only ctx cancellation
// produces an error (§4.7).
func (b *Board) Watch(ctx context.Context, playerID string, timeout time.Duration) (string, error) {
	b.mu.Lock()
	_, changed := b.notifier.Watch()
	b.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-changed:
	case <-timer.C:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return b.Look(playerID)
}
