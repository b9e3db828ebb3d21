package board

import (
	"context"
	"math/rand"
	"time"
)

// simulatedPlayer drives a Board the way a real client would, porting
// the teacher's ai package's "remember revealed labels, prefer a known
// pair, otherwise explore" heuristic (minus the power-up/EV machinery,
// which has no equivalent in this protocol) into a load generator for
// concurrency tests. It's test-only scaffolding, not part of the
// package's public surface.
type simulatedPlayer struct {
	id       string
	board    *Board
	rnd      *rand.Rand
	delayMin time.Duration
	delayMax time.Duration

	// memory maps a position to the label last seen there, the same
	// bookkeeping ai.pickArcanaToUse's memory argument holds.
	memory map[position]string
}

func newSimulatedPlayer(id string, b *Board, seed int64) *simulatedPlayer {
	return &simulatedPlayer{
		id:       id,
		board:    b,
		rnd:      rand.New(rand.NewSource(seed)),
		delayMin: time.Millisecond,
		delayMax: 3 * time.Millisecond,
		memory:   make(map[position]string),
	}
}

func (p *simulatedPlayer) delay() {
	d := p.delayMin
	if p.delayMax > p.delayMin {
		d += time.Duration(p.rnd.Int63n(int64(p.delayMax - p.delayMin)))
	}
	time.Sleep(d)
}

// knownPair returns two positions this player remembers holding
// matching labels, or ok=false if it knows of none.
func (p *simulatedPlayer) knownPair() (a, b position, ok bool) {
	byLabel := make(map[string][]position)
	for pos, label := range p.memory {
		byLabel[label] = append(byLabel[label], pos)
	}
	for _, positions := range byLabel {
		if len(positions) >= 2 {
			return positions[0], positions[1], true
		}
	}
	return 0, 0, false
}

func (p *simulatedPlayer) randomPosition() position {
	row := p.rnd.Intn(p.board.Rows())
	col := p.rnd.Intn(p.board.Cols())
	return row*p.board.Cols() + col
}

func (p *simulatedPlayer) rowCol(pos position) (row, col int) {
	return pos / p.board.Cols(), pos % p.board.Cols()
}

// rememberFrom scans the rendered snapshot and records every face-up
// label this player can currently see, the way a real client would
// track revealed cards across turns.
func (p *simulatedPlayer) rememberFrom(snap string) {
	ls := lines(snap)
	for i := 1; i < len(ls); i++ {
		switch {
		case len(ls[i]) > 3 && ls[i][:3] == "my ":
			p.memory[position(i-1)] = ls[i][3:]
		case len(ls[i]) > 3 && ls[i][:3] == "up ":
			p.memory[position(i-1)] = ls[i][3:]
		case ls[i] == "none":
			delete(p.memory, position(i-1))
		}
	}
}

// playTurns performs n flip attempts, preferring a remembered pair when
// one is known and falling back to exploration otherwise, ignoring
// contention/timeout errors (expected under concurrent play) and
// stopping early on ctx cancellation.
func (p *simulatedPlayer) playTurns(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var target position
		if a, _, ok := p.knownPair(); ok {
			target = a
		} else {
			target = p.randomPosition()
		}
		row, col := p.rowCol(target)
		snap, err := p.board.Flip(ctx, p.id, row, col)
		if err == nil {
			p.rememberFrom(snap)
		}
		p.delay()
	}
}
