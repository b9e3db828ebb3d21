package board

// position is a row-major grid index, kept internally as a flat int
// (row*cols+col) the way the teacher keeps a flat Card.Index; the public
// API still speaks in (row, col) pairs per the protocol.
type position = int

// playerState is the per-player turn record. It is created lazily on a
// player id's first flip (look, map and watch do not create one) and
// lives until the board is renewed (§4's "Lifecycles").
type playerState struct {
	// controlled holds the positions this player currently controls: 0
	// (phase A), 1 (phase B), or 2 (phase C — a matched pair carried over
	// into the next turn; see dischargeMatchedLocked).
	controlled []position
	// matched is meaningful only when len(controlled) == 2.
	matched bool

	// pendingRelease holds the two positions from a just-finished
	// no-match turn, awaiting discharge on this player's next first
	// flip (§4.3's "turned face down only if still face-up and
	// uncontrolled"). Distinct from controlled because a no-match
	// releases control immediately — the player is back in phase A —
	// but the board still owes those cards a face-down check.
	pendingRelease []position

	// flips/matches are telemetry counters, not part of the protocol;
	// see Telemetry.
	flips, matches int
}

func newPlayerState() *playerState {
	return &playerState{}
}

func (ps *playerState) phase() int {
	return len(ps.controlled)
}
