package board

// Telemetry is an optional hook for recording board events outside the
// protocol itself (never board state — see SPEC_FULL.md's telemetry
// store section). The board package depends only on this interface, not
// on the store package, so it stays testable without a database and free
// of an import cycle (store never needs to import board).
type Telemetry interface {
	// RenewalOccurred is called once per renewal, after the grid has
	// been rebuilt, with the number of pairs that were cleared since
	// the previous renewal.
	RenewalOccurred(rows, cols, pairsCleared int)
	// PlayerSeen is called on every flip with the player's running
	// flip and match counts.
	PlayerSeen(playerID string, flips, matches int)
}

// noopTelemetry discards everything; it's the default when no Telemetry
// is configured.
type noopTelemetry struct{}

func (noopTelemetry) RenewalOccurred(int, int, int) {}
func (noopTelemetry) PlayerSeen(string, int, int)   {}
