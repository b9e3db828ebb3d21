package store

import (
	"context"
	"testing"
)

// A nil *Store must behave like a configured-off telemetry sink: every
// method is a no-op and Stats returns zero values, mirroring the
// teacher's "pass an empty DATABASE_URL to disable persistence" contract.

func TestNilStoreIsANoop(t *testing.T) {
	var s *Store

	s.RenewalOccurred(4, 4, 1)
	s.PlayerSeen("P1", 3, 1)
	s.Close()

	stats, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats on nil store: %v", err)
	}
	if stats.RenewalCount != 0 || stats.PlayerCount != 0 || stats.TotalFlips != 0 || stats.TotalMatches != 0 {
		t.Fatalf("Stats on nil store = %+v, want zero counters", stats)
	}
	if len(stats.RecentRenewals) != 0 || len(stats.RecentActivity) != 0 {
		t.Fatalf("Stats on nil store = %+v, want no recent rows", stats)
	}
}
