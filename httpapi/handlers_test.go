package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"memory-game-server/boarderr"
)

// fakeBoard is a minimal stand-in for *board.Board, letting these tests
// exercise routing/status-code behavior without the real contention
// protocol.
type fakeBoard struct {
	lookFn  func(string) (string, error)
	flipFn  func(context.Context, string, int, int) (string, error)
	mapFn   func(string, func(string) string) (string, error)
	watchFn func(context.Context, string, time.Duration) (string, error)
}

func (f *fakeBoard) Look(playerID string) (string, error) { return f.lookFn(playerID) }
func (f *fakeBoard) Flip(ctx context.Context, playerID string, row, col int) (string, error) {
	return f.flipFn(ctx, playerID, row, col)
}
func (f *fakeBoard) Map(playerID string, transform func(string) string) (string, error) {
	return f.mapFn(playerID, transform)
}
func (f *fakeBoard) Watch(ctx context.Context, playerID string, timeout time.Duration) (string, error) {
	return f.watchFn(ctx, playerID, timeout)
}

func TestHandleLook(t *testing.T) {
	fb := &fakeBoard{lookFn: func(id string) (string, error) {
		if id != "P1" {
			t.Fatalf("player id = %q, want P1", id)
		}
		return "2x2\ndown\ndown\ndown\ndown", nil
	}}
	h := New(fb, time.Second, "", nil)
	mux := http.NewServeMux()
	h.Routes(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/look/P1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "2x2\ndown\ndown\ndown\ndown" {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestHandleFlipParsesLocation(t *testing.T) {
	var gotRow, gotCol int
	fb := &fakeBoard{flipFn: func(_ context.Context, _ string, row, col int) (string, error) {
		gotRow, gotCol = row, col
		return "1x1\nmy A", nil
	}}
	h := New(fb, time.Second, "", nil)
	mux := http.NewServeMux()
	h.Routes(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/flip/P1/1,2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotRow != 1 || gotCol != 2 {
		t.Fatalf("row,col = %d,%d, want 1,2", gotRow, gotCol)
	}
}

func TestHandleFlipConflictOnContentionError(t *testing.T) {
	fb := &fakeBoard{flipFn: func(context.Context, string, int, int) (string, error) {
		return "", boarderr.ErrCardRemoved
	}}
	h := New(fb, time.Second, "", nil)
	mux := http.NewServeMux()
	h.Routes(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/flip/P1/0,0", nil))
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestHandleFlipBadRequestOnInvalidPosition(t *testing.T) {
	fb := &fakeBoard{flipFn: func(context.Context, string, int, int) (string, error) {
		return "", &boarderr.PositionError{Row: 9, Col: 9, Rows: 2, Cols: 2}
	}}
	h := New(fb, time.Second, "", nil)
	mux := http.NewServeMux()
	h.Routes(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/flip/P1/9,9", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleFlipRejectsMalformedLocation(t *testing.T) {
	fb := &fakeBoard{flipFn: func(context.Context, string, int, int) (string, error) {
		t.Fatal("board.Flip should not be called for a malformed location")
		return "", nil
	}}
	h := New(fb, time.Second, "", nil)
	mux := http.NewServeMux()
	h.Routes(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/flip/P1/not-a-location", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleReplaceBuildsTransform(t *testing.T) {
	var gotTransform func(string) string
	fb := &fakeBoard{mapFn: func(_ string, transform func(string) string) (string, error) {
		gotTransform = transform
		return "ok", nil
	}}
	h := New(fb, time.Second, "", nil)
	mux := http.NewServeMux()
	h.Routes(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/replace/P1/A/Z", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := gotTransform("A"); got != "Z" {
		t.Fatalf("transform(A) = %q, want Z", got)
	}
	if got := gotTransform("B"); got != "B" {
		t.Fatalf("transform(B) = %q, want B (unchanged)", got)
	}
}

func TestHandleWatchUsesConfiguredTimeout(t *testing.T) {
	var gotTimeout time.Duration
	fb := &fakeBoard{watchFn: func(_ context.Context, _ string, timeout time.Duration) (string, error) {
		gotTimeout = timeout
		return "snap", nil
	}}
	h := New(fb, 7*time.Second, "", nil)
	mux := http.NewServeMux()
	h.Routes(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/watch/P1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotTimeout != 7*time.Second {
		t.Fatalf("timeout = %v, want 7s", gotTimeout)
	}
}

func TestHandleWatchCancellation(t *testing.T) {
	fb := &fakeBoard{watchFn: func(ctx context.Context, _ string, _ time.Duration) (string, error) {
		return "", context.Canceled
	}}
	h := New(fb, time.Second, "", nil)
	mux := http.NewServeMux()
	h.Routes(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/watch/P1", nil))
	if w.Code != http.StatusRequestTimeout {
		t.Fatalf("status = %d, want 408", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	fb := &fakeBoard{lookFn: func(string) (string, error) { return "", errors.New("unreachable") }}
	h := New(fb, time.Second, "", nil)
	mux := http.NewServeMux()
	h.Routes(mux)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/look/P1", nil)
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
}
