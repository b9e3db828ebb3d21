// Package boardfile parses the board text file format described in the
// protocol: a "<rows>x<cols>" header followed by one card label per line,
// row-major. Grounded on original_source/src/board.py's parse_from_file.
package boardfile

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"memory-game-server/boarderr"
)

// Board is the parsed result: dimensions plus the row-major label sequence.
type Board struct {
	Rows, Cols int
	Labels     []string
}

// ParseFile reads and parses the board file at the given path.
func ParseFile(path string) (*Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads the board format from r. Blank lines are skipped; a label
// consisting only of whitespace is rejected as blank, matching the
// protocol's "whitespace-only labels are disallowed" rule.
func Parse(r io.Reader) (*Board, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, &boarderr.ParseErrorAt{Reason: "empty board file"}
	}

	dims := strings.SplitN(lines[0], "x", 2)
	if len(dims) != 2 {
		return nil, &boarderr.ParseErrorAt{Reason: "invalid dimension line " + strconv.Quote(lines[0])}
	}
	rows, err := strconv.Atoi(strings.TrimSpace(dims[0]))
	if err != nil || rows <= 0 {
		return nil, &boarderr.ParseErrorAt{Reason: "invalid row count " + strconv.Quote(dims[0])}
	}
	cols, err := strconv.Atoi(strings.TrimSpace(dims[1]))
	if err != nil || cols <= 0 {
		return nil, &boarderr.ParseErrorAt{Reason: "invalid column count " + strconv.Quote(dims[1])}
	}

	labels := lines[1:]
	want := rows * cols
	if len(labels) != want {
		return nil, &boarderr.ParseErrorAt{Reason: "expected " + strconv.Itoa(want) + " card labels, got " + strconv.Itoa(len(labels))}
	}

	return &Board{Rows: rows, Cols: cols, Labels: labels}, nil
}
