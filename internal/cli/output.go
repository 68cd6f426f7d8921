package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ParkerM2/Syrnia-Tracker-sub000/internal/domain/week"
	"github.com/goccy/go-json"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseInstant reads an RFC3339 instant or a YYYY-MM-DD civil date, taken
// at midnight in the calendar's zone.
func parseInstant(s string, cal *week.Calendar) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return cal.ParseDate(s)
}

// readInput reads path, or stdin when path is "-" or empty.
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
