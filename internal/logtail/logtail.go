package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
)

const maxLineBytes = 1024 * 1024

// Levels in increasing severity, as written by slog's text handler.
var Levels = []string{"DEBUG", "INFO", "WARN", "ERROR"}

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns the whole file. A missing file yields no
// lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var tail []string
	for scanner.Scan() {
		tail = append(tail, scanner.Text())
		// Compact once the buffer holds twice the window.
		if maxLines > 0 && len(tail) >= 2*maxLines {
			tail = append(tail[:0], tail[len(tail)-maxLines:]...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if maxLines > 0 && len(tail) > maxLines {
		tail = slices.Clone(tail[len(tail)-maxLines:])
	}
	return tail, nil
}

// Level extracts the slog level of a text-handler line ("level=WARN"),
// upper-cased. Lines without one return "".
func Level(line string) string {
	const key = "level="
	i := strings.Index(line, key)
	if i < 0 {
		return ""
	}
	rest := line[i+len(key):]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	return strings.ToUpper(rest)
}

// AtLeast keeps the lines whose level is min or more severe. Lines without
// a level (continuations, panics) are kept. An unknown or empty min keeps
// everything.
func AtLeast(lines []string, min string) []string {
	floor := slices.Index(Levels, strings.ToUpper(min))
	if floor <= 0 {
		return lines
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		lvl := slices.Index(Levels, Level(line))
		if lvl < 0 || lvl >= floor {
			out = append(out, line)
		}
	}
	return out
}
