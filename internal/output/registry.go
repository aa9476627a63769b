// Package output writes rendered report grids: go-pretty text, markdown, CSV and
// HTML, an HTML table of contents, and SQLite tabular records.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sanspareilsmyn/annualtables/internal/report"
)

// WriteFunc renders one grid to w.
type WriteFunc func(w io.Writer, g report.Grid) error

type writer struct {
	fn  WriteFunc
	ext string
}

// writers maps a format name to its handler. Register is last-wins.
var writers = map[string]writer{}

// Register adds or replaces the writer for format. ext is the file extension
// used when reports go to files.
func Register(format, ext string, fn WriteFunc) {
	writers[strings.ToLower(format)] = writer{fn: fn, ext: ext}
}

// Extension returns the file extension of format, or "" if it is unknown.
func Extension(format string) string {
	return writers[strings.ToLower(format)].ext
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	out := make([]string, 0, len(writers))
	for f := range writers {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Validate checks that every requested format has a writer.
func Validate(formats []string) error {
	for _, f := range formats {
		if _, ok := writers[strings.ToLower(f)]; !ok {
			return fmt.Errorf("%w %q (have %s)", ErrUnknownFormat, f, strings.Join(Formats(), ", "))
		}
	}
	return nil
}

// Write renders g in the named format.
func Write(format string, w io.Writer, g report.Grid) error {
	wr, ok := writers[strings.ToLower(format)]
	if !ok {
		return fmt.Errorf("%w %q (no writer registered)", ErrUnknownFormat, format)
	}
	return wr.fn(w, g)
}

// WriteAll renders every grid in the named format, one after another.
func WriteAll(format string, w io.Writer, grids []report.Grid) error {
	for _, g := range grids {
		if err := Write(format, w, g); err != nil {
			return err
		}
	}
	return nil
}
