// Package report renders inspection reports for the console.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/snow-ghost/wasminspect/core"
)

// Renderer writes reports to w.
type Renderer interface {
	Render(w io.Writer, reports []*core.Report) error
}

// ForFormat returns the renderer for "text" or "json".
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "", "text":
		return Text{}, nil
	case "json":
		return JSON{}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// Text prints the human-readable layout. A single report carries no path
// header; a batch separates reports with a path line.
type Text struct{}

func (Text) Render(w io.Writer, reports []*core.Report) error {
	s := NewStream(w, len(reports) > 1)
	for _, r := range reports {
		s.Begin(r.Path)
		s.Read(r.Path, r.Size)
		s.Done(r)
	}
	return s.Err()
}

// Stream writes the text layout step by step while inspections run, so the
// lines for the steps that finished stay on screen when a later one fails.
// It satisfies inspect.Observer.
type Stream struct {
	w     io.Writer
	batch bool
	n     int
	err   error
}

// NewStream writes to w. batch adds the path header used for several files.
func NewStream(w io.Writer, batch bool) *Stream {
	return &Stream{w: w, batch: batch}
}

func (s *Stream) Begin(path string) {
	s.write(func(w io.Writer) { writeHeader(w, path, s.n, s.batch) })
	s.n++
}

func (s *Stream) Read(_ string, size int) {
	s.write(func(w io.Writer) { writeSize(w, size) })
}

func (s *Stream) Done(r *core.Report) {
	s.write(func(w io.Writer) { writeBody(w, r) })
}

// Err returns the first write error.
func (s *Stream) Err() error { return s.err }

func (s *Stream) write(fn func(io.Writer)) {
	if s.err != nil {
		return
	}
	bw := bufio.NewWriter(s.w)
	fn(bw)
	s.err = bw.Flush()
}

func writeHeader(w io.Writer, path string, idx int, batch bool) {
	if batch {
		if idx > 0 {
			io.WriteString(w, "\n")
		}
		fmt.Fprintf(w, "### %s\n", path)
	}
	io.WriteString(w, "=== Analyzing WASM binary ===\n\n")
}

func writeSize(w io.Writer, size int) {
	fmt.Fprintf(w, "Binary size: %d bytes\n", size)
}

func writeBody(w io.Writer, r *core.Report) {
	io.WriteString(w, "\nExports:\n")
	for _, e := range r.Descriptor.Exports {
		fmt.Fprintf(w, "  - %s (%s)\n", e.Name, e.Type)
	}

	io.WriteString(w, "\nImports:\n")
	for _, imp := range r.Descriptor.Imports {
		fmt.Fprintf(w, "  - %s.%s (%s)\n", imp.Module, imp.Name, imp.Type)
	}

	io.WriteString(w, "\n")
	for _, sym := range r.Symbols {
		fmt.Fprintf(w, "[%s] %s\n", sym.Status(), sym.Name)
	}
}

// JSON writes one JSON object per report, one per line.
type JSON struct{}

func (JSON) Render(w io.Writer, reports []*core.Report) error {
	enc := json.NewEncoder(w)
	for _, r := range reports {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report for %s: %w", r.Path, err)
		}
	}
	return nil
}
