package debug

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"unicode"
)

// Sink receives trace events. Writes may be buffered until Flush or Close.
type Sink interface {
	Write(event Event) error
	Flush() error
	Close() error
}

// JSONSink writes one JSON object per event (JSON Lines).
type JSONSink struct {
	w       *bufio.Writer
	encoder *json.Encoder
}

// NewJSONSink creates a JSON Lines sink writing to w.
func NewJSONSink(w io.Writer) *JSONSink {
	bw := bufio.NewWriter(w)
	return &JSONSink{
		w:       bw,
		encoder: json.NewEncoder(bw),
	}
}

// Write encodes event as a single line.
func (s *JSONSink) Write(event Event) error {
	return s.encoder.Encode(event)
}

// Flush writes any buffered data to the underlying writer.
func (s *JSONSink) Flush() error {
	return s.w.Flush()
}

// Close flushes the buffer.
func (s *JSONSink) Close() error {
	return s.Flush()
}

// PrettySink writes events as indented key/value text, one block per event.
type PrettySink struct {
	w   *bufio.Writer
	err error
}

// NewPrettySink creates a pretty sink writing to w.
func NewPrettySink(w io.Writer) *PrettySink {
	return &PrettySink{w: bufio.NewWriter(w)}
}

// printf writes one line and remembers the first write error.
func (s *PrettySink) printf(format string, args ...interface{}) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format+"\n", args...)
}

// Write formats one event: a header line, then the payload indented by two spaces.
func (s *PrettySink) Write(event Event) error {
	s.printf("[%s] [%s/%s] session=%s", event.Timestamp, event.Phase, event.Event, event.SessionID)

	switch d := event.Data.(type) {
	case SessionStartData:
		s.printf("  version: %s", d.Version)
	case SessionEndData:
		s.printf("  events: %d, elapsed_ms: %d", d.Events, d.ElapsedMs)
	case LayoutStartData:
		s.printf("  runs: %d, total_runes: %d, max_line_width: %d", d.Runs, d.TotalRunes, d.MaxLineWidth)
		if d.UnknownRune != nil {
			s.printf("  unknown_rune: %s", runeStr(rune(*d.UnknownRune)))
		}
	case GlyphData:
		s.printf("  index: %d, run: %d, rune: %s, size: %dx%d", d.Index, d.Run, runeStr(d.Rune), d.Width, d.Height)
		s.printf("  line_width: %d", d.LineWidth)
		if d.UnknownSubst {
			s.printf("  unknown_subst: true")
		}
	case BreakData:
		s.printf("  line: %d closed at width %d, fragments: %d", d.Line, d.LineWidth, d.Fragments)
		s.printf("  next: %s, advance: %d, limit: %d", runeStr(d.Rune), d.Advance, d.Limit)
		if d.SplitsRun {
			s.printf("  splits_run: true")
		}
	case LayoutEndData:
		s.printf("  lines: %d, line_height: %d, glyphs: %d", d.Lines, d.LineHeight, d.Glyphs)
		s.printf("  line_widths: %v", d.LineWidths)
	case RasterStartData:
		s.printf("  canvas: %dx%d, lines: %d, line_height: %d", d.Width, d.Height, d.Lines, d.LineHeight)
	case RasterLineData:
		s.printf("  line: %d, band_top: %d, fragments: %d, glyphs: %d, end_x: %d",
			d.Line, d.BandTop, d.Fragments, d.Glyphs, d.EndX)
	case RasterEndData:
		s.printf("  glyphs: %d, pixels_written: %d, covered_pixels: %d", d.Glyphs, d.PixelsWritten, d.CoveredPixels)
		s.printf("  elapsed_ms: %d", d.ElapsedMs)
	case ErrorData:
		s.printf("  phase: %s, message: %s", d.Phase, d.Message)
		keys := make([]string, 0, len(d.Context))
		for k := range d.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			s.printf("  %s: %v", k, d.Context[k])
		}
	case nil:
	default:
		s.printf("  data: %+v", d)
	}

	return s.err
}

// Flush writes buffered output to the underlying writer.
func (s *PrettySink) Flush() error {
	if s.err == nil {
		s.err = s.w.Flush()
	}
	return s.err
}

// Close flushes the buffer.
func (s *PrettySink) Close() error {
	return s.Flush()
}

// runeStr formats a rune for display: 'X' (0x58), '你' (U+4F60) or NUL for 0.
func runeStr(r rune) string {
	if r == 0 {
		return "NUL"
	}
	if r >= 32 && r < 127 {
		return fmt.Sprintf("'%c' (0x%02X)", r, r)
	}
	if unicode.IsPrint(r) {
		return fmt.Sprintf("'%c' (U+%04X)", r, r)
	}
	return fmt.Sprintf("U+%04X", r)
}
