package renderer

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ryanlewis/bdfsurface/internal/common"
)

var (
	black = RGB(0, 0, 0)
	red   = RGB(255, 0, 0)
	blue  = RGB(0, 0, 255)
	green = RGB(0, 255, 0)
)

func TestLayoutScenarios(t *testing.T) {
	tests := []struct {
		name       string
		runs       []Run
		maxWidth   int
		wantLines  []Line
		wantHeight int
	}{
		{
			name:     "fits on one line",
			runs:     []Run{{"AB", black}},
			maxWidth: 20,
			wantLines: []Line{
				{Fragments: []Fragment{{"AB", black}}, Width: 12},
			},
			wantHeight: 8,
		},
		{
			name:     "breaks after first glyph",
			runs:     []Run{{"AB", black}},
			maxWidth: 7,
			wantLines: []Line{
				{Fragments: []Fragment{{"A", black}}, Width: 6},
				{Fragments: []Fragment{{"B", black}}, Width: 6},
			},
			wantHeight: 8,
		},
		{
			name:     "exact fit includes trailing spacing",
			runs:     []Run{{"AB", black}},
			maxWidth: 12,
			wantLines: []Line{
				{Fragments: []Fragment{{"AB", black}}, Width: 12},
			},
			wantHeight: 8,
		},
		{
			name:     "one pixel short of exact fit",
			runs:     []Run{{"AB", black}},
			maxWidth: 11,
			wantLines: []Line{
				{Fragments: []Fragment{{"A", black}}, Width: 6},
				{Fragments: []Fragment{{"B", black}}, Width: 6},
			},
			wantHeight: 8,
		},
		{
			name:     "empty input",
			runs:     nil,
			maxWidth: 10,
			wantLines: []Line{
				{},
			},
			wantHeight: 0,
		},
		{
			name:     "oversized glyph alone",
			runs:     []Run{{"W", black}},
			maxWidth: 10,
			wantLines: []Line{
				{Fragments: []Fragment{{"W", black}}, Width: 31},
			},
			wantHeight: 8,
		},
		{
			name:     "oversized glyph after content",
			runs:     []Run{{"AWB", black}},
			maxWidth: 10,
			wantLines: []Line{
				{Fragments: []Fragment{{"A", black}}, Width: 6},
				{Fragments: []Fragment{{"W", black}}, Width: 31},
				{Fragments: []Fragment{{"B", black}}, Width: 6},
			},
			wantHeight: 8,
		},
		{
			name:     "runs share a line",
			runs:     []Run{{"AB", red}, {"CD", blue}},
			maxWidth: 100,
			wantLines: []Line{
				{Fragments: []Fragment{{"AB", red}, {"CD", blue}}, Width: 24},
			},
			wantHeight: 8,
		},
		{
			name:     "break inside second run",
			runs:     []Run{{"AB", red}, {"CD", blue}},
			maxWidth: 20,
			wantLines: []Line{
				{Fragments: []Fragment{{"AB", red}, {"C", blue}}, Width: 18},
				{Fragments: []Fragment{{"D", blue}}, Width: 6},
			},
			wantHeight: 8,
		},
		{
			name:     "break on run boundary adds no empty fragment",
			runs:     []Run{{"AB", red}, {"CD", blue}},
			maxWidth: 12,
			wantLines: []Line{
				{Fragments: []Fragment{{"AB", red}}, Width: 12},
				{Fragments: []Fragment{{"CD", blue}}, Width: 12},
			},
			wantHeight: 8,
		},
		{
			name:     "empty run keeps an empty fragment",
			runs:     []Run{{"A", red}, {"", blue}, {"B", green}},
			maxWidth: 100,
			wantLines: []Line{
				{Fragments: []Fragment{{"A", red}, {"", blue}, {"B", green}}, Width: 12},
			},
			wantHeight: 8,
		},
		{
			name:     "only an empty run",
			runs:     []Run{{"", red}},
			maxWidth: 10,
			wantLines: []Line{
				{Fragments: []Fragment{{"", red}}},
			},
			wantHeight: 0,
		},
		{
			name:     "line height is global maximum",
			runs:     []Run{{"..", red}, {"A", blue}},
			maxWidth: 4,
			wantLines: []Line{
				{Fragments: []Fragment{{"..", red}}, Width: 4},
				{Fragments: []Fragment{{"A", blue}}, Width: 6},
			},
			wantHeight: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, height, err := Layout(tt.runs, tt.maxWidth, scenarioFont(), nil)
			if err != nil {
				t.Fatalf("Layout() error = %v", err)
			}
			if height != tt.wantHeight {
				t.Errorf("Layout() line height = %d, want %d", height, tt.wantHeight)
			}
			if !reflect.DeepEqual(lines, tt.wantLines) {
				t.Errorf("Layout() lines =\n%+v\nwant\n%+v", lines, tt.wantLines)
			}
		})
	}
}

func TestLayoutConservesText(t *testing.T) {
	font := scenarioFont()
	inputs := [][]Run{
		{{"AB", black}},
		{{"ABCD", red}, {"", blue}, {"DCBA", green}},
		{{"A.B.C", red}, {"W", blue}, {"..", green}},
		{{"x x x", red}, {" ", blue}, {"AAAA", black}},
	}

	for _, runs := range inputs {
		var want strings.Builder
		maxGlyph := 0
		for _, run := range runs {
			want.WriteString(run.Text)
			for _, r := range run.Text {
				if h := font[r].Height(); h > maxGlyph {
					maxGlyph = h
				}
			}
		}

		for width := 1; width <= 40; width++ {
			lines, height, err := Layout(runs, width, font, nil)
			if err != nil {
				t.Fatalf("Layout(%v, %d) error = %v", runs, width, err)
			}

			got := joinedText(lines)
			if got != want.String() {
				t.Errorf("Layout(%v, %d) text = %q, want %q", runs, width, got, want.String())
			}
			if utf8.RuneCountInString(got) != utf8.RuneCountInString(want.String()) {
				t.Errorf("Layout(%v, %d) lost characters", runs, width)
			}
			if height != maxGlyph {
				t.Errorf("Layout(%v, %d) height = %d, want %d", runs, width, height, maxGlyph)
			}

			for i, l := range lines {
				if l.Width > width && utf8.RuneCountInString(l.Text()) > 1 {
					t.Errorf("Layout(%v, %d) line %d (%q) width %d exceeds limit", runs, width, i, l.Text(), l.Width)
				}
				if l.Width == 0 && i != len(lines)-1 {
					t.Errorf("Layout(%v, %d) line %d is empty but not last", runs, width, i)
				}

				sum := 0
				for _, f := range l.Fragments {
					for _, r := range f.Text {
						sum += font[r].Width() + common.GlyphSpacing
					}
				}
				if sum != l.Width {
					t.Errorf("Layout(%v, %d) line %d width = %d, glyph advances sum to %d", runs, width, i, l.Width, sum)
				}
			}
		}
	}
}

func TestLayoutErrors(t *testing.T) {
	tests := []struct {
		name    string
		runs    []Run
		width   int
		src     GlyphSource
		wantErr error
	}{
		{"missing glyph", []Run{{"AZ", black}}, 20, scenarioFont(), common.ErrGlyphNotFound},
		{"zero width", []Run{{"A", black}}, 0, scenarioFont(), common.ErrInvalidWidth},
		{"negative width", []Run{{"A", black}}, -5, scenarioFont(), common.ErrInvalidWidth},
		{"nil source", []Run{{"A", black}}, 10, nil, common.ErrNilFont},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, _, err := Layout(tt.runs, tt.width, tt.src, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Layout() error = %v, want %v", err, tt.wantErr)
			}
			if lines != nil {
				t.Errorf("Layout() returned lines on error: %+v", lines)
			}
		})
	}
}

func TestLayoutUnknownRune(t *testing.T) {
	t.Run("substitutes replacement", func(t *testing.T) {
		q := '?'
		lines, height, err := Layout([]Run{{"AZB", red}}, 100, scenarioFont(), &Options{UnknownRune: &q})
		if err != nil {
			t.Fatalf("Layout() error = %v", err)
		}
		if got := lineTexts(lines); !reflect.DeepEqual(got, []string{"A?B"}) {
			t.Errorf("Layout() lines = %q, want [\"A?B\"]", got)
		}
		if lines[0].Width != 6+5+6 {
			t.Errorf("Layout() width = %d, want %d", lines[0].Width, 17)
		}
		if height != 8 {
			t.Errorf("Layout() height = %d, want 8", height)
		}
	})

	t.Run("replacement missing", func(t *testing.T) {
		q := 'Q'
		_, _, err := Layout([]Run{{"AZ", red}}, 100, scenarioFont(), &Options{UnknownRune: &q})
		if !errors.Is(err, common.ErrGlyphNotFound) {
			t.Fatalf("Layout() error = %v, want ErrGlyphNotFound", err)
		}
		if !strings.Contains(err.Error(), "replacement") {
			t.Errorf("error should mention the replacement, got %v", err)
		}
	})
}

func TestLineText(t *testing.T) {
	l := Line{Fragments: []Fragment{{"ab", red}, {"", blue}, {"cd", green}}}
	if got := l.Text(); got != "abcd" {
		t.Errorf("Text() = %q, want %q", got, "abcd")
	}
	if got := (Line{}).Text(); got != "" {
		t.Errorf("empty Text() = %q", got)
	}
}

func TestColor(t *testing.T) {
	c := RGB(255, 73, 170)
	if got := c.String(); got != "#ff49aa" {
		t.Errorf("String() = %q, want %q", got, "#ff49aa")
	}
	r, g, b, a := c.RGBA()
	if r != 0xffff || g != 0x4949 || b != 0xaaaa || a != 0xffff {
		t.Errorf("RGBA() = %#x %#x %#x %#x", r, g, b, a)
	}
}

func BenchmarkLayout(b *testing.B) {
	font := scenarioFont()
	runs := []Run{
		{strings.Repeat("ABCD ", 40), red},
		{strings.Repeat("x.", 50), blue},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := Layout(runs, 60, font, nil); err != nil {
			b.Fatal(err)
		}
	}
}
