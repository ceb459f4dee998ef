package debug

// LayoutStartData contains information about the start of a layout pass.
type LayoutStartData struct {
	Runs         int  `json:"runs"`
	TotalRunes   int  `json:"total_runes"`
	MaxLineWidth int  `json:"max_line_width"`
	UnknownRune  *int `json:"unknown_rune,omitempty"`
}

// GlyphData contains information about a placed glyph.
type GlyphData struct {
	Index        int  `json:"index"`
	Run          int  `json:"run"`
	Rune         rune `json:"rune"`
	Width        int  `json:"width"`
	Height       int  `json:"height"`
	LineWidth    int  `json:"line_width"`
	UnknownSubst bool `json:"unknown_subst,omitempty"`
}

// BreakData contains information about a width-triggered line break.
type BreakData struct {
	Line      int  `json:"line"`
	Rune      rune `json:"rune"`
	LineWidth int  `json:"line_width"`
	Advance   int  `json:"advance"`
	Limit     int  `json:"limit"`
	Fragments int  `json:"fragments"`
	SplitsRun bool `json:"splits_run"`
}

// LayoutEndData contains information about a completed layout pass.
type LayoutEndData struct {
	Lines      int   `json:"lines"`
	LineHeight int   `json:"line_height"`
	LineWidths []int `json:"line_widths"`
	Glyphs     int   `json:"glyphs"`
}

// RasterStartData contains the canvas geometry chosen for rasterization.
type RasterStartData struct {
	Width      int `json:"width"`
	Height     int `json:"height"`
	Lines      int `json:"lines"`
	LineHeight int `json:"line_height"`
}

// RasterLineData contains information about one rasterized line band.
type RasterLineData struct {
	Line      int `json:"line"`
	BandTop   int `json:"band_top"`
	Fragments int `json:"fragments"`
	Glyphs    int `json:"glyphs"`
	EndX      int `json:"end_x"`
}

// RasterEndData contains information about the end of a render operation.
type RasterEndData struct {
	Glyphs        int   `json:"glyphs"`
	PixelsWritten int   `json:"pixels_written"`
	CoveredPixels int   `json:"covered_pixels"`
	ElapsedMs     int64 `json:"elapsed_ms"`
}

// ErrorData contains error information.
type ErrorData struct {
	Phase   string                 `json:"phase"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// SessionStartData opens every session.
type SessionStartData struct {
	Version string `json:"version"`
}

// SessionEndData closes a session. Events includes the End event itself.
type SessionEndData struct {
	ElapsedMs int64 `json:"elapsed_ms"`
	Events    int   `json:"events"`
}
