// Command bdfsurface renders colored text with a BDF bitmap font into a BMP or PNG image.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ryanlewis/bdfsurface"
	"github.com/ryanlewis/bdfsurface/internal/debug"
	"github.com/spf13/pflag"
	"golang.org/x/image/font/basicfont"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	defaultWidth  = 60
	defaultOutput = "output.bmp"
	defaultColor  = "#000000"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// config is the resolved set of inputs for one invocation.
type config struct {
	fontPath    string
	unknownRune string
	output      string
	color       string
	runsFile    string
	width       int
	debugMode   bool
	debugFile   string
	debugPretty bool
}

func run(args []string, stdout, stderr io.Writer) int {
	var (
		cfg         config
		showVersion bool
		showHelp    bool
	)

	fs := pflag.NewFlagSet("bdfsurface", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&cfg.fontPath, "font", "f", "", "Path to BDF font file or font name (default: built-in 7x13)")
	fs.StringVarP(&cfg.unknownRune, "unknown-rune", "u", "", "Rune to draw in place of characters missing from the font")
	fs.StringVarP(&cfg.output, "output", "o", defaultOutput, "Output image (.png writes PNG, anything else BMP)")
	fs.StringVarP(&cfg.color, "color", "c", defaultColor, "Text color for command line text (#rrggbb, #rgb or r,g,b)")
	fs.StringVarP(&cfg.runsFile, "runs", "r", "", "YAML file with colored text runs")
	fs.IntVarP(&cfg.width, "width", "w", defaultWidth, "Maximum line width in pixels")
	fs.BoolVarP(&showVersion, "version", "v", false, "Show version information")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show help message")
	fs.BoolVar(&cfg.debugMode, "debug", false, "Enable debug mode (outputs to stderr)")
	fs.StringVar(&cfg.debugFile, "debug-file", "", "Write debug output to file instead of stderr")
	fs.BoolVar(&cfg.debugPretty, "debug-pretty", false, "Use pretty format for debug output (default: JSON)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if showHelp {
		printHelp(stdout, fs)
		return 0
	}

	if showVersion {
		fmt.Fprintf(stdout, "bdfsurface version %s (commit: %s, built: %s)\n", version, commit, date)
		return 0
	}

	texts, err := buildTexts(fs, &cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if len(texts) == 0 {
		fmt.Fprintln(stderr, "Error: no text provided")
		printHelp(stderr, fs)
		return 1
	}

	src, err := loadSource(cfg.fontPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading font: %v\n", err)
		return 1
	}

	var renderOpts []bdfsurface.Option
	if cfg.unknownRune != "" {
		r, err := parseUnknownRune(cfg.unknownRune)
		if err != nil {
			fmt.Fprintf(stderr, "Error parsing unknown rune: %v\n", err)
			return 1
		}
		renderOpts = append(renderOpts, bdfsurface.WithUnknownRune(r))
	}

	debug.InitFromEnv()
	if cfg.debugMode || cfg.debugFile != "" || debug.Enabled() {
		debug.SetEnabled(true)
		defer debug.SetEnabled(false)

		var output io.Writer = stderr
		if cfg.debugFile != "" {
			file, err := os.Create(cfg.debugFile)
			if err != nil {
				fmt.Fprintf(stderr, "Error creating debug file: %v\n", err)
				return 1
			}
			defer file.Close()
			output = file
		}

		var sink debug.Sink
		if cfg.debugPretty || debug.PrettyFromEnv() {
			sink = debug.NewPrettySink(output)
		} else {
			sink = debug.NewJSONSink(output)
		}

		if session := debug.NewSession(sink); session != nil {
			defer session.Close()
			renderOpts = append(renderOpts, bdfsurface.WithDebug(session))
		}
	}

	canvas, err := bdfsurface.Render(texts, cfg.width, src, renderOpts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error rendering text: %v\n", err)
		return 1
	}

	if err := canvas.Save(cfg.output); err != nil {
		fmt.Fprintf(stderr, "Error writing image: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "wrote %s (%dx%d)\n", cfg.output, canvas.Width(), canvas.Height())
	return 0
}

// buildTexts collects the runs to render from the run file and the positional arguments.
// Flags given on the command line take precedence over run file settings.
func buildTexts(fs *pflag.FlagSet, cfg *config) ([]bdfsurface.Text, error) {
	var texts []bdfsurface.Text

	if cfg.runsFile != "" {
		rf, err := loadRunFile(cfg.runsFile)
		if err != nil {
			return nil, err
		}
		rf.apply(fs, cfg)
		texts, err = rf.texts()
		if err != nil {
			return nil, fmt.Errorf("run file %s: %w", cfg.runsFile, err)
		}
	}

	if args := fs.Args(); len(args) > 0 {
		c, err := bdfsurface.ParseColor(cfg.color)
		if err != nil {
			return nil, fmt.Errorf("--color: %w", err)
		}
		texts = append(texts, bdfsurface.Text{Text: strings.Join(args, " "), Color: c})
	}
	return texts, nil
}

// loadSource returns the glyph source for fontPath, or the built-in face when it is empty.
func loadSource(fontPath string) (bdfsurface.GlyphSource, error) {
	if fontPath == "" {
		return bdfsurface.FaceSource(basicfont.Face7x13), nil
	}
	font, err := bdfsurface.LoadFont(resolveFontPath(fontPath))
	if err != nil {
		return nil, err
	}
	return font, nil
}

// resolveFontPath resolves a font path from either a full path or just a font name
func resolveFontPath(fontPath string) string {
	if strings.EqualFold(filepath.Ext(fontPath), ".bdf") {
		return fontPath
	}

	if _, err := os.Stat(fontPath); err == nil {
		return fontPath
	}

	withExt := fontPath + ".bdf"
	if _, err := os.Stat(withExt); err == nil {
		return withExt
	}

	for _, dir := range []string{"resource", "fonts"} {
		candidate := filepath.Join(dir, fontPath+".bdf")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	// Fall through to the path as given so LoadFont reports the real error
	return fontPath
}

func printHelp(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "bdfsurface - render colored text with BDF bitmap fonts")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  bdfsurface [flags] <text>")
	fmt.Fprintln(w, "  bdfsurface [flags] --runs runs.yaml")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run file:")
	fmt.Fprintln(w, "  width: 60")
	fmt.Fprintln(w, "  runs:")
	fmt.Fprintln(w, "    - text: \"Hello, \"")
	fmt.Fprintln(w, "      color: \"#ff0000\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Unknown rune formats:")
	fmt.Fprintln(w, "  Literal: -u '*'")
	fmt.Fprintln(w, "  Unicode escape: -u '\\u2588'")
	fmt.Fprintln(w, "  Unicode notation: -u 'U+2588'")
	fmt.Fprintln(w, "  Decimal: -u '63'")
	fmt.Fprintln(w, "  Hexadecimal: -u '0x3F'")
}
