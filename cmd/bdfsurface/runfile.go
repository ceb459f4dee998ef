package main

import (
	"fmt"
	"os"

	"github.com/ryanlewis/bdfsurface"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// runFile is the YAML document accepted by --runs.
type runFile struct {
	Font        string    `yaml:"font"`
	Width       int       `yaml:"width"`
	Output      string    `yaml:"output"`
	UnknownRune string    `yaml:"unknown_rune"`
	Runs        []runSpec `yaml:"runs"`
}

type runSpec struct {
	Text  string `yaml:"text"`
	Color string `yaml:"color"`
}

func loadRunFile(path string) (*runFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}
	return parseRunFile(data)
}

func parseRunFile(data []byte) (*runFile, error) {
	var rf runFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse run file: %w", err)
	}
	if rf.Width < 0 {
		return nil, fmt.Errorf("run file width must be positive, got %d", rf.Width)
	}
	return &rf, nil
}

// apply copies settings from the file into cfg unless the matching flag was set explicitly.
func (rf *runFile) apply(fs *pflag.FlagSet, cfg *config) {
	if rf.Font != "" && !fs.Changed("font") {
		cfg.fontPath = rf.Font
	}
	if rf.Width != 0 && !fs.Changed("width") {
		cfg.width = rf.Width
	}
	if rf.Output != "" && !fs.Changed("output") {
		cfg.output = rf.Output
	}
	if rf.UnknownRune != "" && !fs.Changed("unknown-rune") {
		cfg.unknownRune = rf.UnknownRune
	}
}

// texts converts the file's runs, defaulting a missing color to black.
func (rf *runFile) texts() ([]bdfsurface.Text, error) {
	texts := make([]bdfsurface.Text, 0, len(rf.Runs))
	for i, r := range rf.Runs {
		c := bdfsurface.RGB(0, 0, 0)
		if r.Color != "" {
			var err error
			c, err = bdfsurface.ParseColor(r.Color)
			if err != nil {
				return nil, fmt.Errorf("run %d: %w", i+1, err)
			}
		}
		texts = append(texts, bdfsurface.Text{Text: r.Text, Color: c})
	}
	return texts, nil
}
