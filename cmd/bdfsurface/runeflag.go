package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// runeForms are the numeric spellings accepted for --unknown-rune, tried in order.
// digits pins the exact digit count; zero allows any.
var runeForms = []struct {
	prefix string
	digits int
	base   int
}{
	{`\u`, 4, 16},
	{`\U`, 8, 16},
	{"U+", 0, 16},
	{"u+", 0, 16},
	{"0x", 0, 16},
	{"0X", 0, 16},
	{"", 0, 10},
}

// parseUnknownRune accepts a single literal character or one of runeForms,
// e.g. "*", "█", "U+2588", "0x3F" or "63".
func parseUnknownRune(s string) (rune, error) {
	if s == "" {
		return 0, errors.New("unknown rune cannot be empty")
	}
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		return r, nil
	}

	for _, f := range runeForms {
		digits, ok := strings.CutPrefix(s, f.prefix)
		if !ok || (f.digits > 0 && len(digits) != f.digits) {
			continue
		}
		code, err := strconv.ParseInt(digits, f.base, 32)
		if err != nil {
			continue
		}
		if r := rune(code); utf8.ValidRune(r) {
			return r, nil
		}
		return 0, fmt.Errorf("%s is not a valid Unicode scalar value", s)
	}
	return 0, fmt.Errorf("invalid rune format: %s", s)
}
