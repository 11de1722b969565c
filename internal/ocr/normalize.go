package ocr

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	// OCR often breaks a digit group after the comma: "3, 800".
	reSplitGroup = regexp.MustCompile(`(\d),[ \x{3000}]+(\d{3})`)
	reBoxNoise   = regexp.MustCompile(`(?m)^[ \t]*[_\-=]{3,}[ \t]*$`)
)

// Options controls text cleanup.
type Options struct {
	// FoldWidth applies NFKC so full-width digits, ￥ and ideographic spaces
	// become their ASCII/half-width forms.
	FoldWidth bool
}

// Normalize collapses noisy whitespace and fixes common OCR artifacts.
// Line breaks are kept; runs of blank lines collapse into one.
func Normalize(s string, opts Options) string {
	if s == "" {
		return s
	}
	if opts.FoldWidth {
		s = norm.NFKC.String(s)
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reBoxNoise.ReplaceAllString(s, "")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = NormalizeLine(lines[i], Options{})
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// NormalizeLine cleans a single line: rejoins split digit groups and trims.
func NormalizeLine(line string, opts Options) string {
	if opts.FoldWidth {
		line = norm.NFKC.String(line)
	}
	line = reSplitGroup.ReplaceAllString(line, "$1,$2")
	return strings.TrimSpace(line)
}

// Lines splits cleaned text into lines, dropping none so indexes stay stable.
func Lines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
