package context

import (
	"sort"
	"strings"

	"sharpcheck/internal/config"
	"sharpcheck/internal/models"
)

// AnalysisContext owns one file's source text and the analysis configuration,
// and maps byte offsets to 1-based line and column positions.
type AnalysisContext struct {
	File   string
	Source string
	// LineStarts holds the byte offset of every line start; never empty, first element 0.
	LineStarts []int
	Config     config.AnalysisConfig
}

// New builds a context with the default analysis configuration.
func New(file, source string) *AnalysisContext {
	return NewWithConfig(file, source, config.DefaultAnalysisConfig())
}

func NewWithConfig(file, source string, cfg config.AnalysisConfig) *AnalysisContext {
	starts := make([]int, 1, strings.Count(source, "\n")+1)
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &AnalysisContext{
		File:       file,
		Source:     source,
		LineStarts: starts,
		Config:     cfg,
	}
}

// LocationFromSpan converts a byte offset and length into a source location.
// Out-of-range values are clamped to the source.
func (c *AnalysisContext) LocationFromSpan(start, length int) models.SourceLocation {
	n := len(c.Source)
	start = min(max(start, 0), n)
	length = min(max(length, 0), n-start)

	// exact hit is that line, otherwise the line before the insertion point
	line := sort.Search(len(c.LineStarts), func(i int) bool { return c.LineStarts[i] > start }) - 1
	if line < 0 {
		line = 0
	}
	return models.SourceLocation{
		File:   c.File,
		Line:   line + 1,
		Column: start - c.LineStarts[line] + 1,
		Length: length,
	}
}

// LocationFromRange converts a [start, end) byte range; an inverted range has length 0.
func (c *AnalysisContext) LocationFromRange(start, end int) models.SourceLocation {
	return c.LocationFromSpan(start, max(end-start, 0))
}

// LineText returns the 1-based line without its line terminator, or "" when out of range.
func (c *AnalysisContext) LineText(line int) string {
	if line < 1 || line > len(c.LineStarts) {
		return ""
	}
	start := c.LineStarts[line-1]
	end := len(c.Source)
	if line < len(c.LineStarts) {
		end = c.LineStarts[line]
	}
	return strings.TrimRight(c.Source[start:end], "\r\n")
}

// LineOf returns the 1-based line holding the byte offset.
func (c *AnalysisContext) LineOf(offset int) int {
	return c.LocationFromSpan(offset, 0).Line
}

// LinesBetween counts the lines covered by [start, end), at least 1.
func (c *AnalysisContext) LinesBetween(start, end int) int {
	return max(c.LineOf(end)-c.LineOf(start)+1, 1)
}
