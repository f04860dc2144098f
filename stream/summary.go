package stream

import (
	"fmt"
	"strings"
)

// ArxivToolName is the tool whose raw output the summarizer understands.
const ArxivToolName = "arxiv_search"

const (
	entryDelimiter = "<entry>"
	titleOpen      = "<title>"
	titleClose     = "</title>"
	maxTopTitles   = 3
)

// Summarize derives a short human-readable summary of a tool's raw output.
// For the arXiv search tool it counts paper entries and lists up to three
// paper titles; the first title tag in an Atom feed is the feed's own title
// and is skipped. Any other tool gets a generic completion message.
func Summarize(tool, output string) string {
	if tool != ArxivToolName {
		return tool + " complete"
	}
	count := strings.Count(output, entryDelimiter)
	titles := extractTitles(output)
	if len(titles) > 1 {
		top := titles[1:]
		if len(top) > maxTopTitles {
			top = top[:maxTopTitles]
		}
		return fmt.Sprintf("Found %d papers. Top: %s", count, strings.Join(top, " • "))
	}
	return fmt.Sprintf("Found %d papers", count)
}

// extractTitles returns every title-delimited substring in document order,
// trimmed and with internal whitespace runs collapsed to single spaces.
func extractTitles(s string) []string {
	var titles []string
	for {
		i := strings.Index(s, titleOpen)
		if i < 0 {
			break
		}
		s = s[i+len(titleOpen):]
		j := strings.Index(s, titleClose)
		if j < 0 {
			break
		}
		titles = append(titles, strings.Join(strings.Fields(s[:j]), " "))
		s = s[j+len(titleClose):]
	}
	return titles
}
