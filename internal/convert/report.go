package convert

import (
	"fmt"
	"io"
)

// DefaultPreviewCount is how many cards WriteSummary lists by default.
const DefaultPreviewCount = 5

// WriteSummary prints the record count, both paths, and up to preview cards.
func WriteSummary(w io.Writer, out *ConvertOutput, preview int) {
	fmt.Fprintf(w, "Successfully parsed %d cards from %s\n", out.Count, out.Source)
	fmt.Fprintf(w, "Output written to %s\n", out.Destination)

	if preview <= 0 {
		return
	}
	fmt.Fprintf(w, "\nFirst %d cards:\n", preview)
	for i, c := range out.Cards {
		if i >= preview {
			break
		}
		fmt.Fprintf(w, "  %d. Easy: '%s' | Hard: '%s'\n", i+1, c.Easy, c.Hard)
	}
}

// WriteIssue prints a warning for a dropped line.
func WriteIssue(w io.Writer, issue LineIssue) {
	fmt.Fprintf(w, "Warning: %s\n", issue.Message())
}
