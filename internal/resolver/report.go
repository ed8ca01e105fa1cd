package resolver

import (
	"fmt"
	"io"

	"dupetrack/pkg/models"

	"github.com/dustin/go-humanize"
)

// PrintDuplicates lists every duplicate group before resolution starts
func PrintDuplicates(out io.Writer, groups models.Groups) {
	dups := groups.Duplicates()
	for _, key := range dups.Keys() {
		fmt.Fprintf(out, "Duplicate song: %s\n", key)
		for _, m := range dups[key] {
			fmt.Fprintf(out, "- %s at %d kbps\n", m.Path, m.BitrateKbps)
		}
	}
}

// Counts tallies group outcomes
func (r *Report) Counts() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, g := range r.Groups {
		counts[g.Outcome]++
	}
	return counts
}

// Print writes the end-of-run summary. Possible savings is the static upper
// bound over every non-first member; bytes freed counts real deletions.
func (r *Report) Print(out io.Writer) {
	counts := r.Counts()
	fmt.Fprintf(out, "Groups resolved: %d, left untouched: %d\n",
		counts[OutcomeResolved], len(r.Groups)-counts[OutcomeResolved])
	fmt.Fprintf(out, "Files deleted: %d\n", r.Deleted)
	fmt.Fprintf(out, "Total amount of possible savings: %s (%d bytes)\n", humanize.Bytes(r.PossibleSavings), r.PossibleSavings)
	fmt.Fprintf(out, "Actually freed: %s (%d bytes)\n", humanize.Bytes(r.BytesFreed), r.BytesFreed)
	if len(r.Errors) > 0 {
		fmt.Fprintf(out, "Errors: %d\n", len(r.Errors))
		for _, err := range r.Errors {
			fmt.Fprintf(out, "  %v\n", err)
		}
	}
}
