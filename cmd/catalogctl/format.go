package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/Da-Krause/settlers-remake/internal/ai/construction"
	"github.com/Da-Krause/settlers-remake/internal/sim/validation"
)

func printValidationReport(w io.Writer, digest string, rep validation.Report) {
	fmt.Fprintf(w, "catalog %s: %d records checked\n", digest, rep.Checked)
	if rep.OK() {
		fmt.Fprintln(w, "  ok")
		return
	}
	for _, v := range rep.Violations {
		fmt.Fprintf(w, "  %s\n", v)
	}
	fmt.Fprintf(w, "%d violations\n", len(rep.Violations))
}

func printPlacement(w io.Writer, p construction.Placement) {
	fmt.Fprintf(w, "%s/%s via %s at %s score %d\n", p.Kind, p.Civilisation, p.Strategy, p.At, p.Score)
	fmt.Fprintf(w, "  %d candidates, %d accepted\n", p.Candidates, p.Accepted)

	reasons := make([]string, 0, len(p.Rejections))
	for r := range p.Rejections {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		fmt.Fprintf(w, "  rejected %-16s %d\n", r, p.Rejections[construction.Reason(r)])
	}
}
