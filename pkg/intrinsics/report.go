package intrinsics

import (
	"bufio"
	"fmt"
	"io"
)

// Stats are the totals printed at the end of the report.
type Stats struct {
	Total   int `json:"total"`
	Visible int `json:"visible"`
}

// Count tallies the methods in files.
func (fs Files) Count() Stats {
	var s Stats
	for _, m := range fs.Methods() {
		s.Total++
		if m.Exported {
			s.Visible++
		}
	}
	return s
}

// WriteReport writes a markdown inventory of the methods in files.
func WriteReport(w io.Writer, files Files) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("# Intrinsics by file\n\n")

	for _, f := range files {
		fmt.Fprintf(bw, "## `%s`\n", f.File)
		for _, m := range f.Methods {
			mark := " "
			if m.Exported {
				mark = "x"
			}
			fmt.Fprintf(bw, "* [%s] `%s` (`%s`)\n", mark, m.CName, m)
		}
		bw.WriteString("\n")
	}

	stats := files.Count()
	bw.WriteString("## Stats\n")
	fmt.Fprintf(bw, "* Total:   %d\n", stats.Total)
	fmt.Fprintf(bw, "* Visible: %d\n", stats.Visible)

	return bw.Flush()
}
