package output

import (
	"fmt"
	"html"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/sanspareilsmyn/annualtables/internal/report"
)

func init() {
	Register("text", ".txt", writeText)
	Register("markdown", ".md", writeMarkdown)
	Register("md", ".md", writeMarkdown)
	Register("csv", ".csv", writeCSV)
	Register("html", ".html", writeHTML)
}

// newTableWriter loads g into a go-pretty writer: a leading column of row heads
// followed by the grid body. Headers keep their case.
func newTableWriter(g report.Grid) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, 0, g.Columns()+1)
	header = append(header, "")
	for _, h := range g.ColumnHeads {
		header = append(header, h)
	}
	t.AppendHeader(header)

	for r := 0; r < g.Rows(); r++ {
		row := make(table.Row, 0, g.Columns()+1)
		row = append(row, g.RowHeads[r])
		for c := 0; c < g.Columns(); c++ {
			row = append(row, g.Cell(r, c))
		}
		t.AppendRow(row)
	}
	return t
}

func writeText(w io.Writer, g report.Grid) error {
	t := newTableWriter(g)
	t.SetTitle("%s\nFor: %s\n%s", g.Name, g.For, g.Subtitle)
	_, err := fmt.Fprintf(w, "%s\n\n", t.Render())
	return err
}

func writeMarkdown(w io.Writer, g report.Grid) error {
	_, err := fmt.Fprintf(w, "## %s\n\nFor: %s\n\n%s\n\n%s\n\n", g.Name, g.For, g.Subtitle, newTableWriter(g).RenderMarkdown())
	return err
}

func writeCSV(w io.Writer, g report.Grid) error {
	_, err := fmt.Fprintf(w, "%s\nFor: %s\n%s\n%s\n\n", g.Name, g.For, g.Subtitle, newTableWriter(g).RenderCSV())
	return err
}

// writeHTML emits an anchored section per grid, matching the table of contents.
func writeHTML(w io.Writer, g report.Grid) error {
	_, err := fmt.Fprintf(w,
		"<p><a href=\"#toc\" style=\"float: right\">Table of Contents</a></p>\n"+
			"<a name=\"%s\"></a>\n<p>Report:<b> %s</b></p>\n<p>For:<b> %s</b></p>\n<b>%s</b><br><br>\n%s\n<br><br>\n",
		report.AnchorName(g.Name, g.For),
		html.EscapeString(g.Name),
		html.EscapeString(g.For),
		html.EscapeString(g.Subtitle),
		newTableWriter(g).RenderHTML(),
	)
	return err
}

// WriteTOC writes the HTML table-of-contents fragment linking to each table.
func WriteTOC(w io.Writer, entries []report.TOCEntry) error {
	if _, err := io.WriteString(w, "<a name=\"toc\"></a>\n<p><b>Table of Contents</b></p>\n"); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "<a href=\"#%s\">%s</a><br>\n", e.Anchor, html.EscapeString(e.Label)); err != nil {
			return err
		}
	}
	return nil
}
