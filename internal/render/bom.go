package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/roach88/loom/internal/ir"
)

var tsvCleaner = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ")

// WriteTSV writes t as tab-separated lines, header first. Tabs and line
// breaks inside cells become spaces.
func WriteTSV(w io.Writer, t ir.Table) error {
	lines := append([][]string{t.Header}, t.Rows...)
	for _, line := range lines {
		cells := make([]string, len(line))
		for i, c := range line {
			cells[i] = tsvCleaner.Replace(c)
		}
		if _, err := io.WriteString(w, strings.Join(cells, "\t")+"\n"); err != nil {
			return fmt.Errorf("write tsv: %w", err)
		}
	}
	return nil
}

// Page is the content of the HTML output: a link to the diagram source and
// the BOM table.
type Page struct {
	Title   string
	Diagram string // path of the DOT file, relative to the page
	Table   ir.Table
}

type htmlCell struct {
	Text  string
	Right bool
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body style="font-family:Arial">
<h1>Diagram</h1>
{{- if .Diagram}}
<p><a href="{{.Diagram}}">{{.Diagram}}</a></p>
{{- end}}
<h1>Bill of Materials</h1>
<table style="border:1px solid #000000; font-size: 14pt; border-spacing: 0px">
<tr>{{range .Header}}<th style="text-align:left; border:1px solid #000000; padding: 8px">{{.}}</th>{{end}}</tr>
{{- range .Rows}}
<tr>{{range .}}<td style="{{if .Right}}text-align:right; {{end}}border:1px solid #000000; padding: 4px">{{.Text}}</td>{{end}}</tr>
{{- end}}
</table>
</body>
</html>
`))

// WriteHTML writes p as a standalone HTML page. Quantities are right-aligned.
func WriteHTML(w io.Writer, p Page) error {
	qty := -1
	for i, h := range p.Table.Header {
		if h == ir.ColumnQty {
			qty = i
		}
	}

	rows := make([][]htmlCell, len(p.Table.Rows))
	for i, row := range p.Table.Rows {
		rows[i] = make([]htmlCell, len(row))
		for j, c := range row {
			rows[i][j] = htmlCell{Text: c, Right: j == qty}
		}
	}

	err := pageTemplate.Execute(w, struct {
		Title   string
		Diagram string
		Header  []string
		Rows    [][]htmlCell
	}{p.Title, p.Diagram, p.Table.Header, rows})
	if err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}
