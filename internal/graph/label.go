package graph

import (
	"fmt"
	"html"
	"strings"

	"github.com/roach88/loom/internal/model"
	"github.com/roach88/loom/internal/units"
	"github.com/roach88/loom/internal/wirecolor"
)

// nested builds a record label. Strings become fields, slices become
// sub-records in braces; empty fields and empty sub-records are dropped.
func nested(items []any) string {
	var parts []string
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if v != "" {
				parts = append(parts, v)
			}
		case []any:
			if s := nested(v); s != "" {
				parts = append(parts, "{"+s+"}")
			}
		}
	}
	return strings.Join(parts, "|")
}

var recordEscaper = strings.NewReplacer(
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
)

func escapeRecord(s string) string {
	return recordEscaper.Replace(s)
}

func escapeHTML(s string) string {
	return html.EscapeString(s)
}

// pinLabelColumn keeps blank labels as single spaces so the label column
// stays aligned with the port columns. A column of only blanks is dropped.
func pinLabelColumn(labels []any) []any {
	blank := true
	for _, l := range labels {
		if l.(string) != "" {
			blank = false
			break
		}
	}
	if blank {
		return nil
	}
	out := make([]any, len(labels))
	for i, l := range labels {
		if l.(string) == "" {
			out[i] = " "
		} else {
			out[i] = l
		}
	}
	return out
}

// cableTable is the HTML-like label of a cable node. Cells beside each
// conductor start empty and are filled in as connections are walked.
type cableTable struct {
	body  string
	ports []string
	slots map[string]string
}

func slotToken(name string) string {
	return "<!-- " + name + " -->"
}

func newCableTable(c *model.Cable, opts Options) *cableTable {
	t := &cableTable{slots: make(map[string]string)}
	var sb strings.Builder

	sb.WriteString(`<table border="0" cellspacing="0" cellpadding="0">`)

	attrs := cableAttributes(c, opts)
	if c.ShowName || len(attrs) > 0 {
		sb.WriteString(`<tr><td><table border="0" cellspacing="0" cellpadding="3" cellborder="1">`)
		if c.ShowName {
			fmt.Fprintf(&sb, `<tr><td colspan="%d">%s</td></tr>`, max(len(attrs), 1), escapeHTML(c.Name))
		}
		if len(attrs) > 0 {
			sb.WriteString(`<tr>`)
			for _, a := range attrs {
				fmt.Fprintf(&sb, `<td>%s</td>`, escapeHTML(a))
			}
			sb.WriteString(`</tr>`)
		}
		sb.WriteString(`</table></td></tr>`)
	}

	sb.WriteString(`<tr><td>&nbsp;</td></tr>`)
	sb.WriteString(`<tr><td><table border="0" cellspacing="0" cellborder="0">`)
	sb.WriteString(`<tr><td>&nbsp;</td></tr>`)
	for i, color := range c.Colors {
		conductor := model.Conductor{Wire: i + 1}
		label := wirecolor.Translate(color, opts.ColorMode)
		if c.ShowPinout {
			label = strings.TrimSpace(conductor.String() + ": " + label)
		}
		band := bandDefault
		if bands := wirecolor.HexBands(color); bands != nil {
			band = strings.Join(bands, ":")
		}
		t.row(&sb, conductor.String(), escapeHTML(label))
		fmt.Fprintf(&sb, `<tr><td colspan="3" border="2" sides="tb" cellpadding="0" height="6" bgcolor="%s" port="%s"></td></tr>`, band, conductor.Port())
		t.ports = append(t.ports, conductor.Port())
	}
	if c.Shield {
		shield := model.Conductor{Shield: true}
		sb.WriteString(`<tr><td>&nbsp;</td></tr>`)
		t.row(&sb, shield.String(), "Shield")
		fmt.Fprintf(&sb, `<tr><td colspan="3" border="2" sides="b" cellpadding="0" height="6" port="%s"></td></tr>`, shield.Port())
		t.ports = append(t.ports, shield.Port())
	}
	sb.WriteString(`<tr><td>&nbsp;</td></tr>`)
	sb.WriteString(`</table></td></tr>`)

	if c.Notes != "" {
		fmt.Fprintf(&sb, `<tr><td>%s</td></tr>`, escapeHTML(c.Notes))
	}
	sb.WriteString(`</table>`)

	t.body = sb.String()
	return t
}

func (t *cableTable) row(sb *strings.Builder, conductor, label string) {
	in, out := conductor+"_in", conductor+"_out"
	t.slots[in] = ""
	t.slots[out] = ""
	fmt.Fprintf(sb, `<tr><td>%s</td><td>%s</td><td>%s</td></tr>`, slotToken(in), label, slotToken(out))
}

// fill sets a slot. The first connection on a conductor side wins.
func (t *cableTable) fill(slot, text string) {
	if cur, ok := t.slots[slot]; ok && cur == "" {
		t.slots[slot] = text
	}
}

// String renders the table with every slot substituted.
func (t *cableTable) String() string {
	pairs := make([]string, 0, 2*len(t.slots))
	for name, text := range t.slots {
		pairs = append(pairs, slotToken(name), text)
	}
	return strings.NewReplacer(pairs...).Replace(t.body)
}

// cableAttributes lists the cells of the cable's attribute row.
func cableAttributes(c *model.Cable, opts Options) []string {
	var attrs []string
	if c.PartNumber != "" {
		attrs = append(attrs, c.PartNumber)
	}
	if c.ShowWirecount {
		attrs = append(attrs, fmt.Sprintf("%dx", c.Wirecount()))
	}
	if c.Gauge != "" {
		gauge := c.Gauge + " " + c.GaugeUnit
		if c.ShowEquiv {
			switch {
			case c.GaugeUnit == model.UnitMM2:
				gauge += " (" + units.AWGFromMM2(c.Gauge, opts.AWGStrict).String() + " AWG)"
			case strings.EqualFold(c.GaugeUnit, "AWG"):
				gauge += " (" + units.MM2FromAWG(c.Gauge, opts.AWGStrict).String() + " " + model.UnitMM2 + ")"
			}
		}
		attrs = append(attrs, gauge)
	}
	if c.Shield {
		attrs = append(attrs, "+ S")
	}
	if c.Length.IsPositive() {
		attrs = append(attrs, c.Length.String()+" m")
	}
	return attrs
}
