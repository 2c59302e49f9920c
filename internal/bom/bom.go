// Package bom aggregates a resolved harness into bill-of-materials lines.
//
// Connectors group by type, subtype and pincount. Cables group by their
// physical make-up and sum their lengths. Bundles are not listed as such:
// each of their wires groups with like wires from every bundle.
package bom

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/roach88/loom/internal/ir"
	"github.com/roach88/loom/internal/model"
)

// UnitMeters is the unit of cable and wire quantities.
const UnitMeters = "m"

// lengthPlaces is the rounding applied to summed lengths.
const lengthPlaces = 3

// Build aggregates h into BOM items: connector lines first, then cable and
// wire lines, each block sorted by description. Build only reads h.
func Build(h *model.Harness) []ir.BOMItem {
	items := connectorItems(h.Connectors())
	return append(items, cableItems(h.Cables())...)
}

type connectorKey struct {
	typ      string
	subtype  string
	pincount int
}

func connectorItems(connectors []*model.Connector) []ir.BOMItem {
	var order []connectorKey
	groups := make(map[connectorKey][]*model.Connector)
	for _, c := range connectors {
		k := connectorKey{c.Type, c.Subtype, c.Pincount()}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], c)
	}

	items := make([]ir.BOMItem, 0, len(order))
	for _, k := range order {
		members := groups[k]
		first := members[0]

		desc := "Connector"
		if first.Type != "" {
			desc += ", " + first.Type
		}
		if first.Subtype != "" {
			desc += ", " + first.Subtype
		}
		if !first.IsFerrule() {
			desc += fmt.Sprintf(", %d pins", first.Pincount())
		}
		if first.Color != "" {
			desc += ", " + first.Color
		}

		designators := []string{}
		for _, c := range members {
			if !c.IsFerrule() {
				designators = append(designators, c.Name)
			}
		}
		sort.Strings(designators)

		items = append(items, ir.BOMItem{
			Description: desc,
			Qty:         decimal.NewFromInt(int64(len(members))),
			Designators: designators,
			PartNumber:  first.PartNumber,
		})
	}
	sortByDescription(items)
	return items
}

type cableKey struct {
	category  string
	gauge     string
	unit      string
	wirecount int
	shield    bool
}

type wireKey struct {
	gauge string
	unit  string
	color string
}

type wireGroup struct {
	length      decimal.Decimal
	designators map[string]bool
}

func cableItems(cables []*model.Cable) []ir.BOMItem {
	var cableOrder []cableKey
	cableGroups := make(map[cableKey][]*model.Cable)
	var wireOrder []wireKey
	wireGroups := make(map[wireKey]*wireGroup)

	for _, c := range cables {
		if c.IsBundle() {
			for _, color := range c.Colors {
				k := wireKey{c.Gauge, c.GaugeUnit, color}
				g, ok := wireGroups[k]
				if !ok {
					g = &wireGroup{designators: make(map[string]bool)}
					wireGroups[k] = g
					wireOrder = append(wireOrder, k)
				}
				g.length = g.length.Add(c.Length)
				g.designators[c.Name] = true
			}
			continue
		}

		k := cableKey{c.Category, c.Gauge, c.GaugeUnit, c.Wirecount(), c.Shield}
		if _, ok := cableGroups[k]; !ok {
			cableOrder = append(cableOrder, k)
		}
		cableGroups[k] = append(cableGroups[k], c)
	}

	items := make([]ir.BOMItem, 0, len(cableOrder)+len(wireOrder))
	for _, k := range cableOrder {
		members := cableGroups[k]
		first := members[0]

		desc := fmt.Sprintf("Cable, %d", k.wirecount)
		if k.gauge != "" {
			desc += fmt.Sprintf(" x %s %s", k.gauge, k.unit)
		} else {
			desc += " wires"
		}
		if k.shield {
			desc += " shielded"
		}

		total := decimal.Zero
		designators := make([]string, 0, len(members))
		for _, c := range members {
			total = total.Add(c.Length)
			designators = append(designators, c.Name)
		}
		sort.Strings(designators)

		items = append(items, ir.BOMItem{
			Description: desc,
			Qty:         total.Round(lengthPlaces),
			Unit:        UnitMeters,
			Designators: designators,
			PartNumber:  first.PartNumber,
		})
	}

	for _, k := range wireOrder {
		g := wireGroups[k]
		desc := "Wire"
		if k.gauge != "" {
			desc += fmt.Sprintf(", %s %s", k.gauge, k.unit)
		}
		if k.color != "" {
			desc += ", " + k.color
		}

		designators := make([]string, 0, len(g.designators))
		for name := range g.designators {
			designators = append(designators, name)
		}
		sort.Strings(designators)

		items = append(items, ir.BOMItem{
			Description: desc,
			Qty:         g.length.Round(lengthPlaces),
			Unit:        UnitMeters,
			Designators: designators,
		})
	}
	sortByDescription(items)
	return items
}

func sortByDescription(items []ir.BOMItem) {
	slices.SortStableFunc(items, func(a, b ir.BOMItem) int {
		return strings.Compare(a.Description, b.Description)
	})
}

// Table lays items out as rows under the standard header. The part number
// column appears only when some item carries one.
func Table(items []ir.BOMItem) ir.Table {
	withPN := slices.ContainsFunc(items, func(it ir.BOMItem) bool { return it.PartNumber != "" })

	header := []string{ir.ColumnItem, ir.ColumnQty, ir.ColumnUnit, ir.ColumnDesignators}
	if withPN {
		header = append(header, ir.ColumnPartNumber)
	}

	rows := make([][]string, 0, len(items))
	for _, it := range items {
		row := []string{it.Description, it.Qty.String(), it.Unit, strings.Join(it.Designators, ", ")}
		if withPN {
			row = append(row, it.PartNumber)
		}
		rows = append(rows, row)
	}
	return ir.Table{Header: header, Rows: rows}
}
