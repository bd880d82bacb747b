package model

import "github.com/shopspring/decimal"

// Grid is the row-major wire representation exchanged with the remote
// sheet. Every cell is a string; it is never the source of truth once
// projected into the store.
type Grid [][]string

// ParseAmount parses a cell into a float64. Unparseable cells read as
// 0.0, matching what the sheet API hands back for blanks and junk.
func ParseAmount(cell string) float64 {
	d, err := decimal.NewFromString(cell)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// FormatAmount formats an amount with two decimal places for writing
// back to the sheet.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// FilterEmptyRows drops rows whose cells are all empty. Blank rows are
// expected at grid edges and must not survive a whole-table push.
func (g Grid) FilterEmptyRows() Grid {
	filtered := make(Grid, 0, len(g))
	for _, row := range g {
		empty := true
		for _, cell := range row {
			if cell != "" {
				empty = false
				break
			}
		}
		if !empty {
			filtered = append(filtered, row)
		}
	}
	return filtered
}
