package model

import (
	"fmt"
	"strings"

	"github.com/brian-nguyen/pickmanager/internal/apierror"
)

// ShiftColumn derives an adjacent column address from a base range by
// replacing the first occurrence of the column letter, e.g.
// ShiftColumn("B2", 'B', 'C') == "C2". Each account occupies one sheet
// row with fixed column offsets, so the totals and balance cells are
// always a letter swap away from the account's base cell.
func ShiftColumn(rng string, from, to byte) (string, error) {
	idx := strings.IndexByte(rng, from)
	if idx < 0 {
		return rng, apierror.NewAPIError(apierror.ErrInvalidInput,
			fmt.Sprintf("range %q has no column %q", rng, string(from)), nil)
	}
	return rng[:idx] + string(to) + rng[idx+1:], nil
}

// LogCell addresses one cell of the deposit log sheet by row counter,
// e.g. LogCell("Sheet2", 7) == "Sheet2!A7".
func LogCell(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d", sheet, row)
}
