package student

import "time"

// PatchRow builds the patch vector of an existing student row.
//
// The last-updated cell is always written, identity cells only when the field is not empty.
// OtherMonth, when set, goes into the 12 status cells first; the paid month (if in 1..12)
// is then written on top of it. Every other cell is nil and stays untouched in the sheet.
func PatchRow(us UpdateStudent, now time.Time) Row {
	row := make(Row, RowWidth)
	patchIdentity(row, us.Identity)

	if us.OtherMonth != "" {
		for m := 1; m <= MonthsPerYear; m++ {
			status, _, _, _ := SlotColumns(m)
			row[status] = us.OtherMonth
		}
	}

	if status, date, amount, err := SlotColumns(us.MonthsPaid); err == nil {
		row[status] = string(StatusPaid)
		row[date] = FormatDate(now)
		row[amount] = us.PaidAmount
	}

	row[LastUpdatedColumn] = FormatTimestamp(now)
	return row
}

func patchIdentity(row Row, id Identity) {
	cells := []struct {
		col int
		v   string
	}{
		{colName, id.Name},
		{colParentPhone, PhoneCell(id.ParentPhone)},
		{colParentName, id.ParentName},
		{colNote, id.Note},
		{colParentEmail, id.ParentEmail},
	}
	for _, c := range cells {
		if c.v != "" {
			row[c.col] = c.v
		}
	}
}
