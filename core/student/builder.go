package student

import "time"

// Row is a full-width vector of cell values. A nil cell is left unchanged by the gateway.
type Row []interface{}

func setIdentity(row Row, id Identity) {
	row[colName] = id.Name
	row[colParentPhone] = PhoneCell(id.ParentPhone)
	row[colParentName] = id.ParentName
	row[colNote] = id.Note
	row[colParentEmail] = id.ParentEmail
}

// BuildRow assembles the row of a new student.
// Months before the current month are marked elapsed, the others unpaid.
func BuildRow(ns NewStudent, now time.Time) Row {
	row := make(Row, RowWidth)
	setIdentity(row, ns.Identity)

	currentMonth := int(now.Month())
	for i := 0; i < MonthsPerYear; i++ {
		status, date, amount, _ := SlotColumns(i + 1)
		if i < currentMonth-1 {
			row[status] = string(StatusElapsed)
		} else {
			row[status] = string(StatusUnpaid)
		}
		row[date] = ""
		row[amount] = ""
	}

	row[OverallStatusColumn] = OverallIncomplete
	row[LastUpdatedColumn] = FormatTimestamp(now)
	return row
}
