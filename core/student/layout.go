package student

import (
	"regexp"
	"strconv"
	"strings"
)

// Row layout of a class sheet. Every student occupies one row:
//
//	A..E    identity (name, parent phone, parent name, note, parent email)
//	F..AO   12 month slots of 3 cells each (status, paid date, amount)
//	AP      overall status
//	AQ      last updated
const (
	IdentityColumns     = 5
	SlotBase            = IdentityColumns
	SlotWidth           = 3
	MonthsPerYear       = 12
	SlotSpan            = SlotWidth * MonthsPerYear
	OverallStatusColumn = SlotBase + SlotSpan
	LastUpdatedColumn   = OverallStatusColumn + 1
	RowWidth            = LastUpdatedColumn + 1

	// HeaderRows is the number of title rows at the top of every class sheet.
	HeaderRows = 1
)

// identity column indexes
const (
	colName = iota
	colParentPhone
	colParentName
	colNote
	colParentEmail
)

var monthLabels = [MonthsPerYear]string{
	"Tháng 1", "Tháng 2", "Tháng 3", "Tháng 4", "Tháng 5", "Tháng 6",
	"Tháng 7", "Tháng 8", "Tháng 9", "Tháng 10", "Tháng 11", "Tháng 12",
}

// SlotColumns returns the 0-based status, date & amount columns of a month (1..12).
func SlotColumns(month int) (status, date, amount int, err error) {
	if month < 1 || month > MonthsPerYear {
		return 0, 0, 0, ErrMonthOutOfRange
	}
	status = SlotBase + SlotWidth*(month-1)
	return status, status + 1, status + 2, nil
}

// MonthLabel returns the display label of a month (1..12), or "" when out of range.
func MonthLabel(month int) string {
	if month < 1 || month > MonthsPerYear {
		return ""
	}
	return monthLabels[month-1]
}

// ColumnName converts a 0-based column index to its A1 letters: 0 -> A, 25 -> Z, 26 -> AA, 42 -> AQ.
func ColumnName(idx int) string {
	if idx < 0 {
		return ""
	}
	var name []byte
	for n := idx + 1; n > 0; n = (n - 1) / 26 {
		name = append([]byte{byte('A' + (n-1)%26)}, name...)
	}
	return string(name)
}

// Range addresses a rectangle of a class sheet in A1 notation.
// Columns are 0-based & inclusive; rows are 1-based & inclusive, 0 leaves the rows unbounded.
type Range struct {
	Sheet    string
	FirstCol int
	LastCol  int
	FirstRow int
	LastRow  int
}

// ClassRange covers every row of a class over the full row width: `<class>!A:AQ`.
func ClassRange(class string) Range {
	return Range{Sheet: class, FirstCol: 0, LastCol: RowWidth - 1}
}

// RowRange covers one student row over the full row width: `<class>!A<row>:AQ<row>`.
func RowRange(class string, row int) Range {
	return Range{Sheet: class, FirstCol: 0, LastCol: RowWidth - 1, FirstRow: row, LastRow: row}
}

// ColumnRange covers one whole column of a class: `<class>!A:A`.
func ColumnRange(class string, col int) Range {
	return Range{Sheet: class, FirstCol: col, LastCol: col}
}

func (r Range) String() string {
	var b strings.Builder
	b.WriteString(quoteSheetName(r.Sheet))
	b.WriteByte('!')
	b.WriteString(ColumnName(r.FirstCol))
	if r.FirstRow > 0 {
		b.WriteString(strconv.Itoa(r.FirstRow))
	}
	b.WriteByte(':')
	b.WriteString(ColumnName(r.LastCol))
	if r.LastRow > 0 {
		b.WriteString(strconv.Itoa(r.LastRow))
	}
	return b.String()
}

var (
	plainSheetName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	cellRefLike    = regexp.MustCompile(`^[A-Za-z]{1,3}[0-9]+$`)
)

// quoteSheetName quotes a sheet title for A1 notation unless it is a plain identifier.
func quoteSheetName(name string) string {
	if plainSheetName.MatchString(name) && !cellRefLike.MatchString(name) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
