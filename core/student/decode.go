package student

import (
	"fmt"
	"math"
	"strings"
)

func cellString(cells []interface{}, i int) string {
	if i < 0 || i >= len(cells) || cells[i] == nil {
		return ""
	}
	if s, ok := cells[i].(string); ok {
		return s
	}
	return fmt.Sprint(cells[i])
}

// DecodeRow turns the cells of a sheet row into a Student. Missing trailing cells read as empty.
func DecodeRow(class string, rowID int, cells []interface{}) Student {
	s := Student{
		Identity: Identity{
			Name:        cellString(cells, colName),
			ParentPhone: cellString(cells, colParentPhone),
			ParentName:  cellString(cells, colParentName),
			Note:        cellString(cells, colNote),
			ParentEmail: cellString(cells, colParentEmail),
		},
		RowID:         rowID,
		Class:         class,
		OverallStatus: cellString(cells, OverallStatusColumn),
		LastUpdated:   cellString(cells, LastUpdatedColumn),
	}
	for m := 1; m <= MonthsPerYear; m++ {
		status, date, amount, _ := SlotColumns(m)
		s.Months[m-1] = MonthSlot{
			Status:   Status(cellString(cells, status)),
			PaidDate: cellString(cells, date),
			Amount:   cellString(cells, amount),
		}
	}
	return s
}

// FeeEntries lists the months of a student that are not elapsed, in month order.
func FeeEntries(s Student) []FeeEntry {
	entries := make([]FeeEntry, 0, MonthsPerYear)
	for i, slot := range s.Months {
		if slot.Status == StatusElapsed {
			continue
		}
		entries = append(entries, FeeEntry{
			Month:  i + 1,
			Label:  MonthLabel(i + 1),
			Status: slot.Status,
			Date:   slot.PaidDate,
			Amount: slot.Amount,
		})
	}
	return entries
}

// ParseAmount reads a money cell such as "500000", "500.000" or "500,000 đ" as an integer amount.
// A separator followed by 1 or 2 trailing digits starts the decimals, which are dropped ("500000.50" is 500000).
// Amounts that do not fit an int64 read as 0.
func ParseAmount(s string) int64 {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexAny(s, ".,"); i >= 0 {
		frac := s[i+1:]
		n := strings.IndexFunc(frac, func(r rune) bool { return r < '0' || r > '9' })
		if n < 0 {
			n = len(frac)
		}
		if (n == 1 || n == 2) && !strings.ContainsAny(frac[n:], "0123456789") {
			s = s[:i]
		}
	}

	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		d := int64(r - '0')
		if n > (math.MaxInt64-d)/10 {
			return 0
		}
		n = n*10 + d
	}
	return n
}

func isBlank(cells []interface{}) bool {
	for i := range cells {
		if strings.TrimSpace(cellString(cells, i)) != "" {
			return false
		}
	}
	return true
}
