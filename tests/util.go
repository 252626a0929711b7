package testutil

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/trezcool/hocphi/core"
	"github.com/trezcool/hocphi/core/student"
	logsvc "github.com/trezcool/hocphi/services/logger"
	inmemsheets "github.com/trezcool/hocphi/storage/spreadsheet/inmem"
)

const (
	HeaderFormat     = "header"
	RowFormat        = "student-row"
	RowValidation    = "status-dropdown"
	HeaderValidation = ""
)

// NewLogger returns a core.Logger writing to the test log, with reporting disabled.
func NewLogger(t testing.TB) core.Logger {
	logger := logsvc.NewRollbarLogger(zaptest.NewLogger(t), core.NewTestConfig())
	logger.Enable(false)
	return logger
}

// HeaderRow returns the title row of a class sheet.
func HeaderRow() []string {
	row := []string{"Họ và tên", "SĐT phụ huynh", "Tên phụ huynh", "Ghi chú", "Email phụ huynh"}
	for m := 1; m <= student.MonthsPerYear; m++ {
		label := student.MonthLabel(m)
		row = append(row, label+" - Nộp", label+" - Ngày", label+" - Số tiền")
	}
	return append(row, "Trạng thái", "Cập nhật")
}

// StudentRow returns a full row whose month statuses are given in month order;
// months without a status are unpaid.
func StudentRow(name, phone, parent, email string, statuses ...student.Status) []string {
	row := make([]string, student.RowWidth)
	row[0], row[1], row[2], row[3], row[4] = name, phone, parent, "", email
	for m := 1; m <= student.MonthsPerYear; m++ {
		st, _, _, _ := student.SlotColumns(m)
		row[st] = string(student.StatusUnpaid)
		if m <= len(statuses) {
			row[st] = string(statuses[m-1])
		}
	}
	row[student.OverallStatusColumn] = student.OverallIncomplete
	row[student.LastUpdatedColumn] = "1/1/2020, 8:00:00 AM"
	return row
}

// NewSpreadsheet returns an in-memory spreadsheet with one tab per class,
// each holding the header row followed by rows.
func NewSpreadsheet(t testing.TB, classes map[string][][]string, order ...string) *inmemsheets.Spreadsheet {
	t.Helper()
	ss := inmemsheets.Open()
	for _, class := range order {
		rows, ok := classes[class]
		if !ok {
			t.Fatalf("NewSpreadsheet(): no rows for class %q", class)
		}
		ss.AddSheet(class, append([][]string{HeaderRow()}, rows...)...)
		ss.SetRowFormat(class, 1, HeaderFormat, HeaderValidation)
		for i := range rows {
			ss.SetRowFormat(class, i+2, RowFormat, RowValidation)
		}
	}
	return ss
}
