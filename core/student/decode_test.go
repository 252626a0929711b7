package student

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestDecodeRow(t *testing.T) {
	cells := make([]interface{}, 0, RowWidth)
	cells = append(cells, "Nguyễn Văn An", "0901234567", "Nguyễn Văn Bình", "", "binh@test.vn")
	cells = append(cells, "X", "", "", "Đã nộp", "2/3/2024", 450000.0, "Chưa")

	s := DecodeRow("LOP1A", 4, cells)
	assert.Equal(t, "Nguyễn Văn An", s.Name)
	assert.Equal(t, "0901234567", s.ParentPhone)
	assert.Equal(t, "binh@test.vn", s.ParentEmail)
	assert.Equal(t, 4, s.RowID)
	assert.Equal(t, "LOP1A", s.Class)
	assert.Equal(t, MonthSlot{Status: StatusElapsed}, s.Months[0])
	assert.Equal(t, MonthSlot{Status: StatusPaid, PaidDate: "2/3/2024", Amount: "450000"}, s.Months[1])
	assert.Equal(t, MonthSlot{Status: StatusUnpaid}, s.Months[2])
	// missing trailing cells read as empty
	assert.Equal(t, MonthSlot{}, s.Months[11])
	assert.Equal(t, "", s.LastUpdated)
}

func TestFeeEntries(t *testing.T) {
	var s Student
	for i := range s.Months {
		s.Months[i].Status = StatusUnpaid
	}
	s.Months[0].Status = StatusElapsed
	s.Months[1].Status = StatusElapsed
	s.Months[2] = MonthSlot{Status: StatusPaid, PaidDate: "3/5/2024", Amount: "500000"}

	entries := FeeEntries(s)
	if assert.Len(t, entries, 10) {
		want := FeeEntry{Month: 3, Label: "Tháng 3", Status: StatusPaid, Date: "3/5/2024", Amount: "500000"}
		if diff := cmp.Diff(want, entries[0]); diff != "" {
			t.Errorf("FeeEntries()[0] mismatch (-want +got):\n%s", diff)
		}
		for i, e := range entries {
			assert.Equal(t, i+3, e.Month, "entries are in month order")
			assert.NotEqual(t, StatusElapsed, e.Status)
		}
	}

	var none Student
	for i := range none.Months {
		none.Months[i].Status = StatusElapsed
	}
	assert.Empty(t, FeeEntries(none))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		cell string
		want int64
	}{
		{"", 0},
		{"500000", 500000},
		{"500.000", 500000},
		{"500,000 đ", 500000},
		{" 1.250.000 ", 1250000},
		{"chưa rõ", 0},
		{"500000.50", 500000},
		{"500.000,5 đ", 500000},
		{"1,25", 1},
		{"1.250", 1250},
		{"9223372036854775807", 9223372036854775807},
		{"9223372036854775808", 0},
		{"99999999999999999999999", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAmount(tt.cell), "ParseAmount(%q)", tt.cell)
	}
}
