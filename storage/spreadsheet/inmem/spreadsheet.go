package inmemsheets

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/hocphi/core/student"
)

type (
	// Spreadsheet is an in-memory student.Gateway behaving like the Google Sheets API
	// for the calls this application makes.
	Spreadsheet struct {
		mutex    sync.RWMutex
		sheets   []*sheet // tab order
		nextID   int64
		requests []student.Request
		failWith error
	}

	sheet struct {
		id          int64
		title       string
		cells       [][]string
		formats     []string // per row
		validations []string // per row
	}
)

var _ student.Gateway = (*Spreadsheet)(nil)

func Open() *Spreadsheet {
	return &Spreadsheet{}
}

// AddSheet adds a tab seeded with rows and returns its ID. The first tab gets ID 0.
func (ss *Spreadsheet) AddSheet(title string, rows ...[]string) int64 {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	sh := &sheet{id: ss.nextID, title: title}
	ss.nextID++
	for i, r := range rows {
		sh.grow(i + 1)
		sh.cells[i] = append([]string(nil), r...)
	}
	ss.sheets = append(ss.sheets, sh)
	return sh.id
}

// SetRowFormat tags a row (1-based) with a format & a validation rule, for copy-paste checks.
func (ss *Spreadsheet) SetRowFormat(title string, row int, format, validation string) {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if sh := ss.byTitle(title); sh != nil && row > 0 {
		sh.grow(row)
		sh.formats[row-1] = format
		sh.validations[row-1] = validation
	}
}

// RowFormat returns the format & validation tags of a row (1-based).
func (ss *Spreadsheet) RowFormat(title string, row int) (format, validation string) {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	sh := ss.byTitle(title)
	if sh == nil || row < 1 || row > len(sh.cells) {
		return "", ""
	}
	return sh.formats[row-1], sh.validations[row-1]
}

// Rows returns a copy of the cells of a tab, untrimmed.
func (ss *Spreadsheet) Rows(title string) [][]string {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	sh := ss.byTitle(title)
	if sh == nil {
		return nil
	}
	rows := make([][]string, len(sh.cells))
	for i, r := range sh.cells {
		rows[i] = append([]string(nil), r...)
	}
	return rows
}

// Requests returns every structural request applied so far, in order.
func (ss *Spreadsheet) Requests() []student.Request {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()
	return append([]student.Request(nil), ss.requests...)
}

// SetFailure makes every following call fail with err (nil restores normal behaviour).
func (ss *Spreadsheet) SetFailure(err error) {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()
	ss.failWith = err
}

func (ss *Spreadsheet) byTitle(title string) *sheet {
	for _, sh := range ss.sheets {
		if sh.title == title {
			return sh
		}
	}
	return nil
}

func (ss *Spreadsheet) byID(id int64) *sheet {
	for _, sh := range ss.sheets {
		if sh.id == id {
			return sh
		}
	}
	return nil
}

func (ss *Spreadsheet) ReadRange(_ context.Context, rng student.Range) ([][]interface{}, error) {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	if ss.failWith != nil {
		return nil, ss.failWith
	}
	sh := ss.byTitle(rng.Sheet)
	if sh == nil {
		return nil, errors.Wrapf(student.ErrClassNotFound, "unable to parse range: %s", rng)
	}

	first, last := 1, len(sh.cells)
	if rng.FirstRow > 0 {
		first = rng.FirstRow
	}
	if rng.LastRow > 0 && rng.LastRow < last {
		last = rng.LastRow
	}

	var rows [][]interface{}
	for r := first; r <= last; r++ {
		src := sh.cells[r-1]
		var row []interface{}
		for c := rng.FirstCol; c <= rng.LastCol && c < len(src); c++ {
			row = append(row, src[c])
		}
		rows = append(rows, trimRow(row))
	}
	// trailing empty rows are omitted
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

func trimRow(row []interface{}) []interface{} {
	for len(row) > 0 && row[len(row)-1] == "" {
		row = row[:len(row)-1]
	}
	if row == nil {
		return []interface{}{}
	}
	return row
}

func (ss *Spreadsheet) WriteRange(_ context.Context, rng student.Range, rows [][]interface{}) error {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if ss.failWith != nil {
		return ss.failWith
	}
	sh := ss.byTitle(rng.Sheet)
	if sh == nil {
		return errors.Wrapf(student.ErrClassNotFound, "unable to parse range: %s", rng)
	}

	first := rng.FirstRow
	if first < 1 {
		first = 1
	}
	width := rng.LastCol - rng.FirstCol + 1
	for i, values := range rows {
		if len(values) > width {
			return errors.Errorf("requested writing within range [%s], but tried writing to column [%s]",
				rng, student.ColumnName(rng.FirstCol+len(values)-1))
		}
		r := first + i
		if rng.LastRow > 0 && r > rng.LastRow {
			return errors.Errorf("requested writing within range [%s], but tried writing to row [%d]", rng, r)
		}
		sh.grow(r)
		for j, v := range values {
			if v == nil {
				continue
			}
			sh.set(r, rng.FirstCol+j, userEntered(v))
		}
	}
	return nil
}

// userEntered mimics the USER_ENTERED input option: a leading `'` forces text and is not stored.
func userEntered(v interface{}) string {
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	return strings.TrimPrefix(s, "'")
}

func (ss *Spreadsheet) BatchUpdate(_ context.Context, reqs ...student.Request) error {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if ss.failWith != nil {
		return ss.failWith
	}

	// validate everything first: a batch is applied entirely or not at all
	for _, req := range reqs {
		switch r := req.(type) {
		case student.CopyPasteRequest:
			if ss.byID(r.Source.SheetID) == nil || ss.byID(r.Destination.SheetID) == nil {
				return errors.New("invalid copyPaste request: no grid with id")
			}
			if r.Source.StartRow < 0 || r.Destination.StartRow < 0 {
				return errors.New("invalid copyPaste request: negative row index")
			}
		case student.DeleteRowsRequest:
			if ss.byID(r.SheetID) == nil {
				return errors.Errorf("invalid deleteDimension request: no grid with id: %d", r.SheetID)
			}
			if r.StartIndex < 0 || r.EndIndex <= r.StartIndex {
				return errors.New("invalid deleteDimension request: bad range")
			}
		default:
			return errors.Errorf("unsupported request %T", req)
		}
	}

	for _, req := range reqs {
		switch r := req.(type) {
		case student.CopyPasteRequest:
			src, dst := ss.byID(r.Source.SheetID), ss.byID(r.Destination.SheetID)
			for i := 0; r.Destination.StartRow+i < r.Destination.EndRow; i++ {
				from := r.Source.StartRow + i%max(r.Source.EndRow-r.Source.StartRow, 1)
				to := r.Destination.StartRow + i
				src.grow(from + 1)
				dst.grow(to + 1)
				switch r.PasteType {
				case student.PasteFormat:
					dst.formats[to] = src.formats[from]
				case student.PasteDataValidation:
					dst.validations[to] = src.validations[from]
				}
			}
		case student.DeleteRowsRequest:
			sh := ss.byID(r.SheetID)
			sh.deleteRows(r.StartIndex, r.EndIndex)
		}
		ss.requests = append(ss.requests, req)
	}
	return nil
}

func (ss *Spreadsheet) Sheets(_ context.Context) ([]student.Sheet, error) {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	if ss.failWith != nil {
		return nil, ss.failWith
	}
	sheets := make([]student.Sheet, 0, len(ss.sheets))
	for _, sh := range ss.sheets {
		sheets = append(sheets, student.Sheet{ID: sh.id, Title: sh.title})
	}
	return sheets, nil
}

// grow makes sure the sheet has at least n rows.
func (sh *sheet) grow(n int) {
	for len(sh.cells) < n {
		sh.cells = append(sh.cells, nil)
		sh.formats = append(sh.formats, "")
		sh.validations = append(sh.validations, "")
	}
}

func (sh *sheet) set(row, col int, v string) {
	r := sh.cells[row-1]
	for len(r) <= col {
		r = append(r, "")
	}
	r[col] = v
	sh.cells[row-1] = r
}

func (sh *sheet) deleteRows(start, end int) {
	if start >= len(sh.cells) {
		return
	}
	if end > len(sh.cells) {
		end = len(sh.cells)
	}
	sh.cells = append(sh.cells[:start], sh.cells[end:]...)
	sh.formats = append(sh.formats[:start], sh.formats[end:]...)
	sh.validations = append(sh.validations[:start], sh.validations[end:]...)
}
