package student

import "context"

// PasteType selects what a copy-paste request copies.
type PasteType string

const (
	PasteFormat         PasteType = "PASTE_FORMAT"
	PasteDataValidation PasteType = "PASTE_DATA_VALIDATION"
)

// GridRange addresses cells by 0-based, end-exclusive indexes within one sheet.
type GridRange struct {
	SheetID  int64
	StartRow int
	EndRow   int
	StartCol int
	EndCol   int
}

// Request is a structural spreadsheet request sent through Gateway.BatchUpdate.
type Request interface {
	isRequest()
}

// CopyPasteRequest copies the formatting or validation rules of Source onto Destination.
type CopyPasteRequest struct {
	Source      GridRange
	Destination GridRange
	PasteType   PasteType
}

// DeleteRowsRequest removes the rows [StartIndex, EndIndex) of a sheet (0-based).
type DeleteRowsRequest struct {
	SheetID    int64
	StartIndex int
	EndIndex   int
}

func (CopyPasteRequest) isRequest()  {}
func (DeleteRowsRequest) isRequest() {}

// Sheet describes one tab of the spreadsheet. Each tab is a class.
type Sheet struct {
	ID    int64
	Title string
}

// Gateway is the spreadsheet holding every class. It owns all persistent state.
type Gateway interface {
	// ReadRange returns the rows of rng; trailing empty cells & rows are omitted.
	// An unknown sheet yields ErrClassNotFound.
	ReadRange(ctx context.Context, rng Range) ([][]interface{}, error)
	// WriteRange writes rows at rng as if typed by a user. nil cells are skipped.
	WriteRange(ctx context.Context, rng Range, rows [][]interface{}) error
	// BatchUpdate applies structural requests in order, atomically.
	BatchUpdate(ctx context.Context, reqs ...Request) error
	// Sheets lists the tabs of the spreadsheet.
	Sheets(ctx context.Context) ([]Sheet, error)
}
