package student

import (
	"regexp"
	"strings"
	"time"

	"github.com/trezcool/hocphi/core"
)

// Status is the payment state stored in the first cell of a month slot.
// Values are the literals accepted by the sheet's data validation rules.
type Status string

const (
	StatusPaid    Status = "Đã nộp"
	StatusUnpaid  Status = "Chưa"
	StatusElapsed Status = "X" // month already over when the student was added

	// OverallIncomplete is the overall status of a freshly added student.
	OverallIncomplete = "Chưa hoàn thành"
)

const (
	timestampLayout = "1/2/2006, 3:04:05 PM"
	dateLayout      = "1/2/2006"
)

// FormatTimestamp renders t the way the sheet's "last updated" column expects it.
func FormatTimestamp(t time.Time) string { return t.Format(timestampLayout) }

// FormatDate renders the date part of t for a slot's paid date.
func FormatDate(t time.Time) string { return t.Format(dateLayout) }

// ParseTimestamp parses a "last updated" cell.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(timestampLayout, s, loc)
}

// Identity holds the five leading columns of a student row.
type Identity struct {
	Name        string `json:"student_name"`
	ParentPhone string `json:"parent_phone"`
	ParentName  string `json:"parent_name"`
	Note        string `json:"note"`
	ParentEmail string `json:"parent_email"`
}

func (id *Identity) Clean() {
	id.Name = core.CleanString(id.Name)
	id.ParentPhone = core.CleanString(id.ParentPhone)
	id.ParentName = core.CleanString(id.ParentName)
	id.Note = core.CleanString(id.Note)
	id.ParentEmail = core.CleanString(id.ParentEmail)
}

var numericLooking = regexp.MustCompile(`^\+?[0-9][0-9 .\-]*$`)

// PhoneCell returns the cell value of a parent phone.
// Numeric-looking numbers get a leading `'` so the spreadsheet keeps them as text (and keeps leading zeros).
func PhoneCell(phone string) string {
	if phone == "" || strings.HasPrefix(phone, "'") || !numericLooking.MatchString(phone) {
		return phone
	}
	return "'" + phone
}

type MonthSlot struct {
	Status   Status `json:"status"`
	PaidDate string `json:"paid_date"`
	Amount   string `json:"amount"`
}

// Student is one decoded row of a class sheet.
type Student struct {
	Identity
	RowID         int                      `json:"row_id"`
	Class         string                   `json:"class"`
	Months        [MonthsPerYear]MonthSlot `json:"months"`
	OverallStatus string                   `json:"overall_status"`
	LastUpdated   string                   `json:"last_updated"`
}

// Roster is the content of one class sheet.
type Roster struct {
	Class    string    `json:"class"`
	Header   []string  `json:"header"`
	Students []Student `json:"students"`
}

// NewStudent contains information needed to append a student to a class.
type NewStudent struct {
	Identity
	Class string `json:"classname"`
}

// UpdateStudent defines what may be provided to patch an existing student row.
type UpdateStudent struct {
	Identity
	Class      string `json:"classname"`
	MonthsPaid int    `json:"months_paid"` // 1..12; anything else leaves the slots alone
	PaidAmount string `json:"paid_amount"`
	OtherMonth string `json:"other_month"` // when set, written into all 12 status cells
}

// FeeEntry is one month of a fee-collection summary.
type FeeEntry struct {
	Month  int    `json:"month"`
	Label  string `json:"label"`
	Status Status `json:"status"`
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

// FeeSummary is the fee-collection view of one student.
type FeeSummary struct {
	Class       string     `json:"class"`
	RowID       int        `json:"row_id"`
	StudentName string     `json:"student_name"`
	Entries     []FeeEntry `json:"entries"`
}

// ClassOverview summarizes the payments of a class for one month.
type ClassOverview struct {
	Class     string `json:"class"`
	Month     int    `json:"month"`
	Students  int    `json:"students"`
	Paid      int    `json:"paid"`
	Collected int64  `json:"collected"` // sum of all paid amounts of the year
}

// PaymentReceipt is the data of a payment receipt email.
type PaymentReceipt struct {
	Class       string
	StudentName string
	ParentName  string
	MonthLabel  string
	PaidDate    string
	Amount      string
}
