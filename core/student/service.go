package student

import (
	"context"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/hocphi/core"
)

var (
	// errors
	ErrNotFound        = errors.New("student not found")
	ErrClassNotFound   = errors.New("class not found")
	ErrMonthOutOfRange = errors.New("month out of range")

	nowFunc = time.Now // mockable

	overviewConcurrency = 4
)

type Service interface {
	// Classes lists the class names (sheet titles) of the spreadsheet.
	Classes(ctx context.Context) ([]string, error)
	// Overview summarizes the current month's payments of every class.
	Overview(ctx context.Context) ([]ClassOverview, error)
	ListClass(ctx context.Context, class string) (Roster, error)
	// Add appends a student after the last populated row of its class and returns the new row.
	Add(ctx context.Context, ns NewStudent) (int, error)
	Update(ctx context.Context, row int, us UpdateStudent) error
	Collect(ctx context.Context, class string, row int) (FeeSummary, error)
	Delete(ctx context.Context, class string, row int) error
}

type service struct {
	gw      Gateway
	mailSvc core.EmailService
	logger  core.Logger
	loc     *time.Location
	locks   classLocks
}

var _ Service = (*service)(nil)

func NewService(gw Gateway, mailSvc core.EmailService, logger core.Logger, conf *core.Config) Service {
	loc := conf.Sheets.Location
	if loc == nil {
		loc = time.Local
	}
	return &service{
		gw:      gw,
		mailSvc: mailSvc,
		logger:  logger,
		loc:     loc,
	}
}

func (svc *service) now() time.Time {
	return nowFunc().In(svc.loc)
}

func (svc *service) sheetID(ctx context.Context, class string) (int64, error) {
	sheets, err := svc.gw.Sheets(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "listing sheets")
	}
	for _, sh := range sheets {
		if sh.Title == class {
			return sh.ID, nil
		}
	}
	return 0, errors.Wrapf(ErrClassNotFound, "resolving %q", class)
}

func checkRow(row int) error {
	if row <= HeaderRows {
		return core.NewValidationError(nil, core.FieldError{
			Field: "rowId",
			Error: fmt.Sprintf("row must be greater than %d", HeaderRows),
		})
	}
	return nil
}

func (svc *service) Classes(ctx context.Context) ([]string, error) {
	sheets, err := svc.gw.Sheets(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing sheets")
	}
	classes := make([]string, 0, len(sheets))
	for _, sh := range sheets {
		classes = append(classes, sh.Title)
	}
	return classes, nil
}

func (svc *service) Overview(ctx context.Context) ([]ClassOverview, error) {
	classes, err := svc.Classes(ctx)
	if err != nil {
		return nil, err
	}
	month := int(svc.now().Month())

	overviews := make([]ClassOverview, len(classes))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(overviewConcurrency)
	for i, class := range classes {
		eg.Go(func() error {
			roster, err := svc.ListClass(egCtx, class)
			if err != nil {
				return err
			}
			ov := ClassOverview{Class: class, Month: month, Students: len(roster.Students)}
			for _, s := range roster.Students {
				if s.Months[month-1].Status == StatusPaid {
					ov.Paid++
				}
				for _, slot := range s.Months {
					if slot.Status == StatusPaid {
						ov.Collected += ParseAmount(slot.Amount)
					}
				}
			}
			overviews[i] = ov
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, errors.Wrap(err, "summarizing classes")
	}
	return overviews, nil
}

func (svc *service) ListClass(ctx context.Context, class string) (Roster, error) {
	rows, err := svc.gw.ReadRange(ctx, ClassRange(class))
	if err != nil {
		return Roster{}, errors.Wrapf(err, "reading class %q", class)
	}

	roster := Roster{Class: class, Students: make([]Student, 0, len(rows))}
	for i, cells := range rows {
		if i < HeaderRows {
			for j := range cells {
				roster.Header = append(roster.Header, cellString(cells, j))
			}
			continue
		}
		if isBlank(cells) {
			continue
		}
		roster.Students = append(roster.Students, DecodeRow(class, i+1, cells))
	}
	return roster, nil
}

func (svc *service) Add(ctx context.Context, ns NewStudent) (int, error) {
	ns.Identity.Clean()
	// column A locates the next free row, so it is never left blank
	if ns.Name == "" {
		return 0, core.NewValidationError(nil, core.FieldError{Field: "studentName", Error: "studentName is required"})
	}
	unlock := svc.locks.lock(ns.Class)
	defer unlock()

	sheetID, err := svc.sheetID(ctx, ns.Class)
	if err != nil {
		return 0, err
	}

	// the new row goes right after the last populated row
	col, err := svc.gw.ReadRange(ctx, ColumnRange(ns.Class, colName))
	if err != nil {
		return 0, errors.Wrap(err, "reading class name column")
	}
	row := max(len(col)+1, HeaderRows+1)

	// copy formatting, then validation rules, from the preceding row
	if len(col) > 0 {
		src := GridRange{SheetID: sheetID, StartRow: row - 2, EndRow: row - 1, StartCol: 0, EndCol: RowWidth}
		dst := GridRange{SheetID: sheetID, StartRow: row - 1, EndRow: row, StartCol: 0, EndCol: RowWidth}
		err = svc.gw.BatchUpdate(ctx,
			CopyPasteRequest{Source: src, Destination: dst, PasteType: PasteFormat},
			CopyPasteRequest{Source: src, Destination: dst, PasteType: PasteDataValidation},
		)
		if err != nil {
			return 0, errors.Wrap(err, "copying row format")
		}
	}

	values := BuildRow(ns, svc.now())
	if err = svc.gw.WriteRange(ctx, RowRange(ns.Class, row), [][]interface{}{values}); err != nil {
		return 0, errors.Wrap(err, "writing new row")
	}
	return row, nil
}

func (svc *service) Update(ctx context.Context, row int, us UpdateStudent) error {
	if err := checkRow(row); err != nil {
		return err
	}
	us.Identity.Clean()
	unlock := svc.locks.lock(us.Class)
	defer unlock()

	now := svc.now()
	values := PatchRow(us, now)
	if err := svc.gw.WriteRange(ctx, RowRange(us.Class, row), [][]interface{}{values}); err != nil {
		return errors.Wrap(err, "writing row")
	}

	if _, _, _, err := SlotColumns(us.MonthsPaid); err == nil {
		svc.sendReceipt(ctx, us.Class, row, us.MonthsPaid)
	}
	return nil
}

// sendReceipt emails the parent of the student at row a receipt for month, from the row as now stored.
// Failures are logged only: the payment is already recorded.
func (svc *service) sendReceipt(ctx context.Context, class string, row, month int) {
	if svc.mailSvc == nil {
		return
	}
	rows, err := svc.gw.ReadRange(ctx, RowRange(class, row))
	if err != nil || len(rows) == 0 {
		svc.warn(fmt.Sprintf("skipping receipt: reading row %d of %q", row, class), err)
		return
	}
	s := DecodeRow(class, row, rows[0])
	if s.ParentEmail == "" {
		return
	}
	to, err := mail.ParseAddress(s.ParentEmail)
	if err != nil {
		svc.warn(fmt.Sprintf("skipping receipt: invalid parent email %q", s.ParentEmail), err)
		return
	}
	if to.Name == "" {
		to.Name = s.ParentName
	}
	slot := s.Months[month-1]
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{*to},
		Subject:      fmt.Sprintf("Biên lai học phí %s - %s", MonthLabel(month), s.Name),
		TemplateName: "payment_receipt",
		TemplateData: PaymentReceipt{
			Class:       class,
			StudentName: s.Name,
			ParentName:  s.ParentName,
			MonthLabel:  MonthLabel(month),
			PaidDate:    slot.PaidDate,
			Amount:      slot.Amount,
		},
	})
}

func (svc *service) warn(msg string, args ...interface{}) {
	if svc.logger != nil {
		svc.logger.Warn(msg, args...)
	}
}

func (svc *service) Collect(ctx context.Context, class string, row int) (FeeSummary, error) {
	if err := checkRow(row); err != nil {
		return FeeSummary{}, err
	}
	rows, err := svc.gw.ReadRange(ctx, RowRange(class, row))
	if err != nil {
		return FeeSummary{}, errors.Wrapf(err, "reading row %d", row)
	}
	if len(rows) == 0 || isBlank(rows[0]) {
		return FeeSummary{}, errors.Wrapf(ErrNotFound, "row %d of %q", row, class)
	}

	s := DecodeRow(class, row, rows[0])
	return FeeSummary{
		Class:       class,
		RowID:       row,
		StudentName: s.Name,
		Entries:     FeeEntries(s),
	}, nil
}

func (svc *service) Delete(ctx context.Context, class string, row int) error {
	if err := checkRow(row); err != nil {
		return err
	}
	unlock := svc.locks.lock(class)
	defer unlock()

	sheetID, err := svc.sheetID(ctx, class)
	if err != nil {
		return err
	}
	err = svc.gw.BatchUpdate(ctx, DeleteRowsRequest{SheetID: sheetID, StartIndex: row - 1, EndIndex: row})
	return errors.Wrap(err, "deleting row")
}

// classLocks serializes the mutations of a class, so that concurrent appends
// cannot both claim the same "last row + 1".
type classLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (cl *classLocks) lock(class string) (unlock func()) {
	cl.mu.Lock()
	if cl.locks == nil {
		cl.locks = make(map[string]*sync.Mutex)
	}
	l, ok := cl.locks[class]
	if !ok {
		l = new(sync.Mutex)
		cl.locks[class] = l
	}
	cl.mu.Unlock()

	l.Lock()
	return l.Unlock
}
