package gsheets

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/trezcool/hocphi/core"
	"github.com/trezcool/hocphi/core/student"
)

const (
	valueInputOption = "USER_ENTERED"
	sheetsFields     = "sheets.properties(sheetId,title)"
	lookupTimeout    = 30 * time.Second
)

var errNoSpreadsheetID = errors.New("no spreadsheet id configured")

// Gateway is the student.Gateway backed by the Google Sheets API.
// One Gateway (and its authenticated client) is shared by every request.
type Gateway struct {
	svc           *sheets.Service
	spreadsheetID string
	lookups       singleflight.Group
}

var _ student.Gateway = (*Gateway)(nil)

// Open authenticates against Google with the configured service account credentials.
func Open(ctx context.Context, conf *core.Config, opts ...option.ClientOption) (*Gateway, error) {
	if conf.Sheets.SpreadsheetID == "" {
		return nil, errNoSpreadsheetID
	}

	clientOpts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	switch {
	case conf.Sheets.CredentialsJSON != "":
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(conf.Sheets.CredentialsJSON)))
	case conf.Sheets.CredentialsFile != "":
		clientOpts = append(clientOpts, option.WithCredentialsFile(conf.Sheets.CredentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating sheets client")
	}
	return New(svc, conf.Sheets.SpreadsheetID), nil
}

func New(svc *sheets.Service, spreadsheetID string) *Gateway {
	return &Gateway{svc: svc, spreadsheetID: spreadsheetID}
}

func (gw *Gateway) ReadRange(ctx context.Context, rng student.Range) ([][]interface{}, error) {
	resp, err := gw.svc.Spreadsheets.Values.Get(gw.spreadsheetID, rng.String()).Context(ctx).Do()
	if err != nil {
		return nil, translateError(err, rng)
	}
	return resp.Values, nil
}

func (gw *Gateway) WriteRange(ctx context.Context, rng student.Range, rows [][]interface{}) error {
	vr := &sheets.ValueRange{
		Range:          rng.String(),
		MajorDimension: "ROWS",
		Values:         rows,
	}
	_, err := gw.svc.Spreadsheets.Values.Update(gw.spreadsheetID, vr.Range, vr).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return translateError(err, rng)
	}
	return nil
}

func (gw *Gateway) BatchUpdate(ctx context.Context, reqs ...student.Request) error {
	if len(reqs) == 0 {
		return nil
	}
	sreqs, err := toSheetsRequests(reqs)
	if err != nil {
		return err
	}
	_, err = gw.svc.Spreadsheets.
		BatchUpdate(gw.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: sreqs}).
		Context(ctx).
		Do()
	return errors.Wrap(err, "sheets batchUpdate")
}

// Sheets fetches the spreadsheet metadata. Concurrent callers share one in-flight request,
// which outlives the cancellation of the caller that started it.
func (gw *Gateway) Sheets(ctx context.Context) ([]student.Sheet, error) {
	ch := gw.lookups.DoChan("sheets", func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		ss, err := gw.svc.Spreadsheets.Get(gw.spreadsheetID).Fields(sheetsFields).Context(lookupCtx).Do()
		if err != nil {
			return nil, errors.Wrap(err, "sheets get")
		}
		return toSheets(ss), nil
	})

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "sheets get")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]student.Sheet), nil
	}
}

func toSheets(ss *sheets.Spreadsheet) []student.Sheet {
	result := make([]student.Sheet, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		result = append(result, student.Sheet{ID: sh.Properties.SheetId, Title: sh.Properties.Title})
	}
	return result
}

func gridRange(gr student.GridRange) *sheets.GridRange {
	return &sheets.GridRange{
		SheetId:          gr.SheetID,
		StartRowIndex:    int64(gr.StartRow),
		EndRowIndex:      int64(gr.EndRow),
		StartColumnIndex: int64(gr.StartCol),
		EndColumnIndex:   int64(gr.EndCol),
		// zero values are meaningful here (sheet 0, row 0): never let them be omitted
		ForceSendFields: []string{"SheetId", "StartRowIndex", "EndRowIndex", "StartColumnIndex", "EndColumnIndex"},
	}
}

func toSheetsRequests(reqs []student.Request) ([]*sheets.Request, error) {
	sreqs := make([]*sheets.Request, 0, len(reqs))
	for _, req := range reqs {
		switch r := req.(type) {
		case student.CopyPasteRequest:
			sreqs = append(sreqs, &sheets.Request{
				CopyPaste: &sheets.CopyPasteRequest{
					Source:      gridRange(r.Source),
					Destination: gridRange(r.Destination),
					PasteType:   string(r.PasteType),
				},
			})
		case student.DeleteRowsRequest:
			sreqs = append(sreqs, &sheets.Request{
				DeleteDimension: &sheets.DeleteDimensionRequest{
					Range: &sheets.DimensionRange{
						SheetId:         r.SheetID,
						Dimension:       "ROWS",
						StartIndex:      int64(r.StartIndex),
						EndIndex:        int64(r.EndIndex),
						ForceSendFields: []string{"SheetId", "StartIndex", "EndIndex"},
					},
				},
			})
		default:
			return nil, errors.Errorf("unsupported spreadsheet request %T", req)
		}
	}
	return sreqs, nil
}

// translateError maps "unknown sheet" API errors to student.ErrClassNotFound.
func translateError(err error, rng student.Range) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest &&
		strings.Contains(gerr.Message, "Unable to parse range") {
		return errors.Wrapf(student.ErrClassNotFound, "%s: %s", rng, gerr.Message)
	}
	return errors.Wrapf(err, "sheets range %s", rng)
}
