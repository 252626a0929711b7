package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/hocphi/apps/api/echo"
	"github.com/trezcool/hocphi/core"
	"github.com/trezcool/hocphi/core/student"
	emailsvc "github.com/trezcool/hocphi/services/email"
	inmemsheets "github.com/trezcool/hocphi/storage/spreadsheet/inmem"
	"github.com/trezcool/hocphi/tests"
)

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	form     url.Values
	wantCode int
	wantData []byte
	wantText []string // substrings of a text/html response
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func setup(t *testing.T) (*echoapi.Server, *inmemsheets.Spreadsheet) {
	t.Helper()
	emailsvc.ResetSent()

	ss := testutil.NewSpreadsheet(t, map[string][][]string{
		"LOP1A": {
			testutil.StudentRow("Nguyễn Văn An", "0901234567", "Nguyễn Văn Bình", "binh@test.vn",
				student.StatusElapsed, student.StatusPaid),
			testutil.StudentRow("Trần Thị Cúc", "0912345678", "Trần Văn Dũng", ""),
		},
		"Lớp 2B": {
			testutil.StudentRow("Lê Minh Khoa", "", "Lê Thị Hoa", "hoa@test.vn", student.StatusPaid),
		},
	}, "LOP1A", "Lớp 2B")

	conf := core.NewTestConfig()
	logger := testutil.NewLogger(t)
	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	srv, err := echoapi.NewServer(echoapi.Deps{
		Conf:       conf,
		Logger:     logger,
		StudentSvc: student.NewService(ss, emailsvc.NewConsoleServiceMock(conf, logger), logger, conf),
		Validate:   validate,
		Translator: translator,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv, ss
}

func newRequest(tt httpTest) (*http.Request, *httptest.ResponseRecorder) {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	var req *http.Request
	if tt.form != nil {
		req = httptest.NewRequest(method, tt.path, strings.NewReader(tt.form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, tt.path, bytes.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
	}
	return req, httptest.NewRecorder()
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, wantCode, rec.Body.String())
	}
	if tt.wantData != nil {
		assert.JSONEq(t, string(tt.wantData), rec.Body.String())
	}
	for _, text := range tt.wantText {
		assert.Contains(t, rec.Body.String(), text)
	}
}

func runHTTPTests(t *testing.T, srv http.Handler, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func today() string {
	return student.FormatDate(time.Now().UTC())
}
