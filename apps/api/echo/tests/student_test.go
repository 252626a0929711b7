package tests

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hocphi/core/student"
	emailsvc "github.com/trezcool/hocphi/services/email"
)

type response struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Err     string       `json:"err,omitempty"`
	Fields  []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

func Test_studentApi_views(t *testing.T) {
	srv, _ := setup(t)

	tests := []httpTest{
		{name: "index", path: "/", wantText: []string{">LOP1A</a>", ">Lớp 2B</a>", "<td>2</td>"}},
		{name: "class", path: "/LOP1A", wantText: []string{"Nguyễn Văn An", "Trần Thị Cúc", "/LOP1A/collect/3"}},
		{name: "class (escaped name)", path: "/L%E1%BB%9Bp%202B", wantText: []string{"Lê Minh Khoa"}},
		{name: "class (trailing slash)", path: "/LOP1A/", wantText: []string{"Nguyễn Văn An"}},
		{name: "class (unknown)", path: "/LOP9Z", wantCode: http.StatusNotFound, wantText: []string{"Class not found"}},
		{name: "collect", path: "/LOP1A/collect/2", wantText: []string{"Nguyễn Văn An", "Tháng 2", "Tháng 12"}},
		{name: "collect (empty row)", path: "/LOP1A/collect/9", wantCode: http.StatusNotFound, wantText: []string{"Student not found"}},
		{name: "collect (header row)", path: "/LOP1A/collect/1", wantCode: http.StatusBadRequest, wantText: []string{"Error retrieving data"}},
		{name: "collect (bad row)", path: "/LOP1A/collect/abc", wantCode: http.StatusBadRequest, wantText: []string{"Error retrieving data"}},
	}
	runHTTPTests(t, srv, tests)
}

func Test_studentApi_collect_elapsed(t *testing.T) {
	srv, _ := setup(t)

	req, rec := newRequest(httpTest{path: "/LOP1A/collect/2"})
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<td>Tháng 1</td>", "elapsed months are not listed")
}

func Test_studentApi_requestID(t *testing.T) {
	srv, _ := setup(t)

	req, rec := newRequest(httpTest{path: "/"})
	srv.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func Test_studentApi_add(t *testing.T) {
	srv, ss := setup(t)

	added := marshalObj(t, response{Success: true, Message: "Student added successfully"})
	classRequired := "classname is required"
	nameRequired := "studentName is required"

	tests := []httpTest{
		{
			name: "json", method: http.MethodPost, path: "/add",
			body:     []byte(`{"classname":"LOP1A","studentName":"Phạm Gia Huy","parentName":"Phạm Văn Long","parentPhone":987654321,"parentEmail":"long@test.vn"}`),
			wantData: added,
		},
		{
			name: "form", method: http.MethodPost, path: "/add",
			form:     url.Values{"classname": {"Lớp 2B"}, "studentName": {"Đỗ Bảo Ngọc"}, "parentPhone": {"0977000111"}},
			wantData: added,
		},
		{
			name: "missing classname", method: http.MethodPost, path: "/add",
			body:     []byte(`{"studentName":"Phạm Gia Huy"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, response{
				Message: "Error adding student",
				Err:     classRequired,
				Fields:  []fieldError{{Field: "classname", Error: classRequired}},
			}),
		},
		{
			name: "invalid classname", method: http.MethodPost, path: "/add",
			body:     []byte(`{"classname":"6A/7A","studentName":"Phạm Gia Huy"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, response{
				Message: "Error adding student",
				Err:     "classname must be a valid sheet name",
				Fields:  []fieldError{{Field: "classname", Error: "classname must be a valid sheet name"}},
			}),
		},
		{
			name: "missing studentName", method: http.MethodPost, path: "/add",
			body:     []byte(`{"classname":"LOP1A","parentName":"Phụ huynh A","parentEmail":"a@test.vn"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, response{
				Message: "Error adding student",
				Err:     nameRequired,
				Fields:  []fieldError{{Field: "studentName", Error: nameRequired}},
			}),
		},
		{
			name: "blank studentName", method: http.MethodPost, path: "/add",
			form:     url.Values{"classname": {"LOP1A"}, "studentName": {"   "}},
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, response{
				Message: "Error adding student",
				Err:     "studentName: " + nameRequired,
				Fields:  []fieldError{{Field: "studentName", Error: nameRequired}},
			}),
		},
		{
			name: "unknown class", method: http.MethodPost, path: "/add",
			body:     []byte(`{"classname":"LOP9Z","studentName":"Phạm Gia Huy"}`),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, response{Message: "Error adding student", Err: `resolving "LOP9Z": class not found`}),
		},
		{
			name: "malformed json", method: http.MethodPost, path: "/add",
			body:     []byte(`{"classname":`),
			wantCode: http.StatusBadRequest,
		},
	}
	runHTTPTests(t, srv, tests)

	rows := ss.Rows("LOP1A")
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Phạm Gia Huy", "987654321", "Phạm Văn Long", "", "long@test.vn"}, rows[3][:student.IdentityColumns])

	rows = ss.Rows("Lớp 2B")
	require.Len(t, rows, 3)
	assert.Equal(t, "Đỗ Bảo Ngọc", rows[2][0])
	assert.Equal(t, "0977000111", rows[2][1])
}

func Test_studentApi_update(t *testing.T) {
	srv, ss := setup(t)

	updated := marshalObj(t, response{Success: true, Message: "Student updated successfully"})

	tests := []httpTest{
		{
			name: "months paid (numbers)", method: http.MethodPost, path: "/update/2",
			body:     []byte(`{"classname":"LOP1A","monthsPaid":5,"monthsPaid_amount":500000}`),
			wantData: updated,
		},
		{
			name: "months paid (form)", method: http.MethodPost, path: "/update/3",
			form:     url.Values{"classname": {"LOP1A"}, "monthsPaid": {"6"}, "monthsPaid_amount": {"450.000"}, "note": {"đóng tiền mặt"}},
			wantData: updated,
		},
		{
			name: "bad row", method: http.MethodPost, path: "/update/abc",
			body:     []byte(`{"classname":"LOP1A","monthsPaid":5}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, response{
				Message: "Error updating student",
				Err:     "rowId: rowId must be a row number",
				Fields:  []fieldError{{Field: "rowId", Error: "rowId must be a row number"}},
			}),
		},
		{
			name: "header row", method: http.MethodPost, path: "/update/1",
			body:     []byte(`{"classname":"LOP1A","monthsPaid":5}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, response{
				Message: "Error updating student",
				Err:     "rowId: row must be greater than 1",
				Fields:  []fieldError{{Field: "rowId", Error: "row must be greater than 1"}},
			}),
		},
		{
			name: "bad month", method: http.MethodPost, path: "/update/2",
			body:     []byte(`{"classname":"LOP1A","monthsPaid":"may"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, response{
				Message: "Error updating student",
				Err:     "monthsPaid: monthsPaid must be a month number",
				Fields:  []fieldError{{Field: "monthsPaid", Error: "monthsPaid must be a month number"}},
			}),
		},
		{
			name: "unknown class", method: http.MethodPost, path: "/update/2",
			body:     []byte(`{"classname":"LOP9Z","monthsPaid":5}`),
			wantCode: http.StatusNotFound,
		},
	}
	runHTTPTests(t, srv, tests)

	rows := ss.Rows("LOP1A")
	st5, date5, amount5, _ := student.SlotColumns(5)
	assert.Equal(t, string(student.StatusPaid), rows[1][st5])
	assert.Equal(t, today(), rows[1][date5])
	assert.Equal(t, "500000", rows[1][amount5])
	assert.Equal(t, "Nguyễn Văn An", rows[1][0], "absent identity fields are left alone")

	st6, _, amount6, _ := student.SlotColumns(6)
	assert.Equal(t, string(student.StatusPaid), rows[2][st6])
	assert.Equal(t, "450.000", rows[2][amount6])
	assert.Equal(t, "đóng tiền mặt", rows[2][3])

	// only row 2 has a parent email
	sent := emailsvc.Sent()
	if assert.Len(t, sent, 1) {
		assert.Equal(t, "binh@test.vn", sent[0].To[0].Address)
	}
}

func Test_studentApi_delete(t *testing.T) {
	srv, ss := setup(t)

	tests := []httpTest{
		{
			name: "unknown class", method: http.MethodDelete, path: "/delete/10",
			body:     []byte(`{"classname":"LOP6A"}`),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, response{Message: "Error deleting student", Err: `resolving "LOP6A": class not found`}),
		},
		{
			name: "missing classname", method: http.MethodDelete, path: "/delete/2",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "ok", method: http.MethodDelete, path: "/delete/2",
			body:     []byte(`{"classname":"LOP1A"}`),
			wantData: marshalObj(t, response{Success: true, Message: "Student deleted successfully"}),
		},
	}
	runHTTPTests(t, srv, tests)

	rows := ss.Rows("LOP1A")
	require.Len(t, rows, 2)
	assert.Equal(t, "Trần Thị Cúc", rows[1][0])
	assert.Len(t, ss.Requests(), 1)
}

func Test_studentApi_upstreamFailure(t *testing.T) {
	srv, ss := setup(t)
	ss.SetFailure(errors.New("quota exceeded"))

	tests := []httpTest{
		{
			name: "add", method: http.MethodPost, path: "/add",
			body:     []byte(`{"classname":"LOP1A","studentName":"Phạm Gia Huy"}`),
			wantCode: http.StatusInternalServerError,
			wantData: marshalObj(t, response{Message: "Error adding student", Err: "listing sheets: quota exceeded"}),
		},
		{
			name: "update", method: http.MethodPost, path: "/update/2",
			body:     []byte(`{"classname":"LOP1A","monthsPaid":5}`),
			wantCode: http.StatusInternalServerError,
			wantData: marshalObj(t, response{Message: "Error updating student", Err: "writing row: quota exceeded"}),
		},
		{name: "class", path: "/LOP1A", wantCode: http.StatusInternalServerError, wantText: []string{"Error retrieving data"}},
	}
	runHTTPTests(t, srv, tests)
}
