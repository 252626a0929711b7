package main

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hocphi/core"
	"github.com/trezcool/hocphi/core/student"
	emailsvc "github.com/trezcool/hocphi/services/email"
	inmemsheets "github.com/trezcool/hocphi/storage/spreadsheet/inmem"
	"github.com/trezcool/hocphi/tests"
)

func setup(t *testing.T) (*commandLine, *inmemsheets.Spreadsheet, *bytes.Buffer) {
	t.Helper()
	emailsvc.ResetSent()

	ss := testutil.NewSpreadsheet(t, map[string][][]string{
		"LOP1A": {
			testutil.StudentRow("Nguyễn Văn An", "0901234567", "Nguyễn Văn Bình", "binh@test.vn", student.StatusPaid, student.StatusPaid),
			testutil.StudentRow("Trần Thị Cúc", "0912345678", "Trần Văn Dũng", "", student.StatusPaid),
		},
		"Lớp 2B": {},
	}, "LOP1A", "Lớp 2B")

	conf := core.NewTestConfig()
	logger := testutil.NewLogger(t)
	out := new(bytes.Buffer)

	// start CLI
	return &commandLine{
		svc: student.NewService(ss, emailsvc.NewConsoleServiceMock(conf, logger), logger, conf),
		out: out,
	}, ss, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{} // wanted output fragments
}

func runCLITests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(append([]string{"admin"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, errors.Cause(err))
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Equal(t, tt.wantErrStr, err.Error())
				}
			default:
				assert.NoError(t, err)
			}
			if want, ok := tt.extra.([]string); ok {
				for _, s := range want {
					assert.Contains(t, out.String(), s)
				}
			}
		})
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, _, out := setup(t)

	tests := []cliTest{
		{name: "no command", args: nil, wantErr: errHelp},
		{name: "unknown command", args: []string{"migrate"}, wantErrStr: `unknown command "migrate" for "admin"`},
	}
	runCLITests(t, cli, out, tests)
}

func Test_commandLine_read(t *testing.T) {
	cli, _, out := setup(t)

	tests := []cliTest{
		{name: "classes", args: []string{"classes"}, extra: []string{"CLASS", "LOP1A", "Lớp 2B"}},
		{name: "classes: extra arg", args: []string{"classes", "LOP1A"}, wantErrStr: `unknown command "LOP1A" for "admin classes"`},
		{name: "list", args: []string{"list", "LOP1A"}, extra: []string{"Nguyễn Văn An", "Trần Thị Cúc"}},
		{name: "list: no class", args: []string{"list"}, wantErrStr: "accepts 1 arg(s), received 0"},
		{name: "list: unknown class", args: []string{"list", "LOP9Z"}, wantErr: student.ErrClassNotFound},
		{name: "collect", args: []string{"collect", "LOP1A", "2"}, extra: []string{"Nguyễn Văn An (LOP1A, row 2)", "Tháng 12"}},
		{name: "collect: bad row", args: []string{"collect", "LOP1A", "two"}, wantErrStr: `row: "two" is not a row number`},
		{name: "collect: header row", args: []string{"collect", "LOP1A", "1"}, wantErrStr: "rowId: row must be greater than 1"},
		{name: "collect: empty row", args: []string{"collect", "LOP1A", "9"}, wantErrStr: `row 9 of "LOP1A": student not found`},
	}
	runCLITests(t, cli, out, tests)
}

func Test_commandLine_add(t *testing.T) {
	cli, ss, out := setup(t)

	tests := []cliTest{
		{name: "missing name", args: []string{"add", "LOP1A"}, wantErrStr: "accepts 2 arg(s), received 1"},
		{name: "blank name", args: []string{"add", "LOP1A", "  "}, wantErrStr: "studentName: studentName is required"},
		{name: "unknown class", args: []string{"add", "LOP9Z", "Phạm Gia Huy"}, wantErrStr: `resolving "LOP9Z": class not found`},
		{
			name:  "ok",
			args:  []string{"add", "Lớp 2B", "Phạm Gia Huy", "--parent-name", "Phạm Văn Long", "--parent-phone", "0987654321", "--parent-email", "long@test.vn"},
			extra: []string{`added "Phạm Gia Huy" to Lớp 2B at row 2`},
		},
	}
	runCLITests(t, cli, out, tests)

	rows := ss.Rows("Lớp 2B")
	require.Len(t, rows, 2)
	assert.Equal(t, "Phạm Gia Huy", rows[1][0])
	assert.Equal(t, "Phạm Văn Long", rows[1][2])
	assert.Equal(t, "long@test.vn", rows[1][4])
	format, validation := ss.RowFormat("Lớp 2B", 2)
	assert.Equal(t, testutil.HeaderFormat, format, "a class without students copies the header row format")
	assert.Equal(t, testutil.HeaderValidation, validation)
}

func Test_commandLine_pay(t *testing.T) {
	cli, ss, out := setup(t)

	tests := []cliTest{
		{name: "bad month", args: []string{"pay", "LOP1A", "2", "13"}, wantErrStr: `month: "13" is not a month (1-12)`},
		{name: "bad row", args: []string{"pay", "LOP1A", "x", "3"}, wantErrStr: `row: "x" is not a row number`},
		{name: "ok", args: []string{"pay", "LOP1A", "2", "3", "--amount", "500000"}, extra: []string{"recorded Tháng 3 for row 2 of LOP1A"}},
	}
	runCLITests(t, cli, out, tests)

	st, _, amount, _ := student.SlotColumns(3)
	rows := ss.Rows("LOP1A")
	assert.Equal(t, string(student.StatusPaid), rows[1][st])
	assert.Equal(t, "500000", rows[1][amount])

	sent := emailsvc.Sent()
	if assert.Len(t, sent, 1) {
		assert.Equal(t, "binh@test.vn", sent[0].To[0].Address)
	}
}

func Test_commandLine_delete(t *testing.T) {
	cli, ss, out := setup(t)

	tests := []cliTest{
		{name: "not confirmed", args: []string{"delete", "LOP1A", "2"}, wantErr: errNotConfirmed},
		{name: "unknown class", args: []string{"delete", "LOP9Z", "2", "--yes"}, wantErrStr: `resolving "LOP9Z": class not found`},
		{name: "ok", args: []string{"delete", "LOP1A", "2", "--yes"}, extra: []string{"deleted row 2 of LOP1A"}},
	}
	runCLITests(t, cli, out, tests)

	rows := ss.Rows("LOP1A")
	require.Len(t, rows, 2)
	assert.Equal(t, "Trần Thị Cúc", rows[1][0])
}
