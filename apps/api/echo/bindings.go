package echoapi

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/hocphi/core"
	"github.com/trezcool/hocphi/core/student"
)

// flexString accepts a JSON string, number or null, and any form value.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// UnmarshalParam implements echo.BindUnmarshaler for form values.
func (s *flexString) UnmarshalParam(param string) error {
	*s = flexString(param)
	return nil
}

func (s flexString) String() string {
	return strings.TrimSpace(string(s))
}

type (
	addStudentRequest struct {
		ClassName   string     `json:"classname" form:"classname" validate:"required,sheetname"`
		StudentName string     `json:"studentName" form:"studentName" validate:"required"`
		ParentName  string     `json:"parentName" form:"parentName"`
		ParentPhone flexString `json:"parentPhone" form:"parentPhone"`
		Note        string     `json:"note" form:"note"`
		ParentEmail string     `json:"parentEmail" form:"parentEmail"`
	}

	updateStudentRequest struct {
		ClassName        string     `json:"classname" form:"classname" validate:"required,sheetname"`
		StudentName      string     `json:"studentName" form:"studentName"`
		ParentName       string     `json:"parentName" form:"parentName"`
		ParentPhone      flexString `json:"parentPhone" form:"parentPhone"`
		Note             string     `json:"note" form:"note"`
		ParentEmail      string     `json:"parentEmail" form:"parentEmail"`
		MonthsPaid       flexString `json:"monthsPaid" form:"monthsPaid"`
		MonthsPaidAmount flexString `json:"monthsPaid_amount" form:"monthsPaid_amount"`
		OtherMonth       string     `json:"otherMonth" form:"otherMonth"`
	}

	deleteStudentRequest struct {
		ClassName string `json:"classname" form:"classname" validate:"required,sheetname"`
	}
)

func (req addStudentRequest) toNewStudent() student.NewStudent {
	return student.NewStudent{
		Identity: student.Identity{
			Name:        req.StudentName,
			ParentPhone: req.ParentPhone.String(),
			ParentName:  req.ParentName,
			Note:        req.Note,
			ParentEmail: req.ParentEmail,
		},
		Class: req.ClassName,
	}
}

// toUpdateStudent converts the request; an empty monthsPaid means no payment is recorded.
func (req updateStudentRequest) toUpdateStudent() (student.UpdateStudent, error) {
	us := student.UpdateStudent{
		Identity: student.Identity{
			Name:        req.StudentName,
			ParentPhone: req.ParentPhone.String(),
			ParentName:  req.ParentName,
			Note:        req.Note,
			ParentEmail: req.ParentEmail,
		},
		Class:      req.ClassName,
		PaidAmount: req.MonthsPaidAmount.String(),
		OtherMonth: strings.TrimSpace(req.OtherMonth),
	}
	if mp := req.MonthsPaid.String(); mp != "" {
		month, err := strconv.Atoi(mp)
		if err != nil {
			return us, core.NewValidationError(nil, core.FieldError{Field: "monthsPaid", Error: "monthsPaid must be a month number"})
		}
		us.MonthsPaid = month
	}
	return us, nil
}

// rowParam reads the 1-based `:rowId` path parameter.
func rowParam(ctx echo.Context) (int, error) {
	row, err := strconv.Atoi(ctx.Param("rowId"))
	if err != nil {
		return 0, core.NewValidationError(nil, core.FieldError{Field: "rowId", Error: "rowId must be a row number"})
	}
	return row, nil
}

// pathParam returns a path parameter, unescaped when the router matched on the raw path.
func pathParam(ctx echo.Context, name string) string {
	v := ctx.Param(name)
	if ctx.Request().URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}
