package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hocphi/core"
	"github.com/trezcool/hocphi/core/student"
)

type studentApi struct {
	conf     *core.Config
	svc      student.Service
	validate *validator.Validate
}

func registerStudentAPI(app *echo.Echo, conf *core.Config, svc student.Service, validate *validator.Validate) {
	api := studentApi{
		conf:     conf,
		svc:      svc,
		validate: validate,
	}

	// views
	app.GET("/", api.index)
	app.GET("/:classname", api.list)
	app.GET("/:classname/collect/:rowId", api.collect)

	// mutations
	app.POST("/add", api.add)
	app.POST("/update/:rowId", api.update)
	app.DELETE("/delete/:rowId", api.destroy)
}

// Views

func (api *studentApi) index(ctx echo.Context) error {
	overviews, err := api.svc.Overview(ctx.Request().Context())
	if err != nil {
		return viewError(msgRetrieveFailed, errors.Wrap(err, "loading overview"))
	}
	month := int(time.Now().In(api.location()).Month())
	return ctx.Render(http.StatusOK, indexView, indexPage{
		AppName:    api.conf.AppName,
		MonthLabel: student.MonthLabel(month),
		Overviews:  overviews,
	})
}

func (api *studentApi) list(ctx echo.Context) error {
	class := pathParam(ctx, "classname")
	roster, err := api.svc.ListClass(ctx.Request().Context(), class)
	if err != nil {
		return viewError(msgRetrieveFailed, err)
	}
	return ctx.Render(http.StatusOK, classView, classPage{
		AppName:     api.conf.AppName,
		Roster:      roster,
		MonthLabels: monthLabels(),
	})
}

func (api *studentApi) collect(ctx echo.Context) error {
	row, err := rowParam(ctx)
	if err != nil {
		return viewError(msgRetrieveFailed, err)
	}
	summary, err := api.svc.Collect(ctx.Request().Context(), pathParam(ctx, "classname"), row)
	if err != nil {
		return viewError(msgRetrieveFailed, err)
	}
	return ctx.Render(http.StatusOK, collectView, collectPage{
		AppName: api.conf.AppName,
		Summary: summary,
	})
}

// Mutations

func (api *studentApi) add(ctx echo.Context) error {
	var data addStudentRequest
	if err := ctx.Bind(&data); err != nil {
		return apiError(msgAddFailed, errors.Wrap(err, "binding to addStudentRequest"))
	}
	if err := api.validate.Struct(data); err != nil {
		return apiError(msgAddFailed, err)
	}

	if _, err := api.svc.Add(ctx.Request().Context(), data.toNewStudent()); err != nil {
		return apiError(msgAddFailed, err)
	}
	return ctx.JSON(http.StatusOK, apiResponse{Success: true, Message: "Student added successfully"})
}

func (api *studentApi) update(ctx echo.Context) error {
	row, err := rowParam(ctx)
	if err != nil {
		return apiError(msgUpdateFailed, err)
	}
	var data updateStudentRequest
	if err = ctx.Bind(&data); err != nil {
		return apiError(msgUpdateFailed, errors.Wrap(err, "binding to updateStudentRequest"))
	}
	if err = api.validate.Struct(data); err != nil {
		return apiError(msgUpdateFailed, err)
	}
	us, err := data.toUpdateStudent()
	if err != nil {
		return apiError(msgUpdateFailed, err)
	}

	if err = api.svc.Update(ctx.Request().Context(), row, us); err != nil {
		return apiError(msgUpdateFailed, err)
	}
	return ctx.JSON(http.StatusOK, apiResponse{Success: true, Message: "Student updated successfully"})
}

func (api *studentApi) destroy(ctx echo.Context) error {
	row, err := rowParam(ctx)
	if err != nil {
		return apiError(msgDeleteFailed, err)
	}
	var data deleteStudentRequest
	if err = ctx.Bind(&data); err != nil {
		return apiError(msgDeleteFailed, errors.Wrap(err, "binding to deleteStudentRequest"))
	}
	if err = api.validate.Struct(data); err != nil {
		return apiError(msgDeleteFailed, err)
	}

	if err = api.svc.Delete(ctx.Request().Context(), data.ClassName, row); err != nil {
		return apiError(msgDeleteFailed, err)
	}
	return ctx.JSON(http.StatusOK, apiResponse{Success: true, Message: "Student deleted successfully"})
}

func (api *studentApi) location() *time.Location {
	if api.conf.Sheets.Location != nil {
		return api.conf.Sheets.Location
	}
	return time.Local
}
