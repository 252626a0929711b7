package echoapi

import (
	"embed"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/hocphi/core/student"
)

//go:embed views
var viewsFS embed.FS

const (
	layoutView  = "views/layout.gohtml"
	indexView   = "index"
	classView   = "student"
	collectView = "collect"
)

type (
	indexPage struct {
		AppName    string
		MonthLabel string
		Overviews  []student.ClassOverview
	}

	classPage struct {
		AppName     string
		Roster      student.Roster
		MonthLabels []string
	}

	collectPage struct {
		AppName string
		Summary student.FeeSummary
	}
)

// templateRenderer renders the embedded views, each within the shared layout.
type templateRenderer struct {
	views map[string]*template.Template
}

var _ echo.Renderer = (*templateRenderer)(nil)

var viewFuncs = template.FuncMap{
	"amount":  formatAmount,
	"money":   groupThousands,
	"paid":    func(s student.Status) bool { return s == student.StatusPaid },
	"elapsed": func(s student.Status) bool { return s == student.StatusElapsed },
	"inc":     func(i int) int { return i + 1 },
}

func newTemplateRenderer() (*templateRenderer, error) {
	r := &templateRenderer{views: make(map[string]*template.Template)}
	for _, name := range []string{indexView, classView, collectView} {
		tmpl, err := template.New(name).Funcs(viewFuncs).ParseFS(viewsFS, layoutView, "views/"+name+".gohtml")
		if err != nil {
			return nil, errors.Wrapf(err, "parsing view %q", name)
		}
		r.views[name] = tmpl
	}
	return r, nil
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.views[name]
	if !ok {
		return errors.Errorf("view %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

// formatAmount renders a money cell with dot thousands separators: "500000" -> "500.000".
// Cells without any digit are returned as-is.
func formatAmount(cell string) string {
	if !strings.ContainsAny(cell, "0123456789") {
		return cell
	}
	return groupThousands(student.ParseAmount(cell))
}

func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return b.String()
}

func monthLabels() []string {
	labels := make([]string, 0, student.MonthsPerYear)
	for m := 1; m <= student.MonthsPerYear; m++ {
		labels = append(labels, student.MonthLabel(m))
	}
	return labels
}
