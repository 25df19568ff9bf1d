// Package export flattens form responses into spreadsheet rows.
package export

import (
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sgjt/gestao-forms/fields"
	"github.com/sgjt/gestao-forms/model"
)

const (
	ListSeparator   = "; "
	SubmittedLayout = "02/01/2006 15:04:05"
)

// bom makes spreadsheet tools read the file as UTF-8.
var bom = []byte{0xEF, 0xBB, 0xBF}

// Header is the first row of an export: user, submission time and one
// column per field label.
func Header(form model.FormWithDetails) []string {
	ordered := form.OrderedFields()
	header := make([]string, 0, len(ordered)+2)
	header = append(header, "Usuário", "Data de Envio")
	for _, f := range ordered {
		header = append(header, f.Label)
	}
	return header
}

// Row returns one cell per field plus the two leading columns, whatever
// answers the response holds. Answers are matched by exact field id.
func Row(form model.FormWithDetails, r model.ResponseWithAnswers, loc *time.Location) []string {
	ordered := form.OrderedFields()
	row := make([]string, 0, len(ordered)+2)

	submitted := ""
	if r.SubmittedAt != nil {
		submitted = r.SubmittedAt.In(loc).Format(SubmittedLayout)
	}
	row = append(row, r.UserName, submitted)

	for _, f := range ordered {
		row = append(row, Cell(f, r))
	}
	return row
}

// Cell is the export text of the answer to f: empty when absent, list items
// joined by ListSeparator, dates as dd/mm/yyyy and anything else as-is.
func Cell(f model.FormField, r model.ResponseWithAnswers) string {
	a, ok := r.Answer(f.ID)
	if !ok || a.Value.IsZero() {
		return ""
	}
	if a.Value.IsList() {
		return a.Value.Join(ListSeparator)
	}
	if f.Kind() == model.Date {
		return fields.FormatDate(f, a.Value.Join(""))
	}
	return a.Value.Join("")
}

// Submitted keeps only the submitted responses.
func Submitted(responses []model.ResponseWithAnswers) []model.ResponseWithAnswers {
	out := make([]model.ResponseWithAnswers, 0, len(responses))
	for _, r := range responses {
		if r.Status == model.ResponseSubmitted {
			out = append(out, r)
		}
	}
	return out
}

func quote(cell string) string {
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

func line(cells []string) string {
	quoted := make([]string, len(cells))
	for i, c := range cells {
		quoted[i] = quote(c)
	}
	return strings.Join(quoted, ",")
}

// WriteCSV writes the submitted responses of a form as CSV. Every cell is
// quoted and rows are separated by a bare newline.
func WriteCSV(w io.Writer, form model.FormWithDetails, responses []model.ResponseWithAnswers, loc *time.Location) error {
	lines := []string{line(Header(form))}
	for _, r := range Submitted(responses) {
		lines = append(lines, line(Row(form, r, loc)))
	}

	if _, err := w.Write(bom); err != nil {
		return errors.Wrap(err, "write bom")
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return errors.Wrap(err, "write csv")
}

var reSpaces = regexp.MustCompile(`\s+`)

// FileName names a download of the responses of form.
func FileName(form model.Form, ext string) string {
	return reSpaces.ReplaceAllLiteralString(form.Title, "_") + "_respostas." + ext
}
