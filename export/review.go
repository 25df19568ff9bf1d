package export

import (
	"github.com/sgjt/gestao-forms/fields"
	"github.com/sgjt/gestao-forms/model"
)

// ReviewRow is one answered (or unanswered) field of a response.
type ReviewRow struct {
	FieldID  string `json:"fieldId"`
	Section  string `json:"section,omitempty"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Answered bool   `json:"answered"`
}

// FieldValue is the read-only text of the answer to f. An answer that
// matches no field of the form is never looked at, and a field without an
// answer reads fields.NotAnswered.
func FieldValue(f model.FormField, r model.ResponseWithAnswers) string {
	a, _ := r.Answer(f.ID)
	return fields.Display(f, a.Value)
}

// Review lays a response out field by field in display order.
func Review(form model.FormWithDetails, r model.ResponseWithAnswers) []ReviewRow {
	titles := make(map[string]string, len(form.Sections))
	for _, s := range form.Sections {
		titles[s.ID] = s.Title
	}

	ordered := form.OrderedFields()
	rows := make([]ReviewRow, 0, len(ordered))
	for _, f := range ordered {
		a, ok := r.Answer(f.ID)
		rows = append(rows, ReviewRow{
			FieldID:  f.ID,
			Section:  titles[f.SectionID],
			Label:    f.Label,
			Value:    fields.Display(f, a.Value),
			Answered: ok && !a.Value.Empty(),
		})
	}
	return rows
}
