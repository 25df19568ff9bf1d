package fields

import (
	"strings"

	"github.com/sgjt/gestao-forms/model"
)

const (
	displayDate     = "02/01/2006"
	displayDateTime = "02/01/2006 15:04"
)

// Display renders a stored answer as read-only text. Absent and empty
// values read NotAnswered. Choice values are shown by their option label.
func Display(field model.FormField, v model.AnswerValue) string {
	if v.Empty() {
		return NotAnswered
	}

	switch field.Kind() {
	case model.MultipleChoice, model.Dropdown:
		return optionLabel(field, v.Join(", "))

	case model.Checkboxes:
		items := v.ListValue()
		if !v.IsList() {
			items = []string{v.Join("")}
		}
		labels := make([]string, 0, len(items))
		for _, item := range items {
			labels = append(labels, optionLabel(field, item))
		}
		return strings.Join(labels, ", ")

	case model.Date:
		return FormatDate(field, v.Join(""))
	}

	return v.String()
}

func optionLabel(field model.FormField, value string) string {
	if label, ok := field.OptionLabel(value); ok {
		return label
	}
	return value
}

// FormatDate renders an ISO date in dd/mm/yyyy form, with the time of day
// for DATETIME fields. Unparseable values are returned unchanged.
func FormatDate(field model.FormField, s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	if rawName(field) == "DATETIME" {
		return t.Format(displayDateTime)
	}
	return t.Format(displayDate)
}
