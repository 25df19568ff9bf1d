// Package fields turns field definitions into input widgets, coerces the
// values typed into them and renders stored answers back as text.
package fields

import (
	"fmt"
	"strings"

	"github.com/sgjt/gestao-forms/model"
)

type WidgetKind string

const (
	TextInput     WidgetKind = "text"
	TextArea      WidgetKind = "textarea"
	RadioGroup    WidgetKind = "radio"
	CheckboxGroup WidgetKind = "checkboxes"
	ScaleRow      WidgetKind = "scale"
	DateInput     WidgetKind = "date"
	DateTimeInput WidgetKind = "datetime"
	NumberInput   WidgetKind = "number"
	SelectList    WidgetKind = "select"
	FileName      WidgetKind = "file"
	Unsupported   WidgetKind = "unsupported"
)

const maxScaleSteps = 101

// NotAnswered is shown in place of an absent answer.
const NotAnswered = "(não respondido)"

// Widget describes how a field is filled in.
type Widget struct {
	FieldID     string              `json:"fieldId"`
	SectionID   string              `json:"sectionId,omitempty"`
	Kind        WidgetKind          `json:"kind"`
	Type        model.FieldType     `json:"type"`
	InputMode   string              `json:"inputMode,omitempty"`
	Label       string              `json:"label"`
	HelpText    string              `json:"helpText,omitempty"`
	Required    bool                `json:"required"`
	Placeholder string              `json:"placeholder,omitempty"`
	Options     []model.FieldOption `json:"options,omitempty"`
	Scale       []int               `json:"scale,omitempty"`
	MinLabel    string              `json:"minLabel,omitempty"`
	MaxLabel    string              `json:"maxLabel,omitempty"`
	Message     string              `json:"message,omitempty"`
}

// inputModes of the single line legacy aliases. They never change the type
// of the stored value.
var inputModes = map[string]string{
	"EMAIL": "email",
	"URL":   "url",
	"PHONE": "tel",
}

func rawName(field model.FormField) string {
	return strings.ToUpper(strings.TrimSpace(field.Type))
}

// Input returns the widget for a field. Unknown types get an Unsupported
// widget carrying a message rather than an error.
func Input(field model.FormField) Widget {
	w := Widget{
		FieldID:   field.ID,
		SectionID: field.SectionID,
		Type:      field.Kind(),
		Label:     field.Label,
		HelpText:  field.HelpText,
		Required:  field.Required,
	}

	switch field.Kind() {
	case model.ShortText:
		w.Kind = TextInput
		w.InputMode = inputModes[rawName(field)]
		w.Placeholder = field.Placeholder()
	case model.LongText:
		w.Kind = TextArea
		w.Placeholder = field.Placeholder()
	case model.MultipleChoice:
		w.Kind = RadioGroup
		w.Options = field.Options()
	case model.Checkboxes:
		w.Kind = CheckboxGroup
		w.Options = field.Options()
	case model.Dropdown:
		w.Kind = SelectList
		w.Options = field.Options()
	case model.Scale:
		w.Kind = ScaleRow
		scale := field.Scale()
		for n := scale.MinValue; n <= scale.MaxValue && len(w.Scale) < maxScaleSteps; n++ {
			w.Scale = append(w.Scale, n)
		}
		w.MinLabel = scale.MinLabel
		w.MaxLabel = scale.MaxLabel
	case model.Date:
		w.Kind = DateInput
		if rawName(field) == "DATETIME" {
			w.Kind = DateTimeInput
		}
	case model.Number:
		w.Kind = NumberInput
		w.Placeholder = field.Placeholder()
	case model.File:
		w.Kind = FileName
	default:
		w.Kind = Unsupported
		w.Message = fmt.Sprintf("Tipo de campo não suportado: %s", field.Type)
	}
	return w
}

// Inputs returns the widgets of fields in the given order.
func Inputs(fields []model.FormField) []Widget {
	widgets := make([]Widget, 0, len(fields))
	for _, f := range fields {
		widgets = append(widgets, Input(f))
	}
	return widgets
}
