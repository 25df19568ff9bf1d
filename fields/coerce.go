package fields

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sgjt/gestao-forms/model"
)

// ValueError reports an answer that does not fit its field.
type ValueError struct {
	FieldID string
	Label   string
	Reason  string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("campo %q: %s", e.Label, e.Reason)
}

func invalid(field model.FormField, format string, args ...any) error {
	return &ValueError{FieldID: field.ID, Label: field.Label, Reason: fmt.Sprintf(format, args...)}
}

var dateLayouts = []string{
	model.DateLayout,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDate accepts an ISO date or date-time.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Coerce normalises a value typed into a field to the stored shape of its
// type: option values for choices, numbers for SCALE and NUMBER, strings
// otherwise. A zero AnswerValue means the field was left unanswered.
func Coerce(field model.FormField, v model.AnswerValue) (model.AnswerValue, error) {
	if v.IsZero() {
		return v, nil
	}

	switch field.Kind() {
	case model.ShortText, model.LongText, model.File:
		if v.IsList() {
			return model.AnswerValue{}, invalid(field, "esperado texto")
		}
		s := v.Join("")
		if strings.TrimSpace(s) == "" {
			return model.AnswerValue{}, nil
		}
		return model.Text(s), nil

	case model.MultipleChoice, model.Dropdown:
		if v.IsList() {
			return model.AnswerValue{}, invalid(field, "apenas uma opção pode ser escolhida")
		}
		s := v.Join("")
		if s == "" {
			return model.AnswerValue{}, nil
		}
		if _, ok := field.OptionLabel(s); !ok {
			return model.AnswerValue{}, invalid(field, "opção desconhecida %q", s)
		}
		return model.Text(s), nil

	case model.Checkboxes:
		items := v.ListValue()
		if !v.IsList() {
			items = []string{v.Join("")}
		}
		chosen := []string{}
		seen := map[string]bool{}
		for _, item := range items {
			if item == "" || seen[item] {
				continue
			}
			if _, ok := field.OptionLabel(item); !ok {
				return model.AnswerValue{}, invalid(field, "opção desconhecida %q", item)
			}
			seen[item] = true
			chosen = append(chosen, item)
		}
		if len(chosen) == 0 {
			return model.AnswerValue{}, nil
		}
		return model.List(chosen...), nil

	case model.Scale:
		n, ok, err := number(field, v)
		if err != nil || !ok {
			return model.AnswerValue{}, err
		}
		scale := field.Scale()
		if n != math.Trunc(n) || n < float64(scale.MinValue) || n > float64(scale.MaxValue) {
			return model.AnswerValue{}, invalid(field, "valor deve ser inteiro entre %d e %d", scale.MinValue, scale.MaxValue)
		}
		return model.Num(n), nil

	case model.Number:
		n, ok, err := number(field, v)
		if err != nil || !ok {
			return model.AnswerValue{}, err
		}
		return model.Num(n), nil

	case model.Date:
		if !v.IsText() {
			return model.AnswerValue{}, invalid(field, "esperada data ISO")
		}
		s := strings.TrimSpace(v.TextValue())
		if s == "" {
			return model.AnswerValue{}, nil
		}
		if _, ok := ParseDate(s); !ok {
			return model.AnswerValue{}, invalid(field, "data inválida %q", s)
		}
		return model.Text(s), nil
	}

	// unknown legacy types keep whatever was sent
	return v, nil
}

// number reads a numeric answer. Empty text is unanswered, not zero.
func number(field model.FormField, v model.AnswerValue) (float64, bool, error) {
	switch {
	case v.IsNumber():
		return v.NumberValue(), true, nil
	case v.IsText():
		s := strings.TrimSpace(v.TextValue())
		if s == "" {
			return 0, false, nil
		}
		n, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false, invalid(field, "número inválido %q", s)
		}
		return n, true, nil
	}
	return 0, false, invalid(field, "esperado número")
}

// CoerceAll coerces a full answer set against a form. Answers to fields the
// form does not have are kept untouched. Unanswered fields are dropped.
func CoerceAll(form model.FormWithDetails, answers []model.FormAnswer) ([]model.FormAnswer, error) {
	out := make([]model.FormAnswer, 0, len(answers))
	for _, a := range answers {
		field, ok := form.Field(a.FieldID)
		if !ok {
			out = append(out, a)
			continue
		}
		v, err := Coerce(field, a.Value)
		if err != nil {
			return nil, err
		}
		if v.IsZero() {
			continue
		}
		a.Value = v
		out = append(out, a)
	}
	return out, nil
}

// MissingRequired lists the required fields without an answer.
func MissingRequired(form model.FormWithDetails, answers []model.FormAnswer) []model.FormField {
	answered := map[string]bool{}
	for _, a := range answers {
		if !a.Value.Empty() {
			answered[a.FieldID] = true
		}
	}

	missing := []model.FormField{}
	for _, f := range form.OrderedFields() {
		if f.Required && !answered[f.ID] {
			missing = append(missing, f)
		}
	}
	return missing
}
