package fields

import (
	"testing"

	"github.com/sgjt/gestao-forms/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var colors = model.ChoiceConfig{Options: []model.FieldOption{
	{ID: "o1", Label: "Azul claro", Value: "azul_claro"},
	{ID: "o2", Label: "Verde", Value: "verde"},
}}

func field(typ string, config model.FieldConfig) model.FormField {
	return model.FormField{ID: "f1", Type: typ, Label: "Campo", Config: config}
}

func TestInputWidgets(t *testing.T) {
	tests := []struct {
		typ       string
		kind      WidgetKind
		inputMode string
	}{
		{"SHORT_TEXT", TextInput, ""},
		{"text", TextInput, ""},
		{"EMAIL", TextInput, "email"},
		{"url", TextInput, "url"},
		{"PHONE", TextInput, "tel"},
		{"LONG_TEXT", TextArea, ""},
		{"TEXTAREA", TextArea, ""},
		{"MULTIPLE_CHOICE", RadioGroup, ""},
		{"RADIO", RadioGroup, ""},
		{"CHECKBOXES", CheckboxGroup, ""},
		{"checkbox", CheckboxGroup, ""},
		{"SCALE", ScaleRow, ""},
		{"DATE", DateInput, ""},
		{"DATETIME", DateTimeInput, ""},
		{"NUMBER", NumberInput, ""},
		{"DROPDOWN", SelectList, ""},
		{"SELECT", SelectList, ""},
		{"FILE", FileName, ""},
		{"IMAGE", FileName, ""},
		{"SIGNATURE", Unsupported, ""},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			w := Input(field(tt.typ, nil))
			assert.Equal(t, tt.kind, w.Kind)
			assert.Equal(t, tt.inputMode, w.InputMode)
		})
	}
}

func TestInputUnsupportedCarriesMessage(t *testing.T) {
	w := Input(field("SIGNATURE", nil))
	assert.Equal(t, model.FieldType("SIGNATURE"), w.Type)
	assert.Contains(t, w.Message, "SIGNATURE")
}

func TestInputScale(t *testing.T) {
	w := Input(field("SCALE", model.ScaleConfig{MinValue: 0, MaxValue: 3, MinLabel: "Nada", MaxLabel: "Muito"}))
	assert.Equal(t, []int{0, 1, 2, 3}, w.Scale)
	assert.Equal(t, "Nada", w.MinLabel)

	w = Input(field("SCALE", nil))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, w.Scale)
}

func TestInputChoicesIgnoreIrrelevantConfig(t *testing.T) {
	w := Input(field("SHORT_TEXT", colors))
	assert.Empty(t, w.Options)

	w = Input(field("DROPDOWN", colors))
	assert.Equal(t, colors.Options, w.Options)
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name  string
		field model.FormField
		in    model.AnswerValue
		want  model.AnswerValue
		err   bool
	}{
		{"text", field("SHORT_TEXT", nil), model.Text("Ana"), model.Text("Ana"), false},
		{"email stays text", field("EMAIL", nil), model.Text("a@b.org"), model.Text("a@b.org"), false},
		{"blank text unanswered", field("LONG_TEXT", nil), model.Text("   "), model.AnswerValue{}, false},
		{"text rejects list", field("SHORT_TEXT", nil), model.List("a"), model.AnswerValue{}, true},
		{"choice", field("MULTIPLE_CHOICE", colors), model.Text("verde"), model.Text("verde"), false},
		{"choice unknown option", field("RADIO", colors), model.Text("roxo"), model.AnswerValue{}, true},
		{"dropdown empty", field("DROPDOWN", colors), model.Text(""), model.AnswerValue{}, false},
		{"checkboxes", field("CHECKBOXES", colors), model.List("verde", "azul_claro", "verde"), model.List("verde", "azul_claro"), false},
		{"checkboxes single", field("CHECKBOX", colors), model.Text("verde"), model.List("verde"), false},
		{"checkboxes empty", field("CHECKBOXES", colors), model.List(), model.AnswerValue{}, false},
		{"checkboxes unknown", field("CHECKBOXES", colors), model.List("roxo"), model.AnswerValue{}, true},
		{"scale", field("SCALE", nil), model.Num(5), model.Num(5), false},
		{"scale text", field("SCALE", nil), model.Text("3"), model.Num(3), false},
		{"scale out of range", field("SCALE", nil), model.Num(6), model.AnswerValue{}, true},
		{"scale fraction", field("SCALE", nil), model.Num(2.5), model.AnswerValue{}, true},
		{"number", field("NUMBER", nil), model.Text("2,5"), model.Num(2.5), false},
		{"number empty unanswered", field("NUMBER", nil), model.Text(""), model.AnswerValue{}, false},
		{"number zero answered", field("NUMBER", nil), model.Num(0), model.Num(0), false},
		{"number garbage", field("NUMBER", nil), model.Text("dez"), model.AnswerValue{}, true},
		{"date", field("DATE", nil), model.Text("2025-03-10"), model.Text("2025-03-10"), false},
		{"datetime", field("DATETIME", nil), model.Text("2025-03-10T14:30"), model.Text("2025-03-10T14:30"), false},
		{"date invalid", field("DATE", nil), model.Text("10/03/2025"), model.AnswerValue{}, true},
		{"file name", field("FILE", nil), model.Text("foto.png"), model.Text("foto.png"), false},
		{"unknown passes through", field("SIGNATURE", nil), model.List("x"), model.List("x"), false},
		{"unset", field("NUMBER", nil), model.AnswerValue{}, model.AnswerValue{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.field, tt.in)
			if tt.err {
				var ve *ValueError
				assert.ErrorAs(t, err, &ve)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, NotAnswered, Display(field("SHORT_TEXT", nil), model.AnswerValue{}))
	assert.Equal(t, NotAnswered, Display(field("CHECKBOXES", colors), model.List()))
	assert.Equal(t, "Ana", Display(field("SHORT_TEXT", nil), model.Text("Ana")))
	assert.Equal(t, "Verde", Display(field("MULTIPLE_CHOICE", colors), model.Text("verde")))
	assert.Equal(t, "legado", Display(field("DROPDOWN", colors), model.Text("legado")))
	assert.Equal(t, "Azul claro, Verde", Display(field("CHECKBOXES", colors), model.List("azul_claro", "verde")))
	assert.Equal(t, "4", Display(field("SCALE", nil), model.Num(4)))
	assert.Equal(t, "10/03/2025", Display(field("DATE", nil), model.Text("2025-03-10")))
	assert.Equal(t, "10/03/2025 14:30", Display(field("DATETIME", nil), model.Text("2025-03-10T14:30")))
	assert.Equal(t, "amanhã", Display(field("DATE", nil), model.Text("amanhã")))
}

func TestMissingRequired(t *testing.T) {
	form := model.FormWithDetails{Fields: []model.FormField{
		{ID: "a", Type: "SHORT_TEXT", Label: "Nome", Required: true},
		{ID: "b", Type: "CHECKBOXES", Label: "Cores", Required: true},
		{ID: "c", Type: "NUMBER", Label: "Idade"},
	}}

	missing := MissingRequired(form, []model.FormAnswer{
		{FieldID: "a", Value: model.Text("Ana")},
		{FieldID: "b", Value: model.List()},
	})
	require.Len(t, missing, 1)
	assert.Equal(t, "Cores", missing[0].Label)
}

func TestCoerceAll(t *testing.T) {
	form := model.FormWithDetails{Fields: []model.FormField{
		{ID: "n", Type: "NUMBER", Label: "Idade"},
		{ID: "t", Type: "SHORT_TEXT", Label: "Nome"},
	}}

	out, err := CoerceAll(form, []model.FormAnswer{
		{FieldID: "n", Value: model.Text("42")},
		{FieldID: "t", Value: model.Text("")},
		{FieldID: "orphan", Value: model.Text("x")},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, model.Num(42), out[0].Value)
	assert.Equal(t, "orphan", out[1].FieldID)

	_, err = CoerceAll(form, []model.FormAnswer{{FieldID: "n", Value: model.List("1")}})
	assert.Error(t, err)
}
