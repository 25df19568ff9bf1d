package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveType(t *testing.T) {
	assert.Equal(t, ShortText, ResolveType("email"))
	assert.Equal(t, LongText, ResolveType(" TEXTAREA "))
	assert.Equal(t, MultipleChoice, ResolveType("Radio"))
	assert.Equal(t, Checkboxes, ResolveType("CHECKBOX"))
	assert.Equal(t, Date, ResolveType("DATETIME"))
	assert.Equal(t, Dropdown, ResolveType("select"))
	assert.Equal(t, File, ResolveType("IMAGE"))
	assert.Equal(t, FieldType("SIGNATURE"), ResolveType("SIGNATURE"))
	assert.False(t, ResolveType("SIGNATURE").Known())
	assert.True(t, File.Known())
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "azul_claro", Slug("Azul Claro"))
	assert.Equal(t, "sim_ou_não", Slug("Sim  ou\tNão"))
}

func TestFieldJSONKeepsOnlyRelevantConfig(t *testing.T) {
	var f FormField
	err := json.Unmarshal([]byte(`{
		"id": "f1",
		"type": "SHORT_TEXT",
		"label": "Nome",
		"config": {"options": [{"id": "o1", "label": "A", "value": "a"}], "placeholder": "Seu nome"}
	}`), &f)
	require.NoError(t, err)
	assert.Equal(t, TextConfig{Placeholder: "Seu nome"}, f.Config)
	assert.Empty(t, f.Options())

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "options")
	assert.NotContains(t, string(out), "sectionId")
}

func TestFieldJSONScaleDefaults(t *testing.T) {
	var f FormField
	require.NoError(t, json.Unmarshal([]byte(`{"id": "f1", "type": "SCALE", "sectionId": "s1"}`), &f))
	assert.Equal(t, "s1", f.SectionID)
	assert.Equal(t, ScaleConfig{MinValue: 1, MaxValue: 5}, f.Scale())

	require.NoError(t, json.Unmarshal([]byte(`{"id": "f1", "type": "SCALE", "config": {"minValue": 0, "maxValue": 10}}`), &f))
	assert.Equal(t, 0, f.Scale().MinValue)
	assert.Equal(t, 10, f.Scale().MaxValue)
}

func TestReshapeConfig(t *testing.T) {
	choice := ChoiceConfig{Options: []FieldOption{{ID: "o1", Label: "A", Value: "a"}}}

	assert.Equal(t, choice, ReshapeConfig(Dropdown, choice))
	assert.Nil(t, ReshapeConfig(ShortText, choice))
	assert.Equal(t, ScaleConfig{MinValue: 1, MaxValue: 5}, ReshapeConfig(Scale, choice))
	assert.Equal(t, ChoiceConfig{}, ReshapeConfig(Checkboxes, TextConfig{Placeholder: "x"}))
}

func TestConfigStorageRoundTrip(t *testing.T) {
	data, err := EncodeConfig(nil)
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = EncodeConfig(ScaleConfig{MinValue: 0, MaxValue: 3, MaxLabel: "Muito"})
	require.NoError(t, err)

	c, err := DecodeConfig("scale", data)
	require.NoError(t, err)
	assert.Equal(t, ScaleConfig{MinValue: 0, MaxValue: 3, MaxLabel: "Muito"}, c)

	c, err = DecodeConfig("NUMBER", data)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestAnswerValueJSON(t *testing.T) {
	var answers []FormAnswer
	require.NoError(t, json.Unmarshal([]byte(`[
		{"fieldId": "a", "value": "texto"},
		{"fieldId": "b", "value": ["x", "y"]},
		{"fieldId": "c", "value": 4},
		{"fieldId": "d", "value": null},
		{"fieldId": "e"}
	]`), &answers))

	assert.Equal(t, Text("texto"), answers[0].Value)
	assert.Equal(t, List("x", "y"), answers[1].Value)
	assert.Equal(t, Num(4), answers[2].Value)
	assert.True(t, answers[3].Value.IsZero())
	assert.True(t, answers[4].Value.IsZero())

	var v AnswerValue
	assert.Error(t, json.Unmarshal([]byte(`{"x": 1}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &v))

	out, err := json.Marshal(answers[1].Value)
	require.NoError(t, err)
	assert.JSONEq(t, `["x","y"]`, string(out))
}

func TestAnswerValueEmpty(t *testing.T) {
	assert.True(t, AnswerValue{}.Empty())
	assert.True(t, Text("  ").Empty())
	assert.True(t, List().Empty())
	assert.False(t, Num(0).Empty())
	assert.Equal(t, "a; b", List("a", "b").Join("; "))
	assert.Equal(t, "2.5", Num(2.5).String())
}

func TestVisibleTo(t *testing.T) {
	assert.True(t, Form{}.VisibleTo(DTI))
	assert.True(t, Form{AllowedDirectorates: []Directorate{AllDirectorates}}.VisibleTo(DPE))
	assert.True(t, Form{AllowedDirectorates: []Directorate{DPE, DTI}}.VisibleTo(DTI))
	assert.False(t, Form{AllowedDirectorates: []Directorate{DPE}}.VisibleTo(DTI))
}

func TestOrderedFields(t *testing.T) {
	form := FormWithDetails{
		Sections: []FormSection{{ID: "s2", Order: 0}, {ID: "s1", Order: 1}},
		Fields: []FormField{
			{ID: "a", SectionID: "s1"},
			{ID: "b", SectionID: "ghost"},
			{ID: "c"},
			{ID: "d", SectionID: "s2"},
			{ID: "e", SectionID: "s1"},
		},
	}

	var ids []string
	for _, f := range form.OrderedFields() {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"c", "d", "a", "e", "b"}, ids)
}

func TestSituationAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, OnTime, KeyResult{Deadline: "2025-06-15"}.SituationAt(now))
	assert.Equal(t, Late, KeyResult{Deadline: "2025-06-14", Status: InProgress}.SituationAt(now))
	assert.Equal(t, Finished, KeyResult{Deadline: "2025-06-14", Status: Done}.SituationAt(now))
	assert.Equal(t, OnTime, KeyResult{Deadline: ""}.SituationAt(now))
}

func TestStats(t *testing.T) {
	assert.Equal(t, OKRStats{}, Stats(nil))

	s := Stats([]KeyResult{{Status: Done}, {Status: InProgress}, {Status: NotStarted}})
	assert.Equal(t, OKRStats{Total: 3, Concluido: 1, EmAndamento: 1, AIniciar: 1, Progresso: 33}, s)

	s = Stats([]KeyResult{{Status: Done}, {Status: Done}, {Status: InProgress}})
	assert.Equal(t, 67, s.Progresso)
}

func TestSprintStatsOf(t *testing.T) {
	assert.Equal(t, SprintStats{}, SprintStatsOf(nil))

	rows := []ExecutionControl{
		{BacklogTasks: "levantar requisitos", SprintStatus: CurrentSprint, Progress: BoardDone},
		{BacklogTasks: "  ", SprintStatus: OutOfSprint, Progress: BoardDone},
		{BacklogTasks: "homologar", SprintStatus: OutOfSprint, Progress: BoardDoing},
		{BacklogTasks: "publicar", SprintStatus: Backlog, Progress: BoardToDo},
	}
	s := SprintStatsOf(rows)
	assert.Equal(t, SprintStats{Backlog: 3, EmFila: 2, Concluido: 2, SprintAtual: 1, Progresso: 67}, s)

	s = SprintStatsOf([]ExecutionControl{{SprintStatus: OutOfSprint, Progress: BoardDone}})
	assert.Equal(t, 0, s.Progresso, "no backlog means no progress")
}

func TestBoardStatsOf(t *testing.T) {
	s := BoardStatsOf([]ProgramInitiative{
		{BoardStatus: BoardToDo, Priority: Prioritized},
		{BoardStatus: BoardDoing, Priority: NotPrioritized},
		{BoardStatus: BoardDone, Priority: Prioritized},
		{BoardStatus: BoardDone, Priority: NotPrioritized},
	})
	assert.Equal(t, BoardStats{Total: 4, AFazer: 1, Fazendo: 1, Feito: 2, Priorizadas: 2}, s)
}
