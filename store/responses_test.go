package store

import (
	"context"
	"testing"

	"github.com/sgjt/gestao-forms/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitTwiceConflicts(t *testing.T) {
	db := setupTestDB(t)
	forms := NewFormStore(db)
	s := NewResponseStore(db)
	ctx := context.Background()
	form := createTestForm(t, forms, "Uma vez", model.DTI)
	ana := Respondent{UserID: "u1", UserName: "Ana"}

	resp, err := s.Submit(ctx, form.ID, ana, []model.FormAnswer{{FieldID: "f1", Value: model.Text("Ana")}})
	require.NoError(t, err)
	assert.Equal(t, model.ResponseSubmitted, resp.Status)
	require.NotNil(t, resp.SubmittedAt)

	_, err = s.Submit(ctx, form.ID, ana, []model.FormAnswer{{FieldID: "f1", Value: model.Text("Outra")}})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = s.SaveDraft(ctx, form.ID, ana, nil)
	assert.ErrorIs(t, err, ErrConflict)

	stored, err := s.Get(ctx, resp.ID)
	require.NoError(t, err)
	require.Len(t, stored.Answers, 1)
	assert.Equal(t, "Ana", stored.Answers[0].Value.TextValue())
}

func TestDraftThenSubmit(t *testing.T) {
	db := setupTestDB(t)
	forms := NewFormStore(db)
	s := NewResponseStore(db)
	ctx := context.Background()
	form := createTestForm(t, forms, "Rascunho", model.DTI)
	bia := Respondent{UserID: "u2", UserName: "Bia"}

	draft, err := s.SaveDraft(ctx, form.ID, bia, []model.FormAnswer{{FieldID: "f1", Value: model.Text("primeira")}})
	require.NoError(t, err)
	assert.Equal(t, model.ResponseDraft, draft.Status)
	assert.Nil(t, draft.SubmittedAt)

	again, err := s.SaveDraft(ctx, form.ID, bia, []model.FormAnswer{
		{FieldID: "f1", Value: model.Text("segunda")},
		{FieldID: "f2", Value: model.List("a", "b")},
	})
	require.NoError(t, err)
	assert.Equal(t, draft.ID, again.ID)

	submitted, err := s.Submit(ctx, form.ID, bia, []model.FormAnswer{
		{FieldID: "f1", Value: model.Text("final")},
		{FieldID: "f3", Value: model.Num(4)},
	})
	require.NoError(t, err)
	assert.Equal(t, draft.ID, submitted.ID)
	assert.Equal(t, model.ResponseSubmitted, submitted.Status)

	all, err := s.ListByForm(ctx, form.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Len(t, all[0].Answers, 2)
	assert.Equal(t, "final", all[0].Answers[0].Value.TextValue())
	assert.Equal(t, 4.0, all[0].Answers[1].Value.NumberValue())

	details, err := forms.Load(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, details.ResponseCount)
}

func TestSubmitUnknownForm(t *testing.T) {
	s := NewResponseStore(setupTestDB(t))

	_, err := s.Submit(context.Background(), "missing", Respondent{UserID: "u1"}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitSkipsUnsetValues(t *testing.T) {
	db := setupTestDB(t)
	form := createTestForm(t, NewFormStore(db), "Vazio", model.DTI)
	s := NewResponseStore(db)

	resp, err := s.Submit(context.Background(), form.ID, Respondent{UserID: "u1"}, []model.FormAnswer{
		{FieldID: "f1"},
		{FieldID: "f2", Value: model.List()},
	})
	require.NoError(t, err)

	stored, err := s.Get(context.Background(), resp.ID)
	require.NoError(t, err)
	require.Len(t, stored.Answers, 1)
	assert.Equal(t, "f2", stored.Answers[0].FieldID)
	assert.True(t, stored.Answers[0].Value.IsList())
}

func TestListByUser(t *testing.T) {
	db := setupTestDB(t)
	forms := NewFormStore(db)
	s := NewResponseStore(db)
	ctx := context.Background()

	dti := createTestForm(t, forms, "DTI", model.DTI)
	dpe := createTestForm(t, forms, "DPE", model.DPE)
	ana := Respondent{UserID: "u1", UserName: "Ana"}

	_, err := s.Submit(ctx, dti.ID, ana, nil)
	require.NoError(t, err)
	_, err = s.SaveDraft(ctx, dpe.ID, ana, nil)
	require.NoError(t, err)
	_, err = s.Submit(ctx, dpe.ID, Respondent{UserID: "u2", UserName: "Bia"}, nil)
	require.NoError(t, err)

	all, err := s.ListByUser(ctx, "u1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := s.ListByUser(ctx, "u1", model.DPE)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, dpe.ID, scoped[0].FormID)
	assert.Equal(t, model.ResponseDraft, scoped[0].Status)
}

func TestGetResponseNotFound(t *testing.T) {
	s := NewResponseStore(setupTestDB(t))

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
