package builder

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sgjt/gestao-forms/model"
	"github.com/sgjt/gestao-forms/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Writer that remembers every step of a write and mints ids
// the way the form store does. With fail set the structure step fails and
// nothing is committed.
type recorder struct {
	calls     []string
	created   model.Form
	patch     store.FormPatch
	committed []model.FormWithDetails
	fail      error
	n         int
}

func (r *recorder) SaveDraft(_ context.Context, d store.DraftWrite) (model.FormWithDetails, error) {
	var form model.Form
	if d.FormID == "" {
		r.calls = append(r.calls, "create")
		form = d.Form
		form.ID = "form-1"
		r.created = form
	} else {
		r.calls = append(r.calls, "update")
		r.patch = d.Patch
		form = model.Form{ID: d.FormID, Title: *d.Patch.Title, Status: model.FormDraft}
		if d.Patch.Status != nil {
			form.Status = *d.Patch.Status
		}
	}

	r.calls = append(r.calls, "structure")
	if r.fail != nil {
		return model.FormWithDetails{}, r.fail
	}

	ids := map[string]string{}
	out := model.FormWithDetails{Form: form}
	for _, s := range d.Sections {
		if store.IsTemporary(s.ID) {
			r.n++
			ids[s.ID] = fmt.Sprintf("sec-%d", r.n)
			s.ID = ids[s.ID]
		}
		s.FormID = form.ID
		out.Sections = append(out.Sections, s)
	}
	for _, f := range d.Fields {
		if id, ok := ids[f.SectionID]; ok {
			f.SectionID = id
		}
		if store.IsTemporary(f.ID) {
			r.n++
			f.ID = fmt.Sprintf("field-%d", r.n)
		}
		f.FormID = form.ID
		out.Fields = append(out.Fields, f)
	}
	r.committed = append(r.committed, out)
	return out, nil
}

var (
	manager = model.User{ID: "u1", Role: model.RoleManager, Directorate: model.DTI}
	admin   = model.User{ID: "u2", Role: model.RoleAdmin, Directorate: model.SGJT}
)

func TestSectionAndFieldEditing(t *testing.T) {
	d := New()

	s := d.AddSection()
	assert.True(t, strings.HasPrefix(s.ID, store.TempPrefix))
	assert.Equal(t, "Seção 1", s.Title)

	f1, err := d.AddField(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Novo campo", f1.Label)
	assert.Equal(t, string(model.ShortText), f1.Type)

	f2, err := d.AddField(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f2.Order)
	assert.NotEqual(t, f1.ID, f2.ID)

	loose, err := d.AddField("")
	require.NoError(t, err)
	assert.Equal(t, 0, loose.Order)

	_, err = d.AddField("temp-missing")
	assert.ErrorIs(t, err, ErrUnknownSection)

	dup, err := d.DuplicateField(f1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Novo campo (cópia)", dup.Label)
	assert.Equal(t, s.ID, dup.SectionID)
	assert.Equal(t, 2, dup.Order)

	require.NoError(t, d.DeleteField(f2.ID))
	got, _ := d.Field(dup.ID)
	assert.Equal(t, 1, got.Order)

	require.NoError(t, d.DeleteSection(s.ID))
	assert.Empty(t, d.Sections)
	require.Len(t, d.Fields, 1)
	assert.Equal(t, loose.ID, d.Fields[0].ID)

	assert.ErrorIs(t, d.DeleteSection(s.ID), ErrUnknownSection)
	assert.ErrorIs(t, d.DeleteField("nope"), ErrUnknownField)
}

func TestOptions(t *testing.T) {
	d := New()
	f, err := d.AddField("")
	require.NoError(t, err)

	_, err = d.AddOption(f.ID)
	assert.ErrorIs(t, err, ErrNotChoice)

	require.NoError(t, d.ChangeType(f.ID, model.MultipleChoice))
	o1, err := d.AddOption(f.ID)
	require.NoError(t, err)
	assert.Equal(t, "Opção 1", o1.Label)
	assert.Equal(t, "option_1", o1.Value)

	o2, err := d.AddOption(f.ID)
	require.NoError(t, err)
	assert.Equal(t, "option_2", o2.Value)

	o1, err = d.UpdateOption(f.ID, o1.ID, "Muito Satisfeito")
	require.NoError(t, err)
	assert.Equal(t, "muito_satisfeito", o1.Value)

	require.NoError(t, d.DeleteOption(f.ID, o2.ID))
	assert.ErrorIs(t, d.DeleteOption(f.ID, o2.ID), ErrUnknownOption)

	got, _ := d.Field(f.ID)
	require.Len(t, got.Options(), 1)
	assert.Equal(t, "Muito Satisfeito", got.Options()[0].Label)
}

func TestChangeTypeDropsStaleConfig(t *testing.T) {
	d := New()
	f, _ := d.AddField("")
	require.NoError(t, d.ChangeType(f.ID, model.Checkboxes))
	_, err := d.AddOption(f.ID)
	require.NoError(t, err)

	require.NoError(t, d.ChangeType(f.ID, model.Dropdown))
	got, _ := d.Field(f.ID)
	assert.Len(t, got.Options(), 1)

	require.NoError(t, d.ChangeType(f.ID, model.ShortText))
	got, _ = d.Field(f.ID)
	assert.Nil(t, got.Config)

	require.NoError(t, d.ChangeType(f.ID, model.Scale))
	got, _ = d.Field(f.ID)
	assert.Equal(t, model.ScaleConfig{MinValue: 1, MaxValue: 5}, got.Config)
}

func TestDuplicateDoesNotShareOptions(t *testing.T) {
	d := New()
	f, _ := d.AddField("")
	require.NoError(t, d.ChangeType(f.ID, model.Checkboxes))
	o, _ := d.AddOption(f.ID)

	dup, err := d.DuplicateField(f.ID)
	require.NoError(t, err)
	_, err = d.UpdateOption(dup.ID, o.ID, "Outra")
	require.NoError(t, err)

	orig, _ := d.Field(f.ID)
	assert.Equal(t, "Opção 1", orig.Options()[0].Label)
}

func TestValidate(t *testing.T) {
	d := New()
	err := d.Validate(false)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, RuleTitle, ve.Rule)

	d.Title = "Pesquisa"
	require.NoError(t, d.Validate(false))

	err = d.Validate(true)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, RuleAudience, ve.Rule)
	d.AllowedDirectorates = []model.Directorate{model.AllDirectorates}

	f, _ := d.AddField("")
	require.NoError(t, d.UpdateField(model.FormField{ID: f.ID, Type: "SHORT_TEXT", Label: "  "}))
	err = d.Validate(true)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, RuleLabel, ve.Rule)
	assert.Equal(t, f.ID, ve.FieldID)
}

func TestProblemsListsEveryViolation(t *testing.T) {
	d := New()
	f1, _ := d.AddField("")
	require.NoError(t, d.UpdateField(model.FormField{ID: f1.ID, Type: "SHORT_TEXT"}))
	f2, _ := d.AddField("")
	require.NoError(t, d.ChangeType(f2.ID, model.Dropdown))

	err := d.Problems(true)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 4)

	d.Title = "ok"
	d.AllowedDirectorates = []model.Directorate{model.DTI}
	d.Fields = nil
	assert.NoError(t, d.Problems(true))
}

func TestSaveWithoutOptionsMakesNoStoreCall(t *testing.T) {
	d := New()
	d.Title = "Satisfação"
	f, _ := d.AddField("")
	require.NoError(t, d.ChangeType(f.ID, model.MultipleChoice))

	w := &recorder{}
	_, err := d.Save(context.Background(), w, manager, true)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, RuleOptions, ve.Rule)
	assert.Empty(t, w.calls)
}

func TestFailedSaveKeepsDraftUnsaved(t *testing.T) {
	d := New()
	d.Title = "Pesquisa"
	d.AllowedDirectorates = []model.Directorate{model.AllDirectorates}
	s := d.AddSection()
	f, _ := d.AddField(s.ID)

	w := &recorder{fail: errors.Wrap(store.ErrConflict, "field id dup already in use")}
	_, err := d.Save(context.Background(), w, admin, true)
	require.ErrorIs(t, err, store.ErrConflict)

	assert.Equal(t, []string{"create", "structure"}, w.calls)
	assert.Empty(t, w.committed)
	assert.Empty(t, d.FormID)
	assert.Equal(t, model.FormDraft, d.Status)
	assert.Equal(t, s.ID, d.Sections[0].ID)
	assert.Equal(t, f.ID, d.Fields[0].ID)
}

func TestSaveCreatesAndRemapsIDs(t *testing.T) {
	d := New()
	d.Title = " Cadastro "
	d.AllowedDirectorates = []model.Directorate{model.DPE}
	s := d.AddSection()
	require.NoError(t, d.UpdateSection(s.ID, "Dados", ""))
	f, _ := d.AddField(s.ID)

	w := &recorder{}
	form, err := d.Save(context.Background(), w, manager, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"create", "structure"}, w.calls)
	assert.Equal(t, "Cadastro", w.created.Title)
	assert.Equal(t, model.FormDraft, w.created.Status)
	assert.Equal(t, "u1", w.created.CreatedBy)
	assert.Equal(t, model.DTI, w.created.Directorate)
	assert.Equal(t, []model.Directorate{model.AllDirectorates}, w.created.AllowedDirectorates)

	require.Len(t, form.Sections, 1)
	require.Len(t, form.Fields, 1)
	assert.NotEqual(t, s.ID, form.Sections[0].ID)
	assert.NotEqual(t, f.ID, form.Fields[0].ID)
	assert.Equal(t, form.Sections[0].ID, form.Fields[0].SectionID)

	assert.Equal(t, "form-1", d.FormID)
	assert.Equal(t, form.Fields[0].ID, d.Fields[0].ID)
}

func TestSaveExistingForm(t *testing.T) {
	d := FromForm(model.FormWithDetails{Form: model.Form{ID: "f9", Title: "Antigo", Status: model.FormDraft}})
	d.Title = "Novo"

	w := &recorder{}
	_, err := d.Save(context.Background(), w, manager, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"update", "structure"}, w.calls)
	assert.Nil(t, w.patch.AllowedDirectorates)
	require.NotNil(t, w.patch.Status)
	assert.Equal(t, model.FormPublished, *w.patch.Status)
	assert.Equal(t, model.FormPublished, d.Status)

	d.AllowedDirectorates = []model.Directorate{model.DTI, model.DPE}
	w = &recorder{}
	_, err = d.Save(context.Background(), w, admin, false)
	require.NoError(t, err)
	require.NotNil(t, w.patch.AllowedDirectorates)
	assert.Equal(t, []model.Directorate{model.DTI, model.DPE}, *w.patch.AllowedDirectorates)
	assert.Nil(t, w.patch.Status)
}
