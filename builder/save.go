package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sgjt/gestao-forms/model"
	"github.com/sgjt/gestao-forms/store"
)

type Rule string

const (
	RuleTitle    Rule = "title"
	RuleLabel    Rule = "label"
	RuleOptions  Rule = "options"
	RuleAudience Rule = "audience"
)

// ValidationError is a builder rule the draft breaks. It blocks saving.
type ValidationError struct {
	Rule    Rule   `json:"rule"`
	FieldID string `json:"fieldId,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (d *Draft) violations(isAdmin bool) []*ValidationError {
	var found []*ValidationError

	if strings.TrimSpace(d.Title) == "" {
		found = append(found, &ValidationError{
			Rule:    RuleTitle,
			Message: "informe o título do formulário",
		})
	}

	if isAdmin && len(d.AllowedDirectorates) == 0 {
		found = append(found, &ValidationError{
			Rule:    RuleAudience,
			Message: `selecione pelo menos uma diretoria ou "Todas as diretorias"`,
		})
	}

	for _, f := range d.Fields {
		if strings.TrimSpace(f.Label) == "" {
			found = append(found, &ValidationError{
				Rule:    RuleLabel,
				FieldID: f.ID,
				Message: "todos os campos devem ter um rótulo",
			})
			continue
		}
		if f.Kind().NeedsOptions() && len(f.Options()) == 0 {
			found = append(found, &ValidationError{
				Rule:    RuleOptions,
				FieldID: f.ID,
				Message: fmt.Sprintf("o campo %q precisa ter pelo menos uma opção configurada", f.Label),
			})
		}
	}
	return found
}

// Problems lists every rule the draft breaks, nil if there is none.
func (d *Draft) Problems(isAdmin bool) error {
	var result *multierror.Error
	for _, v := range d.violations(isAdmin) {
		result = multierror.Append(result, v)
	}
	return result.ErrorOrNil()
}

// Validate returns the first rule the draft breaks as a *ValidationError.
func (d *Draft) Validate(isAdmin bool) error {
	if found := d.violations(isAdmin); len(found) > 0 {
		return found[0]
	}
	return nil
}

// Writer persists a draft in one transaction. *store.FormStore implements
// it.
type Writer interface {
	SaveDraft(ctx context.Context, d store.DraftWrite) (model.FormWithDetails, error)
}

// Save validates the draft and writes the form together with its whole
// structure. Nothing is written when validation or any part of the write
// fails. On success the draft holds the permanent ids.
//
// Only admins choose the audience. Forms created by anyone else are open to
// all directorates and keep their stored audience on later saves.
func (d *Draft) Save(ctx context.Context, w Writer, author model.User, publish bool) (model.FormWithDetails, error) {
	isAdmin := author.Role == model.RoleAdmin
	if err := d.Validate(isAdmin); err != nil {
		return model.FormWithDetails{}, err
	}

	title := strings.TrimSpace(d.Title)
	description := strings.TrimSpace(d.Description)

	write := store.DraftWrite{FormID: d.FormID, Sections: d.Sections, Fields: d.Fields}
	if d.FormID == "" {
		write.Form = model.Form{
			Title:               title,
			Description:         description,
			Status:              model.FormDraft,
			CreatedBy:           author.ID,
			Directorate:         author.Directorate,
			AllowedDirectorates: []model.Directorate{model.AllDirectorates},
		}
		if publish {
			write.Form.Status = model.FormPublished
		}
		if isAdmin {
			write.Form.AllowedDirectorates = d.AllowedDirectorates
		}
	} else {
		write.Patch = store.FormPatch{Title: &title, Description: &description}
		if publish {
			published := model.FormPublished
			write.Patch.Status = &published
		}
		if isAdmin {
			audience := d.AllowedDirectorates
			write.Patch.AllowedDirectorates = &audience
		}
	}

	saved, err := w.SaveDraft(ctx, write)
	if err != nil {
		return model.FormWithDetails{}, err
	}

	d.FormID = saved.ID
	d.Title = saved.Title
	d.Description = saved.Description
	d.Status = saved.Status
	d.AllowedDirectorates = saved.AllowedDirectorates
	d.Sections = saved.Sections
	d.Fields = saved.Fields
	return saved, nil
}
