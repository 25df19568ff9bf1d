package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/sgjt/gestao-forms/model"
)

type FormStore struct {
	db  *sql.DB
	now clock
}

func NewFormStore(db *sql.DB) *FormStore {
	return &FormStore{db: db, now: utcNow}
}

// ListOptions selects one of three mutually exclusive listing strategies.
type ListOptions struct {
	// AsAdmin lists every form regardless of directorate.
	AsAdmin bool
	// FilterByVisibility lists forms whose audience includes the directorate.
	// Otherwise only forms owned by the directorate are listed.
	FilterByVisibility bool
}

// FormPatch carries the fields of an update; nil fields are left untouched.
type FormPatch struct {
	Title               *string
	Description         *string
	Status              *model.FormStatus
	AllowedDirectorates *[]model.Directorate
}

// Structure is the full set of sections and fields of a form.
type Structure struct {
	Sections []model.FormSection `json:"sections"`
	Fields   []model.FormField   `json:"fields"`
}

const formColumns = `f.id, f.title, f.description, f.status, f.created_by, f.created_at, f.updated_at, f.directorate`

func scanForm(row interface{ Scan(...any) error }) (model.Form, error) {
	f := model.Form{}
	err := row.Scan(&f.ID, &f.Title, &f.Description, &f.Status, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt, &f.Directorate)
	return f, err
}

func (s *FormStore) Create(ctx context.Context, form model.Form) (created model.Form, err error) {
	err = inTx(ctx, s.db, func(tx *sql.Tx) error {
		created, err = createForm(ctx, tx, form, s.now())
		return err
	})
	return
}

func createForm(ctx context.Context, tx *sql.Tx, form model.Form, now time.Time) (model.Form, error) {
	form.ID = newID()
	form.CreatedAt = now
	form.UpdatedAt = now
	if form.Status == "" {
		form.Status = model.FormDraft
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO form (id, title, description, status, created_by, created_at, updated_at, directorate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		form.ID, form.Title, form.Description, form.Status, form.CreatedBy, form.CreatedAt, form.UpdatedAt, form.Directorate,
	)
	if err != nil {
		return model.Form{}, errors.Wrap(err, "insert form")
	}

	if err = replaceAudience(ctx, tx, form.ID, form.AllowedDirectorates); err != nil {
		return model.Form{}, err
	}
	return form, nil
}

func (s *FormStore) Get(ctx context.Context, id string) (model.Form, error) {
	return getForm(ctx, s.db, id)
}

func getForm(ctx context.Context, q querier, id string) (model.Form, error) {
	form, err := scanForm(q.QueryRowContext(ctx, `SELECT `+formColumns+` FROM form f WHERE f.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Form{}, ErrNotFound
	}
	if err != nil {
		return model.Form{}, errors.Wrap(err, "select form")
	}

	audiences, err := loadAudiences(ctx, q, []string{id})
	if err != nil {
		return model.Form{}, err
	}
	form.AllowedDirectorates = audiences[id]
	return form, nil
}

// Load returns the form with its sections and fields in display order and
// the number of submitted responses.
func (s *FormStore) Load(ctx context.Context, id string) (model.FormWithDetails, error) {
	form, err := s.Get(ctx, id)
	if err != nil {
		return model.FormWithDetails{}, err
	}

	details := model.FormWithDetails{Form: form}
	details.Sections, err = loadSections(ctx, s.db, id)
	if err != nil {
		return model.FormWithDetails{}, err
	}
	details.Fields, err = loadFields(ctx, s.db, id)
	if err != nil {
		return model.FormWithDetails{}, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM form_response
		WHERE form_id = ? AND status = ?`,
		id, model.ResponseSubmitted,
	).Scan(&details.ResponseCount)
	if err != nil {
		return model.FormWithDetails{}, errors.Wrap(err, "count responses")
	}

	return details, nil
}

func (s *FormStore) List(ctx context.Context, directorate model.Directorate, opts ListOptions) ([]model.Form, error) {
	query := `SELECT ` + formColumns + ` FROM form f`
	var args []any
	switch {
	case opts.AsAdmin:
	case opts.FilterByVisibility:
		query += `
			WHERE NOT EXISTS (SELECT 1 FROM form_audience a WHERE a.form_id = f.id)
				OR EXISTS (
					SELECT 1 FROM form_audience a
					WHERE a.form_id = f.id AND a.directorate IN (?, ?)
				)`
		args = append(args, model.AllDirectorates, directorate)
	default:
		query += ` WHERE f.directorate = ?`
		args = append(args, directorate)
	}
	query += ` ORDER BY f.created_at DESC, f.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select forms")
	}
	defer rows.Close()

	forms := []model.Form{}
	ids := []string{}
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan form")
		}
		forms = append(forms, f)
		ids = append(ids, f.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "select forms")
	}

	audiences, err := loadAudiences(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range forms {
		forms[i].AllowedDirectorates = audiences[forms[i].ID]
	}
	return forms, nil
}

func (s *FormStore) Update(ctx context.Context, id string, patch FormPatch) (updated model.Form, err error) {
	err = inTx(ctx, s.db, func(tx *sql.Tx) error {
		updated, err = updateForm(ctx, tx, id, patch, s.now())
		return err
	})
	return
}

func updateForm(ctx context.Context, tx *sql.Tx, id string, patch FormPatch, now time.Time) (model.Form, error) {
	form, err := getForm(ctx, tx, id)
	if err != nil {
		return model.Form{}, err
	}

	if patch.Title != nil {
		form.Title = *patch.Title
	}
	if patch.Description != nil {
		form.Description = *patch.Description
	}
	if patch.Status != nil {
		if err = checkTransition(form.Status, *patch.Status); err != nil {
			return model.Form{}, err
		}
		form.Status = *patch.Status
	}
	form.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		UPDATE form
		SET title = ?, description = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		form.Title, form.Description, form.Status, form.UpdatedAt, id,
	)
	if err != nil {
		return model.Form{}, errors.Wrap(err, "update form")
	}

	if patch.AllowedDirectorates != nil {
		form.AllowedDirectorates = *patch.AllowedDirectorates
		if err = replaceAudience(ctx, tx, id, form.AllowedDirectorates); err != nil {
			return model.Form{}, err
		}
	}
	return form, nil
}

// SetStatus moves a form between DRAFT and PUBLISHED, or archives it.
// Archived forms accept no further transitions.
func (s *FormStore) SetStatus(ctx context.Context, id string, status model.FormStatus) (model.Form, error) {
	return s.Update(ctx, id, FormPatch{Status: &status})
}

func checkTransition(from, to model.FormStatus) error {
	if !to.Valid() {
		return errors.Wrapf(ErrInvalid, "form status %q", to)
	}
	if from == model.FormArchived && to != model.FormArchived {
		return errors.Wrap(ErrConflict, "form is archived")
	}
	return nil
}

// Delete removes a form together with its sections, fields, responses and
// answers.
func (s *FormStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM form_answer WHERE response_id IN (SELECT id FROM form_response WHERE form_id = ?)`,
		`DELETE FROM form_response WHERE form_id = ?`,
		`DELETE FROM form_field WHERE form_id = ?`,
		`DELETE FROM form_section WHERE form_id = ?`,
		`DELETE FROM form_audience WHERE form_id = ?`,
	} {
		if _, err = tx.ExecContext(ctx, stmt, id); err != nil {
			return errors.Wrap(err, "delete form children")
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM form WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete form")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete form")
	}
	if n < 1 {
		return ErrNotFound
	}

	return errors.Wrap(tx.Commit(), "commit delete form")
}

// SaveStructure replaces every section and field of a form in one
// transaction. Temporary ids are swapped for permanent ones and fields
// referencing a temporary section id are rewired to the section's new id.
// A field pointing at a section missing from the payload is refused with
// ErrInvalid.
func (s *FormStore) SaveStructure(ctx context.Context, formID string, sections []model.FormSection, fields []model.FormField) (saved Structure, err error) {
	err = inTx(ctx, s.db, func(tx *sql.Tx) error {
		saved, err = saveStructure(ctx, tx, formID, sections, fields, s.now())
		return err
	})
	return
}

// DraftWrite is a form together with its whole structure. Without FormID a
// form is created from Form, otherwise the form FormID is patched with Patch.
type DraftWrite struct {
	FormID   string
	Form     model.Form
	Patch    FormPatch
	Sections []model.FormSection
	Fields   []model.FormField
}

// SaveDraft writes the form and its structure in a single transaction: when
// any part fails nothing is kept.
func (s *FormStore) SaveDraft(ctx context.Context, d DraftWrite) (saved model.FormWithDetails, err error) {
	err = inTx(ctx, s.db, func(tx *sql.Tx) error {
		now := s.now()
		if d.FormID == "" {
			saved.Form, err = createForm(ctx, tx, d.Form, now)
		} else {
			saved.Form, err = updateForm(ctx, tx, d.FormID, d.Patch, now)
		}
		if err != nil {
			return err
		}

		var structure Structure
		structure, err = saveStructure(ctx, tx, saved.Form.ID, d.Sections, d.Fields, now)
		if err != nil {
			return err
		}
		saved.Sections = structure.Sections
		saved.Fields = structure.Fields
		return nil
	})
	if err != nil {
		return model.FormWithDetails{}, err
	}
	return saved, nil
}

func saveStructure(ctx context.Context, tx *sql.Tx, formID string, sections []model.FormSection, fields []model.FormField, now time.Time) (Structure, error) {
	var exists bool
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM form WHERE id = ?`, formID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return Structure{}, ErrNotFound
	}
	if err != nil {
		return Structure{}, errors.Wrap(err, "select form")
	}

	// delete all fields and sections
	if _, err = tx.ExecContext(ctx, `DELETE FROM form_field WHERE form_id = ?`, formID); err != nil {
		return Structure{}, errors.Wrap(err, "delete fields")
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM form_section WHERE form_id = ?`, formID); err != nil {
		return Structure{}, errors.Wrap(err, "delete sections")
	}

	saved := Structure{
		Sections: make([]model.FormSection, 0, len(sections)),
		Fields:   make([]model.FormField, 0, len(fields)),
	}

	sectionIDs := make(map[string]string, len(sections))
	for i, section := range sections {
		oldID := section.ID
		if IsTemporary(section.ID) {
			section.ID = newID()
		}
		if oldID != "" {
			sectionIDs[oldID] = section.ID
		}
		sectionIDs[section.ID] = section.ID
		section.FormID = formID

		_, err = tx.ExecContext(ctx, `
			INSERT INTO form_section (id, form_id, title, description, ord, position)
			VALUES (?, ?, ?, ?, ?, ?)`,
			section.ID, formID, section.Title, section.Description, section.Order, i,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return Structure{}, errors.Wrapf(ErrConflict, "section id %s already in use", section.ID)
			}
			return Structure{}, errors.Wrap(err, "insert section")
		}
		saved.Sections = append(saved.Sections, section)
	}

	for i, field := range fields {
		if field.SectionID != "" {
			sectionID, ok := sectionIDs[field.SectionID]
			if !ok {
				return Structure{}, errors.Wrapf(ErrInvalid, "field %q refers to unknown section %s", field.Label, field.SectionID)
			}
			field.SectionID = sectionID
		}
		if IsTemporary(field.ID) {
			field.ID = newID()
		}
		field.FormID = formID

		config, err := model.EncodeConfig(field.Config)
		if err != nil {
			return Structure{}, errors.Wrap(err, "encode field config")
		}
		var sectionID sql.NullString
		if field.SectionID != "" {
			sectionID = sql.NullString{String: field.SectionID, Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO form_field (id, form_id, section_id, type, label, help_text, required, ord, position, config)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			field.ID, formID, sectionID, field.Type, field.Label, field.HelpText, field.Required, field.Order, i, nullBytes(config),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return Structure{}, errors.Wrapf(ErrConflict, "field id %s already in use", field.ID)
			}
			return Structure{}, errors.Wrap(err, "insert field")
		}
		saved.Fields = append(saved.Fields, field)
	}

	if err = touchForm(ctx, tx, formID, now); err != nil {
		return Structure{}, err
	}
	return saved, nil
}

func nullBytes(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

func loadSections(ctx context.Context, q querier, formID string) ([]model.FormSection, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, form_id, title, description, ord
		FROM form_section
		WHERE form_id = ?
		ORDER BY ord, position`,
		formID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select sections")
	}
	defer rows.Close()

	sections := []model.FormSection{}
	for rows.Next() {
		s := model.FormSection{}
		if err = rows.Scan(&s.ID, &s.FormID, &s.Title, &s.Description, &s.Order); err != nil {
			return nil, errors.Wrap(err, "scan section")
		}
		sections = append(sections, s)
	}
	return sections, errors.Wrap(rows.Err(), "select sections")
}

func loadFields(ctx context.Context, q querier, formID string) ([]model.FormField, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, form_id, section_id, type, label, help_text, required, ord, config
		FROM form_field
		WHERE form_id = ?
		ORDER BY ord, position`,
		formID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select fields")
	}
	defer rows.Close()

	fields := []model.FormField{}
	for rows.Next() {
		f := model.FormField{}
		var sectionID, config sql.NullString
		err = rows.Scan(&f.ID, &f.FormID, &sectionID, &f.Type, &f.Label, &f.HelpText, &f.Required, &f.Order, &config)
		if err != nil {
			return nil, errors.Wrap(err, "scan field")
		}
		f.SectionID = sectionID.String
		f.Config, err = model.DecodeConfig(f.Type, []byte(config.String))
		if err != nil {
			return nil, errors.Wrapf(err, "decode config of field %s", f.ID)
		}
		fields = append(fields, f)
	}
	return fields, errors.Wrap(rows.Err(), "select fields")
}

func replaceAudience(ctx context.Context, tx *sql.Tx, formID string, audience []model.Directorate) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM form_audience WHERE form_id = ?`, formID)
	if err != nil {
		return errors.Wrap(err, "delete audience")
	}
	seen := map[model.Directorate]bool{}
	for _, d := range audience {
		if seen[d] {
			continue
		}
		seen[d] = true
		_, err = tx.ExecContext(ctx, `INSERT INTO form_audience (form_id, directorate) VALUES (?, ?)`, formID, d)
		if err != nil {
			return errors.Wrap(err, "insert audience")
		}
	}
	return nil
}

func loadAudiences(ctx context.Context, q querier, formIDs []string) (map[string][]model.Directorate, error) {
	audiences := map[string][]model.Directorate{}
	if len(formIDs) == 0 {
		return audiences, nil
	}

	rows, err := q.QueryContext(ctx, `
		SELECT form_id, directorate
		FROM form_audience
		WHERE form_id IN (`+placeholders(len(formIDs))+`)
		ORDER BY rowid`,
		stringArgs(formIDs)...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select audience")
	}
	defer rows.Close()

	for rows.Next() {
		var formID string
		var d model.Directorate
		if err = rows.Scan(&formID, &d); err != nil {
			return nil, errors.Wrap(err, "scan audience")
		}
		audiences[formID] = append(audiences[formID], d)
	}
	return audiences, errors.Wrap(rows.Err(), "select audience")
}

func touchForm(ctx context.Context, q querier, id string, at time.Time) error {
	_, err := q.ExecContext(ctx, `UPDATE form SET updated_at = ? WHERE id = ?`, at, id)
	return errors.Wrap(err, "touch form")
}
