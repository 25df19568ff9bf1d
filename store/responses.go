package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/sgjt/gestao-forms/model"
)

type ResponseStore struct {
	db  *sql.DB
	now clock
}

func NewResponseStore(db *sql.DB) *ResponseStore {
	return &ResponseStore{db: db, now: utcNow}
}

// Respondent identifies who is answering a form.
type Respondent struct {
	UserID   string
	UserName string
}

// Submit stores the respondent's answers as a submitted response, replacing
// the answers of an existing draft. A respondent submits a form only once:
// a second submission fails with ErrConflict.
func (s *ResponseStore) Submit(ctx context.Context, formID string, who Respondent, answers []model.FormAnswer) (model.FormResponse, error) {
	return s.save(ctx, formID, who, answers, model.ResponseSubmitted)
}

// SaveDraft stores the respondent's answers as a draft. Repeated calls update
// the same draft. Drafts of an already submitted response are refused with
// ErrConflict.
func (s *ResponseStore) SaveDraft(ctx context.Context, formID string, who Respondent, answers []model.FormAnswer) (model.FormResponse, error) {
	return s.save(ctx, formID, who, answers, model.ResponseDraft)
}

func (s *ResponseStore) save(ctx context.Context, formID string, who Respondent, answers []model.FormAnswer, status model.ResponseStatus) (model.FormResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.FormResponse{}, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM form WHERE id = ?`, formID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FormResponse{}, ErrNotFound
	}
	if err != nil {
		return model.FormResponse{}, errors.Wrap(err, "select form")
	}

	now := s.now()
	resp, err := scanResponse(tx.QueryRowContext(ctx, `
		SELECT `+responseColumns+`
		FROM form_response r
		WHERE r.form_id = ? AND r.user_id = ?`,
		formID, who.UserID,
	))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		resp = model.FormResponse{
			ID:        newID(),
			FormID:    formID,
			UserID:    who.UserID,
			UserName:  who.UserName,
			CreatedAt: now,
		}
	case err != nil:
		return model.FormResponse{}, errors.Wrap(err, "select response")
	case resp.Status == model.ResponseSubmitted:
		return model.FormResponse{}, errors.Wrap(ErrConflict, "form already answered")
	}

	resp.Status = status
	resp.UserName = who.UserName
	resp.UpdatedAt = now
	if status == model.ResponseSubmitted {
		resp.SubmittedAt = &now
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO form_response (id, form_id, user_id, user_name, status, submitted_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			user_name = excluded.user_name,
			status = excluded.status,
			submitted_at = excluded.submitted_at,
			updated_at = excluded.updated_at`,
		resp.ID, resp.FormID, resp.UserID, resp.UserName, resp.Status, resp.SubmittedAt, resp.CreatedAt, resp.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// a concurrent request created the response first
			return model.FormResponse{}, errors.Wrap(ErrConflict, "response already exists")
		}
		return model.FormResponse{}, errors.Wrap(err, "upsert response")
	}

	if err = replaceAnswers(ctx, tx, resp.ID, answers); err != nil {
		return model.FormResponse{}, err
	}

	return resp, errors.Wrap(tx.Commit(), "commit response")
}

func replaceAnswers(ctx context.Context, tx *sql.Tx, responseID string, answers []model.FormAnswer) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM form_answer WHERE response_id = ?`, responseID)
	if err != nil {
		return errors.Wrap(err, "delete answers")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO form_answer (id, response_id, field_id, value, position)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare answers")
	}
	defer stmt.Close()

	for i, a := range answers {
		if a.Value.IsZero() {
			continue
		}
		value, err := json.Marshal(a.Value)
		if err != nil {
			return errors.Wrapf(err, "encode answer to %s", a.FieldID)
		}
		_, err = stmt.ExecContext(ctx, newID(), responseID, a.FieldID, string(value), i)
		if err != nil {
			return errors.Wrap(err, "insert answer")
		}
	}
	return nil
}

const responseColumns = `r.id, r.form_id, r.user_id, r.user_name, r.status, r.submitted_at, r.created_at, r.updated_at`

func scanResponse(row interface{ Scan(...any) error }) (model.FormResponse, error) {
	r := model.FormResponse{}
	var submittedAt sql.NullTime
	err := row.Scan(&r.ID, &r.FormID, &r.UserID, &r.UserName, &r.Status, &submittedAt, &r.CreatedAt, &r.UpdatedAt)
	if submittedAt.Valid {
		r.SubmittedAt = &submittedAt.Time
	}
	return r, err
}

// Get returns one response with its answers.
func (s *ResponseStore) Get(ctx context.Context, id string) (model.ResponseWithAnswers, error) {
	responses, err := s.list(ctx, `WHERE r.id = ?`, id)
	if err != nil {
		return model.ResponseWithAnswers{}, err
	}
	if len(responses) == 0 {
		return model.ResponseWithAnswers{}, ErrNotFound
	}
	return responses[0], nil
}

// ListByForm returns drafts and submitted responses of a form.
func (s *ResponseStore) ListByForm(ctx context.Context, formID string) ([]model.ResponseWithAnswers, error) {
	return s.list(ctx, `WHERE r.form_id = ?`, formID)
}

// ListByUser returns the responses of a user, optionally restricted to forms
// owned by directorate.
func (s *ResponseStore) ListByUser(ctx context.Context, userID string, directorate model.Directorate) ([]model.ResponseWithAnswers, error) {
	if directorate == "" {
		return s.list(ctx, `WHERE r.user_id = ?`, userID)
	}
	return s.list(ctx, `
		JOIN form f ON (f.id = r.form_id)
		WHERE r.user_id = ? AND f.directorate = ?`,
		userID, directorate,
	)
}

func (s *ResponseStore) list(ctx context.Context, where string, args ...any) ([]model.ResponseWithAnswers, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+responseColumns+`
		FROM form_response r
		`+where+`
		ORDER BY r.created_at, r.id`,
		args...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select responses")
	}
	defer rows.Close()

	responses := []model.ResponseWithAnswers{}
	index := map[string]int{}
	ids := []string{}
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan response")
		}
		index[r.ID] = len(responses)
		ids = append(ids, r.ID)
		responses = append(responses, model.ResponseWithAnswers{FormResponse: r, Answers: []model.FormAnswer{}})
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "select responses")
	}
	if len(ids) == 0 {
		return responses, nil
	}

	answerRows, err := s.db.QueryContext(ctx, `
		SELECT id, response_id, field_id, value
		FROM form_answer
		WHERE response_id IN (`+placeholders(len(ids))+`)
		ORDER BY response_id, position`,
		stringArgs(ids)...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select answers")
	}
	defer answerRows.Close()

	for answerRows.Next() {
		a := model.FormAnswer{}
		var value string
		if err = answerRows.Scan(&a.ID, &a.ResponseID, &a.FieldID, &value); err != nil {
			return nil, errors.Wrap(err, "scan answer")
		}
		if err = json.Unmarshal([]byte(value), &a.Value); err != nil {
			return nil, errors.Wrapf(err, "decode answer %s", a.ID)
		}
		i := index[a.ResponseID]
		responses[i].Answers = append(responses[i].Answers, a)
	}
	return responses, errors.Wrap(answerRows.Err(), "select answers")
}
