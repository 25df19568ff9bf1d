package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/sgjt/gestao-forms/model"
)

// OKRStore keeps objectives and their key results. Key result situations
// are derived from status and deadline on every read.
type OKRStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewOKRStore(db *sql.DB) *OKRStore {
	return &OKRStore{db: db, now: time.Now}
}

func (s *OKRStore) CreateObjective(ctx context.Context, o model.Objective) (model.Objective, error) {
	o.ID = newID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO objective (id, code, title, description, directorate)
		VALUES (?, ?, ?, ?, ?)`,
		o.ID, o.Code, o.Title, o.Description, o.Directorate,
	)
	return o, errors.Wrap(err, "insert objective")
}

func (s *OKRStore) UpdateObjective(ctx context.Context, o model.Objective) (model.Objective, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE objective SET code = ?, title = ?, description = ?, directorate = ?
		WHERE id = ?`,
		o.Code, o.Title, o.Description, o.Directorate, o.ID,
	)
	if err != nil {
		return model.Objective{}, errors.Wrap(err, "update objective")
	}
	return o, affectedOne(res)
}

func (s *OKRStore) GetObjective(ctx context.Context, id string) (model.Objective, error) {
	o := model.Objective{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, code, title, description, directorate
		FROM objective WHERE id = ?`,
		id,
	).Scan(&o.ID, &o.Code, &o.Title, &o.Description, &o.Directorate)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Objective{}, ErrNotFound
	}
	return o, errors.Wrap(err, "select objective")
}

// ListObjectives lists objectives of a directorate, or all of them when
// directorate is empty.
func (s *OKRStore) ListObjectives(ctx context.Context, directorate model.Directorate) ([]model.Objective, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, title, description, directorate
		FROM objective
		WHERE ? = '' OR directorate = ?
		ORDER BY code`,
		directorate, directorate,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select objectives")
	}
	defer rows.Close()

	objectives := []model.Objective{}
	for rows.Next() {
		o := model.Objective{}
		if err = rows.Scan(&o.ID, &o.Code, &o.Title, &o.Description, &o.Directorate); err != nil {
			return nil, errors.Wrap(err, "scan objective")
		}
		objectives = append(objectives, o)
	}
	return objectives, errors.Wrap(rows.Err(), "select objectives")
}

// DeleteObjective removes an objective and its key results.
func (s *OKRStore) DeleteObjective(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM key_result WHERE objective_id = ?`, id); err != nil {
		return errors.Wrap(err, "delete key results")
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM objective WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete objective")
	}
	if err = affectedOne(res); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit delete objective")
}

func (s *OKRStore) CreateKeyResult(ctx context.Context, kr model.KeyResult) (model.KeyResult, error) {
	if err := s.checkKeyResult(ctx, kr); err != nil {
		return model.KeyResult{}, err
	}
	kr.ID = newID()
	if kr.Status == "" {
		kr.Status = model.NotStarted
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO key_result (id, objective_id, code, description, status, deadline, directorate)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		kr.ID, kr.ObjectiveID, kr.Code, kr.Description, kr.Status, kr.Deadline, kr.Directorate,
	)
	if err != nil {
		return model.KeyResult{}, errors.Wrap(err, "insert key result")
	}
	kr.Situation = kr.SituationAt(s.now())
	return kr, nil
}

func (s *OKRStore) UpdateKeyResult(ctx context.Context, kr model.KeyResult) (model.KeyResult, error) {
	if err := s.checkKeyResult(ctx, kr); err != nil {
		return model.KeyResult{}, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE key_result
		SET objective_id = ?, code = ?, description = ?, status = ?, deadline = ?, directorate = ?
		WHERE id = ?`,
		kr.ObjectiveID, kr.Code, kr.Description, kr.Status, kr.Deadline, kr.Directorate, kr.ID,
	)
	if err != nil {
		return model.KeyResult{}, errors.Wrap(err, "update key result")
	}
	if err = affectedOne(res); err != nil {
		return model.KeyResult{}, err
	}
	kr.Situation = kr.SituationAt(s.now())
	return kr, nil
}

func (s *OKRStore) checkKeyResult(ctx context.Context, kr model.KeyResult) error {
	if kr.Status != "" && !kr.Status.Valid() {
		return errors.Wrapf(ErrInvalid, "key result status %q", kr.Status)
	}
	if _, err := time.Parse(model.DateLayout, kr.Deadline); err != nil {
		return errors.Wrapf(ErrInvalid, "deadline %q is not a YYYY-MM-DD date", kr.Deadline)
	}
	if _, err := s.GetObjective(ctx, kr.ObjectiveID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return errors.Wrapf(ErrInvalid, "unknown objective %s", kr.ObjectiveID)
		}
		return err
	}
	return nil
}

func (s *OKRStore) GetKeyResult(ctx context.Context, id string) (model.KeyResult, error) {
	krs, err := s.listKeyResults(ctx, `WHERE id = ?`, id)
	if err != nil {
		return model.KeyResult{}, err
	}
	if len(krs) == 0 {
		return model.KeyResult{}, ErrNotFound
	}
	return krs[0], nil
}

// ListKeyResults lists key results of a directorate, or all of them when
// directorate is empty.
func (s *OKRStore) ListKeyResults(ctx context.Context, directorate model.Directorate) ([]model.KeyResult, error) {
	return s.listKeyResults(ctx, `WHERE ? = '' OR directorate = ?`, directorate, directorate)
}

func (s *OKRStore) listKeyResults(ctx context.Context, where string, args ...any) ([]model.KeyResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, objective_id, code, description, status, deadline, directorate
		FROM key_result
		`+where+`
		ORDER BY code`,
		args...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select key results")
	}
	defer rows.Close()

	now := s.now()
	krs := []model.KeyResult{}
	for rows.Next() {
		kr := model.KeyResult{}
		err = rows.Scan(&kr.ID, &kr.ObjectiveID, &kr.Code, &kr.Description, &kr.Status, &kr.Deadline, &kr.Directorate)
		if err != nil {
			return nil, errors.Wrap(err, "scan key result")
		}
		kr.Situation = kr.SituationAt(now)
		krs = append(krs, kr)
	}
	return krs, errors.Wrap(rows.Err(), "select key results")
}

func (s *OKRStore) DeleteKeyResult(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM key_result WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete key result")
	}
	return affectedOne(res)
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}
