package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github.com/sgjt/gestao-forms/model"
)

// InitiativeStore keeps the kanban boards: initiatives under key results and
// structuring programs with their own initiatives.
type InitiativeStore struct {
	db *sql.DB
}

func NewInitiativeStore(db *sql.DB) *InitiativeStore {
	return &InitiativeStore{db: db}
}

// rowExists reports whether table has a row with id.
func rowExists(ctx context.Context, q querier, table, id string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT count(*) FROM `+table+` WHERE id = ?`, id).Scan(&n)
	return n > 0, errors.Wrapf(err, "select %s", table)
}

// queryAll runs query and scans every row with scan.
func queryAll[T any](ctx context.Context, q querier, scan func(*sql.Rows) (T, error), query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *InitiativeStore) checkInitiative(ctx context.Context, i *model.Initiative) error {
	if strings.TrimSpace(i.Title) == "" {
		return errors.Wrap(ErrInvalid, "initiative title is required")
	}
	if i.BoardStatus == "" {
		i.BoardStatus = model.BoardToDo
	}
	if i.Location == "" {
		i.Location = model.Backlog
	}
	if !i.BoardStatus.Valid() {
		return errors.Wrapf(ErrInvalid, "board status %q", i.BoardStatus)
	}
	if !i.Location.Valid() {
		return errors.Wrapf(ErrInvalid, "location %q", i.Location)
	}
	ok, err := rowExists(ctx, s.db, "key_result", i.KeyResultID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrInvalid, "unknown key result %s", i.KeyResultID)
	}
	return nil
}

func (s *InitiativeStore) CreateInitiative(ctx context.Context, i model.Initiative) (model.Initiative, error) {
	if err := s.checkInitiative(ctx, &i); err != nil {
		return model.Initiative{}, err
	}
	i.ID = newID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO initiative (id, key_result_id, title, description, board_status, location, sprint_id, directorate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.KeyResultID, i.Title, i.Description, i.BoardStatus, i.Location, i.SprintID, i.Directorate,
	)
	if err != nil {
		return model.Initiative{}, errors.Wrap(err, "insert initiative")
	}
	return i, nil
}

func (s *InitiativeStore) UpdateInitiative(ctx context.Context, i model.Initiative) (model.Initiative, error) {
	if err := s.checkInitiative(ctx, &i); err != nil {
		return model.Initiative{}, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE initiative
		SET key_result_id = ?, title = ?, description = ?, board_status = ?, location = ?, sprint_id = ?, directorate = ?
		WHERE id = ?`,
		i.KeyResultID, i.Title, i.Description, i.BoardStatus, i.Location, i.SprintID, i.Directorate, i.ID,
	)
	if err != nil {
		return model.Initiative{}, errors.Wrap(err, "update initiative")
	}
	return i, affectedOne(res)
}

const initiativeColumns = `id, key_result_id, title, description, board_status, location, sprint_id, directorate`

func scanInitiative(rows *sql.Rows) (model.Initiative, error) {
	i := model.Initiative{}
	err := rows.Scan(&i.ID, &i.KeyResultID, &i.Title, &i.Description, &i.BoardStatus, &i.Location, &i.SprintID, &i.Directorate)
	return i, errors.Wrap(err, "scan initiative")
}

func (s *InitiativeStore) GetInitiative(ctx context.Context, id string) (model.Initiative, error) {
	items, err := queryAll(ctx, s.db, scanInitiative, `SELECT `+initiativeColumns+` FROM initiative WHERE id = ?`, id)
	if err != nil {
		return model.Initiative{}, errors.Wrap(err, "select initiative")
	}
	if len(items) == 0 {
		return model.Initiative{}, ErrNotFound
	}
	return items[0], nil
}

// ListInitiatives lists initiatives of a directorate, optionally only those
// under keyResultID. Empty filters match everything.
func (s *InitiativeStore) ListInitiatives(ctx context.Context, directorate model.Directorate, keyResultID string) ([]model.Initiative, error) {
	items, err := queryAll(ctx, s.db, scanInitiative, `
		SELECT `+initiativeColumns+` FROM initiative
		WHERE (? = '' OR directorate = ?) AND (? = '' OR key_result_id = ?)
		ORDER BY rowid`,
		directorate, directorate, keyResultID, keyResultID,
	)
	return items, errors.Wrap(err, "select initiatives")
}

func (s *InitiativeStore) DeleteInitiative(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM initiative WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete initiative")
	}
	return affectedOne(res)
}

func (s *InitiativeStore) CreateProgram(ctx context.Context, p model.Program) (model.Program, error) {
	if strings.TrimSpace(p.Name) == "" {
		return model.Program{}, errors.Wrap(ErrInvalid, "program name is required")
	}
	p.ID = newID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO program (id, name, description, directorate) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Directorate,
	)
	return p, errors.Wrap(err, "insert program")
}

func (s *InitiativeStore) UpdateProgram(ctx context.Context, p model.Program) (model.Program, error) {
	if strings.TrimSpace(p.Name) == "" {
		return model.Program{}, errors.Wrap(ErrInvalid, "program name is required")
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE program SET name = ?, description = ?, directorate = ? WHERE id = ?`,
		p.Name, p.Description, p.Directorate, p.ID,
	)
	if err != nil {
		return model.Program{}, errors.Wrap(err, "update program")
	}
	return p, affectedOne(res)
}

func scanProgram(rows *sql.Rows) (model.Program, error) {
	p := model.Program{}
	err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Directorate)
	return p, errors.Wrap(err, "scan program")
}

func (s *InitiativeStore) GetProgram(ctx context.Context, id string) (model.Program, error) {
	items, err := queryAll(ctx, s.db, scanProgram, `SELECT id, name, description, directorate FROM program WHERE id = ?`, id)
	if err != nil {
		return model.Program{}, errors.Wrap(err, "select program")
	}
	if len(items) == 0 {
		return model.Program{}, ErrNotFound
	}
	return items[0], nil
}

func (s *InitiativeStore) ListPrograms(ctx context.Context, directorate model.Directorate) ([]model.Program, error) {
	items, err := queryAll(ctx, s.db, scanProgram, `
		SELECT id, name, description, directorate FROM program
		WHERE ? = '' OR directorate = ?
		ORDER BY name`,
		directorate, directorate,
	)
	return items, errors.Wrap(err, "select programs")
}

// DeleteProgram removes a program and its initiatives.
func (s *InitiativeStore) DeleteProgram(ctx context.Context, id string) error {
	return inTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM program_initiative WHERE program_id = ?`, id); err != nil {
			return errors.Wrap(err, "delete program initiatives")
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM program WHERE id = ?`, id)
		if err != nil {
			return errors.Wrap(err, "delete program")
		}
		return affectedOne(res)
	})
}

func (s *InitiativeStore) checkProgramInitiative(ctx context.Context, i *model.ProgramInitiative) error {
	if strings.TrimSpace(i.Title) == "" {
		return errors.Wrap(ErrInvalid, "initiative title is required")
	}
	if i.BoardStatus == "" {
		i.BoardStatus = model.BoardToDo
	}
	if i.Priority == "" {
		i.Priority = model.NotPrioritized
	}
	if !i.BoardStatus.Valid() {
		return errors.Wrapf(ErrInvalid, "board status %q", i.BoardStatus)
	}
	if !i.Priority.Valid() {
		return errors.Wrapf(ErrInvalid, "priority %q", i.Priority)
	}
	ok, err := rowExists(ctx, s.db, "program", i.ProgramID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrInvalid, "unknown program %s", i.ProgramID)
	}
	return nil
}

func (s *InitiativeStore) CreateProgramInitiative(ctx context.Context, i model.ProgramInitiative) (model.ProgramInitiative, error) {
	if err := s.checkProgramInitiative(ctx, &i); err != nil {
		return model.ProgramInitiative{}, err
	}
	i.ID = newID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO program_initiative (id, program_id, title, description, board_status, priority, directorate)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.ProgramID, i.Title, i.Description, i.BoardStatus, i.Priority, i.Directorate,
	)
	if err != nil {
		return model.ProgramInitiative{}, errors.Wrap(err, "insert program initiative")
	}
	return i, nil
}

func (s *InitiativeStore) UpdateProgramInitiative(ctx context.Context, i model.ProgramInitiative) (model.ProgramInitiative, error) {
	if err := s.checkProgramInitiative(ctx, &i); err != nil {
		return model.ProgramInitiative{}, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE program_initiative
		SET program_id = ?, title = ?, description = ?, board_status = ?, priority = ?, directorate = ?
		WHERE id = ?`,
		i.ProgramID, i.Title, i.Description, i.BoardStatus, i.Priority, i.Directorate, i.ID,
	)
	if err != nil {
		return model.ProgramInitiative{}, errors.Wrap(err, "update program initiative")
	}
	return i, affectedOne(res)
}

const programInitiativeColumns = `id, program_id, title, description, board_status, priority, directorate`

func scanProgramInitiative(rows *sql.Rows) (model.ProgramInitiative, error) {
	i := model.ProgramInitiative{}
	err := rows.Scan(&i.ID, &i.ProgramID, &i.Title, &i.Description, &i.BoardStatus, &i.Priority, &i.Directorate)
	return i, errors.Wrap(err, "scan program initiative")
}

func (s *InitiativeStore) GetProgramInitiative(ctx context.Context, id string) (model.ProgramInitiative, error) {
	items, err := queryAll(ctx, s.db, scanProgramInitiative, `SELECT `+programInitiativeColumns+` FROM program_initiative WHERE id = ?`, id)
	if err != nil {
		return model.ProgramInitiative{}, errors.Wrap(err, "select program initiative")
	}
	if len(items) == 0 {
		return model.ProgramInitiative{}, ErrNotFound
	}
	return items[0], nil
}

// BoardFilter narrows program initiatives. Zero fields match everything.
type BoardFilter struct {
	Directorate model.Directorate
	ProgramID   string
	Priority    model.Priority
}

func (s *InitiativeStore) ListProgramInitiatives(ctx context.Context, f BoardFilter) ([]model.ProgramInitiative, error) {
	items, err := queryAll(ctx, s.db, scanProgramInitiative, `
		SELECT `+programInitiativeColumns+` FROM program_initiative
		WHERE (? = '' OR directorate = ?) AND (? = '' OR program_id = ?) AND (? = '' OR priority = ?)
		ORDER BY rowid`,
		f.Directorate, f.Directorate, f.ProgramID, f.ProgramID, f.Priority, f.Priority,
	)
	return items, errors.Wrap(err, "select program initiatives")
}

func (s *InitiativeStore) DeleteProgramInitiative(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM program_initiative WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete program initiative")
	}
	return affectedOne(res)
}
