package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/sgjt/gestao-forms/model"
)

// ExecutionStore keeps the rows of the sprint execution table.
type ExecutionStore struct {
	db *sql.DB
}

func NewExecutionStore(db *sql.DB) *ExecutionStore {
	return &ExecutionStore{db: db}
}

func checkExecutionControl(c *model.ExecutionControl) error {
	if c.SprintStatus == "" {
		c.SprintStatus = model.Backlog
	}
	if c.Progress == "" {
		c.Progress = model.BoardToDo
	}
	if !c.SprintStatus.Valid() {
		return errors.Wrapf(ErrInvalid, "sprint status %q", c.SprintStatus)
	}
	if !c.Progress.Valid() {
		return errors.Wrapf(ErrInvalid, "progress %q", c.Progress)
	}
	return nil
}

func (s *ExecutionStore) Create(ctx context.Context, c model.ExecutionControl) (model.ExecutionControl, error) {
	if err := checkExecutionControl(&c); err != nil {
		return model.ExecutionControl{}, err
	}
	c.ID = newID()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO execution_control
			(id, plan_program, kr_project_initiative, backlog_tasks, sprint_status, sprint_tasks, progress, directorate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.PlanProgram, c.KRProjectInitiative, c.BacklogTasks, c.SprintStatus, c.SprintTasks, c.Progress, c.Directorate,
	)
	if err != nil {
		return model.ExecutionControl{}, errors.Wrap(err, "insert execution control")
	}
	return c, nil
}

func (s *ExecutionStore) Update(ctx context.Context, c model.ExecutionControl) (model.ExecutionControl, error) {
	if err := checkExecutionControl(&c); err != nil {
		return model.ExecutionControl{}, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE execution_control
		SET plan_program = ?, kr_project_initiative = ?, backlog_tasks = ?, sprint_status = ?,
			sprint_tasks = ?, progress = ?, directorate = ?
		WHERE id = ?`,
		c.PlanProgram, c.KRProjectInitiative, c.BacklogTasks, c.SprintStatus, c.SprintTasks, c.Progress, c.Directorate, c.ID,
	)
	if err != nil {
		return model.ExecutionControl{}, errors.Wrap(err, "update execution control")
	}
	return c, affectedOne(res)
}

func scanExecutionControl(rows *sql.Rows) (model.ExecutionControl, error) {
	c := model.ExecutionControl{}
	err := rows.Scan(&c.ID, &c.PlanProgram, &c.KRProjectInitiative, &c.BacklogTasks, &c.SprintStatus, &c.SprintTasks, &c.Progress, &c.Directorate)
	return c, errors.Wrap(err, "scan execution control")
}

const executionColumns = `id, plan_program, kr_project_initiative, backlog_tasks, sprint_status, sprint_tasks, progress, directorate`

func (s *ExecutionStore) Get(ctx context.Context, id string) (model.ExecutionControl, error) {
	rows, err := queryAll(ctx, s.db, scanExecutionControl, `SELECT `+executionColumns+` FROM execution_control WHERE id = ?`, id)
	if err != nil {
		return model.ExecutionControl{}, errors.Wrap(err, "select execution control")
	}
	if len(rows) == 0 {
		return model.ExecutionControl{}, ErrNotFound
	}
	return rows[0], nil
}

// List lists the rows of a directorate, or every row when directorate is
// empty, in insertion order.
func (s *ExecutionStore) List(ctx context.Context, directorate model.Directorate) ([]model.ExecutionControl, error) {
	rows, err := queryAll(ctx, s.db, scanExecutionControl, `
		SELECT `+executionColumns+` FROM execution_control
		WHERE ? = '' OR directorate = ?
		ORDER BY rowid`,
		directorate, directorate,
	)
	return rows, errors.Wrap(err, "select execution controls")
}

func (s *ExecutionStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM execution_control WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete execution control")
	}
	return affectedOne(res)
}
