// Package store persists forms, their structure, responses, users, OKRs and
// the planning boards in SQLite. Stores never log: every failure is returned
// to the caller, either as one of the sentinel errors below or wrapped with
// context.
package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
)

// TempPrefix marks client minted ids of entities not persisted yet.
const TempPrefix = "temp-"

// IsTemporary reports whether id is a placeholder that the store must replace
// with a permanent id. An empty id counts as temporary.
func IsTemporary(id string) bool {
	return id == "" || strings.HasPrefix(id, TempPrefix)
}

func newID() string {
	return uuid.Must(uuid.NewV4()).String()
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// inTx runs fn in a transaction that is committed only when fn succeeds.
func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	if err = fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}

type clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// Stores bundles every store over a single database.
type Stores struct {
	Forms       *FormStore
	Responses   *ResponseStore
	Users       *UserStore
	OKRs        *OKRStore
	Initiatives *InitiativeStore
	Execution   *ExecutionStore
}

func New(db *sql.DB) Stores {
	return Stores{
		Forms:       NewFormStore(db),
		Responses:   NewResponseStore(db),
		Users:       NewUserStore(db),
		OKRs:        NewOKRStore(db),
		Initiatives: NewInitiativeStore(db),
		Execution:   NewExecutionStore(db),
	}
}
