package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sgjt/gestao-forms/model"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCredentials = errors.New("bad credentials")
	ErrInactive       = errors.New("user inactive")
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// UserPatch carries the fields of an update; nil fields are left untouched.
type UserPatch struct {
	Name        *string
	Email       *string
	Role        *model.Role
	Status      *model.UserStatus
	Directorate *model.Directorate
	Password    *string
}

const userColumns = `id, name, email, role, status, directorate`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	u := model.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.Directorate)
	return u, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserStore) Create(ctx context.Context, u model.User) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, errors.Wrap(err, "hash password")
	}

	u.ID = newID()
	u.Email = normalizeEmail(u.Email)
	u.Password = ""
	if u.Status == "" {
		u.Status = model.UserActive
	}
	if u.Role == "" {
		u.Role = model.RoleViewer
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user (id, name, email, password_hash, role, status, directorate)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, hash, u.Role, u.Status, u.Directorate,
	)
	if isUniqueViolation(err) {
		return model.User{}, errors.Wrapf(ErrConflict, "e-mail %s already registered", u.Email)
	}
	return u, errors.Wrap(err, "insert user")
}

func (s *UserStore) Get(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM user WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, errors.Wrap(err, "select user")
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM user WHERE email = ?`, normalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, errors.Wrap(err, "select user")
}

func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM user ORDER BY name, email`)
	if err != nil {
		return nil, errors.Wrap(err, "select users")
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan user")
		}
		users = append(users, u)
	}
	return users, errors.Wrap(rows.Err(), "select users")
}

func (s *UserStore) Count(ctx context.Context) (n int, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user`).Scan(&n)
	return n, errors.Wrap(err, "count users")
}

func (s *UserStore) Update(ctx context.Context, id string, patch UserPatch) (model.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = normalizeEmail(*patch.Email)
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.Status != nil {
		u.Status = *patch.Status
	}
	if patch.Directorate != nil {
		u.Directorate = *patch.Directorate
	}

	query := `UPDATE user SET name = ?, email = ?, role = ?, status = ?, directorate = ?`
	args := []any{u.Name, u.Email, u.Role, u.Status, u.Directorate}
	if patch.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return model.User{}, errors.Wrap(err, "hash password")
		}
		query += `, password_hash = ?`
		args = append(args, hash)
	}
	query += ` WHERE id = ?`
	args = append(args, id)

	_, err = s.db.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return model.User{}, errors.Wrapf(ErrConflict, "e-mail %s already registered", u.Email)
	}
	return u, errors.Wrap(err, "update user")
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM user WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete user")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete user")
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}

// Authenticate checks an e-mail and password pair. Unknown e-mails and wrong
// passwords both yield ErrBadCredentials.
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	var hash []byte
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM user WHERE email = ?`, normalizeEmail(email)).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrBadCredentials
	}
	if err != nil {
		return model.User{}, errors.Wrap(err, "select password")
	}

	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return model.User{}, ErrBadCredentials
	}

	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return model.User{}, err
	}
	if u.Status != model.UserActive {
		return model.User{}, ErrInactive
	}
	return u, nil
}

// StoreToken remembers an issued refresh token pair.
func (s *UserStore) StoreToken(ctx context.Context, username, tokenID, refreshTokenID string, expiration time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO token (username, token_id, refresh_token_id, expiration)
		VALUES (?, ?, ?, ?)`,
		username, tokenID, refreshTokenID, expiration,
	)
	return errors.Wrap(err, "insert token")
}

// ConsumeToken deletes a stored token pair, failing when it is unknown or
// expired. A refresh token can therefore only be used once.
func (s *UserStore) ConsumeToken(ctx context.Context, username, tokenID, refreshTokenID string, now time.Time) error {
	var expiration time.Time
	err := s.db.QueryRowContext(ctx, `
		DELETE FROM token
		WHERE username = ?
			AND token_id = ?
			AND refresh_token_id = ?
		RETURNING expiration`,
		username, tokenID, refreshTokenID,
	).Scan(&expiration)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "delete token")
	}
	if expiration.Before(now) {
		return errors.Wrap(ErrNotFound, "token expired")
	}
	return nil
}
