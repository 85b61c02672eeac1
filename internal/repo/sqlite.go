package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ncruces/go-sqlite3"

	"github.com/idilsaglam/tada/internal/model"
)

// Fixed-width UTC layout so TEXT ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteTodoRepo implements TodoRepo on database/sql with the ncruces driver.
type SQLiteTodoRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteTodoRepo(db *sql.DB) *SQLiteTodoRepo {
	return &SQLiteTodoRepo{db: db, now: time.Now}
}

// WithClock replaces time.Now, for tests.
func (r *SQLiteTodoRepo) WithClock(now func() time.Time) *SQLiteTodoRepo {
	r.now = now
	return r
}

func (r *SQLiteTodoRepo) Create(ctx context.Context, owner, text string) (model.RemoteTodo, error) {
	ts := formatTime(r.now())
	query := `
		INSERT INTO todos (text, completed, created_by_id, created_at, updated_at)
		VALUES (?, 0, ?, ?, ?)
		RETURNING ` + todoColumns
	return scanSQLiteTodo(r.db.QueryRowContext(ctx, query, text, owner, ts, ts))
}

func (r *SQLiteTodoRepo) List(ctx context.Context, owner string) ([]model.RemoteTodo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos WHERE created_by_id = ?
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []model.RemoteTodo{}
	for rows.Next() {
		t, err := scanSQLiteTodo(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *SQLiteTodoRepo) Update(ctx context.Context, owner string, id int64, p model.Patch) (model.RemoteTodo, error) {
	query := `
		UPDATE todos SET
			text = COALESCE(?, text),
			completed = COALESCE(?, completed),
			updated_at = ?
		WHERE id = ? AND created_by_id = ?
		RETURNING ` + todoColumns
	return scanSQLiteTodo(r.db.QueryRowContext(ctx, query, nullable(p.Text), nullable(p.Completed), formatTime(r.now()), id, owner))
}

func (r *SQLiteTodoRepo) Delete(ctx context.Context, owner string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ? AND created_by_id = ?`, id, owner)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoRows
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTodo(row scanner) (model.RemoteTodo, error) {
	var (
		t                model.RemoteTodo
		created, updated string
	)
	err := row.Scan(&t.ID, &t.Text, &t.Completed, &t.CreatedByID, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RemoteTodo{}, ErrNoRows
	}
	if err != nil {
		return model.RemoteTodo{}, err
	}
	if t.CreatedAt, err = parseTime(created); err != nil {
		return model.RemoteTodo{}, err
	}
	if t.UpdatedAt, err = parseTime(updated); err != nil {
		return model.RemoteTodo{}, err
	}
	return t, nil
}

// SQLiteUserRepo implements UserRepo with SQLite.
type SQLiteUserRepo struct {
	db *sql.DB
}

func NewSQLiteUserRepo(db *sql.DB) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: db}
}

func (r *SQLiteUserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return scanSQLiteUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username))
}

func (r *SQLiteUserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	return scanSQLiteUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (r *SQLiteUserRepo) Create(ctx context.Context, username, passwordHash string) (model.User, error) {
	query := `
		INSERT INTO users (username, password_hash, created_at)
		VALUES (?, ?, ?)
		RETURNING id, username, password_hash, created_at`
	u, err := scanSQLiteUser(r.db.QueryRowContext(ctx, query, username, passwordHash, formatTime(time.Now())))
	if isSQLiteUniqueViolation(err) {
		return model.User{}, ErrDuplicate
	}
	return u, err
}

func scanSQLiteUser(row scanner) (model.User, error) {
	var (
		u       model.User
		created string
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNoRows
	}
	if err != nil {
		return model.User{}, err
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return model.User{}, err
	}
	return u, nil
}

func isSQLiteUniqueViolation(err error) bool {
	var serr *sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode() == sqlite3.CONSTRAINT_UNIQUE
	}
	return false
}

// nullable unwraps a pointer argument; the driver binds only plain values.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
