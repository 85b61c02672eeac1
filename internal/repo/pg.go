package repo

import (
	"context"
	"errors"

	"github.com/idilsaglam/tada/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const todoColumns = `id, text, completed, created_by_id, created_at, updated_at`

type PGTodoRepo struct {
	db *pgxpool.Pool
}

func NewPGTodoRepo(db *pgxpool.Pool) *PGTodoRepo {
	return &PGTodoRepo{db: db}
}

func (r *PGTodoRepo) Create(ctx context.Context, owner, text string) (model.RemoteTodo, error) {
	query := `
		INSERT INTO todos (text, created_by_id)
		VALUES ($1, $2)
		RETURNING ` + todoColumns
	return scanPGTodo(r.db.QueryRow(ctx, query, text, owner))
}

func (r *PGTodoRepo) List(ctx context.Context, owner string) ([]model.RemoteTodo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos WHERE created_by_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []model.RemoteTodo{}
	for rows.Next() {
		t, err := scanPGTodo(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTodoRepo) Update(ctx context.Context, owner string, id int64, p model.Patch) (model.RemoteTodo, error) {
	query := `
		UPDATE todos SET
			text = COALESCE($3::text, text),
			completed = COALESCE($4::boolean, completed),
			updated_at = NOW()
		WHERE id = $1 AND created_by_id = $2
		RETURNING ` + todoColumns
	return scanPGTodo(r.db.QueryRow(ctx, query, id, owner, p.Text, p.Completed))
}

func (r *PGTodoRepo) Delete(ctx context.Context, owner string, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND created_by_id = $2`, id, owner)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

func scanPGTodo(row pgx.Row) (model.RemoteTodo, error) {
	var t model.RemoteTodo
	err := row.Scan(&t.ID, &t.Text, &t.Completed, &t.CreatedByID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.RemoteTodo{}, ErrNoRows
	}
	return t, err
}

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

func (r *PGUserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return scanPGUser(r.db.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`,
		username,
	))
}

func (r *PGUserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	return scanPGUser(r.db.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = $1`,
		id,
	))
}

func (r *PGUserRepo) Create(ctx context.Context, username, passwordHash string) (model.User, error) {
	query := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, password_hash, created_at`
	u, err := scanPGUser(r.db.QueryRow(ctx, query, username, passwordHash))
	if isPGUniqueViolation(err) {
		return model.User{}, ErrDuplicate
	}
	return u, err
}

func scanPGUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrNoRows
	}
	return u, err
}

// isPGUniqueViolation reports whether error is PostgreSQL unique constraint violation (code 23505).
func isPGUniqueViolation(err error) bool {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == "23505"
	}
	return false
}
