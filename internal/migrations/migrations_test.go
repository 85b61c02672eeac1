package migrations_test

import (
	"database/sql"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/migrations"
)

func TestUpSQLite(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:"+t.TempDir()+"/m.db")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, migrations.Up(db, migrations.SQLite))
	// idempotent
	require.NoError(t, migrations.Up(db, migrations.SQLite))

	v, err := migrations.Version(db, migrations.SQLite)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)

	_, err = db.Exec(`INSERT INTO todos (text, created_by_id, created_at, updated_at) VALUES ('  ', 'u', 'x', 'x')`)
	assert.Error(t, err, "blank text violates the check constraint")
}

func TestUnknownDialect(t *testing.T) {
	assert.Error(t, migrations.Up(nil, "mysql"))
}
