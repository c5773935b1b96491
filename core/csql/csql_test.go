package csql

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	query := "UPDATE drink SET title=$1, recipe=$2 WHERE id=$3;"

	pg := &DB{Driver: DriverPostgres, Schema: "coffeeshop"}
	assert.Equal(t, query, pg.Rebind(query))

	lite := &DB{Driver: DriverSQLite}
	assert.Equal(t, "UPDATE drink SET title=?, recipe=? WHERE id=?;", lite.Rebind(query))
}

func TestTable(t *testing.T) {
	pg := &DB{Driver: DriverPostgres, Schema: "coffeeshop"}
	assert.Equal(t, `coffeeshop."drink"`, pg.Table("drink"))

	lite := &DB{Driver: DriverSQLite}
	assert.Equal(t, `"drink"`, lite.Table("drink"))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "", "", "")
	assert.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "unique.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE thing (id ` + db.SerialPrimaryKey() + `, name TEXT NOT NULL UNIQUE);`)
	require.NoError(t, err)
	_, err = db.Exec(db.Rebind(`INSERT INTO thing (name) VALUES ($1);`), "latte")
	require.NoError(t, err)
	_, err = db.Exec(db.Rebind(`INSERT INTO thing (name) VALUES ($1);`), "latte")
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestDropTables(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "drop.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE thing (id INTEGER);`)
	require.NoError(t, err)
	require.NoError(t, db.DropTables("thing", "does_not_exist"))

	_, err = db.Exec(`SELECT id FROM thing;`)
	assert.Error(t, err)
}
