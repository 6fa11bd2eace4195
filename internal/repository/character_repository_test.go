package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MfFischer/game-of-thrones-api/internal/models"
)

var characterRowColumns = []string{"id", "name", "house", "age", "role", "created_at", "updated_at"}

// newMock returns a sqlx handle that rebinds like PostgreSQL.
func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "postgres")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestCharacterRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCharacterRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO characters (name, house, age, role, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id")).
		WithArgs("Jon Snow", "Stark", 17, "Steward", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	created, err := repo.Create(context.Background(), jon)
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, jon, created.Draft())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCharacterRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCharacterRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, house, age, role, created_at, updated_at FROM characters WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(characterRowColumns))

	_, err := repo.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCharacterRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCharacterRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(characterRowColumns).
		AddRow(1, "Jon Snow", "Stark", 17, "Steward", now, now).
		AddRow(2, "Daenerys Targaryen", "Targaryen", 24, "Queen", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, house, age, role, created_at, updated_at FROM characters ORDER BY id")).
		WillReturnRows(rows)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Daenerys Targaryen", list[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCharacterRepositoryListStorageFault(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCharacterRepository(db)

	fault := errors.New("connection reset")
	mock.ExpectQuery("SELECT .* FROM characters").WillReturnError(fault)

	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, fault)
}

func TestCharacterRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCharacterRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE characters SET name = $1, house = $2, age = $3, role = $4, updated_at = $5 WHERE id = $6")).
		WithArgs("Jon Snow", "Stark", 17, "Steward", sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM characters WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(characterRowColumns).AddRow(1, "Jon Snow", "Stark", 17, "Steward", now, now))
	mock.ExpectCommit()

	updated, err := repo.Update(context.Background(), 1, jon)
	require.NoError(t, err)
	assert.Equal(t, jon, updated.Draft())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCharacterRepositoryUpdateMissingRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCharacterRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE characters").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), 5, jon)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCharacterRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCharacterRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM characters WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM characters WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.ErrorIs(t, repo.Delete(context.Background(), 3), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCharacterRepositoryCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCharacterRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM characters")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, total)
}
