package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRepo_GetBlock_AbsentCreatesSchemaOnce(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCursorRepo(db)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS ingest_state").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT value FROM ingest_state").
		WithArgs("last_block").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	mock.ExpectQuery("SELECT value FROM ingest_state").
		WithArgs("last_log_block").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("1200"))

	_, ok, err := repo.GetBlock(context.Background(), "last_block")
	require.NoError(t, err)
	assert.False(t, ok)

	block, ok, err := repo.GetBlock(context.Background(), "last_log_block")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1200), block)
}

func TestCursorRepo_GetBlock_Malformed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCursorRepo(db)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS ingest_state").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT value FROM ingest_state").
		WithArgs("last_block").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("not-a-number"))

	_, _, err := repo.GetBlock(context.Background(), "last_block")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse cursor last_block")
}

func TestCursorRepo_AdvanceTx_GuardsAgainstRegression(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCursorRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS ingest_state").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`WHERE ingest_state.value::BIGINT < EXCLUDED.value::BIGINT`).
		WithArgs("last_block", "42").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.AdvanceTx(context.Background(), tx, "last_block", 42))
	require.NoError(t, tx.Commit())
}

func TestCursorRepo_SchemaRetriedAfterFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCursorRepo(db)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS ingest_state").
		WillReturnError(assert.AnError)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS ingest_state").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO ingest_state").
		WithArgs("current_rpc", "https://rpc.example").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.Error(t, repo.Set(context.Background(), "current_rpc", "https://rpc.example"))
	require.NoError(t, repo.Set(context.Background(), "current_rpc", "https://rpc.example"))
}
