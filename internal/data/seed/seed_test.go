package seed

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixture(t *testing.T) {
	assert.Len(t, Comments, 8)

	byBoris := 0
	for _, c := range Comments {
		if c.User == "boris" {
			byBoris++
		}
		assert.GreaterOrEqual(t, c.MovieID, int64(1))
		assert.LessOrEqual(t, c.MovieID, int64(len(Movies)))
	}
	assert.Equal(t, 3, byBoris)
}

func TestMigrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS movies`)).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS comments`)).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE INDEX IF NOT EXISTS comments_user_name_idx`)).
		WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))

	require.NoError(t, Migrate(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`TRUNCATE comments, movies RESTART IDENTITY CASCADE`)).
		WillReturnResult(pgxmock.NewResult("TRUNCATE TABLE", 0))
	for _, m := range Movies {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO movies (title)`)).
			WithArgs(m.Title).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	for _, c := range Comments {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO comments (movie_id, user_name, title, contents)`)).
			WithArgs(c.MovieID, c.User, c.Title, c.Contents).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	require.NoError(t, Run(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("permission denied")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`TRUNCATE`)).WillReturnError(boom)
	mock.ExpectRollback()

	err = Run(context.Background(), mock)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
