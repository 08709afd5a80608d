package repository

import (
	"errors"

	"movie-comments/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned by writes that matched no row.
	ErrNotFound = errors.New("record not found")

	// ErrMissingReference is returned when a write names a movie that does not exist.
	ErrMissingReference = errors.New("referenced record does not exist")
)

// foreignKeyViolation is the SQLSTATE for foreign_key_violation.
const foreignKeyViolation = "23503"

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

type Repository struct {
	Movie   MovieRepository
	Comment CommentRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Movie:   NewMovieRepository(db, log),
		Comment: NewCommentRepository(db, log),
	}
}
