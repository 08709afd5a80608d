package repository

import (
	"context"
	"fmt"

	"movie-comments/pkg/database"

	"go.uber.org/zap"
)

type MovieRepository interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type movieRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewMovieRepository(db database.PgxIface, log *zap.Logger) MovieRepository {
	return &movieRepository{
		db:  db,
		log: log.With(zap.String("repository", "movie")),
	}
}

func (r *movieRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		r.log.Error("Failed to check movie existence",
			zap.Error(err),
			zap.Int64("movie_id", id),
		)
		return false, fmt.Errorf("check movie %d exists: %w", id, err)
	}

	return exists, nil
}
