package repository

import (
	"context"
	"errors"
	"fmt"

	"movie-comments/internal/data/entity"
	"movie-comments/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CommentRepository interface {
	FindAll(ctx context.Context) ([]*entity.Comment, error)
	FindByUser(ctx context.Context, user string) ([]*entity.Comment, error)
	FindByID(ctx context.Context, id int64) (*entity.Comment, error)
	Create(ctx context.Context, comment *entity.Comment) error
	Update(ctx context.Context, comment *entity.Comment) error
	Delete(ctx context.Context, id int64) error
}

const commentColumns = `id, movie_id, user_name, title, contents, created_at, updated_at`

type commentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCommentRepository(db database.PgxIface, log *zap.Logger) CommentRepository {
	return &commentRepository{
		db:  db,
		log: log.With(zap.String("repository", "comment")),
	}
}

func (r *commentRepository) FindAll(ctx context.Context) ([]*entity.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find all comments", zap.Error(err))
		return nil, fmt.Errorf("find all comments: %w", err)
	}
	defer rows.Close()

	comments, err := scanComments(rows)
	if err != nil {
		r.log.Error("Failed to scan comment rows", zap.Error(err))
		return nil, err
	}

	r.log.Debug("Comments found", zap.Int("count", len(comments)))
	return comments, nil
}

func (r *commentRepository) FindByUser(ctx context.Context, user string) ([]*entity.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE user_name = $1 ORDER BY id`

	rows, err := r.db.Query(ctx, query, user)
	if err != nil {
		r.log.Error("Failed to find comments by user",
			zap.Error(err),
			zap.String("user", user),
		)
		return nil, fmt.Errorf("find comments by user %q: %w", user, err)
	}
	defer rows.Close()

	comments, err := scanComments(rows)
	if err != nil {
		r.log.Error("Failed to scan comment rows", zap.Error(err), zap.String("user", user))
		return nil, err
	}

	return comments, nil
}

func (r *commentRepository) FindByID(ctx context.Context, id int64) (*entity.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	comment, err := scanComment(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find comment by ID",
			zap.Error(err),
			zap.Int64("comment_id", id),
		)
		return nil, fmt.Errorf("find comment %d: %w", id, err)
	}

	return comment, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	query := `
		INSERT INTO comments (movie_id, user_name, title, contents)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		comment.MovieID,
		comment.User,
		comment.Title,
		comment.Contents,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)

	if isForeignKeyViolation(err) {
		return fmt.Errorf("create comment for movie %d: %w", comment.MovieID, ErrMissingReference)
	}
	if err != nil {
		r.log.Error("Failed to create comment",
			zap.Error(err),
			zap.Int64("movie_id", comment.MovieID),
			zap.String("user", comment.User),
		)
		return fmt.Errorf("create comment for movie %d by %q: %w", comment.MovieID, comment.User, err)
	}

	return nil
}

func (r *commentRepository) Update(ctx context.Context, comment *entity.Comment) error {
	query := `
		UPDATE comments
		SET movie_id = $2, user_name = $3, title = $4, contents = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		comment.ID,
		comment.MovieID,
		comment.User,
		comment.Title,
		comment.Contents,
	).Scan(&comment.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("update comment %d: %w", comment.ID, ErrNotFound)
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("update comment %d to movie %d: %w", comment.ID, comment.MovieID, ErrMissingReference)
	}
	if err != nil {
		r.log.Error("Failed to update comment",
			zap.Error(err),
			zap.Int64("comment_id", comment.ID),
		)
		return fmt.Errorf("update comment %d: %w", comment.ID, err)
	}

	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM comments WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete comment",
			zap.Error(err),
			zap.Int64("comment_id", id),
		)
		return fmt.Errorf("delete comment %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete comment %d: %w", id, ErrNotFound)
	}

	r.log.Info("Comment deleted", zap.Int64("comment_id", id))
	return nil
}

func scanComment(row pgx.Row) (*entity.Comment, error) {
	var c entity.Comment
	err := row.Scan(
		&c.ID,
		&c.MovieID,
		&c.User,
		&c.Title,
		&c.Contents,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanComments(rows pgx.Rows) ([]*entity.Comment, error) {
	comments := make([]*entity.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment row: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comment rows: %w", err)
	}

	return comments, nil
}
