package usecase

import (
	"context"
	"errors"
	"fmt"

	"movie-comments/internal/data/entity"
	"movie-comments/internal/data/repository"
	"movie-comments/internal/dto/request"
	"movie-comments/internal/dto/response"
	"movie-comments/pkg/cache"

	"go.uber.org/zap"
)

type CommentService interface {
	GetAll(ctx context.Context) ([]response.CommentResponse, error)
	GetByUser(ctx context.Context, user string) ([]response.CommentResponse, error)
	CheckMovieExists(ctx context.Context, movieID int64) error
	Store(ctx context.Context, req *request.StoreCommentRequest) (*response.CommentResponse, error)
	Update(ctx context.Context, id int64, req *request.UpdateCommentRequest) (*response.CommentResponse, error)
	Delete(ctx context.Context, id int64) error
}

type commentService struct {
	comments repository.CommentRepository
	movies   repository.MovieRepository
	cache    cache.CommentCache
	log      *zap.Logger
}

func NewCommentService(
	comments repository.CommentRepository,
	movies repository.MovieRepository,
	listCache cache.CommentCache,
	log *zap.Logger,
) CommentService {
	return &commentService{
		comments: comments,
		movies:   movies,
		cache:    listCache,
		log:      log.With(zap.String("service", "comment")),
	}
}

func (s *commentService) GetAll(ctx context.Context) ([]response.CommentResponse, error) {
	comments, err := s.cachedList(ctx, cache.AllKey(), func() ([]*entity.Comment, error) {
		return s.comments.FindAll(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("get all comments: %w", err)
	}

	return response.CommentsToResponse(comments), nil
}

func (s *commentService) GetByUser(ctx context.Context, user string) ([]response.CommentResponse, error) {
	comments, err := s.cachedList(ctx, cache.UserKey(user), func() ([]*entity.Comment, error) {
		return s.comments.FindByUser(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("get comments of %q: %w", user, err)
	}

	if len(comments) == 0 {
		return nil, fmt.Errorf("user %q: %w", user, ErrNoComments)
	}

	s.log.Debug("User comments retrieved",
		zap.String("user", user),
		zap.Int("count", len(comments)),
	)

	return response.CommentsToResponse(comments), nil
}

func (s *commentService) CheckMovieExists(ctx context.Context, movieID int64) error {
	exists, err := s.movies.Exists(ctx, movieID)
	if err != nil {
		return fmt.Errorf("check movie %d: %w", movieID, err)
	}
	if !exists {
		return fmt.Errorf("movie %d: %w", movieID, ErrMovieNotFound)
	}
	return nil
}

func (s *commentService) Store(ctx context.Context, req *request.StoreCommentRequest) (*response.CommentResponse, error) {
	comment := &entity.Comment{
		MovieID:  req.MovieID,
		User:     req.User,
		Title:    req.Title,
		Contents: req.Contents,
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, fmt.Errorf("movie %d: %w", req.MovieID, ErrMovieNotFound)
		}
		return nil, fmt.Errorf("store comment: %w", err)
	}

	s.invalidate(ctx)

	s.log.Info("Comment created",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("movie_id", comment.MovieID),
		zap.String("user", comment.User),
	)

	resp := response.CommentToResponse(comment)
	return &resp, nil
}

func (s *commentService) Update(ctx context.Context, id int64, req *request.UpdateCommentRequest) (*response.CommentResponse, error) {
	if req.Empty() {
		return nil, ErrNothingToUpdate
	}

	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update comment %d: %w", id, err)
	}
	if comment == nil {
		return nil, fmt.Errorf("comment %d: %w", id, ErrCommentNotFound)
	}

	entity.CommentPatch{
		MovieID:  req.MovieID,
		User:     req.User,
		Title:    req.Title,
		Contents: req.Contents,
	}.Apply(comment)

	if err := s.comments.Update(ctx, comment); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("comment %d: %w", id, ErrCommentNotFound)
		case errors.Is(err, repository.ErrMissingReference):
			return nil, fmt.Errorf("movie %d: %w", comment.MovieID, ErrMovieNotFound)
		}
		return nil, fmt.Errorf("update comment %d: %w", id, err)
	}

	s.invalidate(ctx)

	s.log.Info("Comment updated", zap.Int64("comment_id", id))

	resp := response.CommentToResponse(comment)
	return &resp, nil
}

func (s *commentService) Delete(ctx context.Context, id int64) error {
	if err := s.comments.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("comment %d: %w", id, ErrCommentNotFound)
		}
		return fmt.Errorf("delete comment %d: %w", id, err)
	}

	s.invalidate(ctx)

	s.log.Info("Comment deleted", zap.Int64("comment_id", id))
	return nil
}

// ==================== HELPER METHODS ====================

// cachedList serves key from the cache, falling back to load on a miss.
// Cache failures are logged and otherwise ignored.
func (s *commentService) cachedList(ctx context.Context, key string, load func() ([]*entity.Comment, error)) ([]*entity.Comment, error) {
	comments, ok, err := s.cache.GetList(ctx, key)
	if err != nil {
		s.log.Warn("Comment cache read failed", zap.Error(err), zap.String("key", key))
	}
	if ok {
		return comments, nil
	}

	// The generation must be taken before the load, not after.
	gen, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		s.log.Warn("Comment cache generation read failed", zap.Error(genErr), zap.String("key", key))
	}

	comments, err = load()
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		if err := s.cache.SetList(ctx, key, gen, comments); err != nil {
			s.log.Warn("Comment cache write failed", zap.Error(err), zap.String("key", key))
		}
	}
	return comments, nil
}

func (s *commentService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("Comment cache invalidation failed", zap.Error(err))
	}
}
