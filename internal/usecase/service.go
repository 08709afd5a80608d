package usecase

import (
	"errors"

	"movie-comments/internal/data/repository"
	"movie-comments/pkg/cache"

	"go.uber.org/zap"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrMovieNotFound   = errors.New("movie not found")
	ErrNoComments      = errors.New("no comments found")
	ErrNothingToUpdate = errors.New("nothing to update")
)

type Service struct {
	Comment CommentService
}

func NewService(repo *repository.Repository, listCache cache.CommentCache, log *zap.Logger) *Service {
	if listCache == nil {
		listCache = cache.Noop{}
	}
	return &Service{
		Comment: NewCommentService(repo.Comment, repo.Movie, listCache, log),
	}
}
