package adaptor

import (
	"movie-comments/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Comment *CommentHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Comment: NewCommentHandler(service.Comment, log),
	}
}
