package adaptor

import (
	"errors"
	"net/http"
	"strings"

	"movie-comments/internal/dto/request"
	"movie-comments/internal/usecase"
	"movie-comments/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CommentHandler struct {
	service usecase.CommentService
	log     *zap.Logger
}

func NewCommentHandler(service usecase.CommentService, log *zap.Logger) *CommentHandler {
	return &CommentHandler{
		service: service,
		log:     log.With(zap.String("handler", "comment")),
	}
}

// GetAll handles GET /api/v1/comments
func (h *CommentHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.GetAll(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "get all comments")
		return
	}

	utils.ResponseOK(w, comments)
}

// GetByUser handles GET /api/v1/comments/{user}
func (h *CommentHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(chi.URLParam(r, "user"))

	comments, err := h.service.GetByUser(r.Context(), user)
	if err != nil {
		h.handleServiceError(w, err, "get comments by user")
		return
	}

	utils.ResponseOK(w, comments)
}

// MovieExists is a chain step that rejects a payload naming an unknown movie.
// Payloads without a movie_id pass through.
func (h *CommentHandler) MovieExists(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		movieID, ok := payloadMovieID(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		if err := h.service.CheckMovieExists(r.Context(), movieID); err != nil {
			h.handleServiceError(w, err, "check movie exists")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Store handles POST /api/v1/comments
func (h *CommentHandler) Store(w http.ResponseWriter, r *http.Request) {
	req, ok := utils.GetPayload[*request.StoreCommentRequest](r.Context())
	if !ok {
		h.log.Error("Store reached without a validated payload")
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	comment, err := h.service.Store(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err, "store comment")
		return
	}

	utils.ResponseCreated(w, comment)
}

// Update handles PATCH /api/v1/comments/{id}
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.ResponseBadRequest(w, "Validation failed", map[string]string{"id": "Must be a positive integer"})
		return
	}

	req, ok := utils.GetPayload[*request.UpdateCommentRequest](r.Context())
	if !ok {
		h.log.Error("Update reached without a validated payload")
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	comment, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.handleServiceError(w, err, "update comment")
		return
	}

	utils.ResponseOK(w, comment)
}

// DeleteOne handles DELETE /api/v1/comments/{id}
func (h *CommentHandler) DeleteOne(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.ResponseBadRequest(w, "Validation failed", map[string]string{"id": "Must be a positive integer"})
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "delete comment")
		return
	}

	utils.ResponseSuccess(w, "Comment deleted", nil)
}

// handleServiceError maps service errors to responses
func (h *CommentHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrMovieNotFound):
		h.log.Warn(operation+" failed - movie not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, "Movie not found", map[string]string{"movie_id": "Movie does not exist"})

	case errors.Is(err, usecase.ErrCommentNotFound):
		h.log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, "Comment not found")

	case errors.Is(err, usecase.ErrNoComments):
		h.log.Debug(operation+" returned nothing",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, "No comments found")

	// Not reachable through the router: ValidateUpdate rejects an empty body first.
	case errors.Is(err, usecase.ErrNothingToUpdate):
		h.log.Warn(operation+" validation failed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, "Validation failed", map[string]string{"body": "Nothing to update"})

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func payloadMovieID(r *http.Request) (int64, bool) {
	if req, ok := utils.GetPayload[*request.StoreCommentRequest](r.Context()); ok {
		return req.MovieID, true
	}
	if req, ok := utils.GetPayload[*request.UpdateCommentRequest](r.Context()); ok && req.MovieID != nil {
		return *req.MovieID, true
	}
	return 0, false
}
