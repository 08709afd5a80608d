package wire

import (
	"movie-comments/internal/adaptor"
	"movie-comments/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wireComment(r chi.Router, commentHandler *adaptor.CommentHandler) {
	r.Route("/api/v1/comments", func(r chi.Router) {
		// Every route gets its own validation error list
		r.Use(middleware.Collect)

		// GET /api/v1/comments - all comments
		r.Get("/", commentHandler.GetAll)

		// GET /api/v1/comments/{user} - comments written by one user
		r.With(
			adaptor.ValidateUser,
			middleware.CheckValid,
		).Get("/{user}", commentHandler.GetByUser)

		// POST /api/v1/comments - create
		r.With(
			adaptor.ValidateStore,
			middleware.CheckValid,
			commentHandler.MovieExists,
		).Post("/", commentHandler.Store)

		// PATCH /api/v1/comments/{id} - partial update
		r.With(
			adaptor.ValidateID,
			adaptor.ValidateUpdate,
			middleware.CheckValid,
			commentHandler.MovieExists,
		).Patch("/{id}", commentHandler.Update)

		// DELETE /api/v1/comments/{id}
		r.With(
			adaptor.ValidateID,
			middleware.CheckValid,
		).Delete("/{id}", commentHandler.DeleteOne)
	})
}
