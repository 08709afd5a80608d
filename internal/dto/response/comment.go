package response

import (
	"movie-comments/internal/data/entity"
	"time"
)

type CommentResponse struct {
	ID        int64     `json:"id"`
	MovieID   int64     `json:"movie_id"`
	User      string    `json:"user"`
	Title     string    `json:"title"`
	Contents  string    `json:"contents"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Helper converter
func CommentToResponse(comment *entity.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		MovieID:   comment.MovieID,
		User:      comment.User,
		Title:     comment.Title,
		Contents:  comment.Contents,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

func CommentsToResponse(comments []*entity.Comment) []CommentResponse {
	out := make([]CommentResponse, len(comments))
	for i, c := range comments {
		out[i] = CommentToResponse(c)
	}
	return out
}
