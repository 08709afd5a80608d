// Package seed creates the schema and resets the known fixture data.
package seed

import (
	"context"
	"fmt"

	"movie-comments/internal/data/entity"
	"movie-comments/pkg/database"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS movies (
		id         BIGSERIAL PRIMARY KEY,
		title      TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id         BIGSERIAL PRIMARY KEY,
		movie_id   BIGINT NOT NULL REFERENCES movies (id) ON DELETE CASCADE,
		user_name  TEXT NOT NULL,
		title      TEXT NOT NULL,
		contents   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS comments_user_name_idx ON comments (user_name)`,
}

// Movies is the movie fixture. IDs are assigned 1..n in order.
var Movies = []entity.Movie{
	{Title: "The Shawshank Redemption"},
	{Title: "Pulp Fiction"},
	{Title: "Spirited Away"},
}

// Comments is the comment fixture. IDs are assigned 1..n in order.
var Comments = []entity.Comment{
	{MovieID: 1, User: "boris", Title: "Masterpiece", Contents: "Hope is a good thing, maybe the best of things."},
	{MovieID: 1, User: "anna", Title: "Slow start", Contents: "Takes a while, but the ending pays off."},
	{MovieID: 2, User: "boris", Title: "Royale with cheese", Contents: "The dialogue alone is worth the ticket."},
	{MovieID: 2, User: "kate", Title: "Too violent", Contents: "Well made, not for me."},
	{MovieID: 3, User: "anna", Title: "Beautiful", Contents: "Every frame could hang in a gallery."},
	{MovieID: 3, User: "boris", Title: "No-Face", Contents: "Watched it three times this week."},
	{MovieID: 1, User: "kate", Title: "Classic", Contents: "Morgan Freeman narrating anything is great."},
	{MovieID: 2, User: "mike", Title: "Confusing", Contents: "Had to draw a timeline to follow it."},
}

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, db database.PgxIface) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Run empties both tables, restarts their id sequences and loads the
// fixtures in a single transaction.
func Run(ctx context.Context, db database.PgxIface) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE comments, movies RESTART IDENTITY CASCADE`); err != nil {
		return fmt.Errorf("seed: truncate: %w", err)
	}

	for _, m := range Movies {
		if _, err := tx.Exec(ctx, `INSERT INTO movies (title) VALUES ($1)`, m.Title); err != nil {
			return fmt.Errorf("seed: insert movie %q: %w", m.Title, err)
		}
	}

	for _, c := range Comments {
		_, err := tx.Exec(ctx,
			`INSERT INTO comments (movie_id, user_name, title, contents) VALUES ($1, $2, $3, $4)`,
			c.MovieID, c.User, c.Title, c.Contents,
		)
		if err != nil {
			return fmt.Errorf("seed: insert comment %q: %w", c.Title, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("seed: commit: %w", err)
	}
	return nil
}
