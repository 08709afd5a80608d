package entity

type Comment struct {
	Base
	MovieID  int64  `db:"movie_id"`
	User     string `db:"user_name"`
	Title    string `db:"title"`
	Contents string `db:"contents"`
}

// CommentPatch holds the fields of a partial update. Nil means unchanged.
type CommentPatch struct {
	MovieID  *int64
	User     *string
	Title    *string
	Contents *string
}

// Apply copies the set fields onto c.
func (p CommentPatch) Apply(c *Comment) {
	if p.MovieID != nil {
		c.MovieID = *p.MovieID
	}
	if p.User != nil {
		c.User = *p.User
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Contents != nil {
		c.Contents = *p.Contents
	}
}
