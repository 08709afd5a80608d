package entity

type Movie struct {
	BaseSimple
	Title string `db:"title"`
}
