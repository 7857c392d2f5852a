package models

import "time"

// Article is the persisted entity. Slug is derived from the title at
// creation and never changes afterwards, even when the title is edited.
// TagList, Comments and FavoritesCount are filled in by the store on read;
// FavoritesCount is always derived from favorite_articles membership and is
// never stored as a column of its own.
type Article struct {
	ID             int64     `json:"-"`
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Body           string    `json:"body"`
	TagList        []string  `json:"tagList"`
	AuthorID       int64     `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Comments       []Comment `json:"-"`
	FavoritesCount int64     `json:"favoritesCount"`
}

// Comment belongs to exactly one article and is cascade-deleted with it.
// AuthorID is a weak reference: the comment does not own the user.
type Comment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	AuthorID  int64     `json:"authorId"`
	ArticleID int64     `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Tag struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
}
