package board

import "time"

type Post struct {
	ID        int64     `json:"id"`
	Writer    string    `json:"writer"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Views     int64     `json:"views"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	Writer    string    `json:"writer"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Page is the paging window for post listings.
type Page struct {
	Number int
	Size   int
}
