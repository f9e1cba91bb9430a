package models

import (
	"time"
)

// MaxSummaryLength is the maximum number of characters in an article summary
const MaxSummaryLength = 500

// Article represents a blog article
type Article struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Summary     string     `json:"summary" db:"summary"`
	Slug        string     `json:"slug" db:"slug"`
	Content     string     `json:"content" db:"content"`
	Published   bool       `json:"published" db:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty" db:"published_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// ArticleForm is the admin form for creating and editing articles
type ArticleForm struct {
	ID        int64  `form:"id"`
	Title     string `form:"title"`
	Summary   string `form:"summary"`
	Slug      string `form:"slug"`
	Content   string `form:"content"`
	Published bool   `form:"published"`
}

// ToForm fills a form with the stored values of an article
func (a *Article) ToForm() ArticleForm {
	return ArticleForm{
		ID:        a.ID,
		Title:     a.Title,
		Summary:   a.Summary,
		Slug:      a.Slug,
		Content:   a.Content,
		Published: a.Published,
	}
}
