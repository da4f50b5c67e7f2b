package models

import "time"

// Post is a blog-style update. AccessLevel gates visibility by the viewer's
// resolved Patreon tier ("free" posts are visible to everyone).
type Post struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `json:"title"`
	Excerpt      string     `json:"excerpt,omitempty"`
	Content      string     `json:"content"`
	AuthorID     string     `json:"author_id,omitempty"`
	AuthorName   string     `json:"author_name,omitempty"`
	AuthorRole   string     `json:"author_role,omitempty"`
	AuthorAvatar string     `json:"author_avatar,omitempty"`
	Category     string     `gorm:"index" json:"category,omitempty"`
	Image        string     `json:"image,omitempty"`
	Featured     bool       `gorm:"default:false" json:"featured"`
	AccessLevel  string     `gorm:"default:free" json:"access_level"` // free, basic, supporter, founder
	Date         time.Time  `gorm:"index" json:"date"`
	PublishAt    *time.Time `json:"publish_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostComment is a user comment on a post.
type PostComment struct {
	ID      string `gorm:"primaryKey" json:"id"` // UUID
	PostID  uint   `gorm:"index" json:"post_id"`
	UserID  string `gorm:"index" json:"user_id"`
	Content string `json:"content"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
