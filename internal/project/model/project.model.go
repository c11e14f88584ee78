package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Types are the content kinds the studio can create.
var Types = []string{
	"blog", "sermon", "podcast", "series", "devotional", "ebooks",
	"courses", "videos", "lyrics", "guide", "social",
}

func ValidType(t string) bool { return slices.Contains(Types, t) }

// ValidID reports whether id is a hyphenated UUID, the only form the
// store's id columns accept.
func ValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

type Project struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Snippet   string    `json:"snippet,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateProjectRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// UpdateProjectRequest is a partial update; nil fields are left unchanged.
type UpdateProjectRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Type    *string `json:"type"`
}

func (r UpdateProjectRequest) Empty() bool {
	return r.Title == nil && r.Content == nil && r.Type == nil
}
