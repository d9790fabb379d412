package model

import (
	"strings"
	"time"
)

// Comment is a message attached to a task. Author fields are denormalized
// by the backend.
type Comment struct {
	ID            ID        `json:"id"`
	AuthorID      ID        `json:"authorId"`
	AuthorName    string    `json:"authorName"`
	AuthorSurname string    `json:"authorSurname"`
	AuthorAvatar  string    `json:"authorAvatar,omitempty"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	TaskID        ID        `json:"task"`
}

// Author returns the author's display name.
func (c Comment) Author() string {
	return strings.TrimSpace(c.AuthorName + " " + c.AuthorSurname)
}

// CommentInput is the create payload for a comment.
type CommentInput struct {
	Text   string `json:"text"`
	TaskID ID     `json:"task"`
}
