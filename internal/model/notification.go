package model

import "time"

// Notification is an alert addressed to a user.
type Notification struct {
	ID          ID        `json:"id"`
	Owner       ID        `json:"owner"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CountUnread returns the number of unread notifications.
func CountUnread(ns []Notification) int {
	n := 0
	for _, x := range ns {
		if !x.Read {
			n++
		}
	}
	return n
}
