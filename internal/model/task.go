package model

// Task is a unit of work on a kanban board.
type Task struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Users       []User `json:"users,omitempty"`
	KanbanID    ID     `json:"kanban,omitempty"`
}

// AssignedTo reports whether the user with the given id is assigned.
func (t Task) AssignedTo(userID ID) bool {
	for _, u := range t.Users {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// TaskInput is the create/update payload for tasks. Pointer fields are
// omitted from updates when nil.
type TaskInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	KanbanID    ID      `json:"kanban,omitempty"`
	UserIDs     []ID    `json:"users,omitempty"`
}
