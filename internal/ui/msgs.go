package ui

// NavigateMsg asks the root model to switch routes.
type NavigateMsg struct {
	Path string
}

// ReloadMsg asks the root model to reload the active route from the server.
type ReloadMsg struct{}

// StatusMsg replaces the status line text. Err renders it as an error.
type StatusMsg struct {
	Text string
	Err  bool
}

// AuthExpiredMsg is sent when any request is rejected with a 401.
type AuthExpiredMsg struct{}
