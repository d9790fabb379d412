package app

import (
	"context"

	"golang.org/x/text/language"

	"github.com/nhle/taskboard/internal/model"
	appsync "github.com/nhle/taskboard/internal/sync"
	"github.com/nhle/taskboard/internal/tree"
	"github.com/nhle/taskboard/internal/ui/board"
	"github.com/nhle/taskboard/internal/ui/detail"
	"github.com/nhle/taskboard/internal/ui/login"
	"github.com/nhle/taskboard/internal/ui/notifications"
	"github.com/nhle/taskboard/internal/ui/projectform"
	"github.com/nhle/taskboard/internal/ui/projectview"
)

// Backend is everything the TUI asks of the REST client. api.Client
// satisfies it.
type Backend interface {
	tree.Source
	tree.KanbanSource
	board.Service
	detail.CommentService
	notifications.Marker
	projectform.Service
	projectview.Service
	appsync.Fetcher
}

// Session resolves and ends the signed-in identity. session.Session
// satisfies it.
type Session interface {
	login.Authenticator
	Resume(ctx context.Context) (model.User, error)
	Logout(ctx context.Context) error
}

// Preferences persists local-storage style settings. store.Store
// satisfies it.
type Preferences interface {
	SetPreference(ctx context.Context, key, value string) error
}

// Deps wires the root model to the outside world.
type Deps struct {
	Backend Backend
	Session Session
	Prefs   Preferences
	Config  model.AppConfig

	// Language is the initial UI language preference.
	Language string

	// OnLanguage is told about language changes so outgoing requests can
	// carry the matching Accept-Language. May be nil.
	OnLanguage func(tag language.Tag)

	// CopyText writes to the system clipboard. Nil uses atotto/clipboard.
	CopyText func(text string) error

	// StartPath is the first route shown after sign-in.
	StartPath string
}
