package store

import (
	"context"
	"net/http"
	"time"
)

// Preference keys mirrored from the web client's local storage.
const (
	PrefLanguage = "language"
	PrefLastUser = "lastUser"
)

// StoredCookie is a cookie persisted for a backend origin.
type StoredCookie struct {
	ID       string    `db:"id"`
	Origin   string    `db:"origin"`
	Name     string    `db:"name"`
	Value    string    `db:"value"`
	Path     string    `db:"path"`
	Domain   string    `db:"domain"`
	Expires  time.Time `db:"expires"`
	Secure   bool      `db:"secure"`
	HTTPOnly bool      `db:"http_only"`
}

// HTTPCookie converts the stored row back into an http.Cookie.
func (c StoredCookie) HTTPCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
	}
}

// Store defines client-side persistence: the local-storage style
// preferences and the cookie jar backing refresh tokens.
type Store interface {
	// === Preferences ===

	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
	DeletePreference(ctx context.Context, key string) error

	// === Cookies ===

	SaveCookies(ctx context.Context, origin string, cookies []*http.Cookie) error
	LoadCookies(ctx context.Context) ([]StoredCookie, error)
	DeleteCookies(ctx context.Context, origin string) error
}
