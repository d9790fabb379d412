package store

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	log "github.com/sirupsen/logrus"
)

// PersistentJar is an http.CookieJar that writes persistent cookies through
// to a Store so refresh tokens survive restarts.
type PersistentJar struct {
	jar   *cookiejar.Jar
	store Store
}

// NewPersistentJar creates a jar seeded with the cookies already persisted
// in s.
func NewPersistentJar(ctx context.Context, s Store) (*PersistentJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	stored, err := s.LoadCookies(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range stored {
		u, err := url.Parse(c.Origin)
		if err != nil {
			log.WithError(err).WithField("origin", c.Origin).Warn("skipping stored cookie with bad origin")
			continue
		}
		jar.SetCookies(u, []*http.Cookie{c.HTTPCookie()})
	}

	return &PersistentJar{jar: jar, store: s}, nil
}

// SetCookies implements http.CookieJar.
func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.jar.SetCookies(u, cookies)
	if err := j.store.SaveCookies(context.Background(), origin(u), cookies); err != nil {
		log.WithError(err).WithField("origin", origin(u)).Warn("persisting cookies failed")
	}
}

// Cookies implements http.CookieJar.
func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

// Clear forgets every cookie for the origin of u, in memory and on disk.
// Persisted cookies are expired under the path and domain they were stored
// with; cookies only held in memory are assumed to live at "/".
func (j *PersistentJar) Clear(ctx context.Context, u *url.URL) error {
	stored, err := j.store.LoadCookies(ctx)
	if err != nil {
		return err
	}

	var expired []*http.Cookie
	seen := make(map[string]bool)
	expire := func(name, path, domain string) {
		if path == "" {
			path = "/"
		}
		key := name + ";" + domain + ";" + path
		if seen[key] {
			return
		}
		seen[key] = true
		expired = append(expired, &http.Cookie{Name: name, Path: path, Domain: domain, MaxAge: -1})
	}

	for _, c := range stored {
		if c.Origin == origin(u) {
			expire(c.Name, c.Path, c.Domain)
		}
	}
	for _, c := range j.jar.Cookies(u) {
		expire(c.Name, "/", "")
	}

	if len(expired) > 0 {
		j.jar.SetCookies(u, expired)
	}
	return j.store.DeleteCookies(ctx, origin(u))
}

func origin(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}
