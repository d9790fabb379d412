package store_test

import (
	"context"
	"net/http"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/tests/testutil"
)

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)

	if _, ok, err := s.GetPreference(ctx, store.PrefLanguage); err != nil || ok {
		t.Fatalf("missing preference: ok=%v err=%v", ok, err)
	}

	if err := s.SetPreference(ctx, store.PrefLanguage, "en"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetPreference(ctx, store.PrefLanguage, "es"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.GetPreference(ctx, store.PrefLanguage)
	if err != nil || !ok || v != "es" {
		t.Fatalf("got %q ok=%v err=%v", v, ok, err)
	}

	if err := s.DeletePreference(ctx, store.PrefLanguage); err != nil {
		t.Fatal(err)
	}
	if err := s.DeletePreference(ctx, "never-set"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.GetPreference(ctx, store.PrefLanguage); ok {
		t.Fatal("preference should be gone")
	}
}

func TestSaveCookiesKeepsOnlyPersistent(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	origin := "https://tasks.example.com"

	err := s.SaveCookies(ctx, origin, []*http.Cookie{
		{Name: "refresh_token", Value: "r1", MaxAge: 3600, HttpOnly: true},
		{Name: "session", Value: "s1"},
	})
	if err != nil {
		t.Fatal(err)
	}

	cookies, err := s.LoadCookies(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cookies) != 1 {
		t.Fatalf("cookies = %+v", cookies)
	}
	c := cookies[0]
	if c.Name != "refresh_token" || c.Value != "r1" || c.Path != "/" || !c.HTTPOnly || c.Origin != origin {
		t.Fatalf("cookie = %+v", c)
	}

	// Rotation replaces the value in place.
	if err := s.SaveCookies(ctx, origin, []*http.Cookie{{Name: "refresh_token", Value: "r2", MaxAge: 3600}}); err != nil {
		t.Fatal(err)
	}
	cookies, _ = s.LoadCookies(ctx)
	if len(cookies) != 1 || cookies[0].Value != "r2" {
		t.Fatalf("cookies after rotation = %+v", cookies)
	}

	// An expiring Set-Cookie removes the row.
	if err := s.SaveCookies(ctx, origin, []*http.Cookie{{Name: "refresh_token", MaxAge: -1}}); err != nil {
		t.Fatal(err)
	}
	cookies, _ = s.LoadCookies(ctx)
	if len(cookies) != 0 {
		t.Fatalf("cookies after expiry = %+v", cookies)
	}
}

func TestDeleteCookiesByOrigin(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	expires := time.Now().Add(time.Hour)

	_ = s.SaveCookies(ctx, "https://a.example.com", []*http.Cookie{{Name: "refresh_token", Value: "a", Expires: expires}})
	_ = s.SaveCookies(ctx, "https://b.example.com", []*http.Cookie{{Name: "refresh_token", Value: "b", Expires: expires}})

	if err := s.DeleteCookies(ctx, "https://a.example.com"); err != nil {
		t.Fatal(err)
	}
	cookies, _ := s.LoadCookies(ctx)
	if len(cookies) != 1 || cookies[0].Value != "b" {
		t.Fatalf("cookies = %+v", cookies)
	}
}

func TestPersistentJarSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "taskboard.db")
	u, _ := url.Parse("https://tasks.example.com/api/v1/auth/login")

	s, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	jar, err := store.NewPersistentJar(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	jar.SetCookies(u, []*http.Cookie{{Name: "refresh_token", Value: "r1", Path: "/", MaxAge: 3600}})
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = store.NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	jar, err = store.NewPersistentJar(ctx, s)
	if err != nil {
		t.Fatal(err)
	}

	refresh, _ := url.Parse("https://tasks.example.com/api/v1/auth/refresh")
	got := jar.Cookies(refresh)
	if len(got) != 1 || got[0].Value != "r1" {
		t.Fatalf("cookies = %+v", got)
	}

	if err := jar.Clear(ctx, refresh); err != nil {
		t.Fatal(err)
	}
	if got := jar.Cookies(refresh); len(got) != 0 {
		t.Fatalf("cookies after clear = %+v", got)
	}
	if stored, _ := s.LoadCookies(ctx); len(stored) != 0 {
		t.Fatalf("stored after clear = %+v", stored)
	}
}

func TestPersistentJarClearsNarrowPathCookie(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	jar, err := store.NewPersistentJar(ctx, s)
	if err != nil {
		t.Fatal(err)
	}

	login, _ := url.Parse("https://tasks.example.com/api/v1/auth/login")
	refresh, _ := url.Parse("https://tasks.example.com/api/v1/auth/refresh")
	jar.SetCookies(login, []*http.Cookie{{Name: "refresh_token", Value: "r1", Path: "/api/v1/auth", MaxAge: 3600}})
	if got := jar.Cookies(refresh); len(got) != 1 {
		t.Fatalf("cookies = %+v", got)
	}

	base, _ := url.Parse("https://tasks.example.com")
	if err := jar.Clear(ctx, base); err != nil {
		t.Fatal(err)
	}
	if got := jar.Cookies(refresh); len(got) != 0 {
		t.Fatalf("cookies after clear = %+v", got)
	}
	if stored, _ := s.LoadCookies(ctx); len(stored) != 0 {
		t.Fatalf("stored after clear = %+v", stored)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskboard.db")
	for i := 0; i < 2; i++ {
		s, err := store.NewSQLiteStore(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := s.Close(); err != nil {
			t.Fatal(err)
		}
	}
}
