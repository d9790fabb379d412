package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/i18n"
	"github.com/nhle/taskboard/internal/logging"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/session"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/internal/tree"
)

// env holds the services a command runs against.
type env struct {
	cfg      *model.AppConfig
	store    *store.SQLiteStore
	jar      *store.PersistentJar
	client   *api.Client
	session  *session.Session
	verifier *session.Verifier
	loader   *tree.Loader
	lang     *languageHolder
	logFile  io.Closer
}

func openEnv(ctx context.Context, configPath string, tokens session.TokenStore) (*env, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logFile, err := logging.Setup(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	st, err := store.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		logFile.Close()
		return nil, err
	}

	jar, err := store.NewPersistentJar(ctx, st)
	if err != nil {
		st.Close()
		logFile.Close()
		return nil, err
	}

	if tokens == nil {
		ring, err := credential.Open(cfg.Storage.KeyringBackend, filepath.Dir(cfg.Storage.DBPath))
		if err != nil {
			st.Close()
			logFile.Close()
			return nil, err
		}
		tokens = ring
	}

	verifier, err := session.NewVerifier(cfg.Auth.JWKSURL)
	if err != nil {
		st.Close()
		logFile.Close()
		return nil, err
	}

	lang := &languageHolder{}
	client := api.NewClient(api.Options{
		BaseURL:  cfg.API.BaseURL,
		Version:  cfg.API.Version,
		Timeout:  time.Duration(cfg.API.TimeoutSec) * time.Second,
		Jar:      jar,
		Tokens:   session.TokenSource(tokens),
		Language: lang.Header,
	})

	e := &env{
		cfg:      cfg,
		store:    st,
		jar:      jar,
		client:   client,
		session:  session.New(client, tokens, verifier),
		verifier: verifier,
		loader:   tree.NewLoader(client, cfg.API.MaxConcurrency),
		lang:     lang,
		logFile:  logFile,
	}
	e.lang.SetPref(e.languagePref(ctx))
	return e, nil
}

// Close releases the store, the key set refresher and the log file.
func (e *env) Close() error {
	e.verifier.Close()
	log.SetOutput(io.Discard)
	err := e.store.Close()
	if cerr := e.logFile.Close(); err == nil {
		err = cerr
	}
	return err
}

// languagePref returns the stored language preference, falling back to the
// LANG environment variable.
func (e *env) languagePref(ctx context.Context) string {
	pref, ok, err := e.store.GetPreference(ctx, store.PrefLanguage)
	if err != nil {
		log.WithError(err).Warn("reading language preference failed")
	}
	if ok && pref != "" {
		return pref
	}
	return systemLanguage()
}

// forgetCookies clears the refresh_token cookie for the backend origin.
func (e *env) forgetCookies(ctx context.Context) error {
	u, err := url.Parse(e.cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing api base url: %w", err)
	}
	return e.jar.Clear(ctx, u)
}

// systemLanguage turns LANG (e.g. es_ES.UTF-8) into a language tag string.
func systemLanguage() string {
	v := os.Getenv("LANG")
	if v == "" || v == "C" || v == "POSIX" {
		return ""
	}
	for i, r := range v {
		if r == '.' || r == '@' {
			v = v[:i]
			break
		}
	}
	tag, err := language.Parse(v)
	if err != nil {
		return ""
	}
	return tag.String()
}

// languageHolder is the language outgoing requests advertise. The TUI
// updates it from its own goroutine while request goroutines read it.
type languageHolder struct {
	mu  sync.RWMutex
	tag language.Tag
	set bool
}

// Set records tag.
func (h *languageHolder) Set(tag language.Tag) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tag = tag
	h.set = true
}

// SetPref records the supported language closest to pref.
func (h *languageHolder) SetPref(pref string) {
	h.Set(i18n.Match(pref))
}

// Header returns the Accept-Language value, or "" before any language was
// chosen.
func (h *languageHolder) Header() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.set {
		return ""
	}
	return i18n.Code(h.tag)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// describe maps backend failures to short messages for the terminal. The
// full error goes to the log.
func describe(err error) error {
	if err == nil || errors.Is(err, errNotLoggedIn) {
		return err
	}
	if api.IsAuthError(err) {
		return errNotLoggedIn
	}
	switch api.Classify(err) {
	case api.KindHTTP, api.KindDecode:
		log.WithError(err).Warn("request failed")
		return errors.New(api.UserMessage(err))
	}
	return err
}
