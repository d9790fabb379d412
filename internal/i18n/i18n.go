// Package i18n resolves the language preference and holds the UI strings
// that change with it.
package i18n

import (
	"golang.org/x/text/language"
)

// Supported lists the languages with a catalog, default first.
var Supported = []language.Tag{
	language.English,
	language.Spanish,
}

var matcher = language.NewMatcher(Supported)

// Match resolves a user-supplied tag or Accept-Language style list to the
// closest supported language. Unparseable input yields English.
func Match(pref string) language.Tag {
	if pref == "" {
		return language.English
	}
	tags, _, err := language.ParseAcceptLanguage(pref)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := matcher.Match(tags...)
	return Supported[idx]
}

// Code returns the base language code of tag, e.g. "es".
func Code(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

// Key identifies a translatable string.
type Key string

const (
	Dashboard      Key = "dashboard"
	Settings       Key = "settings"
	Notifications  Key = "notifications"
	Projects       Key = "projects"
	Loading        Key = "loading"
	NoTasks        Key = "no_tasks"
	NoProjects     Key = "no_projects"
	NoComments     Key = "no_comments"
	NoNotification Key = "no_notifications"
	LoadFailed     Key = "load_failed"
	NotFound       Key = "not_found"
	SignIn         Key = "sign_in"
	SignedOut      Key = "signed_out"
	Unread         Key = "unread"
	Copied         Key = "copied"
	Language       Key = "language"
	Logout         Key = "logout"
)

var catalog = map[string]map[Key]string{
	"en": {
		Dashboard:      "Dashboard",
		Settings:       "Settings",
		Notifications:  "Notifications",
		Projects:       "Projects",
		Loading:        "Loading…",
		NoTasks:        "No tasks",
		NoProjects:     "No projects yet",
		NoComments:     "No comments",
		NoNotification: "You're all caught up",
		LoadFailed:     "Could not load data",
		NotFound:       "Nothing lives at this path",
		SignIn:         "Sign in",
		SignedOut:      "Signed out",
		Unread:         "unread",
		Copied:         "Copied link",
		Language:       "Language",
		Logout:         "Log out",
	},
	"es": {
		Dashboard:      "Panel",
		Settings:       "Ajustes",
		Notifications:  "Notificaciones",
		Projects:       "Proyectos",
		Loading:        "Cargando…",
		NoTasks:        "Sin tareas",
		NoProjects:     "Aún no hay proyectos",
		NoComments:     "Sin comentarios",
		NoNotification: "Estás al día",
		LoadFailed:     "No se pudieron cargar los datos",
		NotFound:       "No hay nada en esta ruta",
		SignIn:         "Iniciar sesión",
		SignedOut:      "Sesión cerrada",
		Unread:         "sin leer",
		Copied:         "Enlace copiado",
		Language:       "Idioma",
		Logout:         "Cerrar sesión",
	},
}

// Translator looks strings up for one language.
type Translator struct {
	tag language.Tag
}

// New returns a Translator for the closest supported match of pref.
func New(pref string) Translator {
	return Translator{tag: Match(pref)}
}

// Tag returns the resolved language.
func (t Translator) Tag() language.Tag {
	return t.tag
}

// T returns the string for k, falling back to English and then to the key.
func (t Translator) T(k Key) string {
	if s, ok := catalog[Code(t.tag)][k]; ok {
		return s
	}
	if s, ok := catalog["en"][k]; ok {
		return s
	}
	return string(k)
}
