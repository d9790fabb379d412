package nav

import (
	"strings"

	"github.com/nhle/taskboard/internal/model"
)

// Fixed destinations.
const (
	PathDashboard     = "/dashboard"
	PathSettings      = "/settings"
	PathNotifications = "/notifications"
	PathLogin         = "/login"
)

// RouteKind identifies the view a path resolves to.
type RouteKind int

const (
	RouteNotFound RouteKind = iota
	RouteDashboard
	RouteSettings
	RouteNotifications
	RouteLogin
	RouteProject
	RouteTopic
)

// Route is a parsed navigation path.
type Route struct {
	Kind        RouteKind
	Path        string
	ProjectSlug string
	TopicSlug   string
}

// ProjectPath returns /project/{slug}.
func ProjectPath(p model.Project) string {
	return "/project/" + Slug(p.Name)
}

// TopicPath returns /project/{project-slug}/{topic-slug}.
func TopicPath(p model.Project, t model.Topic) string {
	return ProjectPath(p) + "/" + Slug(t.Name)
}

// ParseRoute resolves a path into a Route. The root path is the dashboard.
func ParseRoute(path string) Route {
	clean := "/" + strings.Trim(strings.TrimSpace(path), "/")
	r := Route{Path: clean}

	switch clean {
	case "/", PathDashboard:
		r.Kind = RouteDashboard
		r.Path = PathDashboard
		return r
	case PathSettings:
		r.Kind = RouteSettings
		return r
	case PathNotifications:
		r.Kind = RouteNotifications
		return r
	case PathLogin:
		r.Kind = RouteLogin
		return r
	}

	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	if parts[0] != "project" {
		return r
	}
	switch len(parts) {
	case 2:
		r.Kind = RouteProject
		r.ProjectSlug = parts[1]
	case 3:
		r.Kind = RouteTopic
		r.ProjectSlug = parts[1]
		r.TopicSlug = parts[2]
	}
	return r
}

// matches reports whether name is addressed by slug: either the slug of the
// name equals it, or the name equals it case-insensitively with hyphens read
// as spaces.
func matches(name, slug string) bool {
	if Slug(name) == slug {
		return true
	}
	return strings.EqualFold(name, strings.ReplaceAll(slug, "-", " "))
}

// FindProject looks a project up by slug. The first match in tree order wins.
func FindProject(tree []model.Project, slug string) (model.Project, bool) {
	for _, p := range tree {
		if matches(p.Name, slug) {
			return p, true
		}
	}
	return model.Project{}, false
}

// FindTopic looks a topic of p up by slug.
func FindTopic(p model.Project, slug string) (model.Topic, bool) {
	for _, t := range p.Topics {
		if matches(t.Name, slug) {
			return t, true
		}
	}
	return model.Topic{}, false
}

// Resolve returns the project and topic a route addresses. ok is false when
// any addressed element is missing from the tree.
func Resolve(tree []model.Project, r Route) (model.Project, model.Topic, bool) {
	if r.Kind != RouteProject && r.Kind != RouteTopic {
		return model.Project{}, model.Topic{}, false
	}
	p, ok := FindProject(tree, r.ProjectSlug)
	if !ok {
		return model.Project{}, model.Topic{}, false
	}
	if r.Kind == RouteProject {
		return p, model.Topic{}, true
	}
	t, ok := FindTopic(p, r.TopicSlug)
	return p, t, ok
}
