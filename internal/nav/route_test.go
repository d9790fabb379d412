package nav

import (
	"testing"

	"github.com/nhle/taskboard/internal/model"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		path    string
		kind    RouteKind
		project string
		topic   string
	}{
		{"/", RouteDashboard, "", ""},
		{"", RouteDashboard, "", ""},
		{"/dashboard", RouteDashboard, "", ""},
		{"/settings/", RouteSettings, "", ""},
		{"/notifications", RouteNotifications, "", ""},
		{"/login", RouteLogin, "", ""},
		{"/project/alpha", RouteProject, "alpha", ""},
		{"project/beta-two/release-plan", RouteTopic, "beta-two", "release-plan"},
		{"/project", RouteNotFound, "", ""},
		{"/project/a/b/c", RouteNotFound, "", ""},
		{"/elsewhere", RouteNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r := ParseRoute(tt.path)
			if r.Kind != tt.kind || r.ProjectSlug != tt.project || r.TopicSlug != tt.topic {
				t.Errorf("ParseRoute(%q) = %+v, want kind %d project %q topic %q",
					tt.path, r, tt.kind, tt.project, tt.topic)
			}
		})
	}
}

func sampleTree() []model.Project {
	return []model.Project{
		{
			ID:   "1",
			Name: "Alpha",
			Topics: []model.Topic{
				{ID: "11", Name: "Backlog"},
				{ID: "12", Name: "Release Plan"},
			},
		},
		{
			ID:     "2",
			Name:   "Beta Two",
			Topics: []model.Topic{},
		},
		{
			ID:   "3",
			Name: "Gamma-Ray",
		},
	}
}

func TestFindProject(t *testing.T) {
	tree := sampleTree()

	tests := []struct {
		slug   string
		wantID model.ID
		found  bool
	}{
		{"alpha", "1", true},
		{"beta-two", "2", true},
		{"gamma-ray", "3", true},
		{"ALPHA", "1", true},
		{"delta", "", false},
	}

	for _, tt := range tests {
		p, ok := FindProject(tree, tt.slug)
		if ok != tt.found || p.ID != tt.wantID {
			t.Errorf("FindProject(%q) = (%q, %v), want (%q, %v)", tt.slug, p.ID, ok, tt.wantID, tt.found)
		}
	}
}

func TestResolve(t *testing.T) {
	tree := sampleTree()

	p, topic, ok := Resolve(tree, ParseRoute("/project/alpha/release-plan"))
	if !ok || p.ID != "1" || topic.ID != "12" {
		t.Fatalf("Resolve topic = (%q, %q, %v)", p.ID, topic.ID, ok)
	}

	if _, _, ok := Resolve(tree, ParseRoute("/project/alpha/missing")); ok {
		t.Fatalf("expected missing topic to fail")
	}

	p, _, ok = Resolve(tree, ParseRoute("/project/beta-two"))
	if !ok || p.ID != "2" {
		t.Fatalf("Resolve project = (%q, %v)", p.ID, ok)
	}

	if _, _, ok := Resolve(tree, ParseRoute("/dashboard")); ok {
		t.Fatalf("dashboard does not address a project")
	}
}

func TestBuild(t *testing.T) {
	sections := Build(sampleTree())
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}

	if sections[0].Project.Path != "/project/alpha" {
		t.Errorf("first project path = %q", sections[0].Project.Path)
	}
	if len(sections[0].Topics) != 2 || sections[0].Topics[1].Path != "/project/alpha/release-plan" {
		t.Errorf("alpha topics = %+v", sections[0].Topics)
	}
	if sections[0].Topics[0].Parent != "Alpha" {
		t.Errorf("topic parent = %q", sections[0].Topics[0].Parent)
	}

	flat := Flatten(sections)
	paths := make([]string, 0, len(flat))
	for _, e := range flat {
		paths = append(paths, e.Path)
	}
	want := []string{
		"/project/alpha",
		"/project/alpha/backlog",
		"/project/alpha/release-plan",
		"/project/beta-two",
		"/project/gamma-ray",
	}
	if len(paths) != len(want) {
		t.Fatalf("Flatten = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("Flatten[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}
