package nav

import (
	"testing"

	"github.com/nhle/taskboard/internal/model"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Alpha", "alpha"},
		{"single space", "Beta Two", "beta-two"},
		{"whitespace run", "Beta   Two\tThree", "beta-two-three"},
		{"edges kept", " Lead ", "-lead-"},
		{"punctuation untouched", "Q&A / Ops", "q&a-/-ops"},
		{"already hyphenated", "beta-two", "beta-two"},
		{"empty", "", ""},
		{"no-break space", "Beta\u00a0Two", "beta-two"},
		{"vertical tab", "Beta\vTwo", "beta-two"},
		{"ideographic space", "Beta\u3000Two", "beta-two"},
		{"en quad run", "Beta\u2000\u200a Two", "beta-two"},
		{"line separator", "Beta\u2028Two", "beta-two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slug(tt.in); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSlugIsIdempotent(t *testing.T) {
	// Lowercasing and whitespace replacement are both fixed points once
	// applied, so a second pass changes nothing.
	for _, name := range []string{"Alpha", "Beta Two", "  Mixed   CASE  ", "Ünïcode Námé", "tab\tsep"} {
		once := Slug(name)
		if twice := Slug(once); twice != once {
			t.Errorf("Slug(Slug(%q)) = %q, want %q", name, twice, once)
		}
	}
}

func TestSlugCollides(t *testing.T) {
	if Slug("Beta Two") != Slug("beta  TWO") {
		t.Fatalf("expected differently cased and spaced names to collide")
	}
}

func TestProjectPaths(t *testing.T) {
	tree := []model.Project{
		{ID: "1", Name: "Alpha"},
		{ID: "2", Name: "Beta Two"},
	}

	want := []string{"/project/alpha", "/project/beta-two"}
	for i, p := range tree {
		if got := ProjectPath(p); got != want[i] {
			t.Errorf("ProjectPath(%q) = %q, want %q", p.Name, got, want[i])
		}
	}
}

func TestTopicPath(t *testing.T) {
	p := model.Project{Name: "Beta Two"}
	topic := model.Topic{Name: "Release Plan"}

	if got := TopicPath(p, topic); got != "/project/beta-two/release-plan" {
		t.Fatalf("TopicPath = %q", got)
	}
}
