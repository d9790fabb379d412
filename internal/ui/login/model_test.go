package login

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/model"
)

type fakeAuth struct {
	token string
	err   error
	email string
}

func (f *fakeAuth) Login(_ context.Context, email, password string, onSuccess func(string)) error {
	f.email = email
	if f.err != nil {
		return f.err
	}
	onSuccess(f.token)
	return nil
}

func (f *fakeAuth) Register(context.Context, model.NewUser) (*model.User, error) {
	return &model.User{ID: "u1"}, nil
}

func TestSubmitDeliversToken(t *testing.T) {
	auth := &fakeAuth{token: "tok-123"}
	m := New(auth, 80, 24)
	m.Init()
	m.fb.email = "ada@example.com"
	m.fb.password = "secret"

	m, cmd := m.submit()
	if !m.pending {
		t.Fatal("expected pending state while logging in")
	}

	msg, ok := cmd().(LoggedInMsg)
	if !ok || msg.Token != "tok-123" {
		t.Fatalf("got %#v, want LoggedInMsg with token", msg)
	}
	if auth.email != "ada@example.com" {
		t.Fatalf("login called with %q", auth.email)
	}
}

func TestFailedLoginShowsBanner(t *testing.T) {
	auth := &fakeAuth{err: &api.HTTPError{StatusCode: http.StatusUnauthorized, Message: "bad credentials"}}
	m := New(auth, 80, 24)
	m.Init()
	m.fb.email = "ada@example.com"
	m.fb.password = "wrong"

	m, cmd := m.submit()
	m, _ = m.Update(cmd())

	if !m.isError || m.banner != "Invalid email or password." {
		t.Fatalf("banner = %q (error %v)", m.banner, m.isError)
	}
	if m.pending {
		t.Fatal("form should be usable again after a failure")
	}
	if m.fb.password != "" {
		t.Fatal("password should be cleared after a failure")
	}
}

func TestLoginErrorText(t *testing.T) {
	if got := loginErrorText(errors.New("dial tcp: refused")); got != "Could not sign in: dial tcp: refused" {
		t.Fatalf("network error text = %q", got)
	}
	if got := loginErrorText(&api.HTTPError{StatusCode: 422, Message: "email is invalid"}); got != "email is invalid" {
		t.Fatalf("server error text = %q", got)
	}
}

func TestRegisterToggleSwitchesForm(t *testing.T) {
	m := New(&fakeAuth{}, 80, 24)
	m.Init()
	m.fb.register = true

	m, _ = m.submit()
	if m.mode != modeRegister || m.pending {
		t.Fatalf("mode = %v pending = %v", m.mode, m.pending)
	}
}
