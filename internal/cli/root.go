// Package cli implements the taskboard command line: the interactive TUI
// and scriptable commands against the same backend.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/app"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/session"
	"github.com/nhle/taskboard/internal/ui"
)

// App carries the persistent flags and the services opened for a command.
type App struct {
	ConfigPath string
	OpenPath   string

	// tokens replaces the system keyring when set.
	tokens session.TokenStore

	env *env
}

// Execute runs the command tree and releases whatever the command opened.
func Execute() error {
	a := &App{}
	defer a.close()
	return newRootCmd(a).Execute()
}

func (a *App) close() {
	if a.env == nil {
		return
	}
	if err := a.env.Close(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	a.env = nil
}

func newRootCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "taskboard",
		Short:        "Terminal client for the task board",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  taskboard

  # Open the TUI on a topic board
  taskboard --open /project/alpha/road-map

  # Scriptable commands
  taskboard projects
  taskboard tasks alpha road-map --filter docs --sort title:desc
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), a)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context(), a.ConfigPath, a.tokens)
		if err != nil {
			return err
		}
		a.env = e
		return nil
	}

	cmd.PersistentFlags().StringVar(&a.ConfigPath, "config", envOr("TASKBOARD_CONFIG", model.DefaultConfigPath()), "Path to the config file")
	cmd.Flags().StringVar(&a.OpenPath, "open", "", "Route to show after sign-in (e.g. /project/alpha)")

	cmd.AddCommand(newLoginCmd(a))
	cmd.AddCommand(newLogoutCmd(a))
	cmd.AddCommand(newWhoamiCmd(a))
	cmd.AddCommand(newProjectsCmd(a))
	cmd.AddCommand(newNavCmd(a))
	cmd.AddCommand(newTasksCmd(a))
	cmd.AddCommand(newNotificationsCmd(a))
	cmd.AddCommand(newLangCmd(a))
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

func runTUI(ctx context.Context, a *App) error {
	e := a.env
	pref := e.languagePref(ctx)

	deps := app.Deps{
		Backend:    e.client,
		Session:    e.session,
		Prefs:      e.store,
		Config:     *e.cfg,
		Language:   pref,
		OnLanguage: e.lang.Set,
		StartPath:  a.OpenPath,
	}

	ui.SetMarkdownTheme(e.cfg.Display.Theme)
	log.WithField("api", e.cfg.API.BaseURL).Info("starting tui")
	p := tea.NewProgram(app.New(deps), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}

// currentUser resumes the stored session, mapping a missing or rejected
// token to a hint about logging in.
func currentUser(ctx context.Context, a *App) (model.User, error) {
	user, err := a.env.session.Resume(ctx)
	if errors.Is(err, session.ErrNoSession) || api.IsAuthError(err) || errors.Is(err, session.ErrTokenExpired) {
		return model.User{}, errNotLoggedIn
	}
	return user, err
}

var errNotLoggedIn = errors.New("not logged in; run `taskboard login`")
