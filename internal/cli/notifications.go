package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/language/display"

	"github.com/nhle/taskboard/internal/i18n"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

func newNotificationsCmd(a *App) *cobra.Command {
	var readID string

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List notifications, or mark one as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if id := strings.TrimSpace(readID); id != "" {
				if _, err := currentUser(ctx, a); err != nil {
					return err
				}
				if err := a.env.client.MarkNotificationRead(ctx, model.ID(id)); err != nil {
					return describe(err)
				}
				fmt.Fprintf(out, "Marked %s as read\n", id)
				return nil
			}

			user, err := currentUser(ctx, a)
			if err != nil {
				return err
			}
			items, err := a.env.client.Notifications(ctx, user.ID)
			if err != nil {
				return describe(err)
			}
			if len(items) == 0 {
				fmt.Fprintln(out, "You're all caught up")
				return nil
			}

			now := time.Now()
			for _, n := range items {
				mark := "*"
				if n.Read {
					mark = " "
				}
				fmt.Fprintf(out, "%s %s  %s  (%s)\n", mark, n.ID, n.Title, humanize.RelTime(n.CreatedAt, now, "ago", "from now"))
			}
			fmt.Fprintf(out, "%d unread\n", model.CountUnread(items))
			return nil
		},
	}

	cmd.Flags().StringVar(&readID, "read", "", "Mark the notification with this id as read")
	return cmd
}

func newLangCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lang [tag]",
		Short: "Show or set the interface language",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				tag := i18n.Match(a.env.languagePref(ctx))
				fmt.Fprintf(out, "%s (%s)\n", i18n.Code(tag), display.Self.Name(tag))
				return nil
			}

			tag := i18n.Match(args[0])
			code := i18n.Code(tag)
			if err := a.env.store.SetPreference(ctx, store.PrefLanguage, code); err != nil {
				return err
			}
			a.env.lang.Set(tag)
			fmt.Fprintf(out, "Language set to %s (%s)\n", code, display.Self.Name(tag))
			return nil
		},
	}
}
