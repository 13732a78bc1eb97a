package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"storefront/internal/auth"
	"storefront/internal/session"
)

func newLoginCmd(e *env) *cobra.Command {
	var creds auth.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := e.app.Auth.Login(e.ctx(cmd), creds)
			if err != nil && resp == nil {
				return err
			}
			if err != nil {
				e.app.Logger.Warn("Session not persisted after login", "error", err)
			}
			return e.print(struct {
				Authenticated bool          `json:"authenticated"`
				User          *session.User `json:"user"`
			}{true, resp.User}, nil)
		},
	}
	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.app.Auth.Logout(e.ctx(cmd)); err != nil {
				return err
			}
			return e.print(map[string]bool{"authenticated": false}, nil)
		},
	}
}

func newRegisterCmd(e *env) *cobra.Command {
	var reg auth.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reg.ConfirmPassword == "" {
				reg.ConfirmPassword = reg.Password
			}
			user, err := e.app.Auth.Register(e.ctx(cmd), reg)
			if err != nil {
				return err
			}
			return e.print(user, nil)
		},
	}
	cmd.Flags().StringVarP(&reg.Username, "username", "u", "", "username")
	cmd.Flags().StringVar(&reg.Email, "email", "", "email address")
	cmd.Flags().StringVarP(&reg.Password, "password", "p", "", "password")
	cmd.Flags().StringVar(&reg.ConfirmPassword, "confirm", "", "password confirmation (defaults to --password)")
	cmd.Flags().StringVar(&reg.Phone, "phone", "", "phone number")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newWhoamiCmd(e *env) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if refresh && e.app.Session.Authenticated() {
				if _, err := e.app.Auth.Profile(e.ctx(cmd)); err != nil {
					return err
				}
			}
			snap := e.app.Session.Snapshot()
			return e.print(struct {
				Authenticated bool          `json:"authenticated"`
				User          *session.User `json:"user"`
			}{snap.Authenticated, snap.User}, nil)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload the profile from the backend")
	return cmd
}

func newProfileCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the account profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := e.app.Auth.Profile(e.ctx(cmd))
			if err != nil {
				return err
			}
			return e.print(user, nil)
		},
	}

	var username, email, phone string
	update := &cobra.Command{
		Use:   "update",
		Short: "Change username, email or phone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd auth.ProfileUpdate
			if cmd.Flags().Changed("username") {
				upd.Username = &username
			}
			if cmd.Flags().Changed("email") {
				upd.Email = &email
			}
			if cmd.Flags().Changed("phone") {
				upd.Phone = &phone
			}
			if upd == (auth.ProfileUpdate{}) {
				return errors.New("nothing to update")
			}

			user, err := e.app.Auth.UpdateProfile(e.ctx(cmd), upd)
			if err != nil {
				return err
			}
			return e.print(user, nil)
		},
	}
	update.Flags().StringVarP(&username, "username", "u", "", "new username")
	update.Flags().StringVar(&email, "email", "", "new email address")
	update.Flags().StringVar(&phone, "phone", "", "new phone number")

	cmd.AddCommand(update)
	return cmd
}

func newPasswordCmd(e *env) *cobra.Command {
	var change auth.PasswordChange

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change the account password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if change.ConfirmPassword == "" {
				change.ConfirmPassword = change.NewPassword
			}
			if err := e.app.Auth.ChangePassword(e.ctx(cmd), change); err != nil {
				return err
			}
			return e.print(map[string]string{"message": "password changed"}, nil)
		},
	}
	cmd.Flags().StringVar(&change.CurrentPassword, "current", "", "current password")
	cmd.Flags().StringVar(&change.NewPassword, "new", "", "new password")
	cmd.Flags().StringVar(&change.ConfirmPassword, "confirm", "", "new password confirmation (defaults to --new)")
	_ = cmd.MarkFlagRequired("current")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}
