package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mindscape/internal/api"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, provider string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Long: `Sign in with email and password. The session is saved so later commands
stay signed in.

With --provider google or facebook the social login URL is printed instead;
open it in a browser.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider != "" {
				u, err := a.client.OAuthURL(provider)
				if err != nil {
					return err
				}
				a.display.PrintInfo("Open this link in your browser to continue:")
				fmt.Fprintln(a.out, u)
				return nil
			}
			return a.login(cmd.Context(), email)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&provider, "provider", "", "social login provider (google, facebook)")
	return cmd
}

func (a *app) login(ctx context.Context, email string) error {
	var err error
	if email == "" {
		if email, err = a.reader.PromptRequired("Email"); err != nil {
			return err
		}
	}
	password, err := a.reader.ReadPassword("Password")
	if err != nil {
		return err
	}

	user, err := a.client.Login(ctx, email, password)
	if err != nil {
		return errors.New(api.Detail(err, "Login failed. Please try again."))
	}
	if user == nil {
		if user, err = a.client.Profile(ctx); err != nil {
			return err
		}
	}
	if err := a.signedIn(user); err != nil {
		return err
	}
	a.display.PrintSuccess(fmt.Sprintf("Welcome back, %s!", displayName(user)))
	return nil
}

func newSignupCmd(a *app) *cobra.Command {
	var email string
	var direct bool
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Long: `Create an account. A one-time code is emailed to you and checked before
the account is created. --no-otp registers directly without a code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.signup(cmd.Context(), email, direct)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().BoolVar(&direct, "no-otp", false, "register without email verification")
	return cmd
}

func (a *app) signup(ctx context.Context, email string, direct bool) error {
	var err error
	if email == "" {
		if email, err = a.reader.PromptRequired("Email"); err != nil {
			return err
		}
	}

	var otp string
	if !direct {
		msg, err := a.client.SendOTP(ctx, email)
		if err != nil {
			return errors.New(api.Detail(err, "Could not send the verification code."))
		}
		if msg == "" {
			msg = "A verification code has been sent to " + email
		}
		a.display.PrintInfo(msg)
		if otp, err = a.reader.PromptRequired("Verification code"); err != nil {
			return err
		}
	}

	name, err := a.reader.PromptRequired("Full name")
	if err != nil {
		return err
	}
	password, err := a.reader.ReadPassword("Password")
	if err != nil {
		return err
	}

	var user *api.User
	if direct {
		user, err = a.client.Register(ctx, api.RegisterRequest{Name: name, Email: email, Password: password})
	} else {
		user, err = a.client.VerifyOTP(ctx, email, otp, name, password)
	}
	if err != nil {
		return errors.New(api.Detail(err, "Sign up failed. Please try again."))
	}
	if user == nil {
		if user, err = a.client.Profile(ctx); err != nil {
			return err
		}
	}
	if err := a.signedIn(user); err != nil {
		return err
	}
	a.display.PrintSuccess(fmt.Sprintf("Welcome to MindScape, %s!", displayName(user)))
	return nil
}

func newResetPasswordCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Reset a forgotten password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.resetPassword(cmd.Context(), email)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func (a *app) resetPassword(ctx context.Context, email string) error {
	var err error
	if email == "" {
		if email, err = a.reader.PromptRequired("Email"); err != nil {
			return err
		}
	}

	msg, err := a.client.SendResetOTP(ctx, email)
	if err != nil {
		return errors.New(api.Detail(err, "Could not send the reset code."))
	}
	if msg == "" {
		msg = "A reset code has been sent to " + email
	}
	a.display.PrintInfo(msg)

	otp, err := a.reader.PromptRequired("Reset code")
	if err != nil {
		return err
	}
	token, err := a.client.VerifyResetOTP(ctx, email, otp)
	if err != nil {
		return errors.New(api.Detail(err, "The reset code could not be verified."))
	}

	password, err := a.reader.ReadPassword("New password")
	if err != nil {
		return err
	}
	user, err := a.client.ResetPassword(ctx, password, token)
	if err != nil {
		return errors.New(api.Detail(err, "Your password could not be reset."))
	}

	// The server signs the user in after a reset
	if user != nil {
		if err := a.signedIn(user); err != nil {
			return err
		}
	}
	a.display.PrintSuccess("Your password has been reset")
	return nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.client.Logout()
			if err := a.store.SignOut(); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}
			a.display.PrintSuccess("Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	var update api.ProfileUpdate
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show or update your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()

			var user *api.User
			var err error
			if update.FullName != "" || update.Avatar != "" {
				user, err = a.client.UpdateProfile(ctx, update)
			} else {
				user, err = a.client.Profile(ctx)
			}
			if err != nil {
				return err
			}
			if user != nil {
				if err := a.store.SetUser(user); err != nil {
					a.logger.Warn().Err(err).Msg("failed to save profile")
				}
			}
			a.display.PrintProfile(user)
			return nil
		},
	}
	cmd.Flags().StringVar(&update.FullName, "name", "", "change your full name")
	cmd.Flags().StringVar(&update.Avatar, "avatar", "", "change your avatar URL")
	return cmd
}

func displayName(u *api.User) string {
	if u == nil {
		return "friend"
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}
