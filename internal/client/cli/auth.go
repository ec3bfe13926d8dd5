package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/clouddrive/internal/client/client"
	"github.com/dmitrijs2005/clouddrive/internal/client/router"
	"github.com/dmitrijs2005/clouddrive/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errRefused = errors.New("view not available")

// enter navigates to path and fails when the guard sends the user elsewhere.
func (a *App) enter(ctx context.Context, path string) error {
	rt, err := a.router.Navigate(ctx, path)
	if err != nil {
		fmt.Fprintln(a.out, "Navigation failed:", err)
		return err
	}
	if rt.Path != path {
		switch rt.Path {
		case router.PathLogin:
			fmt.Fprintln(a.out, "Please log in first.")
		case router.PathDashboard:
			fmt.Fprintln(a.out, "Already logged in.")
		}
		return errRefused
	}
	return nil
}

func (a *App) readCredentials() (string, []byte, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// reportError prints a short message for err, preferring the service's
// detail text.
func (a *App) reportError(action string, err error) {
	var se *client.StatusError
	if errors.As(err, &se) && se.Detail != "" {
		fmt.Fprintf(a.out, "%s failed: %s\n", action, se.Detail)
		return
	}
	fmt.Fprintf(a.out, "%s failed: %v\n", action, err)
}

// reportRemote is reportError for calls made with a session. A 401 has
// already moved the user to the login view.
func (a *App) reportRemote(action string, err error) {
	if errors.Is(err, client.ErrUnauthorized) {
		fmt.Fprintln(a.out, "Session expired, please log in again.")
		return
	}
	a.reportError(action, err)
}

// Register prompts for an email and password and creates an account.
// On success the login view is opened.
func (a *App) Register(ctx context.Context) error {
	if err := a.enter(ctx, router.PathRegister); err != nil {
		return err
	}

	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Register(ctx, email, string(password))
	if err != nil {
		a.reportError("Registration", err)
		return err
	}

	fmt.Fprintf(a.out, "Registered %s.\n", u.Email)
	_, err = a.router.Navigate(ctx, router.PathLogin)
	return err
}

// Login prompts for credentials, authenticates and opens the dashboard.
func (a *App) Login(ctx context.Context) error {
	if err := a.enter(ctx, router.PathLogin); err != nil {
		return err
	}

	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.authService.Login(ctx, email, string(password)); err != nil {
		a.reportError("Login", err)
		return err
	}

	if !a.authService.IsAuthenticated(ctx) {
		fmt.Fprintln(a.out, "Login returned no session.")
		return nil
	}

	a.logger.Info(ctx, "Login successful")
	_, err = a.router.Navigate(ctx, router.PathDashboard)
	return err
}

// Logout drops the stored credential and returns to the login view.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		a.reportError("Logout", err)
		return err
	}
	_, err := a.router.Navigate(ctx, router.PathLogin)
	return err
}

// Me shows the account the session belongs to.
func (a *App) Me(ctx context.Context) error {
	if err := a.enter(ctx, router.PathDashboard); err != nil {
		return err
	}

	u, err := a.authService.CurrentUser(ctx)
	if err != nil {
		a.reportRemote("Fetching account", err)
		return err
	}

	fmt.Fprintf(a.out, "%s (id %d, active %t, since %s)\n", u.Email, u.ID, u.IsActive, u.CreatedAt.Format("2006-01-02"))
	return nil
}

// Open navigates to the route given as the first argument.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: open <route>")
		return errUsage
	}
	_, err := a.router.Navigate(ctx, args[0])
	if err != nil {
		fmt.Fprintln(a.out, "Navigation failed:", err)
	}
	return err
}
