package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/token"
	"github.com/jrsteele09/go-admin-client/users"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd() *cobra.Command {
	var (
		username      string
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			displayAppname(cmd.ErrOrStderr(), s.cfg.GetAppName())

			in := bufio.NewReader(cmd.InOrStdin())
			if username == "" {
				if username, err = prompt(cmd.ErrOrStderr(), in, "Username: "); err != nil {
					return err
				}
			}
			password, err := readPassword(cmd, in, passwordStdin)
			if err != nil {
				return err
			}

			u, err := s.client.Login(cmd.Context(), username, password)
			if errors.Is(err, errors.ErrInvalidCredentials) {
				return pkgerrors.New("login failed: invalid username or password")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s\n", s.client.BaseURL(), displayName(u, username))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account to sign in with")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin instead of prompting")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the refresh token and forget the session credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			if err := s.client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

type whoami struct {
	BaseURL   string         `json:"base_url"`
	State     string         `json:"state"`
	Subject   string         `json:"subject,omitempty"`
	ExpiresAt string         `json:"expires_at,omitempty"`
	User      *users.Summary `json:"user,omitempty"`
}

func newWhoamiCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the cached user and session state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}

			out := whoami{BaseURL: s.client.BaseURL()}
			if refresh {
				if out.User, err = s.client.FetchProfile(cmd.Context()); err != nil {
					return err
				}
			} else if out.User, err = s.client.CurrentUser(); err != nil && !errors.Is(err, errors.ErrNotFound) {
				return err
			}

			accessToken := s.store.AccessToken()
			out.State = s.client.State().String()
			out.Subject = token.Subject(accessToken)
			if exp, err := token.ExpiryHint(accessToken); err == nil && !exp.IsZero() {
				out.ExpiresAt = exp.Format("2006-01-02T15:04:05Z07:00")
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload the profile from the backend first")
	return cmd
}

func readPassword(cmd *cobra.Command, in *bufio.Reader, fromStdin bool) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && !fromStdin && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", pkgerrors.Wrap(err, "read password")
		}
		return string(b), nil
	}
	return prompt(io.Discard, in, "")
}

func prompt(w io.Writer, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", pkgerrors.Wrap(err, "read input")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func displayName(u *users.Summary, fallback string) string {
	if u == nil {
		return fallback
	}
	if u.FullName != "" {
		return fmt.Sprintf("%s (%s)", u.FullName, u.Username)
	}
	if u.Username != "" {
		return u.Username
	}
	return fallback
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(w, myFigure.String())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
