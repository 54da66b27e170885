package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recdash/recdash/internal/utils"
	"github.com/recdash/recdash/pkg/apiclient"
	"github.com/recdash/recdash/pkg/sanitize"
	"github.com/recdash/recdash/pkg/session"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the recommendations API",
	Long:  "Signs in and stores the session token in the state file, so the dashboard and other commands start authenticated.",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		username = strings.TrimSpace(username)

		if username == "" {
			return errors.New("Username is required (-u flag)")
		}
		if password == "" {
			p, err := readPassword(cmd)
			if err != nil {
				return err
			}
			password = p
		}
		if password == "" {
			return errors.New("Password is required (-p flag or stdin)")
		}

		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()
		resp, err := a.svc.Login(ctx, sanitize.Text(username), password)
		if err != nil {
			if apiclient.IsUnauthorized(err) {
				return errors.New("Invalid credentials")
			}
			return apiError("login failed", err)
		}

		user := session.User{Username: username}
		if resp.User != nil {
			user = session.User{Username: resp.User.Username, Email: resp.User.Email}
		}
		if err := a.session.Login(ctx, resp.Token, user); err != nil {
			return err
		}
		utils.Log.Infof("Logged in as %s", user.Username)
		return nil
	},
}

func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("could not read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.session.Logout(context.Background()); err != nil {
			return err
		}
		utils.Log.Info("Logged out")
		return nil
	},
}

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.authenticated(context.Background()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), describeUser(a.session.State().User))
		return nil
	},
}

func describeUser(u *session.User) string {
	if u == nil || (u.Username == "" && u.Email == "") {
		return "(unnamed user)"
	}
	if u.Email == "" {
		return u.Username
	}
	if u.Username == "" {
		return u.Email
	}
	return fmt.Sprintf("%s <%s>", u.Username, u.Email)
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	loginCmd.Flags().StringP("username", "u", "", "Username")
	loginCmd.Flags().StringP("password", "p", "", "Password (read from stdin when omitted)")
}
