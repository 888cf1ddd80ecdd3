package cli

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pyfetch/pkg/integrations/github"
	"github.com/matzehuels/pyfetch/pkg/session"
)

// loginTimeout bounds the whole device authorization.
const loginTimeout = 10 * time.Minute

func (c *CLI) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored GitHub login",
		Long: `Log in to GitHub with the device flow so discover, detect and serve can read
private repositories and get the authenticated rate limit without a token in
the environment. An explicit --token or $GITHUB_TOKEN takes precedence.`,
	}

	cmd.AddCommand(c.authLoginCommand())
	cmd.AddCommand(c.authLogoutCommand())
	cmd.AddCommand(c.authStatusCommand())

	return cmd
}

func (c *CLI) authLoginCommand() *cobra.Command {
	var clientID, apiURL string
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with GitHub using the device flow",
		Long: `Start the GitHub device authorization flow.

You will be given a code to enter at https://github.com/login/device. The
resulting token is stored in the pyfetch config directory. The OAuth App is
taken from --client-id or $GITHUB_CLIENT_ID.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			clientID = firstNonEmpty(clientID, c.config().GitHubClientID)
			if clientID == "" {
				return fmt.Errorf("no OAuth App configured: pass --client-id or set GITHUB_CLIENT_ID")
			}

			store, err := session.NewCLIStore(c.sessionDir)
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			if existing, _ := store.GetSession(ctx); existing != nil {
				printInfo("Already logged in as @%s", existing.Login)
				printNextStep("Log out first to switch accounts", "pyfetch auth logout")
				return nil
			}

			sess, err := c.runDeviceLogin(ctx, github.NewDeviceFlow(clientID), firstNonEmpty(apiURL, c.config().GitHubAPIURL), !noBrowser)
			if err != nil {
				return err
			}
			if err := store.SaveSession(ctx, sess); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			printSuccess("Logged in as @%s", sess.Login)
			printDetail("Stored in %s", store.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth App client ID (default: $GITHUB_CLIENT_ID)")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "GitHub API URL used to look up the user")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "do not open the verification page")
	return cmd
}

func (c *CLI) authLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored GitHub login",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := session.NewCLIStore(c.sessionDir)
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			if err := store.DeleteSession(cmd.Context()); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			printSuccess("Logged out")
			return nil
		},
	}
}

func (c *CLI) authStatusCommand() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored GitHub login",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := session.NewCLIStore(c.sessionDir)
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			sess, err := store.GetSession(ctx)
			if err != nil {
				return fmt.Errorf("read session: %w", err)
			}
			if sess == nil {
				printInfo("Not logged in")
				printNextStep("Authenticate", "pyfetch auth login")
				return nil
			}

			if verify {
				ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
				defer cancel()

				spinner := newSpinnerWithContext(ctx, "Verifying token...")
				spinner.Start()
				gh, err := github.NewClient(sess.AccessToken, c.config().GitHubAPIURL)
				if err != nil {
					spinner.Stop()
					return err
				}
				if _, err := github.CurrentUser(ctx, gh); err != nil {
					spinner.StopWithError("Token rejected")
					return err
				}
				spinner.Stop()
			}

			printSuccess("GitHub login")
			printKeyValue("User", "@"+sess.Login)
			printKeyValue("Logged in", sess.CreatedAt.Format("Jan 2, 2006"))
			expires := "never"
			if !sess.ExpiresAt.IsZero() {
				expires = sess.ExpiresAt.Format("Jan 2, 2006 15:04")
			}
			printKeyValue("Expires", expires)
			printKeyValue("File", store.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "check the token against the GitHub API")
	return cmd
}

// runDeviceLogin walks the user through the device flow and returns an
// unsaved session.
func (c *CLI) runDeviceLogin(ctx context.Context, flow *github.DeviceFlow, apiURL string, browser bool) (*session.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	auth, err := flow.Start(ctx)
	if err != nil {
		return nil, err
	}

	printNewline()
	fmt.Fprintln(stdout, StyleTitle.Render("GitHub Device Authorization"))
	printNewline()
	printKeyValue("Code", StyleNumber.Render(auth.UserCode))
	printKeyValue("URL", StyleLink.Render(auth.VerificationURI))
	printNewline()

	if browser && openBrowser(auth.VerificationURI) == nil {
		printDetail("Opening browser...")
	} else {
		printDetail("Open the URL above and enter the code")
	}
	printInline("Waiting for authorization...")

	tok, err := flow.Wait(ctx, auth)
	printNewline()
	if err != nil {
		return nil, err
	}

	gh, err := github.NewClient(tok.AccessToken, apiURL)
	if err != nil {
		return nil, err
	}
	login, err := github.CurrentUser(ctx, gh)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("device login complete", "user", login)
	return session.New(tok, login), nil
}

func openBrowser(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
