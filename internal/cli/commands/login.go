package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/crowjourney/bookshelf/internal/cli/config"
	"github.com/crowjourney/bookshelf/internal/session"
	"github.com/crowjourney/bookshelf/internal/tokenstore"
)

// authGateway is the slice of the session gateway the login command needs;
// tests substitute a mock.
type authGateway interface {
	Login(ctx context.Context, creds session.Credentials) error
}

type loginOptions struct {
	gateway authGateway
	server  *config.Server
	out     io.Writer
}

// LoginOption overrides a dependency of runLogin, for tests.
type LoginOption func(*loginOptions)

func WithLoginGateway(g authGateway) LoginOption {
	return func(o *loginOptions) { o.gateway = g }
}

func WithLoginServer(s *config.Server) LoginOption {
	return func(o *loginOptions) { o.server = s }
}

func WithLoginOutput(w io.Writer) LoginOption {
	return func(o *loginOptions) { o.out = w }
}

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password, serverAlias string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with a CrowJourney server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(email, password, serverAlias)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set BOOKSHELF_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set BOOKSHELF_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runLogin(email, password, serverAlias string, opts ...LoginOption) error {
	options := loginOptions{out: os.Stdout}
	for _, opt := range opts {
		opt(&options)
	}

	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("BOOKSHELF_EMAIL")
	}
	if password == "" {
		password = os.Getenv("BOOKSHELF_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or BOOKSHELF_EMAIL env var)")
	}

	if options.server == nil {
		server, err := getSelectedServer(serverAlias)
		if err != nil {
			return err
		}
		options.server = server
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		// Check if stdin is a terminal (not piped)
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Fprint(options.out, "Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Fprintln(options.out) // New line after password input
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or BOOKSHELF_PASSWORD env var)")
		}
	}

	var store *session.Store
	if options.gateway == nil {
		host, err := options.server.Host()
		if err != nil {
			return err
		}
		tokens, err := tokenstore.Open(host)
		if err != nil {
			return err
		}
		store = session.NewStore("")
		options.gateway = session.NewGateway(options.server.URL, tokens, store)
	}

	fmt.Fprintf(options.out, "Logging in to %s (%s)...\n", options.server.Alias, options.server.URL)

	err := options.gateway.Login(context.Background(), session.Credentials{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintln(options.out, "✓ Login successful!")
	if store != nil {
		if user := store.Current().User; user != nil {
			fmt.Fprintf(options.out, "  User: %s (%s)\n", user.Name, user.Email)
			if user.Role == "admin" {
				fmt.Fprintln(options.out, "  Role: Admin")
			}
		}
	}

	return nil
}
