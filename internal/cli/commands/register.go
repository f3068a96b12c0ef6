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

type registerGateway interface {
	Register(ctx context.Context, data session.RegistrationData) error
}

type registerOptions struct {
	gateway registerGateway
	server  *config.Server
	out     io.Writer
}

// RegisterOption overrides a dependency of runRegister, for tests.
type RegisterOption func(*registerOptions)

func WithRegisterGateway(g registerGateway) RegisterOption {
	return func(o *registerOptions) { o.gateway = g }
}

func WithRegisterServer(s *config.Server) RegisterOption {
	return func(o *registerOptions) { o.server = s }
}

func WithRegisterOutput(w io.Writer) RegisterOption {
	return func(o *registerOptions) { o.out = w }
}

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var name, email, password, serverAlias string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(name, email, password, serverAlias)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runRegister(name, email, password, serverAlias string, opts ...RegisterOption) error {
	options := registerOptions{out: os.Stdout}
	for _, opt := range opts {
		opt(&options)
	}

	if name == "" {
		return fmt.Errorf("name is required (use --name flag)")
	}
	if email == "" {
		return fmt.Errorf("email is required (use --email flag)")
	}

	if options.server == nil {
		server, err := getSelectedServer(serverAlias)
		if err != nil {
			return err
		}
		options.server = server
	}

	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Fprint(options.out, "Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Fprintln(options.out)
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag)")
		}
	}

	if options.gateway == nil {
		host, err := options.server.Host()
		if err != nil {
			return err
		}
		tokens, err := tokenstore.Open(host)
		if err != nil {
			return err
		}
		options.gateway = session.NewGateway(options.server.URL, tokens, session.NewStore(""))
	}

	err := options.gateway.Register(context.Background(), session.RegistrationData{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	// Registration does not log the user in.
	fmt.Fprintln(options.out, "✓ Account created! Run 'bookshelf login' to sign in.")

	return nil
}
