package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/crowjourney/bookshelf/internal/cli/config"
	"github.com/crowjourney/bookshelf/internal/session"
	"github.com/crowjourney/bookshelf/internal/tokenstore"
)

type logoutGateway interface {
	Logout()
}

type logoutOptions struct {
	gateway logoutGateway
	server  *config.Server
	out     io.Writer
}

// LogoutOption overrides a dependency of runLogout, for tests.
type LogoutOption func(*logoutOptions)

func WithLogoutGateway(g logoutGateway) LogoutOption {
	return func(o *logoutOptions) { o.gateway = g }
}

func WithLogoutServer(s *config.Server) LogoutOption {
	return func(o *logoutOptions) { o.server = s }
}

func WithLogoutOutput(w io.Writer) LogoutOption {
	return func(o *logoutOptions) { o.out = w }
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

// runLogout always succeeds: logging out twice is the same as logging
// out once, and no backend round trip is needed.
func runLogout(serverAlias string, opts ...LogoutOption) error {
	options := logoutOptions{out: os.Stdout}
	for _, opt := range opts {
		opt(&options)
	}

	if options.server == nil {
		server, err := getSelectedServer(serverAlias)
		if err != nil {
			return err
		}
		options.server = server
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

	options.gateway.Logout()
	fmt.Fprintln(options.out, "Logged out.")

	return nil
}
