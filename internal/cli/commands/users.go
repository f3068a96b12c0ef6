package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crowjourney/bookshelf/internal/api"
	"github.com/crowjourney/bookshelf/internal/cli/config"
)

type usersClient interface {
	ListUsers(ctx context.Context) ([]api.AccountSummary, error)
}

type usersOptions struct {
	client usersClient
	server *config.Server
	out    io.Writer
}

// UsersOption overrides a dependency of runUsers, for tests.
type UsersOption func(*usersOptions)

func WithUsersClient(c usersClient) UsersOption {
	return func(o *usersOptions) { o.client = c }
}

func WithUsersServer(s *config.Server) UsersOption {
	return func(o *usersOptions) { o.server = s }
}

func WithUsersOutput(w io.Writer) UsersOption {
	return func(o *usersOptions) { o.out = w }
}

// NewUsersCmd creates the users command
func NewUsersCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List registered accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsers(serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runUsers(serverAlias string, opts ...UsersOption) error {
	options := usersOptions{out: os.Stdout}
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

	if options.client == nil {
		client, err := newAPIClient(options.server)
		if err != nil {
			return err
		}
		options.client = client
	}

	users, err := options.client.ListUsers(context.Background())
	if err != nil {
		return friendlyError(err)
	}

	if len(users) == 0 {
		fmt.Fprintln(options.out, "No accounts found.")
		return nil
	}

	w := tabwriter.NewWriter(options.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE")
	fmt.Fprintln(w, "──\t────\t─────\t────")

	for _, user := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", user.ID, user.Name, user.Email, user.Role)
	}

	w.Flush()

	return nil
}
