package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/crowjourney/bookshelf/internal/api"
	"github.com/crowjourney/bookshelf/internal/cli/config"
)

type renameClient interface {
	RenameBook(ctx context.Context, id int, title string) (*api.Book, error)
}

type renameOptions struct {
	client renameClient
	server *config.Server
	out    io.Writer
}

// RenameOption overrides a dependency of runRename, for tests.
type RenameOption func(*renameOptions)

func WithRenameClient(c renameClient) RenameOption {
	return func(o *renameOptions) { o.client = c }
}

func WithRenameServer(s *config.Server) RenameOption {
	return func(o *renameOptions) { o.server = s }
}

func WithRenameOutput(w io.Writer) RenameOption {
	return func(o *renameOptions) { o.out = w }
}

// NewRenameCmd creates the rename command
func NewRenameCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "rename <book-id> <new-title>",
		Short: "Change a book's title",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(args[0], args[1], serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runRename(rawID, title, serverAlias string, opts ...RenameOption) error {
	options := renameOptions{out: os.Stdout}
	for _, opt := range opts {
		opt(&options)
	}

	id, err := strconv.Atoi(rawID)
	if err != nil {
		return fmt.Errorf("invalid book id '%s'", rawID)
	}

	if title == "" {
		return fmt.Errorf("the new title must not be empty")
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

	renamed, err := options.client.RenameBook(context.Background(), id, title)
	if err != nil {
		return friendlyError(err)
	}

	fmt.Fprintf(options.out, "✓ Renamed book %d to \"%s\"\n", renamed.ID, renamed.Title)

	return nil
}
