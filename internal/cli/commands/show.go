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

type showClient interface {
	GetBook(ctx context.Context, id int) (*api.Book, error)
}

type showOptions struct {
	client showClient
	server *config.Server
	out    io.Writer
}

// ShowOption overrides a dependency of runShow, for tests.
type ShowOption func(*showOptions)

func WithShowClient(c showClient) ShowOption {
	return func(o *showOptions) { o.client = c }
}

func WithShowServer(s *config.Server) ShowOption {
	return func(o *showOptions) { o.server = s }
}

func WithShowOutput(w io.Writer) ShowOption {
	return func(o *showOptions) { o.out = w }
}

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "show <book-id>",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(args[0], serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runShow(rawID, serverAlias string, opts ...ShowOption) error {
	options := showOptions{out: os.Stdout}
	for _, opt := range opts {
		opt(&options)
	}

	id, err := strconv.Atoi(rawID)
	if err != nil {
		return fmt.Errorf("invalid book id '%s'", rawID)
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

	book, err := options.client.GetBook(context.Background(), id)
	if err != nil {
		return friendlyError(err)
	}

	fmt.Fprintf(options.out, "Title:  %s\n", book.Title)
	fmt.Fprintf(options.out, "Author: %s\n", book.Author)
	if book.Year != 0 {
		fmt.Fprintf(options.out, "Year:   %d\n", book.Year)
	}
	if book.Genre != "" {
		fmt.Fprintf(options.out, "Genre:  %s\n", book.Genre)
	}
	fmt.Fprintf(options.out, "ID:     %d\n", book.ID)

	return nil
}
