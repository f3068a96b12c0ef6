package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crowjourney/bookshelf/internal/api"
	"github.com/crowjourney/bookshelf/internal/cli/config"
)

type listClient interface {
	ListBooks(ctx context.Context) ([]api.Book, error)
}

type listOptions struct {
	client listClient
	server *config.Server
	out    io.Writer
}

// ListOption overrides a dependency of runList, for tests.
type ListOption func(*listOptions)

func WithListClient(c listClient) ListOption {
	return func(o *listOptions) { o.client = c }
}

func WithListServer(s *config.Server) ListOption {
	return func(o *listOptions) { o.server = s }
}

func WithListOutput(w io.Writer) ListOption {
	return func(o *listOptions) { o.out = w }
}

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all books in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runList(serverAlias string, opts ...ListOption) error {
	options := listOptions{out: os.Stdout}
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

	books, err := options.client.ListBooks(context.Background())
	if err != nil {
		return friendlyError(err)
	}

	if len(books) == 0 {
		fmt.Fprintln(options.out, "No books found.")
		fmt.Fprintln(options.out, "\nAdd one with: bookshelf add --title <title> --author <author>")
		return nil
	}

	fmt.Fprintf(options.out, "Books on %s (%s):\n\n", options.server.Alias, options.server.URL)

	w := tabwriter.NewWriter(options.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tYEAR\tGENRE")
	fmt.Fprintln(w, "──\t─────\t──────\t────\t─────")

	for _, book := range books {
		year := ""
		if book.Year != 0 {
			year = strconv.Itoa(book.Year)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			book.ID,
			book.Title,
			book.Author,
			year,
			book.Genre,
		)
	}

	w.Flush()

	return nil
}
