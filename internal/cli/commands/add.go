package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/crowjourney/bookshelf/internal/api"
	"github.com/crowjourney/bookshelf/internal/cli/config"
)

type addClient interface {
	AddBook(ctx context.Context, book api.Book) (*api.Book, error)
}

type addOptions struct {
	client addClient
	server *config.Server
	out    io.Writer
}

// AddOption overrides a dependency of runAdd, for tests.
type AddOption func(*addOptions)

func WithAddClient(c addClient) AddOption {
	return func(o *addOptions) { o.client = c }
}

func WithAddServer(s *config.Server) AddOption {
	return func(o *addOptions) { o.server = s }
}

func WithAddOutput(w io.Writer) AddOption {
	return func(o *addOptions) { o.out = w }
}

// NewAddCmd creates the add command
func NewAddCmd() *cobra.Command {
	var title, author, genre, serverAlias string
	var year int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(api.Book{Title: title, Author: author, Year: year, Genre: genre}, serverAlias)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Book title (required)")
	cmd.Flags().StringVar(&author, "author", "", "Book author (required)")
	cmd.Flags().IntVar(&year, "year", 0, "Publication year")
	cmd.Flags().StringVar(&genre, "genre", "", "Genre")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runAdd(book api.Book, serverAlias string, opts ...AddOption) error {
	options := addOptions{out: os.Stdout}
	for _, opt := range opts {
		opt(&options)
	}

	if book.Title == "" {
		return fmt.Errorf("title is required (use --title flag)")
	}
	if book.Author == "" {
		return fmt.Errorf("author is required (use --author flag)")
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

	created, err := options.client.AddBook(context.Background(), book)
	if err != nil {
		return friendlyError(err)
	}

	fmt.Fprintf(options.out, "✓ Added \"%s\" by %s (id %d)\n", created.Title, created.Author, created.ID)

	return nil
}
