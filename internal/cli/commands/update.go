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

type updateClient interface {
	GetBook(ctx context.Context, id int) (*api.Book, error)
	UpdateBook(ctx context.Context, id int, book api.Book) (*api.Book, error)
}

type updateOptions struct {
	client updateClient
	server *config.Server
	out    io.Writer
}

// UpdateOption overrides a dependency of runUpdate, for tests.
type UpdateOption func(*updateOptions)

func WithUpdateClient(c updateClient) UpdateOption {
	return func(o *updateOptions) { o.client = c }
}

func WithUpdateServer(s *config.Server) UpdateOption {
	return func(o *updateOptions) { o.server = s }
}

func WithUpdateOutput(w io.Writer) UpdateOption {
	return func(o *updateOptions) { o.out = w }
}

// NewUpdateCmd creates the update command
func NewUpdateCmd() *cobra.Command {
	var title, author, genre, serverAlias string
	var year int

	cmd := &cobra.Command{
		Use:   "update <book-id>",
		Short: "Update a book's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes := api.Book{Title: title, Author: author, Year: year, Genre: genre}
			return runUpdate(args[0], changes, serverAlias)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&author, "author", "", "New author")
	cmd.Flags().IntVar(&year, "year", 0, "New publication year")
	cmd.Flags().StringVar(&genre, "genre", "", "New genre")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

// runUpdate fetches the current record and overlays only the fields the
// user set, so the PUT never blanks out the rest.
func runUpdate(rawID string, changes api.Book, serverAlias string, opts ...UpdateOption) error {
	options := updateOptions{out: os.Stdout}
	for _, opt := range opts {
		opt(&options)
	}

	id, err := strconv.Atoi(rawID)
	if err != nil {
		return fmt.Errorf("invalid book id '%s'", rawID)
	}

	if changes == (api.Book{}) {
		return fmt.Errorf("nothing to update (set --title, --author, --year or --genre)")
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

	current, err := options.client.GetBook(context.Background(), id)
	if err != nil {
		return friendlyError(err)
	}

	next := *current
	if changes.Title != "" {
		next.Title = changes.Title
	}
	if changes.Author != "" {
		next.Author = changes.Author
	}
	if changes.Year != 0 {
		next.Year = changes.Year
	}
	if changes.Genre != "" {
		next.Genre = changes.Genre
	}

	updated, err := options.client.UpdateBook(context.Background(), id, next)
	if err != nil {
		return friendlyError(err)
	}

	fmt.Fprintf(options.out, "✓ Updated \"%s\" (id %d)\n", updated.Title, updated.ID)

	return nil
}
