package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/crowjourney/bookshelf/internal/api"
	"github.com/crowjourney/bookshelf/internal/cli/config"
)

type deleteClient interface {
	GetBook(ctx context.Context, id int) (*api.Book, error)
	DeleteBook(ctx context.Context, id int) error
}

type deleteOptions struct {
	client     deleteClient
	server     *config.Server
	out        io.Writer
	skipPrompt bool
}

// DeleteOption overrides a dependency of runDelete, for tests.
type DeleteOption func(*deleteOptions)

func WithDeleteClient(c deleteClient) DeleteOption {
	return func(o *deleteOptions) { o.client = c }
}

func WithDeleteServer(s *config.Server) DeleteOption {
	return func(o *deleteOptions) { o.server = s }
}

func WithDeleteOutput(w io.Writer) DeleteOption {
	return func(o *deleteOptions) { o.out = w }
}

func withDeleteSkipPrompt() DeleteOption {
	return func(o *deleteOptions) { o.skipPrompt = true }
}

// NewDeleteCmd creates the delete command
func NewDeleteCmd() *cobra.Command {
	var serverAlias string
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <book-id>",
		Short: "Delete a book from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []DeleteOption{}
			if yes {
				opts = append(opts, withDeleteSkipPrompt())
			}
			return runDelete(args[0], serverAlias, opts...)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runDelete(rawID, serverAlias string, opts ...DeleteOption) error {
	options := deleteOptions{out: os.Stdout}
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

	if !options.skipPrompt {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete \"%s\" by %s", book.Title, book.Author),
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			fmt.Fprintln(options.out, "Aborted.")
			return nil
		}
	}

	if err := options.client.DeleteBook(context.Background(), id); err != nil {
		return friendlyError(err)
	}

	fmt.Fprintf(options.out, "✓ Deleted \"%s\"\n", book.Title)

	return nil
}
