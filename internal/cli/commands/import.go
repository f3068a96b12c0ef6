package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/crowjourney/bookshelf/internal/api"
	"github.com/crowjourney/bookshelf/internal/cli/config"
)

type importClient interface {
	AddBook(ctx context.Context, book api.Book) (*api.Book, error)
}

type importOptions struct {
	client importClient
	server *config.Server
	out    io.Writer
}

// ImportOption overrides a dependency of runImport, for tests.
type ImportOption func(*importOptions)

func WithImportClient(c importClient) ImportOption {
	return func(o *importOptions) { o.client = c }
}

func WithImportServer(s *config.Server) ImportOption {
	return func(o *importOptions) { o.server = s }
}

func WithImportOutput(w io.Writer) ImportOption {
	return func(o *importOptions) { o.out = w }
}

// NewImportCmd creates the import command
func NewImportCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "import <snapshot-file>",
		Short: "Add every book from a YAML snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0], serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runImport(path, serverAlias string, opts ...ImportOption) error {
	options := importOptions{out: os.Stdout}
	for _, opt := range opts {
		opt(&options)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse snapshot: %w", err)
	}

	if len(snap.Books) == 0 {
		return fmt.Errorf("snapshot contains no books")
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

	added := 0
	for _, book := range snap.Books {
		// The server assigns new ids; the snapshot's are informational.
		book.ID = 0
		if _, err := options.client.AddBook(context.Background(), book); err != nil {
			return friendlyError(fmt.Errorf("failed after importing %d book(s): %w", added, err))
		}
		added++
	}

	fmt.Fprintf(options.out, "✓ Imported %d book(s)\n", added)

	return nil
}
