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

// snapshot is the YAML document written by export and read by import.
type snapshot struct {
	Books []api.Book `yaml:"books"`
}

type exportClient interface {
	ListBooks(ctx context.Context) ([]api.Book, error)
}

type exportOptions struct {
	client exportClient
	server *config.Server
	out    io.Writer
}

// ExportOption overrides a dependency of runExport, for tests.
type ExportOption func(*exportOptions)

func WithExportClient(c exportClient) ExportOption {
	return func(o *exportOptions) { o.client = c }
}

func WithExportServer(s *config.Server) ExportOption {
	return func(o *exportOptions) { o.server = s }
}

func WithExportOutput(w io.Writer) ExportOption {
	return func(o *exportOptions) { o.out = w }
}

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var output, serverAlias string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog to a YAML snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(output, serverAlias)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to stdout)")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

func runExport(output, serverAlias string, opts ...ExportOption) error {
	options := exportOptions{out: os.Stdout}
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

	data, err := yaml.Marshal(snapshot{Books: books})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if output == "" {
		_, err := options.out.Write(data)
		return err
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	fmt.Fprintf(options.out, "✓ Exported %d book(s) to %s\n", len(books), output)

	return nil
}
