package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/crowjourney/bookshelf/internal/api"
	"github.com/crowjourney/bookshelf/internal/cli/config"
)

type mockCatalogClient struct {
	books  []api.Book
	added  []api.Book
	addErr error
}

func (m *mockCatalogClient) ListBooks(ctx context.Context) ([]api.Book, error) {
	return m.books, nil
}

func (m *mockCatalogClient) AddBook(ctx context.Context, book api.Book) (*api.Book, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}
	m.added = append(m.added, book)
	created := book
	created.ID = len(m.added)
	return &created, nil
}

func TestExportCommand_WritesSnapshotToStdout(t *testing.T) {
	server := &config.Server{
		Alias: "test-server",
		URL:   "http://192.168.1.100:8080",
	}

	mockAPI := &mockCatalogClient{
		books: []api.Book{
			{ID: 1, Title: "L'Étranger", Author: "Albert Camus", Year: 1942, Genre: "Roman"},
		},
	}

	var output bytes.Buffer

	err := runExport(
		"",
		"",
		WithExportClient(mockAPI),
		WithExportServer(server),
		WithExportOutput(&output),
	)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	var snap snapshot
	if err := yaml.Unmarshal(output.Bytes(), &snap); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}

	if len(snap.Books) != 1 {
		t.Fatalf("expected 1 book in snapshot, got %d", len(snap.Books))
	}
	if snap.Books[0].Title != "L'Étranger" {
		t.Errorf("expected title 'L'Étranger', got %s", snap.Books[0].Title)
	}
}

func TestExportCommand_WritesSnapshotToFile(t *testing.T) {
	server := &config.Server{
		Alias: "test-server",
		URL:   "http://192.168.1.100:8080",
	}

	mockAPI := &mockCatalogClient{
		books: []api.Book{
			{ID: 1, Title: "Le Petit Prince", Author: "Antoine de Saint-Exupéry"},
			{ID: 2, Title: "Candide", Author: "Voltaire"},
		},
	}

	outFile := filepath.Join(t.TempDir(), "catalog.yaml")
	var output bytes.Buffer

	err := runExport(
		outFile,
		"",
		WithExportClient(mockAPI),
		WithExportServer(server),
		WithExportOutput(&output),
	)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("failed to read snapshot file: %v", err)
	}

	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		t.Fatalf("snapshot file is not valid YAML: %v", err)
	}
	if len(snap.Books) != 2 {
		t.Errorf("expected 2 books in snapshot, got %d", len(snap.Books))
	}

	if !strings.Contains(output.String(), "Exported 2 book(s)") {
		t.Errorf("expected export summary, got: %s", output.String())
	}
}

func TestImportCommand_AddsEveryBook(t *testing.T) {
	server := &config.Server{
		Alias: "test-server",
		URL:   "http://192.168.1.100:8080",
	}

	snapFile := filepath.Join(t.TempDir(), "catalog.yaml")
	data, err := yaml.Marshal(snapshot{Books: []api.Book{
		{ID: 7, Title: "L'Étranger", Author: "Albert Camus"},
		{ID: 9, Title: "Candide", Author: "Voltaire"},
	}})
	if err != nil {
		t.Fatalf("failed to marshal snapshot: %v", err)
	}
	if err := os.WriteFile(snapFile, data, 0644); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}

	mockAPI := &mockCatalogClient{}
	var output bytes.Buffer

	err = runImport(
		snapFile,
		"",
		WithImportClient(mockAPI),
		WithImportServer(server),
		WithImportOutput(&output),
	)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if len(mockAPI.added) != 2 {
		t.Fatalf("expected 2 books added, got %d", len(mockAPI.added))
	}

	// Snapshot ids must not be forwarded; the server assigns new ones
	for _, book := range mockAPI.added {
		if book.ID != 0 {
			t.Errorf("expected snapshot id to be cleared before adding, got %d", book.ID)
		}
	}

	if !strings.Contains(output.String(), "Imported 2 book(s)") {
		t.Errorf("expected import summary, got: %s", output.String())
	}
}

func TestImportCommand_EmptySnapshot(t *testing.T) {
	snapFile := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(snapFile, []byte("books: []\n"), 0644); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}

	err := runImport(snapFile, "")
	if err == nil {
		t.Fatal("expected error for empty snapshot, got nil")
	}
	if !strings.Contains(err.Error(), "no books") {
		t.Errorf("expected empty-snapshot error, got: %s", err.Error())
	}
}

func TestImportCommand_MissingFile(t *testing.T) {
	err := runImport(filepath.Join(t.TempDir(), "absent.yaml"), "")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read snapshot") {
		t.Errorf("expected read error, got: %s", err.Error())
	}
}
