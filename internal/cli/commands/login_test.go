package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/crowjourney/bookshelf/internal/cli/config"
	"github.com/crowjourney/bookshelf/internal/session"
)

// mockGateway records the credentials it was called with
type mockGateway struct {
	creds      session.Credentials
	called     bool
	shouldFail bool
	errMsg     string
}

func (m *mockGateway) Login(ctx context.Context, creds session.Credentials) error {
	m.called = true
	m.creds = creds
	if m.shouldFail {
		return errors.New(m.errMsg)
	}
	return nil
}

func TestLoginCommand_CommandStructure(t *testing.T) {
	cmd := NewLoginCmd()

	if cmd.Use != "login" {
		t.Errorf("expected Use to be 'login', got %s", cmd.Use)
	}

	// Verify flags exist
	if cmd.Flags().Lookup("email") == nil {
		t.Error("expected --email flag to exist")
	}
	if cmd.Flags().Lookup("password") == nil {
		t.Error("expected --password flag to exist")
	}
	if cmd.Flags().Lookup("server") == nil {
		t.Error("expected --server flag to exist")
	}
}

func TestLoginCommand_Success(t *testing.T) {
	server := &config.Server{
		Alias: "test-server",
		URL:   "http://127.0.0.1:8080",
	}

	gateway := &mockGateway{}
	var output bytes.Buffer

	err := runLogin(
		"test@example.com",
		"password123",
		"",
		WithLoginGateway(gateway),
		WithLoginServer(server),
		WithLoginOutput(&output),
	)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if !gateway.called {
		t.Fatal("expected the gateway to be called")
	}
	if gateway.creds.Email != "test@example.com" {
		t.Errorf("expected email 'test@example.com', got %s", gateway.creds.Email)
	}
	if gateway.creds.Password != "password123" {
		t.Errorf("expected password to be forwarded, got %s", gateway.creds.Password)
	}
	if !strings.Contains(output.String(), "Login successful") {
		t.Errorf("expected success message, got: %s", output.String())
	}
}

func TestLoginCommand_FailurePropagatesServerMessage(t *testing.T) {
	server := &config.Server{
		Alias: "test-server",
		URL:   "http://127.0.0.1:8080",
	}

	gateway := &mockGateway{
		shouldFail: true,
		errMsg:     "Email ou mot de passe incorrect",
	}
	var output bytes.Buffer

	err := runLogin(
		"test@example.com",
		"wrong",
		"",
		WithLoginGateway(gateway),
		WithLoginServer(server),
		WithLoginOutput(&output),
	)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if !strings.Contains(err.Error(), "Email ou mot de passe incorrect") {
		t.Errorf("expected the server message to surface, got: %s", err.Error())
	}
}

func TestLoginCommand_MissingEmail(t *testing.T) {
	t.Setenv("BOOKSHELF_EMAIL", "")
	t.Setenv("BOOKSHELF_PASSWORD", "")

	err := runLogin("", "password123", "")
	if err == nil {
		t.Fatal("expected error when email is missing, got nil")
	}

	expectedError := "email is required (use --email flag or BOOKSHELF_EMAIL env var)"
	if err.Error() != expectedError {
		t.Errorf("expected error '%s', got '%s'", expectedError, err.Error())
	}
}

func TestLoginCommand_EnvVarCredentials(t *testing.T) {
	t.Setenv("BOOKSHELF_EMAIL", "env@example.com")
	t.Setenv("BOOKSHELF_PASSWORD", "envpass")

	server := &config.Server{
		Alias: "test-server",
		URL:   "http://127.0.0.1:8080",
	}

	gateway := &mockGateway{}
	var output bytes.Buffer

	err := runLogin(
		"",
		"",
		"",
		WithLoginGateway(gateway),
		WithLoginServer(server),
		WithLoginOutput(&output),
	)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if gateway.creds.Email != "env@example.com" {
		t.Errorf("expected email from env var, got %s", gateway.creds.Email)
	}
	if gateway.creds.Password != "envpass" {
		t.Errorf("expected password from env var, got %s", gateway.creds.Password)
	}
}

func TestLoginCommand_NoConfigFile(t *testing.T) {
	t.Setenv("BOOKSHELF_EMAIL", "")
	t.Setenv("BOOKSHELF_PASSWORD", "")

	tempDir := t.TempDir()
	originalDir := mustGetwd(t)
	mustChdir(t, tempDir)
	defer mustChdir(t, originalDir)

	err := runLogin("test@example.com", "password123", "")
	if err == nil {
		t.Fatal("expected error when config file is missing, got nil")
	}

	if !strings.Contains(err.Error(), "failed to load config") {
		t.Errorf("expected error about missing config, got: %s", err.Error())
	}
}
