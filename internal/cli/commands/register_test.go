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

// mockRegisterGateway records the registration data it was called with
type mockRegisterGateway struct {
	data       session.RegistrationData
	called     bool
	shouldFail bool
	errMsg     string
}

func (m *mockRegisterGateway) Register(ctx context.Context, data session.RegistrationData) error {
	m.called = true
	m.data = data
	if m.shouldFail {
		return errors.New(m.errMsg)
	}
	return nil
}

func TestRegisterCommand_CommandStructure(t *testing.T) {
	cmd := NewRegisterCmd()

	if cmd.Use != "register" {
		t.Errorf("expected Use to be 'register', got %s", cmd.Use)
	}

	for _, flag := range []string{"name", "email", "password", "server"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag to exist", flag)
		}
	}
}

func TestRegisterCommand_Success(t *testing.T) {
	server := &config.Server{
		Alias: "test-server",
		URL:   "http://127.0.0.1:8080",
	}

	gateway := &mockRegisterGateway{}
	var output bytes.Buffer

	err := runRegister(
		"Alice",
		"alice@example.com",
		"Str0ngPass",
		"",
		WithRegisterGateway(gateway),
		WithRegisterServer(server),
		WithRegisterOutput(&output),
	)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if !gateway.called {
		t.Fatal("expected the gateway to be called")
	}
	if gateway.data.Name != "Alice" || gateway.data.Email != "alice@example.com" {
		t.Errorf("unexpected registration data: %+v", gateway.data)
	}

	// Registration must not log the user in, only point at login
	if !strings.Contains(output.String(), "bookshelf login") {
		t.Errorf("expected hint to run login, got: %s", output.String())
	}
}

func TestRegisterCommand_MissingName(t *testing.T) {
	err := runRegister("", "alice@example.com", "Str0ngPass", "")
	if err == nil {
		t.Fatal("expected error when name is missing, got nil")
	}

	expectedError := "name is required (use --name flag)"
	if err.Error() != expectedError {
		t.Errorf("expected error '%s', got '%s'", expectedError, err.Error())
	}
}

func TestRegisterCommand_MissingEmail(t *testing.T) {
	err := runRegister("Alice", "", "Str0ngPass", "")
	if err == nil {
		t.Fatal("expected error when email is missing, got nil")
	}

	expectedError := "email is required (use --email flag)"
	if err.Error() != expectedError {
		t.Errorf("expected error '%s', got '%s'", expectedError, err.Error())
	}
}

func TestRegisterCommand_ServerFailure(t *testing.T) {
	server := &config.Server{
		Alias: "test-server",
		URL:   "http://127.0.0.1:8080",
	}

	gateway := &mockRegisterGateway{
		shouldFail: true,
		errMsg:     "Cet email est déjà utilisé",
	}

	err := runRegister(
		"Alice",
		"taken@example.com",
		"Str0ngPass",
		"",
		WithRegisterGateway(gateway),
		WithRegisterServer(server),
		WithRegisterOutput(&bytes.Buffer{}),
	)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if !strings.Contains(err.Error(), "Cet email est déjà utilisé") {
		t.Errorf("expected the server message to surface, got: %s", err.Error())
	}
}
