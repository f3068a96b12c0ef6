// Package tokenstore persists the bearer token across CLI invocations.
// Exactly one token is stored per server; absence means unauthenticated.
package tokenstore

import (
	"errors"
	"os"
)

// ErrNotFound is returned by Load when no token is stored for the server.
var ErrNotFound = errors.New("no stored token")

// Store is the persistent home of the bearer token.
// This allows us to swap the keyring for a file or an in-memory map in tests.
type Store interface {
	Save(token string) error
	Load() (string, error)
	// Delete removes the stored token. Deleting a token that does not
	// exist is not an error.
	Delete() error
}

// Open returns the token store for the given server host. The OS keyring
// is the default; BOOKSHELF_TOKEN_FILE switches to a bolt file store for
// headless machines and CI where no keychain is available.
func Open(serverHost string) (Store, error) {
	if path := os.Getenv("BOOKSHELF_TOKEN_FILE"); path != "" {
		return OpenBolt(path, serverHost)
	}
	return NewKeyring(serverHost), nil
}
