package tokenstore

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const service = "bookshelf-cli"

// Keyring stores the token in the OS keychain/credential manager.
type Keyring struct {
	serverHost string
}

// NewKeyring returns a keyring-backed store scoped to one server.
func NewKeyring(serverHost string) *Keyring {
	return &Keyring{serverHost: serverHost}
}

// key returns a unique keyring entry per server, so logins against
// different servers do not clobber each other.
func (k *Keyring) key() string {
	return fmt.Sprintf("token-%s", k.serverHost)
}

func (k *Keyring) Save(token string) error {
	if err := keyring.Set(service, k.key(), token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (k *Keyring) Load() (string, error) {
	token, err := keyring.Get(service, k.key())
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

func (k *Keyring) Delete() error {
	if err := keyring.Delete(service, k.key()); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
