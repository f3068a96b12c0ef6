package commands

import (
	"errors"
	"fmt"

	"github.com/crowjourney/bookshelf/internal/api"
	"github.com/crowjourney/bookshelf/internal/cli/config"
	"github.com/crowjourney/bookshelf/internal/cli/serverselect"
	"github.com/crowjourney/bookshelf/internal/tokenstore"
)

// getSelectedServer loads the config and returns the selected server.
// This is common logic used by most commands.
func getSelectedServer(serverAlias string) (*config.Server, error) {
	// Load config
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'bookshelf init' to create a configuration file", err)
	}

	// Resolve which server to use
	server, err := serverselect.ResolveServer(cfg, serverAlias)
	if err != nil {
		return nil, err
	}

	if server.URL == "" {
		return nil, fmt.Errorf("server URL is empty. Please edit %s and add a valid URL", config.ConfigFileName)
	}

	return server, nil
}

// newAPIClient builds the authorized client for a server, with its token
// store scoped to the server host.
func newAPIClient(server *config.Server) (*api.Client, error) {
	host, err := server.Host()
	if err != nil {
		return nil, err
	}

	tokens, err := tokenstore.Open(host)
	if err != nil {
		return nil, err
	}

	return api.New(server.URL, tokens), nil
}

// friendlyError rewrites the forced-invalidation sentinel into the
// message shown when a session silently expired mid-command. Everything
// else passes through untouched.
func friendlyError(err error) error {
	if errors.Is(err, api.ErrSessionInvalidated) {
		return fmt.Errorf("your session has expired, please run 'bookshelf login' again")
	}
	return err
}
