package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/crowjourney/bookshelf/internal/cli/config"
	"github.com/crowjourney/bookshelf/internal/session"
	"github.com/crowjourney/bookshelf/internal/tokenstore"
)

type whoamiOptions struct {
	server   *config.Server
	tokens   tokenstore.Store
	verifier *session.Verifier
	out      io.Writer
}

// WhoamiOption overrides a dependency of runWhoami, for tests.
type WhoamiOption func(*whoamiOptions)

func WithWhoamiServer(s *config.Server) WhoamiOption {
	return func(o *whoamiOptions) { o.server = s }
}

func WithWhoamiTokenStore(t tokenstore.Store) WhoamiOption {
	return func(o *whoamiOptions) { o.tokens = t }
}

func WithWhoamiVerifier(v *session.Verifier) WhoamiOption {
	return func(o *whoamiOptions) { o.verifier = v }
}

func WithWhoamiOutput(w io.Writer) WhoamiOption {
	return func(o *whoamiOptions) { o.out = w }
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show who is currently signed in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias (uses selected server if not specified)")

	return cmd
}

// runWhoami spins up the session core the way a long-lived client would
// at startup: prime the store with the persisted token, bind the
// verifier, and wait for the session to settle.
func runWhoami(serverAlias string, opts ...WhoamiOption) error {
	options := whoamiOptions{out: os.Stdout}
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

	if options.tokens == nil {
		host, err := options.server.Host()
		if err != nil {
			return err
		}
		tokens, err := tokenstore.Open(host)
		if err != nil {
			return err
		}
		options.tokens = tokens
	}

	token, err := options.tokens.Load()
	if err != nil && !errors.Is(err, tokenstore.ErrNotFound) {
		return err
	}

	if options.verifier == nil {
		options.verifier = session.NewVerifier(options.server.URL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Second)
	defer cancel()

	store := session.NewStore(token)
	session.Bind(ctx, store, options.verifier, options.tokens)

	sess, err := store.Wait(ctx)
	if err != nil {
		return fmt.Errorf("verification timed out: %w", err)
	}

	switch {
	case sess.User != nil:
		fmt.Fprintf(options.out, "Signed in to %s (%s)\n", options.server.Alias, options.server.URL)
		fmt.Fprintf(options.out, "  User:  %s <%s>\n", sess.User.Name, sess.User.Email)
		fmt.Fprintf(options.out, "  Role:  %s\n", sess.User.Role)
		if expiry := tokenExpiry(sess.Token); !expiry.IsZero() {
			fmt.Fprintf(options.out, "  Token: expires %s\n", expiry.Format(time.RFC1123))
		}
	case sess.Token != "":
		// Indeterminate: the server could not be reached or answered
		// strangely. The token is kept; say so instead of guessing.
		fmt.Fprintln(options.out, "Could not verify the session; the stored token was kept.")
		fmt.Fprintln(options.out, "Try again once the server is reachable.")
	default:
		fmt.Fprintln(options.out, "Not signed in. Run 'bookshelf login' first.")
	}

	return nil
}

// tokenExpiry reads the exp claim without verifying the signature; the
// client holds no key material, and the display is informational only.
func tokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
