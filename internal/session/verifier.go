package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/crowjourney/bookshelf/internal/logger"
	"github.com/crowjourney/bookshelf/internal/tokenstore"
)

// Outcome is the three-way classification of a token check.
type Outcome int

const (
	// OutcomeVerified means the backend confirmed the identity.
	OutcomeVerified Outcome = iota
	// OutcomeUnauthorized means the backend explicitly rejected the token.
	OutcomeUnauthorized
	// OutcomeIndeterminate covers everything else: network errors,
	// malformed responses, non-401 error statuses. A transient failure
	// must not evict a user who just authenticated.
	OutcomeIndeterminate
)

// Result carries the outcome of a verification. User is set only for
// OutcomeVerified; Reason only for OutcomeIndeterminate.
type Result struct {
	Outcome Outcome
	User    *User
	Reason  error
}

// Verifier asks the backend who a token belongs to.
type Verifier struct {
	baseURL    string
	httpClient *http.Client
}

// NewVerifier creates a verifier against the given server base URL.
func NewVerifier(baseURL string) *Verifier {
	return &Verifier{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (v *Verifier) SetHTTPClient(httpClient *http.Client) {
	v.httpClient = httpClient
}

// verifyResponse mirrors the GET /protected success body.
type verifyResponse struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	Name   string `json:"nom"`
}

// Verify checks the token against the protected identity endpoint.
// Only an explicit 401 counts as Unauthorized; any other failure is
// Indeterminate so the caller can keep the token.
func (v *Verifier) Verify(ctx context.Context, token string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/protected", nil)
	if err != nil {
		return Result{Outcome: OutcomeIndeterminate, Reason: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return Result{Outcome: OutcomeIndeterminate, Reason: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return Result{Outcome: OutcomeUnauthorized}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{
			Outcome: OutcomeIndeterminate,
			Reason:  fmt.Errorf("verification failed with status %d", resp.StatusCode),
		}
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{Outcome: OutcomeIndeterminate, Reason: fmt.Errorf("failed to decode response: %w", err)}
	}

	return Result{
		Outcome: OutcomeVerified,
		User: &User{
			ID:    body.UserID,
			Role:  body.Role,
			Email: body.Email,
			Name:  body.Name,
		},
	}
}

// Bind registers the verification listener on the store: verification
// fires once whenever the effective token changes, including at
// registration time when a persisted token exists, and never when no
// token is present.
//
// Outcomes are applied only if the token they were issued for still
// equals the current session token at completion time; a stale outcome
// is discarded. An Unauthorized outcome clears both the session and the
// persisted token so the two never stay diverged.
func Bind(ctx context.Context, store *Store, verifier *Verifier, tokens tokenstore.Store) {
	var mu sync.Mutex
	lastToken := "\x00unset" // sentinel so the registration-time call counts as a change

	store.Subscribe(func(sess Session) {
		mu.Lock()
		changed := sess.Token != lastToken
		lastToken = sess.Token
		mu.Unlock()

		if !changed {
			return
		}

		if sess.Token == "" {
			// Nothing to verify; settle as unauthenticated.
			store.applyIfToken("", func(s *Session) {
				s.Loading = false
			})
			return
		}

		go func(token string) {
			res := verifier.Verify(ctx, token)

			switch res.Outcome {
			case OutcomeVerified:
				store.applyIfToken(token, func(s *Session) {
					s.User = res.User
					s.Loading = false
				})
			case OutcomeUnauthorized:
				store.applyIfToken(token, func(s *Session) {
					s.Token = ""
					s.User = nil
					s.Loading = false
					// Deleting inside the critical section keeps the
					// persisted token and the session token settled
					// together: subscribers never observe one without
					// the other.
					if err := tokens.Delete(); err != nil {
						lg := logger.GetLogger()
						lg.Warn().Err(err).Msg("failed to delete rejected token")
					}
				})
			case OutcomeIndeterminate:
				// Keep the token and whatever user we had; just settle.
				store.applyIfToken(token, func(s *Session) {
					s.Loading = false
				})
				lg := logger.GetLogger()
				lg.Warn().Err(res.Reason).Msg("token verification inconclusive")
			}
		}(sess.Token)
	})
}
