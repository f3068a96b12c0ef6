package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/crowjourney/bookshelf/internal/logger"
	"github.com/crowjourney/bookshelf/internal/tokenstore"
)

var validate = validator.New()

// Gateway performs login, registration and logout. It is the only
// component allowed to install a validated session, and it never routes
// through the authorized request client: a 401 on bad credentials must
// not tear down an existing session.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	tokens     tokenstore.Store
	store      *Store
}

// NewGateway creates a gateway for the given server base URL.
func NewGateway(baseURL string, tokens tokenstore.Store, store *Store) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens: tokens,
		store:  store,
	}
}

// SetHTTPClient sets a custom HTTP client
func (g *Gateway) SetHTTPClient(httpClient *http.Client) {
	g.httpClient = httpClient
}

// loginResponse mirrors the POST /login success body.
type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    json.Number `json:"id"`
		Role  string      `json:"role"`
		Email string      `json:"email"`
		Name  string      `json:"nom"`
	} `json:"user"`
}

// Login authenticates against the backend. On success the returned token
// is persisted and the session replaced with the server-issued identity
// in one step; no extra verification round trip is made. On any failure
// the session is left untouched and the error carries the best available
// human-readable message.
func (g *Gateway) Login(ctx context.Context, creds Credentials) error {
	if err := validate.Struct(creds); err != nil {
		return fmt.Errorf("email and password are required")
	}

	status, body, err := g.postJSON(ctx, "/login", creds)
	if err != nil {
		return err
	}

	if status != http.StatusOK {
		return fmt.Errorf("%s", serverMessage(status, body, "login failed"))
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if err := g.tokens.Save(resp.Token); err != nil {
		return fmt.Errorf("failed to save authentication token: %w", err)
	}

	g.store.Replace(Session{
		Token: resp.Token,
		User: &User{
			ID:    resp.User.ID.String(),
			Role:  resp.User.Role,
			Email: resp.User.Email,
			Name:  resp.User.Name,
		},
		Loading: false,
	})

	lg := logger.GetLogger()
	lg.Info().Str("email", creds.Email).Msg("login successful")
	return nil
}

// Register creates a new account. Success does not imply login: the
// session is never mutated here.
func (g *Gateway) Register(ctx context.Context, data RegistrationData) error {
	if err := validate.Struct(data); err != nil {
		return registrationValidationMessage(err)
	}

	status, body, err := g.postJSON(ctx, "/users", data)
	if err != nil {
		return err
	}

	if status < 200 || status > 299 {
		return fmt.Errorf("%s", serverMessage(status, body, "registration failed"))
	}

	return nil
}

// Logout unconditionally drops the persisted token and clears the
// session. It never fails and needs no backend round trip; deleting an
// absent token is a no-op, which makes logout idempotent.
func (g *Gateway) Logout() {
	if err := g.tokens.Delete(); err != nil {
		lg := logger.GetLogger()
		lg.Warn().Err(err).Msg("failed to delete stored token")
	}
	g.store.Clear()
}

func (g *Gateway) postJSON(ctx context.Context, endpoint string, payload any) (int, []byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

// serverMessage extracts the backend's {"error": ...} field, falling back
// to a generic message with the status code.
func serverMessage(status int, body []byte, fallback string) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return fmt.Sprintf("%s (status %d)", fallback, status)
}

// registrationValidationMessage turns validator output into the message
// rendered next to the form, without leaking struct internals.
func registrationValidationMessage(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return fmt.Errorf("invalid registration data")
	}
	switch errs[0].Field() {
	case "Name":
		return fmt.Errorf("name is required")
	case "Email":
		return fmt.Errorf("a valid email address is required")
	case "Password":
		return fmt.Errorf("password must be at least 8 characters")
	default:
		return fmt.Errorf("invalid registration data")
	}
}
