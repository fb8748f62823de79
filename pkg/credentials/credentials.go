// Package credentials loads and validates Kerio Connect account credentials.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/dukex/operion-kerio/pkg/kerio"
	"github.com/go-playground/validator/v10"
)

const (
	EnvServerURL = "KERIO_SERVER_URL"
	EnvUsername  = "KERIO_USERNAME"
	EnvPassword  = "KERIO_PASSWORD"
	EnvIgnoreSSL = "KERIO_IGNORE_SSL"
)

// ErrInvalidCredentials indicates missing or malformed credential fields.
var ErrInvalidCredentials = errors.New("invalid credentials configuration")

// Credentials is the account configuration for one Kerio Connect server.
type Credentials struct {
	ServerURL string `json:"serverUrl" validate:"required,url"`
	Username  string `json:"username"  validate:"required"`
	Password  string `json:"password"`
	IgnoreSSL bool   `json:"ignoreSSL"`
}

// Overrides are explicit values that win over file and environment.
type Overrides struct {
	Path      string
	ServerURL string
	Username  string
	Password  string
	IgnoreSSL bool
	// SkipEnv leaves the KERIO_* variables out of the merge, for callers
	// whose overrides were already read from the environment.
	SkipEnv bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load merges the credentials file, the environment and overrides, in that
// order, and validates the result.
func Load(overrides Overrides) (Credentials, error) {
	creds, err := Merge(overrides)
	if err != nil {
		return Credentials{}, err
	}

	if err := creds.Validate(); err != nil {
		return Credentials{}, err
	}

	return creds, nil
}

// Merge is Load without validation.
func Merge(overrides Overrides) (Credentials, error) {
	var creds Credentials

	if overrides.Path != "" {
		if err := mergeFromPath(&creds, overrides.Path); err != nil {
			return Credentials{}, err
		}
	}

	if !overrides.SkipEnv {
		mergeFromEnv(&creds)
	}

	mergeFromOverrides(&creds, overrides)

	creds.ServerURL = kerio.NormalizeBaseURL(creds.ServerURL)

	return creds, nil
}

// Validate checks the required fields.
func (c Credentials) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	return nil
}

// ValidateServer checks only the server URL, for calls made with an
// existing session.
func (c Credentials) ValidateServer() error {
	if err := validate.Var(c.ServerURL, "required,url"); err != nil {
		return fmt.Errorf("%w: serverUrl: %w", ErrInvalidCredentials, err)
	}

	return nil
}

// Session returns a session bound to the server without a token.
func (c Credentials) Session() kerio.Session {
	return kerio.Session{BaseURL: kerio.NormalizeBaseURL(c.ServerURL)}
}

// LoginParams returns the Session.login parameters for app.
func (c Credentials) LoginParams(app kerio.Application) kerio.LoginParams {
	return kerio.LoginParams{
		Application: app,
		UserName:    c.Username,
		Password:    c.Password,
	}
}

// Client returns a client honouring IgnoreSSL.
func (c Credentials) Client(opts ...kerio.Option) *kerio.Client {
	opts = append([]kerio.Option{kerio.WithHTTPClient(kerio.NewHTTPClient(c.IgnoreSSL))}, opts...)

	return kerio.NewClient(opts...)
}

// LogValue hides the password when credentials are logged.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("server_url", c.ServerURL),
		slog.String("username", c.Username),
		slog.Bool("ignore_ssl", c.IgnoreSSL),
	)
}

type fileCredentials struct {
	ServerURL *string `json:"serverUrl"`
	Username  *string `json:"username"`
	Password  *string `json:"password"`
	IgnoreSSL *bool   `json:"ignoreSSL"`
}

func mergeFromPath(creds *Credentials, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read credentials file: %w", err)
	}

	var f fileCredentials
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("failed to parse credentials file: %w", err)
	}

	if f.ServerURL != nil {
		creds.ServerURL = *f.ServerURL
	}

	if f.Username != nil {
		creds.Username = *f.Username
	}

	if f.Password != nil {
		creds.Password = *f.Password
	}

	if f.IgnoreSSL != nil {
		creds.IgnoreSSL = *f.IgnoreSSL
	}

	return nil
}

func mergeFromEnv(creds *Credentials) {
	if v := os.Getenv(EnvServerURL); v != "" {
		creds.ServerURL = v
	}

	if v := os.Getenv(EnvUsername); v != "" {
		creds.Username = v
	}

	if v := os.Getenv(EnvPassword); v != "" {
		creds.Password = v
	}

	if v := os.Getenv(EnvIgnoreSSL); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			creds.IgnoreSSL = b
		}
	}
}

func mergeFromOverrides(creds *Credentials, ov Overrides) {
	if ov.ServerURL != "" {
		creds.ServerURL = ov.ServerURL
	}

	if ov.Username != "" {
		creds.Username = ov.Username
	}

	if ov.Password != "" {
		creds.Password = ov.Password
	}

	if ov.IgnoreSSL {
		creds.IgnoreSSL = true
	}
}
