package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/collabeat/internal/fetch"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Content sources.
const (
	ContentSourceIPFS  = "ipfs"
	ContentSourceLocal = "local"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	IPFS    IPFSConfig        `yaml:"ipfs"`
	Content ContentConfig     `yaml:"content"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.IPFS.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// IPFSConfig configures the ipfs CLI fetcher. Multiaddr and TimeoutSec are
// the defaults substituted when a call supplies an empty address.
type IPFSConfig struct {
	Bin        string `yaml:"bin"`
	Multiaddr  string `yaml:"multiaddr"`
	TimeoutSec uint64 `yaml:"timeout_sec"`
}

// Validate validates the IPFS configuration.
func (c *IPFSConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Bin, validation.Required),
		validation.Field(&c.Multiaddr, validation.Required, validation.By(isMultiaddr)),
		validation.Field(&c.TimeoutSec, validation.Required),
	)
}

// Defaults returns the fetch defaults described by c.
func (c *IPFSConfig) Defaults() fetch.Defaults {
	return fetch.Defaults{Multiaddr: c.Multiaddr, TimeoutSec: c.TimeoutSec}
}

func isMultiaddr(value any) error {
	s, _ := value.(string)
	if s != "" && !strings.HasPrefix(s, "/") {
		return errors.New("must be a multiaddress starting with '/'")
	}
	return nil
}

// ContentConfig selects where beat content is fetched from.
//
// Source controls the backend:
//   - "ipfs" (default): the ipfs CLI ("ipfs dag get").
//   - "local": files named by CID under Dir, for offline use.
type ContentConfig struct {
	Source string `yaml:"source"`
	Dir    string `yaml:"dir"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	if c.Source == "" {
		c.Source = ContentSourceIPFS
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Source, validation.Required, validation.In(ContentSourceIPFS, ContentSourceLocal)),
		validation.Field(&c.Dir, validation.When(c.Source == ContentSourceLocal, validation.Required)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		IPFS: IPFSConfig{
			Bin:        "ipfs",
			Multiaddr:  fetch.DefaultMultiaddr,
			TimeoutSec: fetch.DefaultTimeoutSec,
		},
		Content: ContentConfig{
			Source: ContentSourceIPFS,
			Dir:    "./content",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
