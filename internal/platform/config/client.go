package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Client configures the terminal front-end.
type Client struct {
	// ServerURL is the base URL of cmd/server.
	ServerURL string `toml:"server"`
	// CEPURL points CEP lookups at ViaCEP (or a mirror). Empty routes them
	// through the server's /v1/cep proxy.
	CEPURL   string        `toml:"cep_url"`
	LogLevel string        `toml:"log_level"`
	LogFile  string        `toml:"log_file"`
	Timeout  time.Duration `toml:"timeout"`
}

const (
	DefaultServerURL     = "http://localhost:8080"
	DefaultClientLogFile = "cadastro.log"
	defaultClientTimeout = 10 * time.Second
)

// DefaultClientConfig returns the settings used when nothing else is given.
func DefaultClientConfig() Client {
	return Client{
		ServerURL: DefaultServerURL,
		LogLevel:  "info",
		LogFile:   DefaultClientLogFile,
		Timeout:   defaultClientTimeout,
	}
}

// LoadClient layers the TOML file at path (optional) and then the
// CADASTRO_* environment over the defaults. Unknown keys in the file are
// rejected so typos do not go unnoticed.
func LoadClient(path string) (Client, error) {
	cfg := DefaultClientConfig()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Client{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return Client{}, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	}

	cfg.ServerURL = envOr("CADASTRO_SERVER", cfg.ServerURL)
	cfg.CEPURL = envOr("CADASTRO_CEP_URL", cfg.CEPURL)
	cfg.LogLevel = envOr("CADASTRO_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = envOr("CADASTRO_LOG_FILE", cfg.LogFile)
	cfg.Timeout = durationOr("CADASTRO_TIMEOUT", cfg.Timeout)
	return cfg, cfg.Validate()
}

// Validate rejects settings the front-end cannot start with.
func (c Client) Validate() error {
	if strings.TrimSpace(c.ServerURL) == "" {
		return fmt.Errorf("server URL is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// ConfigPathFromEnv returns CADASTRO_CONFIG, or "cadastro.toml" when that
// file exists in the working directory.
func ConfigPathFromEnv() string {
	if p := envOr("CADASTRO_CONFIG", ""); p != "" {
		return p
	}
	if _, err := os.Stat("cadastro.toml"); err == nil {
		return "cadastro.toml"
	}
	return ""
}
