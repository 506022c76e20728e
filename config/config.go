// Package config loads connection configuration for a Session, either
// programmatically, from a YAML document, or from the TEST_* environment
// variables the integration test harness uses.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/pgwireclient/pgwire/transport"
)

// Config mirrors the libpq-style DSN components a caller assembles a
// Session.Handshake call from.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`

	// SSLMode is the textual spelling accepted in YAML/env ("required",
	// "preferred", "never"); Policy() maps it to transport.SSLPolicy.
	SSLMode string `yaml:"sslmode"`

	// ApplicationName, if set, is sent as the "application_name" startup
	// parameter.
	ApplicationName string `yaml:"application_name"`
}

// Policy maps SSLMode to a transport.SSLPolicy, defaulting to Preferred for
// an empty or unrecognized value.
func (c Config) Policy() transport.SSLPolicy {
	switch c.SSLMode {
	case "required", "require":
		return transport.SSLRequired
	case "never", "disable":
		return transport.SSLNever
	default:
		return transport.SSLPreferred
	}
}

// Addr formats the "host:port" string to dial.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StartupParams builds the StartupMessage parameter map from the
// configured user, database, and application name.
func (c Config) StartupParams() map[string]string {
	params := map[string]string{"user": c.User}
	if c.Database != "" {
		params["database"] = c.Database
	}
	if c.ApplicationName != "" {
		params["application_name"] = c.ApplicationName
	}

	return params
}

// Load parses a YAML document into a Config, applying DefaultPort when Port
// is left at its zero value.
func Load(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("pgwire/config: parse yaml: %w", err)
	}

	if c.Port == 0 {
		c.Port = DefaultPort
	}

	return c, nil
}

// LoadFile reads and parses a YAML config file at path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("pgwire/config: read %s: %w", path, err)
	}

	return Load(data)
}

// DefaultPort is the standard PostgreSQL port, used when a loaded Config
// doesn't specify one.
const DefaultPort = 5432

// FromEnv builds a Config from the TEST_* environment variables the test
// harness uses. Never consulted by the core library itself.
func FromEnv() Config {
	port := DefaultPort
	if v := os.Getenv("TEST_DATABASE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			port = p
		}
	}

	return Config{
		Host:     envOr("TEST_DATABASE_HOST", "localhost"),
		Port:     port,
		User:     os.Getenv("TEST_USER"),
		Password: os.Getenv("TEST_PASSWORD"),
		Database: os.Getenv("TEST_DATABASE"),
	}
}

// IsCockroach reports whether the test harness is targeting CockroachDB
// rather than PostgreSQL.
func IsCockroach() bool {
	v := os.Getenv("IS_COCKROACH")
	return v == "1" || v == "true" || v == "TRUE"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
